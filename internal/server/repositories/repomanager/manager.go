package repomanager

import (
	"context"
	"database/sql"

	"github.com/dkarklins/tradepost/internal/dbx"
	"github.com/dkarklins/tradepost/internal/server/repositories/answers"
	"github.com/dkarklins/tradepost/internal/server/repositories/items"
	"github.com/dkarklins/tradepost/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Items(db dbx.DBTX) items.Repository
	Answers(db dbx.DBTX) answers.Repository
}
