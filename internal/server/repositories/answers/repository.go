package answers

import (
	"context"

	"github.com/dkarklins/tradepost/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, answer *models.Answer) (*models.Answer, error)
	SelectByItem(ctx context.Context, itemID string) ([]*models.Answer, error)
	SelectByAuthor(ctx context.Context, userID string) ([]*models.Answer, error)
	SetResponse(ctx context.Context, id string, response string) error
	DeleteByItem(ctx context.Context, itemID string) error
}
