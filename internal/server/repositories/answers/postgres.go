// Package answers provides the PostgreSQL-backed answer store.
package answers

import (
	"context"
	"fmt"

	"github.com/dkarklins/tradepost/internal/common"
	"github.com/dkarklins/tradepost/internal/dbx"
	"github.com/dkarklins/tradepost/internal/server/models"
)

// PostgresRepository implements answer storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, answer *models.Answer) (*models.Answer, error) {

	query :=
		`INSERT INTO answers (item_id, question, answer, given_by, belongs_to)
         VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		answer.ItemID, answer.Question, answer.Answer, answer.GivenBy, answer.BelongsTo).
		Scan(&answer.ID, &answer.CreatedAt)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return answer, nil
}

func (r *PostgresRepository) SelectByItem(ctx context.Context, itemID string) ([]*models.Answer, error) {
	query :=
		`SELECT id, item_id, question, answer, given_by, belongs_to, response, created_at FROM answers
		 WHERE item_id = $1
		 ORDER BY created_at
		 `
	return r.selectMany(ctx, query, itemID)
}

func (r *PostgresRepository) SelectByAuthor(ctx context.Context, userID string) ([]*models.Answer, error) {
	query :=
		`SELECT id, item_id, question, answer, given_by, belongs_to, response, created_at FROM answers
		 WHERE given_by = $1
		 ORDER BY created_at
		 `
	return r.selectMany(ctx, query, userID)
}

// SetResponse stores the confirmation state of one answer. A missing id
// yields common.ErrorNotFound.
func (r *PostgresRepository) SetResponse(ctx context.Context, id string, response string) error {
	query :=
		`UPDATE answers SET response = $2
		 WHERE id = $1
		 `

	res, err := r.db.ExecContext(ctx, query, id, response)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

// DeleteByItem removes every answer referencing itemID. Zero rows is fine:
// an item without answers cascades to nothing.
func (r *PostgresRepository) DeleteByItem(ctx context.Context, itemID string) error {
	query := `DELETE FROM answers WHERE item_id = $1`

	if _, err := r.db.ExecContext(ctx, query, itemID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) selectMany(ctx context.Context, query string, args ...any) ([]*models.Answer, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Answer
	for rows.Next() {
		var a models.Answer
		if err := rows.Scan(
			&a.ID, &a.ItemID, &a.Question, &a.Answer, &a.GivenBy, &a.BelongsTo, &a.Response, &a.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
