// Package items provides the PostgreSQL-backed item store. Picture references
// live in a child table (item_pictures) ordered by position.
package items

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dkarklins/tradepost/internal/common"
	"github.com/dkarklins/tradepost/internal/dbx"
	"github.com/dkarklins/tradepost/internal/server/models"
)

// PostgresRepository implements item storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts an item and its picture references. Run it inside a
// transaction so the item and its pictures appear together.
func (r *PostgresRepository) Create(ctx context.Context, item *models.Item) (*models.Item, error) {

	query :=
		`INSERT INTO items (name, description, question, type, created_by)
         VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at, updated_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		item.Name, item.Description, item.Question, item.Type, item.CreatedBy).
		Scan(&item.ID, &item.CreatedAt, &item.UpdatedAt)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	if err := r.insertPictures(ctx, item.ID, item.Pictures); err != nil {
		return nil, err
	}

	return item, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Item, error) {
	query :=
		`SELECT id, name, description, question, type, created_by, created_at, updated_at FROM items
		 WHERE id = $1
		 `

	item := &models.Item{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&item.ID, &item.Name, &item.Description, &item.Question, &item.Type,
		&item.CreatedBy, &item.CreatedAt, &item.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	item.Pictures, err = r.selectPictures(ctx, id)
	if err != nil {
		return nil, err
	}

	return item, nil
}

// SelectAll returns every item with its pictures. No pagination.
func (r *PostgresRepository) SelectAll(ctx context.Context) ([]*models.Item, error) {
	query :=
		`SELECT id, name, description, question, type, created_by, created_at, updated_at FROM items
		 ORDER BY created_at DESC
		 `
	return r.selectMany(ctx, query, "")
}

func (r *PostgresRepository) SelectByCreator(ctx context.Context, userID string) ([]*models.Item, error) {
	query :=
		`SELECT id, name, description, question, type, created_by, created_at, updated_at FROM items
		 WHERE created_by = $1
		 ORDER BY created_at DESC
		 `
	return r.selectMany(ctx, query, `WHERE i.created_by = $1`, userID)
}

// Update replaces the item's scalar fields. A missing id yields
// common.ErrorNotFound rather than a silent no-op.
func (r *PostgresRepository) Update(ctx context.Context, item *models.Item) error {
	query :=
		`UPDATE items SET name = $2, description = $3, question = $4, type = $5, updated_at = now()
		 WHERE id = $1
		 `

	res, err := r.db.ExecContext(ctx, query,
		item.ID, item.Name, item.Description, item.Question, item.Type)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return oneRowAffected(res)
}

// ReplacePictures swaps the full picture set of an item.
func (r *PostgresRepository) ReplacePictures(ctx context.Context, itemID string, pictures []models.Picture) error {
	query := `DELETE FROM item_pictures WHERE item_id = $1`
	if _, err := r.db.ExecContext(ctx, query, itemID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return r.insertPictures(ctx, itemID, pictures)
}

// Delete removes the item row. Picture rows go with it via ON DELETE CASCADE;
// answers are removed by the caller in the same transaction.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM items WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return oneRowAffected(res)
}

// --- helpers below ---

func (r *PostgresRepository) insertPictures(ctx context.Context, itemID string, pictures []models.Picture) error {
	query := `INSERT INTO item_pictures (item_id, position, img) VALUES ($1, $2, $3)`
	for i, p := range pictures {
		if _, err := r.db.ExecContext(ctx, query, itemID, i, p.Img); err != nil {
			return fmt.Errorf("db error: %w", err)
		}
	}
	return nil
}

func (r *PostgresRepository) selectPictures(ctx context.Context, itemID string) ([]models.Picture, error) {
	query :=
		`SELECT img FROM item_pictures
		 WHERE item_id = $1
		 ORDER BY position
		 `
	rows, err := r.db.QueryContext(ctx, query, itemID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []models.Picture
	for rows.Next() {
		var p models.Picture
		if err := rows.Scan(&p.Img); err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// selectMany runs an item query and then one picture query scoped by
// picFilter, which must reference the same placeholders as the item query.
func (r *PostgresRepository) selectMany(ctx context.Context, query string, picFilter string, args ...any) ([]*models.Item, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Item
	byID := map[string]*models.Item{}
	for rows.Next() {
		var item models.Item
		if err := rows.Scan(
			&item.ID, &item.Name, &item.Description, &item.Question, &item.Type,
			&item.CreatedBy, &item.CreatedAt, &item.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, &item)
		byID[item.ID] = &item
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(result) == 0 {
		return result, nil
	}

	// one extra query for the matching pictures instead of one per item
	picQuery :=
		`SELECT p.item_id, p.img FROM item_pictures p
		 JOIN items i ON i.id = p.item_id
		 ` + picFilter + `
		 ORDER BY p.item_id, p.position
		 `
	picRows, err := r.db.QueryContext(ctx, picQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer picRows.Close()

	for picRows.Next() {
		var itemID string
		var p models.Picture
		if err := picRows.Scan(&itemID, &p.Img); err != nil {
			return nil, err
		}
		if item, ok := byID[itemID]; ok {
			item.Pictures = append(item.Pictures, p)
		}
	}
	if err := picRows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

func oneRowAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}
