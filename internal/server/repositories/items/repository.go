package items

import (
	"context"

	"github.com/dkarklins/tradepost/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, item *models.Item) (*models.Item, error)
	GetByID(ctx context.Context, id string) (*models.Item, error)
	SelectAll(ctx context.Context) ([]*models.Item, error)
	SelectByCreator(ctx context.Context, userID string) ([]*models.Item, error)
	Update(ctx context.Context, item *models.Item) error
	ReplacePictures(ctx context.Context, itemID string, pictures []models.Picture) error
	Delete(ctx context.Context, id string) error
}
