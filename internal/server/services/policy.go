package services

import (
	"context"

	"github.com/dkarklins/tradepost/internal/server/models"
)

// PostPolicy is the external capability gate consulted before an
// authenticated user may create an item.
type PostPolicy interface {
	MayPost(ctx context.Context, user *models.User) bool
}

// AllowAllPolicy admits every authenticated user.
type AllowAllPolicy struct{}

func (AllowAllPolicy) MayPost(ctx context.Context, user *models.User) bool { return true }
