package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dkarklins/tradepost/internal/common"
	"github.com/dkarklins/tradepost/internal/dbx"
	"github.com/dkarklins/tradepost/internal/server/config"
	"github.com/dkarklins/tradepost/internal/server/models"
	"github.com/dkarklins/tradepost/internal/server/repositories/repomanager"
)

// ItemService orchestrates item and answer access: presence validation, the
// post-capability gate, ownership checks, and the item/answer cascade delete.
type ItemService struct {
	db               *sql.DB
	repomanager      repomanager.RepositoryManager
	policy           PostPolicy
	enforceOwnership bool
}

func NewItemService(db *sql.DB, m repomanager.RepositoryManager, policy PostPolicy, cfg *config.Config) *ItemService {
	return &ItemService{
		db:               db,
		repomanager:      m,
		policy:           policy,
		enforceOwnership: cfg.EnforceOwnership,
	}
}

// CreateItem persists a listing for user. Pictures have already been turned
// into storage keys by the upload adapter. The item row and its picture rows
// land in one transaction.
func (s *ItemService) CreateItem(ctx context.Context, user *models.User, item *models.Item) (*models.Item, error) {
	if !s.policy.MayPost(ctx, user) {
		return nil, common.ErrorForbidden
	}

	if item.Name == "" || item.Description == "" || item.Type == "" {
		return nil, common.ErrorValidation
	}

	item.CreatedBy = user.ID

	var created *models.Item
	if err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		var txErr error
		created, txErr = s.repomanager.Items(tx).Create(ctx, item)
		return txErr
	}); err != nil {
		return nil, fmt.Errorf("error creating item: %w", err)
	}
	return created, nil
}

// ListItems returns every listing. No pagination, mirroring the legacy API.
func (s *ItemService) ListItems(ctx context.Context) ([]*models.Item, error) {
	return s.repomanager.Items(s.db).SelectAll(ctx)
}

// GetItemDetail returns the item plus exactly its own answers.
func (s *ItemService) GetItemDetail(ctx context.Context, id string) (*models.Item, []*models.Answer, error) {
	item, err := s.repomanager.Items(s.db).GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	answers, err := s.repomanager.Answers(s.db).SelectByItem(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	return item, answers, nil
}

// ItemUpdate carries a partial edit. Nil scalar fields are left untouched;
// Pictures is applied only when ReplacePictures is set.
type ItemUpdate struct {
	ID              string
	Name            *string
	Description     *string
	Question        *string
	Type            *string
	Pictures        []models.Picture
	ReplacePictures bool
}

// EditItem overlays the supplied fields onto the stored item, so omitted
// fields keep their values. requesterID is consulted only while ownership
// enforcement is on; legacy mode edits with an empty requester.
func (s *ItemService) EditItem(ctx context.Context, requesterID string, upd ItemUpdate) (*models.Item, error) {
	if err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Items(tx)

		current, err := repo.GetByID(ctx, upd.ID)
		if err != nil {
			return err
		}
		if s.enforceOwnership && current.CreatedBy != requesterID {
			return common.ErrorForbidden
		}

		if upd.Name != nil {
			current.Name = *upd.Name
		}
		if upd.Description != nil {
			current.Description = *upd.Description
		}
		if upd.Question != nil {
			current.Question = *upd.Question
		}
		if upd.Type != nil {
			current.Type = *upd.Type
		}

		if err := repo.Update(ctx, current); err != nil {
			return err
		}
		if upd.ReplacePictures {
			if err := repo.ReplacePictures(ctx, upd.ID, upd.Pictures); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		return nil, err
	}

	return s.repomanager.Items(s.db).GetByID(ctx, upd.ID)
}

// DeleteItem removes the item and cascades to its answers inside one
// transaction, so a cascade failure rolls the item delete back instead of
// leaving orphaned answers behind a success response.
func (s *ItemService) DeleteItem(ctx context.Context, requesterID string, id string) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		itemRepo := s.repomanager.Items(tx)

		current, err := itemRepo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if s.enforceOwnership && current.CreatedBy != requesterID {
			return common.ErrorForbidden
		}

		if err := itemRepo.Delete(ctx, id); err != nil {
			return err
		}
		if err := s.repomanager.Answers(tx).DeleteByItem(ctx, id); err != nil {
			return fmt.Errorf("answer cascade failed: %w", err)
		}
		return nil
	})
}

// SubmitAnswer creates an answer after verifying the parent item exists.
func (s *ItemService) SubmitAnswer(ctx context.Context, answer *models.Answer) (*models.Answer, error) {
	if _, err := s.repomanager.Items(s.db).GetByID(ctx, answer.ItemID); err != nil {
		return nil, err
	}

	created, err := s.repomanager.Answers(s.db).Create(ctx, answer)
	if err != nil {
		return nil, fmt.Errorf("error creating answer: %w", err)
	}
	return created, nil
}

// ConfirmResponse sets the confirmation state of one answer.
func (s *ItemService) ConfirmResponse(ctx context.Context, id string, response string) error {
	if err := s.repomanager.Answers(s.db).SetResponse(ctx, id, response); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return err
		}
		return fmt.Errorf("error confirming response: %w", err)
	}
	return nil
}

// MyResponses lists answers authored by userID.
func (s *ItemService) MyResponses(ctx context.Context, userID string) ([]*models.Answer, error) {
	return s.repomanager.Answers(s.db).SelectByAuthor(ctx, userID)
}

// MyListings lists items created by userID.
func (s *ItemService) MyListings(ctx context.Context, userID string) ([]*models.Item, error) {
	return s.repomanager.Items(s.db).SelectByCreator(ctx, userID)
}
