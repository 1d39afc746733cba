// Package services contains server-side business logic. This file implements
// UserService, which handles signup, login, and issuing session tokens.
package services

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/dkarklins/tradepost/internal/common"
	"github.com/dkarklins/tradepost/internal/server/auth"
	"github.com/dkarklins/tradepost/internal/server/config"
	"github.com/dkarklins/tradepost/internal/server/models"
	"github.com/dkarklins/tradepost/internal/server/repositories/repomanager"
	"golang.org/x/crypto/bcrypt"
)

// bcryptCost matches the cost the legacy API hashed with, so existing hashes
// keep verifying.
const bcryptCost = 10

// UserService provides authentication-related operations:
// - Signup: create users (bcrypt-hashed password, unique email)
// - Login: verify credentials
// - GetByID / GetNumber: identity lookups for the session guard and handlers
type UserService struct {
	db                    *sql.DB
	repomanager           repomanager.RepositoryManager
	jwtSecret             []byte
	tokenValidityDuration time.Duration
}

// NewUserService constructs a UserService using repositories and server config.
func NewUserService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *UserService {
	return &UserService{
		db:                    db,
		repomanager:           m,
		jwtSecret:             []byte(cfg.SecretKey),
		tokenValidityDuration: cfg.TokenValidityDuration,
	}
}

// Signup hashes the password and creates the user. The email pre-check keeps
// the common duplicate case cheap; the unique index behind repo.Create closes
// the check-then-act window, so a concurrent duplicate still surfaces as
// common.ErrEmailExists.
func (s *UserService) Signup(ctx context.Context, user *models.User, password string) (*models.User, error) {
	repo := s.repomanager.Users(s.db)

	_, err := repo.GetByEmail(ctx, user.Email)
	if err == nil {
		return nil, common.ErrEmailExists
	}
	if !errors.Is(err, common.ErrorNotFound) {
		return nil, common.ErrorInternal
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, common.ErrorInternal
	}
	user.PasswordHash = string(hash)

	created, err := repo.Create(ctx, user)
	if err != nil {
		if errors.Is(err, common.ErrEmailExists) {
			return nil, common.ErrEmailExists
		}
		return nil, common.ErrorInternal
	}
	return created, nil
}

// Login verifies the presented password against the stored bcrypt hash.
// An unknown email and a wrong password are reported distinctly, matching
// the legacy API responses.
func (s *UserService) Login(ctx context.Context, email string, password string) (*models.User, error) {
	repo := s.repomanager.Users(s.db)

	user, err := repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrUnknownEmail
		}
		return nil, common.ErrorInternal
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, common.ErrBadCredentials
	}

	return user, nil
}

// GetByID resolves a user by id; the session guard uses it to reject tokens
// referencing deleted accounts.
func (s *UserService) GetByID(ctx context.Context, id string) (*models.User, error) {
	user, err := s.repomanager.Users(s.db).GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, common.ErrorInternal
	}
	return user, nil
}

// GetNumber returns a user's phone number.
func (s *UserService) GetNumber(ctx context.Context, id string) (string, error) {
	user, err := s.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	return user.Number, nil
}

// IssueToken mints a session token for userID.
func (s *UserService) IssueToken(userID string) (string, error) {
	return auth.GenerateToken(userID, s.jwtSecret, s.tokenValidityDuration)
}
