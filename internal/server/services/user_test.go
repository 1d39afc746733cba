package services

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dkarklins/tradepost/internal/common"
	"github.com/dkarklins/tradepost/internal/dbx"
	"github.com/dkarklins/tradepost/internal/server/auth"
	"github.com/dkarklins/tradepost/internal/server/config"
	"github.com/dkarklins/tradepost/internal/server/models"
	answersrepo "github.com/dkarklins/tradepost/internal/server/repositories/answers"
	itemsrepo "github.com/dkarklins/tradepost/internal/server/repositories/items"
	usersrepo "github.com/dkarklins/tradepost/internal/server/repositories/users"
	"golang.org/x/crypto/bcrypt"
)

// --- helpers ---

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return db, mock
}

func testServerConfig() *config.Config {
	return &config.Config{
		SecretKey:             "k",
		TokenValidityDuration: time.Hour,
		EnforceOwnership:      true,
	}
}

type fakeUsersRepo struct {
	createOut *models.User
	createErr error

	byEmailOut *models.User
	byEmailErr error

	byIDOut *models.User
	byIDErr error
}

func (f *fakeUsersRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	if f.createOut != nil {
		return f.createOut, nil
	}
	u.ID = "u-new"
	return u, nil
}

func (f *fakeUsersRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if f.byEmailErr != nil {
		return nil, f.byEmailErr
	}
	return f.byEmailOut, nil
}

func (f *fakeUsersRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	if f.byIDErr != nil {
		return nil, f.byIDErr
	}
	return f.byIDOut, nil
}

type fakeRepoManager struct {
	u *fakeUsersRepo
	i *fakeItemsRepo
	a *fakeAnswersRepo
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Users(db dbx.DBTX) usersrepo.Repository      { return m.u }
func (m *fakeRepoManager) Items(db dbx.DBTX) itemsrepo.Repository      { return m.i }
func (m *fakeRepoManager) Answers(db dbx.DBTX) answersrepo.Repository  { return m.a }

func mustHash(t *testing.T, password string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt error: %v", err)
	}
	return string(h)
}

// --- signup ---

func TestSignup_Success(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	rm := &fakeRepoManager{u: &fakeUsersRepo{byEmailErr: common.ErrorNotFound}}
	s := NewUserService(db, rm, testServerConfig())

	got, err := s.Signup(context.Background(), &models.User{FirstName: "Alice", Email: "a@x.com"}, "p1")
	if err != nil {
		t.Fatalf("Signup error: %v", err)
	}
	if got.ID != "u-new" {
		t.Fatalf("unexpected user: %+v", got)
	}
	if got.PasswordHash == "" || got.PasswordHash == "p1" {
		t.Fatalf("password not hashed: %q", got.PasswordHash)
	}
}

func TestSignup_DuplicateEmailPrecheck(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	rm := &fakeRepoManager{u: &fakeUsersRepo{byEmailOut: &models.User{ID: "u-1", Email: "a@x.com"}}}
	s := NewUserService(db, rm, testServerConfig())

	_, err := s.Signup(context.Background(), &models.User{FirstName: "Alice", Email: "a@x.com"}, "p1")
	if !errors.Is(err, common.ErrEmailExists) {
		t.Fatalf("want ErrEmailExists, got %v", err)
	}
}

func TestSignup_DuplicateEmailAtStore(t *testing.T) {
	// The pre-check misses the concurrent duplicate; the unique index catches it.
	db, _ := newSQLMockDB(t)
	defer db.Close()

	rm := &fakeRepoManager{u: &fakeUsersRepo{
		byEmailErr: common.ErrorNotFound,
		createErr:  common.ErrEmailExists,
	}}
	s := NewUserService(db, rm, testServerConfig())

	_, err := s.Signup(context.Background(), &models.User{FirstName: "Alice", Email: "a@x.com"}, "p1")
	if !errors.Is(err, common.ErrEmailExists) {
		t.Fatalf("want ErrEmailExists, got %v", err)
	}
}

func TestSignup_StoreError(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	rm := &fakeRepoManager{u: &fakeUsersRepo{byEmailErr: errors.New("db down")}}
	s := NewUserService(db, rm, testServerConfig())

	_, err := s.Signup(context.Background(), &models.User{FirstName: "Alice", Email: "a@x.com"}, "p1")
	if !errors.Is(err, common.ErrorInternal) {
		t.Fatalf("want ErrorInternal, got %v", err)
	}
}

// --- login ---

func TestLogin_Success(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	rm := &fakeRepoManager{u: &fakeUsersRepo{byEmailOut: &models.User{
		ID: "u-1", Email: "a@x.com", PasswordHash: mustHash(t, "p1"),
	}}}
	s := NewUserService(db, rm, testServerConfig())

	got, err := s.Login(context.Background(), "a@x.com", "p1")
	if err != nil {
		t.Fatalf("Login error: %v", err)
	}
	if got.ID != "u-1" {
		t.Fatalf("unexpected user: %+v", got)
	}
}

func TestLogin_UnknownEmail(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	rm := &fakeRepoManager{u: &fakeUsersRepo{byEmailErr: common.ErrorNotFound}}
	s := NewUserService(db, rm, testServerConfig())

	_, err := s.Login(context.Background(), "ghost@x.com", "p1")
	if !errors.Is(err, common.ErrUnknownEmail) {
		t.Fatalf("want ErrUnknownEmail, got %v", err)
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	rm := &fakeRepoManager{u: &fakeUsersRepo{byEmailOut: &models.User{
		ID: "u-1", Email: "a@x.com", PasswordHash: mustHash(t, "p1"),
	}}}
	s := NewUserService(db, rm, testServerConfig())

	_, err := s.Login(context.Background(), "a@x.com", "wrong")
	if !errors.Is(err, common.ErrBadCredentials) {
		t.Fatalf("want ErrBadCredentials, got %v", err)
	}
}

// --- tokens ---

func TestIssueToken_VerifiesToSameUser(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	s := NewUserService(db, &fakeRepoManager{}, testServerConfig())

	tok, err := s.IssueToken("u-1")
	if err != nil {
		t.Fatalf("IssueToken error: %v", err)
	}

	userID, err := auth.GetUserIDFromToken(tok, []byte("k"))
	if err != nil {
		t.Fatalf("GetUserIDFromToken error: %v", err)
	}
	if userID != "u-1" {
		t.Fatalf("userID mismatch: got %q", userID)
	}
}

// --- lookups ---

func TestGetNumber(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	rm := &fakeRepoManager{u: &fakeUsersRepo{byIDOut: &models.User{ID: "u-1", Number: "555-0101"}}}
	s := NewUserService(db, rm, testServerConfig())

	num, err := s.GetNumber(context.Background(), "u-1")
	if err != nil {
		t.Fatalf("GetNumber error: %v", err)
	}
	if num != "555-0101" {
		t.Fatalf("unexpected number: %q", num)
	}
}

func TestGetByID_NotFound(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	rm := &fakeRepoManager{u: &fakeUsersRepo{byIDErr: common.ErrorNotFound}}
	s := NewUserService(db, rm, testServerConfig())

	_, err := s.GetByID(context.Background(), "ghost")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want ErrorNotFound, got %v", err)
	}
}
