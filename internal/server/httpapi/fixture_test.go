package httpapi

import (
	"context"
	"database/sql"
	"io"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dkarklins/tradepost/internal/common"
	"github.com/dkarklins/tradepost/internal/dbx"
	"github.com/dkarklins/tradepost/internal/logging"
	"github.com/dkarklins/tradepost/internal/server/config"
	"github.com/dkarklins/tradepost/internal/server/models"
	answersrepo "github.com/dkarklins/tradepost/internal/server/repositories/answers"
	itemsrepo "github.com/dkarklins/tradepost/internal/server/repositories/items"
	"github.com/dkarklins/tradepost/internal/server/repositories/repomanager"
	usersrepo "github.com/dkarklins/tradepost/internal/server/repositories/users"
	"github.com/dkarklins/tradepost/internal/server/services"
)

func notFound() error { return common.ErrorNotFound }

// ---- test logger ----

type nopLogger struct{}

func (nopLogger) Info(ctx context.Context, msg string, args ...any)  {}
func (nopLogger) Warn(ctx context.Context, msg string, args ...any)  {}
func (nopLogger) Error(ctx context.Context, msg string, args ...any) {}
func (nopLogger) With(args ...any) logging.Logger                    { return nopLogger{} }

// ---- fake repositories ----

type fakeUsersRepo struct {
	byEmail map[string]*models.User
	byID    map[string]*models.User
	created []*models.User
	err     error
}

func newFakeUsersRepo() *fakeUsersRepo {
	return &fakeUsersRepo{byEmail: map[string]*models.User{}, byID: map[string]*models.User{}}
}

func (f *fakeUsersRepo) add(u *models.User) {
	f.byEmail[u.Email] = u
	f.byID[u.ID] = u
}

func (f *fakeUsersRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	u.ID = "u-created"
	f.add(u)
	f.created = append(f.created, u)
	return u, nil
}

func (f *fakeUsersRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if u, ok := f.byEmail[email]; ok {
		return u, nil
	}
	return nil, notFound()
}

func (f *fakeUsersRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	if u, ok := f.byID[id]; ok {
		return u, nil
	}
	return nil, notFound()
}

type fakeItemsRepo struct {
	byID    map[string]*models.Item
	all     []*models.Item
	deleted []string
}

func newFakeItemsRepo() *fakeItemsRepo {
	return &fakeItemsRepo{byID: map[string]*models.Item{}}
}

func (f *fakeItemsRepo) add(i *models.Item) {
	f.byID[i.ID] = i
	f.all = append(f.all, i)
}

func (f *fakeItemsRepo) Create(ctx context.Context, item *models.Item) (*models.Item, error) {
	item.ID = "i-created"
	f.add(item)
	return item, nil
}

func (f *fakeItemsRepo) GetByID(ctx context.Context, id string) (*models.Item, error) {
	if i, ok := f.byID[id]; ok {
		return i, nil
	}
	return nil, notFound()
}

func (f *fakeItemsRepo) SelectAll(ctx context.Context) ([]*models.Item, error) { return f.all, nil }

func (f *fakeItemsRepo) SelectByCreator(ctx context.Context, userID string) ([]*models.Item, error) {
	var result []*models.Item
	for _, i := range f.all {
		if i.CreatedBy == userID {
			result = append(result, i)
		}
	}
	return result, nil
}

func (f *fakeItemsRepo) Update(ctx context.Context, item *models.Item) error {
	if _, ok := f.byID[item.ID]; !ok {
		return notFound()
	}
	f.byID[item.ID] = item
	return nil
}

func (f *fakeItemsRepo) ReplacePictures(ctx context.Context, itemID string, pictures []models.Picture) error {
	if i, ok := f.byID[itemID]; ok {
		i.Pictures = pictures
	}
	return nil
}

func (f *fakeItemsRepo) Delete(ctx context.Context, id string) error {
	if _, ok := f.byID[id]; !ok {
		return notFound()
	}
	delete(f.byID, id)
	f.deleted = append(f.deleted, id)
	return nil
}

type fakeAnswersRepo struct {
	byItem   map[string][]*models.Answer
	byID     map[string]*models.Answer
	byAuthor map[string][]*models.Answer
}

func newFakeAnswersRepo() *fakeAnswersRepo {
	return &fakeAnswersRepo{
		byItem:   map[string][]*models.Answer{},
		byID:     map[string]*models.Answer{},
		byAuthor: map[string][]*models.Answer{},
	}
}

func (f *fakeAnswersRepo) add(a *models.Answer) {
	f.byItem[a.ItemID] = append(f.byItem[a.ItemID], a)
	f.byID[a.ID] = a
	f.byAuthor[a.GivenBy] = append(f.byAuthor[a.GivenBy], a)
}

func (f *fakeAnswersRepo) Create(ctx context.Context, a *models.Answer) (*models.Answer, error) {
	a.ID = "a-created"
	f.add(a)
	return a, nil
}

func (f *fakeAnswersRepo) SelectByItem(ctx context.Context, itemID string) ([]*models.Answer, error) {
	return f.byItem[itemID], nil
}

func (f *fakeAnswersRepo) SelectByAuthor(ctx context.Context, userID string) ([]*models.Answer, error) {
	return f.byAuthor[userID], nil
}

func (f *fakeAnswersRepo) SetResponse(ctx context.Context, id string, response string) error {
	a, ok := f.byID[id]
	if !ok {
		return notFound()
	}
	a.Response = response
	return nil
}

func (f *fakeAnswersRepo) DeleteByItem(ctx context.Context, itemID string) error {
	delete(f.byItem, itemID)
	return nil
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

var _ repomanager.RepositoryManager = (*fakeRepoManager)(nil)

// ---- fake uploader ----

type fakeUploader struct {
	keys []string
}

func (f *fakeUploader) Save(ctx context.Context, filename string, data io.Reader) (string, error) {
	key := "stored/" + filename
	f.keys = append(f.keys, key)
	return key, nil
}

// ---- fixture ----

type fixture struct {
	srv      *HTTPServer
	cfg      *config.Config
	db       *sql.DB
	mock     sqlmock.Sqlmock
	users    *fakeUsersRepo
	items    *fakeItemsRepo
	answers  *fakeAnswersRepo
	uploader *fakeUploader
}

func newFixture(t *testing.T, mutate ...func(cfg *config.Config)) *fixture {
	t.Helper()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	cfg := &config.Config{
		EndpointAddr:          ":0",
		SecretKey:             "test-secret",
		TokenValidityDuration: time.Hour,
		DevMode:               true,
		EnforceOwnership:      true,
	}
	for _, m := range mutate {
		m(cfg)
	}

	f := &fixture{
		cfg:      cfg,
		db:       db,
		mock:     mock,
		users:    newFakeUsersRepo(),
		items:    newFakeItemsRepo(),
		answers:  newFakeAnswersRepo(),
		uploader: &fakeUploader{},
	}

	rm := &fakeRepoManager{u: f.users, i: f.items, a: f.answers}
	us := services.NewUserService(db, rm, cfg)
	is := services.NewItemService(db, rm, services.AllowAllPolicy{}, cfg)
	f.srv = NewHTTPServer(cfg, nopLogger{}, us, is, f.uploader)

	return f
}
