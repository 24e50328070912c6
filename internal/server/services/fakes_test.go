package services

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/gophshare/internal/access"
	"github.com/dmitrijs2005/gophshare/internal/common"
	"github.com/dmitrijs2005/gophshare/internal/dbx"
	"github.com/dmitrijs2005/gophshare/internal/server/models"
	"github.com/dmitrijs2005/gophshare/internal/server/repositories/accessrequests"
	"github.com/dmitrijs2005/gophshare/internal/server/repositories/files"
	"github.com/dmitrijs2005/gophshare/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/gophshare/internal/server/repositories/users"
)

// --- helpers ---

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

type errBoom struct{}

func (errBoom) Error() string { return "boom" }

// fakeRepoManager hands out the same in-memory repositories for any DBTX,
// so transactional code paths see their own writes.
type fakeRepoManager struct {
	users    *fakeUsersRepo
	tokens   *fakeRefreshRepo
	files    *fakeFilesRepo
	requests *fakeRequestsRepo
}

func newFakeRepoManager() *fakeRepoManager {
	u := &fakeUsersRepo{byID: map[int64]*models.User{}}
	f := &fakeFilesRepo{users: u, byID: map[int64]*models.File{}}
	return &fakeRepoManager{
		users:    u,
		tokens:   &fakeRefreshRepo{byToken: map[string]*models.RefreshToken{}},
		files:    f,
		requests: &fakeRequestsRepo{users: u, files: f, byID: map[int64]*models.AccessRequest{}},
	}
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error    { return nil }
func (m *fakeRepoManager) Users(dbx.DBTX) users.Repository                 { return m.users }
func (m *fakeRepoManager) RefreshTokens(dbx.DBTX) refreshtokens.Repository { return m.tokens }
func (m *fakeRepoManager) Files(dbx.DBTX) files.Repository                 { return m.files }
func (m *fakeRepoManager) AccessRequests(dbx.DBTX) accessrequests.Repository {
	return m.requests
}

// addUser seeds a user without going through Register.
func (m *fakeRepoManager) addUser(email string) *models.User {
	u, _ := m.users.Create(context.Background(), &models.User{Email: email, FirstName: "F" + email, LastName: "L"})
	return u
}

func (m *fakeRepoManager) addFile(owner *models.User, name string, public bool) *models.File {
	f, _ := m.files.Create(context.Background(), &models.File{
		OwnerID: owner.ID, Name: name, Type: "text/plain", Size: 10, StorageKey: "k/" + name, Public: public,
	})
	return f
}

// --- users ---

type fakeUsersRepo struct {
	mu     sync.Mutex
	byID   map[int64]*models.User
	nextID int64
	getErr error
}

func (f *fakeUsersRepo) Create(_ context.Context, u *models.User) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, x := range f.byID {
		if x.Email == u.Email {
			return nil, common.ErrorConflict
		}
	}
	f.nextID++
	c := *u
	c.ID = f.nextID
	c.CreatedAt = time.Now()
	f.byID[c.ID] = &c
	out := c
	return &out, nil
}

func (f *fakeUsersRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	for _, x := range f.byID {
		if x.Email == email {
			c := *x
			return &c, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeUsersRepo) GetByID(_ context.Context, id int64) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.get(id)
}

func (f *fakeUsersRepo) get(id int64) (*models.User, error) {
	x, ok := f.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	c := *x
	return &c, nil
}

// --- refresh tokens ---

type fakeRefreshRepo struct {
	mu        sync.Mutex
	byToken   map[string]*models.RefreshToken
	createErr error
	delErr    error
}

func (f *fakeRefreshRepo) Create(_ context.Context, userID int64, token string, validity time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	f.byToken[token] = &models.RefreshToken{UserID: userID, Token: token, Expires: time.Now().Add(validity)}
	return nil
}

func (f *fakeRefreshRepo) Find(_ context.Context, token string) (*models.RefreshToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.byToken[token]
	if !ok {
		return nil, common.ErrorNotFound
	}
	c := *t
	return &c, nil
}

func (f *fakeRefreshRepo) Delete(_ context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.delErr != nil {
		return f.delErr
	}
	delete(f.byToken, token)
	return nil
}

func (f *fakeRefreshRepo) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for k, t := range f.byToken {
		if t.Expires.Before(now) {
			delete(f.byToken, k)
			n++
		}
	}
	return n, nil
}

// --- files ---

type fakeFilesRepo struct {
	mu      sync.Mutex
	users   *fakeUsersRepo
	byID    map[int64]*models.File
	nextID  int64
	listErr error
}

func (f *fakeFilesRepo) Create(_ context.Context, file *models.File) (*models.File, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	c := *file
	c.ID = f.nextID
	c.UploadedAt = time.Date(2025, 1, 1, 0, 0, int(c.ID), 0, time.UTC)
	f.byID[c.ID] = &c
	out := c
	return &out, nil
}

func (f *fakeFilesRepo) withOwner(x *models.File) *models.File {
	c := *x
	if u, err := f.users.get(c.OwnerID); err == nil {
		c.OwnerEmail, c.OwnerFirstName, c.OwnerLastName = u.Email, u.FirstName, u.LastName
	}
	return &c
}

func (f *fakeFilesRepo) GetByID(_ context.Context, id int64) (*models.File, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	x, ok := f.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return f.withOwner(x), nil
}

func (f *fakeFilesRepo) list(keep func(*models.File) bool) ([]*models.File, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []*models.File
	for _, x := range f.byID {
		if keep(x) {
			out = append(out, f.withOwner(x))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeFilesRepo) ListByOwner(_ context.Context, ownerID int64) ([]*models.File, error) {
	return f.list(func(x *models.File) bool { return x.OwnerID == ownerID })
}

func (f *fakeFilesRepo) ListPublic(context.Context) ([]*models.File, error) {
	return f.list(func(x *models.File) bool { return x.Public })
}

func (f *fakeFilesRepo) ListOthersPrivate(_ context.Context, viewerID int64) ([]*models.File, error) {
	return f.list(func(x *models.File) bool { return !x.Public && x.OwnerID != viewerID })
}

func (f *fakeFilesRepo) Delete(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[id]; !ok {
		return common.ErrorNotFound
	}
	delete(f.byID, id)
	return nil
}

// --- access requests ---

// fakeRequestsRepo enforces the same guards as the SQL: one row per
// (file, requester) and status-conditioned updates.
type fakeRequestsRepo struct {
	mu     sync.Mutex
	users  *fakeUsersRepo
	files  *fakeFilesRepo
	byID   map[int64]*models.AccessRequest
	nextID int64
}

func (f *fakeRequestsRepo) Create(_ context.Context, req *models.AccessRequest) (*models.AccessRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, x := range f.byID {
		if x.FileID == req.FileID && x.RequesterID == req.RequesterID {
			return nil, common.ErrorConflict
		}
	}
	f.nextID++
	c := *req
	c.ID = f.nextID
	c.Status = access.StatusPending
	c.RequestedAt = time.Date(2025, 2, 1, 0, 0, int(c.ID), 0, time.UTC)
	f.byID[c.ID] = &c
	out := c
	return &out, nil
}

func (f *fakeRequestsRepo) joined(x *models.AccessRequest) *models.AccessRequest {
	c := *x
	if u, err := f.users.get(c.RequesterID); err == nil {
		c.RequesterEmail, c.RequesterFirstName, c.RequesterLastName = u.Email, u.FirstName, u.LastName
	}
	if u, err := f.users.get(c.OwnerID); err == nil {
		c.OwnerEmail, c.OwnerFirstName, c.OwnerLastName = u.Email, u.FirstName, u.LastName
	}
	f.files.mu.Lock()
	if file, ok := f.files.byID[c.FileID]; ok {
		c.FileName = file.Name
	}
	f.files.mu.Unlock()
	return &c
}

func (f *fakeRequestsRepo) GetByID(_ context.Context, id int64) (*models.AccessRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	x, ok := f.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return f.joined(x), nil
}

func (f *fakeRequestsRepo) FindByFileAndRequester(_ context.Context, fileID, requesterID int64) (*models.AccessRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, x := range f.byID {
		if x.FileID == fileID && x.RequesterID == requesterID {
			return f.joined(x), nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeRequestsRepo) list(keep func(*models.AccessRequest) bool) ([]*models.AccessRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.AccessRequest
	for _, x := range f.byID {
		if keep(x) {
			out = append(out, f.joined(x))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (f *fakeRequestsRepo) ListByOwner(_ context.Context, ownerID int64) ([]*models.AccessRequest, error) {
	return f.list(func(x *models.AccessRequest) bool { return x.OwnerID == ownerID })
}

func (f *fakeRequestsRepo) ListByRequester(_ context.Context, requesterID int64) ([]*models.AccessRequest, error) {
	return f.list(func(x *models.AccessRequest) bool { return x.RequesterID == requesterID })
}

func (f *fakeRequestsRepo) UpdateStatus(_ context.Context, id int64, status access.RequestStatus, respondedAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	x, ok := f.byID[id]
	if !ok || x.Status != access.StatusPending {
		return common.ErrorConflict
	}
	x.Status = status
	x.RespondedAt = &respondedAt
	return nil
}

func (f *fakeRequestsRepo) Reopen(_ context.Context, id int64, message string, requestedAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	x, ok := f.byID[id]
	if !ok || x.Status != access.StatusRejected {
		return common.ErrorConflict
	}
	x.Status = access.StatusPending
	x.Message = message
	x.RequestedAt = requestedAt
	x.RespondedAt = nil
	return nil
}

func (f *fakeRequestsRepo) Delete(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	x, ok := f.byID[id]
	if !ok || x.Status != access.StatusPending {
		return common.ErrorConflict
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeRequestsRepo) DeleteByFile(_ context.Context, fileID int64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for id, x := range f.byID {
		if x.FileID == fileID {
			delete(f.byID, id)
			n++
		}
	}
	return n, nil
}

// --- storage ---

type fakeStorage struct {
	mu        sync.Mutex
	puts      []string
	gets      []string
	deleted   []string
	putErr    error
	getErr    error
	deleteErr error
}

func (f *fakeStorage) PresignPut(_ context.Context, key, contentType string) (string, time.Time, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.putErr != nil {
		return "", time.Time{}, f.putErr
	}
	f.puts = append(f.puts, key)
	return "https://s3.local/put/" + key + "?ct=" + contentType, time.Unix(100, 0), nil
}

func (f *fakeStorage) PresignGet(_ context.Context, key, fileName string) (string, time.Time, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return "", time.Time{}, f.getErr
	}
	f.gets = append(f.gets, key)
	return "https://s3.local/get/" + key, time.Unix(200, 0), nil
}

func (f *fakeStorage) DeleteObject(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, key)
	return f.deleteErr
}

func sessionOf(u *models.User) access.Session {
	return access.Session{UserID: u.ID, Email: u.Email}
}
