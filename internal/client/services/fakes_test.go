package services

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/gophshare/internal/access"
	"github.com/dmitrijs2005/gophshare/internal/client/client"
	"github.com/dmitrijs2005/gophshare/internal/client/models"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := client.InitDatabase(context.Background(), filepath.Join(t.TempDir(), "client.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// fakeClient implements client.Client for service tests.
type fakeClient struct {
	client.Client

	tokens   models.TokenPair
	onTokens func(models.TokenPair)

	RegisterRet *models.User
	RegisterErr error

	LoginRet *models.LoginResult
	LoginErr error

	RefreshPair models.TokenPair
	RefreshErr  error
	refreshes   int

	PingErr error
	closed  bool

	UploadRet *models.Upload
	UploadErr error
	lastNew   models.NewFile

	DownloadRet *models.Download
	DownloadErr error

	deleted []int64
}

func (f *fakeClient) SetTokens(t models.TokenPair)        { f.tokens = t }
func (f *fakeClient) Tokens() models.TokenPair            { return f.tokens }
func (f *fakeClient) OnTokens(fn func(models.TokenPair)) { f.onTokens = fn }
func (f *fakeClient) Close() error                        { f.closed = true; return nil }
func (f *fakeClient) Ping(context.Context) error          { return f.PingErr }

func (f *fakeClient) Register(_ context.Context, email, first, last, _ string) (*models.User, error) {
	if f.RegisterErr != nil {
		return nil, f.RegisterErr
	}
	if f.RegisterRet != nil {
		return f.RegisterRet, nil
	}
	return &models.User{ID: 1, Email: email, FirstName: first, LastName: last}, nil
}

func (f *fakeClient) Login(context.Context, string, string) (*models.LoginResult, error) {
	if f.LoginErr != nil {
		return nil, f.LoginErr
	}
	f.tokens = f.LoginRet.TokenPair
	return f.LoginRet, nil
}

func (f *fakeClient) Refresh(context.Context) error {
	f.refreshes++
	if f.RefreshErr != nil {
		return f.RefreshErr
	}
	f.tokens = f.RefreshPair
	if f.onTokens != nil {
		f.onTokens(f.RefreshPair)
	}
	return nil
}

func (f *fakeClient) CreateUpload(_ context.Context, nf models.NewFile) (*models.Upload, error) {
	f.lastNew = nf
	return f.UploadRet, f.UploadErr
}

func (f *fakeClient) DownloadURL(context.Context, int64) (*models.Download, error) {
	return f.DownloadRet, f.DownloadErr
}

func (f *fakeClient) DeleteFile(_ context.Context, id int64) error {
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeClient) ListOwned(context.Context, access.Session) ([]access.File, error) {
	return []access.File{{ID: 1, Name: "mine.txt"}}, nil
}
