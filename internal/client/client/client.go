package client

import (
	"context"

	"github.com/dmitrijs2005/gophshare/internal/access"
	"github.com/dmitrijs2005/gophshare/internal/client/models"
)

// Client is the backend API as seen by the CLI. The session arguments of the
// embedded interfaces are informational: the server identifies the caller by
// the bearer token.
type Client interface {
	access.RequestDirectory
	access.FileCatalog

	Register(ctx context.Context, email, firstName, lastName, password string) (*models.User, error)
	Login(ctx context.Context, email, password string) (*models.LoginResult, error)
	Refresh(ctx context.Context) error
	Me(ctx context.Context) (*models.User, error)
	Ping(ctx context.Context) error

	CreateUpload(ctx context.Context, f models.NewFile) (*models.Upload, error)
	DownloadURL(ctx context.Context, fileID int64) (*models.Download, error)
	QuickCheck(ctx context.Context, fileID int64) (*models.QuickCheck, error)
	DeleteFile(ctx context.Context, fileID int64) error

	SetTokens(t models.TokenPair)
	Tokens() models.TokenPair
	// OnTokens is called with every pair received from the server.
	OnTokens(fn func(models.TokenPair))
	Close() error
}
