package metadata

import (
	"context"
)

// Keys persisted by the client between runs.
const (
	KeyEmail        = "email"
	KeyUserID       = "user_id"
	KeyFirstName    = "first_name"
	KeyRefreshToken = "refresh_token"
	KeyServerURL    = "server_url"
)

// Repository is a small key/value store kept in the local database.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) (map[string][]byte, error)
	Clear(ctx context.Context) error
}
