package transfers

import (
	"context"

	"github.com/dmitrijs2005/gophshare/internal/client/models"
)

type Repository interface {
	// Create stores a pending transfer and returns its id.
	Create(ctx context.Context, t *models.Transfer) (int64, error)

	MarkCompleted(ctx context.Context, id int64, size int64) error

	// MarkFailed records the failure reason.
	MarkFailed(ctx context.Context, id int64, reason string) error

	// ListRecent returns the newest transfers first.
	ListRecent(ctx context.Context, limit int) ([]*models.Transfer, error)

	ListPending(ctx context.Context) ([]*models.Transfer, error)
}
