package files

import (
	"context"

	"github.com/dmitrijs2005/gophshare/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, file *models.File) (*models.File, error)
	GetByID(ctx context.Context, id int64) (*models.File, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]*models.File, error)
	ListPublic(ctx context.Context) ([]*models.File, error)
	ListOthersPrivate(ctx context.Context, viewerID int64) ([]*models.File, error)
	Delete(ctx context.Context, id int64) error
}
