// Package accessrequests stores access requests. Every state change is a
// guarded UPDATE or DELETE, so two racing writers cannot both succeed: the
// loser affects no rows and gets common.ErrorConflict.
package accessrequests

import (
	"context"
	"time"

	"github.com/dmitrijs2005/gophshare/internal/access"
	"github.com/dmitrijs2005/gophshare/internal/server/models"
)

type Repository interface {
	// Create inserts a PENDING request. A second request for the same
	// (file, requester) pair yields common.ErrorConflict.
	Create(ctx context.Context, req *models.AccessRequest) (*models.AccessRequest, error)
	GetByID(ctx context.Context, id int64) (*models.AccessRequest, error)
	FindByFileAndRequester(ctx context.Context, fileID, requesterID int64) (*models.AccessRequest, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]*models.AccessRequest, error)
	ListByRequester(ctx context.Context, requesterID int64) ([]*models.AccessRequest, error)
	// UpdateStatus moves a PENDING request to status.
	UpdateStatus(ctx context.Context, id int64, status access.RequestStatus, respondedAt time.Time) error
	// Reopen turns a REJECTED request back into PENDING with a new message.
	Reopen(ctx context.Context, id int64, message string, requestedAt time.Time) error
	// Delete removes a PENDING request.
	Delete(ctx context.Context, id int64) error
	DeleteByFile(ctx context.Context, fileID int64) (int64, error)
}
