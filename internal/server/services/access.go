package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dmitrijs2005/gophshare/internal/access"
	"github.com/dmitrijs2005/gophshare/internal/common"
	"github.com/dmitrijs2005/gophshare/internal/logging"
	"github.com/dmitrijs2005/gophshare/internal/server/metrics"
	"github.com/dmitrijs2005/gophshare/internal/server/models"
	"github.com/dmitrijs2005/gophshare/internal/server/repositories/accessrequests"
	"github.com/dmitrijs2005/gophshare/internal/server/repositories/repomanager"
)

// MaxMessageLength bounds the note a requester attaches, in characters.
const MaxMessageLength = 1000

// AccessService is the authoritative access.RequestDirectory. The session
// passed to each method is the authenticated caller.
type AccessService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	policy      access.Policy
	metrics     *metrics.Metrics
	log         logging.Logger
	now         func() time.Time
}

var _ access.RequestDirectory = (*AccessService)(nil)

func NewAccessService(db *sql.DB, m repomanager.RepositoryManager, policy access.Policy,
	mt *metrics.Metrics, log logging.Logger) *AccessService {
	if log == nil {
		log = logging.Nop()
	}
	return &AccessService{
		db:          db,
		repomanager: m,
		policy:      policy,
		metrics:     mt,
		log:         log.With("component", "access_service"),
		now:         time.Now,
	}
}

// CreateRequest asks the owner of fileID for access. A request the owner
// rejected earlier is reopened when the policy allows it.
func (s *AccessService) CreateRequest(ctx context.Context, sess access.Session, fileID int64, message string) (*access.AccessRequest, error) {
	message = strings.TrimSpace(message)
	if utf8.RuneCountInString(message) > MaxMessageLength {
		return nil, access.Errorf(access.Invalid, "message is longer than %d characters", MaxMessageLength)
	}

	file, err := s.repomanager.Files(s.db).GetByID(ctx, fileID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, access.Errorf(access.NotFound, "file %d not found", fileID)
		}
		return nil, fmt.Errorf("error loading file: %w", err)
	}

	repo := s.repomanager.AccessRequests(s.db)

	var existing *models.AccessRequest
	var prev *access.AccessRequest
	existing, err = repo.FindByFileAndRequester(ctx, fileID, sess.UserID)
	switch {
	case err == nil:
		r := existing.ToAccess()
		prev = &r
	case !errors.Is(err, common.ErrorNotFound):
		return nil, fmt.Errorf("error loading request: %w", err)
	}

	reopen, err := access.CheckSubmit(file.ToAccess(), sess.UserID, prev, s.policy)
	if err != nil {
		s.metrics.Transition(metrics.Refused)
		return nil, err
	}

	var id int64
	if reopen {
		if err := repo.Reopen(ctx, existing.ID, message, s.now()); err != nil {
			return nil, fmt.Errorf("error reopening request %d: %w", existing.ID, err)
		}
		id = existing.ID
		s.metrics.Transition(metrics.Reopened)
	} else {
		created, err := repo.Create(ctx, &models.AccessRequest{
			RequesterID: sess.UserID,
			FileID:      file.ID,
			OwnerID:     file.OwnerID,
			Status:      access.StatusPending,
			Message:     message,
		})
		if err != nil {
			return nil, fmt.Errorf("error creating request: %w", err)
		}
		id = created.ID
		s.metrics.Transition(metrics.Submitted)
	}

	s.log.Info(ctx, "access requested", "request_id", id, "file_id", fileID, "requester_id", sess.UserID, "reopened", reopen)
	return s.load(ctx, repo, id)
}

// ListReceived returns requests for files the caller owns.
func (s *AccessService) ListReceived(ctx context.Context, sess access.Session) ([]access.AccessRequest, error) {
	rows, err := s.repomanager.AccessRequests(s.db).ListByOwner(ctx, sess.UserID)
	if err != nil {
		return nil, fmt.Errorf("error listing received requests: %w", err)
	}
	return toAccessRequests(rows), nil
}

// ListSent returns requests the caller made.
func (s *AccessService) ListSent(ctx context.Context, sess access.Session) ([]access.AccessRequest, error) {
	rows, err := s.repomanager.AccessRequests(s.db).ListByRequester(ctx, sess.UserID)
	if err != nil {
		return nil, fmt.Errorf("error listing sent requests: %w", err)
	}
	return toAccessRequests(rows), nil
}

// SetStatus approves or rejects a pending request addressed to the caller.
func (s *AccessService) SetStatus(ctx context.Context, sess access.Session, requestID int64, status access.RequestStatus) (*access.AccessRequest, error) {
	if status != access.StatusApproved && status != access.StatusRejected {
		return nil, access.Errorf(access.Invalid, "invalid status %q", status)
	}

	repo := s.repomanager.AccessRequests(s.db)
	req, err := s.load(ctx, repo, requestID)
	if err != nil {
		return nil, err
	}
	if err := access.CheckResolve(*req, sess.UserID, status); err != nil {
		s.metrics.Transition(metrics.Refused)
		return nil, err
	}

	if err := repo.UpdateStatus(ctx, requestID, status, s.now()); err != nil {
		return nil, fmt.Errorf("error updating request %d: %w", requestID, err)
	}

	if status == access.StatusApproved {
		s.metrics.Transition(metrics.Approved)
	} else {
		s.metrics.Transition(metrics.Rejected)
	}
	s.log.Info(ctx, "access request resolved", "request_id", requestID, "status", status, "owner_id", sess.UserID)
	return s.load(ctx, repo, requestID)
}

// DeleteRequest withdraws a pending request the caller sent.
func (s *AccessService) DeleteRequest(ctx context.Context, sess access.Session, requestID int64) error {
	repo := s.repomanager.AccessRequests(s.db)
	req, err := s.load(ctx, repo, requestID)
	if err != nil {
		return err
	}
	if err := access.CheckWithdraw(*req, sess.UserID); err != nil {
		s.metrics.Transition(metrics.Refused)
		return err
	}
	if err := repo.Delete(ctx, requestID); err != nil {
		return fmt.Errorf("error deleting request %d: %w", requestID, err)
	}

	s.metrics.Transition(metrics.Withdrawn)
	s.log.Info(ctx, "access request withdrawn", "request_id", requestID, "requester_id", sess.UserID)
	return nil
}

func (s *AccessService) load(ctx context.Context, repo accessrequests.Repository, id int64) (*access.AccessRequest, error) {
	r, err := repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, access.Errorf(access.NotFound, "request %d not found", id)
		}
		return nil, fmt.Errorf("error loading request %d: %w", id, err)
	}
	out := r.ToAccess()
	return &out, nil
}
