package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"mime"
	"path/filepath"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophshare/internal/access"
	"github.com/dmitrijs2005/gophshare/internal/common"
	"github.com/dmitrijs2005/gophshare/internal/dbx"
	"github.com/dmitrijs2005/gophshare/internal/logging"
	"github.com/dmitrijs2005/gophshare/internal/server/metrics"
	"github.com/dmitrijs2005/gophshare/internal/server/models"
	"github.com/dmitrijs2005/gophshare/internal/server/repositories/repomanager"
)

const (
	MaxFileNameLength    = 255
	MaxDescriptionLength = 2000
	defaultContentType   = "application/octet-stream"
)

// NewFile describes an upload the client is about to perform.
type NewFile struct {
	Name        string `json:"fileName"`
	Type        string `json:"fileType"`
	Size        int64  `json:"fileSize"`
	Public      bool   `json:"isPublic"`
	Description string `json:"description"`
}

// QuickCheckResult is the viewer's standing on a single file.
type QuickCheckResult struct {
	access.FileView
	Message string `json:"message"`
}

// FileService manages file metadata and hands out presigned URLs. It also
// implements access.FileCatalog; ListOthersPrivate is the authoritative
// source of FileViews.
type FileService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	storage     ObjectStorage
	policy      access.Policy
	metrics     *metrics.Metrics
	log         logging.Logger
	now         func() time.Time
}

var _ access.FileCatalog = (*FileService)(nil)

func NewFileService(db *sql.DB, m repomanager.RepositoryManager, storage ObjectStorage, policy access.Policy,
	mt *metrics.Metrics, log logging.Logger) *FileService {
	if log == nil {
		log = logging.Nop()
	}
	return &FileService{
		db:          db,
		repomanager: m,
		storage:     storage,
		policy:      policy,
		metrics:     mt,
		log:         log.With("component", "file_service"),
		now:         time.Now,
	}
}

// CreateUpload stores the metadata of a new file and returns a URL the
// owner uploads the content to.
func (s *FileService) CreateUpload(ctx context.Context, sess access.Session, in NewFile) (*models.FileUpload, error) {
	if !sess.Valid() {
		return nil, common.ErrorUnauthorized
	}

	name := strings.TrimSpace(in.Name)
	switch {
	case name == "", name == ".", name == "..":
		return nil, access.Errorf(access.Invalid, "file name is required")
	case strings.ContainsAny(name, `/\`):
		return nil, access.Errorf(access.Invalid, "file name %q must not contain path separators", name)
	case len(name) > MaxFileNameLength:
		return nil, access.Errorf(access.Invalid, "file name is longer than %d bytes", MaxFileNameLength)
	case in.Size < 0:
		return nil, access.Errorf(access.Invalid, "file size must not be negative")
	case len(in.Description) > MaxDescriptionLength:
		return nil, access.Errorf(access.Invalid, "description is longer than %d bytes", MaxDescriptionLength)
	}

	contentType := in.Type
	if contentType == "" {
		contentType = mime.TypeByExtension(filepath.Ext(name))
	}
	if contentType == "" {
		contentType = defaultContentType
	}

	key := NewStorageKey(sess.UserID, s.now())
	url, expires, err := s.storage.PresignPut(ctx, key, contentType)
	if err != nil {
		return nil, fmt.Errorf("error presigning upload: %w", err)
	}

	f, err := s.repomanager.Files(s.db).Create(ctx, &models.File{
		OwnerID:     sess.UserID,
		Name:        name,
		Type:        contentType,
		Size:        in.Size,
		StorageKey:  key,
		Public:      in.Public,
		Description: strings.TrimSpace(in.Description),
	})
	if err != nil {
		return nil, fmt.Errorf("error creating file: %w", err)
	}
	f.OwnerEmail = sess.Email

	s.metrics.Upload()
	s.log.Info(ctx, "upload created", "file_id", f.ID, "owner_id", sess.UserID, "public", f.Public)

	return &models.FileUpload{File: f.ToAccess(), URL: url, ExpiresAt: expires}, nil
}

func (s *FileService) ListOwned(ctx context.Context, sess access.Session) ([]access.File, error) {
	rows, err := s.repomanager.Files(s.db).ListByOwner(ctx, sess.UserID)
	if err != nil {
		return nil, fmt.Errorf("error listing own files: %w", err)
	}
	return toAccessFiles(rows), nil
}

func (s *FileService) ListPublic(ctx context.Context, _ access.Session) ([]access.File, error) {
	rows, err := s.repomanager.Files(s.db).ListPublic(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing public files: %w", err)
	}
	return toAccessFiles(rows), nil
}

// ListOthersPrivate returns other users' private files annotated with the
// viewer's request state.
func (s *FileService) ListOthersPrivate(ctx context.Context, sess access.Session) ([]access.FileView, error) {
	rows, err := s.repomanager.Files(s.db).ListOthersPrivate(ctx, sess.UserID)
	if err != nil {
		return nil, fmt.Errorf("error listing private files: %w", err)
	}
	sent, err := s.repomanager.AccessRequests(s.db).ListByRequester(ctx, sess.UserID)
	if err != nil {
		return nil, fmt.Errorf("error listing sent requests: %w", err)
	}
	idx := access.IndexByFile(toAccessRequests(sent), sess.UserID)
	return access.DeriveAll(toAccessFiles(rows), sess.UserID, idx, s.policy), nil
}

// QuickCheck reports what the viewer may do with a single file.
func (s *FileService) QuickCheck(ctx context.Context, sess access.Session, fileID int64) (*QuickCheckResult, error) {
	v, _, err := s.view(ctx, sess, fileID)
	if err != nil {
		return nil, err
	}
	return &QuickCheckResult{FileView: v, Message: access.QuickCheckMessage(v)}, nil
}

// DownloadURL returns a presigned GET URL if the viewer has access.
func (s *FileService) DownloadURL(ctx context.Context, sess access.Session, fileID int64) (*models.FileDownload, error) {
	v, f, err := s.view(ctx, sess, fileID)
	if err != nil {
		return nil, err
	}
	if !v.HasAccess {
		return nil, access.Errorf(access.Forbidden, "no access to file %d", fileID)
	}

	url, expires, err := s.storage.PresignGet(ctx, f.StorageKey, f.Name)
	if err != nil {
		return nil, fmt.Errorf("error presigning download: %w", err)
	}
	return &models.FileDownload{File: v.File, URL: url, ExpiresAt: expires}, nil
}

// Delete removes a file owned by the caller together with every access
// request for it. The stored object is removed afterwards; a failure there
// leaves an orphan object but does not fail the call.
func (s *FileService) Delete(ctx context.Context, sess access.Session, fileID int64) error {
	f, err := s.repomanager.Files(s.db).GetByID(ctx, fileID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return access.Errorf(access.NotFound, "file %d not found", fileID)
		}
		return fmt.Errorf("error loading file: %w", err)
	}
	if f.OwnerID != sess.UserID {
		return access.Errorf(access.Forbidden, "file %d is not owned by user %d", fileID, sess.UserID)
	}

	var dropped int64
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		n, err := s.repomanager.AccessRequests(tx).DeleteByFile(ctx, fileID)
		if err != nil {
			return fmt.Errorf("error deleting requests: %w", err)
		}
		dropped = n
		return s.repomanager.Files(tx).Delete(ctx, fileID)
	})
	if err != nil {
		return err
	}

	if err := s.storage.DeleteObject(ctx, f.StorageKey); err != nil {
		s.log.Warn(ctx, "object not removed", "file_id", fileID, "key", f.StorageKey, "error", err)
	}
	s.log.Info(ctx, "file deleted", "file_id", fileID, "requests_dropped", dropped)
	return nil
}

// view derives the caller's FileView for one file.
func (s *FileService) view(ctx context.Context, sess access.Session, fileID int64) (access.FileView, *models.File, error) {
	f, err := s.repomanager.Files(s.db).GetByID(ctx, fileID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return access.FileView{}, nil, access.Errorf(access.NotFound, "file %d not found", fileID)
		}
		return access.FileView{}, nil, fmt.Errorf("error loading file: %w", err)
	}

	var idx map[int64]access.AccessRequest
	if f.OwnerID != sess.UserID && !f.Public {
		req, err := s.repomanager.AccessRequests(s.db).FindByFileAndRequester(ctx, fileID, sess.UserID)
		switch {
		case err == nil:
			idx = map[int64]access.AccessRequest{fileID: req.ToAccess()}
		case !errors.Is(err, common.ErrorNotFound):
			return access.FileView{}, nil, fmt.Errorf("error loading request: %w", err)
		}
	}
	return access.Derive(f.ToAccess(), sess.UserID, idx, s.policy), f, nil
}

func toAccessFiles(rows []*models.File) []access.File {
	out := make([]access.File, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.ToAccess())
	}
	return out
}

func toAccessRequests(rows []*models.AccessRequest) []access.AccessRequest {
	out := make([]access.AccessRequest, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.ToAccess())
	}
	return out
}
