package services

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"os"
	"path/filepath"

	"github.com/dmitrijs2005/gophshare/internal/access"
	"github.com/dmitrijs2005/gophshare/internal/client/client"
	"github.com/dmitrijs2005/gophshare/internal/client/models"
	"github.com/dmitrijs2005/gophshare/internal/client/repositories/transfers"
	"github.com/dmitrijs2005/gophshare/internal/filex"
	"github.com/dmitrijs2005/gophshare/internal/logging"
	"github.com/dmitrijs2005/gophshare/internal/netx"
)

// FileService moves file content between the local disk and object storage
// and records every transfer in the local log.
type FileService interface {
	Upload(ctx context.Context, localPath string, public bool, description string) (*access.File, error)
	Download(ctx context.Context, fileID int64) (string, error)
	Delete(ctx context.Context, fileID int64) error
	ListOwned(ctx context.Context, sess access.Session) ([]access.File, error)
	ListPublic(ctx context.Context, sess access.Session) ([]access.File, error)
	QuickCheck(ctx context.Context, fileID int64) (*models.QuickCheck, error)
	History(ctx context.Context, limit int) ([]*models.Transfer, error)
	RecoverInterrupted(ctx context.Context) (int, error)
}

// Seams for tests.
var (
	uploadContent   = netx.UploadToPresignedURL
	downloadContent = netx.DownloadFromPresignedURL
)

type fileService struct {
	client      client.Client
	transfers   transfers.Repository
	downloadDir string
	log         logging.Logger
}

func NewFileService(c client.Client, repo transfers.Repository, downloadDir string, log logging.Logger) FileService {
	return &fileService{client: c, transfers: repo, downloadDir: downloadDir, log: log}
}

func (s *fileService) Upload(ctx context.Context, localPath string, public bool, description string) (*access.File, error) {
	info, err := os.Stat(localPath)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", localPath, err)
	}
	if info.IsDir() {
		return nil, access.Errorf(access.Invalid, "%s is a directory", localPath)
	}

	name := filepath.Base(localPath)
	nf := models.NewFile{
		Name:        name,
		Type:        mime.TypeByExtension(filepath.Ext(name)),
		Size:        info.Size(),
		Public:      public,
		Description: description,
	}

	up, err := s.client.CreateUpload(ctx, nf)
	if err != nil {
		return nil, fmt.Errorf("create upload: %w", err)
	}

	id, err := s.transfers.Create(ctx, &models.Transfer{
		FileID:    up.File.ID,
		FileName:  name,
		Direction: models.DirectionUpload,
		LocalPath: localPath,
		Size:      info.Size(),
	})
	if err != nil {
		return nil, err
	}

	f, err := os.Open(localPath)
	if err != nil {
		s.fail(ctx, id, err)
		return nil, fmt.Errorf("open %s: %w", localPath, err)
	}
	defer f.Close()

	if err := uploadContent(ctx, up.URL, up.File.Type, f, info.Size()); err != nil {
		s.fail(ctx, id, err)
		return nil, fmt.Errorf("%w: upload content: %v", client.ErrUnavailable, err)
	}

	if err := s.transfers.MarkCompleted(ctx, id, info.Size()); err != nil {
		s.log.Warn(ctx, "failed to record upload", "transfer_id", id, "error", err)
	}

	s.log.Info(ctx, "file uploaded", "file_id", up.File.ID, "size", info.Size())
	return &up.File, nil
}

// Download stores the file under the download directory without overwriting
// anything already there and returns the written path.
func (s *fileService) Download(ctx context.Context, fileID int64) (string, error) {
	dl, err := s.client.DownloadURL(ctx, fileID)
	if err != nil {
		return "", fmt.Errorf("download url: %w", err)
	}

	dir, err := filex.EnsureDir(s.downloadDir)
	if err != nil {
		return "", err
	}
	path, err := filex.FreePath(dir, dl.File.Name)
	if err != nil {
		return "", err
	}

	id, err := s.transfers.Create(ctx, &models.Transfer{
		FileID:    fileID,
		FileName:  dl.File.Name,
		Direction: models.DirectionDownload,
		LocalPath: path,
		Size:      dl.File.Size,
	})
	if err != nil {
		return "", err
	}

	out, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o640)
	if err != nil {
		s.fail(ctx, id, err)
		return "", fmt.Errorf("create %s: %w", path, err)
	}

	n, err := downloadContent(ctx, dl.URL, out)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(path)
		s.fail(ctx, id, err)
		return "", fmt.Errorf("%w: download content: %v", client.ErrUnavailable, err)
	}

	if err := s.transfers.MarkCompleted(ctx, id, n); err != nil {
		s.log.Warn(ctx, "failed to record download", "transfer_id", id, "error", err)
	}

	s.log.Info(ctx, "file downloaded", "file_id", fileID, "path", path, "size", n)
	return path, nil
}

func (s *fileService) fail(ctx context.Context, id int64, cause error) {
	if err := s.transfers.MarkFailed(ctx, id, cause.Error()); err != nil {
		s.log.Warn(ctx, "failed to record transfer failure", "transfer_id", id, "error", err)
	}
}

func (s *fileService) Delete(ctx context.Context, fileID int64) error {
	return s.client.DeleteFile(ctx, fileID)
}

func (s *fileService) ListOwned(ctx context.Context, sess access.Session) ([]access.File, error) {
	return s.client.ListOwned(ctx, sess)
}

func (s *fileService) ListPublic(ctx context.Context, sess access.Session) ([]access.File, error) {
	return s.client.ListPublic(ctx, sess)
}

func (s *fileService) QuickCheck(ctx context.Context, fileID int64) (*models.QuickCheck, error) {
	return s.client.QuickCheck(ctx, fileID)
}

// History returns recent transfers, newest first.
func (s *fileService) History(ctx context.Context, limit int) ([]*models.Transfer, error) {
	if limit <= 0 {
		return nil, errors.New("limit must be positive")
	}
	return s.transfers.ListRecent(ctx, limit)
}

// RecoverInterrupted marks transfers left pending by a previous run as
// failed and returns how many there were.
func (s *fileService) RecoverInterrupted(ctx context.Context) (int, error) {
	pending, err := s.transfers.ListPending(ctx)
	if err != nil {
		return 0, err
	}
	for _, t := range pending {
		if err := s.transfers.MarkFailed(ctx, t.ID, "interrupted"); err != nil {
			return 0, err
		}
	}
	return len(pending), nil
}
