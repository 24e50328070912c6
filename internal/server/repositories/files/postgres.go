package files

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophshare/internal/common"
	"github.com/dmitrijs2005/gophshare/internal/dbx"
	"github.com/dmitrijs2005/gophshare/internal/server/models"
)

// PostgresRepository implements file metadata storage over a dbx.DBTX
// (*sql.DB or *sql.Tx). Reads join the owner so callers get display names.
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const selectFile = `
	SELECT f.id, f.owner_id, f.file_name, f.file_type, f.file_size, f.storage_key,
	       f.is_public, f.description, f.uploaded_at,
	       u.email, u.first_name, u.last_name
	FROM files f
	JOIN users u ON u.id = f.owner_id`

type scanner interface {
	Scan(dest ...any) error
}

func scanFile(s scanner) (*models.File, error) {
	f := &models.File{}
	err := s.Scan(&f.ID, &f.OwnerID, &f.Name, &f.Type, &f.Size, &f.StorageKey,
		&f.Public, &f.Description, &f.UploadedAt,
		&f.OwnerEmail, &f.OwnerFirstName, &f.OwnerLastName)
	return f, err
}

// Create inserts the metadata row and fills ID and UploadedAt.
func (r *PostgresRepository) Create(ctx context.Context, file *models.File) (*models.File, error) {
	query := `
		INSERT INTO files (owner_id, file_name, file_type, file_size, storage_key, is_public, description)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, uploaded_at
	`
	err := r.db.QueryRowContext(ctx, query,
		file.OwnerID, file.Name, file.Type, file.Size, file.StorageKey, file.Public, file.Description,
	).Scan(&file.ID, &file.UploadedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return file, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*models.File, error) {
	f, err := scanFile(r.db.QueryRowContext(ctx, selectFile+` WHERE f.id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return f, nil
}

func (r *PostgresRepository) ListByOwner(ctx context.Context, ownerID int64) ([]*models.File, error) {
	return r.list(ctx, selectFile+` WHERE f.owner_id = $1 ORDER BY f.uploaded_at DESC, f.id DESC`, ownerID)
}

func (r *PostgresRepository) ListPublic(ctx context.Context) ([]*models.File, error) {
	return r.list(ctx, selectFile+` WHERE f.is_public ORDER BY f.uploaded_at DESC, f.id DESC`)
}

// ListOthersPrivate returns private files not owned by viewerID.
func (r *PostgresRepository) ListOthersPrivate(ctx context.Context, viewerID int64) ([]*models.File, error) {
	return r.list(ctx, selectFile+` WHERE f.owner_id <> $1 AND NOT f.is_public ORDER BY f.uploaded_at DESC, f.id DESC`, viewerID)
}

func (r *PostgresRepository) list(ctx context.Context, query string, args ...any) ([]*models.File, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select files: %w", err)
	}
	defer rows.Close()

	result := []*models.File{}
	for rows.Next() {
		f, err := scanFile(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Delete removes the row. Access requests go with it through the foreign key.
func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM files WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}
