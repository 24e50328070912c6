package transfers

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/gophshare/internal/client/models"
	"github.com/dmitrijs2005/gophshare/internal/common"
	"github.com/dmitrijs2005/gophshare/internal/dbx"
)

const selectColumns = `id, file_id, file_name, direction, local_path, size, status, error, created_at, finished_at`

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Create(ctx context.Context, t *models.Transfer) (int64, error) {
	query := `INSERT INTO transfers (file_id, file_name, direction, local_path, size, status)
		VALUES (?, ?, ?, ?, ?, 'pending')`

	result, err := r.db.ExecContext(ctx, query, t.FileID, t.FileName, t.Direction, t.LocalPath, t.Size)
	if err != nil {
		return 0, fmt.Errorf("failed to insert transfer: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get transfer id: %w", err)
	}
	return id, nil
}

func (r *SQLiteRepository) MarkCompleted(ctx context.Context, id int64, size int64) error {
	query := `UPDATE transfers SET status='completed', size=?, finished_at=CURRENT_TIMESTAMP
		WHERE id=? AND status='pending'`
	return r.finish(ctx, query, size, id)
}

func (r *SQLiteRepository) MarkFailed(ctx context.Context, id int64, reason string) error {
	query := `UPDATE transfers SET status='failed', error=?, finished_at=CURRENT_TIMESTAMP
		WHERE id=? AND status='pending'`
	return r.finish(ctx, query, reason, id)
}

func (r *SQLiteRepository) finish(ctx context.Context, query string, args ...any) error {
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update transfer: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected != 1 {
		return fmt.Errorf("transfer is not pending: %w", common.ErrorNotFound)
	}

	return nil
}

func (r *SQLiteRepository) ListRecent(ctx context.Context, limit int) ([]*models.Transfer, error) {
	query := `SELECT ` + selectColumns + ` FROM transfers ORDER BY created_at DESC, id DESC LIMIT ?`
	return r.list(ctx, query, limit)
}

func (r *SQLiteRepository) ListPending(ctx context.Context) ([]*models.Transfer, error) {
	query := `SELECT ` + selectColumns + ` FROM transfers WHERE status='pending' ORDER BY id`
	return r.list(ctx, query)
}

func (r *SQLiteRepository) list(ctx context.Context, query string, args ...any) ([]*models.Transfer, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error selecting transfers: %w", err)
	}
	defer rows.Close()

	var result []*models.Transfer

	for rows.Next() {
		item := &models.Transfer{}
		var finished sql.NullTime
		err := rows.Scan(&item.ID, &item.FileID, &item.FileName, &item.Direction, &item.LocalPath,
			&item.Size, &item.Status, &item.Error, &item.CreatedAt, &finished)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transfer: %w", err)
		}
		if finished.Valid {
			t := finished.Time
			item.FinishedAt = &t
		}
		result = append(result, item)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}
