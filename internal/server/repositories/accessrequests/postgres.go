package accessrequests

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophshare/internal/access"
	"github.com/dmitrijs2005/gophshare/internal/common"
	"github.com/dmitrijs2005/gophshare/internal/dbx"
	"github.com/dmitrijs2005/gophshare/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const selectRequest = `
	SELECT r.id, r.requester_id, r.file_id, r.owner_id, r.status, r.message,
	       r.requested_at, r.responded_at,
	       rq.email, rq.first_name, rq.last_name,
	       ow.email, ow.first_name, ow.last_name,
	       f.file_name
	FROM access_requests r
	JOIN users rq ON rq.id = r.requester_id
	JOIN users ow ON ow.id = r.owner_id
	JOIN files f ON f.id = r.file_id`

type scanner interface {
	Scan(dest ...any) error
}

func scanRequest(s scanner) (*models.AccessRequest, error) {
	r := &models.AccessRequest{}
	var status string
	var responded sql.NullTime
	err := s.Scan(&r.ID, &r.RequesterID, &r.FileID, &r.OwnerID, &status, &r.Message,
		&r.RequestedAt, &responded,
		&r.RequesterEmail, &r.RequesterFirstName, &r.RequesterLastName,
		&r.OwnerEmail, &r.OwnerFirstName, &r.OwnerLastName,
		&r.FileName)
	if err != nil {
		return nil, err
	}
	r.Status = access.RequestStatus(status)
	if responded.Valid {
		t := responded.Time
		r.RespondedAt = &t
	}
	return r, nil
}

func (p *PostgresRepository) Create(ctx context.Context, req *models.AccessRequest) (*models.AccessRequest, error) {
	query := `
		INSERT INTO access_requests (requester_id, file_id, owner_id, status, message)
		VALUES ($1, $2, $3, 'PENDING', $4)
		RETURNING id, status, requested_at
	`
	var status string
	err := p.db.QueryRowContext(ctx, query, req.RequesterID, req.FileID, req.OwnerID, req.Message).
		Scan(&req.ID, &status, &req.RequestedAt)
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return nil, fmt.Errorf("request for file %d: %w", req.FileID, common.ErrorConflict)
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	req.Status = access.RequestStatus(status)
	return req, nil
}

func (p *PostgresRepository) GetByID(ctx context.Context, id int64) (*models.AccessRequest, error) {
	return p.getOne(ctx, selectRequest+` WHERE r.id = $1`, id)
}

func (p *PostgresRepository) FindByFileAndRequester(ctx context.Context, fileID, requesterID int64) (*models.AccessRequest, error) {
	return p.getOne(ctx, selectRequest+` WHERE r.file_id = $1 AND r.requester_id = $2`, fileID, requesterID)
}

func (p *PostgresRepository) getOne(ctx context.Context, query string, args ...any) (*models.AccessRequest, error) {
	r, err := scanRequest(p.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return r, nil
}

func (p *PostgresRepository) ListByOwner(ctx context.Context, ownerID int64) ([]*models.AccessRequest, error) {
	return p.list(ctx, selectRequest+` WHERE r.owner_id = $1 ORDER BY r.requested_at DESC, r.id DESC`, ownerID)
}

func (p *PostgresRepository) ListByRequester(ctx context.Context, requesterID int64) ([]*models.AccessRequest, error) {
	return p.list(ctx, selectRequest+` WHERE r.requester_id = $1 ORDER BY r.requested_at DESC, r.id DESC`, requesterID)
}

func (p *PostgresRepository) list(ctx context.Context, query string, args ...any) ([]*models.AccessRequest, error) {
	rows, err := p.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select access requests: %w", err)
	}
	defer rows.Close()

	result := []*models.AccessRequest{}
	for rows.Next() {
		r, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (p *PostgresRepository) UpdateStatus(ctx context.Context, id int64, status access.RequestStatus, respondedAt time.Time) error {
	query := `
		UPDATE access_requests SET status = $2, responded_at = $3
		WHERE id = $1 AND status = 'PENDING'
	`
	res, err := p.db.ExecContext(ctx, query, id, string(status), respondedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return dbx.ExpectOneRow(res)
}

func (p *PostgresRepository) Reopen(ctx context.Context, id int64, message string, requestedAt time.Time) error {
	query := `
		UPDATE access_requests
		SET status = 'PENDING', message = $2, requested_at = $3, responded_at = NULL
		WHERE id = $1 AND status = 'REJECTED'
	`
	res, err := p.db.ExecContext(ctx, query, id, message, requestedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return dbx.ExpectOneRow(res)
}

func (p *PostgresRepository) Delete(ctx context.Context, id int64) error {
	res, err := p.db.ExecContext(ctx, `DELETE FROM access_requests WHERE id = $1 AND status = 'PENDING'`, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return dbx.ExpectOneRow(res)
}

func (p *PostgresRepository) DeleteByFile(ctx context.Context, fileID int64) (int64, error) {
	res, err := p.db.ExecContext(ctx, `DELETE FROM access_requests WHERE file_id = $1`, fileID)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return res.RowsAffected()
}
