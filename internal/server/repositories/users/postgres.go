package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

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

// Create inserts user and fills ID and CreatedAt. A duplicate email yields
// common.ErrorConflict.
func (r *PostgresRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	query :=
		`INSERT INTO users (email, first_name, last_name, password_salt, password_hash)
         VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		user.Email, user.FirstName, user.LastName, user.Salt, user.PasswordHash).Scan(&user.ID, &user.CreatedAt)

	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return nil, fmt.Errorf("email %s: %w", user.Email, common.ErrorConflict)
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

const selectUser = `SELECT id, email, first_name, last_name, password_salt, password_hash, created_at FROM users`

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getOne(ctx, selectUser+` WHERE email = $1`, email)
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return r.getOne(ctx, selectUser+` WHERE id = $1`, id)
}

func (r *PostgresRepository) getOne(ctx context.Context, query string, arg any) (*models.User, error) {
	user := &models.User{}
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&user.ID, &user.Email, &user.FirstName, &user.LastName, &user.Salt, &user.PasswordHash, &user.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}
