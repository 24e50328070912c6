// Package services contains application services for the gophshare client.
// This file defines the authentication service: register, login, resuming a
// saved session, logout, and the liveness ping.
package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/gophshare/internal/access"
	"github.com/dmitrijs2005/gophshare/internal/client/client"
	"github.com/dmitrijs2005/gophshare/internal/client/models"
	"github.com/dmitrijs2005/gophshare/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/gophshare/internal/dbx"
	"github.com/dmitrijs2005/gophshare/internal/logging"
)

// AuthService defines authentication operations for the CLI.
//
// Contract:
//   - Login: authenticate against the server and persist the session locally.
//   - Resume: restore the saved session by refreshing its tokens.
//   - Logout: forget the saved session.
//   - Register: create a new user on the server.
//   - Ping: check server liveness.
//   - Close: release underlying client resources.
type AuthService interface {
	Register(ctx context.Context, email, firstName, lastName, password string) (*models.User, error)
	Login(ctx context.Context, email, password string) (access.Session, error)
	Resume(ctx context.Context) (access.Session, error)
	Logout(ctx context.Context) error
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// authService keeps the session in the local metadata table. Rotated refresh
// tokens are written back as soon as the client receives them.
type authService struct {
	client client.Client
	db     *sql.DB
	log    logging.Logger
}

func NewAuthService(c client.Client, db *sql.DB, log logging.Logger) AuthService {
	a := &authService{client: c, db: db, log: log}
	c.OnTokens(a.persistRefreshToken)
	return a
}

func (a *authService) getMetadataRepo() metadata.Repository {
	return metadata.NewSQLiteRepository(a.db)
}

func (a *authService) persistRefreshToken(t models.TokenPair) {
	ctx := context.Background()
	if err := a.getMetadataRepo().Set(ctx, metadata.KeyRefreshToken, []byte(t.RefreshToken)); err != nil {
		a.log.Warn(ctx, "failed to save refresh token", "error", err)
	}
}

func (a *authService) Register(ctx context.Context, email, firstName, lastName, password string) (*models.User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, access.Errorf(access.Invalid, "email and password are required")
	}

	u, err := a.client.Register(ctx, email, strings.TrimSpace(firstName), strings.TrimSpace(lastName), password)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}
	return u, nil
}

// Login authenticates against the server and saves email, user id and the
// refresh token in a single transaction.
func (a *authService) Login(ctx context.Context, email, password string) (access.Session, error) {
	res, err := a.client.Login(ctx, strings.TrimSpace(email), password)
	if err != nil {
		return access.Session{}, fmt.Errorf("login error: %w", err)
	}

	if err := a.saveSession(ctx, res); err != nil {
		return access.Session{}, fmt.Errorf("session saving error: %w", err)
	}

	a.log.Info(ctx, "logged in", "user_id", res.User.ID)
	return access.Session{UserID: res.User.ID, Email: res.User.Email}, nil
}

func (a *authService) saveSession(ctx context.Context, res *models.LoginResult) error {
	return dbx.WithTx(ctx, a.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := metadata.NewSQLiteRepository(tx)
		if err := repo.Clear(ctx); err != nil {
			return err
		}
		if err := repo.Set(ctx, metadata.KeyEmail, []byte(res.User.Email)); err != nil {
			return err
		}
		if err := repo.Set(ctx, metadata.KeyFirstName, []byte(res.User.FirstName)); err != nil {
			return err
		}
		if err := metadata.SetInt64(ctx, repo, metadata.KeyUserID, res.User.ID); err != nil {
			return err
		}
		return repo.Set(ctx, metadata.KeyRefreshToken, []byte(res.RefreshToken))
	})
}

// Resume restores the saved session. It returns client.ErrLocalDataNotAvailable
// when nothing is saved. A refresh token the server no longer accepts is
// forgotten.
func (a *authService) Resume(ctx context.Context) (access.Session, error) {
	repo := a.getMetadataRepo()

	token, err := metadata.GetString(ctx, repo, metadata.KeyRefreshToken)
	if err != nil {
		return access.Session{}, err
	}
	userID, err := metadata.GetInt64(ctx, repo, metadata.KeyUserID)
	if err != nil {
		return access.Session{}, err
	}
	email, err := metadata.GetString(ctx, repo, metadata.KeyEmail)
	if err != nil {
		return access.Session{}, err
	}

	sess := access.Session{UserID: userID, Email: email}
	if token == "" || !sess.Valid() {
		return access.Session{}, client.ErrLocalDataNotAvailable
	}

	a.client.SetTokens(models.TokenPair{RefreshToken: token})
	if err := a.client.Refresh(ctx); err != nil {
		if access.IsKind(err, access.Unauthenticated) {
			if cerr := repo.Clear(ctx); cerr != nil {
				a.log.Warn(ctx, "failed to clear saved session", "error", cerr)
			}
		}
		return access.Session{}, fmt.Errorf("resume session: %w", err)
	}

	a.log.Info(ctx, "session resumed", "user_id", userID)
	return sess, nil
}

func (a *authService) Logout(ctx context.Context) error {
	a.client.SetTokens(models.TokenPair{})
	if err := a.getMetadataRepo().Clear(ctx); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}

// Ping proxies a liveness check to the underlying client.
func (a *authService) Ping(ctx context.Context) error {
	return a.client.Ping(ctx)
}

// Close releases resources held by the underlying client.
func (a *authService) Close(ctx context.Context) error {
	return a.client.Close()
}
