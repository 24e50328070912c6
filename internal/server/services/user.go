// Package services contains server-side business logic. This file implements
// UserService, which handles registration, login, and issuing/refreshing JWTs
// plus server-stored refresh tokens.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophshare/internal/common"
	"github.com/dmitrijs2005/gophshare/internal/cryptox"
	"github.com/dmitrijs2005/gophshare/internal/dbx"
	"github.com/dmitrijs2005/gophshare/internal/logging"
	"github.com/dmitrijs2005/gophshare/internal/server/auth"
	"github.com/dmitrijs2005/gophshare/internal/server/config"
	"github.com/dmitrijs2005/gophshare/internal/server/models"
	"github.com/dmitrijs2005/gophshare/internal/server/repositories/repomanager"
)

// MinPasswordLength is the shortest password Register accepts.
const MinPasswordLength = 6

// TokenPair bundles a short-lived access token and a long-lived refresh token.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// UserService provides authentication-related operations:
// - Register: create users
// - Login: verify credentials and mint tokens
// - RefreshToken: rotate refresh tokens and mint new access tokens
type UserService struct {
	db                           *sql.DB
	repomanager                  repomanager.RepositoryManager
	jwtSecret                    []byte
	accessTokenValidityDuration  time.Duration
	refreshTokenValidityDuration time.Duration
	log                          logging.Logger
	now                          func() time.Time
}

// NewUserService constructs a UserService using repositories and server config.
func NewUserService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config, log logging.Logger) *UserService {
	if log == nil {
		log = logging.Nop()
	}
	return &UserService{
		db:                           db,
		repomanager:                  m,
		jwtSecret:                    []byte(cfg.SecretKey),
		accessTokenValidityDuration:  cfg.AccessTokenValidityDuration,
		refreshTokenValidityDuration: cfg.RefreshTokenValidityDuration,
		log:                          log.With("component", "user_service"),
		now:                          time.Now,
	}
}

// Register creates a new user. A taken email yields common.ErrorConflict.
func (s *UserService) Register(ctx context.Context, email, firstName, lastName, password string) (*models.User, error) {
	email = normalizeEmail(email)
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, fmt.Errorf("%w: invalid email %q", common.ErrorValidation, email)
	}
	if len(password) < MinPasswordLength {
		return nil, fmt.Errorf("%w: password must be at least %d characters", common.ErrorValidation, MinPasswordLength)
	}

	salt := cryptox.NewSalt()
	user := &models.User{
		Email:        email,
		FirstName:    strings.TrimSpace(firstName),
		LastName:     strings.TrimSpace(lastName),
		Salt:         salt,
		PasswordHash: cryptox.HashPassword([]byte(password), salt),
	}

	u, err := s.repomanager.Users(s.db).Create(ctx, user)
	if err != nil {
		if errors.Is(err, common.ErrorConflict) {
			return nil, fmt.Errorf("%w: email %s is already registered", common.ErrorConflict, email)
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	s.log.Info(ctx, "user registered", "user_id", u.ID)
	return u, nil
}

// Login verifies the password and, on success, returns a new TokenPair.
// Unknown emails and wrong passwords are indistinguishable to the caller.
func (s *UserService) Login(ctx context.Context, email, password string) (*TokenPair, *models.User, error) {
	user, err := s.repomanager.Users(s.db).GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, nil, common.ErrorUnauthorized
		}
		return nil, nil, common.ErrorInternal
	}
	if !cryptox.VerifyPassword([]byte(password), user.Salt, user.PasswordHash) {
		return nil, nil, common.ErrorUnauthorized
	}

	pair, err := s.generateTokenPair(ctx, user, s.db)
	if err != nil {
		return nil, nil, err
	}
	return pair, user, nil
}

// RefreshToken validates a refresh token, rotates it transactionally, and
// returns a fresh TokenPair. Expired tokens yield ErrRefreshTokenExpired.
func (s *UserService) RefreshToken(ctx context.Context, refreshToken string) (*TokenPair, error) {
	repo := s.repomanager.RefreshTokens(s.db)

	token, err := repo.Find(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, fmt.Errorf("error searching refresh token: %w", err)
	}
	if token.Expires.Before(s.now()) {
		return nil, common.ErrRefreshTokenExpired
	}

	user, err := s.repomanager.Users(s.db).GetByID(ctx, token.UserID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, fmt.Errorf("error loading user: %w", err)
	}

	var pair *TokenPair
	if err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.RefreshTokens(tx).Delete(ctx, refreshToken); err != nil {
			return fmt.Errorf("error deleting refresh token: %w", err)
		}
		var genErr error
		pair, genErr = s.generateTokenPair(ctx, user, tx)
		return genErr
	}); err != nil {
		return nil, err
	}
	return pair, nil
}

// Me returns the user behind an authenticated request.
func (s *UserService) Me(ctx context.Context, userID int64) (*models.User, error) {
	u, err := s.repomanager.Users(s.db).GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error loading user %d: %w", userID, err)
	}
	return u, nil
}

// PurgeExpiredTokens removes refresh tokens that can no longer be used.
func (s *UserService) PurgeExpiredTokens(ctx context.Context) (int64, error) {
	n, err := s.repomanager.RefreshTokens(s.db).DeleteExpired(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("error purging refresh tokens: %w", err)
	}
	if n > 0 {
		s.log.Debug(ctx, "expired refresh tokens purged", "count", n)
	}
	return n, nil
}

// --- helpers below ---

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *UserService) generateAccessToken(user *models.User) (string, error) {
	return auth.GenerateToken(user.ID, user.Email, s.jwtSecret, s.accessTokenValidityDuration)
}

func (s *UserService) generateRefreshToken() (string, error) {
	return common.MakeRandHexString(32)
}

func (s *UserService) generateTokenPair(ctx context.Context, user *models.User, tx dbx.DBTX) (*TokenPair, error) {
	access, err := s.generateAccessToken(user)
	if err != nil {
		return nil, common.ErrorInternal
	}
	refresh, err := s.generateRefreshToken()
	if err != nil {
		return nil, common.ErrorInternal
	}
	if err := s.repomanager.RefreshTokens(tx).Create(ctx, user.ID, refresh, s.refreshTokenValidityDuration); err != nil {
		return nil, common.ErrorInternal
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
