// Package auth issues and verifies HS256 access tokens.
package auth

import (
	"errors"
	"strconv"
	"time"

	"github.com/dmitrijs2005/gophshare/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Claims carries the registered claims plus the user identity.
type Claims struct {
	jwt.RegisteredClaims
	UserID int64  `json:"uid"`
	Email  string `json:"email,omitempty"`
}

func GenerateToken(userID int64, email string, secretKey []byte, validityDuration time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(validityDuration)),
		},
		UserID: userID,
		Email:  email,
	})

	return token.SignedString(secretKey)
}

// ParseToken validates tokenString and returns its claims. An expired token
// yields common.ErrTokenExpired so clients know to refresh; anything else
// wrong with the token yields common.ErrInvalidToken.
func ParseToken(tokenString string, secretKey []byte) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, common.ErrInvalidToken
	}

	if !token.Valid || claims.UserID <= 0 {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}

func GetUserIDFromToken(tokenString string, secretKey []byte) (int64, error) {
	claims, err := ParseToken(tokenString, secretKey)
	if err != nil {
		return 0, err
	}
	return claims.UserID, nil
}
