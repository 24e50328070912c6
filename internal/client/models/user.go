// Package models defines client-side data models used by the gophshare CLI.
package models

import "time"

// User is the account returned by the server.
type User struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	CreatedAt time.Time `json:"createdAt"`
}

// TokenPair is the access/refresh token pair issued on login and refresh.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// LoginResult is the body of a successful login.
type LoginResult struct {
	TokenPair
	User User `json:"user"`
}
