// Package models defines server-side data models persisted in the database.
package models

import (
	"time"

	"github.com/dmitrijs2005/gophshare/internal/access"
)

type User struct {
	ID           int64
	Email        string
	FirstName    string
	LastName     string
	Salt         []byte
	PasswordHash []byte
	CreatedAt    time.Time
}

func (u *User) Ref() access.UserRef {
	return access.UserRef{ID: u.ID, Email: u.Email, FirstName: u.FirstName, LastName: u.LastName}
}
