package models

import (
	"time"

	"github.com/dmitrijs2005/gophshare/internal/access"
)

// File is a row of the files table joined with its owner.
type File struct {
	ID          int64
	OwnerID     int64
	Name        string
	Type        string
	Size        int64
	StorageKey  string
	Public      bool
	Description string
	UploadedAt  time.Time

	// Filled from users on reads.
	OwnerEmail     string
	OwnerFirstName string
	OwnerLastName  string
}

// ToAccess converts the row to the workflow type. StorageKey stays on the
// server and is not exposed as Path.
func (f *File) ToAccess() access.File {
	return access.File{
		ID:          f.ID,
		Name:        f.Name,
		Type:        f.Type,
		Size:        f.Size,
		Public:      f.Public,
		Description: f.Description,
		Owner: access.UserRef{
			ID:        f.OwnerID,
			Email:     f.OwnerEmail,
			FirstName: f.OwnerFirstName,
			LastName:  f.OwnerLastName,
		},
		UploadedAt: f.UploadedAt,
	}
}

// FileUpload is returned to the client after the metadata row is created.
type FileUpload struct {
	File access.File `json:"file"`
	// URL is a presigned PUT URL for the file content.
	URL       string    `json:"uploadUrl"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// FileDownload carries a presigned GET URL for a file the caller may read.
type FileDownload struct {
	File      access.File `json:"file"`
	URL       string      `json:"downloadUrl"`
	ExpiresAt time.Time   `json:"expiresAt"`
}
