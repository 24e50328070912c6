package models

import (
	"time"

	"github.com/dmitrijs2005/gophshare/internal/access"
)

// NewFile is the metadata sent before uploading content.
type NewFile struct {
	Name        string `json:"fileName"`
	Type        string `json:"fileType,omitempty"`
	Size        int64  `json:"fileSize"`
	Public      bool   `json:"isPublic"`
	Description string `json:"description,omitempty"`
}

// Upload is the server's answer to NewFile: the stored metadata and a URL
// the content must be PUT to before ExpiresAt.
type Upload struct {
	File      access.File `json:"file"`
	URL       string      `json:"uploadUrl"`
	ExpiresAt time.Time   `json:"expiresAt"`
}

// Download carries a presigned GET URL.
type Download struct {
	File      access.File `json:"file"`
	URL       string      `json:"downloadUrl"`
	ExpiresAt time.Time   `json:"expiresAt"`
}

// QuickCheck is the viewer's standing on one file.
type QuickCheck struct {
	access.FileView
	Message string `json:"message"`
}
