package models

import (
	"time"

	"github.com/dmitrijs2005/gophshare/internal/access"
)

// AccessRequest is a row of access_requests joined with the requester, the
// owner and the file name.
type AccessRequest struct {
	ID          int64
	RequesterID int64
	FileID      int64
	OwnerID     int64
	Status      access.RequestStatus
	Message     string
	RequestedAt time.Time
	RespondedAt *time.Time

	RequesterEmail     string
	RequesterFirstName string
	RequesterLastName  string
	OwnerEmail         string
	OwnerFirstName     string
	OwnerLastName      string
	FileName           string
}

func (r *AccessRequest) ToAccess() access.AccessRequest {
	return access.AccessRequest{
		ID: r.ID,
		Requester: access.UserRef{
			ID:        r.RequesterID,
			Email:     r.RequesterEmail,
			FirstName: r.RequesterFirstName,
			LastName:  r.RequesterLastName,
		},
		Owner: access.UserRef{
			ID:        r.OwnerID,
			Email:     r.OwnerEmail,
			FirstName: r.OwnerFirstName,
			LastName:  r.OwnerLastName,
		},
		File:        access.FileRef{ID: r.FileID, Name: r.FileName},
		Status:      r.Status,
		Message:     r.Message,
		RequestedAt: r.RequestedAt,
		RespondedAt: r.RespondedAt,
	}
}
