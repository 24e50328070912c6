// Package access implements the access request workflow of gophshare: the
// request state machine, the per-viewer projection of files (FileView) and
// the client-side store that keeps the projection in sync with the server.
//
// The package has no transport of its own. Remote collaborators are reached
// through the RequestDirectory and FileCatalog interfaces.
package access

import (
	"fmt"
	"strings"
	"time"
)

// RequestStatus is the lifecycle state of an AccessRequest.
type RequestStatus string

const (
	StatusPending  RequestStatus = "PENDING"
	StatusApproved RequestStatus = "APPROVED"
	StatusRejected RequestStatus = "REJECTED"

	// NoRequest marks a file the viewer never asked access to.
	NoRequest RequestStatus = "NO_REQUEST"
)

func (s RequestStatus) String() string { return string(s) }

// Terminal reports whether no transition may leave s.
func (s RequestStatus) Terminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// Live reports whether s blocks a new request for the same file.
func (s RequestStatus) Live() bool {
	return s == StatusPending || s == StatusApproved
}

// ParseDecision accepts the two statuses an owner may answer with.
func ParseDecision(v string) (RequestStatus, error) {
	switch s := RequestStatus(strings.ToUpper(strings.TrimSpace(v))); s {
	case StatusApproved, StatusRejected:
		return s, nil
	default:
		return "", Errorf(Invalid, "invalid decision %q", v)
	}
}

type UserRef struct {
	ID        int64  `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
}

// DisplayName prefers the full name and falls back to the email.
func (u UserRef) DisplayName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name != "" {
		return name
	}
	if u.Email != "" {
		return u.Email
	}
	return fmt.Sprintf("user #%d", u.ID)
}

type File struct {
	ID          int64     `json:"id"`
	Name        string    `json:"fileName"`
	Type        string    `json:"fileType"`
	Size        int64     `json:"fileSize"`
	Path        string    `json:"filePath,omitempty"`
	Public      bool      `json:"isPublic"`
	Description string    `json:"description,omitempty"`
	Owner       UserRef   `json:"owner"`
	UploadedAt  time.Time `json:"uploadedAt"`
}

type FileRef struct {
	ID   int64  `json:"id"`
	Name string `json:"fileName"`
}

type AccessRequest struct {
	ID          int64         `json:"id"`
	Requester   UserRef       `json:"requester"`
	Owner       UserRef       `json:"owner"`
	File        FileRef       `json:"file"`
	Status      RequestStatus `json:"status"`
	Message     string        `json:"message,omitempty"`
	RequestedAt time.Time     `json:"requestedAt"`
	RespondedAt *time.Time    `json:"respondedAt,omitempty"`
}

// FileView is a File as seen by one viewer. It is never persisted.
type FileView struct {
	File
	RequestStatus  RequestStatus `json:"requestStatus"`
	RequestID      int64         `json:"requestId,omitempty"`
	HasAccess      bool          `json:"hasAccess"`
	CanRequest     bool          `json:"canRequest"`
	RequestMessage string        `json:"requestMessage,omitempty"`
	IsOwner        bool          `json:"isOwner"`
}

// Policy holds the tunable rules of the workflow.
type Policy struct {
	// AllowResubmitAfterReject lets a requester ask again once the owner
	// rejected the previous request. The old request is reopened as PENDING.
	AllowResubmitAfterReject bool `json:"allow_resubmit_after_reject"`
}

func DefaultPolicy() Policy {
	return Policy{AllowResubmitAfterReject: true}
}

// Session identifies the viewer on whose behalf an operation runs.
type Session struct {
	UserID int64
	Email  string
}

func (s Session) Valid() bool { return s.UserID > 0 }
