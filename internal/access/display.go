package access

import (
	"strings"

	"github.com/dustin/go-humanize"
)

// Stats are the dashboard counters.
type Stats struct {
	PendingReceived int `json:"pendingReceived"`
	PendingSent     int `json:"pendingSent"`
	Approved        int `json:"approved"`
	TotalPrivate    int `json:"totalPrivate"`
}

func ComputeStats(sent, received []AccessRequest, views []FileView) Stats {
	var st Stats
	for _, r := range received {
		if r.Status == StatusPending {
			st.PendingReceived++
		}
	}
	for _, r := range sent {
		if r.Status == StatusPending {
			st.PendingSent++
		}
	}
	for _, v := range views {
		if v.HasAccess {
			st.Approved++
		}
	}
	st.TotalPrivate = len(views)
	return st
}

type Badge struct {
	Class string
	Icon  string
	Text  string
}

// BadgeFor picks the status badge. The class follows the request status
// alone; icon and text report access, which may come from elsewhere.
func BadgeFor(status RequestStatus, hasAccess bool) Badge {
	b := Badge{Class: "status-none", Icon: "lock", Text: "No Request"}

	switch status {
	case StatusApproved:
		b.Class = "status-approved"
	case StatusPending:
		b.Class = "status-pending"
	case StatusRejected:
		b.Class = "status-rejected"
	}

	switch {
	case hasAccess || status == StatusApproved:
		b.Icon, b.Text = "check_circle", "Access Approved"
	case status == StatusPending:
		b.Icon, b.Text = "schedule", "Request Pending"
	case status == StatusRejected:
		b.Icon, b.Text = "cancel", "Request Rejected"
	}
	return b
}

type Icon struct {
	Name  string
	Class string
}

// FileIcon maps a MIME type to an icon.
func FileIcon(mime string) Icon {
	m := strings.ToLower(mime)
	switch {
	case strings.Contains(m, "pdf"):
		return Icon{"picture_as_pdf", "pdf-icon"}
	case strings.Contains(m, "word"), strings.Contains(m, "document"):
		return Icon{"description", "doc-icon"}
	case strings.Contains(m, "image"):
		return Icon{"image", "image-icon"}
	case strings.Contains(m, "text"):
		return Icon{"text_snippet", "generic-icon"}
	default:
		return Icon{"insert_drive_file", "generic-icon"}
	}
}

// FormatSize renders a byte count with IEC units, e.g. "1.5 KiB".
func FormatSize(bytes int64) string {
	if bytes < 0 {
		bytes = 0
	}
	return humanize.IBytes(uint64(bytes))
}

// QuickCheckMessage explains to the viewer what they can do with v.
func QuickCheckMessage(v FileView) string {
	switch {
	case v.IsOwner:
		return "This is your own file"
	case v.Public:
		return "This file is public"
	case v.RequestStatus == StatusApproved || v.HasAccess:
		return "Your access request has been approved"
	case v.RequestStatus == StatusPending:
		return "Your request is pending approval"
	case v.RequestStatus == StatusRejected && v.CanRequest:
		return "Your previous request was rejected. You can request again"
	case v.RequestStatus == StatusRejected:
		return "Your previous request was rejected"
	default:
		return "You can request access to this file"
	}
}
