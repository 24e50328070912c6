package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/dmitrijs2005/gophshare/internal/access"
	"github.com/dmitrijs2005/gophshare/internal/client/models"
)

func newTable(w io.Writer, header ...string) *tabwriter.Writer {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(header, "\t"))
	return tw
}

func row(tw *tabwriter.Writer, cols ...any) {
	s := make([]string, len(cols))
	for i, c := range cols {
		s[i] = fmt.Sprint(c)
	}
	fmt.Fprintln(tw, strings.Join(s, "\t"))
}

// kindLabel is a short file kind taken from the icon class, e.g. "pdf".
func kindLabel(mime string) string {
	return strings.TrimSuffix(access.FileIcon(mime).Class, "-icon")
}

func displayName(u access.UserRef) string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Email
	}
	return fmt.Sprintf("%s <%s>", name, u.Email)
}

func ago(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return humanize.Time(t)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func renderFiles(w io.Writer, files []access.File, showOwner bool) {
	if len(files) == 0 {
		fmt.Fprintln(w, "No files")
		return
	}

	header := []string{"ID", "NAME", "KIND", "SIZE", "VISIBILITY", "UPLOADED"}
	if showOwner {
		header = append(header, "OWNER")
	}
	tw := newTable(w, header...)
	for _, f := range files {
		vis := "private"
		if f.Public {
			vis = "public"
		}
		cols := []any{f.ID, f.Name, kindLabel(f.Type), access.FormatSize(f.Size), vis, ago(f.UploadedAt)}
		if showOwner {
			cols = append(cols, displayName(f.Owner))
		}
		row(tw, cols...)
	}
	_ = tw.Flush()
}

// nextStep suggests the command that moves the view forward.
func nextStep(v access.FileView) string {
	switch {
	case v.HasAccess:
		return fmt.Sprintf("download %d", v.ID)
	case v.CanRequest:
		return fmt.Sprintf("request %d", v.ID)
	case v.RequestStatus == access.StatusPending:
		return fmt.Sprintf("withdraw %d", v.RequestID)
	default:
		return "-"
	}
}

func renderViews(w io.Writer, views []access.FileView) {
	if len(views) == 0 {
		fmt.Fprintln(w, "No private files shared by others")
		return
	}

	tw := newTable(w, "ID", "NAME", "KIND", "SIZE", "OWNER", "STATUS", "NEXT")
	for _, v := range views {
		badge := access.BadgeFor(v.RequestStatus, v.HasAccess)
		row(tw, v.ID, v.Name, kindLabel(v.Type), access.FormatSize(v.Size), displayName(v.Owner), badge.Text, nextStep(v))
	}
	_ = tw.Flush()
}

func renderRequests(w io.Writer, reqs []access.AccessRequest, received bool) {
	if len(reqs) == 0 {
		fmt.Fprintln(w, "No requests")
		return
	}

	who := "OWNER"
	if received {
		who = "FROM"
	}
	tw := newTable(w, "ID", "FILE", who, "STATUS", "MESSAGE", "REQUESTED", "ANSWERED")
	for _, r := range reqs {
		party := r.Owner
		if received {
			party = r.Requester
		}
		answered := "-"
		if r.RespondedAt != nil {
			answered = ago(*r.RespondedAt)
		}
		badge := access.BadgeFor(r.Status, false)
		row(tw, r.ID, r.File.Name, displayName(party), badge.Text, orDash(r.Message), ago(r.RequestedAt), answered)
	}
	_ = tw.Flush()
}

func renderStats(w io.Writer, st access.Stats) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	row(tw, "Requests waiting for you:", st.PendingReceived)
	row(tw, "Your pending requests:", st.PendingSent)
	row(tw, "Private files you can read:", st.Approved)
	row(tw, "Private files of others:", st.TotalPrivate)
	_ = tw.Flush()
}

func renderTransfers(w io.Writer, ts []*models.Transfer) {
	if len(ts) == 0 {
		fmt.Fprintln(w, "No transfers yet")
		return
	}

	tw := newTable(w, "WHEN", "DIRECTION", "FILE", "SIZE", "STATUS", "PATH")
	for _, t := range ts {
		status := string(t.Status)
		if t.Error != "" {
			status += ": " + t.Error
		}
		row(tw, ago(t.CreatedAt), t.Direction, t.FileName, access.FormatSize(t.Size), status, t.LocalPath)
	}
	_ = tw.Flush()
}
