package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/gophshare/internal/access"
)

// historyLimit is how many transfers 'history' shows.
const historyLimit = 20

// idArg parses args[0] as a positive id.
func idArg(args []string, what string) (int64, error) {
	if len(args) == 0 {
		return 0, access.Errorf(access.Invalid, "usage: <command> <%s>", what)
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		return 0, access.Errorf(access.Invalid, "invalid %s %q", what, args[0])
	}
	return id, nil
}

func (a *App) MyFiles(ctx context.Context) error {
	files, err := a.files.ListOwned(ctx, a.currentSession())
	if err != nil {
		return err
	}
	renderFiles(a.out, files, false)
	return nil
}

func (a *App) PublicFiles(ctx context.Context) error {
	files, err := a.files.ListPublic(ctx, a.currentSession())
	if err != nil {
		return err
	}
	renderFiles(a.out, files, true)
	return nil
}

// PrivateFiles lists other users' private files with the viewer's standing.
func (a *App) PrivateFiles(ctx context.Context) error {
	snap, err := a.workflow.Refresh(ctx, a.currentSession())
	if err != nil {
		return err
	}
	renderViews(a.out, snap.Views)
	return nil
}

func (a *App) Upload(ctx context.Context, args []string) error {
	path := strings.Join(args, " ")
	if path == "" {
		var err error
		if path, err = getSimpleText(a.reader, "Path of the file to upload", a.out); err != nil {
			return err
		}
	}
	if path == "" {
		return access.Errorf(access.Invalid, "no file given")
	}

	public, err := confirm(a.reader, "Make it public?", a.out)
	if err != nil {
		return err
	}
	description, err := getSimpleText(a.reader, "Description (optional)", a.out)
	if err != nil {
		return err
	}

	f, err := a.files.Upload(ctx, path, public, description)
	if err != nil {
		return err
	}
	a.printf("Uploaded %s as file %d (%s)\n", f.Name, f.ID, access.FormatSize(f.Size))
	return nil
}

func (a *App) Download(ctx context.Context, args []string) error {
	id, err := idArg(args, "fileId")
	if err != nil {
		return err
	}
	path, err := a.files.Download(ctx, id)
	if err != nil {
		return err
	}
	a.printf("Saved to %s\n", path)
	return nil
}

func (a *App) DeleteFile(ctx context.Context, args []string) error {
	id, err := idArg(args, "fileId")
	if err != nil {
		return err
	}

	ok, err := confirm(a.reader, fmt.Sprintf("Delete file %d and all access requests for it?", id), a.out)
	if err != nil {
		return err
	}
	if !ok {
		a.printf("Canceled\n")
		return nil
	}

	if err := a.files.Delete(ctx, id); err != nil {
		return err
	}
	a.printf("File %d deleted\n", id)

	if _, err := a.workflow.Refresh(ctx, a.currentSession()); err != nil {
		a.log.Warn(ctx, "refresh after delete failed", "error", err)
	}
	return nil
}

// Check shows the server's verdict on one private file.
func (a *App) Check(ctx context.Context, args []string) error {
	id, err := idArg(args, "fileId")
	if err != nil {
		return err
	}
	qc, err := a.files.QuickCheck(ctx, id)
	if err != nil {
		return err
	}

	badge := access.BadgeFor(qc.RequestStatus, qc.HasAccess)
	a.printf("%s (%s, %s)\n", qc.Name, kindLabel(qc.Type), access.FormatSize(qc.Size))
	a.printf("Status: %s\n", badge.Text)
	a.printf("%s\n", qc.Message)
	if step := nextStep(qc.FileView); step != "-" && !qc.IsOwner {
		a.printf("Next: %s\n", step)
	}
	return nil
}

func (a *App) History(ctx context.Context) error {
	ts, err := a.files.History(ctx, historyLimit)
	if err != nil {
		return err
	}
	renderTransfers(a.out, ts)
	return nil
}
