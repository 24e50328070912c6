package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/gophshare/internal/access"
)

// Request asks for access to a file. The message is taken from the remaining
// arguments or prompted for.
func (a *App) Request(ctx context.Context, args []string) error {
	id, err := idArg(args, "fileId")
	if err != nil {
		return err
	}

	message := strings.Join(args[1:], " ")
	if message == "" {
		if message, err = getSimpleText(a.reader, "Message to the owner (optional)", a.out); err != nil {
			return err
		}
	}

	req, err := a.workflow.Submit(ctx, a.currentSession(), id, message)
	if err != nil {
		return err
	}
	a.printf("Request %d for %s sent, status %s\n", req.ID, req.File.Name, req.Status)
	return nil
}

func (a *App) Received(ctx context.Context) error {
	snap, err := a.workflow.Refresh(ctx, a.currentSession())
	if err != nil {
		return err
	}
	renderRequests(a.out, snap.Received, true)
	return nil
}

func (a *App) Sent(ctx context.Context) error {
	snap, err := a.workflow.Refresh(ctx, a.currentSession())
	if err != nil {
		return err
	}
	renderRequests(a.out, snap.Sent, false)
	return nil
}

func (a *App) Approve(ctx context.Context, args []string) error {
	return a.resolve(ctx, args, access.StatusApproved)
}

func (a *App) Reject(ctx context.Context, args []string) error {
	return a.resolve(ctx, args, access.StatusRejected)
}

func (a *App) resolve(ctx context.Context, args []string, decision access.RequestStatus) error {
	id, err := idArg(args, "requestId")
	if err != nil {
		return err
	}

	req, err := a.workflow.Resolve(ctx, a.currentSession(), id, decision)
	if err != nil {
		return err
	}
	a.printf("Request %d from %s is now %s\n", req.ID, displayName(req.Requester), req.Status)
	return nil
}

func (a *App) Withdraw(ctx context.Context, args []string) error {
	id, err := idArg(args, "requestId")
	if err != nil {
		return err
	}

	ok, err := confirm(a.reader, fmt.Sprintf("Withdraw request %d?", id), a.out)
	if err != nil {
		return err
	}
	if !ok {
		a.printf("Canceled\n")
		return nil
	}

	if err := a.workflow.Withdraw(ctx, a.currentSession(), id); err != nil {
		return err
	}
	a.printf("Request %d withdrawn\n", id)
	return nil
}

func (a *App) Stats(ctx context.Context) error {
	snap, err := a.workflow.Refresh(ctx, a.currentSession())
	if err != nil {
		return err
	}
	renderStats(a.out, snap.Stats)
	return nil
}

// Refresh reloads the lists and reports what changed on the server side.
func (a *App) Refresh(ctx context.Context) error {
	snap, err := a.workflow.Refresh(ctx, a.currentSession())
	if err != nil {
		return err
	}
	a.printf("Reloaded: %d sent, %d received, %d private files\n", len(snap.Sent), len(snap.Received), len(snap.Views))
	return nil
}
