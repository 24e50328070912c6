package cli

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/gophshare/internal/access"
	"github.com/dmitrijs2005/gophshare/internal/common"
)

// getSimpleText, getPassword and confirm are indirections used to facilitate
// testing. They point to interactive input helpers and can be swapped in tests.
var (
	getSimpleText = GetSimpleText
	getPassword   = GetPassword
	confirm       = Confirm
)

var errPasswordMismatch = errors.New("passwords do not match")

// Register prompts for the account details and creates the account. It does
// not log in.
func (a *App) Register(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	first, err := getSimpleText(a.reader, "First name", a.out)
	if err != nil {
		return err
	}
	last, err := getSimpleText(a.reader, "Last name", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.reader, "Enter password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	again, err := getPassword(a.reader, "Repeat password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(again)

	if string(password) != string(again) {
		return errPasswordMismatch
	}

	u, err := a.auth.Register(ctx, email, first, last, string(password))
	if err != nil {
		return err
	}

	a.printf("Account %s created, you can log in now\n", u.Email)
	return nil
}

// Login prompts for credentials, starts a session and loads the dashboard.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.reader, "Enter password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	sess, err := a.auth.Login(ctx, email, string(password))
	if err != nil {
		return err
	}

	a.setSession(sess)
	a.setMode(ModeOnline)
	a.printf("Login successful\n")

	snap, err := a.workflow.Refresh(ctx, sess)
	if err != nil {
		a.log.Warn(ctx, "initial refresh failed", "error", err)
		return nil
	}
	if n := snap.Stats.PendingReceived; n > 0 {
		a.printf("You have %d access request(s) waiting for your decision, see 'received'\n", n)
	}
	return nil
}

// Logout forgets the saved session and the cached lists.
func (a *App) Logout(ctx context.Context) error {
	if err := a.auth.Logout(ctx); err != nil {
		return err
	}
	a.setSession(access.Session{})
	a.workflow.Store().Reset()
	a.printf("Logged out\n")
	return nil
}
