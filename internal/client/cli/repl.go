package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dmitrijs2005/gophshare/internal/access"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the command surface the REPL dispatches to.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool

	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error

	MyFiles(ctx context.Context) error
	PublicFiles(ctx context.Context) error
	PrivateFiles(ctx context.Context) error
	Upload(ctx context.Context, args []string) error
	Download(ctx context.Context, args []string) error
	DeleteFile(ctx context.Context, args []string) error
	Check(ctx context.Context, args []string) error
	History(ctx context.Context) error

	Request(ctx context.Context, args []string) error
	Received(ctx context.Context) error
	Sent(ctx context.Context) error
	Approve(ctx context.Context, args []string) error
	Reject(ctx context.Context, args []string) error
	Withdraw(ctx context.Context, args []string) error
	Stats(ctx context.Context) error
	Refresh(ctx context.Context) error
}

const (
	helpLoggedOut = "Available commands: register, login, help, exit"
	helpLoggedIn  = `Available commands:
  my | public | private          list files
  upload [path]                  upload a file
  download <fileId>              download a file you can read
  delete <fileId>                delete one of your files
  check <fileId>                 show your standing on a private file
  request <fileId> [message]     ask the owner for access
  received | sent                list access requests
  approve <requestId>            grant a request for your file
  reject <requestId>             refuse a request for your file
  withdraw <requestId>           take back your pending request
  stats | refresh | history      dashboard, reload, local transfer log
  logout | exit`
)

// runREPL starts a read–eval–print loop for the gophshare CLI.
//
// It reads a line from reader, parses the first token as the command, and
// dispatches to methods on a. Commands other than register, login and help
// require a session. Errors returned by handlers are printed and the loop
// continues. The loop exits on EOF, on "exit"/"quit", or when ctx is done.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		if ctx.Err() != nil {
			return
		}

		printlnFn(fmt.Sprintf("gs %s> ", statusFn()))
		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || strings.TrimSpace(line) == "") {
			return
		}

		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := strings.ToLower(parts[0]), parts[1:]

		switch cmd {
		case "exit", "quit":
			printlnFn("Bye!")
			return
		case "help":
			if a.isLoggedIn() {
				printlnFn(helpLoggedIn)
			} else {
				printlnFn(helpLoggedOut)
			}
			continue
		case "register":
			report(a.Register(ctx))
			continue
		case "login":
			report(a.Login(ctx))
			continue
		}

		handler, ok := sessionCommands(a, args)[cmd]
		if !ok {
			printlnFn("Unknown command:", cmd)
			continue
		}
		if !a.isLoggedIn() {
			printlnFn("Please log in first")
			continue
		}
		report(handler(ctx))
	}
}

func sessionCommands(a execIface, args []string) map[string]func(context.Context) error {
	withArgs := func(fn func(context.Context, []string) error) func(context.Context) error {
		return func(ctx context.Context) error { return fn(ctx, args) }
	}
	return map[string]func(context.Context) error{
		"logout":   a.Logout,
		"my":       a.MyFiles,
		"public":   a.PublicFiles,
		"private":  a.PrivateFiles,
		"upload":   withArgs(a.Upload),
		"download": withArgs(a.Download),
		"delete":   withArgs(a.DeleteFile),
		"check":    withArgs(a.Check),
		"history":  a.History,
		"request":  withArgs(a.Request),
		"received": a.Received,
		"sent":     a.Sent,
		"approve":  withArgs(a.Approve),
		"reject":   withArgs(a.Reject),
		"withdraw": withArgs(a.Withdraw),
		"stats":    a.Stats,
		"refresh":  a.Refresh,
	}
}

func report(err error) {
	if err != nil {
		printlnFn("Error:", describe(err))
	}
}

// describe turns an error into a line for the user.
func describe(err error) string {
	switch access.KindOf(err) {
	case access.Unavailable:
		return "server unavailable, try again later"
	case access.Unauthenticated:
		return "session expired or credentials rejected, please log in"
	case access.Conflict:
		return err.Error() + " (run 'refresh' if it changed elsewhere)"
	default:
		return err.Error()
	}
}
