package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophshare/internal/access"
	"github.com/dmitrijs2005/gophshare/internal/client/client"
	"github.com/dmitrijs2005/gophshare/internal/client/config"
	"github.com/dmitrijs2005/gophshare/internal/client/repositories/transfers"
	"github.com/dmitrijs2005/gophshare/internal/client/services"
	"github.com/dmitrijs2005/gophshare/internal/logging"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

// pingTimeout bounds one ping of the online watcher.
const pingTimeout = 3 * time.Second

type App struct {
	config   *config.Config
	auth     services.AuthService
	files    services.FileService
	workflow *access.Workflow
	log      logging.Logger
	reader   *bufio.Reader
	out      io.Writer
	closers  []func() error

	mu      sync.Mutex
	session access.Session
	mode    Mode
}

// NewApp opens the local database, builds the API client and services, and
// returns an App reading commands from stdin.
func NewApp(c *config.Config) (*App, error) {
	ctx := context.Background()

	logOut, closeLog, err := openLogOutput(c.LogFile)
	if err != nil {
		return nil, err
	}
	logger, err := logging.New(c.LogBackend, logOut)
	if err != nil {
		_ = closeLog()
		return nil, err
	}

	db, err := client.InitDatabase(ctx, c.LocalDBPath)
	if err != nil {
		_ = closeLog()
		return nil, fmt.Errorf("error initializing database: %w", err)
	}

	api := client.NewHTTPClient(c.ServerURL, c.RequestTimeout)

	as := services.NewAuthService(api, db, logger)
	fs := services.NewFileService(api, transfers.NewSQLiteRepository(db), c.DownloadDir, logger)
	wf := access.NewWorkflow(api, api, access.Policy{AllowResubmitAfterReject: c.AllowResubmitAfterReject}, logger)

	a := newApp(c, as, fs, wf, logger, os.Stdin, os.Stdout)
	a.closers = append(a.closers, db.Close, closeLog)
	return a, nil
}

func newApp(c *config.Config, as services.AuthService, fs services.FileService, wf *access.Workflow,
	l logging.Logger, in io.Reader, out io.Writer) *App {
	return &App{
		config:   c,
		auth:     as,
		files:    fs,
		workflow: wf,
		log:      l,
		reader:   bufio.NewReader(in),
		out:      out,
	}
}

func openLogOutput(path string) (io.Writer, func() error, error) {
	if path == "" {
		return io.Discard, func() error { return nil }, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o640)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	return f, f.Close, nil
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}

func (a *App) setMode(mode Mode) {
	a.mu.Lock()
	changed := a.mode != mode
	a.mode = mode
	a.mu.Unlock()

	if changed {
		a.printf("Switched to %s mode\n", mode)
	}
}

func (a *App) currentMode() Mode {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.mode
}

func (a *App) setSession(s access.Session) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.session = s
}

func (a *App) currentSession() access.Session {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.session
}

func (a *App) isLoggedIn() bool {
	return a.currentSession().Valid()
}

func (a *App) getStatus() string {
	s := ""
	if sess := a.currentSession(); sess.Email != "" {
		s = sess.Email + " "
	}
	if m := a.currentMode(); m != "" {
		s = s + string(m)
	}
	if s != "" {
		s = fmt.Sprintf("(%s)", s)
	}
	return s
}

// Run shows the REPL until the user exits or ctx is canceled.
func (a *App) Run(ctx context.Context) error {
	defer a.close(ctx)

	a.printf("Welcome to gophshare CLI (type 'help' for commands)\n")

	if n, err := a.files.RecoverInterrupted(ctx); err != nil {
		a.log.Warn(ctx, "failed to check unfinished transfers", "error", err)
	} else if n > 0 {
		a.printf("%d unfinished transfer(s) from the last run were marked failed, see 'history'\n", n)
	}

	a.resume(ctx)

	unsubscribe := a.workflow.Store().Subscribe(a.onSnapshot)
	defer unsubscribe()

	watchCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go a.StartOnlineStatusWatcher(watchCtx, a.config.OnlineCheckInterval)

	runREPL(ctx, a, a.getStatus, a.reader)
	return nil
}

func (a *App) close(ctx context.Context) {
	if err := a.auth.Close(ctx); err != nil {
		a.log.Warn(ctx, "close client", "error", err)
	}
	for _, c := range a.closers {
		if err := c(); err != nil {
			a.log.Warn(ctx, "close resource", "error", err)
		}
	}
}

// resume restores a saved session, if any.
func (a *App) resume(ctx context.Context) {
	sess, err := a.auth.Resume(ctx)
	switch {
	case err == nil:
		a.setSession(sess)
		a.setMode(ModeOnline)
		a.printf("Welcome back, %s\n", sess.Email)
	case errors.Is(err, client.ErrLocalDataNotAvailable):
		a.setMode(ModeOnline)
	case access.IsKind(err, access.Unavailable):
		a.setMode(ModeOffline)
		a.printf("Server unavailable, log in once it is back\n")
	default:
		a.printf("Saved session is no longer valid, please log in\n")
	}
}

// onSnapshot warns when the lists could not be re-read after a change.
func (a *App) onSnapshot(s access.Snapshot) {
	if s.Stale {
		a.printf("Warning: the change was saved but the lists could not be reloaded; run 'refresh'\n")
	}
}

// StartOnlineStatusWatcher pings the server every interval until ctx is
// done. A non-positive interval disables the watcher.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		a.log.Warn(ctx, "online status watcher disabled", "interval", interval)
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			pctx, cancel := context.WithTimeout(ctx, pingTimeout)
			err := a.auth.Ping(pctx)
			cancel()

			if err != nil {
				if ctx.Err() != nil {
					return
				}
				a.setMode(ModeOffline)
			} else {
				a.setMode(ModeOnline)
			}

		case <-ctx.Done():
			return
		}
	}
}
