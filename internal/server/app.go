// Package server initializes and runs the gophshare server: it opens the
// database, applies migrations, wires the services and serves the HTTP API
// until a signal arrives.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/gophshare/internal/access"
	"github.com/dmitrijs2005/gophshare/internal/logging"
	"github.com/dmitrijs2005/gophshare/internal/server/config"
	"github.com/dmitrijs2005/gophshare/internal/server/httpapi"
	"github.com/dmitrijs2005/gophshare/internal/server/metrics"
	"github.com/dmitrijs2005/gophshare/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophshare/internal/server/services"
)

// TokenPurgeInterval is how often expired refresh tokens are removed.
const TokenPurgeInterval = time.Hour

// openDB is a seam for tests.
var openDB = func(dsn string) (*sql.DB, error) {
	return sql.Open("pgx", dsn)
}

type tokenPurger interface {
	PurgeExpiredTokens(ctx context.Context) (int64, error)
}

type App struct {
	config      *config.Config
	logger      logging.Logger
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	purger      tokenPurger
	httpServer  *httpapi.Server
}

func NewApp(c *config.Config) (*App, error) {
	logger, err := logging.New(c.LogBackend, os.Stdout)
	if err != nil {
		return nil, err
	}

	db, err := openDB(c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	mt := metrics.New()
	policy := access.Policy{AllowResubmitAfterReject: c.AllowResubmitAfterReject}

	us := services.NewUserService(db, rm, c, logger)
	fs := services.NewFileService(db, rm, services.NewS3Storage(c), policy, mt, logger)
	as := services.NewAccessService(db, rm, policy, mt, logger)

	hs := httpapi.NewServer(httpapi.Options{
		Address:         c.EndpointAddr,
		SecretKey:       c.SecretKey,
		CORSOrigins:     c.CORSOrigins,
		ShutdownTimeout: c.ShutdownTimeout,
	}, us, fs, as, mt, logger)

	return &App{config: c, logger: logger, db: db, repomanager: rm, purger: us, httpServer: hs}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.httpServer.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// purgeTokens removes expired refresh tokens every interval until ctx ends.
func (app *App) purgeTokens(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := app.purger.PurgeExpiredTokens(ctx); err != nil {
				app.logger.Warn(ctx, "token purge failed", "error", err)
			}
		}
	}
}

// Run applies migrations and serves until ctx is cancelled or a signal
// arrives.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()
	defer app.db.Close()

	app.logger.Info(ctx, "Starting app...", "address", app.config.EndpointAddr, "log_backend", app.config.LogBackend)

	if err := app.repomanager.RunMigrations(ctx, app.db); err != nil {
		return fmt.Errorf("migrations error: %w", err)
	}

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.purgeTokens(ctx, TokenPurgeInterval)
	}()

	wg.Wait()

	app.logger.Info(context.Background(), "App stopped")
	if z, ok := app.logger.(*logging.ZapLogger); ok {
		_ = z.Sync()
	}
	return nil
}
