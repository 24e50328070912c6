// Package httpapi exposes the gophshare services as a JSON API over gin.
package httpapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/gophshare/internal/access"
	"github.com/dmitrijs2005/gophshare/internal/logging"
	"github.com/dmitrijs2005/gophshare/internal/server/metrics"
	"github.com/dmitrijs2005/gophshare/internal/server/models"
	"github.com/dmitrijs2005/gophshare/internal/server/services"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// UserService is the subset of services.UserService the API needs.
type UserService interface {
	Register(ctx context.Context, email, firstName, lastName, password string) (*models.User, error)
	Login(ctx context.Context, email, password string) (*services.TokenPair, *models.User, error)
	RefreshToken(ctx context.Context, refreshToken string) (*services.TokenPair, error)
	Me(ctx context.Context, userID int64) (*models.User, error)
}

// FileService is the subset of services.FileService the API needs.
type FileService interface {
	access.FileCatalog
	CreateUpload(ctx context.Context, sess access.Session, in services.NewFile) (*models.FileUpload, error)
	QuickCheck(ctx context.Context, sess access.Session, fileID int64) (*services.QuickCheckResult, error)
	DownloadURL(ctx context.Context, sess access.Session, fileID int64) (*models.FileDownload, error)
	Delete(ctx context.Context, sess access.Session, fileID int64) error
}

type Options struct {
	Address         string
	SecretKey       string
	CORSOrigins     []string
	ShutdownTimeout time.Duration
}

type Server struct {
	address         string
	users           UserService
	files           FileService
	requests        access.RequestDirectory
	metrics         *metrics.Metrics
	logger          logging.Logger
	jwtSecret       []byte
	shutdownTimeout time.Duration
	engine          *gin.Engine
}

func NewServer(opts Options, us UserService, fs FileService, rd access.RequestDirectory, mt *metrics.Metrics, l logging.Logger) *Server {
	if l == nil {
		l = logging.Nop()
	}
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = 10 * time.Second
	}
	s := &Server{
		address:         opts.Address,
		users:           us,
		files:           fs,
		requests:        rd,
		metrics:         mt,
		logger:          l.With("module", "http_server"),
		jwtSecret:       []byte(opts.SecretKey),
		shutdownTimeout: opts.ShutdownTimeout,
	}
	s.engine = s.routes(opts.CORSOrigins)
	return s
}

func (s *Server) routes(origins []string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())
	if len(origins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     origins,
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Content-Type", "Authorization"},
			ExposeHeaders:    []string{"Content-Length", requestIDHeader},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	r.GET("/metrics", gin.WrapH(s.metrics.Handler()))

	api := r.Group("/api")
	api.GET("/ping", s.ping)

	authGroup := api.Group("/auth")
	authGroup.POST("/register", s.register)
	authGroup.POST("/login", s.login)
	authGroup.POST("/refresh", s.refresh)

	secured := api.Group("", s.accessTokenMiddleware())
	secured.GET("/auth/me", s.me)

	files := secured.Group("/files")
	files.POST("/upload", s.createUpload)
	files.GET("/my-files", s.listOwned)
	files.GET("/public", s.listPublic)
	files.GET("/download/:id", s.downloadURL)
	files.DELETE("/:id", s.deleteFile)

	private := secured.Group("/private-files")
	private.GET("/others", s.listOthersPrivate)
	private.GET("/:id/quick-check", s.quickCheck)

	requests := secured.Group("/requests")
	requests.POST("", s.createRequest)
	requests.GET("/received", s.listReceived)
	requests.GET("/sent", s.listSent)
	requests.PUT("/:id", s.setStatus)
	requests.DELETE("/:id", s.deleteRequest)

	return r
}

// Handler returns the router, mainly for tests.
func (s *Server) Handler() http.Handler { return s.engine }

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

func (s *Server) Serve(ctx context.Context, listen net.Listener) error {
	srv := &http.Server{
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	stopped := make(chan error, 1)
	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()
		stopped <- srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return <-stopped
}
