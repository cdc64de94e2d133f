// Package httpapi serves the JSON HTTP API: signup, login, the profile
// endpoint, principal-scoped notes and their attachments.
package httpapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/gophnotes/internal/logging"
	"github.com/dmitrijs2005/gophnotes/internal/server/auth"
	"github.com/dmitrijs2005/gophnotes/internal/server/metrics"
	"github.com/dmitrijs2005/gophnotes/internal/server/models"
	"github.com/dmitrijs2005/gophnotes/internal/server/services"
	"github.com/gin-gonic/gin"
)

const shutdownTimeout = 5 * time.Second

type accountService interface {
	Register(ctx context.Context, username, password string) (*models.Account, error)
	Login(ctx context.Context, username, password string) (*services.Session, error)
}

type noteService interface {
	List(ctx context.Context, p auth.Principal) ([]*models.Note, error)
	Create(ctx context.Context, p auth.Principal, title, description string) (*models.Note, error)
	Update(ctx context.Context, p auth.Principal, id int64, title, description string) (*models.Note, error)
	Delete(ctx context.Context, p auth.Principal, id int64) error
}

type attachmentService interface {
	CreateUpload(ctx context.Context, p auth.Principal, noteID int64, fileName string) (*services.UploadTicket, error)
	DownloadURL(ctx context.Context, p auth.Principal, noteID, attachmentID int64) (string, error)
}

// HealthFunc reports whether the backing store is reachable.
type HealthFunc func(ctx context.Context) error

// Deps are the collaborators of the HTTP API.
type Deps struct {
	Accounts    accountService
	Notes       noteService
	Attachments attachmentService
	Verifier    auth.TokenVerifier
	Metrics     *metrics.Metrics
	Health      HealthFunc
}

type HTTPServer struct {
	address string
	engine  *gin.Engine
	logger  logging.Logger
	deps    Deps
}

func NewHTTPServer(address string, logger logging.Logger, deps Deps) *HTTPServer {
	if deps.Metrics == nil {
		deps.Metrics = metrics.New()
	}
	s := &HTTPServer{
		address: address,
		logger:  logger.With("module", "http_server"),
		deps:    deps,
	}
	s.engine = s.routes()
	return s
}

// Handler returns the router, for tests and embedding.
func (s *HTTPServer) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *HTTPServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "HTTP shutdown failed", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
