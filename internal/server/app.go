// Package server wires the gophnotes server together: database and
// migrations, object storage, the credential services and the HTTP and gRPC
// endpoints. It owns graceful shutdown on SIGINT/SIGTERM.
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

	"github.com/dmitrijs2005/gophnotes/internal/logging"
	"github.com/dmitrijs2005/gophnotes/internal/server/auth"
	"github.com/dmitrijs2005/gophnotes/internal/server/config"
	"github.com/dmitrijs2005/gophnotes/internal/server/httpapi"
	"github.com/dmitrijs2005/gophnotes/internal/server/metrics"
	"github.com/dmitrijs2005/gophnotes/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophnotes/internal/server/services"
	"github.com/dmitrijs2005/gophnotes/internal/server/storage"
	"github.com/sethvargo/go-retry"

	gs "github.com/dmitrijs2005/gophnotes/internal/server/grpc"
)

// dbPingBackoff is how the first database ping is retried while the
// database container is still starting.
var dbPingBackoff = func() retry.Backoff {
	return retry.WithMaxRetries(6, retry.NewExponential(250*time.Millisecond))
}

type App struct {
	config      *config.Config
	logger      logging.Logger
	db          *sql.DB
	metrics     *metrics.Metrics
	tokens      *auth.TokenManager
	accounts    *services.AccountService
	notes       *services.NoteService
	attachments *services.AttachmentService
}

// NewApp opens and migrates the database and builds every service. The
// signing secret is read from c once, here.
func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if c.UsesDefaultSecret() {
		logger.Warn(ctx, "JWT secret is the development default; set JWT_SECRET before exposing the server")
	}

	db, dialect, err := repomanager.OpenDB(c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	if err := pingDB(ctx, db, logger); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping error: %w", err)
	}

	rm := repomanager.NewRepositoryManager(dialect)
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	tokens, err := auth.NewTokenManager([]byte(c.SecretKey), c.TokenValidityDuration)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	store := newObjectStore(ctx, c, logger)
	hasher := auth.NewBcryptHasher(c.BcryptCost)

	return &App{
		config:      c,
		logger:      logger,
		db:          db,
		metrics:     metrics.New(),
		tokens:      tokens,
		accounts:    services.NewAccountService(db, rm, hasher, tokens, logger),
		notes:       services.NewNoteService(db, rm, store, logger),
		attachments: services.NewAttachmentService(db, rm, store, logger),
	}, nil
}

func pingDB(ctx context.Context, db *sql.DB, logger logging.Logger) error {
	return retry.Do(ctx, dbPingBackoff(), func(ctx context.Context) error {
		if err := db.PingContext(ctx); err != nil {
			logger.Warn(ctx, "database not reachable yet", "error", err)
			return retry.RetryableError(err)
		}
		return nil
	})
}

// newObjectStore returns nil, disabling attachments, when S3 is not
// configured or the client cannot be built.
func newObjectStore(ctx context.Context, c *config.Config, logger logging.Logger) storage.ObjectStore {
	if c.S3Bucket == "" || c.S3BaseEndpoint == "" {
		logger.Info(ctx, "attachment storage disabled")
		return nil
	}
	st, err := storage.NewS3Store(ctx, storage.S3Config{
		Region:       c.S3Region,
		AccessKey:    c.S3RootUser,
		SecretKey:    c.S3RootPassword,
		BaseEndpoint: c.S3BaseEndpoint,
		Bucket:       c.S3Bucket,
	})
	if err != nil {
		logger.Error(ctx, "attachment storage disabled", "error", err)
		return nil
	}
	return st
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
	s := httpapi.NewHTTPServer(app.config.EndpointAddrHTTP, app.logger, httpapi.Deps{
		Accounts:    app.accounts,
		Notes:       app.notes,
		Attachments: app.attachments,
		Verifier:    app.tokens,
		Metrics:     app.metrics,
		Health:      app.db.PingContext,
	})

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.notes, app.tokens)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run serves HTTP and gRPC until ctx is cancelled, a signal arrives or one
// of the servers fails, then closes the database.
func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "db close failed", "error", err)
	}
	app.logger.Info(ctx, "App stopped")
}
