package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "github.com/lettrehq/lettre/internal/workspace/http"
	"github.com/lettrehq/lettre/internal/workspace/service"
	"github.com/lettrehq/lettre/internal/workspace/store"
	"github.com/lettrehq/lettre/internal/workspace/store/drivers/sqlite"
	"github.com/lettrehq/lettre/pkg/jwtx"
	"github.com/lettrehq/lettre/pkg/mailx"
	"github.com/lettrehq/lettre/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags. Later problem
	BuildVersion = "v0.1.0"
)

// Application encapsulates the workspace service with all its dependencies
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db       store.Store
	mailer   mailx.Mailer
	verifier jwtx.Verifier

	// Services
	senderService       *service.SenderService
	recipientService    *service.RecipientService
	invitationService   *service.InvitationService
	recoveryService     *service.RecoveryService
	housekeepingService *service.HousekeepingService

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "workspace-service",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	if cfg.JWTSecret == "" {
		return nil, errors.New("WORKSPACE_JWT_SECRET is required")
	}
	verifier, err := jwtx.NewHS256Verifier(cfg.JWTSecret, cfg.JWTIssuer)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize token verifier: %w", err)
	}
	app.verifier = verifier

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	if err := app.initMailer(); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	app.initServices()
	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	// Start housekeeping service
	app.housekeepingService.Start()

	app.logger.Info("workspace service starting", "port", app.cfg.Port, "version", BuildVersion)

	// Start server in a goroutine
	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	// Setup signal handling for graceful shutdown
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a shutdown signal or server error
	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		// Perform graceful shutdown
		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down workspace service...")

	// Give outstanding requests a deadline for completion
	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	// Shutdown the HTTP server
	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	// Stop the housekeeping service
	app.housekeepingService.Stop()

	// Close database connection
	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("workspace service stopped")
	return nil
}

// initDatabase initializes the database and applies migrations
func (app *Application) initDatabase() error {
	host := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", app.cfg.DatabaseFile)
	db, err := sqlite.NewStore(host)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully")
	return nil
}

// initMailer picks the outbound mail transport. Without a Postmark token the
// dev mailer writes the rendered mails to disk instead of sending them.
func (app *Application) initMailer() error {
	if app.cfg.PostmarkServerToken == "" {
		app.logger.Info("no postmark token configured, using dev mailer", "dir", app.cfg.MailOutputDir)
		app.mailer = mailx.NewDevMailer(app.cfg.MailOutputDir)
		return nil
	}

	mailer, err := mailx.NewPostmarkMailer(mailx.Config{
		PostmarkServerToken:  app.cfg.PostmarkServerToken,
		PostmarkAccountToken: app.cfg.PostmarkAccountToken,
		FromEmail:            app.cfg.FromEmail,
		ReplyToEmail:         app.cfg.ReplyToEmail,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize mailer: %w", err)
	}
	app.mailer = mailer
	return nil
}

// initServices initializes all business logic services
func (app *Application) initServices() {
	app.senderService = &service.SenderService{
		Store:    app.db,
		Mailer:   app.mailer,
		BaseURL:  app.cfg.BaseURL,
		TokenTTL: app.cfg.SenderTokenTTL,
	}

	app.recipientService = &service.RecipientService{Store: app.db}

	app.invitationService = &service.InvitationService{
		Store:   app.db,
		Mailer:  app.mailer,
		BaseURL: app.cfg.BaseURL,
		TTL:     app.cfg.InvitationTTL,
	}

	app.recoveryService = &service.RecoveryService{
		Store:   app.db,
		Mailer:  app.mailer,
		BaseURL: app.cfg.BaseURL,
		TTL:     app.cfg.RecoveryTTL,
	}

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.logger,
		app.cfg.HousekeepingInterval,
	)
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		app.verifier,
		app.cfg.BaseURL,
		BuildVersion,
		app.db,
		app.logger,
	)

	// Wire services to router
	router.SenderService = app.senderService
	router.RecipientService = app.recipientService
	router.InvitationService = app.invitationService
	router.RecoveryService = app.recoveryService
	router.ApplyRoutes()

	app.router = router

	// Initialize HTTP server
	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
