package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "github.com/karhulabs/authd/internal/auth/http"
	"github.com/karhulabs/authd/internal/auth/service"
	"github.com/karhulabs/authd/internal/auth/store"
	"github.com/karhulabs/authd/internal/auth/store/drivers/sqlite"
	"github.com/karhulabs/authd/pkg/cryptox"
	"github.com/karhulabs/authd/pkg/jwtx"
	"github.com/karhulabs/authd/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags. Later problem
	BuildVersion = "v0.1.0"
)

// Application encapsulates the auth service with all its dependencies
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db     store.Store
	signer *jwtx.HS256

	// Services
	authService *service.AuthService

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "authd",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	// Set pepper path for password hashing
	cryptox.SetPepperPath(app.cfg.PepperFile)

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	if err := app.initSigner(); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	app.initServices()
	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	app.logger.Info("auth service starting", "port", app.cfg.Port, "version", BuildVersion)

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
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down auth service...")

	// Give outstanding requests a deadline for completion
	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("auth service stopped")
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

// initSigner initializes the HS256 session token signer
func (app *Application) initSigner() error {
	secret := app.cfg.JWTSecret
	if secret == "" {
		secret = devJWTSecret
		app.logger.Warn("AUTH_JWT_SECRET not set, using insecure development secret")
	}

	signer, err := jwtx.NewHS256([]byte(secret), app.cfg.Issuer)
	if err != nil {
		return fmt.Errorf("failed to initialize token signer: %w", err)
	}
	app.signer = signer
	return nil
}

// initServices initializes all business logic services
func (app *Application) initServices() {
	app.authService = &service.AuthService{
		Store:      app.db,
		Signer:     app.signer,
		Issuer:     app.cfg.Issuer,
		SessionTTL: app.cfg.SessionTTL,
	}
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		app.signer,
		BuildVersion,
		app.cfg.CORSAllowedOrigin,
		app.db,
		app.logger,
	)

	// Wire services to router
	router.AuthService = app.authService
	router.ApplyRoutes()

	app.router = router

	// Initialize HTTP server
	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
