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

	httpapi "github.com/jobfolio/auth/internal/auth/http"
	"github.com/jobfolio/auth/internal/auth/service"
	"github.com/jobfolio/auth/internal/auth/store"
	"github.com/jobfolio/auth/internal/auth/store/drivers/sqlite"
	"github.com/jobfolio/auth/pkg/cryptox"
	"github.com/jobfolio/auth/pkg/jwtx"
	"github.com/jobfolio/auth/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags. Later problem
	BuildVersion = "v0.1.0"
)

// Application encapsulates the auth service with all its dependencies.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db           store.Store
	accessCodec  *jwtx.Codec
	refreshCodec *jwtx.Codec

	tokenService        *service.TokenService
	inviteService       *service.InviteService
	userService         *service.UserService
	housekeepingService *service.HousekeepingService

	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "auth-service",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	// Set pepper path for password hashing
	cryptox.SetPepperPath(app.cfg.PepperFile)

	if err := app.initCodecs(); err != nil {
		return nil, err
	}
	if err := app.initDatabase(); err != nil {
		return nil, err
	}
	app.initServices()
	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.housekeepingService.Start()

	app.logger.Info("auth service starting", "port", app.cfg.Port, "version", BuildVersion)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

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

// Shutdown gracefully shuts down the application.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down auth service...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.housekeepingService.Stop()

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("auth service stopped")
	return nil
}

// initCodecs builds the per-token-type HS256 codecs. Missing secrets fall
// back to ephemeral random ones, which keeps local development friction-free
// but invalidates every outstanding token on restart.
func (app *Application) initCodecs() error {
	accessSecret := app.cfg.AccessSecret
	if accessSecret == "" {
		var err error
		accessSecret, err = cryptox.GenerateToken(cryptox.TokenSize256)
		if err != nil {
			return fmt.Errorf("failed to generate ephemeral access secret: %w", err)
		}
		app.logger.Warn("AUTH_ACCESS_SECRET not set; using an ephemeral secret, tokens will not survive restarts")
	}

	refreshSecret := app.cfg.RefreshSecret
	if refreshSecret == "" {
		var err error
		refreshSecret, err = cryptox.GenerateToken(cryptox.TokenSize256)
		if err != nil {
			return fmt.Errorf("failed to generate ephemeral refresh secret: %w", err)
		}
		app.logger.Warn("AUTH_REFRESH_SECRET not set; using an ephemeral secret, sessions will not survive restarts")
	}

	if accessSecret == refreshSecret {
		return fmt.Errorf("access and refresh secrets must differ")
	}

	app.accessCodec = jwtx.NewCodec([]byte(accessSecret), app.cfg.Issuer)
	app.refreshCodec = jwtx.NewCodec([]byte(refreshSecret), app.cfg.Issuer)
	return nil
}

// initDatabase initializes the database and applies migrations.
func (app *Application) initDatabase() error {
	// _pragma applies to every pooled connection, not just the first.
	host := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", app.cfg.DatabaseFile)
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

// initServices initializes all business logic services.
func (app *Application) initServices() {
	app.tokenService = &service.TokenService{
		Store:            app.db,
		AccessCodec:      app.accessCodec,
		RefreshCodec:     app.refreshCodec,
		AccessTTL:        app.cfg.AccessTTL,
		RefreshTTL:       app.cfg.RefreshTTL,
		SessionTTL:       app.cfg.SessionTTL,
		ImpersonationTTL: app.cfg.ImpersonationTTL,
	}

	app.inviteService = &service.InviteService{Store: app.db}
	app.userService = &service.UserService{Store: app.db}

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.logger,
		app.cfg.HousekeepingInterval,
	)
}

// initHTTP initializes the HTTP router and server.
func (app *Application) initHTTP() {
	cookies := &httpapi.CookieManager{
		Secure:     app.cfg.IsProd(),
		RefreshTTL: app.cfg.RefreshTTL,
	}

	router := httpapi.NewRouter(
		app.accessCodec,
		cookies,
		BuildVersion,
		app.db,
		app.logger,
	)

	router.TokenService = app.tokenService
	router.InviteService = app.inviteService
	router.UserService = app.userService
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
