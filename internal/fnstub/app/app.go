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

	stubhttp "github.com/aussiebroadwan/portal/internal/fnstub/http"
	"github.com/aussiebroadwan/portal/internal/fnstub/service"
	"github.com/aussiebroadwan/portal/internal/fnstub/store/drivers/sqlite"
	"github.com/aussiebroadwan/portal/pkg/cryptox"
	"github.com/aussiebroadwan/portal/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags.
	BuildVersion = "v0.1.0"
)

// Application runs the stand-in authentication functions.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db      *sqlite.Store
	service *service.CredentialService
	server  *http.Server
}

func New(cfg Config) (*Application, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "fnstub",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	pepper, err := cryptox.LoadSecretFile(cfg.PepperFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load pepper: %w", err)
	}

	secretKey, err := cryptox.LoadSecretFile(cfg.SecretKeyFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load secret key: %w", err)
	}
	secrets, err := cryptox.NewSecretBox([]byte(secretKey))
	if err != nil {
		return nil, err
	}

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	app.service = &service.CredentialService{
		Store:          app.db,
		Hasher:         cryptox.Hasher{Pepper: pepper},
		Secrets:        secrets,
		Issuer:         cfg.Issuer,
		MaxPasswordAge: cfg.MaxPasswordAge,
	}

	app.initHTTP()
	return app, nil
}

// Handler exposes the stub's root handler.
func (app *Application) Handler() http.Handler {
	return app.server.Handler
}

// Run serves until SIGINT or SIGTERM, then shuts down gracefully.
func (app *Application) Run() error {
	app.logger.Info("function stub starting",
		"port", app.cfg.Port,
		"format", app.cfg.ResponseFormat,
		"version", BuildVersion,
	)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
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

func (app *Application) Shutdown() error {
	app.logger.Info("shutting down function stub...")

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

	app.logger.Info("function stub stopped")
	return nil
}

// initDatabase opens the user store and applies migrations.
func (app *Application) initDatabase() error {
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", app.cfg.DatabaseFile)
	db, err := sqlite.NewStore(dsn)
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

func (app *Application) initHTTP() {
	// Validate already vetted the format.
	format, _ := stubhttp.ParseFormat(app.cfg.ResponseFormat)

	router := stubhttp.NewRouter(app.service, app.db, format, BuildVersion, app.logger)
	router.TrustProxy = app.cfg.TrustProxy
	router.ApplyRoutes()

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
