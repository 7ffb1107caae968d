package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/phrazzld/accounts-api/internal/config"
	"github.com/phrazzld/accounts-api/internal/platform/memory"
	"github.com/phrazzld/accounts-api/internal/platform/postgres"
	"github.com/phrazzld/accounts-api/internal/service"
	"github.com/phrazzld/accounts-api/internal/service/auth"
	"github.com/phrazzld/accounts-api/internal/store"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// application holds the shared dependencies of the server and releases them
// on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	accounts store.AccountStore

	jwtService     auth.JWTService
	codec          auth.CredentialCodec
	accountService service.AccountService
	sessionService service.SessionService

	registry *prometheus.Registry
}

// newApplication wires the stores and services selected by cfg. With the
// postgres driver it connects to the database and, if migrate is set,
// applies pending migrations first.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger, migrate bool) (*application, error) {
	app := &application{
		config:   cfg,
		logger:   logger,
		registry: prometheus.NewRegistry(),
	}

	app.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	var err error
	switch cfg.Database.Driver {
	case "postgres":
		app.db, err = setupAppDatabase(ctx, cfg.Database, logger)
		if err != nil {
			return nil, err
		}
		if migrate {
			if err := postgres.MigrateUp(ctx, app.db); err != nil {
				app.cleanup()
				return nil, fmt.Errorf("failed to apply migrations: %w", err)
			}
			logger.Info("migrations applied")
		}
		app.registry.MustRegister(collectors.NewDBStatsCollector(app.db, "accounts"))
		app.accounts = postgres.NewPostgresAccountStore(app.db, logger,
			postgres.WithQueryTimeout(cfg.Database.QueryTimeout()))
	case "memory":
		logger.Warn("using in-memory account store, data is lost on restart")
		app.accounts = memory.NewAccountStore(logger)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}

	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		app.cleanup()
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("JWT authentication service initialized",
		"token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes)

	app.codec, err = auth.NewBcryptCodecFromConfig(cfg.Auth)
	if err != nil {
		app.cleanup()
		return nil, fmt.Errorf("failed to initialize credential codec: %w", err)
	}

	opts := []service.AccountServiceOption{
		service.WithPasswordMinLength(cfg.Auth.PasswordMinLength),
	}
	if app.db != nil {
		opts = append(opts, service.WithDB(app.db))
	}
	app.accountService = service.NewAccountService(app.accounts, app.codec, logger, opts...)
	app.sessionService = service.NewSessionService(app.accountService, app.jwtService, logger)

	logger.Info("application initialized successfully")
	return app, nil
}

// Run serves HTTP until ctx is cancelled.
func (app *application) Run(ctx context.Context) error {
	if err := app.startHTTPServer(ctx, app.setupRouter()); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup releases resources held by the application.
func (app *application) cleanup() {
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("error closing database connection", "error", err)
		}
		app.db = nil
	}
	app.logger.Info("application shutdown completed")
}
