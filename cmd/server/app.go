package main

import (
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/Zapzatron/ToDo-List-API/internal/config"
	"github.com/Zapzatron/ToDo-List-API/internal/events"
	"github.com/Zapzatron/ToDo-List-API/internal/platform/metrics"
	"github.com/Zapzatron/ToDo-List-API/internal/platform/postgres"
	"github.com/Zapzatron/ToDo-List-API/internal/service"
	"github.com/Zapzatron/ToDo-List-API/internal/service/access"
	"github.com/Zapzatron/ToDo-List-API/internal/service/auth"
	"github.com/Zapzatron/ToDo-List-API/internal/store"
)

// application holds all the shared application dependencies to simplify management
// and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	// Stores
	userStore store.UserStore
	taskStore store.TaskStore

	// Services
	tokenService  auth.TokenService
	passwords     auth.PasswordManager
	userService   service.UserService
	engine        *access.Engine
	accessService *access.Service

	eventEmitter events.EventEmitter
	metrics      *metrics.Metrics
}

// newApplication creates a new application instance backed by PostgreSQL.
// The database connection must be established before application initialization.
func newApplication(cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	return newApplicationWithStores(
		cfg,
		logger,
		db,
		postgres.NewPostgresUserStore(db, logger),
		postgres.NewPostgresTaskStore(db, logger),
	)
}

// newApplicationWithStores wires the services on top of the given stores.
// db may be nil when the stores do not need it.
func newApplicationWithStores(
	cfg *config.Config,
	logger *slog.Logger,
	db *sql.DB,
	userStore store.UserStore,
	taskStore store.TaskStore,
) (*application, error) {
	app := &application{
		config:    cfg,
		logger:    logger,
		db:        db,
		userStore: userStore,
		taskStore: taskStore,
	}

	var err error
	app.tokenService, err = auth.NewTokenService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize token service: %w", err)
	}
	logger.Info("token service initialized",
		"token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes)

	app.passwords = auth.NewBcryptManager(cfg.Auth.BcryptCost)
	app.userService = service.NewUserService(app.userStore, app.passwords, logger)

	var recorder metrics.Recorder = metrics.NopRecorder{}
	if cfg.Metrics.Enabled {
		app.metrics = metrics.New()
		recorder = app.metrics
	}

	app.engine, err = access.NewEngine(app.taskStore, cfg.Auth.GrantPolicy, recorder, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create permission engine: %w", err)
	}
	logger.Info("permission engine initialized", "grant_policy", app.engine.GrantPolicy())

	emitter := events.NewInMemoryEventEmitter(logger)
	emitter.RegisterHandler(events.NewLoggingHandler(logger))
	app.eventEmitter = emitter

	app.accessService = access.NewService(
		app.tokenService,
		app.userService,
		app.taskStore,
		app.engine,
		app.eventEmitter,
		logger,
	)

	logger.Info("application initialized successfully")
	return app, nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("error closing database connection", "error", err)
		}
	}

	app.logger.Info("application shutdown completed")
}
