package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/araufdev/business-management/internal"
	"github.com/araufdev/business-management/internal/access"
	"github.com/araufdev/business-management/internal/auth"
	authPostgres "github.com/araufdev/business-management/internal/auth/postgres"
	"github.com/araufdev/business-management/internal/core/events"
	"github.com/araufdev/business-management/internal/imagestore"
	"github.com/araufdev/business-management/internal/role"
	rolePostgres "github.com/araufdev/business-management/internal/role/postgres"
	"github.com/araufdev/business-management/internal/transport/rest"
	"github.com/araufdev/business-management/internal/user"
	userPostgres "github.com/araufdev/business-management/internal/user/postgres"
	"github.com/araufdev/business-management/pkg/logger"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	gormPostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config        *internal.Config
	DB            *sqlx.DB
	Router        *chi.Mux
	AuthHandler   *auth.Handler
	RoleHandler   *role.Handler
	UserHandler   *user.Handler
	AccessHandler *access.Handler
	Logger        *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	rest.RegisterAllRoutes(deps.Router, rest.RouterDeps{
		DB:             deps.DB.DB,
		AllowedOrigins: deps.Config.Server.AllowedOrigins,
		AuthHandler:    deps.AuthHandler,
		RoleHandler:    deps.RoleHandler,
		UserHandler:    deps.UserHandler,
		AccessHandler:  deps.AccessHandler,
		Logger:         deps.Logger,
	})

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	slog.Info("Starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:         addr,
		Handler:      deps.Router,
		ReadTimeout:  deps.Config.Server.ReadTimeout,
		WriteTimeout: deps.Config.Server.WriteTimeout,
		IdleTimeout:  deps.Config.Server.IdleTimeout,
	}

	// Signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		slog.Info("Received signal, shutting down...", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}
		if err := deps.DB.Close(); err != nil {
			slog.Error("Database close error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}

	slog.Info("Server stopped")
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.InitWithConfig(config.Observability.Logging.Level, config.Observability.Logging.Format)
	appLogger := logger.LoggerWrapper()

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	gormDB, err := initGorm(db)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize orm: %w", err)
	}

	bus := events.NewEventBus(appLogger)
	events.NewAuditLogger(appLogger).Register(bus)

	roleRepo := rolePostgres.NewRoleRepository(gormDB)
	roleService := role.NewService(roleRepo, bus, appLogger)
	roleHandler := role.NewHandler(roleService)

	userRepo := userPostgres.NewUserRepository(gormDB)
	userService := user.NewService(userRepo, roleRepo, bus, config.Security.BCryptCost, appLogger)

	imageStore, err := imagestore.NewS3Store(context.Background(), config.Storage, appLogger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize image store: %w", err)
	}
	userHandler := user.NewHandler(userService, imageStore)

	resolver := access.NewResolver(userRepo, roleRepo, appLogger)
	accessHandler := access.NewHandler(resolver)

	tokenGen := auth.NewJWTTokenGenerator(
		config.Security.AccessTokenSecret,
		config.Security.RefreshTokenSecret,
		config.Security.AccessTokenDuration,
		config.Security.RefreshTokenDuration,
	)
	authRepo := authPostgres.NewRepository(gormDB)
	authService := auth.NewService(authRepo, resolver, tokenGen)
	authHandler := auth.NewHandler(authService)

	return &Dependencies{
		Config:        config,
		Logger:        appLogger,
		DB:            db,
		Router:        chi.NewRouter(),
		AuthHandler:   authHandler,
		RoleHandler:   roleHandler,
		UserHandler:   userHandler,
		AccessHandler: accessHandler,
	}, nil
}

// initDB initializes the database connection
func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	const driver = "pgx"

	dbConn, err := sqlx.Connect(driver, cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
	dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	dbConn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	// verify connection; close underlying *sql.DB on failure
	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return dbConn, nil
}

// initGorm wraps the already-open pgx pool so the ORM and the raw handle
// share one set of connections.
func initGorm(db *sqlx.DB) (*gorm.DB, error) {
	return gorm.Open(gormPostgres.New(gormPostgres.Config{Conn: db.DB}), &gorm.Config{})
}
