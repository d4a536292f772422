// Package main is the entry point for the ReuniteIt server.
// ReuniteIt is a community lost-and-found listing service.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/prn-tf/reuniteit/internal/auth"
	"github.com/prn-tf/reuniteit/internal/cache/memory"
	"github.com/prn-tf/reuniteit/internal/config"
	"github.com/prn-tf/reuniteit/internal/handler"
	"github.com/prn-tf/reuniteit/internal/repository"
	"github.com/prn-tf/reuniteit/internal/repository/postgres"
	redisrepo "github.com/prn-tf/reuniteit/internal/repository/redis"
	"github.com/prn-tf/reuniteit/internal/repository/sqlite"
	"github.com/prn-tf/reuniteit/internal/service"
	"github.com/prn-tf/reuniteit/internal/storage"
)

// Version information (set at build time)
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg := config.MustLoad(*configPath)
	logger := setupLogger(cfg.Logging)
	log.Logger = logger

	logger.Info().
		Str("version", Version).
		Str("build_time", BuildTime).
		Str("git_commit", GitCommit).
		Msg("Starting ReuniteIt server")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal().Err(err).Msg("server exited with error")
	}
}

func run(ctx context.Context, cfg *config.Config, logger zerolog.Logger) error {
	// Repositories.
	userRepo, reportRepo, closeDB, err := connectDatabase(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeDB()

	// Listing cache: Redis when configured, in-process otherwise.
	var cache repository.Cache
	if cfg.Redis.Enabled {
		rc, err := redisrepo.NewCache(ctx, cfg.Redis, logger)
		if err != nil {
			return fmt.Errorf("connecting to redis: %w", err)
		}
		cache = rc
	} else {
		cache = memory.NewCache()
	}
	defer cache.Close()

	reportRepo = repository.NewCachedReportRepository(reportRepo, cache, cfg.Redis.ListingTTL, logger)

	// Image upload backend.
	uploads, uploadsDir, err := buildUploadBackend(ctx, cfg, logger)
	if err != nil {
		return err
	}

	// Services.
	userService := service.NewUserService(userRepo, reportRepo, cfg.Auth.BcryptCost, logger)
	reportService := service.NewReportService(reportRepo, userRepo, uploads, logger)

	// HTTP surface.
	renderer, err := handler.NewRenderer(strings.TrimRight(cfg.Server.BaseURL, "/"), logger)
	if err != nil {
		return fmt.Errorf("parsing templates: %w", err)
	}

	cookies := auth.CookieConfig{
		SessionTTL: cfg.Auth.SessionTTL,
		AdminTTL:   cfg.Auth.AdminTTL,
		Secure:     cfg.Auth.SecureCookies,
	}

	var metrics *handler.Metrics
	var metricsServer *http.Server
	if cfg.Metrics.Enabled {
		m, registry := handler.NewMetrics()
		metrics = m
		mux := http.NewServeMux()
		mux.Handle(cfg.Metrics.Path, handler.MetricsHandler(registry))
		metricsServer = &http.Server{
			Addr:    fmt.Sprintf(":%d", cfg.Metrics.Port),
			Handler: mux,
		}
	}

	router := handler.NewRouter(handler.RouterConfig{
		AuthHandler:   handler.NewAuthHandler(userService, renderer, cookies, logger),
		ReportHandler: handler.NewReportHandler(reportService, renderer, cfg.Server.MaxUploadSize, logger),
		ProfileHandler: handler.NewProfileHandler(
			userService, reportService, renderer, logger),
		AdminHandler: handler.NewAdminHandler(handler.AdminHandlerConfig{
			Users:   userService,
			Reports: reportService,
			Credentials: auth.AdminCredentials{
				Email:    cfg.Auth.AdminEmail,
				Password: cfg.Auth.AdminPassword,
			},
			Cookies:  cookies,
			Renderer: renderer,
			Logger:   logger,
		}),
		Renderer:       renderer,
		AuthMiddleware: auth.Middleware(userService, cookies, logger),
		Metrics:        metrics,
		UploadsDir:     uploadsDir,
		UploadsURL:     strings.TrimRight(cfg.Uploads.PublicURL, "/"),
		Logger:         logger,
	})

	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router.Handler(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 2)

	go func() {
		logger.Info().Str("addr", server.Addr).Msg("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	if metricsServer != nil {
		go func() {
			logger.Info().Str("addr", metricsServer.Addr).Msg("metrics server listening")
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- fmt.Errorf("metrics server: %w", err)
			}
		}()
	}

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("HTTP server shutdown failed")
	}
	if metricsServer != nil {
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("metrics server shutdown failed")
		}
	}

	return nil
}

// connectDatabase opens the configured driver with a linear retry so the
// server survives the database coming up after it does.
func connectDatabase(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (repository.UserRepository, repository.ReportRepository, func(), error) {
	attempts := cfg.Database.ConnectRetries + 1

	for attempt := 1; ; attempt++ {
		userRepo, reportRepo, closeDB, err := openDatabase(ctx, cfg, logger)
		if err == nil {
			return userRepo, reportRepo, closeDB, nil
		}

		if attempt >= attempts {
			return nil, nil, nil, fmt.Errorf("connecting to database after %d attempts: %w", attempt, err)
		}

		logger.Warn().
			Err(err).
			Int("attempt", attempt).
			Dur("retry_in", cfg.Database.ConnectRetryDelay).
			Msg("database connection failed, retrying")

		select {
		case <-ctx.Done():
			return nil, nil, nil, ctx.Err()
		case <-time.After(cfg.Database.ConnectRetryDelay):
		}
	}
}

func openDatabase(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (repository.UserRepository, repository.ReportRepository, func(), error) {
	switch cfg.Database.Driver {
	case "postgres":
		db, err := postgres.NewDB(ctx, cfg.Database, logger)
		if err != nil {
			return nil, nil, nil, err
		}
		if err := db.Migrate(ctx); err != nil {
			db.Close()
			return nil, nil, nil, fmt.Errorf("running migrations: %w", err)
		}
		return postgres.NewUserRepository(db), postgres.NewReportRepository(db), func() { db.Close() }, nil

	default:
		sqliteCfg := sqlite.DefaultConfig(cfg.Database.Path)
		sqliteCfg.JournalMode = cfg.Database.JournalMode
		sqliteCfg.BusyTimeout = cfg.Database.BusyTimeout
		sqliteCfg.CacheSize = cfg.Database.CacheSize
		sqliteCfg.SynchronousMode = cfg.Database.SynchronousMode

		db, err := sqlite.NewDB(ctx, sqliteCfg, logger)
		if err != nil {
			return nil, nil, nil, err
		}
		if err := db.Migrate(ctx); err != nil {
			db.Close()
			return nil, nil, nil, fmt.Errorf("running migrations: %w", err)
		}
		return sqlite.NewUserRepository(db), sqlite.NewReportRepository(db), func() { db.Close() }, nil
	}
}

// buildUploadBackend selects the image storage backend. The second return is
// the local directory to serve over HTTP, empty for S3.
func buildUploadBackend(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (storage.Backend, string, error) {
	if cfg.Uploads.Backend == "s3" {
		backend, err := storage.NewS3Backend(ctx, cfg.Uploads.S3, logger)
		if err != nil {
			return nil, "", fmt.Errorf("initializing s3 upload backend: %w", err)
		}
		return backend, "", nil
	}

	backend, err := storage.NewFilesystemBackend(cfg.Uploads.Dir, strings.TrimRight(cfg.Uploads.PublicURL, "/"), logger)
	if err != nil {
		return nil, "", fmt.Errorf("initializing filesystem upload backend: %w", err)
	}
	return backend, cfg.Uploads.Dir, nil
}

func setupLogger(cfg config.LoggingConfig) zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil {
		level = zerolog.InfoLevel
	}

	zerolog.TimeFieldFormat = cfg.TimeFormat

	var logger zerolog.Logger
	if cfg.Format == "console" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	} else {
		logger = zerolog.New(os.Stderr)
	}

	return logger.Level(level).With().Timestamp().Logger()
}
