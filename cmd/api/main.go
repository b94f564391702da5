package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/bryanwahyu/admissions-desk/internal/application"
	appai "github.com/bryanwahyu/admissions-desk/internal/application/ai"
	appauth "github.com/bryanwahyu/admissions-desk/internal/application/auth"
	appnotify "github.com/bryanwahyu/admissions-desk/internal/application/notify"
	appreview "github.com/bryanwahyu/admissions-desk/internal/application/review"
	appscreens "github.com/bryanwahyu/admissions-desk/internal/application/screens"
	"github.com/bryanwahyu/admissions-desk/internal/config"
	"github.com/bryanwahyu/admissions-desk/internal/domain/ai"
	"github.com/bryanwahyu/admissions-desk/internal/domain/review"
	"github.com/bryanwahyu/admissions-desk/internal/domain/screens"
	"github.com/bryanwahyu/admissions-desk/internal/domain/session"
	"github.com/bryanwahyu/admissions-desk/internal/infra/ai/openai"
	"github.com/bryanwahyu/admissions-desk/internal/infra/ai/prompt"
	mysqlp "github.com/bryanwahyu/admissions-desk/internal/infra/db/mysql"
	"github.com/bryanwahyu/admissions-desk/internal/infra/db/postgres"
	"github.com/bryanwahyu/admissions-desk/internal/infra/export"
	"github.com/bryanwahyu/admissions-desk/internal/infra/httpserver"
	minioStore "github.com/bryanwahyu/admissions-desk/internal/infra/storage"
	"github.com/bryanwahyu/admissions-desk/internal/infra/upstream"
	"github.com/bryanwahyu/admissions-desk/internal/logger"
	"github.com/bryanwahyu/admissions-desk/internal/middleware"
)

func main() {
	// .env is optional
	_ = godotenv.Load()

	path := "config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		path = v
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) && os.Getenv("CONFIG_PATH") == "" {
		path = ""
	}

	cfg, err := config.Load(path)
	if err != nil {
		slog.Error("config load error", slog.String("error", err.Error()))
		os.Exit(1)
	}
	log := logger.New(os.Stdout, logger.ParseLevel(cfg.Log.Level))
	slog.SetDefault(log)

	if err := run(cfg, log); err != nil {
		log.Error("gateway stopped", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, sessions, reviews, err := openDatabase(ctx, cfg)
	if err != nil {
		return fmt.Errorf("%s connect: %w", cfg.Database.Driver, err)
	}
	defer db.Close()

	api, err := upstream.New(cfg.Upstream.BaseURL, cfg.UpstreamTimeout(), log)
	if err != nil {
		return err
	}

	checkers := map[string]middleware.HealthChecker{
		"database": &middleware.DatabaseHealthChecker{DB: db},
		"upstream": api,
	}

	clock := application.SystemClock{}
	screensSvc := &appscreens.Service{
		Loader:    api,
		Exporter:  export.PDF{},
		Clock:     clock,
		Logger:    log,
		OnRefresh: func(_ screens.Name, err error) { middleware.RecordRefresh(err) },
	}
	if cfg.Minio.Endpoint != "" {
		store, err := minioStore.New(ctx,
			cfg.Minio.Endpoint,
			cfg.Minio.Region,
			cfg.Minio.BucketName,
			cfg.Minio.AccessKey,
			cfg.Minio.SecretKey,
			cfg.Minio.UseSSL,
		)
		if err != nil {
			return fmt.Errorf("minio init: %w", err)
		}
		screensSvc.Archive = store
		checkers["archive"] = store
	}

	reviewSvc := &appreview.Service{
		Source: api,
		Brief:  briefClient(cfg, log),
		Repo:   reviews,
		Clock:  clock,
		Logger: log,
	}

	limiter := middleware.NewRateLimiter(cfg.RateLimit.LoginCapacity, cfg.RateLimit.LoginRefillRate)
	go limiter.Run(ctx, 5*time.Minute, 10*time.Minute)

	handler := httpserver.NewRouter(httpserver.Deps{
		Screens:        screensSvc,
		Auth:           &appauth.Service{Auth: api, Store: sessions, Clock: clock, Logger: log},
		Review:         reviewSvc,
		Notify:         &appnotify.Service{Registrar: api, Logger: log},
		Sessions:       sessions,
		Checkers:       checkers,
		LoginLimiter:   limiter,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		Logger:         log,
	})

	go func() {
		if err := screensSvc.RefreshAll(ctx); err != nil {
			log.WarnContext(ctx, "initial refresh incomplete", slog.String("error", err.Error()))
		}
		screensSvc.RunRefresher(ctx, cfg.RefreshInterval())
	}()

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", slog.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	log.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout())
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func openDatabase(ctx context.Context, cfg *config.Config) (*sql.DB, session.Store, review.Repository, error) {
	if cfg.Database.Driver == config.DriverPostgres {
		db, err := postgres.Connect(ctx, cfg.PostgresDSN())
		if err != nil {
			return nil, nil, nil, err
		}
		if err := postgres.EnsureSchema(ctx, db); err != nil {
			db.Close()
			return nil, nil, nil, err
		}
		return db, postgres.NewSessionRepository(db), postgres.NewReviewRepository(db), nil
	}

	db, err := mysqlp.Connect(ctx, cfg.MySQLDSN())
	if err != nil {
		return nil, nil, nil, err
	}
	if err := mysqlp.EnsureSchema(ctx, db); err != nil {
		db.Close()
		return nil, nil, nil, err
	}
	return db, mysqlp.NewSessionRepository(db), mysqlp.NewReviewRepository(db), nil
}

// briefClient returns nil when briefs are switched off.
func briefClient(cfg *config.Config, log *slog.Logger) ai.Client {
	var client ai.Client
	switch cfg.AI.Provider {
	case "openai":
		if cfg.AI.BaseURL != "" {
			client = openai.NewClientWithBaseURL(cfg.AI.APIKey, cfg.AI.Model, cfg.AI.BaseURL)
		} else {
			client = openai.NewClient(cfg.AI.APIKey, cfg.AI.Model)
		}
	case "heuristic":
		client = prompt.Heuristic{}
	default:
		return nil
	}
	return appai.NewService(client, cfg.AITimeout(), log)
}
