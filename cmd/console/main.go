package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"
	"golang.org/x/term"

	"github.com/bryanwahyu/admissions-desk/internal/application"
	appai "github.com/bryanwahyu/admissions-desk/internal/application/ai"
	appauth "github.com/bryanwahyu/admissions-desk/internal/application/auth"
	appreview "github.com/bryanwahyu/admissions-desk/internal/application/review"
	"github.com/bryanwahyu/admissions-desk/internal/config"
	"github.com/bryanwahyu/admissions-desk/internal/console"
	"github.com/bryanwahyu/admissions-desk/internal/domain/ai"
	"github.com/bryanwahyu/admissions-desk/internal/infra/ai/openai"
	"github.com/bryanwahyu/admissions-desk/internal/infra/ai/prompt"
	"github.com/bryanwahyu/admissions-desk/internal/infra/devicestore"
	"github.com/bryanwahyu/admissions-desk/internal/infra/upstream"
	"github.com/bryanwahyu/admissions-desk/internal/logger"
)

func main() {
	_ = godotenv.Load()

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Fprintln(os.Stderr, "admissions console needs an interactive terminal")
		os.Exit(2)
	}

	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		if _, err := os.Stat("config.yaml"); err == nil {
			path = "config.yaml"
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, "config load error:", err)
		os.Exit(1)
	}

	if err := run(cfg); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	if err := os.MkdirAll(cfg.Console.DataDir, 0o700); err != nil {
		return fmt.Errorf("data dir: %w", err)
	}

	// the terminal belongs to tview, so logs go to a file
	logFile, err := os.OpenFile(filepath.Join(cfg.Console.DataDir, "console.log"),
		os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return fmt.Errorf("open log: %w", err)
	}
	defer logFile.Close()
	log := logger.New(logFile, logger.ParseLevel(cfg.Log.Level))
	slog.SetDefault(log)

	device, err := devicestore.Open(filepath.Join(cfg.Console.DataDir, "session"))
	if err != nil {
		return err
	}
	defer device.Close()

	api, err := upstream.New(cfg.Upstream.BaseURL, cfg.UpstreamTimeout(), log)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	clock := application.SystemClock{}
	reviewSvc := &appreview.Service{Source: api, Brief: briefClient(cfg, log), Clock: clock, Logger: log}

	app := console.New(console.Deps{
		Loader: api,
		Auth:   &appauth.Service{Auth: api, Store: device, Clock: clock, Logger: log},
		Review: reviewSvc,
		Device: device,
		Logger: log,
	})
	log.Info("console started", slog.String("upstream", cfg.Upstream.BaseURL))
	if err := app.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("console: %w", err)
	}
	return nil
}

// briefClient mirrors the gateway: reviews carry a brief only when a provider is set.
func briefClient(cfg *config.Config, log *slog.Logger) ai.Client {
	var client ai.Client
	switch cfg.AI.Provider {
	case "openai":
		client = openai.NewClientWithBaseURL(cfg.AI.APIKey, cfg.AI.Model, cfg.AI.BaseURL)
		if cfg.AI.BaseURL == "" {
			client = openai.NewClient(cfg.AI.APIKey, cfg.AI.Model)
		}
	case "heuristic":
		client = prompt.Heuristic{}
	default:
		return nil
	}
	return appai.NewService(client, cfg.AITimeout(), log)
}
