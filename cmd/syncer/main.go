package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"inbox_sync/internal/config"
	"inbox_sync/internal/domain"
	"inbox_sync/internal/publisher"
	"inbox_sync/internal/scheduler"
	"inbox_sync/internal/service"
	"inbox_sync/internal/worker"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	mode := flag.String("mode", "listen", "once, listen or schedule")
	workspaceID := flag.String("workspace", "", "workspace id (once mode)")
	inboxID := flag.String("inbox", "", "external inbox id (once mode)")
	cutoff := flag.String("cutoff", "", "cutoff date YYYY-MM-DD (once mode)")
	flag.Parse()

	// In once mode stdout carries the event stream.
	logOut := io.Writer(os.Stdout)
	if *mode == "once" {
		logOut = os.Stderr
	}

	logger := setupLogger("info", logOut)

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger = setupLogger(cfg.LogLevel, logOut)

	sessions := &sessionFactory{
		source: cfg.Source,
		ingest: cfg.Ingest,
		logger: logger,
	}
	syncService := service.NewSyncService(sessions, logger, cfg.Sync, cfg.Source.Retry)
	runner := service.NewRunner(syncService, cfg.Sync.EventBuffer)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	logger.Info("starting inbox syncer",
		"mode", *mode,
		"source", cfg.Source.BaseURL,
		"ingest", cfg.Ingest.BaseURL,
		"max_pages", cfg.Sync.MaxPages,
	)

	switch *mode {
	case "once":
		err = runOnce(ctx, runner, domain.StartCommand{
			Command:         "start",
			WorkspaceID:     *workspaceID,
			ExternalInboxID: *inboxID,
			CutoffDate:      *cutoff,
			Credentials: domain.Credentials{
				SessionCookie: os.Getenv("SOURCE_SESSION_COOKIE"),
				IngestToken:   os.Getenv("INGEST_TOKEN"),
			},
		})
	case "listen":
		err = listen(ctx, cfg, runner, logger)
	case "schedule":
		err = scheduler.NewScheduler(runner, cfg.Sync, logger).Start(ctx)
	default:
		logger.Error("unknown mode", "mode", *mode)
		os.Exit(2)
	}

	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("syncer error", "error", err)
		os.Exit(1)
	}
}

func runOnce(ctx context.Context, runner *service.Runner, cmd domain.StartCommand) error {
	enc := json.NewEncoder(os.Stdout)

	var last domain.Event
	for event := range runner.Start(ctx, cmd) {
		last = event
		if err := enc.Encode(event); err != nil {
			return err
		}
	}

	if last.Kind == domain.EventError {
		return errors.New(last.Text)
	}
	return nil
}

func listen(ctx context.Context, cfg *config.Config, runner *service.Runner, logger *slog.Logger) error {
	rabbitMQ, err := publisher.NewRabbitMQ(publisher.Config{
		URL:              cfg.RabbitMQ.URL,
		Exchange:         cfg.RabbitMQ.Exchange,
		EventsRoutingKey: cfg.RabbitMQ.EventsRoutingKey,
		StartQueue:       cfg.RabbitMQ.StartQueue,
	}, logger)
	if err != nil {
		return err
	}
	defer rabbitMQ.Close()

	deliveries, err := rabbitMQ.Consume(ctx)
	if err != nil {
		return err
	}

	return worker.NewConsumer(runner, rabbitMQ, cfg.Sync.RunTimeout, logger).Run(ctx, deliveries)
}

func setupLogger(level string, w io.Writer) *slog.Logger {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: logLevel}
	handler := slog.NewJSONHandler(w, opts)
	return slog.New(handler)
}
