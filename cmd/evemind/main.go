package main

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/slack-go/slack"

	"github.com/evemind/evemind/internal/auth"
	"github.com/evemind/evemind/internal/config"
	"github.com/evemind/evemind/internal/events"
	"github.com/evemind/evemind/internal/notify"
	"github.com/evemind/evemind/internal/server"
	"github.com/evemind/evemind/internal/store"
	"github.com/evemind/evemind/web"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("startup failed")
	}
}

func run() error {
	// Initialize structured logging from environment.
	logLevel := os.Getenv("EVEMIND_LOG_LEVEL")
	level, parseErr := zerolog.ParseLevel(logLevel)
	if parseErr != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	logFormat := os.Getenv("EVEMIND_LOG_FORMAT")
	if logFormat == "text" {
		log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	} else {
		log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
	}

	// Load configuration from environment.
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// Event bus feeding the websocket hub and notifiers.
	bus := events.NewBus()

	// Open the record store (loads the data file or seeds defaults).
	st, err := store.Open(cfg.Store.DataFile,
		store.WithEvents(bus),
		store.WithBackupDir(cfg.Store.BackupDir),
	)
	if err != nil {
		return err
	}

	// Create auth service over the usuarios collection.
	authSvc := auth.NewService(st, cfg.JWT.Secret, cfg.JWT.AccessTTL, cfg.JWT.RefreshTTL)

	// Prepare embedded dashboard assets (strip "static/" prefix).
	webAssets, err := fs.Sub(web.Assets, "static")
	if err != nil {
		return fmt.Errorf("web assets: %w", err)
	}

	// Graceful shutdown on SIGINT / SIGTERM.
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Slack notifier for high-priority notices: real client if configured.
	if cfg.Slack.BotToken != "" {
		notifier := notify.NewSlackNotifier(slack.New(cfg.Slack.BotToken), cfg.Slack.Channel, bus)
		go notifier.Run(ctx)
		log.Info().Str("channel", cfg.Slack.Channel).Msg("Slack notifications enabled")
	}

	// Create HTTP server with all routes wired.
	srv := server.New(ctx, cfg, st, bus, authSvc, webAssets)

	// Start server in background goroutine.
	go func() {
		log.Info().Str("addr", cfg.Server.Addr).Msg("starting server")
		if startErr := srv.Start(ctx); startErr != nil {
			log.Error().Err(startErr).Msg("server error")
		}
	}()

	// Block until shutdown signal.
	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if shutdownErr := srv.Shutdown(shutdownCtx); shutdownErr != nil {
		return shutdownErr
	}

	log.Info().Msg("stopped")
	return nil
}
