package cmd

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/nextlevelbuilder/gatekeep/internal/config"
	"github.com/nextlevelbuilder/gatekeep/internal/telegram"
)

func runBot() {
	// Setup structured logging
	logLevel := slog.LevelInfo
	if verbose {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})))

	// Load secrets from .env before reading config (token is env-only).
	if err := godotenv.Load(); err == nil {
		slog.Debug("loaded .env file")
	}

	cfgPath := resolveConfigPath()
	cfg, err := config.Load(cfgPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	if cfg.Telegram.Token == "" {
		slog.Error("no Telegram bot token configured, set GATEKEEP_TELEGRAM_TOKEN")
		os.Exit(1)
	}

	channel, err := telegram.New(cfg.Telegram, cfg.Spam)
	if err != nil {
		slog.Error("failed to create telegram channel", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := channel.Start(ctx); err != nil {
		slog.Error("failed to start telegram channel", "error", err)
		os.Exit(1)
	}

	// Apply spam tuning live when the config file changes.
	if err := config.Watch(ctx, cfgPath, func(newCfg *config.Config) {
		channel.ApplySpamConfig(newCfg.Spam)
	}); err != nil {
		slog.Warn("config watching disabled", "error", err)
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	s := <-sig
	slog.Info("shutting down", "signal", s.String())

	cancel()
	if err := channel.Stop(context.Background()); err != nil {
		slog.Warn("channel stop failed", "error", err)
	}
}
