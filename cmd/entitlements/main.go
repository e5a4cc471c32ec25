package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/magabrotheeeer/content-marketplace/internal/app/entitlements"
	"github.com/magabrotheeeer/content-marketplace/internal/config"
	"github.com/magabrotheeeer/content-marketplace/internal/lib/sl"
)

func main() {
	cfg := config.MustLoad()
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	logger.Info("starting entitlements service", slog.String("env", cfg.Env))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := entitlements.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize entitlements service", sl.Err(err))
		os.Exit(1)
	}

	if err := app.Run(ctx); err != nil {
		logger.Error("entitlements service stopped with error", sl.Err(err))
		os.Exit(1)
	}
	logger.Info("entitlements service stopped")
}
