package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/payvost/payvost-web-sub011/internal/config"
	"github.com/payvost/payvost-web-sub011/internal/fx"
	"github.com/payvost/payvost-web-sub011/internal/logging"
	"github.com/payvost/payvost-web-sub011/internal/server"
)

func main() {
	envLoaded := godotenv.Load() == nil

	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}
	logger := logging.Setup(cfg.LogLevel)
	if !envLoaded {
		logger.Info("no .env file found; relying on existing environment")
	}

	ctx := context.Background()
	store, dbPing, err := server.OpenStore(ctx, cfg)
	if err != nil {
		logger.Error("open storage", "driver", cfg.StorageDriver, "error", err)
		os.Exit(1)
	}
	defer store.Close()

	rates, closeRates, err := server.NewFX(ctx, cfg, logger)
	if err != nil {
		logger.Error("init exchange rates", "provider", cfg.FXProvider, "error", err)
		os.Exit(1)
	}
	defer closeRates()

	if cfg.FXRefreshSchedule != "" {
		refresher, err := fx.NewRefresher(rates, cfg.FXRefreshSchedule, logger)
		if err != nil {
			logger.Error("schedule rate refresh", "error", err)
			os.Exit(1)
		}
		refresher.Start()
		defer refresher.Stop()
	}

	srv := server.New(cfg, server.Deps{Store: store, FX: rates, Logger: logger, DBPing: dbPing})

	go func() {
		logger.Info("payvost api listening", "address", cfg.HTTPAddress(), "storage", cfg.StorageDriver, "fx_provider", cfg.FXProvider)
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			os.Exit(1)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctxShutdown); err != nil {
		logger.Error("graceful shutdown error", "error", err)
	}
}
