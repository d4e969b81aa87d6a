package main

import (
	"context"
	"log/slog"
	"os"

	"libraryapi/internal/config"
	"libraryapi/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger := initLogger(cfg)

	ctx := context.Background()
	srv := server.New(nil, cfg.AppAddr, cfg.ReadTimeout, cfg.WriteTimeout, cfg.ShutdownTimeout, logger)

	st, err := openStores(ctx, cfg, srv, logger)
	if err != nil {
		logger.Error("failed to open stores", slog.String("error", err.Error()))
		os.Exit(1)
	}

	handler, stopLimiter := newRouter(cfg, st, logger)
	srv.SetHandler(handler)
	srv.OnShutdown("rate-limiter", func(context.Context) error { stopLimiter(); return nil })

	logger.Info("starting server",
		slog.String("addr", cfg.AppAddr),
		slog.String("env", cfg.AppEnv),
		slog.String("store", cfg.StoreDriver),
		slog.Bool("public_read", cfg.PublicRead),
	)
	if err := srv.Run(ctx); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func initLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLogLevel(cfg.LogLevel)}

	var h slog.Handler
	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}
	logger := slog.New(h)
	slog.SetDefault(logger)
	return logger
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
