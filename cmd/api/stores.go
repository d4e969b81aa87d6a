package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"libraryapi/internal/auth"
	"libraryapi/internal/author"
	"libraryapi/internal/book"
	"libraryapi/internal/config"
	"libraryapi/internal/library"
	"libraryapi/internal/memstore"
	"libraryapi/internal/platform/cache"
	"libraryapi/internal/platform/postgres"
	"libraryapi/internal/server"
	"libraryapi/internal/user"
)

// pinger is anything /readyz should check.
type pinger interface {
	Ping(ctx context.Context) error
}

// stores holds one repository per domain plus the token blacklist.
type stores struct {
	authors   author.Repository
	books     book.Repository
	libraries library.Repository
	users     user.Repository
	blacklist auth.Blacklist
	ready     []pinger
}

func memoryStores() stores {
	m := memstore.New()
	return stores{
		authors:   m.Authors(),
		books:     m.Books(),
		libraries: m.Libraries(),
		users:     m.Users(),
		blacklist: m.Blacklist(),
	}
}

// openStores connects the configured backends and registers their shutdown
// with srv. Redis, when configured, takes over the blacklist.
func openStores(ctx context.Context, cfg *config.Config, srv *server.Server, logger *slog.Logger) (stores, error) {
	var st stores
	switch cfg.StoreDriver {
	case config.StoreDriverMemory:
		st = memoryStores()
		logger.Warn("using in-memory store, data is lost on restart")
	default:
		pool, err := postgres.Open(ctx, cfg.DatabaseDSN)
		if err != nil {
			return stores{}, fmt.Errorf("open database (%s): %w", postgres.RedactDSN(cfg.DatabaseDSN), err)
		}
		srv.OnShutdown("postgres", func(context.Context) error { pool.Close(); return nil })
		logger.Info("connected to database")

		blacklist := auth.NewPostgresBlacklist(pool)
		cleanupCtx, stop := context.WithCancel(context.Background())
		go blacklist.RunCleanup(cleanupCtx, time.Hour, func(err error) {
			logger.Error("token blacklist cleanup failed", slog.String("error", err.Error()))
		})
		srv.OnShutdown("blacklist-cleanup", func(context.Context) error { stop(); return nil })

		st = stores{
			authors:   author.NewPostgresRepo(pool, cfg.DBTimeout),
			books:     book.NewPostgresRepo(pool, cfg.DBTimeout),
			libraries: library.NewPostgresRepo(pool, cfg.DBTimeout),
			users:     user.NewPostgresRepo(pool, cfg.DBTimeout),
			blacklist: blacklist,
			ready:     []pinger{pool},
		}
	}

	if cfg.RedisURL != "" {
		c, err := cache.New(ctx, cfg.RedisURL)
		if err != nil {
			return stores{}, fmt.Errorf("connect redis: %w", err)
		}
		srv.OnShutdown("redis", func(context.Context) error { return c.Close() })
		logger.Info("connected to redis, token blacklist uses redis")
		st.blacklist = c
		st.ready = append(st.ready, c)
	}
	return st, nil
}
