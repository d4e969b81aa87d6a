package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"libraryapi/internal/config"
	"libraryapi/internal/platform/postgres"
)

func main() {
	var (
		command = flag.String("command", "up", "Migration command: up, down, status, create")
		name    = flag.String("name", "", "Name for 'create' command")
	)
	flag.Parse()

	config.LoadEnvFiles()
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	dir := migrationsDir()

	if *command == "create" {
		if *name == "" {
			fatal(logger, "name is required for 'create' command")
		}
		if err := goose.Create(nil, dir, *name, "sql"); err != nil {
			fatal(logger, "failed to create migration", slog.String("error", err.Error()))
		}
		return
	}

	dsn, err := databaseDSN()
	if err != nil {
		fatal(logger, err.Error())
	}
	pool, err := postgres.Open(context.Background(), dsn)
	if err != nil {
		fatal(logger, "failed to connect to database",
			slog.String("dsn", postgres.RedactDSN(dsn)), slog.String("error", err.Error()))
	}
	defer pool.Close()

	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()

	if err := goose.SetDialect("postgres"); err != nil {
		fatal(logger, "failed to set dialect", slog.String("error", err.Error()))
	}

	switch *command {
	case "up":
		err = goose.Up(db, dir)
	case "down":
		err = goose.Down(db, dir)
	case "status":
		err = goose.Status(db, dir)
	default:
		fatal(logger, fmt.Sprintf("unknown command %q, use: up, down, status, create", *command))
	}
	if err != nil {
		fatal(logger, "migration failed", slog.String("command", *command), slog.String("error", err.Error()))
	}
	logger.Info("migration finished", slog.String("command", *command), slog.String("dir", dir))
}

func fatal(logger *slog.Logger, msg string, attrs ...any) {
	logger.Error(msg, attrs...)
	os.Exit(1)
}
