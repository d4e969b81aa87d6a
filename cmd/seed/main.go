package main

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"libraryapi/internal/access"
	"libraryapi/internal/author"
	"libraryapi/internal/book"
	"libraryapi/internal/config"
	"libraryapi/internal/library"
	"libraryapi/internal/platform/postgres"
	"libraryapi/internal/user"
	"libraryapi/internal/validate"
)

// seed fills an empty database with a sample catalog owned by an admin
// account. SEED_ADMIN_EMAIL and SEED_ADMIN_PASSWORD name that account; it
// is created when missing.
func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	cfg, err := config.Load()
	if err != nil {
		fatal(logger, "failed to load config", err)
	}
	if cfg.StoreDriver != config.StoreDriverPostgres {
		fatal(logger, "seed needs STORE_DRIVER=postgres", nil)
	}

	ctx := context.Background()
	pool, err := postgres.Open(ctx, cfg.DatabaseDSN)
	if err != nil {
		fatal(logger, "failed to connect to database", err)
	}
	defer pool.Close()

	users := user.NewService(user.NewPostgresRepo(pool, cfg.DBTimeout), user.NewLocalPhotoStore(cfg.UploadDir), validate.UploadPolicy{})
	admin, err := seedAdmin(ctx, users, os.Getenv("SEED_ADMIN_EMAIL"), os.Getenv("SEED_ADMIN_PASSWORD"))
	if err != nil {
		fatal(logger, "failed to prepare admin account", err)
	}

	svc := services{
		authors:   author.NewService(author.NewPostgresRepo(pool, cfg.DBTimeout), true),
		books:     book.NewService(book.NewPostgresRepo(pool, cfg.DBTimeout), true),
		libraries: library.NewService(library.NewPostgresRepo(pool, cfg.DBTimeout), true),
	}
	res, err := seedCatalog(ctx, svc, admin.Actor())
	if err != nil {
		fatal(logger, "seeding failed", err)
	}
	if res.skipped {
		logger.Info("catalog already has books, nothing to do")
		return
	}
	logger.Info("catalog seeded", slog.Int("authors", res.authors), slog.Int("books", res.books))
}

func seedAdmin(ctx context.Context, users *user.Service, email, password string) (user.User, error) {
	if email == "" || password == "" {
		return user.User{}, errors.New("SEED_ADMIN_EMAIL and SEED_ADMIN_PASSWORD are required")
	}
	u, err := users.GetByEmail(ctx, email)
	if err == nil {
		if u.Role != access.RoleAdmin {
			return user.User{}, errors.New("seed account exists but is not an Admin")
		}
		return u, nil
	}
	if !errors.Is(err, user.ErrNotFound) {
		return user.User{}, err
	}
	return users.CreateWithRole(ctx, user.RegisterInput{Email: email, Username: "seed-admin", Password: password}, access.RoleAdmin)
}

func fatal(logger *slog.Logger, msg string, err error) {
	if err != nil {
		logger.Error(msg, slog.String("error", err.Error()))
	} else {
		logger.Error(msg)
	}
	os.Exit(1)
}
