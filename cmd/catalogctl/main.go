// catalogctl is the operator tool for accounts: it creates users with any
// role and changes roles without going through the API.
package main

import (
	"context"
	"fmt"
	"os"

	"libraryapi/internal/config"
	"libraryapi/internal/platform/postgres"
	"libraryapi/internal/user"
	"libraryapi/internal/validate"
)

func main() {
	if err := newRootCmd(openUsers).Execute(); err != nil {
		os.Exit(1)
	}
}

// openUsers builds the user service over the configured Postgres database.
func openUsers(ctx context.Context) (*user.Service, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	if cfg.StoreDriver != config.StoreDriverPostgres {
		return nil, nil, fmt.Errorf("catalogctl needs STORE_DRIVER=postgres, got %q", cfg.StoreDriver)
	}
	pool, err := postgres.Open(ctx, cfg.DatabaseDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to %s: %w", postgres.RedactDSN(cfg.DatabaseDSN), err)
	}
	svc := user.NewService(user.NewPostgresRepo(pool, cfg.DBTimeout), user.NewLocalPhotoStore(cfg.UploadDir), validate.UploadPolicy{})
	return svc, pool.Close, nil
}
