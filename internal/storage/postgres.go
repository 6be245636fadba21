package storage

import (
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"daybook/internal/config"
)

func NewPostgresProvider(cfg *config.Storage) (*SQLProvider, error) {
	if cfg.Postgres.DSN == "" {
		return nil, fmt.Errorf("storage.postgres.dsn is not set")
	}

	provider, err := NewSQLProvider(cfg, "pgx", "postgres", cfg.Postgres.DSN)
	if err != nil {
		return nil, err
	}
	provider.db.SetMaxOpenConns(10)
	provider.db.SetMaxIdleConns(5)
	provider.db.SetConnMaxLifetime(30 * time.Minute)
	return provider, nil
}
