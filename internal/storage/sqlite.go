package storage

import (
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"daybook/internal/config"
)

func NewSQLiteProvider(cfg *config.Storage) (*SQLProvider, error) {
	path := cfg.SQLite.Path
	if path == "" {
		return nil, fmt.Errorf("storage.sqlite.path is not set")
	}

	dsn := path
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
		dsn = "file:" + path + "?_busy_timeout=5000&_journal_mode=WAL"
	}

	provider, err := NewSQLProvider(cfg, "sqlite3", "sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	// SQLite serialises writers anyway; one connection keeps in-memory databases alive.
	provider.db.SetMaxOpenConns(1)
	return provider, nil
}
