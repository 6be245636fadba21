// Package storagetest opens throwaway in-memory SQLite providers for tests.
package storagetest

import (
	"context"
	"testing"

	"daybook/internal/config"
	"daybook/internal/storage"
)

func New(t testing.TB) storage.Provider {
	t.Helper()

	cfg := &config.Storage{
		Type:   config.StorageSQLite,
		SQLite: config.SQLiteStorage{Path: ":memory:"},
	}
	p, err := storage.NewProvider(context.Background(), cfg)
	if err != nil {
		t.Fatalf("failed to open test storage: %v", err)
	}
	t.Cleanup(func() { p.Close() })
	return p
}
