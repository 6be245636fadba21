package storage

import (
	"context"
	"fmt"
	"time"

	"daybook/internal/config"
)

type Provider interface {
	Close() error
	Ping(ctx context.Context) error
	GetSchemaVersion(ctx context.Context) (int, error)
	// Migrate moves the schema to target. -1 means the latest version.
	Migrate(ctx context.Context, target int) error

	// Attendance
	GetAttendance(ctx context.Context, userID string, day string) (*Attendance, error)
	CreateAttendance(ctx context.Context, rec *Attendance) error
	SetCheckOut(ctx context.Context, id string, at time.Time) error

	// Todos
	ListTodosDue(ctx context.Context, userID string, from, to time.Time, incompleteOnly bool) ([]Todo, error)
	GetTodo(ctx context.Context, id string, userID string) (*Todo, error)
	CreateTodo(ctx context.Context, todo *Todo) error
	UpdateTodo(ctx context.Context, todo *Todo) error

	// Journal
	ListJournalEntries(ctx context.Context, userID string, day string) ([]JournalEntry, error)
	CreateJournalEntry(ctx context.Context, entry *JournalEntry) error
	DeleteJournalEntry(ctx context.Context, id string, userID string, at time.Time) (bool, error)

	// Activity logs
	CreateActivityLog(ctx context.Context, entry *ActivityLog) error
	ListActivityLogs(ctx context.Context, userID string, from, to time.Time) ([]ActivityLog, error)

	// User settings
	GetUserSettings(ctx context.Context, userID string) (*UserSettings, error)
	CreateUserSettings(ctx context.Context, settings *UserSettings) error
	UpdateUserSettings(ctx context.Context, settings *UserSettings) error

	// OAuth integrations
	GetIntegration(ctx context.Context, userID string, provider string) (*OAuthIntegration, error)
	CreateIntegration(ctx context.Context, integration *OAuthIntegration) error
	UpdateIntegration(ctx context.Context, integration *OAuthIntegration) error
	DeleteIntegration(ctx context.Context, userID string, provider string) error
}

// Open connects to the configured database without touching its schema.
func Open(cfg *config.Storage) (Provider, error) {
	switch cfg.Type {
	case config.StorageSQLite, "":
		return NewSQLiteProvider(cfg)
	case config.StoragePostgres:
		return NewPostgresProvider(cfg)
	}
	return nil, fmt.Errorf("unsupported storage type: %q", cfg.Type)
}

// NewProvider opens the configured database and brings its schema up to date.
func NewProvider(ctx context.Context, cfg *config.Storage) (Provider, error) {
	provider, err := Open(cfg)
	if err != nil {
		return nil, err
	}

	if err := provider.Migrate(ctx, -1); err != nil {
		provider.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return provider, nil
}
