package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"

	"daybook/internal/config"
)

type SQLProvider struct {
	db *sqlx.DB

	config *config.Storage
	// Subdirectory of migrations/ holding this flavour's schema.
	dialect string

	logger *slog.Logger
}

func NewSQLProvider(cfg *config.Storage, driverName, dialect, dataSource string) (*SQLProvider, error) {
	db, err := sqlx.Open(driverName, dataSource)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", dialect, err)
	}

	return &SQLProvider{
		db:      db,
		config:  cfg,
		dialect: dialect,
		logger:  slog.With("component", "storage", "dialect", dialect),
	}, nil
}

func (p *SQLProvider) Close() error {
	if p.db != nil {
		return p.db.Close()
	}
	return nil
}

func (p *SQLProvider) Ping(ctx context.Context) error {
	return p.db.PingContext(ctx)
}

// DB exposes the handle for tests and maintenance commands.
func (p *SQLProvider) DB() *sqlx.DB {
	return p.db
}

func (p *SQLProvider) ensureMigrationTable(ctx context.Context) error {
	_, err := p.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		version INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		applied_at TIMESTAMP NOT NULL
	)`)
	return err
}

func (p *SQLProvider) GetSchemaVersion(ctx context.Context) (int, error) {
	if err := p.ensureMigrationTable(ctx); err != nil {
		return -1, fmt.Errorf("failed to create migration table: %w", err)
	}

	var version sql.NullInt64
	if err := p.db.GetContext(ctx, &version, `SELECT MAX(version) FROM schema_migrations`); err != nil {
		return -1, err
	}
	if !version.Valid {
		return 0, nil
	}
	return int(version.Int64), nil
}

func (p *SQLProvider) Migrate(ctx context.Context, target int) error {
	current, err := p.GetSchemaVersion(ctx)
	if err != nil {
		return err
	}

	runner := NewMigrationRunner(p.dialect)
	migrations, err := runner.LoadMigrations(current, target)
	if errors.Is(err, ErrMigrateCurrentVersionSameAsTarget) {
		p.logger.Debug("Schema is up to date", "version", current)
		return nil
	}
	if err != nil {
		return err
	}

	for _, m := range migrations {
		if err := p.applyMigration(ctx, m); err != nil {
			return fmt.Errorf("migration %04d_%s failed: %w", m.Version, m.Name, err)
		}
		p.logger.Info("Applied migration", "version", m.Version, "name", m.Name, "up", m.Up)
	}
	return nil
}

func (p *SQLProvider) applyMigration(ctx context.Context, m SchemaMigration) error {
	tx, err := p.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, m.SQL); err != nil {
		return err
	}

	if m.Up {
		_, err = tx.ExecContext(ctx, tx.Rebind(`INSERT INTO schema_migrations (version, name, applied_at) VALUES (?, ?, ?)`),
			m.Version, m.Name, time.Now().UTC())
	} else {
		_, err = tx.ExecContext(ctx, tx.Rebind(`DELETE FROM schema_migrations WHERE version = ?`), m.Version)
	}
	if err != nil {
		return err
	}
	return tx.Commit()
}

// execOne runs an update that must touch exactly one row.
func (p *SQLProvider) execOne(ctx context.Context, query string, args ...any) error {
	res, err := p.db.ExecContext(ctx, p.db.Rebind(query), args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// getOne wraps GetContext, translating a missing row into ErrNotFound.
func (p *SQLProvider) getOne(ctx context.Context, dest any, query string, args ...any) error {
	err := p.db.GetContext(ctx, dest, p.db.Rebind(query), args...)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func (p *SQLProvider) insert(ctx context.Context, query string, arg any) error {
	query, args, err := sqlx.Named(query, arg)
	if err != nil {
		return err
	}
	if _, err := p.db.ExecContext(ctx, p.db.Rebind(query), args...); err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}
