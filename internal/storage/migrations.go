// Schema migrations are plain SQL files embedded from migrations/<dialect>/.
//
// File names follow NNNN_name.up.sql / NNNN_name.down.sql. The applied version
// is tracked in the schema_migrations table; each file runs in its own
// transaction together with the bookkeeping row.
//
// Modelled after Authelia's migration system https://github.com/authelia/authelia/blob/master/internal/storage/migrations.go

package storage

import (
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"regexp"
	"sort"
	"strconv"
)

//go:embed migrations/**/*.sql
var migrationsFS embed.FS

var reMigrationFilename = regexp.MustCompile(`^(?P<Version>\d{4})\_(?P<Name>[^.]+)\.(?P<Direction>(up|down))\.sql$`)

var (
	ErrMigrateCurrentVersionSameAsTarget = errors.New("current version is the same as target version")
	ErrUnsupportedDialect                = errors.New("unsupported migration dialect")
)

type SchemaMigration struct {
	Version int
	Name    string
	Up      bool
	SQL     string
}

type MigrationRunner struct {
	dialect string
	logger  *slog.Logger
}

func NewMigrationRunner(dialect string) *MigrationRunner {
	return &MigrationRunner{
		dialect: dialect,
		logger:  slog.With("component", "migrations", "dialect", dialect),
	}
}

func (mr *MigrationRunner) dir() (string, error) {
	switch mr.dialect {
	case "sqlite3", "postgres":
		return "migrations/" + mr.dialect, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedDialect, mr.dialect)
	}
}

// all parses every migration file of the dialect, ignoring malformed names.
func (mr *MigrationRunner) all() ([]SchemaMigration, error) {
	dir, err := mr.dir()
	if err != nil {
		return nil, err
	}

	entries, err := migrationsFS.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read migration directory: %w", err)
	}

	var migrations []SchemaMigration
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		m, err := parseMigrationFile(path.Join(dir, entry.Name()))
		if err != nil {
			mr.logger.Warn("Failed to parse migration file", "file", entry.Name(), "error", err)
			continue
		}
		migrations = append(migrations, m)
	}
	return migrations, nil
}

// LatestVersion returns the highest "up" migration version.
func (mr *MigrationRunner) LatestVersion() (int, error) {
	migrations, err := mr.all()
	if err != nil {
		return -1, err
	}

	latest := 0
	for _, m := range migrations {
		if m.Up && m.Version > latest {
			latest = m.Version
		}
	}
	return latest, nil
}

// LoadMigrations returns the migrations needed to move from prior to target,
// in execution order. A target of -1 means the latest version and 0 the
// empty schema.
func (mr *MigrationRunner) LoadMigrations(prior, target int) ([]SchemaMigration, error) {
	if target == -1 {
		latest, err := mr.LatestVersion()
		if err != nil {
			return nil, fmt.Errorf("failed to get latest migration version: %w", err)
		}
		target = latest
	}

	if prior == target {
		return nil, ErrMigrateCurrentVersionSameAsTarget
	}

	migrations, err := mr.all()
	if err != nil {
		return nil, err
	}

	up := target > prior
	var selected []SchemaMigration
	for _, m := range migrations {
		if m.Up != up {
			continue
		}
		if up && (m.Version <= prior || m.Version > target) {
			continue
		}
		if !up && (m.Version <= target || m.Version > prior) {
			continue
		}
		selected = append(selected, m)
	}

	sort.Slice(selected, func(i, j int) bool {
		if up {
			return selected[i].Version < selected[j].Version
		}
		return selected[i].Version > selected[j].Version
	})

	mr.logger.Info("Loaded migrations", "count", len(selected), "from_version", prior, "to_version", target)
	return selected, nil
}

func parseMigrationFile(p string) (SchemaMigration, error) {
	parts := reMigrationFilename.FindStringSubmatch(path.Base(p))
	if parts == nil {
		return SchemaMigration{}, fmt.Errorf("invalid migration filename: %s", path.Base(p))
	}

	body, err := migrationsFS.ReadFile(p)
	if err != nil {
		return SchemaMigration{}, fmt.Errorf("failed to read migration file: %w", err)
	}

	version, _ := strconv.Atoi(parts[reMigrationFilename.SubexpIndex("Version")])
	return SchemaMigration{
		Version: version,
		Name:    parts[reMigrationFilename.SubexpIndex("Name")],
		Up:      parts[reMigrationFilename.SubexpIndex("Direction")] == "up",
		SQL:     string(body),
	}, nil
}
