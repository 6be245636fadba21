package config

const (
	StorageSQLite   = "sqlite"
	StoragePostgres = "postgres"
)

type Storage struct {
	Type     string          `mapstructure:"type"`
	SQLite   SQLiteStorage   `mapstructure:"sqlite"`
	Postgres PostgresStorage `mapstructure:"postgres"`
}

type SQLiteStorage struct {
	Path string `mapstructure:"path,omitempty"`
}

type PostgresStorage struct {
	DSN string `mapstructure:"dsn,omitempty"`
}
