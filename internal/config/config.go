package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"daybook/internal/email"
)

const DEFAULT_FRONTEND_URL = "http://localhost:3001"
const QR_IMAGE_SIZE = 512

type AuthConfig struct {
	// Secret used to verify bearer tokens issued by the identity provider.
	// Falls back to Config.Secret when empty.
	Secret     string `mapstructure:"secret"`
	CookieName string `mapstructure:"cookie_name"`
}

type GoogleConfig struct {
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
	RedirectURI  string `mapstructure:"redirect_uri"`
}

type IntegrationsConfig struct {
	Google GoogleConfig `mapstructure:"google"`
	// Base64 encoded 32 byte key for refresh token encryption
	EncryptionKey   string        `mapstructure:"encryption_key"`
	StateTTL        time.Duration `mapstructure:"state_ttl"`
	ProviderTimeout time.Duration `mapstructure:"provider_timeout"`
}

// GoogleEnabled reports whether enough is configured to talk to Google.
func (c IntegrationsConfig) GoogleEnabled() bool {
	return c.Google.ClientID != "" && c.Google.ClientSecret != "" && c.Google.RedirectURI != "" && c.EncryptionKey != ""
}

type ThrottleConfig struct {
	Store    string        `mapstructure:"store"` // memory or redis
	Limit    int           `mapstructure:"limit"`
	Window   time.Duration `mapstructure:"window"`
	RedisURL string        `mapstructure:"redis_url"`
}

type SentryConfig struct {
	DSN         string `mapstructure:"dsn"`
	Environment string `mapstructure:"environment"`
}

type EventsConfig struct {
	AMQPURL  string `mapstructure:"amqp_url"`
	Exchange string `mapstructure:"exchange"`
}

type Config struct {
	// Secret key for signing OAuth state tokens. Must be set in production.
	Secret   string `mapstructure:"secret"`
	LogLevel string `mapstructure:"log_level"`
	Listen   string `mapstructure:"listen"`

	// Where the browser is sent back to after the calendar OAuth callback.
	FrontendURL string `mapstructure:"frontend_url"`
	// Comma separated list of CORS origins. Frontend URL is always allowed.
	AllowedOrigins string `mapstructure:"allowed_origins"`

	Auth         AuthConfig         `mapstructure:"auth"`
	Storage      Storage            `mapstructure:"storage"`
	Integrations IntegrationsConfig `mapstructure:"integrations"`
	Throttle     ThrottleConfig     `mapstructure:"throttle"`
	Sentry       SentryConfig       `mapstructure:"sentry"`
	Events       EventsConfig       `mapstructure:"events"`

	Email email.SMTPConfig `mapstructure:"email"`
}

// Check if running in Docker container by checking for the presence of /.dockerenv file
func runningInDocker() bool {
	if _, err := os.Stat("/.dockerenv"); err == nil {
		return true
	}
	return false
}

func getConfigPath() string {
	if runningInDocker() {
		return "/app/instance"
	}
	return "./instance"
}

// LoadConfig reads configuration from config.yaml (optional) and environment
// variables and returns a Config struct. Nested keys map to env by replacing
// dots with underscores, e.g. storage.postgres.dsn -> STORAGE_POSTGRES_DSN.
func LoadConfig(configFile ...string) (*Config, error) {
	var cfg Config

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(getConfigPath())
	v.AddConfigPath(".")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	for _, path := range configFile {
		if path != "" {
			v.SetConfigFile(path)
		}
	}

	// Defaults needs to be defined for config fields to be populated from env.
	for k, val := range Defaults() {
		v.SetDefault(k, val)
	}

	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("unable to read config file: %w", err)
		}
		slog.Debug("No config file found, using defaults and environment")
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %v", err)
	}

	if cfg.Auth.Secret == "" {
		cfg.Auth.Secret = cfg.Secret
	}

	// Convert relative sqlite path to absolute instance folder
	if cfg.Storage.Type == StorageSQLite && cfg.Storage.SQLite.Path != "" {
		if cfg.Storage.SQLite.Path == ":memory:" {
			// In-memory database, do nothing
		} else if !os.IsPathSeparator(cfg.Storage.SQLite.Path[0]) {
			cfg.Storage.SQLite.Path = fmt.Sprintf("%s/%s", getConfigPath(), strings.TrimPrefix(cfg.Storage.SQLite.Path, "./"))
		}
	}

	if cfg.Integrations.StateTTL <= 0 {
		slog.Warn("integrations.state_ttl must be positive, using default", "value", cfg.Integrations.StateTTL)
		cfg.Integrations.StateTTL = defaultStateTTL
	}

	// Warn if secret is missing - this is a critical security setting for production
	if cfg.Secret == "" {
		if os.Getenv("GIN_MODE") == "release" {
			return nil, fmt.Errorf("SECRET configuration variable is required in production")
		}
		slog.Warn("Secret is not set. Do not use in production.")
	}

	if !cfg.Integrations.GoogleEnabled() {
		slog.Info("Google Calendar integration is not fully configured; integration routes will be disabled")
	}

	return &cfg, nil
}
