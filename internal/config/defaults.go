package config

import "time"

const defaultStateTTL = 10 * time.Minute

var defaults = map[string]any{
	"secret":          "",
	"log_level":       "info",
	"listen":          ":3000",
	"frontend_url":    DEFAULT_FRONTEND_URL,
	"allowed_origins": "",

	"auth.secret":      "",
	"auth.cookie_name": "auth_token",

	"integrations.google.client_id":     "",
	"integrations.google.client_secret": "",
	"integrations.google.redirect_uri":  "",
	"integrations.encryption_key":       "",
	"integrations.state_ttl":            defaultStateTTL,
	"integrations.provider_timeout":     5 * time.Second,

	"throttle.store":     "memory",
	"throttle.limit":     30,
	"throttle.window":    time.Minute,
	"throttle.redis_url": "",

	"sentry.dsn":         "",
	"sentry.environment": "development",

	"events.amqp_url": "",
	"events.exchange": "daybook.activity",

	"email.host":     "host.docker.internal",
	"email.port":     25,
	"email.username": "",
	"email.password": "",
	"email.from":     "noreply@example.com",

	"storage.type":         StorageSQLite,
	"storage.sqlite.path":  "./data/daybook.db",
	"storage.postgres.dsn": "",
}

func Defaults() map[string]any {
	values := make(map[string]any)
	for k, v := range defaults {
		values[k] = v
	}
	return values
}
