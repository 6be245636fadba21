package observability

import (
	"time"

	"github.com/getsentry/sentry-go"

	"daybook/internal/config"
	"daybook/internal/utils"
)

// InitSentry enables error reporting when a DSN is configured.
func InitSentry(cfg config.SentryConfig) (bool, error) {
	if cfg.DSN == "" {
		return false, nil
	}

	err := sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.DSN,
		Environment:      cfg.Environment,
		Release:          utils.GetVersion(),
		AttachStacktrace: true,
	})
	return err == nil, err
}

func FlushSentry() {
	sentry.Flush(2 * time.Second)
}
