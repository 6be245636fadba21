// Package throttle limits how many requests a single caller may make per
// window.
package throttle

import (
	"context"
	"fmt"
	"time"

	"daybook/internal/config"
)

type StoreType string

// Supported throttle stores.
const (
	Memory StoreType = "memory"
	Redis  StoreType = "redis"
)

// Decision is the outcome of a single Allow call.
type Decision struct {
	Allowed    bool
	Limit      int
	Remaining  int
	RetryAfter time.Duration
}

type LimitExceededError struct {
	Key        string
	RetryAfter time.Duration
}

// Error implements the error interface.
func (e *LimitExceededError) Error() string {
	return fmt.Sprintf("rate limit exceeded for %s, retry after %s", e.Key, e.RetryAfter)
}

type Store interface {
	// Allow counts one request for key and reports whether it may proceed.
	Allow(ctx context.Context, key string) (Decision, error)
	Close() error
}

func NewStore(cfg config.ThrottleConfig) (Store, error) {
	if cfg.Limit <= 0 || cfg.Window <= 0 {
		return nil, fmt.Errorf("throttle limit and window must be positive")
	}

	switch StoreType(cfg.Store) {
	case Memory, "":
		return NewMemoryStore(cfg.Limit, cfg.Window), nil
	case Redis:
		return NewRedisStore(cfg.RedisURL, cfg.Limit, cfg.Window)
	default:
		return nil, fmt.Errorf("unsupported throttle store: %q", cfg.Store)
	}
}
