package throttle

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// MemoryStore keeps a token bucket per key in a map protected by a mutex.
// Idle buckets are removed by a background janitor goroutine.
type MemoryStore struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	limit    int
	window   time.Duration
	now      func() time.Time
	stop     chan struct{}
	once     sync.Once
}

func NewMemoryStore(limit int, window time.Duration) *MemoryStore {
	m := &MemoryStore{
		visitors: make(map[string]*visitor),
		limit:    limit,
		window:   window,
		now:      time.Now,
		stop:     make(chan struct{}),
	}
	go m.janitor()
	return m
}

func (m *MemoryStore) Allow(ctx context.Context, key string) (Decision, error) {
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	v, ok := m.visitors[key]
	if !ok {
		// limit requests per window, refilled evenly
		v = &visitor{limiter: rate.NewLimiter(rate.Every(m.window/time.Duration(m.limit)), m.limit)}
		m.visitors[key] = v
	}
	v.lastSeen = now

	r := v.limiter.ReserveN(now, 1)
	if delay := r.DelayFrom(now); delay > 0 {
		r.CancelAt(now)
		return Decision{Allowed: false, Limit: m.limit, Remaining: 0, RetryAfter: delay}, nil
	}

	remaining := int(v.limiter.TokensAt(now))
	if remaining < 0 {
		remaining = 0
	}
	return Decision{Allowed: true, Limit: m.limit, Remaining: remaining}, nil
}

// Prune drops buckets idle for longer than a window; they would be full again anyway.
func (m *MemoryStore) Prune() {
	cutoff := m.now().Add(-m.window)

	m.mu.Lock()
	defer m.mu.Unlock()
	for k, v := range m.visitors {
		if v.lastSeen.Before(cutoff) {
			slog.Debug("Pruning idle throttle bucket", "key", k)
			delete(m.visitors, k)
		}
	}
}

func (m *MemoryStore) janitor() {
	ticker := time.NewTicker(m.window)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			m.Prune()
		case <-m.stop:
			return
		}
	}
}

// Close stops the janitor
func (m *MemoryStore) Close() error {
	m.once.Do(func() { close(m.stop) })
	return nil
}
