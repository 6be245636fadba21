package throttle

import (
	"context"
	"os"
	"testing"
	"time"

	"daybook/internal/config"
)

func TestMemoryStore_LimitsPerKey(t *testing.T) {
	m := NewMemoryStore(3, time.Minute)
	defer m.Close()
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		d, err := m.Allow(ctx, "u1")
		if err != nil || !d.Allowed {
			t.Fatalf("request %d should be allowed: %+v %v", i, d, err)
		}
		if d.Remaining != 2-i {
			t.Fatalf("request %d: expected %d remaining, got %d", i, 2-i, d.Remaining)
		}
	}

	d, _ := m.Allow(ctx, "u1")
	if d.Allowed || d.RetryAfter <= 0 {
		t.Fatalf("fourth request should be throttled with retry hint: %+v", d)
	}

	// Other callers are unaffected
	if d, _ := m.Allow(ctx, "u2"); !d.Allowed {
		t.Fatalf("different key should be allowed")
	}

	// One token refills every window/limit
	now = now.Add(20 * time.Second)
	if d, _ := m.Allow(ctx, "u1"); !d.Allowed {
		t.Fatalf("expected a refilled token after 20s")
	}
}

func TestMemoryStore_Prune(t *testing.T) {
	m := NewMemoryStore(1, time.Minute)
	defer m.Close()
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }

	m.Allow(context.Background(), "u1")
	now = now.Add(2 * time.Minute)
	m.Prune()

	m.mu.Lock()
	n := len(m.visitors)
	m.mu.Unlock()
	if n != 0 {
		t.Fatalf("expected idle bucket to be pruned, %d left", n)
	}
}

func TestNewStore(t *testing.T) {
	s, err := NewStore(config.ThrottleConfig{Store: "memory", Limit: 30, Window: time.Minute})
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	s.Close()

	if _, err := NewStore(config.ThrottleConfig{Store: "memcached", Limit: 30, Window: time.Minute}); err == nil {
		t.Fatalf("expected error for unknown store")
	}
	if _, err := NewStore(config.ThrottleConfig{Store: "memory"}); err == nil {
		t.Fatalf("expected error for zero limit")
	}
	if _, err := NewStore(config.ThrottleConfig{Store: "redis", Limit: 1, Window: time.Minute}); err == nil {
		t.Fatalf("expected error for redis without url")
	}
}

func TestRedisStore(t *testing.T) {
	url := os.Getenv("DAYBOOK_TEST_REDIS_URL")
	if url == "" {
		t.Skip("DAYBOOK_TEST_REDIS_URL not set")
	}

	s, err := NewRedisStore(url, 2, time.Minute)
	if err != nil {
		t.Fatalf("NewRedisStore: %v", err)
	}
	defer s.Close()
	key := "test-" + time.Now().Format(time.RFC3339Nano)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if d, err := s.Allow(ctx, key); err != nil || !d.Allowed {
			t.Fatalf("request %d should be allowed: %+v %v", i, d, err)
		}
	}
	if d, _ := s.Allow(ctx, key); d.Allowed {
		t.Fatalf("third request should be throttled")
	}
}
