package throttle

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore is a fixed window counter shared between instances.
type RedisStore struct {
	client *redis.Client
	limit  int
	window time.Duration
	now    func() time.Time
}

func NewRedisStore(redisURL string, limit int, window time.Duration) (*RedisStore, error) {
	if redisURL == "" {
		return nil, fmt.Errorf("throttle.redis_url is required for the redis throttle store")
	}
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	client := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisStore{client: client, limit: limit, window: window, now: time.Now}, nil
}

func (s *RedisStore) windowKey(key string, now time.Time) (string, time.Time) {
	start := now.Truncate(s.window)
	return "throttle:" + key + ":" + strconv.FormatInt(start.Unix(), 10), start.Add(s.window)
}

func (s *RedisStore) Allow(ctx context.Context, key string) (Decision, error) {
	now := s.now()
	redisKey, resetAt := s.windowKey(key, now)

	var incr *redis.IntCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, redisKey)
		pipe.ExpireAt(ctx, redisKey, resetAt.Add(time.Second))
		return nil
	})
	if err != nil {
		return Decision{}, fmt.Errorf("throttle counter update failed: %w", err)
	}

	count := int(incr.Val())
	if count > s.limit {
		return Decision{Allowed: false, Limit: s.limit, RetryAfter: resetAt.Sub(now)}, nil
	}
	return Decision{Allowed: true, Limit: s.limit, Remaining: s.limit - count}, nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
