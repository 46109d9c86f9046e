package ratelimit

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps fixed-window counters in Redis so limits hold across
// multiple backend instances. Redis errors fail open: a broken store never
// blocks legitimate traffic.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Get(key string) (int, time.Time, bool) {
	ctx := context.Background()

	count, err := s.client.Get(ctx, key).Int()
	if err != nil {
		return 0, time.Time{}, false
	}

	ttl, err := s.client.TTL(ctx, key).Result()
	if err != nil || ttl <= 0 {
		return 0, time.Time{}, false
	}

	return count, time.Now().Add(ttl), true
}

func (s *RedisStore) Increment(key string, resetTime time.Time) int {
	ctx := context.Background()

	pipe := s.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.ExpireNX(ctx, key, time.Until(resetTime))
	if _, err := pipe.Exec(ctx); err != nil {
		return 0
	}

	return int(incr.Val())
}

func (s *RedisStore) Reset(key string) {
	s.client.Del(context.Background(), key)
}
