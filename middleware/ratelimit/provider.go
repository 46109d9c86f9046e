package ratelimit

import (
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/linguapersonal/backend/config"
	"github.com/linguapersonal/backend/services/logging"
)

func NewStore(cfg *config.RateLimitConfig, logger *logging.Service) Store {
	switch cfg.Store {
	case "redis":
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logger.Error("invalid rate limit redis URL, falling back to memory store", zap.Error(err))
			return NewMemoryStore()
		}
		return NewRedisStore(redis.NewClient(opts))
	case "memory":
		fallthrough
	default:
		return NewMemoryStore()
	}
}

func ProvideRateLimitStore(cfg *config.Config, logger *logging.Service) Store {
	return NewStore(&cfg.RateLimit, logger)
}

var Module = fx.Options(
	fx.Provide(ProvideRateLimitStore),
)
