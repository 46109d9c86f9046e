package testutils

import (
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/linguapersonal/backend/config"
)

func GetTestConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{
			Name: "LinguaPersonal Test",
			URL:  "http://localhost:8080",
		},
		Auth: config.AuthConfig{
			BcryptCost: bcrypt.MinCost,
			CodeLength: 6,
			CodeExpiry: 10 * time.Minute,
		},
		JWT: config.JWTConfig{
			SecretKey:    "0123456789abcdef0123456789abcdef",
			Algorithm:    "HS256",
			AccessExpiry: 30 * time.Minute,
			Issuer:       "linguapersonal-tests",
		},
		Database: config.DatabaseConfig{
			Driver: "sqlite",
			DSN:    ":memory:",
		},
		RateLimit: config.RateLimitConfig{
			Enabled: true,
			Store:   "memory",
			Rate:    10,
			Period:  time.Minute,
		},
	}
}
