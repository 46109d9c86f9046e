package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	App       AppConfig       `envPrefix:"APP_"`
	Server    ServerConfig    `envPrefix:"SERVER_"`
	Log       LogConfig       `envPrefix:"LOG_"`
	Database  DatabaseConfig  `envPrefix:"DATABASE_"`
	Auth      AuthConfig      `envPrefix:"AUTH_"`
	JWT       JWTConfig       `envPrefix:"JWT_"`
	Mail      MailConfig      `envPrefix:"MAIL_"`
	Lesson    LessonConfig    `envPrefix:"LESSON_"`
	RateLimit RateLimitConfig `envPrefix:"RATE_LIMIT_"`
}

type AppConfig struct {
	Name string `env:"NAME" envDefault:"LinguaPersonal"`
	URL  string `env:"URL" envDefault:"http://localhost:8080"`
}

type ServerConfig struct {
	Port string `env:"PORT" envDefault:"8080"`
	Host string `env:"HOST" envDefault:"localhost"`
}

type LogConfig struct {
	Level  string `env:"LEVEL" envDefault:"info"`
	Format string `env:"FORMAT" envDefault:"json"`
	Output string `env:"OUTPUT" envDefault:"stdout"`
}

type DatabaseConfig struct {
	Driver          string        `env:"DRIVER" envDefault:"sqlite"`
	DSN             string        `env:"DSN" envDefault:"linguapersonal.db"`
	AutoMigrate     bool          `env:"AUTO_MIGRATE" envDefault:"true"`
	MaxOpenConns    int           `env:"MAX_OPEN_CONNS" envDefault:"25"`
	MaxIdleConns    int           `env:"MAX_IDLE_CONNS" envDefault:"5"`
	ConnMaxLifetime time.Duration `env:"CONN_MAX_LIFETIME" envDefault:"30m"`
}

type AuthConfig struct {
	BcryptCost int           `env:"BCRYPT_COST" envDefault:"10"`
	CodeLength int           `env:"CODE_LENGTH" envDefault:"6"`
	CodeExpiry time.Duration `env:"CODE_EXPIRY" envDefault:"10m"`
}

type JWTConfig struct {
	SecretKey    string        `env:"SECRET_KEY"`
	Algorithm    string        `env:"ALGORITHM" envDefault:"HS256"`
	AccessExpiry time.Duration `env:"ACCESS_EXPIRY" envDefault:"30m"`
	Issuer       string        `env:"ISSUER" envDefault:"linguapersonal"`
}

type MailConfig struct {
	Host        string `env:"HOST" envDefault:"smtp.gmail.com"`
	Port        int    `env:"PORT" envDefault:"587"`
	Username    string `env:"USERNAME"`
	Password    string `env:"PASSWORD"`
	Encryption  string `env:"ENCRYPTION" envDefault:"starttls"`
	FromAddress string `env:"FROM_ADDRESS"`
	FromName    string `env:"FROM_NAME" envDefault:"LinguaPersonal"`
}

type LessonConfig struct {
	APIKey  string        `env:"API_KEY"`
	APIURL  string        `env:"API_URL" envDefault:"https://api.openai.com/v1/chat/completions"`
	Model   string        `env:"MODEL" envDefault:"gpt-3.5-turbo"`
	Timeout time.Duration `env:"TIMEOUT" envDefault:"90s"`
}

type RateLimitConfig struct {
	Enabled  bool          `env:"ENABLED" envDefault:"true"`
	Store    string        `env:"STORE" envDefault:"memory"`
	RedisURL string        `env:"REDIS_URL" envDefault:"redis://localhost:6379/0"`
	Rate     int           `env:"RATE" envDefault:"10"`
	Period   time.Duration `env:"PERIOD" envDefault:"1m"`
}

func LoadConfig(cfg any) error {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found: %v", err)
	}

	if err := env.Parse(cfg); err != nil {
		return err
	}

	if c, ok := cfg.(*Config); ok {
		return validate(c)
	}

	return nil
}

func validate(cfg *Config) error {
	if err := validateJWTConfig(&cfg.JWT); err != nil {
		return err
	}
	return validateAuthConfig(&cfg.Auth)
}

func validateJWTConfig(cfg *JWTConfig) error {
	if len(cfg.SecretKey) < 32 {
		return fmt.Errorf("JWT secret key must be at least 32 characters long")
	}

	weakPatterns := []string{"password", "secret", "test", "example", "default", "change"}
	lower := strings.ToLower(cfg.SecretKey)
	for _, pattern := range weakPatterns {
		if strings.Contains(lower, pattern) {
			return fmt.Errorf("JWT secret key contains weak patterns (%q)", pattern)
		}
	}

	if cfg.Algorithm != "HS256" {
		return fmt.Errorf("unsupported JWT algorithm: %s (only HS256 is supported)", cfg.Algorithm)
	}

	return nil
}

func validateAuthConfig(cfg *AuthConfig) error {
	if cfg.CodeLength < 4 || cfg.CodeLength > 10 {
		return fmt.Errorf("verification code length must be between 4 and 10 digits")
	}
	if cfg.CodeExpiry <= 0 {
		return fmt.Errorf("verification code expiry must be positive")
	}
	return nil
}
