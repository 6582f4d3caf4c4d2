package config

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/joho/godotenv"
	"go-simpler.org/env"
)

type Config struct {
	AppEnv      string `env:"APP_ENV" default:"development"`
	Port        string `env:"PORT" default:"8080"`
	DatabaseURL string `env:"DATABASE_URL"`
	// RedisURL is optional; without it the vote rate limiter is disabled.
	RedisURL      string `env:"REDIS_URL"`
	SessionSecret string `env:"SESSION_SECRET"`
	LogLevel      string `env:"LOG_LEVEL" default:"info"`
	LogFormat     string `env:"LOG_FORMAT" default:"text"`

	SessionMaxAge time.Duration `env:"SESSION_MAX_AGE" default:"168h"` // 7 days

	// Vote rate limiting is a configuration knob only: burst capacity and
	// sustained tokens per minute, enforced per voter.
	VoteRateCapacity  int `env:"VOTE_RATE_CAPACITY" default:"10"`
	VoteRatePerMinute int `env:"VOTE_RATE_PER_MINUTE" default:"60"`

	FeedPageSize    int `env:"FEED_PAGE_SIZE" default:"25"`
	FeedMaxPageSize int `env:"FEED_MAX_PAGE_SIZE" default:"100"`
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	var cfg Config
	if err := env.Load(&cfg, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func validate(cfg *Config) error {
	required := map[string]string{
		"DATABASE_URL":   cfg.DatabaseURL,
		"SESSION_SECRET": cfg.SessionSecret,
	}
	for name, value := range required {
		if value == "" {
			return fmt.Errorf("%s is required", name)
		}
	}

	if len(cfg.SessionSecret) < 32 {
		return errors.New("SESSION_SECRET must be at least 32 characters")
	}

	if cfg.VoteRateCapacity < 1 || cfg.VoteRatePerMinute < 1 {
		return errors.New("VOTE_RATE_CAPACITY and VOTE_RATE_PER_MINUTE must be positive")
	}

	if cfg.FeedPageSize < 1 || cfg.FeedPageSize > cfg.FeedMaxPageSize {
		return fmt.Errorf("FEED_PAGE_SIZE must be between 1 and FEED_MAX_PAGE_SIZE (%d)", cfg.FeedMaxPageSize)
	}

	return nil
}
