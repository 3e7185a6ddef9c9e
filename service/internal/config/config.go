// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds the service settings read from the environment.
type Config struct {
	DatabaseURL   string `env:"DATABASE_URL"`
	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	// ConventionLevel is the H-group level the tracker assumes the table plays at.
	ConventionLevel int `env:"CONVENTION_LEVEL" envDefault:"5"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`

	// SnapshotTTL is how long a cached belief snapshot lives in Redis.
	SnapshotTTL time.Duration `env:"SNAPSHOT_TTL" envDefault:"24h"`
}

// Load reads an optional .env file, then parses the environment.
// Variables already set in the environment win over the file.
func Load(files ...string) (Config, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load env file: %w", err)
	}
	return Parse()
}

// Parse reads the configuration from the environment only.
func Parse() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.ConventionLevel < 1 || cfg.ConventionLevel > 5 {
		return Config{}, fmt.Errorf("CONVENTION_LEVEL %d out of range [1, 5]", cfg.ConventionLevel)
	}
	return cfg, nil
}
