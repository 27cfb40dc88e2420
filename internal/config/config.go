// Package config loads server settings from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata" // time zones on hosts without zoneinfo

	"github.com/joho/godotenv"

	"github.com/abhisek/codepath/internal/leaderboard"
)

// Config holds all runtime settings.
type Config struct {
	// Env is "dev" or "prod". It selects the log format and gin mode.
	Env string

	// Addr is the HTTP listen address. Default: ":8080".
	Addr string

	// DBPath is the SQLite file. Empty means the XDG default.
	DBPath string

	// AllowedOrigins lists CORS origins. Empty allows any origin.
	AllowedOrigins []string

	// Location is the time zone in which streak days are counted.
	Location *time.Location

	// LeaderboardSize caps the users listed on the leaderboard.
	LeaderboardSize int

	// CurriculumPath is a curriculum file to seed from. Empty means the
	// built-in curriculum.
	CurriculumPath string

	ShutdownTimeout time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Env:             "dev",
		Addr:            ":8080",
		Location:        time.UTC,
		LeaderboardSize: leaderboard.DefaultSize,
		ShutdownTimeout: 10 * time.Second,
	}
}

// LoadDotEnv loads variables from the given .env files, or ./.env when none
// are named. Missing files are ignored; existing variables are not
// overridden.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// FromEnv builds a Config from CODEPATH_* environment variables, falling
// back to defaults for unset values.
func FromEnv() (Config, error) {
	cfg := DefaultConfig()

	if v := os.Getenv("CODEPATH_ENV"); v != "" {
		cfg.Env = strings.ToLower(v)
	}
	if v := os.Getenv("CODEPATH_ADDR"); v != "" {
		cfg.Addr = v
	}
	if v := os.Getenv("CODEPATH_DB"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("CODEPATH_CURRICULUM"); v != "" {
		cfg.CurriculumPath = v
	}
	if v := os.Getenv("CODEPATH_ALLOWED_ORIGINS"); v != "" {
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.AllowedOrigins = append(cfg.AllowedOrigins, o)
			}
		}
	}
	if v := os.Getenv("CODEPATH_TIMEZONE"); v != "" {
		loc, err := time.LoadLocation(v)
		if err != nil {
			return cfg, fmt.Errorf("CODEPATH_TIMEZONE: %w", err)
		}
		cfg.Location = loc
	}
	if v := os.Getenv("CODEPATH_LEADERBOARD_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return cfg, fmt.Errorf("CODEPATH_LEADERBOARD_SIZE: %w", err)
		}
		cfg.LeaderboardSize = n
	}

	return cfg, cfg.Validate()
}

// Validate checks value ranges.
func (c Config) Validate() error {
	switch c.Env {
	case "dev", "prod":
	default:
		return fmt.Errorf("CODEPATH_ENV must be dev or prod, got %q", c.Env)
	}
	if c.Addr == "" {
		return fmt.Errorf("listen address is empty")
	}
	if c.LeaderboardSize < 1 {
		return fmt.Errorf("leaderboard size must be positive, got %d", c.LeaderboardSize)
	}
	if c.Location == nil {
		return fmt.Errorf("time zone is not set")
	}
	return nil
}
