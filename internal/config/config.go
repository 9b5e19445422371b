// Package config loads runtime settings from the environment.
//
// A .env file in the working directory is read first if present; variables
// already set in the environment win over it.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds server and CLI settings.
type Config struct {
	Port      int
	DBPath    string
	JWTSecret string
	LogLevel  slog.Level

	// NutrientSampleCap is how many distinct foods the range report samples
	// for nutrient averages.
	NutrientSampleCap int

	// CheckinRatePerMinute limits check-in requests per user.
	CheckinRatePerMinute int
}

const (
	DefaultPort                 = 8080
	DefaultDBPath               = "data/foodlog.db"
	DefaultNutrientSampleCap    = 10
	DefaultCheckinRatePerMinute = 30
)

// Load reads .env (optional) and then the process environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("config: reading .env: %w", err)
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from getenv. Unset variables take defaults;
// malformed ones are errors.
func FromEnv(getenv func(string) string) (Config, error) {
	cfg := Config{
		DBPath:    DefaultDBPath,
		JWTSecret: getenv("JWT_SECRET"),
	}
	if v := getenv("DB_PATH"); v != "" {
		cfg.DBPath = v
	}

	var err error
	if cfg.Port, err = positiveInt(getenv, "PORT", DefaultPort); err != nil {
		return Config{}, err
	}
	if cfg.NutrientSampleCap, err = positiveInt(getenv, "NUTRIENT_SAMPLE_CAP", DefaultNutrientSampleCap); err != nil {
		return Config{}, err
	}
	if cfg.CheckinRatePerMinute, err = positiveInt(getenv, "CHECKIN_RATE_PER_MINUTE", DefaultCheckinRatePerMinute); err != nil {
		return Config{}, err
	}
	if cfg.LogLevel, err = ParseLevel(getenv("LOG_LEVEL")); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ParseLevel maps debug/info/warn/error (any case) to a slog level.
// Empty means info.
func ParseLevel(s string) (slog.Level, error) {
	if strings.TrimSpace(s) == "" {
		return slog.LevelInfo, nil
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return 0, fmt.Errorf("config: invalid LOG_LEVEL %q", s)
	}
	return level, nil
}

func positiveInt(getenv func(string) string, key string, def int) (int, error) {
	v := getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("config: %s must be a positive integer, got %q", key, v)
	}
	return n, nil
}
