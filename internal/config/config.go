// Package config reads the game configuration from the environment, with
// an optional .env file in the working directory.
package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const prefix = "GEOQUIZ_"

// Config is the resolved configuration.
type Config struct {
	DataDir      string // empty means the embedded demo data
	DBPath       string
	MapWidth     int
	MapHeight    int
	Rounds       int
	WindowWidth  int
	WindowHeight int
	LogLevel     slog.Level
	Seed         int64 // 0 means time-based
	HighContrast bool

	// Warnings lists values that were malformed and replaced by defaults.
	Warnings []string
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		DBPath:       "data/geoquiz.db",
		MapWidth:     4000,
		MapHeight:    2000,
		Rounds:       3,
		WindowWidth:  1600,
		WindowHeight: 900,
		LogLevel:     slog.LevelInfo,
	}
}

// Load reads .env (when present) and the GEOQUIZ_* variables.
func Load() Config {
	_ = godotenv.Load(".env")
	return FromEnv()
}

// FromEnv reads the GEOQUIZ_* variables over the defaults.
func FromEnv() Config {
	c := Default()
	c.DataDir = strings.TrimSpace(os.Getenv(prefix + "DATA_DIR"))
	if v := strings.TrimSpace(os.Getenv(prefix + "DB_PATH")); v != "" {
		c.DBPath = v
	}
	c.MapWidth = c.positive("MAP_WIDTH", c.MapWidth)
	c.MapHeight = c.positive("MAP_HEIGHT", c.MapHeight)
	c.Rounds = c.positive("ROUNDS", c.Rounds)
	c.WindowWidth = c.positive("WINDOW_WIDTH", c.WindowWidth)
	c.WindowHeight = c.positive("WINDOW_HEIGHT", c.WindowHeight)
	c.HighContrast = c.boolean("HIGH_CONTRAST", c.HighContrast)

	if v := os.Getenv(prefix + "SEED"); v != "" {
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			c.warn("SEED", v)
		} else {
			c.Seed = n
		}
	}

	switch v := strings.ToLower(strings.TrimSpace(os.Getenv(prefix + "LOG_LEVEL"))); v {
	case "":
	case "debug":
		c.LogLevel = slog.LevelDebug
	case "info":
		c.LogLevel = slog.LevelInfo
	case "warn", "warning":
		c.LogLevel = slog.LevelWarn
	case "error":
		c.LogLevel = slog.LevelError
	default:
		c.warn("LOG_LEVEL", v)
	}
	return c
}

func (c *Config) warn(key, val string) {
	c.Warnings = append(c.Warnings, fmt.Sprintf("%s%s=%q is invalid, using default", prefix, key, val))
}

func (c *Config) positive(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(prefix + key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		c.warn(key, v)
		return def
	}
	return n
}

func (c *Config) boolean(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(prefix + key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		c.warn(key, v)
		return def
	}
	return b
}

// Logger builds a text logger at the configured level.
func (c Config) Logger(w io.Writer) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: c.LogLevel}))
}
