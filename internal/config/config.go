package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Config holds all undercurrent configuration.
type Config struct {
	Server ServerConfig
	Store  StoreConfig
	Engine EngineConfig
}

type ServerConfig struct {
	Bind string
	Port int
}

type StoreConfig struct {
	// Capacity bounds the signal buffer per user.
	Capacity int
	// RetentionDays is the age past which the daily sweep deletes signals.
	RetentionDays int
}

type EngineConfig struct {
	// RotateEvery is how often the serve loop rotates ranking weights.
	RotateEvery time.Duration
	// Seed pins the random source when nonzero. Leave zero in production.
	Seed int64
}

// Default returns a Config with sensible defaults.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Bind: "127.0.0.1",
			Port: 37740,
		},
		Store: StoreConfig{
			Capacity:      1000,
			RetentionDays: 30,
		},
		Engine: EngineConfig{
			RotateEvery: 6 * time.Hour,
		},
	}
}

// Load returns the default config overridden by environment variables.
// A local .env file is loaded first if present.
func Load(logger *logrus.Logger) Config {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Overload(".env"); err != nil && logger != nil {
			logger.WithError(err).Warn("failed to load .env")
		}
	}

	cfg := Default()
	cfg.Server.Bind = getEnv("UNDERCURRENT_BIND", cfg.Server.Bind)
	cfg.Server.Port = getEnvInt("UNDERCURRENT_PORT", cfg.Server.Port)
	cfg.Store.Capacity = getEnvInt("UNDERCURRENT_SIGNAL_CAP", cfg.Store.Capacity)
	cfg.Store.RetentionDays = getEnvInt("UNDERCURRENT_RETENTION_DAYS", cfg.Store.RetentionDays)
	cfg.Engine.RotateEvery = getEnvDuration("UNDERCURRENT_ROTATE_EVERY", cfg.Engine.RotateEvery)
	cfg.Engine.Seed = int64(getEnvInt("UNDERCURRENT_SEED", int(cfg.Engine.Seed)))
	return cfg
}

// ListenAddr returns the bind:port address string.
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Bind, c.Server.Port)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
