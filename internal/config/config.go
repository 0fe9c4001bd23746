package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/mkrantz/psyche/internal/temporal"
)

// Config holds all psyche configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Temporal temporal.Config
}

type ServerConfig struct {
	Bind string
	Port int
}

type DatabaseConfig struct {
	Path string
}

// Default returns a Config with the reference rates and a localhost server.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Bind: "127.0.0.1",
			Port: 37711,
		},
		Database: DatabaseConfig{
			Path: "", // resolved at runtime via store.DefaultDBPath()
		},
		Temporal: temporal.DefaultConfig(),
	}
}

// Load builds the config from defaults, a .env file when present, and
// PSYCHE_* environment variables. Env wins over .env wins over defaults;
// unparseable values fall back to the default.
func Load() Config {
	_ = godotenv.Load()

	cfg := Default()
	cfg.Server.Bind = getEnvOrDefault("PSYCHE_BIND", cfg.Server.Bind)
	cfg.Server.Port = getEnvInt("PSYCHE_PORT", cfg.Server.Port)
	cfg.Database.Path = getEnvOrDefault("PSYCHE_DB", cfg.Database.Path)

	cfg.Temporal.WisdomDecayRate = getEnvFloat("PSYCHE_WISDOM_DECAY_RATE", cfg.Temporal.WisdomDecayRate)
	cfg.Temporal.IdentityDecayRate = getEnvFloat("PSYCHE_IDENTITY_DECAY_RATE", cfg.Temporal.IdentityDecayRate)
	cfg.Temporal.BeliefDecayRate = getEnvFloat("PSYCHE_BELIEF_DECAY_RATE", cfg.Temporal.BeliefDecayRate)
	cfg.Temporal.DecayFloor = getEnvFloat("PSYCHE_DECAY_FLOOR", cfg.Temporal.DecayFloor)
	cfg.Temporal.StaleThresholdDays = getEnvInt("PSYCHE_STALE_DAYS", cfg.Temporal.StaleThresholdDays)
	cfg.Temporal.ProactiveThresholdDays = getEnvInt("PSYCHE_PROACTIVE_DAYS", cfg.Temporal.ProactiveThresholdDays)

	return cfg
}

// ListenAddr returns the bind:port address string.
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Bind, c.Server.Port)
}

func getEnvOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func getEnvFloat(key string, def float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}
