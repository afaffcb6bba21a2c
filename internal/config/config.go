// Package config loads server configuration from the environment.
// A .env file in the working directory is honored for local development.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds everything cmd/server needs to wire the process.
type Config struct {
	// Port the HTTP API listens on.
	Port string

	// SQLitePath is the notification database location. Ignored when
	// PostgresDSN is set.
	SQLitePath string

	// PostgresDSN, when non-empty, selects the postgres backend.
	PostgresDSN string

	// RPCURL is the chain JSON-RPC endpoint. Empty disables the watcher.
	RPCURL string

	// ContractAddress is the deployed payment contract.
	ContractAddress string

	// StartBlock bounds the watcher's first log query, typically the
	// contract deployment block.
	StartBlock uint64

	// PollInterval is the watcher tick period.
	PollInterval time.Duration

	// JWTSecret signs session tokens.
	JWTSecret string

	// KafkaBrokers, when non-empty, enables the notification sink.
	KafkaBrokers []string
}

// Load reads the configuration, applying defaults for anything unset.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("Failed to read .env file", "error", err)
	}

	cfg := &Config{
		Port:            getEnv("PORT", "8080"),
		SQLitePath:      getEnv("DB_PATH", "./data/notifications.db"),
		PostgresDSN:     getEnv("DATABASE_URL", ""),
		RPCURL:          getEnv("RPC_URL", ""),
		ContractAddress: getEnv("CONTRACT_ADDRESS", ""),
		StartBlock:      uint64(getEnvInt("START_BLOCK", 0)),
		PollInterval:    time.Duration(getEnvInt("POLL_INTERVAL_MS", 2000)) * time.Millisecond,
		JWTSecret:       getEnv("JWT_SECRET", ""),
	}

	if brokers := getEnv("KAFKA_BROKERS", ""); brokers != "" {
		cfg.KafkaBrokers = strings.Split(brokers, ",")
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.PollInterval <= 0 {
		return nil, fmt.Errorf("POLL_INTERVAL_MS must be positive, got %v", cfg.PollInterval)
	}
	if cfg.RPCURL != "" && cfg.ContractAddress == "" {
		return nil, fmt.Errorf("CONTRACT_ADDRESS is required when RPC_URL is set")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
		slog.Warn("Ignoring non-integer env value", "key", key, "value", value)
	}
	return fallback
}
