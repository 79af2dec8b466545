package main

import (
	"os"
	"strconv"
	"time"
)

// config holds the server configuration, read from the environment.
type config struct {
	Port         int
	DatabasePath string

	Provider        string // "anthropic", "openai" or "mock"
	AnthropicAPIKey string

	AgentTimeout time.Duration

	LogLevel  string
	LogFormat string
}

// loadConfig reads configuration from environment variables with defaults.
func loadConfig() config {
	return config{
		Port:            getEnvInt("PORT", 8080),
		DatabasePath:    getEnv("DATABASE_PATH", ""),
		Provider:        getEnv("BACKEND_PROVIDER", "anthropic"),
		AnthropicAPIKey: getEnv("ANTHROPIC_API_KEY", ""),
		AgentTimeout:    getEnvDuration("AGENT_TIMEOUT", 60*time.Second),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		LogFormat:       getEnv("LOG_FORMAT", "json"),
	}
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
