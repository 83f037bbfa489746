package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration values for the application
type Config struct {
	Port          string
	LogLevel      string
	DatabaseURL   string
	RedisURL      string
	Environment   string
	BotAPIURL     string        // Base URL of the chat-platform HTTP API (go-cqhttp)
	CommandPrefix string        // Inbound command prefix stripped before dispatch
	NotifyWindow  time.Duration // Half-width of the due-notification window
	NotifyEvery   time.Duration // Cadence of the due-notification sweep
	ExpiryHour    int           // Local hour of the daily expiry sweep
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	return &Config{
		Port:          getEnv("PORT", "5120"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		DatabaseURL:   getEnv("DATABASE_URL", ""),
		RedisURL:      getEnv("REDIS_URL", ""),
		Environment:   getEnv("ENVIRONMENT", "production"),
		BotAPIURL:     getEnv("BOT_API_URL", "http://127.0.0.1:3000"),
		CommandPrefix: getEnv("COMMAND_PREFIX", "车队"),
		NotifyWindow:  getDurationEnv("NOTIFY_WINDOW", 5*time.Minute),
		NotifyEvery:   getDurationEnv("NOTIFY_INTERVAL", time.Minute),
		ExpiryHour:    getIntEnv("EXPIRY_HOUR", 4),
	}, nil
}

// getEnv gets an environment variable with a fallback value
func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// getIntEnv gets an integer environment variable with a fallback value
func getIntEnv(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

// getDurationEnv gets a duration environment variable with a fallback value
func getDurationEnv(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return fallback
}
