package app

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Issuer    string // Issuer claim for session tokens
	JWTSecret string // Required in prod: HMAC key for session tokens

	SessionTTL   time.Duration // Optional: session token lifetime (default: 7 days)
	DatabaseFile string        // Optional: path to SQLite database file (default: ./authd.db)
	PepperFile   string        // Optional: path to file containing pepper for password hashing (default: ./pepper)

	CORSAllowedOrigin string // Optional: origin allowed for browser clients (default: disabled)

	Env                 string        // Environment (dev, staging, prod) (default: dev)
	LogLevel            string        // Log level (debug, info, warn, error) (default: info)
	LogFormat           string        // Log format (json, text) (default: json)
	Port                int           // HTTP server port (default: 8080)
	ShutdownGracePeriod time.Duration // Graceful shutdown timeout (default: 10s)
}

// devJWTSecret is used when AUTH_JWT_SECRET is unset. It keeps local
// development frictionless but is useless in production, so New logs a
// loud warning whenever it is in effect.
const devJWTSecret = "authd-dev-secret-do-not-use-in-prod"

func LoadConfig() Config {
	cfg := Config{
		Issuer:              getEnvOrDefault("AUTH_ISSUER", "authd"),
		JWTSecret:           os.Getenv("AUTH_JWT_SECRET"),
		SessionTTL:          getEnvDurationOrDefault("AUTH_TOKEN_TTL", 7*24*time.Hour),
		DatabaseFile:        getEnvOrDefault("AUTH_DATABASE_FILE", "authd.db"),
		PepperFile:          getEnvOrDefault("AUTH_PEPPER_FILE", "pepper"),
		CORSAllowedOrigin:   os.Getenv("CORS_ALLOWED_ORIGIN"),
		Env:                 getEnvOrDefault("ENV", "dev"),
		LogLevel:            getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:           getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod: getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
	}

	return cfg
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Try parsing as duration (e.g., "168h", "30m", "90s")
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Try parsing as integer hours (convenient for long-lived tokens)
	if hours, err := strconv.Atoi(value); err == nil {
		return time.Duration(hours) * time.Hour
	}

	return defaultValue
}
