package app

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	stubhttp "github.com/aussiebroadwan/portal/internal/fnstub/http"
)

type Config struct {
	DatabaseFile        string        // Path to SQLite database file (default: ./fnstub.db)
	PepperFile          string        // Path to the password hashing pepper (default: ./pepper)
	SecretKeyFile       string        // Path to the key sealing TOTP secrets (default: ./secret.key)
	ResponseFormat      string        // Generation answer format, json or raw (default: json)
	MaxPasswordAge      time.Duration // Passwords older than this are expired, 0 disables (default: 90 days)
	Issuer              string        // TOTP issuer shown in authenticator apps (default: Portal)
	TrustProxy          bool          // Key rate limits on X-Forwarded-For (default: false)
	Env                 string        // Environment (dev, staging, prod) (default: dev)
	LogLevel            string        // Log level (debug, info, warn, error) (default: info)
	LogFormat           string        // Log format (json, text) (default: json)
	Port                int           // HTTP server port (default: 8081)
	ShutdownGracePeriod time.Duration // Graceful shutdown timeout (default: 10s)
}

func LoadConfig() Config {
	return Config{
		DatabaseFile:        getEnvOrDefault("FNSTUB_DATABASE_FILE", "fnstub.db"),
		PepperFile:          getEnvOrDefault("FNSTUB_PEPPER_FILE", "pepper"),
		SecretKeyFile:       getEnvOrDefault("FNSTUB_SECRET_KEY_FILE", "secret.key"),
		ResponseFormat:      getEnvOrDefault("FNSTUB_RESPONSE_FORMAT", string(stubhttp.FormatJSON)),
		MaxPasswordAge:      getEnvDurationOrDefault("FNSTUB_MAX_PASSWORD_AGE", 90*24*time.Hour),
		Issuer:              getEnvOrDefault("FNSTUB_TOTP_ISSUER", "Portal"),
		TrustProxy:          getEnvBoolOrDefault("FNSTUB_TRUST_PROXY", false),
		Env:                 getEnvOrDefault("ENV", "dev"),
		LogLevel:            getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:           getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                getEnvIntOrDefault("FNSTUB_PORT", 8081),
		ShutdownGracePeriod: getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
	}
}

func (c Config) Validate() error {
	if c.DatabaseFile == "" {
		return errors.New("FNSTUB_DATABASE_FILE must not be empty")
	}
	if _, err := stubhttp.ParseFormat(c.ResponseFormat); err != nil {
		return fmt.Errorf("invalid FNSTUB_RESPONSE_FORMAT: %w", err)
	}
	if c.MaxPasswordAge < 0 {
		return errors.New("FNSTUB_MAX_PASSWORD_AGE must not be negative")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid FNSTUB_PORT %d", c.Port)
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return value
	}
	return defaultValue
}

// getEnvDurationOrDefault accepts Go durations; bare integers are seconds.
func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return value
	}
	return defaultValue
}
