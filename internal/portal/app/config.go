package app

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"
)

type Config struct {
	FunctionBaseURL     string        // Required: base URL of the authentication functions
	FunctionTimeout     time.Duration // Per-call timeout for function requests (default: 10s)
	TrustProxy          bool          // Key rate limits on X-Forwarded-For (default: false)
	Env                 string        // Environment (dev, staging, prod) (default: dev)
	LogLevel            string        // Log level (debug, info, warn, error) (default: info)
	LogFormat           string        // Log format (json, text) (default: json)
	Port                int           // HTTP server port (default: 8080)
	ShutdownGracePeriod time.Duration // Graceful shutdown timeout (default: 10s)
}

func LoadConfig() Config {
	return Config{
		FunctionBaseURL:     getEnvOrDefault("PORTAL_FUNCTION_BASE_URL", "http://localhost:8081/function"),
		FunctionTimeout:     getEnvDurationOrDefault("PORTAL_FUNCTION_TIMEOUT", 10*time.Second),
		TrustProxy:          getEnvBoolOrDefault("PORTAL_TRUST_PROXY", false),
		Env:                 getEnvOrDefault("ENV", "dev"),
		LogLevel:            getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:           getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod: getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
	}
}

// Validate checks the settings the portal cannot start without.
func (c Config) Validate() error {
	u, err := url.Parse(c.FunctionBaseURL)
	if err != nil {
		return fmt.Errorf("invalid PORTAL_FUNCTION_BASE_URL: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return errors.New("PORTAL_FUNCTION_BASE_URL must be an absolute http(s) URL")
	}
	if c.FunctionTimeout <= 0 {
		return errors.New("PORTAL_FUNCTION_TIMEOUT must be positive")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid PORT %d", c.Port)
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

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if d, err := time.ParseDuration(value); err == nil {
		return d
	}

	// Bare integers are seconds.
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
