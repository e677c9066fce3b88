package app

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	for _, k := range []string{"PORTAL_FUNCTION_BASE_URL", "PORTAL_FUNCTION_TIMEOUT", "ENV", "LOG_LEVEL", "LOG_FORMAT", "PORT", "SHUTDOWN_GRACE_PERIOD", "PORTAL_TRUST_PROXY"} {
		t.Setenv(k, "")
	}

	cfg := LoadConfig()
	require.Equal(t, "http://localhost:8081/function", cfg.FunctionBaseURL)
	require.Equal(t, 10*time.Second, cfg.FunctionTimeout)
	require.Equal(t, "dev", cfg.Env)
	require.Equal(t, 8080, cfg.Port)
	require.False(t, cfg.TrustProxy)
	require.NoError(t, cfg.Validate())
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("PORTAL_FUNCTION_BASE_URL", "https://fn.example.com/function")
	t.Setenv("PORTAL_FUNCTION_TIMEOUT", "3")
	t.Setenv("PORT", "9000")
	t.Setenv("SHUTDOWN_GRACE_PERIOD", "2m")
	t.Setenv("PORTAL_TRUST_PROXY", "true")

	cfg := LoadConfig()
	require.Equal(t, "https://fn.example.com/function", cfg.FunctionBaseURL)
	require.Equal(t, 3*time.Second, cfg.FunctionTimeout)
	require.Equal(t, 9000, cfg.Port)
	require.Equal(t, 2*time.Minute, cfg.ShutdownGracePeriod)
	require.True(t, cfg.TrustProxy)
}

func TestValidate(t *testing.T) {
	base := Config{FunctionBaseURL: "http://fn:8081/function", FunctionTimeout: time.Second, Port: 8080}
	require.NoError(t, base.Validate())

	for name, mutate := range map[string]func(*Config){
		"relative base url": func(c *Config) { c.FunctionBaseURL = "/function" },
		"ftp base url":      func(c *Config) { c.FunctionBaseURL = "ftp://fn/function" },
		"zero timeout":      func(c *Config) { c.FunctionTimeout = 0 },
		"bad port":          func(c *Config) { c.Port = 70000 },
	} {
		t.Run(name, func(t *testing.T) {
			cfg := base
			mutate(&cfg)
			require.Error(t, cfg.Validate())
		})
	}
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	_, err := New(Config{FunctionBaseURL: "/function", FunctionTimeout: time.Second, Port: 8080})
	require.Error(t, err)
}

func TestNewServesPortal(t *testing.T) {
	app, err := New(Config{
		FunctionBaseURL: "http://127.0.0.1:1/function",
		FunctionTimeout: time.Second,
		Port:            8080,
		LogLevel:        "error",
	})
	require.NoError(t, err)
	require.Equal(t, time.Second, app.client.HTTPClient.Timeout)

	rec := httptest.NewRecorder()
	app.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/qr-setup", nil))
	require.Equal(t, http.StatusOK, rec.Code)
}
