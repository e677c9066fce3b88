package app

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	for _, key := range []string{
		"FNSTUB_DATABASE_FILE", "FNSTUB_PEPPER_FILE", "FNSTUB_SECRET_KEY_FILE", "FNSTUB_RESPONSE_FORMAT",
		"FNSTUB_MAX_PASSWORD_AGE", "FNSTUB_TOTP_ISSUER", "FNSTUB_PORT", "FNSTUB_TRUST_PROXY",
	} {
		t.Setenv(key, "")
	}

	cfg := LoadConfig()
	require.Equal(t, "fnstub.db", cfg.DatabaseFile)
	require.Equal(t, "json", cfg.ResponseFormat)
	require.Equal(t, 90*24*time.Hour, cfg.MaxPasswordAge)
	require.Equal(t, 8081, cfg.Port)
	require.False(t, cfg.TrustProxy)
	require.NoError(t, cfg.Validate())
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("FNSTUB_RESPONSE_FORMAT", "raw")
	t.Setenv("FNSTUB_MAX_PASSWORD_AGE", "3600")
	t.Setenv("FNSTUB_PORT", "9000")
	t.Setenv("FNSTUB_TRUST_PROXY", "1")

	cfg := LoadConfig()
	require.Equal(t, "raw", cfg.ResponseFormat)
	require.Equal(t, time.Hour, cfg.MaxPasswordAge)
	require.Equal(t, 9000, cfg.Port)
	require.True(t, cfg.TrustProxy)
}

func TestValidate(t *testing.T) {
	valid := Config{DatabaseFile: "x.db", ResponseFormat: "json", Port: 8081}
	require.NoError(t, valid.Validate())

	bad := valid
	bad.ResponseFormat = "xml"
	require.Error(t, bad.Validate())

	bad = valid
	bad.MaxPasswordAge = -time.Second
	require.Error(t, bad.Validate())

	bad = valid
	bad.Port = 0
	require.Error(t, bad.Validate())
}

func TestNewServesFunctions(t *testing.T) {
	dir := t.TempDir()
	app, err := New(Config{
		DatabaseFile:        filepath.Join(dir, "fnstub.db"),
		PepperFile:          filepath.Join(dir, "pepper"),
		SecretKeyFile:       filepath.Join(dir, "secret.key"),
		ResponseFormat:      "raw",
		Env:                 "test",
		LogLevel:            "error",
		LogFormat:           "text",
		Port:                8081,
		ShutdownGracePeriod: time.Second,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.db.Close() })

	require.FileExists(t, filepath.Join(dir, "pepper"))
	require.FileExists(t, filepath.Join(dir, "secret.key"))

	rec := httptest.NewRecorder()
	app.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	require.Equal(t, http.StatusOK, rec.Code)
}
