package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"CI", "ENV", "GEMINI_API_KEY", "GEMINI_API_KEY_FILE", "GEMINI_MODEL",
		"SERVER_HOST", "SERVER_PORT", "GENERATION_TIMEOUT", "CORS_ALLOWED_ORIGINS",
		"REDIS_URL", "RATE_LIMIT_ENABLED", "RATE_LIMIT_REQUESTS", "RATE_LIMIT_WINDOW",
		"LOG_LEVEL", "LOG_FORMAT",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
	// Point secrets at an empty directory so the host's /run/secrets never leaks in.
	t.Setenv("SECRETS_DIR", t.TempDir())
}

func TestLoadConfig(t *testing.T) {
	clearEnv(t)
	t.Setenv("GEMINI_API_KEY", "test-key")
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("GENERATION_TIMEOUT", "12s")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.test, http://b.test")
	t.Setenv("RATE_LIMIT_ENABLED", "true")
	t.Setenv("RATE_LIMIT_REQUESTS", "3")
	t.Setenv("REDIS_URL", "redis://localhost:6379")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "test-key", cfg.GeminiAPIKey)
	assert.Equal(t, "9090", cfg.ServerPort)
	assert.Equal(t, 12*time.Second, cfg.GenerationTimeout)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.AllowedOrigins)
	assert.True(t, cfg.RateLimitEnabled)
	assert.Equal(t, 3, cfg.RateLimitRequests)
	assert.Equal(t, "redis://localhost:6379", cfg.RedisURL)
}

func TestLoadConfigWithDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("GEMINI_API_KEY", "test-key")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, Development, cfg.Environment)
	assert.Equal(t, "0.0.0.0:8080", cfg.Addr())
	assert.Equal(t, "gemini-2.0-flash", cfg.GeminiModel)
	assert.Equal(t, 30*time.Second, cfg.GenerationTimeout)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.AllowedOrigins)
	assert.False(t, cfg.RateLimitEnabled)
	assert.Equal(t, "console", cfg.LogFormat)
}

func TestLoadConfigFromSecretFile(t *testing.T) {
	clearEnv(t)
	secretsDir := t.TempDir()
	t.Setenv("SECRETS_DIR", secretsDir)
	require.NoError(t, os.WriteFile(filepath.Join(secretsDir, "gemini_api_key"), []byte("from-secret\n"), 0600))

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "from-secret", cfg.GeminiAPIKey)
}

func TestLoadConfigFromKeyFile(t *testing.T) {
	clearEnv(t)
	keyFile := filepath.Join(t.TempDir(), "key")
	require.NoError(t, os.WriteFile(keyFile, []byte("  from-file  "), 0600))
	t.Setenv("GEMINI_API_KEY_FILE", keyFile)

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "from-file", cfg.GeminiAPIKey)
}

func TestLoadConfigMissingKey(t *testing.T) {
	clearEnv(t)

	_, err := LoadConfig()
	require.Error(t, err)

	var vErr ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Equal(t, "GEMINI_API_KEY", vErr.Field)
}

func TestValidateConfigCollectsAllErrors(t *testing.T) {
	err := ValidateConfig(&Config{
		ServerPort:       "not-a-port",
		RateLimitEnabled: true,
	})
	require.Error(t, err)
	for _, field := range []string{"GEMINI_API_KEY", "GEMINI_MODEL", "SERVER_PORT", "GENERATION_TIMEOUT", "RATE_LIMIT_REQUESTS", "RATE_LIMIT_WINDOW"} {
		assert.Contains(t, err.Error(), field)
	}
}

func TestEnvironmentGinMode(t *testing.T) {
	assert.Equal(t, "release", Production.GinMode())
	assert.Equal(t, "test", Test.GinMode())
	assert.Equal(t, "test", CI.GinMode())
	assert.Equal(t, "debug", Development.GinMode())
}
