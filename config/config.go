package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the recipe service
type Config struct {
	Environment Environment

	// Server configuration
	ServerHost string
	ServerPort string

	// Gemini configuration
	GeminiAPIKey      string
	GeminiModel       string
	GenerationTimeout time.Duration

	// CORS
	AllowedOrigins []string

	// Rate limiting. RedisURL is optional; without it the limiter is in-process.
	RedisURL          string
	RateLimitEnabled  bool
	RateLimitRequests int
	RateLimitWindow   time.Duration

	// Logging
	LogLevel  string
	LogFormat string
}

const (
	defaultServerHost        = "0.0.0.0"
	defaultServerPort        = "8080"
	defaultGeminiModel       = "gemini-2.0-flash"
	defaultGenerationTimeout = 30 * time.Second
	defaultAllowedOrigins    = "http://localhost:3000"
	defaultRateLimitRequests = 10
	defaultRateLimitWindow   = time.Minute
)

// LoadConfig creates a new Config instance with values from environment variables or secrets
func LoadConfig() (*Config, error) {
	env := GetEnvironment()

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v, env)

	cfg := &Config{
		Environment:       env,
		ServerHost:        v.GetString("server_host"),
		ServerPort:        v.GetString("server_port"),
		GeminiModel:       v.GetString("gemini_model"),
		GenerationTimeout: v.GetDuration("generation_timeout"),
		AllowedOrigins:    splitList(v.GetString("cors_allowed_origins")),
		RedisURL:          v.GetString("redis_url"),
		RateLimitEnabled:  v.GetBool("rate_limit_enabled"),
		RateLimitRequests: v.GetInt("rate_limit_requests"),
		RateLimitWindow:   v.GetDuration("rate_limit_window"),
		LogLevel:          v.GetString("log_level"),
		LogFormat:         v.GetString("log_format"),
	}

	key, err := geminiAPIKey(v)
	if err != nil {
		return nil, err
	}
	cfg.GeminiAPIKey = key

	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper, env Environment) {
	v.SetDefault("server_host", defaultServerHost)
	v.SetDefault("server_port", defaultServerPort)
	v.SetDefault("gemini_model", defaultGeminiModel)
	v.SetDefault("generation_timeout", defaultGenerationTimeout)
	v.SetDefault("cors_allowed_origins", defaultAllowedOrigins)
	v.SetDefault("rate_limit_enabled", false)
	v.SetDefault("rate_limit_requests", defaultRateLimitRequests)
	v.SetDefault("rate_limit_window", defaultRateLimitWindow)
	v.SetDefault("log_level", "info")
	if env == Production {
		v.SetDefault("log_format", "json")
	} else {
		v.SetDefault("log_format", "console")
	}
}

// geminiAPIKey resolves the key from GEMINI_API_KEY, then GEMINI_API_KEY_FILE,
// then the gemini_api_key Docker secret.
func geminiAPIKey(v *viper.Viper) (string, error) {
	if key := strings.TrimSpace(v.GetString("gemini_api_key")); key != "" {
		return key, nil
	}

	if keyFile := v.GetString("gemini_api_key_file"); keyFile != "" {
		data, err := os.ReadFile(keyFile)
		if err != nil {
			return "", fmt.Errorf("failed to read API key file: %w", err)
		}
		return strings.TrimSpace(string(data)), nil
	}

	return readSecret("gemini_api_key"), nil
}

// readSecret reads a Docker secret from the secrets directory
func readSecret(name string) string {
	secretsDir := os.Getenv("SECRETS_DIR")
	if secretsDir == "" {
		secretsDir = "/run/secrets"
	}
	if data, err := os.ReadFile(filepath.Join(secretsDir, name)); err == nil {
		return strings.TrimSpace(string(data))
	}
	return ""
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Addr returns the host:port the HTTP server listens on.
func (c *Config) Addr() string {
	return c.ServerHost + ":" + c.ServerPort
}
