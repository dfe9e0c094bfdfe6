package config

import (
	"errors"
	"fmt"
	"strconv"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateConfig checks the configuration and reports every problem it finds.
func ValidateConfig(cfg *Config) error {
	var errs []error

	if cfg.GeminiAPIKey == "" {
		errs = append(errs, ValidationError{
			Field:   "GEMINI_API_KEY",
			Message: "must be set via GEMINI_API_KEY, GEMINI_API_KEY_FILE or the gemini_api_key secret",
		})
	}
	if cfg.GeminiModel == "" {
		errs = append(errs, ValidationError{Field: "GEMINI_MODEL", Message: "must not be empty"})
	}
	if port, err := strconv.Atoi(cfg.ServerPort); err != nil || port <= 0 || port > 65535 {
		errs = append(errs, ValidationError{Field: "SERVER_PORT", Message: fmt.Sprintf("invalid port %q", cfg.ServerPort)})
	}
	if cfg.GenerationTimeout <= 0 {
		errs = append(errs, ValidationError{Field: "GENERATION_TIMEOUT", Message: "must be positive"})
	}
	if cfg.RateLimitEnabled {
		if cfg.RateLimitRequests <= 0 {
			errs = append(errs, ValidationError{Field: "RATE_LIMIT_REQUESTS", Message: "must be positive"})
		}
		if cfg.RateLimitWindow <= 0 {
			errs = append(errs, ValidationError{Field: "RATE_LIMIT_WINDOW", Message: "must be positive"})
		}
	}

	return errors.Join(errs...)
}
