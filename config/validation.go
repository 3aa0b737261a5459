package config

import (
	"fmt"
	"strconv"
	"strings"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors collects every problem found in one pass
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	msgs := make([]string, len(e))
	for i, v := range e {
		msgs[i] = v.Error()
	}
	return strings.Join(msgs, "\n")
}

// ValidateConfig checks if the configuration meets the requirements for its environment
func ValidateConfig(cfg *Config) error {
	var errs ValidationErrors

	if _, err := strconv.Atoi(cfg.ServerPort); err != nil {
		errs = append(errs, ValidationError{Field: "SERVER_PORT", Message: "must be numeric"})
	}

	switch cfg.DBDriver {
	case "postgres":
		if cfg.DBHost == "" || cfg.DBName == "" {
			errs = append(errs, ValidationError{Field: "DB_HOST", Message: "host and database name are required for postgres"})
		}
	case "sqlite":
		if cfg.SQLitePath == "" {
			errs = append(errs, ValidationError{Field: "SQLITE_PATH", Message: "is required for sqlite"})
		}
	default:
		errs = append(errs, ValidationError{Field: "DB_DRIVER", Message: fmt.Sprintf("unsupported driver %q", cfg.DBDriver)})
	}

	if cfg.ChatRateLimit <= 0 {
		errs = append(errs, ValidationError{Field: "CHAT_RATE_LIMIT", Message: "must be positive"})
	}
	if cfg.PlanRateLimit <= 0 {
		errs = append(errs, ValidationError{Field: "PLAN_RATE_LIMIT", Message: "must be positive"})
	}
	if cfg.LLMTimeout <= 0 {
		errs = append(errs, ValidationError{Field: "LLM_TIMEOUT", Message: "must be positive"})
	}

	// Credentials cannot fall back to defaults outside local environments
	if cfg.Environment.strict() {
		if cfg.JWTSecret == "" {
			errs = append(errs, ValidationError{Field: "JWT_SECRET", Message: fmt.Sprintf("is required in %s environment", cfg.Environment)})
		}
		if cfg.LLMAPIKey == "" {
			errs = append(errs, ValidationError{Field: "LLM_API_KEY", Message: fmt.Sprintf("is required in %s environment", cfg.Environment)})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
