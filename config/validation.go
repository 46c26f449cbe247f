package config

import (
	"fmt"
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

// ValidationErrors collects every problem found in one pass.
type ValidationErrors []ValidationError

func (es ValidationErrors) Error() string {
	msgs := make([]string, len(es))
	for i, e := range es {
		msgs[i] = e.Error()
	}
	return strings.Join(msgs, "\n")
}

// sensitiveSource names where a sensitive value should come from.
func sensitiveSource(env Environment, envVar, secret string) string {
	if env.UsesSecrets() {
		return fmt.Sprintf("%s secret or %s environment variable is required", secret, envVar)
	}
	return fmt.Sprintf("%s environment variable is required in CI environment", envVar)
}

// ValidateConfig checks if the configuration meets the requirements for its
// environment.
func ValidateConfig(cfg *Config) error {
	env := cfg.Environment
	if env == "" {
		env = GetEnvironment()
	}

	var errs ValidationErrors
	add := func(field, msg string) {
		errs = append(errs, ValidationError{Field: field, Message: msg})
	}

	if cfg.ServerPort == "" {
		add("SERVER_PORT", "is required")
	}

	switch cfg.DBDriver {
	case "sqlite":
		if env == Production {
			add("DB_DRIVER", "sqlite is not allowed in production")
		}
		if cfg.SQLitePath == "" {
			add("SQLITE_PATH", "is required for the sqlite driver")
		}
	case "postgres":
		for field, val := range map[string]string{
			"DB_HOST": cfg.DBHost,
			"DB_PORT": cfg.DBPort,
			"DB_NAME": cfg.DBName,
		} {
			if val == "" {
				add(field, "is required for the postgres driver")
			}
		}
		if cfg.DBUser == "" {
			add("DB_USER", sensitiveSource(env, "DB_USER", "db_user"))
		}
		if cfg.DBPassword == "" {
			add("DB_PASSWORD", sensitiveSource(env, "DB_PASSWORD", "db_password"))
		}
	default:
		add("DB_DRIVER", fmt.Sprintf("unknown driver %q", cfg.DBDriver))
	}

	if cfg.JWTSecret == "" {
		add("JWT_SECRET", sensitiveSource(env, "JWT_SECRET", "jwt_secret"))
	} else if env == Production && len(cfg.JWTSecret) < 32 {
		add("JWT_SECRET", "must be at least 32 characters in production")
	}

	if cfg.TokenTTL <= 0 {
		add("TOKEN_TTL", "must be positive")
	}
	if cfg.UploadMaxBytes <= 0 {
		add("UPLOAD_MAX_BYTES", "must be positive")
	}
	if cfg.RedisEnabled() && (cfg.UploadRateLimit <= 0 || cfg.UploadRateWindow <= 0) {
		add("UPLOAD_RATE_LIMIT", "limit and window must be positive when redis is configured")
	}
	if cfg.RedisEnabled() && (cfg.AuthRateLimit <= 0 || cfg.AuthRateWindow <= 0) {
		add("AUTH_RATE_LIMIT", "limit and window must be positive when redis is configured")
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
