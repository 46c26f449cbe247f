package config

import (
	"os"
	"strings"
)

// Environment is the deployment the process runs in.
type Environment string

const (
	Development Environment = "development"
	Test        Environment = "test"
	CI          Environment = "ci"
	Production  Environment = "production"
)

// ParseEnvironment maps a DAYPILOT_ENV/ENV value to an Environment. Unknown
// and empty values are Development.
func ParseEnvironment(s string) Environment {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "production", "prod":
		return Production
	case "test", "testing":
		return Test
	case "ci":
		return CI
	default:
		return Development
	}
}

// GetEnvironment reads the environment from the process. CI=true wins, then
// DAYPILOT_ENV, then ENV.
func GetEnvironment() Environment {
	if os.Getenv("CI") == "true" {
		return CI
	}
	if env := os.Getenv("DAYPILOT_ENV"); env != "" {
		return ParseEnvironment(env)
	}
	return ParseEnvironment(os.Getenv("ENV"))
}

// UsesSecrets reports whether sensitive values are read from Docker secrets.
func (e Environment) UsesSecrets() bool {
	return e != CI
}

// LoadsDotEnv reports whether a local .env file is consulted.
func (e Environment) LoadsDotEnv() bool {
	return e == Development
}

// DefaultLogFormat is json where logs are shipped, text elsewhere.
func (e Environment) DefaultLogFormat() string {
	if e == Production {
		return "json"
	}
	return "text"
}
