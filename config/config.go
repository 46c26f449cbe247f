package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Environment Environment

	// Server configuration
	ServerPort  string
	ServerHost  string
	CORSOrigins []string

	// Database configuration
	DBDriver   string // postgres or sqlite
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	SQLitePath string

	// Redis configuration. Rate limiting is disabled when RedisURL and
	// RedisHost are both empty.
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
	RedisURL      string

	// Auth
	JWTSecret string
	TokenTTL  time.Duration

	// Uploads
	S3Bucket         string
	S3Region         string
	S3Endpoint       string
	S3PublicBaseURL  string
	UploadMaxBytes   int64
	UploadRateLimit  int
	UploadRateWindow time.Duration
	AuthRateLimit    int
	AuthRateWindow   time.Duration

	// Logging
	LogLevel     string
	LogFormat    string
	LogstashAddr string
	ElasticURL   string
	ElasticIndex string

	// Live updates across instances; empty keeps fan-out in process.
	AMQPURL string

	// Nutrition resolver strategy: first or longest.
	NutritionMatch string
}

// secretKeys maps Docker secret file names to config keys.
var secretKeys = map[string]string{
	"db_user":        "DB_USER",
	"db_password":    "DB_PASSWORD",
	"jwt_secret":     "JWT_SECRET",
	"redis_password": "REDIS_PASSWORD",
	"redis_url":      "REDIS_URL",
	"amqp_url":       "AMQP_URL",
}

func setDefaults(v *viper.Viper, env Environment) {
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("CORS_ORIGINS", "*")
	v.SetDefault("DB_DRIVER", "postgres")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_NAME", "daypilot")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("SQLITE_PATH", "daypilot.db")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("TOKEN_TTL", "24h")
	v.SetDefault("S3_REGION", "us-east-1")
	v.SetDefault("UPLOAD_MAX_BYTES", 25<<20)
	v.SetDefault("UPLOAD_RATE_LIMIT", 20)
	v.SetDefault("UPLOAD_RATE_WINDOW", "1h")
	v.SetDefault("AUTH_RATE_LIMIT", 10)
	v.SetDefault("AUTH_RATE_WINDOW", "1m")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", env.DefaultLogFormat())
	v.SetDefault("NUTRITION_MATCH", "first")
}

// LoadConfig creates a new Config instance with values from environment
// variables, a .env file in development, and Docker secrets outside CI.
func LoadConfig() (*Config, error) {
	env := GetEnvironment()

	if env.LoadsDotEnv() {
		// a missing .env is fine
		_ = godotenv.Load()
	}

	v := viper.New()
	setDefaults(v, env)
	v.AutomaticEnv()

	if env == CI {
		// GitHub Actions exposes secrets with a TEST_ prefix
		for _, key := range []string{"DB_PASSWORD", "JWT_SECRET", "REDIS_PASSWORD", "REDIS_URL"} {
			if val := os.Getenv("TEST_" + key); val != "" {
				v.Set(key, val)
			}
		}
	}

	if env.UsesSecrets() {
		for name, key := range secretKeys {
			if val := readSecret(name); val != "" {
				v.Set(key, val)
			}
		}
	}

	cfg := fromViper(v)
	cfg.Environment = env

	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func fromViper(v *viper.Viper) *Config {
	return &Config{
		ServerPort:       v.GetString("SERVER_PORT"),
		ServerHost:       v.GetString("SERVER_HOST"),
		CORSOrigins:      splitList(v.GetString("CORS_ORIGINS")),
		DBDriver:         strings.ToLower(v.GetString("DB_DRIVER")),
		DBHost:           v.GetString("DB_HOST"),
		DBPort:           v.GetString("DB_PORT"),
		DBUser:           v.GetString("DB_USER"),
		DBPassword:       v.GetString("DB_PASSWORD"),
		DBName:           v.GetString("DB_NAME"),
		DBSSLMode:        v.GetString("DB_SSL_MODE"),
		SQLitePath:       v.GetString("SQLITE_PATH"),
		RedisHost:        v.GetString("REDIS_HOST"),
		RedisPort:        v.GetString("REDIS_PORT"),
		RedisPassword:    v.GetString("REDIS_PASSWORD"),
		RedisDB:          v.GetInt("REDIS_DB"),
		RedisURL:         v.GetString("REDIS_URL"),
		JWTSecret:        v.GetString("JWT_SECRET"),
		TokenTTL:         v.GetDuration("TOKEN_TTL"),
		S3Bucket:         v.GetString("S3_BUCKET_NAME"),
		S3Region:         v.GetString("S3_REGION"),
		S3Endpoint:       v.GetString("S3_ENDPOINT"),
		S3PublicBaseURL:  strings.TrimRight(v.GetString("S3_PUBLIC_BASE_URL"), "/"),
		UploadMaxBytes:   v.GetInt64("UPLOAD_MAX_BYTES"),
		UploadRateLimit:  v.GetInt("UPLOAD_RATE_LIMIT"),
		UploadRateWindow: v.GetDuration("UPLOAD_RATE_WINDOW"),
		AuthRateLimit:    v.GetInt("AUTH_RATE_LIMIT"),
		AuthRateWindow:   v.GetDuration("AUTH_RATE_WINDOW"),
		LogLevel:         v.GetString("LOG_LEVEL"),
		LogFormat:        v.GetString("LOG_FORMAT"),
		LogstashAddr:     v.GetString("LOGSTASH_ADDR"),
		ElasticURL:       v.GetString("ELASTIC_URL"),
		ElasticIndex:     v.GetString("ELASTIC_INDEX"),
		AMQPURL:          v.GetString("AMQP_URL"),
		NutritionMatch:   v.GetString("NUTRITION_MATCH"),
	}
}

// RedisEnabled reports whether a Redis server is configured.
func (c *Config) RedisEnabled() bool {
	return c.RedisURL != "" || c.RedisHost != ""
}

// UploadsEnabled reports whether an S3 bucket is configured.
func (c *Config) UploadsEnabled() bool {
	return c.S3Bucket != ""
}

// Addr is the listen address.
func (c *Config) Addr() string {
	return c.ServerHost + ":" + c.ServerPort
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func secretsDir() string {
	if dir := os.Getenv("SECRETS_DIR"); dir != "" {
		return dir
	}
	return "/run/secrets"
}

// readSecret reads a Docker secret from the secrets directory
func readSecret(name string) string {
	data, err := os.ReadFile(filepath.Join(secretsDir(), name))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}
