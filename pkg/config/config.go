// Package config loads process configuration from the environment.
// A .env file in the working directory is read first when present.
package config

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DevJWTSecret signs sessions when JWT_SECRET is unset outside production.
const DevJWTSecret = "taskbrief-development-only-signing-secret"

// Config holds application configuration.
type Config struct {
	// Application
	AppEnv    string
	LogLevel  string
	LogFormat string
	DataDir   string

	// Relational database (users, tasks, outbox)
	DatabaseURL      string
	DatabaseDriver   string
	SQLitePath       string
	DatabaseMaxConns int

	// Task store override. A mongodb:// URL moves tasks to MongoDB.
	TaskStoreURL  string
	MongoDatabase string

	// Redis session store. Empty keeps sessions in memory.
	RedisURL string

	// RabbitMQ. Empty makes the worker log events instead of publishing.
	RabbitMQURL string

	// Outbox
	OutboxPollInterval    time.Duration
	OutboxBatchSize       int
	OutboxMaxRetries      int
	OutboxRetentionDays   int
	OutboxCleanupInterval time.Duration
	WorkerHealthAddr      string

	// Summarizer
	GeminiBaseURL        string
	GeminiModel          string
	GeminiAPIKey         string
	GeminiAccessToken    string
	GeminiTimeout        time.Duration
	GeminiCircuitBreaker bool

	// Summarizer OAuth client credentials, used when set instead of an API key.
	OAuthClientID     string
	OAuthClientSecret string
	OAuthTokenURL     string
	OAuthScopes       []string

	// Credentials
	JWTSecret     string
	SessionTTL    time.Duration
	ResetTokenTTL time.Duration
	SessionFile   string

	// CalDAV export
	CalDAVURL      string
	CalDAVUsername string
	CalDAVPassword string
	CalDAVCalendar string

	// HTTP API
	APIAddr string

	// MCP server
	MCPAddr      string
	MCPAuthToken string
}

// Load reads configuration from the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	dataDir := getEnv("TASKBRIEF_HOME", defaultDataDir())

	cfg := &Config{
		AppEnv:    getEnv("APP_ENV", "development"),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),
		DataDir:   dataDir,

		DatabaseURL:      getEnv("DATABASE_URL", ""),
		DatabaseDriver:   getEnv("DATABASE_DRIVER", "auto"),
		SQLitePath:       getEnv("SQLITE_PATH", filepath.Join(dataDir, "data.db")),
		DatabaseMaxConns: getIntEnv("DATABASE_MAX_CONNS", 0),

		TaskStoreURL:  getEnv("TASK_STORE_URL", ""),
		MongoDatabase: getEnv("MONGO_DATABASE", "taskbrief"),

		RedisURL:    getEnv("REDIS_URL", ""),
		RabbitMQURL: getEnv("RABBITMQ_URL", ""),

		OutboxPollInterval:    getDurationEnv("OUTBOX_POLL_INTERVAL", 500*time.Millisecond),
		OutboxBatchSize:       getIntEnv("OUTBOX_BATCH_SIZE", 100),
		OutboxMaxRetries:      getIntEnv("OUTBOX_MAX_RETRIES", 5),
		OutboxRetentionDays:   getIntEnv("OUTBOX_RETENTION_DAYS", 14),
		OutboxCleanupInterval: getDurationEnv("OUTBOX_CLEANUP_INTERVAL", 24*time.Hour),
		WorkerHealthAddr:      getEnv("WORKER_HEALTH_ADDR", "0.0.0.0:8081"),

		GeminiBaseURL:        getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com"),
		GeminiModel:          getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
		GeminiAPIKey:         getEnv("GEMINI_API_KEY", ""),
		GeminiAccessToken:    getEnv("GEMINI_ACCESS_TOKEN", ""),
		GeminiTimeout:        getDurationEnv("GEMINI_TIMEOUT", 60*time.Second),
		GeminiCircuitBreaker: getBoolEnv("GEMINI_CIRCUIT_BREAKER", false),

		OAuthClientID:     getEnv("OAUTH_CLIENT_ID", ""),
		OAuthClientSecret: getEnv("OAUTH_CLIENT_SECRET", ""),
		OAuthTokenURL:     getEnv("OAUTH_TOKEN_URL", ""),
		OAuthScopes:       getListEnv("OAUTH_SCOPES"),

		JWTSecret:     getEnv("JWT_SECRET", ""),
		SessionTTL:    getDurationEnv("SESSION_TTL", 30*24*time.Hour),
		ResetTokenTTL: getDurationEnv("RESET_TOKEN_TTL", time.Hour),
		SessionFile:   getEnv("SESSION_FILE", filepath.Join(dataDir, "session")),

		CalDAVURL:      getEnv("CALDAV_URL", ""),
		CalDAVUsername: getEnv("CALDAV_USERNAME", ""),
		CalDAVPassword: getEnv("CALDAV_PASSWORD", ""),
		CalDAVCalendar: getEnv("CALDAV_CALENDAR", ""),

		APIAddr: getEnv("API_ADDR", "127.0.0.1:8080"),

		MCPAddr:      getEnv("MCP_ADDR", "127.0.0.1:8765"),
		MCPAuthToken: getEnv("MCP_AUTH_TOKEN", ""),
	}

	if cfg.JWTSecret == "" {
		if cfg.IsProduction() {
			return nil, errors.New("JWT_SECRET is required in production")
		}
		cfg.JWTSecret = DevJWTSecret
	}

	return cfg, nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// UsesOAuth reports whether the summarizer authenticates with client credentials.
func (c *Config) UsesOAuth() bool {
	return c.OAuthClientID != "" && c.OAuthTokenURL != ""
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".taskbrief"
	}
	return filepath.Join(home, ".taskbrief")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getListEnv(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
