package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envVars = []string{
	"APP_ENV", "LOG_LEVEL", "LOG_FORMAT", "TASKBRIEF_HOME",
	"DATABASE_URL", "DATABASE_DRIVER", "SQLITE_PATH", "DATABASE_MAX_CONNS",
	"TASK_STORE_URL", "MONGO_DATABASE", "REDIS_URL", "RABBITMQ_URL",
	"OUTBOX_POLL_INTERVAL", "OUTBOX_BATCH_SIZE", "OUTBOX_MAX_RETRIES",
	"OUTBOX_RETENTION_DAYS", "OUTBOX_CLEANUP_INTERVAL", "WORKER_HEALTH_ADDR",
	"GEMINI_BASE_URL", "GEMINI_MODEL", "GEMINI_API_KEY", "GEMINI_ACCESS_TOKEN",
	"GEMINI_TIMEOUT", "GEMINI_CIRCUIT_BREAKER",
	"OAUTH_CLIENT_ID", "OAUTH_CLIENT_SECRET", "OAUTH_TOKEN_URL", "OAUTH_SCOPES",
	"JWT_SECRET", "SESSION_TTL", "RESET_TOKEN_TTL", "SESSION_FILE",
	"CALDAV_URL", "CALDAV_USERNAME", "CALDAV_PASSWORD", "CALDAV_CALENDAR",
	"API_ADDR", "MCP_ADDR", "MCP_AUTH_TOKEN",
}

// clearEnv blanks every variable Load reads for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, v := range envVars {
		t.Setenv(v, "")
	}
}

func TestLoad_DefaultValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("TASKBRIEF_HOME", "/tmp/tb")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.AppEnv)
	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "", cfg.DatabaseURL)
	assert.Equal(t, "auto", cfg.DatabaseDriver)
	assert.Equal(t, filepath.Join("/tmp/tb", "data.db"), cfg.SQLitePath)
	assert.Equal(t, filepath.Join("/tmp/tb", "session"), cfg.SessionFile)
	assert.Equal(t, "taskbrief", cfg.MongoDatabase)
	assert.Empty(t, cfg.RedisURL)
	assert.Empty(t, cfg.RabbitMQURL)

	assert.Equal(t, 500*time.Millisecond, cfg.OutboxPollInterval)
	assert.Equal(t, 100, cfg.OutboxBatchSize)
	assert.Equal(t, 5, cfg.OutboxMaxRetries)

	assert.Equal(t, "https://generativelanguage.googleapis.com", cfg.GeminiBaseURL)
	assert.Equal(t, "gemini-2.0-flash", cfg.GeminiModel)
	assert.Equal(t, 60*time.Second, cfg.GeminiTimeout)
	assert.False(t, cfg.GeminiCircuitBreaker)
	assert.False(t, cfg.UsesOAuth())

	assert.Equal(t, DevJWTSecret, cfg.JWTSecret)
	assert.Equal(t, 30*24*time.Hour, cfg.SessionTTL)
	assert.Equal(t, time.Hour, cfg.ResetTokenTTL)
	assert.Equal(t, "127.0.0.1:8080", cfg.APIAddr)
	assert.Equal(t, "127.0.0.1:8765", cfg.MCPAddr)
	assert.Empty(t, cfg.MCPAuthToken)
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("APP_ENV", "production")
	t.Setenv("DATABASE_URL", "postgres://localhost/taskbrief")
	t.Setenv("TASK_STORE_URL", "mongodb://localhost:27017")
	t.Setenv("OUTBOX_BATCH_SIZE", "25")
	t.Setenv("GEMINI_TIMEOUT", "5s")
	t.Setenv("GEMINI_CIRCUIT_BREAKER", "true")
	t.Setenv("OAUTH_CLIENT_ID", "client")
	t.Setenv("OAUTH_TOKEN_URL", "https://auth.example.com/token")
	t.Setenv("OAUTH_SCOPES", "a, b,,c")
	t.Setenv("JWT_SECRET", "s3cret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "postgres://localhost/taskbrief", cfg.DatabaseURL)
	assert.Equal(t, "mongodb://localhost:27017", cfg.TaskStoreURL)
	assert.Equal(t, 25, cfg.OutboxBatchSize)
	assert.Equal(t, 5*time.Second, cfg.GeminiTimeout)
	assert.True(t, cfg.GeminiCircuitBreaker)
	assert.True(t, cfg.UsesOAuth())
	assert.Equal(t, []string{"a", "b", "c"}, cfg.OAuthScopes)
	assert.Equal(t, "s3cret", cfg.JWTSecret)
}

func TestLoad_InvalidNumbersFallBack(t *testing.T) {
	clearEnv(t)
	t.Setenv("OUTBOX_BATCH_SIZE", "many")
	t.Setenv("SESSION_TTL", "forever")
	t.Setenv("GEMINI_CIRCUIT_BREAKER", "sometimes")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 100, cfg.OutboxBatchSize)
	assert.Equal(t, 30*24*time.Hour, cfg.SessionTTL)
	assert.False(t, cfg.GeminiCircuitBreaker)
}

func TestLoad_ProductionRequiresSecret(t *testing.T) {
	clearEnv(t)
	t.Setenv("APP_ENV", "production")

	_, err := Load()
	assert.Error(t, err)
}
