package mcp

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/felixgeelhaar/mcp-go/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/taskbrief/internal/app"
	"github.com/felixgeelhaar/taskbrief/pkg/config"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewServer(t *testing.T) {
	t.Run("requires an app", func(t *testing.T) {
		_, err := NewServer(nil, "test", discardLogger())
		assert.Error(t, err)
	})

	t.Run("exposes the container through tools", func(t *testing.T) {
		dir := t.TempDir()
		cfg := &config.Config{
			AppEnv:         "development",
			DataDir:        dir,
			DatabaseDriver: "auto",
			SQLitePath:     filepath.Join(dir, "data.db"),
			JWTSecret:      config.DevJWTSecret,
			SessionTTL:     time.Hour,
			ResetTokenTTL:  time.Hour,
			SessionFile:    filepath.Join(dir, "session"),
			APIAddr:        "127.0.0.1:0",
		}
		container, err := app.NewContainer(context.Background(), cfg, discardLogger())
		require.NoError(t, err)
		t.Cleanup(func() { _ = container.Close() })

		cliApp := NewCLIApp(container)
		assert.Equal(t, "127.0.0.1:0", cliApp.APIAddr)
		assert.Nil(t, cliApp.ExportDeadlinesHandler)
		assert.NotNil(t, cliApp.Health)

		srv, err := NewServer(cliApp, "test", discardLogger())
		require.NoError(t, err)

		tc := testutil.NewTestClient(t, srv)
		defer tc.Close()

		tools, err := tc.ListTools()
		require.NoError(t, err)
		assert.NotEmpty(t, tools)
	})
}

func TestMiddleware(t *testing.T) {
	open := Middleware(&config.Config{}, discardLogger())
	secured := Middleware(&config.Config{MCPAuthToken: "secret"}, discardLogger())

	assert.Len(t, secured, len(open)+1)
}

func TestFieldsToArgs(t *testing.T) {
	assert.Empty(t, fieldsToArgs(nil))
}
