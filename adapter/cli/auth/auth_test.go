package auth

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/taskbrief/adapter/cli"
	internalApp "github.com/felixgeelhaar/taskbrief/internal/app"
	identityDomain "github.com/felixgeelhaar/taskbrief/internal/identity/domain"
	shared "github.com/felixgeelhaar/taskbrief/internal/shared/domain"
	"github.com/felixgeelhaar/taskbrief/pkg/config"
)

func setupApp(t *testing.T) *cli.App {
	t.Helper()
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
	}

	container, err := internalApp.NewContainer(context.Background(), cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Close() })

	app := cli.NewApp(
		container.CreateTaskHandler,
		container.DeleteTaskHandler,
		container.ListTasksHandler,
		container.SummarizeHandler,
		container.AuthService,
		cli.NewSessionFile(cfg.SessionFile, cfg.DataDir),
	)
	cli.SetApp(app)
	t.Cleanup(func() { cli.SetApp(nil) })
	return app
}

func run(t *testing.T, cmd *cobra.Command) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetContext(context.Background())
	err := cmd.RunE(cmd, nil)
	return out.String(), err
}

func credentials(e, p, c string) {
	email, password, confirmation, resetToken = e, p, c, ""
}

func TestSessionLifecycle(t *testing.T) {
	app := setupApp(t)

	credentials("ada@example.com", "secret1", "secret1")
	out, err := run(t, signUpCmd)
	require.NoError(t, err)
	assert.Equal(t, "Signed up and signed in as ada@example.com\n", out)

	out, err = run(t, whoAmICmd)
	require.NoError(t, err)
	owner, err := app.CurrentOwner(context.Background())
	require.NoError(t, err)
	assert.Equal(t, owner.String()+"\n", out)

	out, err = run(t, signOutCmd)
	require.NoError(t, err)
	assert.Equal(t, "Signed out.\n", out)

	_, err = run(t, whoAmICmd)
	assert.ErrorIs(t, err, shared.ErrUnauthenticated)

	out, err = run(t, signOutCmd)
	require.NoError(t, err)
	assert.Equal(t, "Not signed in.\n", out)

	credentials("ada@example.com", "secret1", "")
	out, err = run(t, signInCmd)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "Signed in as ada@example.com\n"))

	again, err := app.CurrentOwner(context.Background())
	require.NoError(t, err)
	assert.Equal(t, owner, again)
}

func TestSignUp_Validation(t *testing.T) {
	setupApp(t)

	t.Run("mismatched confirmation", func(t *testing.T) {
		credentials("bob@example.com", "secret1", "secret2")
		_, err := run(t, signUpCmd)
		assert.ErrorIs(t, err, identityDomain.ErrPasswordMismatch)
	})

	t.Run("duplicate email", func(t *testing.T) {
		credentials("bob@example.com", "secret1", "secret1")
		_, err := run(t, signUpCmd)
		require.NoError(t, err)

		_, err = run(t, signUpCmd)
		assert.ErrorIs(t, err, identityDomain.ErrEmailTaken)
	})
}

func TestSignIn_WrongPassword(t *testing.T) {
	setupApp(t)

	credentials("cy@example.com", "secret1", "secret1")
	_, err := run(t, signUpCmd)
	require.NoError(t, err)

	credentials("cy@example.com", "wrong-password", "")
	_, err = run(t, signInCmd)
	assert.ErrorIs(t, err, identityDomain.ErrInvalidCredentials)
	assert.Equal(t, "email or password is incorrect", cli.Describe(err))
}

func TestReset(t *testing.T) {
	setupApp(t)

	t.Run("request is silent for unknown addresses", func(t *testing.T) {
		credentials("nobody@example.com", "", "")
		out, err := run(t, resetRequestCmd)
		require.NoError(t, err)
		assert.Contains(t, out, "If the address is registered")
	})

	t.Run("reset needs a token", func(t *testing.T) {
		credentials("", "secret9", "secret9")
		_, err := run(t, resetCmd)
		assert.EqualError(t, err, "missing --token")
	})
}

func TestCommandsRequireApp(t *testing.T) {
	cli.SetApp(nil)
	for _, c := range []*cobra.Command{signUpCmd, signInCmd, signOutCmd, whoAmICmd, resetRequestCmd, resetCmd} {
		_, err := run(t, c)
		assert.ErrorIs(t, err, cli.ErrNotInitialized, c.Name())
	}
}
