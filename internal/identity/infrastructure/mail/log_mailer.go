// Package mail delivers account emails.
package mail

import (
	"context"
	"log/slog"

	"github.com/felixgeelhaar/taskbrief/internal/identity/domain"
)

// LogMailer writes outgoing mail to the log instead of sending it. It is the
// default until an SMTP relay is configured.
type LogMailer struct {
	logger *slog.Logger
}

func NewLogMailer(logger *slog.Logger) *LogMailer {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogMailer{logger: logger}
}

func (m *LogMailer) SendPasswordReset(ctx context.Context, to domain.Email, token string) error {
	m.logger.InfoContext(ctx, "password reset requested",
		"to", to.String(),
		"reset_token", token,
	)
	return nil
}
