// Package eventbus delivers outbox messages to subscribers outside the process.
package eventbus

import (
	"context"
	"log/slog"
)

// Publisher sends a serialized event under a routing key.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, payload []byte) error
	Close() error
}

// LogPublisher writes events to the log instead of a broker. The worker uses
// it when no broker is configured so the outbox still drains.
type LogPublisher struct {
	logger *slog.Logger
}

func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Publish(ctx context.Context, routingKey string, payload []byte) error {
	p.logger.InfoContext(ctx, "event", "routing_key", routingKey, "payload", string(payload))
	return nil
}

func (p *LogPublisher) Close() error { return nil }
