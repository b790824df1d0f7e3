package outbox

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/felixgeelhaar/taskbrief/internal/shared/domain"
	"github.com/felixgeelhaar/taskbrief/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/taskbrief/pkg/observability"
)

// ProcessorConfig tunes the relay loop.
type ProcessorConfig struct {
	PollInterval     time.Duration
	BatchSize        int
	MaxRetries       int
	RetryBackoffBase time.Duration
	RetryBackoffMax  time.Duration
	RetentionDays    int
	CleanupInterval  time.Duration
}

// DefaultProcessorConfig returns sensible defaults.
func DefaultProcessorConfig() ProcessorConfig {
	return ProcessorConfig{
		PollInterval:     500 * time.Millisecond,
		BatchSize:        100,
		MaxRetries:       5,
		RetryBackoffBase: time.Second,
		RetryBackoffMax:  time.Minute,
		RetentionDays:    14,
		CleanupInterval:  24 * time.Hour,
	}
}

// Stats is a point-in-time view of the processor.
type Stats struct {
	Running         bool
	Published       uint64
	Failed          uint64
	DeadLettered    uint64
	LastError       string
	LastProcessedAt time.Time
}

// Processor polls the outbox and publishes pending messages.
// Delivery is at-least-once: a crash between publish and MarkPublished
// republishes the message on the next poll.
type Processor struct {
	repo      Repository
	publisher eventbus.Publisher
	config    ProcessorConfig
	logger    *slog.Logger
	metrics   observability.Metrics

	mu      sync.Mutex
	running bool
	stop    chan struct{}
	wg      sync.WaitGroup

	statsMu sync.Mutex
	stats   Stats
}

// NewProcessor creates a processor. A nil logger or metrics falls back to defaults.
func NewProcessor(repo Repository, publisher eventbus.Publisher, config ProcessorConfig, logger *slog.Logger, metrics observability.Metrics) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = observability.NoopMetrics{}
	}
	return &Processor{
		repo:      repo,
		publisher: publisher,
		config:    config,
		logger:    logger,
		metrics:   metrics,
	}
}

// Start runs the polling loop in the background until Stop or ctx ends.
// Calling Start on a running processor does nothing.
func (p *Processor) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.running {
		return
	}
	p.running = true
	p.stop = make(chan struct{})

	p.wg.Add(1)
	go p.run(ctx, p.stop)

	p.logger.Info("outbox processor started",
		"poll_interval", p.config.PollInterval,
		"batch_size", p.config.BatchSize,
	)
}

// Stop halts the loop and waits for the in-flight batch.
func (p *Processor) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	p.running = false
	close(p.stop)
	p.mu.Unlock()

	p.wg.Wait()
	p.logger.Info("outbox processor stopped")
}

// IsRunning reports whether the loop is active.
func (p *Processor) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

func (p *Processor) run(ctx context.Context, stop <-chan struct{}) {
	defer p.wg.Done()

	poll := time.NewTicker(p.config.PollInterval)
	defer poll.Stop()

	cleanupEvery := p.config.CleanupInterval
	if cleanupEvery <= 0 {
		cleanupEvery = 24 * time.Hour
	}
	cleanup := time.NewTicker(cleanupEvery)
	defer cleanup.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-stop:
			return
		case <-poll.C:
			if err := p.ProcessOnce(ctx); err != nil {
				p.logger.ErrorContext(ctx, "outbox batch failed", "error", err)
			}
		case <-cleanup.C:
			p.cleanup(ctx)
		}
	}
}

// ProcessOnce relays one batch synchronously.
func (p *Processor) ProcessOnce(ctx context.Context) error {
	msgs, err := p.repo.GetPending(ctx, p.config.BatchSize)
	if err != nil {
		p.record(func(s *Stats) { s.LastError = err.Error() })
		return err
	}
	p.record(func(s *Stats) { s.LastProcessedAt = time.Now() })

	for _, msg := range msgs {
		p.relay(ctx, msg)
	}
	return nil
}

func (p *Processor) relay(ctx context.Context, msg *Message) {
	tag := observability.T("routing_key", msg.RoutingKey)

	err := p.publisher.Publish(ctx, msg.RoutingKey, msg.Payload)
	if err == nil {
		if markErr := p.repo.MarkPublished(ctx, msg.ID); markErr != nil {
			p.logger.ErrorContext(ctx, "failed to mark message published", "id", msg.ID, "error", markErr)
			return
		}
		p.metrics.Counter(observability.MetricEventsPublished, 1, tag)
		p.record(func(s *Stats) { s.Published++ })
		return
	}

	p.logger.WarnContext(ctx, "failed to publish message",
		"id", msg.ID,
		"routing_key", msg.RoutingKey,
		"event_id", msg.EventID,
		"retry_count", msg.RetryCount,
		"correlation_id", correlationID(msg),
		"error", err,
	)
	p.record(func(s *Stats) { s.LastError = err.Error() })

	if p.exhausted(msg) {
		p.metrics.Counter(observability.MetricEventsDeadLettered, 1, tag)
		p.record(func(s *Stats) { s.DeadLettered++ })
		if markErr := p.repo.MarkDead(ctx, msg.ID, err.Error()); markErr != nil {
			p.logger.ErrorContext(ctx, "failed to dead-letter message", "id", msg.ID, "error", markErr)
		}
		return
	}

	p.metrics.Counter(observability.MetricEventsFailed, 1, tag)
	p.record(func(s *Stats) { s.Failed++ })
	next := time.Now().Add(p.Backoff(msg.RetryCount + 1))
	if markErr := p.repo.MarkFailed(ctx, msg.ID, err.Error(), next); markErr != nil {
		p.logger.ErrorContext(ctx, "failed to mark message failed", "id", msg.ID, "error", markErr)
	}
}

func (p *Processor) exhausted(msg *Message) bool {
	return p.config.MaxRetries <= 0 || msg.RetryCount+1 >= p.config.MaxRetries
}

// Backoff returns the delay before retry number attempt (1-based):
// base doubled per attempt, capped at the configured maximum.
func (p *Processor) Backoff(attempt int) time.Duration {
	base := p.config.RetryBackoffBase
	if base <= 0 {
		base = time.Second
	}
	ceiling := p.config.RetryBackoffMax
	if ceiling <= 0 {
		ceiling = time.Minute
	}

	d := base
	for i := 1; i < attempt; i++ {
		d *= 2
		if d >= ceiling {
			return ceiling
		}
	}
	return min(d, ceiling)
}

func (p *Processor) cleanup(ctx context.Context) {
	if p.config.RetentionDays <= 0 {
		return
	}
	cutoff := time.Now().AddDate(0, 0, -p.config.RetentionDays)
	n, err := p.repo.DeleteOld(ctx, cutoff)
	if err != nil {
		p.logger.ErrorContext(ctx, "outbox cleanup failed", "error", err)
		return
	}
	if n > 0 {
		p.logger.InfoContext(ctx, "outbox cleanup removed published messages", "count", n)
	}
}

// Stats returns a copy of the processor counters.
func (p *Processor) Stats() Stats {
	p.statsMu.Lock()
	s := p.stats
	p.statsMu.Unlock()
	s.Running = p.IsRunning()
	return s
}

func (p *Processor) record(update func(*Stats)) {
	p.statsMu.Lock()
	defer p.statsMu.Unlock()
	update(&p.stats)
}

func correlationID(msg *Message) string {
	if len(msg.Metadata) == 0 {
		return ""
	}
	var meta domain.EventMetadata
	if err := json.Unmarshal(msg.Metadata, &meta); err != nil {
		return ""
	}
	return meta.CorrelationID.String()
}
