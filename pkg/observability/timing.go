package observability

import (
	"context"
	"log/slog"
	"time"
)

// Operation times one application operation. Finish logs the outcome and
// records the duration, total and error counters tagged with the operation name.
type Operation struct {
	ctx     context.Context
	name    string
	start   time.Time
	logger  *slog.Logger
	metrics Metrics
}

// StartOperation begins timing name. A nil logger or metrics is skipped.
func StartOperation(ctx context.Context, logger *slog.Logger, metrics Metrics, name string) *Operation {
	return &Operation{
		ctx:     ctx,
		name:    name,
		start:   time.Now(),
		logger:  logger,
		metrics: metrics,
	}
}

// Finish records the result of the operation and returns its duration.
func (o *Operation) Finish(err error) time.Duration {
	d := time.Since(o.start)
	tag := T("operation", o.name)

	if o.metrics != nil {
		o.metrics.Timing(MetricOperationDuration, d, tag)
		o.metrics.Counter(MetricOperationTotal, 1, tag)
		if err != nil {
			o.metrics.Counter(MetricOperationErrors, 1, tag)
		}
	}

	if o.logger != nil {
		if err != nil {
			o.logger.WarnContext(o.ctx, "operation failed",
				"operation", o.name,
				DurationKey, d.Milliseconds(),
				ErrorKey, err,
			)
		} else {
			o.logger.DebugContext(o.ctx, "operation completed",
				"operation", o.name,
				DurationKey, d.Milliseconds(),
			)
		}
	}
	return d
}
