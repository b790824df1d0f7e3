package observability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestInMemoryMetrics(t *testing.T) {
	m := NewInMemoryMetrics()

	m.Counter(MetricTasksCreated, 1)
	m.Counter(MetricTasksCreated, 2)
	m.Counter(MetricEventsPublished, 1, T("routing_key", "tasks.task.created"))
	m.Timing(MetricOperationDuration, 5*time.Millisecond)

	assert.Equal(t, int64(3), m.CounterValue(MetricTasksCreated))
	assert.Equal(t, int64(1), m.CounterValue(MetricEventsPublished, T("routing_key", "tasks.task.created")))
	assert.Zero(t, m.CounterValue(MetricEventsPublished))
	assert.Equal(t, []time.Duration{5 * time.Millisecond}, m.Timings(MetricOperationDuration))

	snap := m.Snapshot()
	assert.Equal(t, int64(3), snap[MetricTasksCreated])
	assert.Equal(t, int64(1), snap["taskbrief.events.published:routing_key=tasks.task.created"])
}

func TestNoopMetrics(t *testing.T) {
	var m Metrics = NoopMetrics{}
	assert.NotPanics(t, func() {
		m.Counter("x", 1)
		m.Timing("y", time.Second)
	})
}

func TestHealthRegistry(t *testing.T) {
	ok := func(context.Context) error { return nil }
	down := func(context.Context) error { return errors.New("connection refused") }

	t.Run("empty registry is healthy", func(t *testing.T) {
		assert.Equal(t, HealthStatusHealthy, NewHealthRegistry().Check(context.Background()).Status)
	})

	t.Run("optional failure degrades", func(t *testing.T) {
		r := NewHealthRegistry()
		r.Register("database", PingChecker(ok, HealthStatusUnhealthy))
		r.Register("redis", PingChecker(down, HealthStatusDegraded))

		health := r.Check(context.Background())

		assert.Equal(t, HealthStatusDegraded, health.Status)
		assert.Equal(t, "connection refused", health.Checks["redis"].Message)
		assert.Equal(t, HealthStatusHealthy, health.Checks["database"].Status)
		assert.Equal(t, []string{"database", "redis"}, r.Names())
	})

	t.Run("required failure is unhealthy", func(t *testing.T) {
		r := NewHealthRegistry()
		r.Register("database", PingChecker(down, HealthStatusUnhealthy))
		r.Register("redis", PingChecker(down, HealthStatusDegraded))

		assert.Equal(t, HealthStatusUnhealthy, r.Check(context.Background()).Status)
	})
}
