package recommend

import (
	"log/slog"
	"time"

	"github.com/claude/odos/internal/metrics"
)

// CallEvent records metadata about a single recommendation call.
type CallEvent struct {
	Model    string
	Type     string
	Latency  time.Duration
	Attempts int
	Count    int
	Err      error
}

// Observer receives events about recommendation calls.
type Observer interface {
	OnCallComplete(event CallEvent)
}

// MetricsObserver logs each call and records its outcome and latency.
type MetricsObserver struct {
	log     *slog.Logger
	metrics *metrics.Manager
}

func NewMetricsObserver(logger *slog.Logger, m *metrics.Manager) *MetricsObserver {
	return &MetricsObserver{log: logger, metrics: m}
}

func (o *MetricsObserver) OnCallComplete(e CallEvent) {
	o.metrics.CounterRecommendations.WithLabelValues(metrics.Outcome(e.Err)).Inc()
	o.metrics.HistRecommendationDuration.Observe(e.Latency.Seconds())

	if e.Err != nil {
		o.log.Warn("recommendation call failed", "model", e.Model, "type", e.Type,
			"attempts", e.Attempts, "latency", e.Latency, "error", e.Err)
		return
	}
	o.log.Info("recommendation call complete", "model", e.Model, "type", e.Type,
		"attempts", e.Attempts, "latency", e.Latency, "exercises", e.Count)
}

// NoopObserver discards all events.
type NoopObserver struct{}

func (NoopObserver) OnCallComplete(CallEvent) {}
