// Package metrics holds the Prometheus collectors shared by the catalog,
// planner, session tracker and HTTP server.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recommendation and workout outcome label values.
const (
	OutcomeSuccess   = "success"
	OutcomeFailure   = "failure"
	OutcomeCompleted = "completed"
	OutcomeCancelled = "cancelled"
)

// Drop sources for CounterReconcileDrops.
const (
	DropSourceRecommendation = "recommendation"
	DropSourceDefaultPlan    = "default_plan"
)

type Manager struct {
	// counters
	CounterRequests        *prometheus.CounterVec
	CounterCatalogRefresh  *prometheus.CounterVec
	CounterRecommendations *prometheus.CounterVec
	CounterReconcileDrops  *prometheus.CounterVec
	CounterWorkouts        *prometheus.CounterVec

	// gauges
	GaugeCatalogSize prometheus.Gauge

	// histograms
	HistRecommendationDuration prometheus.Histogram

	gatherer prometheus.Gatherer
}

func NewTestManager() *Manager {
	return NewManager("odos", "test", prometheus.NewRegistry())
}

// NewManager registers every collector on reg. reg must also be a
// prometheus.Gatherer for Handler to expose anything.
func NewManager(namespace, subsystem string, reg prometheus.Registerer) *Manager {
	factory := promauto.With(reg)

	counterRequests := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "request",
		Help:      "The total number of incoming requests",
	}, []string{"method", "status"})
	counterCatalogRefresh := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "catalog_refresh",
		Help:      "The total number of catalog fetches by outcome",
	}, []string{"outcome"})
	counterRecommendations := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "recommendation",
		Help:      "The total number of recommendation calls by outcome",
	}, []string{"outcome"})
	counterReconcileDrops := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "reconcile_dropped",
		Help:      "Exercise names dropped because they matched nothing in the catalog",
	}, []string{"source"})
	counterWorkouts := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "workout",
		Help:      "The total number of finished workout sessions by outcome",
	}, []string{"outcome"})

	gaugeCatalogSize := factory.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "catalog_size",
		Help:      "Number of exercise definitions currently loaded",
	})

	histRecommendationDuration := factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "recommendation_duration_seconds",
		Help:      "Duration of a single recommendation call in seconds",
		Buckets:   []float64{.1, .25, .5, 1, 2.5, 5, 10, 20, 40, 60},
	})

	m := &Manager{
		CounterRequests:            counterRequests,
		CounterCatalogRefresh:      counterCatalogRefresh,
		CounterRecommendations:     counterRecommendations,
		CounterReconcileDrops:      counterReconcileDrops,
		CounterWorkouts:            counterWorkouts,
		GaugeCatalogSize:           gaugeCatalogSize,
		HistRecommendationDuration: histRecommendationDuration,
	}
	if g, ok := reg.(prometheus.Gatherer); ok {
		m.gatherer = g
	}
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Manager) Handler() http.Handler {
	if m.gatherer == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// Outcome maps an error to OutcomeSuccess or OutcomeFailure.
func Outcome(err error) string {
	if err != nil {
		return OutcomeFailure
	}
	return OutcomeSuccess
}
