package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManagerCounters(t *testing.T) {
	m := NewTestManager()

	m.CounterReconcileDrops.WithLabelValues(DropSourceRecommendation).Add(3)
	m.CounterWorkouts.WithLabelValues(OutcomeCompleted).Inc()
	m.GaugeCatalogSize.Set(873)

	assert.Equal(t, 3.0, testutil.ToFloat64(m.CounterReconcileDrops.WithLabelValues(DropSourceRecommendation)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CounterWorkouts.WithLabelValues(OutcomeCompleted)))
	assert.Equal(t, 873.0, testutil.ToFloat64(m.GaugeCatalogSize))
}

func TestOutcome(t *testing.T) {
	assert.Equal(t, OutcomeSuccess, Outcome(nil))
	assert.Equal(t, OutcomeFailure, Outcome(errors.New("boom")))
}

func TestHandlerExposesRegistry(t *testing.T) {
	m := NewTestManager()
	m.GaugeCatalogSize.Set(12)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), "odos_test_catalog_size 12"), "body: %s", body)
}
