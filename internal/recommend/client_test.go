package recommend

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/claude/odos/internal/metrics"
	"github.com/claude/odos/internal/models"
)

var upperBody = models.WorkoutRequest{
	Type:            "Upper Body",
	Equipment:       []string{"Barbell", "Dumbbell"},
	ExperienceLevel: "Intermediate",
	DurationMinutes: 60,
}

func completion(content string) string {
	b, _ := json.Marshal(map[string]any{
		"id": "chatcmpl-1",
		"choices": []map[string]any{
			{"index": 0, "message": map[string]string{"role": "assistant", "content": content}},
		},
	})
	return string(b)
}

func serve(t *testing.T, status int, body string, calls *atomic.Int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls != nil {
			calls.Add(1)
		}
		w.WriteHeader(status)
		fmt.Fprint(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_Recommend_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "gpt-4", req.Model)
		assert.Equal(t, 0.7, req.Temperature)
		assert.Equal(t, 1000, req.MaxTokens)
		require.Len(t, req.Messages, 2)
		assert.Equal(t, "system", req.Messages[0].Role)
		assert.Equal(t, systemPrompt, req.Messages[0].Content)
		assert.Contains(t, req.Messages[1].Content, "Upper Body workout plan")
		assert.Contains(t, req.Messages[1].Content, "Duration: 60 minutes")
		assert.Contains(t, req.Messages[1].Content, "Equipment available: Barbell, Dumbbell")
		assert.Contains(t, req.Messages[1].Content, "Experience level: Intermediate")

		fmt.Fprint(w, completion(`[
			{"name": "Bench Press", "sets": 4, "repsRange": "6-8", "muscleGroup": "Chest", "notes": "Pause at the bottom"},
			{"name": "Pull-ups", "sets": 3, "repsRange": "8-10", "muscleGroup": "Back", "notes": null}
		]`))
	}))
	defer srv.Close()

	m := metrics.NewTestManager()
	c := NewClient(Config{Endpoint: srv.URL + "/v1/", APIKey: "sk-test", Temperature: DefaultTemperature}, NewMetricsObserver(discardLogger(), m))

	recs, err := c.Recommend(context.Background(), upperBody)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, models.ExerciseRecommendation{
		Name: "Bench Press", Sets: 4, RepsRange: "6-8", MuscleGroup: "Chest", Notes: "Pause at the bottom",
	}, recs[0])
	assert.Empty(t, recs[1].Notes)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CounterRecommendations.WithLabelValues(metrics.OutcomeSuccess)))
}

func TestClient_Recommend_FencedContent(t *testing.T) {
	content := "Here is your plan:\n```json\n[{\"name\": \"Squats [back]\", \"sets\": 5, \"repsRange\": \"5\", \"muscleGroup\": \"Legs\"}]\n```\nEnjoy!"
	srv := serve(t, http.StatusOK, completion(content), nil)

	recs, err := NewClient(Config{Endpoint: srv.URL}, nil).Recommend(context.Background(), upperBody)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "Squats [back]", recs[0].Name)
}

func TestClient_Recommend_Failures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"non-200", http.StatusUnauthorized, `{"error": {"message": "bad key"}}`},
		{"not json", http.StatusOK, `<html>oops</html>`},
		{"no choices", http.StatusOK, `{"choices": []}`},
		{"content without array", http.StatusOK, completion("I cannot help with that.")},
		{"schema mismatch", http.StatusOK, completion(`[{"name": "Rows", "sets": "three"}]`)},
		{"unbalanced array", http.StatusOK, completion(`[{"name": "Rows", "sets": 3}`)},
		{"missing name", http.StatusOK, completion(`[{"sets": 3, "repsRange": "8-12"}]`)},
		{"negative sets", http.StatusOK, completion(`[{"name": "Rows", "sets": -1}]`)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := serve(t, tt.status, tt.body, nil)
			m := metrics.NewTestManager()
			c := NewClient(Config{Endpoint: srv.URL}, NewMetricsObserver(discardLogger(), m))

			recs, err := c.Recommend(context.Background(), upperBody)
			require.ErrorIs(t, err, ErrRecommendationFailed)
			assert.Nil(t, recs)
			assert.Equal(t, 1.0, testutil.ToFloat64(m.CounterRecommendations.WithLabelValues(metrics.OutcomeFailure)))
		})
	}
}

func TestClient_Recommend_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewClient(Config{Endpoint: url}, nil).Recommend(context.Background(), upperBody)
	assert.ErrorIs(t, err, ErrRecommendationFailed)
}

func TestClient_Recommend_RetriesTransientOnly(t *testing.T) {
	var calls atomic.Int32
	srv := serve(t, http.StatusServiceUnavailable, "busy", &calls)
	_, err := NewClient(Config{Endpoint: srv.URL, MaxRetries: 2}, nil).Recommend(context.Background(), upperBody)
	require.ErrorIs(t, err, ErrRecommendationFailed)
	assert.Equal(t, int32(3), calls.Load())

	var badCalls atomic.Int32
	bad := serve(t, http.StatusOK, completion("no array here"), &badCalls)
	_, err = NewClient(Config{Endpoint: bad.URL, MaxRetries: 2}, nil).Recommend(context.Background(), upperBody)
	require.ErrorIs(t, err, ErrRecommendationFailed)
	assert.Equal(t, int32(1), badCalls.Load(), "a malformed reply is not retried")
}

func TestClient_Recommend_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	_, err := NewClient(Config{Endpoint: srv.URL, Timeout: 50 * time.Millisecond, MaxRetries: 3}, nil).
		Recommend(context.Background(), upperBody)
	assert.ErrorIs(t, err, ErrRecommendationFailed)
}

func TestDisabled(t *testing.T) {
	_, err := Disabled{}.Recommend(context.Background(), upperBody)
	assert.ErrorIs(t, err, ErrRecommendationFailed)
}
