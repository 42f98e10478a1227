package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/claude/odos/internal/catalog"
	"github.com/claude/odos/internal/models"
	"github.com/claude/odos/internal/plan"
)

var errNotFound = errors.New("not found")

// HTTPClient implements DataSource by calling the odos REST API.
// Used for remote MCP mode where the binary runs locally (stdio) but
// the session and history live in a running server.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewHTTPClient creates an HTTPClient targeting the given base URL.
func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *HTTPClient) get(ctx context.Context, path string, params url.Values, out any) error {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("httpclient: create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("httpclient: %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("httpclient: read body: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("httpclient: %s: %w", path, errNotFound)
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("httpclient: %s returned %d: %s", path, resp.StatusCode, body)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("httpclient: decode %s: %w", path, err)
	}
	return nil
}

func (c *HTTPClient) SearchExercises(ctx context.Context, sel catalog.Selection) ([]models.ExerciseDefinition, error) {
	params := url.Values{}
	if sel.Muscle != "" {
		params.Set("muscle", string(sel.Muscle))
	}
	if sel.Equipment != "" {
		params.Set("equipment", string(sel.Equipment))
	}
	if sel.Query != "" {
		params.Set("q", sel.Query)
	}

	var defs []models.ExerciseDefinition
	if err := c.get(ctx, "/api/v1/exercises", params, &defs); err != nil {
		return nil, err
	}
	return defs, nil
}

func (c *HTTPClient) GetExercise(ctx context.Context, id string) (models.ExerciseDefinition, error) {
	var def models.ExerciseDefinition
	err := c.get(ctx, "/api/v1/exercises/"+url.PathEscape(id), nil, &def)
	return def, err
}

func (c *HTTPClient) ListPlans(ctx context.Context) ([]plan.Summary, error) {
	var plans []plan.Summary
	if err := c.get(ctx, "/api/v1/plans", nil, &plans); err != nil {
		return nil, err
	}
	return plans, nil
}

func (c *HTTPClient) ResolvePlan(ctx context.Context, name string) (plan.Resolution, error) {
	var res plan.Resolution
	err := c.get(ctx, "/api/v1/plans/"+url.PathEscape(name), nil, &res)
	return res, err
}

func (c *HTTPClient) ListWorkouts(ctx context.Context, limit int) ([]models.WorkoutRecord, error) {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))

	var records []models.WorkoutRecord
	if err := c.get(ctx, "/api/v1/workouts", params, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func (c *HTTPClient) QueryWorkouts(ctx context.Context, start, end time.Time) ([]models.WorkoutRecord, error) {
	params := url.Values{}
	params.Set("start", start.Format(time.RFC3339))
	params.Set("end", end.Format(time.RFC3339))

	var records []models.WorkoutRecord
	if err := c.get(ctx, "/api/v1/workouts", params, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func (c *HTTPClient) GetWorkout(ctx context.Context, id uuid.UUID) (*models.WorkoutRecord, error) {
	var rec models.WorkoutRecord
	if err := c.get(ctx, "/api/v1/workouts/"+id.String(), nil, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// LastPerformance returns nil without error when the server has no history
// for the exercise.
func (c *HTTPClient) LastPerformance(ctx context.Context, name string) (*models.WorkoutExercise, error) {
	params := url.Values{}
	params.Set("exercise", name)

	var ex models.WorkoutExercise
	err := c.get(ctx, "/api/v1/workouts/last", params, &ex)
	if errors.Is(err, errNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &ex, nil
}
