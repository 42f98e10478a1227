// Package recommend asks a chat-completion service for workout
// recommendations. It owns no state: each call is one request and one
// success or failure.
package recommend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/claude/odos/internal/models"
)

// Recommender produces exercise recommendations for a workout request.
type Recommender interface {
	Recommend(ctx context.Context, req models.WorkoutRequest) ([]models.ExerciseRecommendation, error)
}

const (
	DefaultEndpoint    = "https://api.openai.com/v1"
	DefaultModel       = "gpt-4"
	DefaultTemperature = 0.7
	DefaultMaxTokens   = 1000
)

// Config holds the chat-completion connection settings.
type Config struct {
	Endpoint    string
	APIKey      string
	Model       string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
	MaxRetries  int
}

// Client calls an OpenAI-compatible chat completions API.
type Client struct {
	cfg      Config
	http     *http.Client
	observer Observer
}

// NewClient creates a Client. An empty endpoint or model and a non-positive
// token limit take the package defaults.
func NewClient(cfg Config, observer Observer) *Client {
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	cfg.Endpoint = strings.TrimRight(cfg.Endpoint, "/")
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = DefaultMaxTokens
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if observer == nil {
		observer = NoopObserver{}
	}
	return &Client{
		cfg: cfg,
		http: &http.Client{
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout: 5 * time.Second,
				}).DialContext,
			},
		},
		observer: observer,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatRequest is the JSON body sent to POST /chat/completions.
type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// errBadReply marks failures a retry cannot fix.
var errBadReply = errors.New("unusable reply")

// Recommend sends req and parses the recommendation array from the first
// choice. Every failure wraps ErrRecommendationFailed.
func (c *Client) Recommend(ctx context.Context, req models.WorkoutRequest) ([]models.ExerciseRecommendation, error) {
	start := time.Now()
	if c.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()
	}

	body := chatRequest{
		Model: c.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: buildPrompt(req)},
		},
		Temperature: c.cfg.Temperature,
		MaxTokens:   c.cfg.MaxTokens,
	}

	var (
		recs    []models.ExerciseRecommendation
		lastErr error
		tries   int
	)
	for i := 0; i <= c.cfg.MaxRetries; i++ {
		tries++
		recs, lastErr = c.attempt(ctx, body)
		if lastErr == nil || errors.Is(lastErr, errBadReply) || ctx.Err() != nil {
			break
		}
	}

	event := CallEvent{Model: c.cfg.Model, Type: req.Type, Latency: time.Since(start), Attempts: tries, Count: len(recs)}
	if lastErr != nil {
		event.Err = lastErr
		c.observer.OnCallComplete(event)
		return nil, fmt.Errorf("%w: %w", ErrRecommendationFailed, lastErr)
	}
	c.observer.OnCallComplete(event)
	return recs, nil
}

func (c *Client) attempt(ctx context.Context, body chatRequest) ([]models.ExerciseRecommendation, error) {
	content, err := c.doRequest(ctx, body)
	if err != nil {
		return nil, err
	}
	recs, err := extractJSONArray(content, validateRecommendations)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errBadReply, err)
	}
	return recs, nil
}

func (c *Client) doRequest(ctx context.Context, body chatRequest) (string, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint+"/chat/completions", bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.cfg.APIKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	httpResp, err := c.http.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("sending request: %w", err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}
	if httpResp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("completion returned status %d: %s", httpResp.StatusCode, truncate(respBody, 256))
	}

	var resp chatResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return "", fmt.Errorf("%w: decoding response: %w", errBadReply, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: response has no choices", errBadReply)
	}
	return resp.Choices[0].Message.Content, nil
}

func validateRecommendations(recs []models.ExerciseRecommendation) error {
	for i, r := range recs {
		if strings.TrimSpace(r.Name) == "" {
			return fmt.Errorf("recommendation %d has no name", i)
		}
		if r.Sets < 0 {
			return fmt.Errorf("recommendation %q has negative sets", r.Name)
		}
	}
	return nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}

// Disabled is a Recommender that always fails, leaving plans on their
// defaults.
type Disabled struct{}

func (Disabled) Recommend(context.Context, models.WorkoutRequest) ([]models.ExerciseRecommendation, error) {
	return nil, fmt.Errorf("%w: recommendations are disabled", ErrRecommendationFailed)
}
