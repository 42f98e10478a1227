package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/claude/odos/internal/models"
)

const (
	DefaultURL          = "https://raw.githubusercontent.com/yuhonas/free-exercise-db/main/dist/exercises.json"
	DefaultImageBaseURL = "https://raw.githubusercontent.com/yuhonas/free-exercise-db/main/dist"
)

// Source produces the full catalog.
type Source interface {
	Fetch(ctx context.Context) ([]models.ExerciseDefinition, error)
}

// Fetcher downloads the catalog as a single JSON array over HTTP.
type Fetcher struct {
	url          string
	imageBaseURL string
	attempts     int
	httpClient   *http.Client
}

// NewFetcher creates a fetcher for url. Relative image paths are resolved
// against imageBaseURL. attempts below 1 is treated as 1.
func NewFetcher(url, imageBaseURL string, timeout time.Duration, attempts int) *Fetcher {
	if attempts < 1 {
		attempts = 1
	}
	return &Fetcher{
		url:          url,
		imageBaseURL: strings.TrimRight(imageBaseURL, "/"),
		attempts:     attempts,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Fetch retrieves and decodes the catalog. Failed attempts are retried with
// exponential backoff.
func (f *Fetcher) Fetch(ctx context.Context) ([]models.ExerciseDefinition, error) {
	var lastErr error
	for attempt := range f.attempts {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(1<<uint(attempt-1)) * time.Second):
			}
		}

		defs, err := f.fetchOnce(ctx)
		if err == nil {
			for i := range defs {
				defs[i].Images = f.ImageURLs(defs[i].Images)
			}
			return defs, nil
		}
		if ctx.Err() != nil {
			return nil, err
		}
		lastErr = err
	}
	return nil, fmt.Errorf("after %d attempts: %w", f.attempts, lastErr)
}

func (f *Fetcher) fetchOnce(ctx context.Context) ([]models.ExerciseDefinition, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return nil, fmt.Errorf("building catalog request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching catalog: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("catalog request failed (status %d): %s", resp.StatusCode, body)
	}

	var defs []models.ExerciseDefinition
	if err := json.NewDecoder(resp.Body).Decode(&defs); err != nil {
		return nil, fmt.Errorf("decoding catalog: %w", err)
	}
	return defs, nil
}

// ImageURLs resolves image paths as "{base}/{path}". Absolute URLs pass
// through unchanged.
func (f *Fetcher) ImageURLs(paths []string) []string {
	if len(paths) == 0 {
		return paths
	}
	out := make([]string, len(paths))
	for i, p := range paths {
		if strings.HasPrefix(p, "http://") || strings.HasPrefix(p, "https://") || f.imageBaseURL == "" {
			out[i] = p
			continue
		}
		out[i] = f.imageBaseURL + "/" + strings.TrimLeft(p, "/")
	}
	return out
}
