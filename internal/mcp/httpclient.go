package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/meltforce/fitrec/internal/catalog"
	"github.com/meltforce/fitrec/internal/models"
	"github.com/meltforce/fitrec/internal/recommend"
	"github.com/meltforce/fitrec/internal/storage"
)

// HTTPClient implements DataSource by calling the FitRec REST API.
// Used for remote MCP mode where the binary runs locally (stdio) but
// data lives on the remote server (accessed over Tailscale). The server
// identifies the caller, so userID arguments are ignored.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

// Compile-time check: HTTPClient satisfies DataSource.
var _ DataSource = (*HTTPClient)(nil)

// NewHTTPClient creates an HTTPClient targeting the given base URL.
func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// getJSON fetches path and decodes the body into dst. A 404 becomes
// storage.ErrNotFound.
func (c *HTTPClient) getJSON(ctx context.Context, path string, params url.Values, dst any) error {
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
		return storage.ErrNotFound
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("httpclient: %s returned %d: %s", path, resp.StatusCode, body)
	}

	if err := json.Unmarshal(body, dst); err != nil {
		return fmt.Errorf("httpclient: decode %s: %w", path, err)
	}
	return nil
}

func (c *HTTPClient) Recommendations(ctx context.Context, _ int) (*recommend.Result, error) {
	var res recommend.Result
	if err := c.getJSON(ctx, "/api/v1/recommendations", nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *HTTPClient) ListSavedWorkouts(ctx context.Context, _ int, limit int) ([]models.SavedWorkout, error) {
	params := url.Values{}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}
	var workouts []models.SavedWorkout
	if err := c.getJSON(ctx, "/api/v1/saved-workouts", params, &workouts); err != nil {
		return nil, err
	}
	return workouts, nil
}

func (c *HTTPClient) GetSavedWorkout(ctx context.Context, id uuid.UUID, _ int) (*models.SavedWorkout, error) {
	var w models.SavedWorkout
	if err := c.getJSON(ctx, "/api/v1/saved-workouts/"+id.String(), nil, &w); err != nil {
		return nil, err
	}
	return &w, nil
}

func (c *HTTPClient) GetHistoryStats(ctx context.Context, _ int) (*storage.HistoryStats, error) {
	var stats storage.HistoryStats
	if err := c.getJSON(ctx, "/api/v1/stats", nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

func (c *HTTPClient) LookupExercise(ctx context.Context, name string) (*catalog.Entry, error) {
	var entry catalog.Entry
	if err := c.getJSON(ctx, "/api/v1/exercises/"+url.PathEscape(name), nil, &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

func (c *HTTPClient) SearchExercises(ctx context.Context, bodyPart, equipment string, limit int) ([]catalog.Entry, error) {
	params := url.Values{}
	if bodyPart != "" {
		params.Set("bodyPart", bodyPart)
	}
	if equipment != "" {
		params.Set("equipment", equipment)
	}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}
	var entries []catalog.Entry
	if err := c.getJSON(ctx, "/api/v1/exercises", params, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (c *HTTPClient) BodyParts(ctx context.Context) ([]string, error) {
	var parts []string
	if err := c.getJSON(ctx, "/api/v1/body-parts", nil, &parts); err != nil {
		return nil, err
	}
	return parts, nil
}
