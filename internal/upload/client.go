package upload

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/meltforce/fitrec/internal/ingest"
)

const maxAttempts = 3

// Client sends saved-workout exports to the FitRec ingest endpoint.
type Client struct {
	serverURL  string
	apiKey     string
	login      string
	userAgent  string
	httpClient *http.Client
	backoff    time.Duration
}

// NewClient creates a client for the FitRec server. login, when set, names
// the user the imported workouts belong to.
func NewClient(serverURL, apiKey, login, version string) *Client {
	return &Client{
		serverURL: strings.TrimRight(serverURL, "/"),
		apiKey:    apiKey,
		login:     login,
		userAgent: "fitrec-upload/" + version,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		backoff: time.Second,
	}
}

// SendWorkouts POSTs one export body to /api/v1/ingest/. Network errors and
// 5xx or 429 responses are retried up to 3 times with exponential backoff;
// other 4xx responses fail immediately.
func (c *Client) SendWorkouts(ctx context.Context, data []byte) (*ingest.Result, error) {
	endpoint := c.serverURL + "/api/v1/ingest/"
	if c.login != "" {
		endpoint += "?login=" + url.QueryEscape(c.login)
	}

	var lastErr error
	for attempt := range maxAttempts {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.backoff << (attempt - 1)):
			}
		}

		result, retry, err := c.post(ctx, endpoint, data)
		if err == nil {
			return result, nil
		}
		if !retry {
			return nil, err
		}
		lastErr = err
	}

	return nil, fmt.Errorf("after %d attempts: %w", maxAttempts, lastErr)
}

func (c *Client) post(ctx context.Context, endpoint string, data []byte) (*ingest.Result, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return nil, false, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, ctx.Err() == nil, err
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		retry := resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests
		return nil, retry, fmt.Errorf("ingest failed (status %d): %s", resp.StatusCode, bytes.TrimSpace(body))
	}

	var result ingest.Result
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, false, fmt.Errorf("decoding ingest result: %w", err)
	}
	return &result, false, nil
}
