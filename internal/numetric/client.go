package numetric

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// RetryPolicy bounds the retries performed when the server reports itself
// busy. The delay doubles after every attempt up to MaxDelay.
type RetryPolicy struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
}

// DefaultRetryPolicy matches the config defaults.
var DefaultRetryPolicy = RetryPolicy{
	MaxAttempts:  6,
	InitialDelay: 5 * time.Second,
	MaxDelay:     time.Minute,
}

// APIError is a non-success response from the API. The response body has
// already been logged when it is returned.
type APIError struct {
	Method string
	Path   string
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s %s: server returned %d", e.Method, e.Path, e.Status)
}

// Client calls the Numetric dataset API. Every request carries the API key in
// the Authorization header and a JSON body.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	retry   RetryPolicy
	logger  *slog.Logger
}

// NewClient returns a Client for the API at baseURL. A zero-valued retry
// falls back to DefaultRetryPolicy; a nil logger falls back to slog.Default().
func NewClient(baseURL, apiKey string, retry RetryPolicy, logger *slog.Logger) *Client {
	if retry.MaxAttempts < 1 {
		retry = DefaultRetryPolicy
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 2 * time.Minute},
		retry:   retry,
		logger:  logger,
	}
}

// SetHTTPClient replaces the underlying HTTP client, e.g. to change the
// request timeout.
func (c *Client) SetHTTPClient(h *http.Client) {
	c.http = h
}

// CreateDatasetRequest is the body of POST /v2/dataset.
type CreateDatasetRequest struct {
	Name        string     `json:"name"`
	PrimaryKey  string     `json:"primaryKey"`
	Description string     `json:"description"`
	Everyone    bool       `json:"everyone"`
	Categories  []string   `json:"categories,omitempty"`
	Fields      []FieldDef `json:"fields"`
}

// CreateDatasetResponse carries the identifier of a created dataset.
type CreateDatasetResponse struct {
	ID string `json:"id"`
}

// CreateDataset creates a new dataset and returns its identifier.
func (c *Client) CreateDataset(ctx context.Context, req CreateDatasetRequest) (*CreateDatasetResponse, error) {
	var res CreateDatasetResponse
	if err := c.do(ctx, http.MethodPost, "/v2/dataset", req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// UpdateFields replaces the field definitions of an existing dataset.
// It reports whether the server acknowledged the update.
func (c *Client) UpdateFields(ctx context.Context, datasetID string, fields []FieldDef) (bool, error) {
	body := map[string]any{"fields": fields}
	var res struct {
		Success bool `json:"success"`
	}
	path := fmt.Sprintf("/v2/dataset/%s/", datasetID)
	if err := c.do(ctx, http.MethodPatch, path, body, &res); err != nil {
		return false, err
	}
	return res.Success, nil
}

// AppendRows uploads one batch of rows. When incremental is true the server
// indexes the batch immediately instead of waiting for a final Index call.
func (c *Client) AppendRows(ctx context.Context, datasetID string, rows []map[string]any, incremental bool) error {
	body := map[string]any{
		"rows":  rows,
		"index": incremental,
	}
	path := fmt.Sprintf("/v2/dataset/%s/rows", datasetID)
	return c.do(ctx, http.MethodPost, path, body, nil)
}

// ClearRows deletes every row in the dataset.
func (c *Client) ClearRows(ctx context.Context, datasetID string) error {
	body := map[string]any{"datasetId": datasetID}
	path := fmt.Sprintf("/v2/dataset/%s/rows", datasetID)
	return c.do(ctx, http.MethodDelete, path, body, nil)
}

// Index triggers indexing of everything uploaded so far.
func (c *Client) Index(ctx context.Context, datasetID string) error {
	path := fmt.Sprintf("/v2/dataset/%s/index", datasetID)
	return c.do(ctx, http.MethodGet, path, nil, nil)
}

// busyStatus reports whether the response means "server busy, try again".
func busyStatus(code int) bool {
	return code == http.StatusTooManyRequests || code == http.StatusServiceUnavailable
}

// do sends one JSON request, decoding a 200/201 response into out when out is
// non-nil. Busy responses are retried under the client's RetryPolicy; any
// other non-success status logs the response body and returns an *APIError.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
	}

	delay := c.retry.InitialDelay
	for attempt := 1; ; attempt++ {
		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(payload))
		if err != nil {
			return fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("Authorization", c.apiKey)
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.http.Do(req)
		if err != nil {
			return fmt.Errorf("%s %s: %w", method, path, err)
		}
		data, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusCreated:
			if readErr != nil {
				return fmt.Errorf("%s %s: read response: %w", method, path, readErr)
			}
			if out != nil && len(data) > 0 {
				if err := json.Unmarshal(data, out); err != nil {
					return fmt.Errorf("%s %s: decode response: %w", method, path, err)
				}
			}
			return nil

		case busyStatus(resp.StatusCode):
			if attempt >= c.retry.MaxAttempts {
				c.logger.Error("server still busy, giving up",
					"method", method, "path", path,
					"status", resp.StatusCode, "attempts", attempt)
				return &APIError{Method: method, Path: path, Status: resp.StatusCode, Body: string(data)}
			}
			c.logger.Warn("server busy, retrying",
				"method", method, "path", path,
				"status", resp.StatusCode, "attempt", attempt, "delay", delay)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
			delay *= 2
			if delay > c.retry.MaxDelay {
				delay = c.retry.MaxDelay
			}

		default:
			c.logger.Error("request failed",
				"method", method, "path", path,
				"status", resp.StatusCode, "body", string(data))
			return &APIError{Method: method, Path: path, Status: resp.StatusCode, Body: string(data)}
		}
	}
}
