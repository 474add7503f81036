package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"
)

// Client talks to the storefront REST backend. Every call carries a
// bounded timeout and runs through a circuit breaker so a dead backend
// fails fast instead of hanging each checkout step.
type Client struct {
	baseURL    string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[[]byte]
}

// NewClient creates a backend client for the given base URL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		breaker: gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
			Name:        "storefront-backend",
			MaxRequests: 3,
			Timeout:     30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
		}),
	}
}

// serverError is the structured error body the backend returns on
// failures. Either field may be set.
type serverError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Post issues a JSON POST to the given path and decodes the response body
// into out when out is non-nil. Non-2xx responses are mapped to an error
// carrying the structured server message when one is present, falling
// back to the raw body.
func (c *Client) Post(ctx context.Context, path string, body any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal %s request: %w", path, err)
	}

	data, err := c.breaker.Execute(func() ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
		if err != nil {
			return nil, fmt.Errorf("failed to create %s request: %w", path, err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("failed to call %s: %w", path, err)
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s response: %w", path, err)
		}

		if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
			return nil, fmt.Errorf("%s returned status %d: %s", path, resp.StatusCode, extractServerMessage(data))
		}
		return data, nil
	})
	if err != nil {
		return err
	}

	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("failed to decode %s response: %w", path, err)
		}
	}
	return nil
}

// extractServerMessage prefers the backend's structured error message over
// the raw response body.
func extractServerMessage(body []byte) string {
	var se serverError
	if err := json.Unmarshal(body, &se); err == nil {
		if se.Error != "" {
			return se.Error
		}
		if se.Message != "" {
			return se.Message
		}
	}
	return strings.TrimSpace(string(body))
}
