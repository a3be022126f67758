package probe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// HTTPClient wraps http.Client with timeout
type HTTPClient struct {
	client *http.Client
}

// newHTTPClient creates a new HTTP client with timeout
func newHTTPClient(timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		client: &http.Client{Timeout: timeout},
	}
}

// Get performs a GET request
func (c *HTTPClient) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	return c.client.Do(req)
}

// Post performs a POST request with JSON body
func (c *HTTPClient) Post(ctx context.Context, url string, body interface{}) (*http.Response, error) {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.client.Do(req)
}

// readResponseBody reads and closes the response body
func readResponseBody(resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}

// score fires one request and decodes the response, returning the raw body
// alongside for bit-level comparison.
func (c *HTTPClient) score(ctx context.Context, baseURL string, probeCase Case) (ScoreResponse, []byte, error) {
	resp, err := c.Post(ctx, baseURL+"/v1/score", probeCase)
	if err != nil {
		return ScoreResponse{}, nil, fmt.Errorf("score request failed: %w", err)
	}
	body, err := readResponseBody(resp)
	if err != nil {
		return ScoreResponse{}, nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return ScoreResponse{}, nil, fmt.Errorf("score request returned status %d: %s", resp.StatusCode, string(body))
	}
	var decoded ScoreResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return ScoreResponse{}, nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return decoded, body, nil
}
