package leaderboard

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client talks to a remote leaderboard service
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient creates a client for baseURL, e.g. http://localhost:8080/api
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

// List fetches the ranked list
func (c *Client) List(ctx context.Context) ([]Entry, error) {
	var entries []Entry
	if err := c.do(ctx, http.MethodGet, nil, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// Submit posts a score and returns the updated list
func (c *Client) Submit(ctx context.Context, name string, score int) ([]Entry, error) {
	body := map[string]interface{}{"name": name, "score": score}
	var entries []Entry
	if err := c.do(ctx, http.MethodPost, body, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// Report submits a run and returns its 1-based rank (0 if not listed)
func (c *Client) Report(ctx context.Context, name string, score int) (int, error) {
	name, err := ValidateName(name)
	if err != nil {
		return 0, err
	}
	entries, err := c.Submit(ctx, name, score)
	if err != nil {
		return 0, err
	}
	return Rank(entries, name, score), nil
}

func (c *Client) do(ctx context.Context, method string, body, out interface{}) error {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return err
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+"/leaderboard", bodyReader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("leaderboard request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("leaderboard error %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("decode leaderboard: %w", err)
	}
	return nil
}
