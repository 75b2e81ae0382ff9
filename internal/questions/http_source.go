package questions

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// HTTPSourceConfig configures the remote question generation service
type HTTPSourceConfig struct {
	BaseURL string        // e.g. http://localhost:3400/flows
	APIKey  string        // optional bearer token
	Timeout time.Duration // per request; 0 disables the client timeout
}

// HTTPSource calls a remote generation service exposing
//
//	POST {base}/trivia        {"topic": "..."}
//	POST {base}/cause-effect  {"economicCondition": "..."}
//
// Both respond with {question, choices, correctAnswerIndex, explanation?}.
type HTTPSource struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewHTTPSource creates a source for the configured endpoint
func NewHTTPSource(cfg HTTPSourceConfig) *HTTPSource {
	return &HTTPSource{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// Trivia implements Source
func (s *HTTPSource) Trivia(ctx context.Context, topic string) (Question, error) {
	return s.generate(ctx, "/trivia", map[string]string{"topic": topic})
}

// CauseEffect implements Source
func (s *HTTPSource) CauseEffect(ctx context.Context, condition string) (Question, error) {
	return s.generate(ctx, "/cause-effect", map[string]string{"economicCondition": condition})
}

func (s *HTTPSource) generate(ctx context.Context, endpoint string, body interface{}) (Question, error) {
	respBody, err := s.post(ctx, endpoint, body)
	if err != nil {
		return Question{}, err
	}

	var q Question
	if err := json.Unmarshal(respBody, &q); err != nil {
		return Question{}, fmt.Errorf("decode question: %w", err)
	}
	return q, nil
}

// post makes a JSON request and returns the raw body of a 2xx response
func (s *HTTPSource) post(ctx context.Context, endpoint string, body interface{}) ([]byte, error) {
	if s.baseURL == "" {
		return nil, errors.New("question service URL not configured")
	}

	jsonBody, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+endpoint, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("question service error %d: %s", resp.StatusCode, string(respBody))
	}

	return respBody, nil
}
