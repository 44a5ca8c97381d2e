// Package client calls the extraction API with the retry policy applied.
package client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"

	"recipe-extraction-api/internal/api"
	"recipe-extraction-api/internal/extractor"
	"recipe-extraction-api/internal/retry"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// AIEnhancementSuggestion is offered once every retry has failed.
const AIEnhancementSuggestion = "Automatic extraction failed. Try the AI enhancement option to rebuild this recipe from the page text."

// ErrExhausted is matched by every *ExhaustedError.
var ErrExhausted = errors.New("extraction retries exhausted")

// APIError is a non-2xx answer from the API.
type APIError struct {
	StatusCode        int
	Message           string
	Suggestion        string
	ExtractionResults []extractor.Attempt
}

func (e *APIError) Error() string {
	return fmt.Sprintf("extraction API returned %d: %s", e.StatusCode, e.Message)
}

// Retryable reports whether another attempt could succeed. Client errors
// other than 422 are final.
func (e *APIError) Retryable() bool {
	return e.StatusCode == http.StatusUnprocessableEntity || e.StatusCode >= 500
}

// ExhaustedError is returned when the retry budget ran out.
type ExhaustedError struct {
	Attempts   int
	Last       error
	Suggestion string
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("extraction failed after %d attempts: %v", e.Attempts, e.Last)
}

func (e *ExhaustedError) Unwrap() []error {
	return []error{ErrExhausted, e.Last}
}

// Client talks to one API server.
type Client struct {
	BaseURL string
	HTTP    *http.Client
	Policy  retry.Policy
}

// New creates a Client with the default retry policy.
func New(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: 3 * time.Minute},
		Policy:  retry.DefaultPolicy(),
	}
}

// Extract asks the server to extract and save the recipe at url.
func (c *Client) Extract(ctx context.Context, url, userID string, debug bool) (*api.ExtractResponsePayload, error) {
	body, err := json.Marshal(api.ExtractRequestPayload{URL: url, UserID: userID, Debug: debug})
	if err != nil {
		return nil, err
	}

	var resp *api.ExtractResponsePayload
	attempts, err := c.Policy.Do(ctx, func(ctx context.Context) error {
		var callErr error
		resp, callErr = c.post(ctx, "/extract", body)
		var apiErr *APIError
		if errors.As(callErr, &apiErr) && !apiErr.Retryable() {
			return retry.Permanent(callErr)
		}
		return callErr
	}, func(n int, err error, delay time.Duration) {
		slog.Warn("Extraction attempt failed, retrying", "url", url, "attempt", n, "delay", delay, "error", err)
	})
	if err == nil {
		return resp, nil
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) && !apiErr.Retryable() {
		return nil, err
	}
	if ctx.Err() != nil {
		return nil, err
	}

	ex := &ExhaustedError{Attempts: attempts, Last: err, Suggestion: AIEnhancementSuggestion}
	if apiErr != nil && apiErr.Suggestion != "" {
		ex.Suggestion = apiErr.Suggestion + " " + AIEnhancementSuggestion
	}
	return nil, ex
}

func (c *Client) post(ctx context.Context, path string, body []byte) (*api.ExtractResponsePayload, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("post %s: %w", path, err)
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(res.Body, 10<<20))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var payload api.ExtractResponsePayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		if res.StatusCode >= 300 {
			return nil, &APIError{StatusCode: res.StatusCode, Message: strings.TrimSpace(string(raw))}
		}
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if res.StatusCode >= 300 {
		return nil, &APIError{
			StatusCode:        res.StatusCode,
			Message:           payload.Message,
			Suggestion:        payload.Suggestion,
			ExtractionResults: payload.Attempts(),
		}
	}
	return &payload, nil
}
