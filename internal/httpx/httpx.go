// Package httpx holds the JSON-over-HTTP client shared by the remote POS
// annotator and the semantic parser backends.
package httpx

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sethvargo/go-retry"
)

// StatusError is returned for non-2xx responses.
type StatusError struct {
	URL    string
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("POST %s: status %d: %s", e.URL, e.Status, e.Body)
}

// Client posts JSON documents and decodes JSON replies.
type Client struct {
	HTTP    *http.Client
	Retries uint64
	Backoff time.Duration
}

// NewClient creates a Client with the given per-request timeout and retry count.
func NewClient(timeout time.Duration, retries uint64) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		HTTP:    &http.Client{Timeout: timeout},
		Retries: retries,
		Backoff: 100 * time.Millisecond,
	}
}

// PostJSON sends in as JSON to url and decodes the response into out.
// Transport errors and 5xx responses are retried; 4xx responses are not.
func (c *Client) PostJSON(ctx context.Context, url string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	backoff := retry.WithMaxRetries(c.Retries, retry.NewExponential(c.Backoff))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")

		resp, err := c.HTTP.Do(req)
		if err != nil {
			return retry.RetryableError(err)
		}
		defer func() { _ = resp.Body.Close() }()

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			serr := &StatusError{URL: url, Status: resp.StatusCode, Body: string(bytes.TrimSpace(msg))}
			if resp.StatusCode >= 500 {
				return retry.RetryableError(serr)
			}
			return serr
		}

		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response from %s: %w", url, err)
		}
		return nil
	})
}
