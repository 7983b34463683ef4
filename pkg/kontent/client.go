// Package kontent is a client for the headless platform's Management API.
//
// The client is organized the way the API is: one file per resource
// (items, variants, assets, environment listings) sharing a single
// retrying HTTP core. All calls take a context and return wrapped errors;
// 404s surface as *APIError and can be tested with IsNotFound.
package kontent

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"context"

	"github.com/cenkalti/backoff/v4"
	"github.com/kontent-tools/kontent-migrate/pkg/logger"
)

var clientLog = logger.New("kontent:client")

// DefaultBaseURL is the production Management API endpoint.
const DefaultBaseURL = "https://manage.kontent.ai/v2"

const (
	defaultMaxAttempts    = 3
	defaultInitialBackoff = time.Second
)

// Client issues Management API requests for one environment.
// It is safe for concurrent use.
type Client struct {
	baseURL        string
	environmentID  string
	apiKey         string
	httpClient     *http.Client
	maxAttempts    int
	initialBackoff time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at a non-production API endpoint.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if baseURL != "" {
			c.baseURL = baseURL
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithRetry overrides the retry policy. maxAttempts counts the first
// try; initial is the first backoff interval.
func WithRetry(maxAttempts int, initial time.Duration) Option {
	return func(c *Client) {
		c.maxAttempts = maxAttempts
		c.initialBackoff = initial
	}
}

// NewClient creates a Management API client for the given environment.
func NewClient(environmentID, apiKey string, opts ...Option) *Client {
	c := &Client{
		baseURL:        DefaultBaseURL,
		environmentID:  environmentID,
		apiKey:         apiKey,
		httpClient:     &http.Client{Timeout: 2 * time.Minute},
		maxAttempts:    defaultMaxAttempts,
		initialBackoff: defaultInitialBackoff,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// EnvironmentID returns the environment this client addresses.
func (c *Client) EnvironmentID() string { return c.environmentID }

// endpoint builds an absolute URL under the environment's API root.
func (c *Client) endpoint(path string) string {
	return fmt.Sprintf("%s/projects/%s%s", c.baseURL, c.environmentID, path)
}

// do issues one API call with the configured retry policy. body is
// JSON-marshalled when non-nil; the response is decoded into out when
// out is non-nil. Extra headers (continuation tokens) go in headers.
func (c *Client) do(ctx context.Context, method, path string, headers map[string]string, body, out any) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
	}

	operation := func() error {
		var reader io.Reader
		if payload != nil {
			reader = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path), reader)
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		for k, v := range headers {
			req.Header.Set(k, v)
		}

		err = c.send(req, out)
		if err != nil && !isRetryable(err) {
			return backoff.Permanent(err)
		}
		return err
	}

	return c.retry(ctx, method, path, operation)
}

// send executes a prepared request and decodes the response or error body.
func (c *Client) send(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		data, readErr := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		if readErr == nil {
			// The error body is best effort; a non-JSON body still
			// yields a usable status-only APIError.
			_ = json.Unmarshal(data, apiErr)
			if apiErr.Message == "" {
				apiErr.Message = http.StatusText(resp.StatusCode)
			}
		}
		return apiErr
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

// retry runs operation under the exponential backoff policy: up to
// maxAttempts tries, base interval initialBackoff, jitter enabled
// (the backoff library randomizes intervals by default).
func (c *Client) retry(ctx context.Context, method, path string, operation func() error) error {
	attempt := 0
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.initialBackoff

	wrapped := func() error {
		attempt++
		err := operation()
		if err != nil {
			clientLog.Printf("%s %s attempt %d/%d failed: %v", method, path, attempt, c.maxAttempts, err)
		}
		return err
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(bo, uint64(c.maxAttempts-1)), ctx)
	if err := backoff.Retry(wrapped, policy); err != nil {
		return err
	}
	return nil
}

// UploadBinaryFile uploads raw binary data and returns the file
// reference to pass to AddAsset or UpsertAsset.
func (c *Client) UploadBinaryFile(ctx context.Context, file BinaryFile) (FileReference, error) {
	var ref FileReference

	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint("/files/"+file.Filename), bytes.NewReader(file.Data))
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
		req.Header.Set("Content-Type", file.ContentType)
		req.Header.Set("Content-Length", strconv.Itoa(len(file.Data)))

		err = c.send(req, &ref)
		if err != nil && !isRetryable(err) {
			return backoff.Permanent(err)
		}
		return err
	}

	if err := c.retry(ctx, http.MethodPost, "/files/"+file.Filename, operation); err != nil {
		return FileReference{}, fmt.Errorf("failed to upload binary file %q: %w", file.Filename, err)
	}
	return ref, nil
}

// DownloadFile fetches a binary from an absolute URL (asset CDN links
// carry their own auth in the URL). Retries transport and 5xx failures.
func (c *Client) DownloadFile(ctx context.Context, url string) ([]byte, error) {
	var data []byte

	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("request failed: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 400 {
			apiErr := &APIError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
			if !isRetryable(apiErr) {
				return backoff.Permanent(apiErr)
			}
			return apiErr
		}

		data, err = io.ReadAll(resp.Body)
		return err
	}

	if err := c.retry(ctx, http.MethodGet, url, operation); err != nil {
		return nil, fmt.Errorf("failed to download %s: %w", url, err)
	}
	return data, nil
}
