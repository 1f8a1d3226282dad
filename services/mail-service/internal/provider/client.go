package provider

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

	"github.com/stoik/tempmail/services/mail-service/internal/retry"
)

// DefaultUserAgent mimics a desktop browser; some providers reject Go's default agent.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"

// StatusError is returned for non-2xx provider responses.
type StatusError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: unexpected status %d: %s", e.Op, e.StatusCode, e.Body)
}

// Transient reports whether the status is worth retrying.
func (e *StatusError) Transient() bool {
	return e.StatusCode >= 500 || e.StatusCode == http.StatusTooManyRequests
}

// httpClient is the JSON plumbing shared by the adapters.
type httpClient struct {
	baseURL   string
	client    *http.Client
	userAgent string
	accept    string
}

func newHTTPClient(baseURL, accept string, opts Options) *httpClient {
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: opts.Timeout}
	}
	ua := opts.UserAgent
	if ua == "" {
		ua = DefaultUserAgent
	}
	return &httpClient{
		baseURL:   strings.TrimRight(baseURL, "/"),
		client:    client,
		userAgent: ua,
		accept:    accept,
	}
}

// do sends the request and decodes a JSON response into out.
// Transport failures and 5xx are returned as-is so callers may retry;
// 4xx and undecodable bodies are marked permanent.
func (c *httpClient) do(ctx context.Context, op, method, path string, query url.Values, bearer string, body, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return retry.Permanent(fmt.Errorf("%s: failed to marshal request: %w", op, err))
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, bodyReader)
	if err != nil {
		return retry.Permanent(fmt.Errorf("%s: failed to create request: %w", op, err))
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", c.accept)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s: request failed: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		statusErr := &StatusError{Op: op, StatusCode: resp.StatusCode, Body: string(respBody)}
		if statusErr.Transient() {
			return statusErr
		}
		return retry.Permanent(statusErr)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return retry.Permanent(fmt.Errorf("%s: failed to decode response: %w", op, err))
	}
	return nil
}

// Options configures an adapter.
type Options struct {
	BaseURL       string
	UserAgent     string
	Timeout       time.Duration
	RetryAttempts int
	RetryDelay    time.Duration
	Generator     *Generator
	Now           func() time.Time
	HTTPClient    *http.Client
}

func (o Options) withDefaults(baseURL string) Options {
	if o.BaseURL == "" {
		o.BaseURL = baseURL
	}
	if o.Timeout <= 0 {
		o.Timeout = 15 * time.Second
	}
	if o.RetryAttempts < 1 {
		o.RetryAttempts = 2
	}
	if o.RetryDelay < 0 {
		o.RetryDelay = 0
	}
	if o.Generator == nil {
		o.Generator = NewGenerator(0)
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}
