package polygon

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// Polygon.io serves reference data (tickers, splits, dividends) over a REST API
// and bulk price files over an S3-compatible endpoint.
// https://polygon.io/docs
const (
	defaultBaseURL   = "https://api.polygon.io"
	defaultTimeout   = 30 * time.Second
	defaultRateLimit = 5 // requests per second
)

// Client is an HTTP client for the Polygon.io REST API
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithRateLimit sets the number of requests allowed per second. Zero or less disables limiting.
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		if requestsPerSecond <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 0)
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
	}
}

// WithTimeout sets the HTTP timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// NewClient creates a new Polygon client
func NewClient(apiKey string, opts ...ClientOption) *Client {
	return NewClientWithBaseURL(apiKey, defaultBaseURL, opts...)
}

// NewClientWithBaseURL creates a new Polygon client with a custom base URL (for testing)
func NewClientWithBaseURL(apiKey, baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(defaultRateLimit), defaultRateLimit),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// APIError is returned when Polygon answers with a non-200 status
type APIError struct {
	StatusCode int
	Endpoint   string
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("polygon api error %d on %s: %s", e.StatusCode, e.Endpoint, e.Body)
}

// IsRetryable returns true for throttling and server-side failures.
func (e *APIError) IsRetryable() bool {
	return e.StatusCode >= 500 || e.StatusCode == http.StatusTooManyRequests
}

// IsAPIError reports whether err carries a Polygon status code, returning it if so.
func IsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// GetString issues an authenticated GET and returns the response body.
// uri may be relative to the base URL ("v3/reference/splits?ticker=A") or an
// absolute continuation URL taken from a page's next_url. The API key is
// attached to every request, so callers never put it in the uri.
func (c *Client) GetString(ctx context.Context, uri string) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit wait: %w", err)
	}

	reqURL, err := c.authorize(uri)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	log.WithFields(log.Fields{
		"uri":     uri,
		"status":  resp.StatusCode,
		"elapsed": time.Since(start),
	}).Debug("polygon request")

	if resp.StatusCode != http.StatusOK {
		return "", &APIError{StatusCode: resp.StatusCode, Endpoint: uri, Body: truncate(string(body), 256)}
	}
	return string(body), nil
}

// authorize resolves uri against the base URL and sets the apiKey parameter.
func (c *Client) authorize(uri string) (string, error) {
	full := uri
	if !strings.HasPrefix(uri, "http://") && !strings.HasPrefix(uri, "https://") {
		full = c.baseURL + "/" + strings.TrimLeft(uri, "/")
	}

	u, err := url.Parse(full)
	if err != nil {
		return "", fmt.Errorf("failed to parse uri %q: %w", uri, err)
	}
	q := u.Query()
	q.Set("apiKey", c.apiKey)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
