// Package fetch discovers and downloads candidate source images from web
// pages. It feeds directories of raw images to the batch converter; it does
// no image processing itself.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
)

// defaultHeaders imitate a desktop browser; some image hosts refuse
// requests without them.
var defaultHeaders = map[string]string{
	"User-Agent":      "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8",
	"Accept-Language": "en-US,en;q=0.5",
	"Connection":      "keep-alive",
}

// Client fetches pages and downloads images. It wraps an explicitly
// constructed HTTP client with default headers; build one per run and let
// it go out of scope afterward rather than sharing process-wide state.
type Client struct {
	httpClient *http.Client
	headers    map[string]string
	maxImages  int
	maxRetries uint64
	log        zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client, mainly for tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithMaxImages caps how many images DownloadImages will save.
func WithMaxImages(n int) Option {
	return func(c *Client) { c.maxImages = n }
}

// WithMaxRetries bounds the page-fetch retry loop.
func WithMaxRetries(n uint64) Option {
	return func(c *Client) { c.maxRetries = n }
}

// WithUserAgent overrides the default User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.headers["User-Agent"] = ua }
}

// WithLogger attaches a logger.
func WithLogger(log zerolog.Logger) Option {
	return func(c *Client) { c.log = log }
}

// NewClient builds a Client with a 10 second timeout, browser-like headers,
// a 50 image cap and 3 retries.
func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		headers:    make(map[string]string, len(defaultHeaders)),
		maxImages:  50,
		maxRetries: 3,
		log:        zerolog.Nop(),
	}
	for k, v := range defaultHeaders {
		c.headers[k] = v
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	return c.httpClient.Do(req)
}

// FetchPage retrieves a page's markup, retrying transient failures and
// rate limiting (429) with exponential backoff.
func (c *Client) FetchPage(ctx context.Context, pageURL string) (string, error) {
	var body string

	operation := func() error {
		resp, err := c.get(ctx, pageURL)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusOK:
		case resp.StatusCode == http.StatusTooManyRequests ||
			resp.StatusCode >= http.StatusInternalServerError:
			return fmt.Errorf("transient status %s", resp.Status)
		default:
			return backoff.Permanent(fmt.Errorf("unexpected status %s", resp.Status))
		}

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("failed to read page body: %w", err)
		}
		body = string(data)
		return nil
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(newBackOff(), c.maxRetries), ctx)
	notify := func(err error, wait time.Duration) {
		c.log.Warn().Err(err).Dur("retry_in", wait).Str("url", pageURL).Msg("page fetch failed")
	}

	if err := backoff.RetryNotify(operation, policy, notify); err != nil {
		return "", fmt.Errorf("failed to fetch %s: %w", pageURL, err)
	}
	return body, nil
}

func newBackOff() *backoff.ExponentialBackOff {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 500 * time.Millisecond
	bo.MaxInterval = 20 * time.Second
	return bo
}
