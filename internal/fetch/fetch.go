// Package fetch retrieves the official page and the report PDF. The origin
// blocks non-browser clients, so requests carry a browser profile and PDF
// requests additionally spoof a same-origin navigation; a 403 is recovered
// by re-visiting the official page to warm up session cookies.
package fetch

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"time"
)

const (
	// UserAgent presented on every request.
	UserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 Chrome/122.0.0.0 Safari/537.36"

	// DefaultRetries is the number of additional attempts after the first.
	DefaultRetries = 3

	// DefaultDelay is the base backoff; attempt n sleeps n × DefaultDelay.
	DefaultDelay = 800 * time.Millisecond
)

// Client is an HTTP client with two request profiles: a generic one for page
// fetches and a document one for the PDF itself.
type Client struct {
	HTTPClient *http.Client
	// PageURL is visited with the generic profile to warm up session
	// cookies when a document request is rejected with 403.
	PageURL string
	Retries int
	Delay   time.Duration
}

// NewClient builds a client with a shared cookie jar. The jar matters: the
// 403 recovery only works when the warmup visit and the retried document
// request share a session.
func NewClient(pageURL string) *Client {
	jar, _ := cookiejar.New(nil)
	return &Client{
		HTTPClient: &http.Client{Timeout: 20 * time.Second, Jar: jar},
		PageURL:    pageURL,
		Retries:    DefaultRetries,
		Delay:      DefaultDelay,
	}
}

func (c *Client) baseHeaders(req *http.Request) {
	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set("Accept", "text/html,application/pdf")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
}

func (c *Client) documentHeaders(req *http.Request) {
	c.baseHeaders(req)
	req.Header.Set("Accept", "application/pdf")
	req.Header.Set("Referer", c.PageURL)
	if origin := pageOrigin(c.PageURL); origin != "" {
		req.Header.Set("Origin", origin)
	}
	req.Header.Set("Sec-Fetch-Dest", "document")
	req.Header.Set("Sec-Fetch-Mode", "navigate")
	req.Header.Set("Sec-Fetch-Site", "same-origin")
	req.Header.Set("Upgrade-Insecure-Requests", "1")
}

func pageOrigin(pageURL string) string {
	parsed, err := url.Parse(pageURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return ""
	}
	return parsed.Scheme + "://" + parsed.Host
}

// Get fetches a resource with the generic profile, retrying any failure with
// linearly increasing backoff.
func (c *Client) Get(ctx context.Context, rawURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.Retries; attempt++ {
		body, err := c.tryOnce(ctx, rawURL, c.baseHeaders)
		if err == nil {
			return body, nil
		}
		lastErr = err
		if attempt < c.Retries {
			if err := c.backoff(ctx, attempt+1); err != nil {
				return nil, err
			}
		}
	}
	return nil, lastErr
}

// GetDocument fetches the report PDF with the document profile. A 403 means
// the origin rejected the session, not a transient fault: the client warms
// up cookies by visiting the official page, then spends the next attempt.
func (c *Client) GetDocument(ctx context.Context, rawURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.Retries; attempt++ {
		body, status, err := c.tryOnceStatus(ctx, rawURL, c.documentHeaders)
		if err == nil && status == http.StatusForbidden {
			log.Printf("[fetch] PDF request 403, warming up session and retrying")
			if _, warmErr := c.tryOnce(ctx, c.PageURL, c.baseHeaders); warmErr != nil {
				log.Printf("[fetch] session warmup failed: %v", warmErr)
			}
			lastErr = fmt.Errorf("GET %s: status 403", rawURL)
			if err := c.backoff(ctx, attempt+1); err != nil {
				return nil, err
			}
			continue
		}
		if err == nil && status >= 200 && status < 300 {
			return body, nil
		}
		if err == nil {
			err = fmt.Errorf("GET %s: status %d", rawURL, status)
		}
		lastErr = err
		if attempt < c.Retries {
			if err := c.backoff(ctx, attempt+1); err != nil {
				return nil, err
			}
		}
	}
	return nil, lastErr
}

func (c *Client) backoff(ctx context.Context, attempt int) error {
	delay := c.Delay
	if delay <= 0 {
		delay = DefaultDelay
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(delay * time.Duration(attempt)):
		return nil
	}
}

func (c *Client) tryOnce(ctx context.Context, rawURL string, profile func(*http.Request)) ([]byte, error) {
	body, status, err := c.tryOnceStatus(ctx, rawURL, profile)
	if err != nil {
		return nil, err
	}
	if status < 200 || status >= 300 {
		return nil, fmt.Errorf("GET %s: status %d", rawURL, status)
	}
	return body, nil
}

func (c *Client) tryOnceStatus(ctx context.Context, rawURL string, profile func(*http.Request)) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("new request: %w", err)
	}
	profile(req)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("GET %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("read %s: %w", rawURL, err)
	}
	return body, resp.StatusCode, nil
}
