package engine

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// BrowserUserAgent goes out on every provider request. Scraped engines
// actively block obvious non-browser agents.
const BrowserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

// Response body caps. Pages beyond these sizes carry nothing worth parsing.
const (
	maxJSONBodySize = 512 * 1024
	maxHTMLBodySize = 2 << 20
)

// defaultRequestTimeout bounds a single provider attempt.
const defaultRequestTimeout = 10 * time.Second

// Pool sizing for the shared transport: a handful of provider hosts,
// connections reused across queries.
const (
	defaultMaxIdleConns        = 100
	defaultMaxIdleConnsPerHost = 20
	defaultIdleConnTimeout     = 90 * time.Second
)

// HTTPOptions configures the shared provider client.
type HTTPOptions struct {
	Timeout             time.Duration
	MaxIdleConns        int
	MaxIdleConnsPerHost int
	IdleConnTimeout     time.Duration
}

// NewHTTPClient builds the pooled client shared by every engine adapter.
// Zero option fields fall back to package defaults.
func NewHTTPClient(opts HTTPOptions) *http.Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	maxIdle := opts.MaxIdleConns
	if maxIdle <= 0 {
		maxIdle = defaultMaxIdleConns
	}
	maxIdlePerHost := opts.MaxIdleConnsPerHost
	if maxIdlePerHost <= 0 {
		maxIdlePerHost = defaultMaxIdleConnsPerHost
	}
	idleTimeout := opts.IdleConnTimeout
	if idleTimeout <= 0 {
		idleTimeout = defaultIdleConnTimeout
	}

	return &http.Client{
		Transport: &http.Transport{
			DialContext: (&net.Dialer{
				Timeout:   timeout,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			TLSHandshakeTimeout: 10 * time.Second,
			MaxIdleConns:        maxIdle,
			MaxIdleConnsPerHost: maxIdlePerHost,
			IdleConnTimeout:     idleTimeout,
			ForceAttemptHTTP2:   true,
		},
		Timeout: timeout,
	}
}

// Fetcher retrieves a parsed HTML document for a URL.
type Fetcher interface {
	FetchDocument(ctx context.Context, rawURL string) (*goquery.Document, error)
}

// HTTPFetcher fetches provider pages over plain HTTP with browser headers.
type HTTPFetcher struct {
	client    *http.Client
	userAgent string
	timeout   time.Duration
}

// NewHTTPFetcher wraps the client with per-request timeout and headers.
func NewHTTPFetcher(client *http.Client, userAgent string, timeout time.Duration) *HTTPFetcher {
	if userAgent == "" {
		userAgent = BrowserUserAgent
	}
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	return &HTTPFetcher{client: client, userAgent: userAgent, timeout: timeout}
}

// FetchDocument issues a GET and parses the body into a document.
// The body is capped, drained, and closed on every path.
func (f *HTTPFetcher) FetchDocument(ctx context.Context, rawURL string) (*goquery.Document, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	setBrowserHeaders(req, f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxHTMLBodySize))
		return nil, fmt.Errorf("fetch %s: status %d", rawURL, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, maxHTMLBodySize))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", rawURL, err)
	}
	return doc, nil
}

func setBrowserHeaders(req *http.Request, userAgent string) {
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
}
