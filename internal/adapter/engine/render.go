package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/chromedp"
)

// Compile-time interface assertion.
var _ Fetcher = (*RenderedFetcher)(nil)

// RenderedFetcher fetches provider pages through a headless browser so
// engines that require JavaScript still yield parseable markup. One
// browser process is shared; each fetch runs in its own tab.
type RenderedFetcher struct {
	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc
	timeout       time.Duration
	logger        *slog.Logger
}

// NewRenderedFetcher launches the headless browser. Callers own Close.
func NewRenderedFetcher(timeout time.Duration, logger *slog.Logger) (*RenderedFetcher, error) {
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}

	// Copy default options to avoid mutating the package-level slice.
	opts := make([]chromedp.ExecAllocatorOption, len(chromedp.DefaultExecAllocatorOptions))
	copy(opts, chromedp.DefaultExecAllocatorOptions[:])
	opts = append(opts,
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.WindowSize(1280, 720),
		chromedp.UserAgent(BrowserUserAgent),
	)

	f := &RenderedFetcher{timeout: timeout, logger: logger}
	var allocCtx context.Context
	allocCtx, f.allocCancel = chromedp.NewExecAllocator(context.Background(), opts...)
	f.browserCtx, f.browserCancel = chromedp.NewContext(allocCtx)

	// Start the browser with an empty run so the first fetch does not pay
	// startup cost. The browser context must not be timeout-wrapped,
	// chromedp binds the session to the context of the first Run.
	startDone := make(chan error, 1)
	go func() { startDone <- chromedp.Run(f.browserCtx) }()
	select {
	case err := <-startDone:
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("start browser: %w", err)
		}
	case <-time.After(30 * time.Second):
		f.Close()
		return nil, fmt.Errorf("start browser: timed out")
	}

	logger.Info("rendered fetcher started", "timeout", timeout)
	return f, nil
}

// FetchDocument renders the page in a fresh tab and parses the resulting
// markup. The tab is closed when the fetch returns.
func (f *RenderedFetcher) FetchDocument(ctx context.Context, rawURL string) (*goquery.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tabCtx, tabCancel := chromedp.NewContext(f.browserCtx)
	defer tabCancel()
	runCtx, cancel := context.WithTimeout(tabCtx, f.timeout)
	defer cancel()

	var html string
	err := chromedp.Run(runCtx,
		chromedp.Navigate(rawURL),
		chromedp.WaitReady("body"),
		chromedp.OuterHTML("html", &html),
	)
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", rawURL, err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", rawURL, err)
	}
	return doc, nil
}

// Close shuts the browser down. Tab contexts die with the browser, then
// the allocator releases the process.
func (f *RenderedFetcher) Close() {
	if f.browserCancel != nil {
		f.browserCancel()
	}
	if f.allocCancel != nil {
		f.allocCancel()
	}
	f.logger.Info("rendered fetcher closed")
}
