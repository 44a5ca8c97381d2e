package fetcher

import (
	"context"
	"log/slog"
	"time"

	"github.com/chromedp/chromedp"

	"recipe-extraction-api/internal/metrics"
)

// ChromedpRenderer loads a page in headless Chrome and returns the rendered DOM.
// Each call starts its own browser process.
type ChromedpRenderer struct {
	UserAgent string
	Timeout   time.Duration
}

// NewChromedpRenderer creates a ChromedpRenderer.
func NewChromedpRenderer(userAgent string, timeout time.Duration) *ChromedpRenderer {
	return &ChromedpRenderer{UserAgent: userAgent, Timeout: timeout}
}

// Fetch renders url and returns the outer HTML of the document.
func (r *ChromedpRenderer) Fetch(ctx context.Context, url string) (page *Page, err error) {
	started := time.Now()
	defer func() { metrics.ObserveFetch("chromedp", started, err) }()

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent(r.UserAgent),
	)

	allocCtx, cancel := chromedp.NewExecAllocator(ctx, opts...)
	defer cancel()

	browserCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	if r.Timeout > 0 {
		browserCtx, cancel = context.WithTimeout(browserCtx, r.Timeout)
		defer cancel()
	}

	var html, location string
	err = chromedp.Run(browserCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Location(&location),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		slog.Warn("Chromedp render failed", "url", url, "error", err)
		return nil, &FetchError{URL: url, Err: err}
	}
	if html == "" {
		return nil, &FetchError{URL: url, Err: ErrEmptyBody}
	}

	return &Page{
		URL:         url,
		FinalURL:    location,
		StatusCode:  200,
		ContentType: "text/html; charset=utf-8",
		Body:        []byte(html),
		Rendered:    true,
	}, nil
}
