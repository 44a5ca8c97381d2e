package fetcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gocolly/colly/v2"

	"recipe-extraction-api/internal/metrics"
)

// HTTPFetcher downloads pages with colly and a browser-like user agent.
type HTTPFetcher struct {
	UserAgent    string
	Timeout      time.Duration
	MaxBodyBytes int
}

// NewHTTPFetcher creates an HTTPFetcher.
func NewHTTPFetcher(userAgent string, timeout time.Duration, maxBodyBytes int) *HTTPFetcher {
	return &HTTPFetcher{
		UserAgent:    userAgent,
		Timeout:      timeout,
		MaxBodyBytes: maxBodyBytes,
	}
}

// Fetch downloads url. Non-2xx responses and network failures come back as
// *FetchError.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (page *Page, err error) {
	started := time.Now()
	defer func() { metrics.ObserveFetch("http", started, err) }()

	if f.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.Timeout)
		defer cancel()
	}

	c := colly.NewCollector(
		colly.UserAgent(f.UserAgent),
		colly.MaxBodySize(f.MaxBodyBytes),
		colly.StdlibContext(ctx),
		colly.AllowURLRevisit(),
	)
	if f.Timeout > 0 {
		c.SetRequestTimeout(f.Timeout)
	}

	c.OnRequest(func(r *colly.Request) {
		r.Headers.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,application/pdf;q=0.8,*/*;q=0.7")
		r.Headers.Set("Accept-Language", "en-US,en;q=0.9")
	})

	var fetchErr *FetchError
	c.OnResponse(func(r *colly.Response) {
		page = &Page{
			URL:         url,
			FinalURL:    r.Request.URL.String(),
			StatusCode:  r.StatusCode,
			ContentType: r.Headers.Get("Content-Type"),
			Body:        r.Body,
		}
	})
	c.OnError(func(r *colly.Response, err error) {
		status := 0
		if r != nil {
			status = r.StatusCode
		}
		fetchErr = &FetchError{URL: url, StatusCode: status, Err: err}
	})

	visitErr := c.Visit(url)
	switch {
	case fetchErr != nil:
		if ctxErr := ctx.Err(); ctxErr != nil && !errors.Is(fetchErr.Err, ctxErr) {
			fetchErr.Err = fmt.Errorf("%w: %v", ctxErr, fetchErr.Err)
		}
		slog.Warn("Page fetch failed", "url", url, "status", fetchErr.StatusCode, "error", fetchErr.Err)
		return nil, fetchErr
	case visitErr != nil:
		return nil, &FetchError{URL: url, Err: visitErr}
	case page == nil:
		return nil, &FetchError{URL: url, Err: ErrEmptyBody}
	case page.StatusCode < http.StatusOK || page.StatusCode >= http.StatusMultipleChoices:
		return nil, &FetchError{URL: url, StatusCode: page.StatusCode, Err: errors.New(http.StatusText(page.StatusCode))}
	case len(page.Body) == 0:
		return nil, &FetchError{URL: url, StatusCode: page.StatusCode, Err: ErrEmptyBody}
	}

	slog.Debug("Fetched page", "url", url, "status", page.StatusCode, "bytes", len(page.Body), "elapsed", time.Since(started))
	return page, nil
}
