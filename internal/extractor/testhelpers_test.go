package extractor

import (
	"context"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"

	"recipe-extraction-api/internal/classifier"
	"recipe-extraction-api/internal/fetcher"
)

// staticFetchers serves the same HTML for every URL and counts fetches.
type staticFetchers struct {
	body  string
	calls int
}

func (s *staticFetchers) For(classifier.SourceType) fetcher.Fetcher {
	return fetcher.Func(func(ctx context.Context, url string) (*fetcher.Page, error) {
		s.calls++
		return &fetcher.Page{URL: url, StatusCode: 200, ContentType: "text/html", Body: []byte(s.body)}, nil
	})
}

type funcFetchers func(ctx context.Context, url string) (*fetcher.Page, error)

func (f funcFetchers) For(classifier.SourceType) fetcher.Fetcher { return fetcher.Func(f) }

func parseDoc(t *testing.T, html string) (*goquery.Document, *fetcher.Page) {
	t.Helper()
	page := &fetcher.Page{URL: "https://example.com/recipe", Body: []byte(html)}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc, page
}
