// Package cache keeps successful extraction outcomes keyed by URL.
package cache

import (
	"context"
	"time"

	"recipe-extraction-api/internal/extractor"
)

// Cache stores successful outcomes. Implementations are safe for concurrent use.
type Cache interface {
	Get(ctx context.Context, url string) (*extractor.Outcome, bool)
	Set(ctx context.Context, url string, outcome *extractor.Outcome, ttl time.Duration)
}

// Noop is used when caching is disabled.
type Noop struct{}

func (Noop) Get(context.Context, string) (*extractor.Outcome, bool) { return nil, false }

func (Noop) Set(context.Context, string, *extractor.Outcome, time.Duration) {}

// cacheable reports whether an outcome may be stored. Failures never are.
func cacheable(o *extractor.Outcome) bool {
	return o.Succeeded()
}

// Key normalizes a URL into a cache key.
func Key(url string) string {
	return "recipe:outcome:" + url
}
