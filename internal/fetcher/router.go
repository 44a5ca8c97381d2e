package fetcher

import (
	"context"
	"log/slog"

	"recipe-extraction-api/internal/classifier"
)

// Router picks a fetcher per source type. Social sources go through the
// renderer when one is configured; everything else, and any failed render,
// goes through plain HTTP.
type Router struct {
	HTTP     Fetcher
	Renderer Fetcher
}

// NewRouter creates a Router. renderer may be nil.
func NewRouter(http, renderer Fetcher) *Router {
	return &Router{HTTP: http, Renderer: renderer}
}

// For returns the fetcher to use for source.
func (r *Router) For(source classifier.SourceType) Fetcher {
	if r.Renderer == nil || !source.IsSocial() {
		return r.HTTP
	}
	return Func(func(ctx context.Context, url string) (*Page, error) {
		page, err := r.Renderer.Fetch(ctx, url)
		if err == nil {
			return page, nil
		}
		if ctx.Err() != nil {
			return nil, err
		}
		slog.Info("Render failed, falling back to HTTP fetch", "url", url, "source", source, "error", err)
		return r.HTTP.Fetch(ctx, url)
	})
}
