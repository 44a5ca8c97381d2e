package extractor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"strings"
	"time"

	"recipe-extraction-api/internal/classifier"
	"recipe-extraction-api/internal/fetcher"
	"recipe-extraction-api/internal/metrics"
)

// FetcherFor picks the fetcher for a source type.
type FetcherFor interface {
	For(source classifier.SourceType) fetcher.Fetcher
}

// Orchestrator runs strategies in priority order until one yields a
// complete draft.
type Orchestrator struct {
	strategies []Strategy
	fetchers   FetcherFor
	timeout    time.Duration
}

// NewOrchestrator creates an Orchestrator over strategies. timeout bounds
// each strategy run, fetch included.
func NewOrchestrator(fetchers FetcherFor, timeout time.Duration, strategies ...Strategy) *Orchestrator {
	return &Orchestrator{
		strategies: strategies,
		fetchers:   fetchers,
		timeout:    timeout,
	}
}

// Strategies returns the strategy names in priority order.
func (o *Orchestrator) Strategies() []string {
	names := make([]string, len(o.strategies))
	for i, s := range o.strategies {
		names[i] = s.Name
	}
	return names
}

// Run extracts a recipe from url. Every strategy that runs leaves an
// attempt in the outcome. When none succeeds the outcome is still returned,
// together with ErrNoRecipeFound.
func (o *Orchestrator) Run(ctx context.Context, url string, debugMode bool) (*Outcome, error) {
	class := classifier.Classify(url)
	out := &Outcome{URL: url, Classification: class}

	target := Target{
		URL:    url,
		Source: class.SourceType,
		Fetch:  fetcher.NewMemo(o.fetchers.For(class.SourceType)),
	}

	for _, s := range o.strategies {
		if s.Applies != nil && !s.Applies(class.SourceType) {
			continue
		}

		attempt, draft := o.attempt(ctx, s, target, debugMode)
		out.Attempts = append(out.Attempts, attempt)

		outcome := "failure"
		if attempt.Success {
			outcome = "success"
		}
		metrics.StrategyAttempts.WithLabelValues(s.Name, outcome).Inc()

		if attempt.Success {
			slog.Info("Recipe extracted", "url", url, "method", s.Name, "confidence", attempt.Confidence)
			out.Draft = draft
			out.Method = s.Name
			out.Confidence = attempt.Confidence
			return out, nil
		}
		slog.Info("Strategy did not match", "url", url, "method", s.Name, "error", attempt.Error.Message)
	}

	return out, ErrNoRecipeFound
}

func (o *Orchestrator) attempt(ctx context.Context, s Strategy, t Target, debugMode bool) (a Attempt, draft *Draft) {
	started := time.Now()
	a.Method = s.Name

	if o.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}

	defer func() {
		a.DurationMs = time.Since(started).Milliseconds()
		if r := recover(); r != nil {
			slog.Error("Strategy panicked", "url", t.URL, "method", s.Name, "panic", r)
			a.Success = false
			a.Confidence = 0
			a.Error = &AttemptError{Name: "PanicError", Message: fmt.Sprint(r)}
			if debugMode {
				a.Error.Stack = string(debug.Stack())
			}
			draft = nil
		}
	}()

	d, err := s.Extract(ctx, t)
	if err == nil && (d == nil || !d.Complete()) {
		err = ErrIncompleteRecipe
	}
	if debugMode && d != nil {
		a.Data = debugData(d)
	}
	if err != nil {
		a.Error = DescribeError(err, debugMode)
		return a, nil
	}

	a.Success = true
	a.Confidence = s.Confidence(d)
	return a, d
}

func debugData(d *Draft) any {
	if d.Raw != nil {
		return map[string]any{"draft": d, "raw": d.Raw}
	}
	return d
}

// DescribeError names an error for diagnostics. In debug mode the wrapped
// chain is attached as the stack.
func DescribeError(err error, debugMode bool) *AttemptError {
	e := &AttemptError{Name: errorName(err), Message: err.Error()}
	if debugMode {
		e.Stack = errorChain(err)
	}
	return e
}

func errorName(err error) string {
	var fe *fetcher.FetchError
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "TimeoutError"
	case errors.Is(err, context.Canceled):
		return "CanceledError"
	case errors.As(err, &fe):
		return "FetchError"
	case errors.Is(err, ErrNotRecipe):
		return "NotRecipeError"
	case errors.Is(err, ErrIncompleteRecipe):
		return "IncompleteRecipeError"
	case errors.Is(err, fetcher.ErrNotHTML), errors.Is(err, ErrNotPDF), errors.Is(err, ErrUnsupportedContentType):
		return "ContentTypeError"
	}
	return "Error"
}

// errorChain lists the wrapped errors, outermost first.
func errorChain(err error) string {
	var lines []string
	for e := err; e != nil; e = errors.Unwrap(e) {
		lines = append(lines, fmt.Sprintf("%T: %v", e, e))
	}
	return strings.Join(lines, "\n")
}
