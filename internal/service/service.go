// Package service runs one extraction request end to end: validation,
// classification, cache, orchestration, mapping and persistence.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"recipe-extraction-api/internal/cache"
	"recipe-extraction-api/internal/classifier"
	"recipe-extraction-api/internal/extractor"
	"recipe-extraction-api/internal/metrics"
	"recipe-extraction-api/internal/recipe"
)

// Suggestion is shown to users when no strategy found a recipe.
const Suggestion = "This page may not contain a structured recipe. Try the AI enhancement option, or paste the recipe text directly."

var (
	// ErrInvalidRequest wraps validation failures.
	ErrInvalidRequest = errors.New("invalid extraction request")
	// ErrPersistence wraps storage failures after a successful extraction.
	ErrPersistence = errors.New("failed to save recipe")
)

// Request is one extraction request.
type Request struct {
	URL    string `json:"url" validate:"required,max=2048"`
	UserID string `json:"userId" validate:"required,max=128"`
	Debug  bool   `json:"debug"`
}

// Result carries everything the API needs to render a response.
type Result struct {
	Status     int
	Recipe     *recipe.Recipe
	Outcome    *extractor.Outcome
	Message    string
	Suggestion string
	Err        error
	Cached     bool
}

// Runner runs the strategy chain.
type Runner interface {
	Run(ctx context.Context, url string, debug bool) (*extractor.Outcome, error)
}

// Saver persists a mapped recipe.
type Saver interface {
	Create(ctx context.Context, r *recipe.Recipe) error
}

// Extraction is the extraction use case.
type Extraction struct {
	runner   Runner
	saver    Saver
	mapper   *recipe.Mapper
	cache    cache.Cache
	cacheTTL time.Duration
	validate *validator.Validate
	newID    func() string
}

// NewExtraction creates the use case. A nil cache disables caching.
func NewExtraction(runner Runner, saver Saver, mapper *recipe.Mapper, c cache.Cache, cacheTTL time.Duration) *Extraction {
	if c == nil {
		c = cache.Noop{}
	}
	return &Extraction{
		runner:   runner,
		saver:    saver,
		mapper:   mapper,
		cache:    c,
		cacheTTL: cacheTTL,
		validate: validator.New(),
		newID:    uuid.NewString,
	}
}

// Extract runs a request. It never returns nil; Result.Status is the HTTP
// status to answer with.
func (s *Extraction) Extract(ctx context.Context, req Request) *Result {
	res := s.extract(ctx, req)
	metrics.Extractions.WithLabelValues(strconv.Itoa(res.Status)).Inc()
	return res
}

func (s *Extraction) extract(ctx context.Context, req Request) *Result {
	req.URL = strings.TrimSpace(req.URL)
	req.UserID = strings.TrimSpace(req.UserID)

	if err := s.validate.Struct(req); err != nil {
		return badRequest(validationMessage(err))
	}
	class := classifier.Classify(req.URL)
	if !class.IsValid {
		return badRequest("url must be an absolute http(s) URL")
	}

	outcome, cached := s.lookup(ctx, req)
	if outcome == nil {
		var err error
		outcome, err = s.runner.Run(ctx, req.URL, req.Debug)
		if err != nil {
			return s.failure(ctx, outcome, err)
		}
		if !req.Debug {
			s.cache.Set(ctx, req.URL, outcome, s.cacheTTL)
		}
	}

	rec := s.mapper.FromDraft(outcome.Draft, recipe.Meta{
		ID:         s.newID(),
		UserID:     req.UserID,
		SourceURL:  req.URL,
		SourceType: string(class.SourceType),
		Method:     outcome.Method,
		Confidence: outcome.Confidence,
	})

	if err := s.saver.Create(ctx, &rec); err != nil {
		slog.Error("Persisting extracted recipe failed", "url", req.URL, "user_id", req.UserID, "error", err)
		return &Result{
			Status:  http.StatusInternalServerError,
			Outcome: outcome,
			Message: ErrPersistence.Error(),
			Err:     fmt.Errorf("%w: %w", ErrPersistence, err),
		}
	}

	return &Result{Status: http.StatusOK, Recipe: &rec, Outcome: outcome, Cached: cached}
}

// lookup skips the cache in debug mode so diagnostics are always fresh.
func (s *Extraction) lookup(ctx context.Context, req Request) (*extractor.Outcome, bool) {
	if req.Debug {
		return nil, false
	}
	o, ok := s.cache.Get(ctx, req.URL)
	if ok {
		metrics.CacheLookups.WithLabelValues("hit").Inc()
		slog.Debug("Extraction cache hit", "url", req.URL, "method", o.Method)
		return o, true
	}
	metrics.CacheLookups.WithLabelValues("miss").Inc()
	return nil, false
}

func (s *Extraction) failure(ctx context.Context, outcome *extractor.Outcome, err error) *Result {
	if errors.Is(err, extractor.ErrNoRecipeFound) {
		return &Result{
			Status:     http.StatusUnprocessableEntity,
			Outcome:    outcome,
			Message:    "Could not extract a recipe from this URL",
			Suggestion: Suggestion,
			Err:        err,
		}
	}

	status := http.StatusInternalServerError
	if ctx.Err() != nil {
		status = http.StatusGatewayTimeout
	}
	slog.Error("Extraction failed unexpectedly", "error", err)
	return &Result{Status: status, Outcome: outcome, Message: "Extraction failed", Err: err}
}

func badRequest(msg string) *Result {
	return &Result{
		Status:  http.StatusBadRequest,
		Message: msg,
		Err:     fmt.Errorf("%w: %s", ErrInvalidRequest, msg),
	}
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err.Error()
	}
	field := verrs[0].Field()
	switch field {
	case "URL":
		field = "url"
	case "UserID":
		field = "userId"
	}
	if verrs[0].Tag() == "required" {
		return field + " is required"
	}
	return field + " is invalid"
}
