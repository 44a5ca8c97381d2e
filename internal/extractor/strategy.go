package extractor

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/PuerkitoBio/goquery"

	"recipe-extraction-api/internal/classifier"
	"recipe-extraction-api/internal/fetcher"
)

// Target is what a strategy works on.
type Target struct {
	URL    string
	Source classifier.SourceType
	// Fetch is shared by all strategies of one run.
	Fetch fetcher.Fetcher
}

// Strategy is one extraction algorithm with its confidence policy.
type Strategy struct {
	Name string
	// Applies limits the strategy to some source types. Nil means always.
	Applies func(classifier.SourceType) bool
	// Confidence scores a successful draft.
	Confidence func(*Draft) float64
	Extract    func(ctx context.Context, t Target) (*Draft, error)
}

func fixedConfidence(c float64) func(*Draft) float64 {
	return func(*Draft) float64 { return c }
}

// pageParser reads a draft out of a parsed HTML page.
type pageParser func(doc *goquery.Document, page *fetcher.Page) (*Draft, error)

func pageStrategy(name string, confidence func(*Draft) float64, parse pageParser) Strategy {
	return Strategy{
		Name:       name,
		Confidence: confidence,
		Extract: func(ctx context.Context, t Target) (*Draft, error) {
			page, err := t.Fetch.Fetch(ctx, t.URL)
			if err != nil {
				return nil, err
			}
			doc, err := page.Document()
			if errors.Is(err, fetcher.ErrNotHTML) {
				return nil, fmt.Errorf("%s: %w: %w", name, ErrUnsupportedContentType, err)
			}
			if err != nil {
				return nil, fmt.Errorf("%s: %w", name, err)
			}
			return parse(doc, page)
		},
	}
}

const (
	MethodSchemaOrg        = "schema-org"
	MethodJSONLD           = "json-ld"
	MethodHeuristic        = "heuristic"
	MethodVideoDescription = "video-description"
	MethodDocumentText     = "document-text"

	schemaOrgConfidence = 0.9
	jsonLDConfidence    = 0.85
	textConfidence      = 0.6
)

// PageStrategies is the fixed priority order for HTML pages.
func PageStrategies() []Strategy {
	return []Strategy{
		pageStrategy(MethodSchemaOrg, fixedConfidence(schemaOrgConfidence), parseMicrodata),
		pageStrategy(MethodJSONLD, fixedConfidence(jsonLDConfidence), parseJSONLD),
		pageStrategy(MethodHeuristic, heuristicConfidence, parseHeuristic),
	}
}

// heuristicConfidence adds up what the heuristic managed to find.
func heuristicConfidence(d *Draft) float64 {
	score := 0.3
	if d.Title != "" {
		score += 0.1
	}
	if len(d.Images) > 0 {
		score += 0.1
	}
	if countNonEmpty(d.Ingredients) > 3 {
		score += 0.2
	}
	if countNonEmpty(d.Instructions) > 1 {
		score += 0.2
	}
	if d.HasTiming() {
		score += 0.1
	}
	return math.Round(math.Min(score, 1)*100) / 100
}
