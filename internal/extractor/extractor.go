package extractor

import (
	"recipe-extraction-api/internal/classifier"
)

// Draft is what a strategy pulls out of a source before mapping. Text is
// cleaned of markup but not yet normalized.
type Draft struct {
	Title        string   `json:"title,omitempty"`
	Description  string   `json:"description,omitempty"`
	Ingredients  []string `json:"ingredients"`
	Instructions []string `json:"instructions"`

	// Minutes; zero means unknown.
	PrepMinutes  float64 `json:"prepMinutes,omitempty"`
	CookMinutes  float64 `json:"cookMinutes,omitempty"`
	TotalMinutes float64 `json:"totalMinutes,omitempty"`

	Servings int      `json:"servings,omitempty"`
	Images   []string `json:"images,omitempty"`

	Category            string   `json:"category,omitempty"`
	Cuisine             string   `json:"cuisine,omitempty"`
	Tags                []string `json:"tags,omitempty"`
	DietaryRestrictions []string `json:"dietaryRestrictions,omitempty"`
	Calories            int      `json:"calories,omitempty"`

	// Raw is the source node the draft was read from, kept for debug output.
	Raw any `json:"-"`
}

// HasTiming reports whether any time field was found.
func (d *Draft) HasTiming() bool {
	return d.PrepMinutes > 0 || d.CookMinutes > 0 || d.TotalMinutes > 0
}

// Complete reports whether the draft has at least one ingredient and one
// instruction.
func (d *Draft) Complete() bool {
	return countNonEmpty(d.Ingredients) > 0 && countNonEmpty(d.Instructions) > 0
}

func countNonEmpty(lines []string) int {
	n := 0
	for _, l := range lines {
		if l != "" {
			n++
		}
	}
	return n
}

// AttemptError is the diagnostic form of a strategy failure.
type AttemptError struct {
	Name    string `json:"name"`
	Message string `json:"message"`
	Stack   string `json:"stack,omitempty"`
}

// Attempt records one strategy run.
type Attempt struct {
	Method     string        `json:"method"`
	Success    bool          `json:"success"`
	Confidence float64       `json:"confidence"`
	DurationMs int64         `json:"durationMs"`
	Error      *AttemptError `json:"error,omitempty"`
	Data       any           `json:"data,omitempty"`
}

// Outcome is the result of one orchestration run.
type Outcome struct {
	URL            string                    `json:"url"`
	Classification classifier.Classification `json:"classification"`
	Draft          *Draft                    `json:"draft,omitempty"`
	Method         string                    `json:"method,omitempty"`
	Confidence     float64                   `json:"confidence,omitempty"`
	Attempts       []Attempt                 `json:"extractionResults"`
}

// Succeeded reports whether a strategy produced a draft.
func (o *Outcome) Succeeded() bool {
	return o != nil && o.Draft != nil
}

// WithoutDebug returns a copy whose attempts carry no raw data or stacks.
func (o *Outcome) WithoutDebug() *Outcome {
	if o == nil {
		return nil
	}
	c := *o
	c.Attempts = make([]Attempt, len(o.Attempts))
	for i, a := range o.Attempts {
		a.Data = nil
		if a.Error != nil {
			e := *a.Error
			e.Stack = ""
			a.Error = &e
		}
		c.Attempts[i] = a
	}
	return &c
}
