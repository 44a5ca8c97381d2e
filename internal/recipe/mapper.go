package recipe

import (
	"log/slog"
	"strconv"
	"strings"
	"time"

	"recipe-extraction-api/internal/extractor"
	"recipe-extraction-api/internal/normalize"
)

// Mapper turns drafts and stored rows into canonical recipes.
type Mapper struct {
	// PlaceholderImage is used when no image could be found.
	PlaceholderImage string
	Now              func() time.Time
}

// NewMapper creates a Mapper.
func NewMapper(placeholderImage string) *Mapper {
	return &Mapper{PlaceholderImage: placeholderImage, Now: time.Now}
}

// Meta is what the caller knows about a draft beyond its content.
type Meta struct {
	ID         string
	UserID     string
	SourceURL  string
	SourceType string
	Method     string
	Confidence float64
}

// FromDraft cleans a strategy draft and fills defaults. Strategies have
// already stripped markup, so text is only tidied here.
func (m *Mapper) FromDraft(d *extractor.Draft, meta Meta) Recipe {
	now := m.now()
	r := Recipe{
		ID:                  meta.ID,
		UserID:              meta.UserID,
		SourceURL:           meta.SourceURL,
		SourceType:          meta.SourceType,
		Title:               orDefault(normalize.TidyText(d.Title), DefaultTitle),
		Description:         normalize.TidyText(d.Description),
		Ingredients:         normalizeAll(d.Ingredients, normalize.NormalizeIngredient),
		Instructions:        normalizeAll(d.Instructions, normalize.NormalizeInstruction),
		PrepTime:            FormatTime(d.PrepMinutes),
		CookTime:            FormatTime(d.CookMinutes),
		Servings:            d.Servings,
		Cuisine:             orDefault(normalize.TidyText(d.Cuisine), DefaultCuisine),
		Category:            orDefault(normalize.TidyText(d.Category), DefaultCategory),
		DietaryRestrictions: nonNil(d.DietaryRestrictions),
		Tags:                nonNil(d.Tags),
		Calories:            max(d.Calories, 0),
		ImageURLs:           nonNil(d.Images),
		Confidence:          meta.Confidence,
		Method:              meta.Method,
		CreatedAt:           now,
		UpdatedAt:           now,
	}

	// Only the total is known: show it as cook time.
	if r.PrepTime == NotAvailable && r.CookTime == NotAvailable && d.TotalMinutes > 0 {
		r.CookTime = FormatTime(d.TotalMinutes)
	}
	if r.Servings <= 0 {
		r.Servings = DefaultServings
	}
	r.ImageURL = m.primaryImage(r.ImageURLs)

	total := d.TotalMinutes
	if total <= 0 {
		total = d.PrepMinutes + d.CookMinutes
	}
	r.Difficulty = DeriveDifficulty(total, len(r.Instructions), len(r.Ingredients))
	return r
}

// Row is a stored recipe whose list and scalar fields may come back in
// loose shapes: native arrays, JSON-encoded strings, objects or numbers.
type Row struct {
	ID                  string
	UserID              string
	SourceURL           string
	SourceType          string
	Title               string
	Description         string
	Ingredients         any
	Instructions        any
	PrepTime            any
	CookTime            any
	Servings            any
	Difficulty          string
	Cuisine             string
	Category            any
	DietaryRestrictions any
	Tags                any
	Calories            any
	ImageURL            any
	ImageURLs           any
	Confidence          float64
	Method              string
	IsFavorite          bool
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// FromRow coerces a stored row. It never fails: unreadable fields fall back
// to their defaults and are logged. Text is not re-normalized.
func (m *Mapper) FromRow(row Row) Recipe {
	r := Recipe{
		ID:                  row.ID,
		UserID:              row.UserID,
		SourceURL:           row.SourceURL,
		SourceType:          row.SourceType,
		Title:               orDefault(strings.TrimSpace(row.Title), DefaultTitle),
		Description:         row.Description,
		Ingredients:         decodeList(row.ID, "ingredients", row.Ingredients),
		Instructions:        decodeList(row.ID, "instructions", row.Instructions),
		PrepTime:            timeFromAny(row.PrepTime),
		CookTime:            timeFromAny(row.CookTime),
		Servings:            toInt(row.Servings),
		Cuisine:             orDefault(strings.TrimSpace(row.Cuisine), DefaultCuisine),
		Category:            orDefault(normalize.ExtractFirstValue(row.Category), DefaultCategory),
		DietaryRestrictions: decodeList(row.ID, "dietaryRestrictions", row.DietaryRestrictions),
		Tags:                decodeList(row.ID, "tags", row.Tags),
		Calories:            max(toInt(row.Calories), 0),
		ImageURLs:           nonNil(normalize.ImageCandidates(row.ImageURLs, "")),
		Confidence:          row.Confidence,
		Method:              row.Method,
		IsFavorite:          row.IsFavorite,
		CreatedAt:           row.CreatedAt,
		UpdatedAt:           row.UpdatedAt,
	}
	if r.Servings <= 0 {
		r.Servings = DefaultServings
	}

	r.ImageURL = normalize.ExtractFirstImageURL(row.ImageURL, "")
	if r.ImageURL == "" {
		r.ImageURL = m.primaryImage(r.ImageURLs)
	}

	if d, ok := ParseDifficulty(row.Difficulty); ok {
		r.Difficulty = d
	} else {
		r.Difficulty = DeriveDifficulty(r.TotalMinutes(), len(r.Instructions), len(r.Ingredients))
	}
	return r
}

func (m *Mapper) primaryImage(candidates []string) string {
	if len(candidates) > 0 {
		return candidates[0]
	}
	return m.PlaceholderImage
}

func (m *Mapper) now() time.Time {
	if m.Now != nil {
		return m.Now().UTC()
	}
	return time.Now().UTC()
}

func decodeList(id, field string, v any) []string {
	lines, err := normalize.DecodeStringArray(v)
	if err != nil {
		slog.Warn("Unreadable recipe field, using empty list", "recipe_id", id, "field", field, "error", err)
		return []string{}
	}
	return lines
}

// normalizeAll cleans each line, dropping empties and exact repeats.
func normalizeAll(lines []string, clean func(any) string) []string {
	out := make([]string, 0, len(lines))
	seen := make(map[string]bool, len(lines))
	for _, l := range lines {
		c := clean(l)
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return out
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func toInt(v any) int {
	switch t := v.(type) {
	case int:
		return t
	case int64:
		return int(t)
	case float64:
		return int(t)
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(t)); err == nil {
			return n
		}
		n, _ := normalize.FirstInt(t)
		return n
	}
	return 0
}
