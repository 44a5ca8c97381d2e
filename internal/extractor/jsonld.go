package extractor

import (
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"
	jsoniter "github.com/json-iterator/go"

	"recipe-extraction-api/internal/fetcher"
	"recipe-extraction-api/internal/normalize"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// parseJSONLD reads the first Recipe object from the page's ld+json blocks.
// A malformed block is skipped, never fatal.
func parseJSONLD(doc *goquery.Document, page *fetcher.Page) (*Draft, error) {
	var recipe map[string]any
	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(i int, s *goquery.Selection) bool {
		raw := strings.TrimSpace(s.Text())
		if raw == "" {
			return true
		}
		var data any
		if err := json.UnmarshalFromString(raw, &data); err != nil {
			slog.Debug("Skipping malformed JSON-LD block", "url", page.URL, "block", i, "error", err)
			return true
		}
		recipe = findRecipeNode(data, 0)
		return recipe == nil
	})
	if recipe == nil {
		return nil, ErrNotRecipe
	}
	return draftFromJSONLD(recipe, page.BaseURL()), nil
}

const maxGraphDepth = 6

// findRecipeNode looks for a Recipe object directly, in an array, under
// @graph or under mainEntity.
func findRecipeNode(v any, depth int) map[string]any {
	if depth > maxGraphDepth {
		return nil
	}
	switch t := v.(type) {
	case []any:
		for _, item := range t {
			if r := findRecipeNode(item, depth+1); r != nil {
				return r
			}
		}
	case map[string]any:
		if isRecipeType(t["@type"]) {
			return t
		}
		for _, key := range []string{"@graph", "mainEntity", "mainEntityOfPage"} {
			if inner, ok := t[key]; ok {
				if r := findRecipeNode(inner, depth+1); r != nil {
					return r
				}
			}
		}
	}
	return nil
}

func isRecipeType(v any) bool {
	switch t := v.(type) {
	case string:
		return strings.EqualFold(strings.TrimPrefix(strings.TrimPrefix(t, "http://schema.org/"), "https://schema.org/"), "Recipe")
	case []any:
		for _, e := range t {
			if isRecipeType(e) {
				return true
			}
		}
	}
	return false
}

func draftFromJSONLD(r map[string]any, base string) *Draft {
	d := &Draft{
		Title:       normalize.CleanText(normalize.AnyText(r["name"])),
		Description: normalize.CleanText(normalize.AnyText(r["description"])),
		Images:      normalize.ImageCandidates(r["image"], base),
		Category:    normalize.ExtractFirstValue(r["recipeCategory"]),
		Cuisine:     normalize.ExtractFirstValue(r["recipeCuisine"]),
		Tags:        splitKeywords(r["keywords"]),
		Raw:         r,
	}

	d.PrepMinutes = minutes(normalize.AnyText(r["prepTime"]))
	d.CookMinutes = minutes(normalize.AnyText(r["cookTime"]))
	d.TotalMinutes = minutes(normalize.AnyText(r["totalTime"]))
	d.Servings = firstInt(normalize.ExtractFirstValue(r["recipeYield"]))

	ingredients := r["recipeIngredient"]
	if ingredients == nil {
		ingredients = r["ingredients"]
	}
	if lines, err := normalize.DecodeStringArray(ingredients); err == nil {
		d.Ingredients = cleanLines(lines)
	} else {
		slog.Debug("Unreadable recipeIngredient", "error", err)
	}

	if lines, err := normalize.DecodeStringArray(r["recipeInstructions"]); err == nil {
		d.Instructions = cleanLines(lines)
	} else {
		slog.Debug("Unreadable recipeInstructions", "error", err)
	}

	if diets, err := normalize.DecodeStringArray(r["suitableForDiet"]); err == nil {
		d.DietaryRestrictions = dietNames(diets)
	}
	if nutrition, ok := r["nutrition"].(map[string]any); ok {
		d.Calories = firstInt(normalize.AnyText(nutrition["calories"]))
	}
	return d
}
