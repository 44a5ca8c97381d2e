package extractor

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"recipe-extraction-api/internal/fetcher"
	"recipe-extraction-api/internal/normalize"
)

// Tried in order; the first selector with a non-empty match wins.
var ingredientSelectors = []string{
	".wprm-recipe-ingredient",
	".tasty-recipes-ingredients li",
	".mv-create-ingredients li",
	`[itemprop="recipeIngredient"]`,
	`[itemprop="ingredients"]`,
	".recipe-ingredients li",
	".ingredients li",
	".ingredient-list li",
	"#ingredients li",
	".ingredient",
}

var instructionSelectors = []string{
	".wprm-recipe-instruction-text",
	".tasty-recipes-instructions li",
	".mv-create-instructions li",
	`[itemprop="recipeInstructions"] li`,
	`[itemprop="recipeInstructions"]`,
	".recipe-instructions li",
	".recipe-directions li",
	".instructions li",
	".directions li",
	".method li",
	".steps li",
	"#instructions li",
	".instruction",
}

// Broader containers whose text is split by line when no selector matched.
var (
	ingredientContainers  = []string{".ingredients", ".recipe-ingredients", "#ingredients"}
	instructionContainers = []string{".instructions", ".recipe-instructions", "#instructions", ".directions", ".method"}
)

const (
	minFallbackLine = 5
	maxFallbackLine = 200
)

var (
	timePattern      = regexp.MustCompile(`(?i)\d+\s*(?:minutes?|mins?|hours?|hrs?|h)\b(?:\s*\d+\s*(?:minutes?|mins?|m)\b)?`)
	servesPattern    = regexp.MustCompile(`(?i)serves\s*:?\s*(\d+)`)
	servingsPattern  = regexp.MustCompile(`(?i)(\d+)\s*servings?`)
	imageHintPattern = regexp.MustCompile(`(?i)recipe|hero|featured`)
)

// parseHeuristic guesses a recipe from common markup conventions.
func parseHeuristic(doc *goquery.Document, page *fetcher.Page) (*Draft, error) {
	d := &Draft{
		Title:        headingTitle(doc),
		Ingredients:  listItems(doc, ingredientSelectors, ingredientContainers),
		Instructions: listItems(doc, instructionSelectors, instructionContainers),
	}

	if img := pageImage(doc, page.BaseURL()); img != "" {
		d.Images = []string{img}
	}

	d.PrepMinutes = scopedTime(doc, `[class*="prep"], [itemprop="prepTime"]`)
	d.CookMinutes = scopedTime(doc, `[class*="cook"], [itemprop="cookTime"]`)
	d.TotalMinutes = scopedTime(doc, `[class*="total"], [itemprop="totalTime"]`)
	d.Servings = scopedServings(doc)

	if desc, ok := doc.Find(`meta[name="description"], meta[property="og:description"]`).First().Attr("content"); ok {
		d.Description = normalize.CleanText(desc)
	}

	if len(d.Ingredients) == 0 && len(d.Instructions) == 0 {
		return nil, ErrNotRecipe
	}
	return d, nil
}

func headingTitle(doc *goquery.Document) string {
	if h1 := normalize.CleanText(doc.Find("h1").First().Text()); h1 != "" {
		return h1
	}
	return normalize.CleanText(doc.Find("title").First().Text())
}

func listItems(doc *goquery.Document, selectors, containers []string) []string {
	for _, sel := range selectors {
		var lines []string
		doc.Find(sel).Each(func(_ int, s *goquery.Selection) {
			lines = append(lines, textWithBreaks(s))
		})
		if lines = cleanLines(lines); len(lines) > 0 {
			return lines
		}
	}

	for _, sel := range containers {
		c := doc.Find(sel).First()
		if c.Length() == 0 {
			continue
		}
		var lines []string
		for _, l := range normalize.SplitLines(textWithBreaks(c)) {
			l = normalize.CleanText(l)
			if n := utf8.RuneCountInString(l); n >= minFallbackLine && n <= maxFallbackLine {
				lines = append(lines, l)
			}
		}
		if len(lines) > 0 {
			return lines
		}
	}
	return nil
}

// pageImage prefers og:image, then twitter:image, then the best scoring <img>.
func pageImage(doc *goquery.Document, base string) string {
	for _, sel := range []string{
		`meta[property="og:image"]`,
		`meta[name="og:image"]`,
		`meta[name="twitter:image"]`,
		`meta[property="twitter:image"]`,
	} {
		if v, ok := doc.Find(sel).First().Attr("content"); ok {
			if u := normalize.ExtractFirstImageURL(v, base); u != "" {
				return u
			}
		}
	}

	best, bestScore := "", 0
	doc.Find("img").Each(func(_ int, img *goquery.Selection) {
		src := img.AttrOr("src", img.AttrOr("data-src", ""))
		u := normalize.ExtractFirstImageURL(src, base)
		if u == "" {
			return
		}
		// Strictly greater, so ties go to the earlier image.
		if score := imageScore(img); score > bestScore {
			best, bestScore = u, score
		}
	})
	return best
}

func imageScore(img *goquery.Selection) int {
	score := 0
	hints := img.AttrOr("class", "") + " " + img.AttrOr("id", "") + " " + img.Parent().AttrOr("class", "")
	if imageHintPattern.MatchString(hints) {
		score += 3
	}
	if w := dimension(img.AttrOr("width", "")); w > 300 {
		score += 2
	}
	if h := dimension(img.AttrOr("height", "")); h > 300 {
		score += 2
	}
	return score
}

func dimension(s string) int {
	n, err := strconv.Atoi(strings.TrimSuffix(strings.TrimSpace(s), "px"))
	if err != nil {
		return 0
	}
	return n
}

// scopedTime looks for a duration inside elements tagged as a time field.
func scopedTime(doc *goquery.Document, selector string) float64 {
	var found float64
	doc.Find(selector).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		for _, attr := range []string{"content", "datetime"} {
			if v, ok := s.Attr(attr); ok {
				if m, ok := normalize.ParseISO8601Duration(v); ok && m > 0 {
					found = m
					return false
				}
			}
		}
		if m := timePattern.FindString(s.Text()); m != "" {
			found = minutes(m)
			return found == 0
		}
		return true
	})
	return found
}

func scopedServings(doc *goquery.Document) int {
	scope := doc.Find(`[class*="serving"], [class*="yield"], [itemprop="recipeYield"]`)
	text := normalize.CollapseSpace(scope.Text())

	if n := servingsIn(text); n > 0 {
		return n
	}
	if n := servingsIn(normalize.CollapseSpace(doc.Find("body").Text())); n > 0 {
		return n
	}
	// Last resort: the first number in a servings-tagged element.
	return firstInt(text)
}

func servingsIn(text string) int {
	for _, re := range []*regexp.Regexp{servesPattern, servingsPattern} {
		if m := re.FindStringSubmatch(text); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
				return n
			}
		}
	}
	return 0
}
