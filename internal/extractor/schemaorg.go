package extractor

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/astappiev/microdata"
	"golang.org/x/net/html"

	"recipe-extraction-api/internal/fetcher"
	"recipe-extraction-api/internal/normalize"
)

var (
	recipeTypePattern = regexp.MustCompile(`(?i)^https?://schema\.org/Recipe/?$`)
	stepTypePattern   = regexp.MustCompile(`(?i)schema\.org/HowToStep`)
)

// parseMicrodata reads the first schema.org Recipe item on the page. Later
// Recipe items are ignored. Properties come from the microdata parser;
// instruction text is read from the markup so <br> breaks survive.
func parseMicrodata(doc *goquery.Document, page *fetcher.Page) (*Draft, error) {
	root := doc.Find("[itemtype]").FilterFunction(func(_ int, s *goquery.Selection) bool {
		return hasItemType(s, recipeTypePattern)
	}).First()
	if root.Length() == 0 {
		return nil, ErrNotRecipe
	}

	item, markup, err := recipeItem(root, page.BaseURL())
	if err != nil {
		return nil, err
	}

	d := &Draft{
		Title:       normalize.CleanText(itemText(item, "name")),
		Description: normalize.CleanText(itemText(item, "description")),
		Servings:    firstInt(itemText(item, "recipeYield")),
		Category:    normalize.CleanText(itemText(item, "recipeCategory")),
		Cuisine:     normalize.CleanText(itemText(item, "recipeCuisine")),
		Raw:         markup,
	}

	d.PrepMinutes = minutes(itemText(item, "prepTime"))
	d.CookMinutes = minutes(itemText(item, "cookTime"))
	d.TotalMinutes = minutes(itemText(item, "totalTime"))

	if nutrition := nestedItem(item, "nutrition"); nutrition != nil {
		d.Calories = firstInt(itemText(nutrition, "calories"))
	} else {
		d.Calories = firstInt(itemText(item, "calories"))
	}

	d.Images = normalize.ImageCandidates(itemImages(item), page.BaseURL())
	d.Ingredients = dedupe(cleanLines(itemTexts(item, "recipeIngredient", "ingredients")))

	var instructions []string
	ownProps(root, "recipeInstructions").Each(func(_ int, s *goquery.Selection) {
		instructions = append(instructions, instructionLines(s)...)
	})
	d.Instructions = cleanLines(instructions)

	d.Tags = splitKeywords(strings.Join(itemTexts(item, "keywords"), ","))
	d.DietaryRestrictions = dietNames(itemTexts(item, "suitableForDiet"))
	return d, nil
}

// recipeItem runs the microdata parser over the Recipe element alone, so
// JSON-LD blocks elsewhere on the page are not mistaken for microdata.
func recipeItem(root *goquery.Selection, base string) (*microdata.Item, string, error) {
	root.Find(`script[type="application/ld+json"]`).Remove()
	// A Recipe that is itself a property of an outer item is only
	// top-level once detached.
	root.RemoveAttr("itemprop")

	markup, err := goquery.OuterHtml(root)
	if err != nil {
		return nil, "", fmt.Errorf("render recipe markup: %w", err)
	}
	data, err := microdata.ParseHTML(strings.NewReader(markup), "text/html", base)
	if err != nil {
		return nil, "", fmt.Errorf("parse microdata: %w", err)
	}
	for _, item := range data.Items {
		if item.IsOfSchemaType("Recipe") {
			return item, markup, nil
		}
	}
	return nil, "", ErrNotRecipe
}

// itemText is the first non-blank string value of a property.
func itemText(item *microdata.Item, name string) string {
	vals, ok := item.GetProperties(name)
	if !ok {
		return ""
	}
	for _, v := range vals {
		if s, ok := v.(string); ok && strings.TrimSpace(s) != "" {
			return s
		}
	}
	return ""
}

func nestedItem(item *microdata.Item, name string) *microdata.Item {
	vals, _ := item.GetProperties(name)
	for _, v := range vals {
		if nested, ok := v.(*microdata.Item); ok {
			return nested
		}
	}
	return nil
}

// itemTexts collects the string values of every named property in order.
// Nested items are skipped.
func itemTexts(item *microdata.Item, names ...string) []string {
	var out []string
	for _, name := range names {
		vals, _ := item.GetProperties(name)
		for _, v := range vals {
			if s, ok := v.(string); ok {
				out = append(out, s)
			}
		}
	}
	return out
}

// itemImages turns image properties into the shapes ImageCandidates reads:
// plain URLs, or objects for nested ImageObject items.
func itemImages(item *microdata.Item) []any {
	vals, _ := item.GetProperties("image")
	out := make([]any, 0, len(vals))
	for _, v := range vals {
		switch t := v.(type) {
		case string:
			out = append(out, t)
		case *microdata.Item:
			url := itemText(t, "url")
			if url == "" {
				url = itemText(t, "contentUrl")
			}
			if url == "" {
				continue
			}
			obj := map[string]any{"url": url}
			if w := itemText(t, "width"); w != "" {
				obj["width"] = w
			}
			if h := itemText(t, "height"); h != "" {
				obj["height"] = h
			}
			out = append(out, obj)
		}
	}
	return out
}

func hasItemType(s *goquery.Selection, pattern *regexp.Regexp) bool {
	for _, t := range strings.Fields(s.AttrOr("itemtype", "")) {
		if pattern.MatchString(t) {
			return true
		}
	}
	return false
}

// ownProps finds itemprop nodes belonging to root itself, not to items
// nested inside it. Only instructions need the nodes rather than values.
func ownProps(root *goquery.Selection, names ...string) *goquery.Selection {
	selectors := make([]string, len(names))
	for i, n := range names {
		selectors[i] = `[itemprop~="` + n + `"]`
	}
	rootNode := root.Get(0)
	return root.Find(strings.Join(selectors, ", ")).FilterFunction(func(_ int, s *goquery.Selection) bool {
		scope := s.Parent().Closest("[itemscope], [itemtype]")
		return scope.Length() == 0 || scope.Get(0) == rootNode
	})
}

// propValue reads a microdata property the way browsers do: attributes
// first, text content otherwise.
func propValue(s *goquery.Selection) string {
	if s.Length() == 0 {
		return ""
	}
	for _, attr := range []string{"content", "datetime", "src", "href"} {
		if v, ok := s.Attr(attr); ok && strings.TrimSpace(v) != "" {
			return v
		}
	}
	return textWithBreaks(s)
}

// instructionLines flattens HowToStep and ItemList containers into steps.
// Anything else falls back to the node text.
func instructionLines(s *goquery.Selection) []string {
	if v, ok := s.Attr("content"); ok && strings.TrimSpace(v) != "" {
		return normalize.SplitLines(v)
	}

	steps := s.Find("[itemtype]").AddSelection(s).FilterFunction(func(_ int, n *goquery.Selection) bool {
		return hasItemType(n, stepTypePattern)
	})
	if steps.Length() > 0 {
		var out []string
		steps.Each(func(_ int, step *goquery.Selection) {
			if text := step.Find(`[itemprop~="text"]`).First(); text.Length() > 0 {
				out = append(out, propValue(text))
				return
			}
			out = append(out, textWithBreaks(step))
		})
		return out
	}

	if items := s.Find("li"); items.Length() > 0 {
		return items.Map(func(_ int, li *goquery.Selection) string { return textWithBreaks(li) })
	}
	if paras := s.Find("p"); paras.Length() > 1 {
		return paras.Map(func(_ int, p *goquery.Selection) string { return textWithBreaks(p) })
	}
	return normalize.SplitLines(textWithBreaks(s))
}

// textWithBreaks is Selection.Text with <br> and block boundaries kept as
// newlines.
func textWithBreaks(s *goquery.Selection) string {
	var b strings.Builder
	for _, n := range s.Nodes {
		writeText(&b, n)
	}
	return b.String()
}

var blockElements = map[string]bool{
	"p": true, "div": true, "li": true, "br": true, "tr": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"section": true, "article": true, "ul": true, "ol": true,
}

func writeText(b *strings.Builder, n *html.Node) {
	switch n.Type {
	case html.TextNode:
		b.WriteString(n.Data)
		return
	case html.ElementNode:
		if n.Data == "script" || n.Data == "style" {
			return
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		writeText(b, c)
	}
	if n.Type == html.ElementNode && blockElements[n.Data] {
		b.WriteByte('\n')
	}
}
