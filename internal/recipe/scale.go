package recipe

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

var vulgarFractions = map[rune]float64{
	'¼': 0.25, '½': 0.5, '¾': 0.75,
	'⅓': 1.0 / 3, '⅔': 2.0 / 3,
	'⅛': 0.125, '⅜': 0.375, '⅝': 0.625, '⅞': 0.875,
	'⅕': 0.2, '⅖': 0.4, '⅗': 0.6, '⅘': 0.8, '⅙': 1.0 / 6, '⅚': 5.0 / 6,
}

const amount = `\d+\s+\d+/\d+|\d+/\d+|\d*\s*[¼½¾⅓⅔⅛⅜⅝⅞⅕⅖⅗⅘⅙⅚]|\d{1,3}(?:,\d{3})+(?:\.\d+)?|\d+(?:[.,]\d+)?`

// quantityPattern matches a leading amount: "1 1/2", "3/4", "1½", "1 ½",
// "½", "1,000", "1.5", "2" or a range such as "2-3".
var quantityPattern = regexp.MustCompile(`^(` + amount + `)(?:\s*(?:-|–|to)\s*(` + amount + `))?`)

// thousandsPattern spots "1,000" style grouping. Any other comma is a
// decimal comma.
var thousandsPattern = regexp.MustCompile(`^\d{1,3}(?:,\d{3})+(?:\.\d+)?$`)

// Scale returns a copy sized for servings. Leading ingredient quantities are
// multiplied; nothing else changes. The copy is not meant to be stored.
func (r Recipe) Scale(servings int) (Recipe, error) {
	if servings <= 0 || r.Servings <= 0 {
		return Recipe{}, fmt.Errorf("%w: scale %d to %d", ErrInvalidServings, r.Servings, servings)
	}
	factor := float64(servings) / float64(r.Servings)

	scaled := r
	scaled.Servings = servings
	scaled.Ingredients = make([]string, len(r.Ingredients))
	for i, ing := range r.Ingredients {
		scaled.Ingredients[i] = ScaleIngredient(ing, factor)
	}
	return scaled, nil
}

// ScaleIngredient multiplies the amount at the start of line by factor.
// Lines without a leading amount come back unchanged.
func ScaleIngredient(line string, factor float64) string {
	m := quantityPattern.FindStringSubmatchIndex(line)
	if m == nil {
		return line
	}

	first, ok := parseQuantity(line[m[2]:m[3]])
	if !ok {
		return line
	}
	amount := formatQuantity(first * factor)
	if m[4] >= 0 {
		second, ok := parseQuantity(line[m[4]:m[5]])
		if !ok {
			return line
		}
		amount += "-" + formatQuantity(second*factor)
	}
	return amount + line[m[1]:]
}

func parseQuantity(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if thousandsPattern.MatchString(s) {
		s = strings.ReplaceAll(s, ",", "")
	} else {
		s = strings.ReplaceAll(s, ",", ".")
	}

	// Mixed number: "1 1/2" or "1 ½".
	if whole, frac, found := strings.Cut(s, " "); found {
		w, err := strconv.ParseFloat(whole, 64)
		if err != nil {
			return 0, false
		}
		f, ok := parseQuantity(strings.TrimSpace(frac))
		return w + f, ok
	}
	if num, den, found := strings.Cut(s, "/"); found {
		n, err1 := strconv.ParseFloat(num, 64)
		d, err2 := strconv.ParseFloat(den, 64)
		if err1 != nil || err2 != nil || d == 0 {
			return 0, false
		}
		return n / d, true
	}

	runes := []rune(s)
	if len(runes) > 0 {
		if v, ok := vulgarFractions[runes[len(runes)-1]]; ok {
			whole := 0.0
			if len(runes) > 1 {
				w, err := strconv.ParseFloat(string(runes[:len(runes)-1]), 64)
				if err != nil {
					return 0, false
				}
				whole = w
			}
			return whole + v, true
		}
	}

	v, err := strconv.ParseFloat(s, 64)
	return v, err == nil
}

var niceFractions = []struct {
	value float64
	text  string
}{
	{0.125, "1/8"}, {0.25, "1/4"}, {1.0 / 3, "1/3"}, {0.5, "1/2"}, {2.0 / 3, "2/3"}, {0.75, "3/4"},
}

// formatQuantity prefers kitchen fractions and falls back to at most two
// decimals.
func formatQuantity(v float64) string {
	whole := math.Floor(v)
	frac := v - whole

	if frac < 0.01 {
		return strconv.FormatFloat(whole, 'f', -1, 64)
	}
	if frac > 0.99 {
		return strconv.FormatFloat(whole+1, 'f', -1, 64)
	}
	for _, f := range niceFractions {
		if math.Abs(frac-f.value) < 0.02 {
			if whole == 0 {
				return f.text
			}
			return strconv.FormatFloat(whole, 'f', -1, 64) + " " + f.text
		}
	}
	return strconv.FormatFloat(math.Round(v*100)/100, 'f', -1, 64)
}
