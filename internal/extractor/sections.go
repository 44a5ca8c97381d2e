package extractor

import (
	"regexp"
	"strings"

	"recipe-extraction-api/internal/normalize"
)

var (
	ingredientHeading  = regexp.MustCompile(`(?i)^(?:[#*•\-\s]*)(?:ingredients?|zutaten|you(?:'ll)? need|what you need)\s*:?\s*$`)
	instructionHeading = regexp.MustCompile(`(?i)^(?:[#*•\-\s]*)(?:instructions?|directions?|method|steps?|preparation|how to make(?: it)?|zubereitung)\s*:?\s*$`)
	otherHeading       = regexp.MustCompile(`(?i)^(?:[#*•\-\s]*)(?:notes?|nutrition|equipment|tips?|links?|music|follow|subscribe|chapters?|timestamps?)\b.*:?\s*$`)
)

// textSections splits free text such as a video description or a PDF
// recipe card into ingredient and instruction lines by their headings.
func textSections(text string) (ingredients, instructions []string) {
	var current *[]string
	for _, line := range normalize.SplitLines(text) {
		line = normalize.CleanText(line)
		switch {
		case ingredientHeading.MatchString(line):
			current = &ingredients
			continue
		case instructionHeading.MatchString(line):
			current = &instructions
			continue
		case otherHeading.MatchString(line) && len(line) < 40:
			current = nil
			continue
		}
		if current != nil && line != "" {
			*current = append(*current, line)
		}
	}
	return ingredients, instructions
}

// firstLine returns the first non-empty line of text.
func firstLine(text string) string {
	for _, l := range normalize.SplitLines(text) {
		if l = normalize.CleanText(l); l != "" {
			return strings.TrimSpace(l)
		}
	}
	return ""
}
