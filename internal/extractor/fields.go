package extractor

import (
	"regexp"
	"strings"

	"recipe-extraction-api/internal/normalize"
)

// cleanLines cleans each line and drops empties.
func cleanLines(lines []string) []string {
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		if l = normalize.CleanText(l); l != "" {
			out = append(out, l)
		}
	}
	return out
}

// dedupe drops exact repeats, keeping the first occurrence.
func dedupe(lines []string) []string {
	out := make([]string, 0, len(lines))
	seen := make(map[string]bool, len(lines))
	for _, l := range lines {
		if !seen[l] {
			seen[l] = true
			out = append(out, l)
		}
	}
	return out
}

// splitKeywords reads a comma separated keyword list or an array of them.
func splitKeywords(v any) []string {
	var parts []string
	switch t := v.(type) {
	case string:
		parts = strings.Split(t, ",")
	case []any:
		for _, e := range t {
			parts = append(parts, splitKeywords(e)...)
		}
	case []string:
		for _, e := range t {
			parts = append(parts, strings.Split(e, ",")...)
		}
	}
	return dedupe(cleanLines(parts))
}

var dietPattern = regexp.MustCompile(`(?i)(?:https?://schema\.org/)?([A-Za-z]+?)Diet$`)

// dietName turns "https://schema.org/GlutenFreeDiet" into "Gluten Free".
func dietName(s string) string {
	s = strings.TrimSpace(s)
	if m := dietPattern.FindStringSubmatch(s); m != nil {
		s = m[1]
	}
	var b strings.Builder
	for i, r := range s {
		if i > 0 && r >= 'A' && r <= 'Z' {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	return normalize.CollapseSpace(b.String())
}

func dietNames(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if d := dietName(v); d != "" {
			out = append(out, d)
		}
	}
	return dedupe(cleanLines(out))
}

func minutes(s string) float64 {
	m, ok := normalize.ParseTimeText(s)
	if !ok {
		return 0
	}
	return m
}

func firstInt(s string) int {
	n, _ := normalize.FirstInt(s)
	return n
}
