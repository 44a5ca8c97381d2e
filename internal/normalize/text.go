package normalize

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Accessor pulls a text value out of a decoded JSON object.
type Accessor func(obj map[string]any) (string, bool)

func field(key string) Accessor {
	return func(obj map[string]any) (string, bool) {
		v, ok := obj[key]
		if !ok {
			return "", false
		}
		s := scalarString(v)
		return s, s != ""
	}
}

// TextAccessors is the priority order used to read text out of an
// ingredient or instruction object.
var TextAccessors = []Accessor{
	field("name"),
	field("text"),
	field("ingredient"),
	field("description"),
	field("value"),
}

// ObjectText applies TextAccessors in order, falling back to the JSON form
// of the object.
func ObjectText(obj map[string]any) string {
	for _, get := range TextAccessors {
		if s, ok := get(obj); ok {
			return s
		}
	}
	b, err := json.Marshal(obj)
	if err != nil {
		return ""
	}
	return string(b)
}

// AnyText coerces a loosely typed value to a string.
func AnyText(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case map[string]any:
		return ObjectText(t)
	case []any:
		parts := make([]string, 0, len(t))
		for _, e := range t {
			if s := AnyText(e); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, " ")
	default:
		return scalarString(v)
	}
}

func scalarString(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		return strconv.FormatBool(t)
	case jsoniter.Number:
		return t.String()
	}
	return ""
}

var (
	tagPattern    = regexp.MustCompile(`(?s)<!--.*?-->|</?[A-Za-z][^<>]*>`)
	brPattern     = regexp.MustCompile(`(?i)<br\s*/?>`)
	spacePattern  = regexp.MustCompile(`\s+`)
	bulletPattern = regexp.MustCompile(`^(?:[-–—*•·▪◦●○►▸✓✔]+\s*|\d{1,3}[.)]\s+|\d{1,3}[.)]$|\(\d{1,3}\)\s*|(?i:step)\s*\d{1,3}\s*[:.)-]?\s*)`)
	intPattern    = regexp.MustCompile(`\d+`)
)

// StripTags removes markup, turning <br> into newlines. Only real tags and
// comments are removed, so a bare "<" or ">" in prose survives.
func StripTags(s string) string {
	s = brPattern.ReplaceAllString(s, "\n")
	return tagPattern.ReplaceAllString(s, " ")
}

// CollapseSpace squeezes every whitespace run to one space and trims.
func CollapseSpace(s string) string {
	return strings.TrimSpace(spacePattern.ReplaceAllString(s, " "))
}

// CleanText strips markup, decodes entities and collapses whitespace.
func CleanText(s string) string {
	return CollapseSpace(DecodeHTMLEntities(StripTags(s)))
}

// TidyText decodes entities and collapses whitespace without touching
// markup. It is safe on text that CleanText already produced, where a
// decoded "&lt;" must stay a literal "<".
func TidyText(s string) string {
	return CollapseSpace(DecodeHTMLEntities(s))
}

// StripListMarker drops leading bullets and step numbers. Quantities such
// as "2 cups" or "1.5 l" are left alone.
func StripListMarker(s string) string {
	for {
		next := strings.TrimSpace(bulletPattern.ReplaceAllString(s, ""))
		if next == s {
			return s
		}
		s = next
	}
}

// Capitalize upper-cases the first rune.
func Capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError || unicode.IsUpper(r) {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

func hasTerminalPunctuation(s string) bool {
	r, _ := utf8.DecodeLastRuneInString(s)
	return strings.ContainsRune(".!?:;…", r)
}

const ingredientPeriodMinLen = 10

// NormalizeIngredient cleans one ingredient. A period is added only when the
// cleaned text is longer than ten characters.
func NormalizeIngredient(v any) string {
	s := normalizeLine(v)
	if utf8.RuneCountInString(s) > ingredientPeriodMinLen && !hasTerminalPunctuation(s) {
		s += "."
	}
	return s
}

// NormalizeInstruction cleans one instruction step. Every non-empty step ends
// with terminal punctuation.
func NormalizeInstruction(v any) string {
	s := normalizeLine(v)
	if s != "" && !hasTerminalPunctuation(s) {
		s += "."
	}
	return s
}

func normalizeLine(v any) string {
	s := TidyText(AnyText(v))
	s = StripListMarker(s)
	return Capitalize(s)
}

// FirstInt returns the first integer found in s.
func FirstInt(s string) (int, bool) {
	m := intPattern.FindString(s)
	if m == "" {
		return 0, false
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return 0, false
	}
	return n, true
}

// ExtractFirstValue reads a category-like field that may be a string, a
// JSON-encoded string, an array or an object.
func ExtractFirstValue(v any) string {
	switch t := v.(type) {
	case string:
		s := strings.TrimSpace(t)
		if looksLikeJSON(s) {
			var decoded any
			if err := json.UnmarshalFromString(s, &decoded); err == nil {
				return ExtractFirstValue(decoded)
			}
		}
		if i := strings.IndexByte(s, ','); i > 0 {
			s = strings.TrimSpace(s[:i])
		}
		return CleanText(s)
	case []string:
		for _, e := range t {
			if s := ExtractFirstValue(e); s != "" {
				return s
			}
		}
	case []any:
		for _, e := range t {
			if s := ExtractFirstValue(e); s != "" {
				return s
			}
		}
	case map[string]any:
		for _, get := range TextAccessors {
			if s, ok := get(t); ok {
				return CleanText(s)
			}
		}
		if s, ok := t["@value"].(string); ok {
			return CleanText(s)
		}
	default:
		return scalarString(v)
	}
	return ""
}

func looksLikeJSON(s string) bool {
	return (strings.HasPrefix(s, "[") && strings.HasSuffix(s, "]")) ||
		(strings.HasPrefix(s, "{") && strings.HasSuffix(s, "}"))
}

// sortedKeys orders object keys numerically when they are all integers.
func sortedKeys(obj map[string]any) []string {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, errA := strconv.Atoi(keys[i])
		b, errB := strconv.Atoi(keys[j])
		if errA == nil && errB == nil {
			return a < b
		}
		return keys[i] < keys[j]
	})
	return keys
}
