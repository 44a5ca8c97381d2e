package normalize

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUndecodable is returned when a value cannot be read as a list of strings.
var ErrUndecodable = errors.New("value is not a string list")

var lineSplitter = strings.NewReplacer("\r\n", "\n", "\r", "\n")

// DecodeStringArray reads a field that may be a native array, a JSON-encoded
// array or object, a plain object or a newline separated string. A string
// that fails to decode as JSON is split into lines instead. Elements are
// trimmed and empty ones dropped; text is not otherwise cleaned. Callers
// default to an empty list on error.
func DecodeStringArray(v any) ([]string, error) {
	switch t := v.(type) {
	case nil:
		return []string{}, nil
	case []string:
		return compact(t), nil
	case []any:
		out := make([]string, 0, len(t))
		for _, e := range t {
			switch inner := e.(type) {
			case []any, map[string]any:
				nested, err := DecodeStringArray(inner)
				if err != nil {
					return nil, err
				}
				out = append(out, nested...)
			default:
				if s := strings.TrimSpace(AnyText(inner)); s != "" {
					out = append(out, s)
				}
			}
		}
		return out, nil
	case map[string]any:
		return decodeObject(t)
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return []string{}, nil
		}
		// Text that only looks like JSON, such as "[Optional] toast", is
		// read as plain lines.
		if looksLikeJSON(s) {
			var decoded any
			if err := json.UnmarshalFromString(s, &decoded); err == nil {
				return DecodeStringArray(decoded)
			}
		}
		return SplitLines(s), nil
	}
	return nil, fmt.Errorf("%w: unsupported type %T", ErrUndecodable, v)
}

func decodeObject(obj map[string]any) ([]string, error) {
	// HowToSection and ItemList keep their steps here.
	if items, ok := obj["itemListElement"]; ok {
		return DecodeStringArray(items)
	}
	if s, ok := obj["text"].(string); ok && strings.TrimSpace(s) != "" {
		return []string{strings.TrimSpace(s)}, nil
	}
	for _, get := range TextAccessors {
		if s, ok := get(obj); ok {
			return []string{s}, nil
		}
	}
	out := []string{}
	for _, k := range sortedKeys(obj) {
		nested, err := DecodeStringArray(obj[k])
		if err != nil {
			continue
		}
		out = append(out, nested...)
	}
	return out, nil
}

// SplitLines splits on newlines and <br>, dropping blank lines.
func SplitLines(s string) []string {
	s = lineSplitter.Replace(brPattern.ReplaceAllString(s, "\n"))
	return compact(strings.Split(s, "\n"))
}

func compact(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
