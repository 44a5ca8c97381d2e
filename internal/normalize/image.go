package normalize

import (
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// imageKeys are tried in order on image objects.
var imageKeys = []string{"url", "src", "image", "imageUrl", "contentUrl"}

// ExtractFirstImageURL returns the best image URL found in v, or "" when the
// shape is not recognised. Callers supply their own placeholder.
func ExtractFirstImageURL(v any, base string) string {
	if c := ImageCandidates(v, base); len(c) > 0 {
		return c[0]
	}
	return ""
}

// ImageCandidates lists every image URL in v. Inside arrays, entries that
// carry width and height come first, largest area first; the rest keep their
// order. Duplicates are dropped.
func ImageCandidates(v any, base string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, u := range collectImages(v, base, 0) {
		if u != "" && !seen[u] {
			seen[u] = true
			out = append(out, u)
		}
	}
	return out
}

const maxImageDepth = 4

func collectImages(v any, base string, depth int) []string {
	if depth > maxImageDepth {
		return nil
	}
	switch t := v.(type) {
	case string:
		s := strings.TrimSpace(t)
		if looksLikeJSON(s) {
			var decoded any
			if err := json.UnmarshalFromString(s, &decoded); err == nil {
				return collectImages(decoded, base, depth+1)
			}
			return nil
		}
		if u := resolveImageURL(s, base); u != "" {
			return []string{u}
		}
	case []string:
		var out []string
		for _, e := range t {
			out = append(out, collectImages(e, base, depth+1)...)
		}
		return out
	case []any:
		return collectArrayImages(t, base, depth)
	case map[string]any:
		for _, key := range imageKeys {
			if inner, ok := t[key]; ok {
				if urls := collectImages(inner, base, depth+1); len(urls) > 0 {
					return urls
				}
			}
		}
	}
	return nil
}

func collectArrayImages(items []any, base string, depth int) []string {
	type sized struct {
		url  string
		area float64
	}
	var withSize []sized
	var plain []string

	for _, item := range items {
		obj, isObj := item.(map[string]any)
		if isObj {
			w, okW := toFloat(obj["width"])
			h, okH := toFloat(obj["height"])
			if okW && okH && w > 0 && h > 0 {
				if urls := collectImages(obj, base, depth+1); len(urls) > 0 {
					withSize = append(withSize, sized{url: urls[0], area: w * h})
					continue
				}
			}
		}
		plain = append(plain, collectImages(item, base, depth+1)...)
	}

	sort.SliceStable(withSize, func(i, j int) bool { return withSize[i].area > withSize[j].area })

	out := make([]string, 0, len(withSize)+len(plain))
	for _, s := range withSize {
		out = append(out, s.url)
	}
	return append(out, plain...)
}

func resolveImageURL(s, base string) string {
	if s == "" || strings.HasPrefix(s, "data:") {
		return ""
	}
	if strings.HasPrefix(s, "//") {
		return "https:" + s
	}
	lower := strings.ToLower(s)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return s
	}
	if base == "" {
		return ""
	}
	b, err := url.Parse(base)
	if err != nil || b.Host == "" {
		return ""
	}
	ref, err := url.Parse(s)
	if err != nil {
		return ""
	}
	return b.ResolveReference(ref).String()
}

func toFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case int:
		return float64(t), true
	case string:
		t = strings.TrimSuffix(strings.TrimSpace(t), "px")
		f, err := strconv.ParseFloat(t, 64)
		return f, err == nil
	case map[string]any:
		// QuantitativeValue: {"@type":"QuantitativeValue","value":800}
		return toFloat(t["value"])
	}
	return 0, false
}
