package normalize

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

var entityPattern = regexp.MustCompile(`&(#[xX][0-9a-fA-F]+|#[0-9]+|[a-zA-Z][a-zA-Z0-9]*);`)

var namedEntities = map[string]string{
	"amp":    "&",
	"lt":     "<",
	"gt":     ">",
	"quot":   `"`,
	"apos":   "'",
	"nbsp":   " ",
	"ndash":  "–",
	"mdash":  "—",
	"hellip": "…",
	"lsquo":  "‘",
	"rsquo":  "’",
	"ldquo":  "“",
	"rdquo":  "”",
	"laquo":  "«",
	"raquo":  "»",
	"bull":   "•",
	"middot": "·",
	"deg":    "°",
	"frac12": "½",
	"frac13": "⅓",
	"frac23": "⅔",
	"frac14": "¼",
	"frac34": "¾",
	"times":  "×",
	"copy":   "©",
	"reg":    "®",
	"trade":  "™",
	"eacute": "é",
	"egrave": "è",
	"ecirc":  "ê",
	"aacute": "á",
	"agrave": "à",
	"iacute": "í",
	"oacute": "ó",
	"uacute": "ú",
	"auml":   "ä",
	"ouml":   "ö",
	"uuml":   "ü",
	"szlig":  "ß",
	"ccedil": "ç",
	"ntilde": "ñ",
	"iexcl":  "¡",
	"iquest": "¿",
}

// DecodeHTMLEntities replaces named, decimal and hex entities. It repeats
// until nothing changes, so double-encoded input like "&amp;amp;" decodes
// fully and decoding twice equals decoding once.
func DecodeHTMLEntities(s string) string {
	if !strings.Contains(s, "&") {
		return s
	}
	for {
		next := entityPattern.ReplaceAllStringFunc(s, decodeEntity)
		if next == s {
			return s
		}
		s = next
	}
}

func decodeEntity(entity string) string {
	body := entity[1 : len(entity)-1]
	if body[0] != '#' {
		if v, ok := namedEntities[body]; ok {
			return v
		}
		return entity
	}

	var (
		n   uint64
		err error
	)
	if len(body) > 1 && (body[1] == 'x' || body[1] == 'X') {
		n, err = strconv.ParseUint(body[2:], 16, 32)
	} else {
		n, err = strconv.ParseUint(body[1:], 10, 32)
	}
	if err != nil || n == 0 {
		return entity
	}
	r := rune(n)
	if !utf8.ValidRune(r) {
		return entity
	}
	if r == 0xA0 {
		return " "
	}
	return string(r)
}
