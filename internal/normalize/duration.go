package normalize

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

var isoDurationPattern = regexp.MustCompile(`^P(?:(\d+(?:\.\d+)?)D)?(?:T(?:(\d+(?:\.\d+)?)H)?(?:(\d+(?:\.\d+)?)M)?(?:(\d+(?:\.\d+)?)S)?)?$`)

// ParseISO8601Duration converts an ISO-8601 duration such as "PT1H30M" to
// minutes. Seconds become fractional minutes. ok is false for empty or
// non-matching input.
func ParseISO8601Duration(s string) (minutes float64, ok bool) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" || s == "P" || s == "PT" || strings.HasSuffix(s, "T") {
		return 0, false
	}
	m := isoDurationPattern.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}

	units := []float64{24 * 60, 60, 1, 1.0 / 60}
	for i, unit := range units {
		if m[i+1] == "" {
			continue
		}
		n, err := strconv.ParseFloat(m[i+1], 64)
		if err != nil {
			return 0, false
		}
		minutes += n * unit
	}
	return minutes, true
}

var (
	daysPattern    = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*days?`)
	hoursPattern   = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(?:hours?|hrs?|h)`)
	minutesPattern = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(?:minutes?|mins?|m)`)
)

// ParseTimeText reads free text like "1 hour 30 mins", "45 min" or a bare
// number of minutes. ISO-8601 durations are accepted as well.
func ParseTimeText(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if minutes, ok := ParseISO8601Duration(s); ok {
		return minutes, true
	}
	if n, err := strconv.ParseFloat(s, 64); err == nil {
		return n, n >= 0
	}

	var total float64
	found := false
	for _, p := range []struct {
		re   *regexp.Regexp
		unit float64
	}{
		{daysPattern, 24 * 60},
		{hoursPattern, 60},
		{minutesPattern, 1},
	} {
		for _, m := range p.re.FindAllStringSubmatch(s, -1) {
			n, err := strconv.ParseFloat(m[1], 64)
			if err != nil {
				continue
			}
			total += n * p.unit
			found = true
		}
	}
	return total, found
}

// FormatMinutes renders minutes as "45 min", "2 hr" or "1 hr 15 min".
// Non-positive input yields "".
func FormatMinutes(minutes float64) string {
	total := int(math.Round(minutes))
	if total <= 0 {
		return ""
	}
	h, m := total/60, total%60
	switch {
	case h == 0:
		return fmt.Sprintf("%d min", m)
	case m == 0:
		return fmt.Sprintf("%d hr", h)
	default:
		return fmt.Sprintf("%d hr %d min", h, m)
	}
}
