package recipe

import (
	"strconv"
	"strings"

	jsoniter "github.com/json-iterator/go"

	"recipe-extraction-api/internal/normalize"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// NotAvailable marks a missing time.
const NotAvailable TimeValue = "N/A"

// TimeValue is either a formatted time like "1 hr 15 min" or a bare minute
// count. JSON numbers and strings are both accepted.
type TimeValue string

// Minutes parses the value. ok is false for "N/A" and anything unreadable.
func (t TimeValue) Minutes() (float64, bool) {
	if t == NotAvailable {
		return 0, false
	}
	return normalize.ParseTimeText(string(t))
}

// IsNumeric reports whether the value is a bare minute count.
func (t TimeValue) IsNumeric() bool {
	_, err := strconv.ParseFloat(strings.TrimSpace(string(t)), 64)
	return err == nil
}

// MarshalJSON keeps bare minute counts as JSON numbers.
func (t TimeValue) MarshalJSON() ([]byte, error) {
	if t.IsNumeric() {
		return []byte(strings.TrimSpace(string(t))), nil
	}
	return json.Marshal(string(t))
}

func (t *TimeValue) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*t = timeFromAny(v)
	return nil
}

// FormatTime renders minutes, or N/A when unknown.
func FormatTime(minutes float64) TimeValue {
	if s := normalize.FormatMinutes(minutes); s != "" {
		return TimeValue(s)
	}
	return NotAvailable
}

// timeFromAny keeps readable values as they are and turns the rest into N/A.
func timeFromAny(v any) TimeValue {
	switch t := v.(type) {
	case float64:
		if t <= 0 {
			return NotAvailable
		}
		return TimeValue(strconv.FormatFloat(t, 'f', -1, 64))
	case int:
		if t <= 0 {
			return NotAvailable
		}
		return TimeValue(strconv.Itoa(t))
	case string:
		s := strings.TrimSpace(t)
		if m, ok := normalize.ParseTimeText(s); ok && m > 0 {
			if strings.HasPrefix(strings.ToUpper(s), "P") {
				return FormatTime(m)
			}
			return TimeValue(s)
		}
	}
	return NotAvailable
}

func lower(s string) string { return strings.ToLower(strings.TrimSpace(s)) }
