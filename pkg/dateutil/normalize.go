// Package dateutil turns the assorted date encodings found in patient sheets
// into a single display form.
package dateutil

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// DisplayLayout is the DD/MM/YYYY display form.
const DisplayLayout = "02/01/2006"

// ISOLayout is the YYYY-MM-DD form produced by date inputs.
const ISOLayout = "2006-01-02"

// Candidate layouts in priority order. An ambiguous value such as 01/02/2024
// resolves to the first layout that accepts it (day first), not to a locale.
var layouts = []string{
	"2006-1-2",
	"2/1/2006",
	"1/2/2006",
}

// serialEpoch is day 0 of the spreadsheet serial date system; 25569 is 1970-01-01.
var serialEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

// Normalize renders v as DD/MM/YYYY. Empty input gives "", and any value that
// cannot be interpreted is returned unchanged in its text form.
func Normalize(v any) string {
	if isEmpty(v) {
		return ""
	}
	if t, ok := Parse(v); ok {
		return t.Format(DisplayLayout)
	}
	return text(v)
}

// Parse interprets v as a calendar date at midnight UTC. Numbers are
// spreadsheet serial dates; strings go through the candidate layouts and then
// a free-form parse.
func Parse(v any) (time.Time, bool) {
	if isEmpty(v) {
		return time.Time{}, false
	}
	if serial, ok := number(v); ok {
		return FromSerial(serial)
	}
	s, ok := v.(string)
	if !ok {
		return time.Time{}, false
	}
	return ParseString(s)
}

// ParseString applies the string rules of Parse.
func ParseString(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	t, err := parseAny(s)
	if err != nil {
		return time.Time{}, false
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
}

// parseAny guards the free-form parser, which can panic on some inputs.
func parseAny(s string) (t time.Time, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("dateparse: %v", r)
		}
	}()
	return dateparse.ParseIn(s, time.UTC)
}

// FromSerial converts a spreadsheet serial day count; the fractional part
// (time of day) is dropped.
func FromSerial(serial float64) (time.Time, bool) {
	if math.IsNaN(serial) || math.IsInf(serial, 0) {
		return time.Time{}, false
	}
	days := int(math.Floor(serial))
	return serialEpoch.AddDate(0, 0, days), true
}

// Today returns the current date in ISO form.
func Today() string {
	return time.Now().Format(ISOLayout)
}

func isEmpty(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return x == ""
	}
	return false
}

func number(v any) (float64, bool) {
	switch x := v.(type) {
	case int:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	case uint:
		return float64(x), true
	case uint32:
		return float64(x), true
	case uint64:
		return float64(x), true
	case float32:
		return float64(x), true
	case float64:
		return x, true
	case json.Number:
		f, err := x.Float64()
		return f, err == nil
	}
	return 0, false
}

func text(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case fmt.Stringer:
		return x.String()
	}
	return fmt.Sprint(v)
}
