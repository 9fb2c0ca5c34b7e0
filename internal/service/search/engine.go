// Package search filters a record list by free text, categorical equality and
// date ranges. It never modifies its input.
package search

import (
	"strings"
	"time"

	"github.com/Dahbi-Dev/Excel-easy/internal/model"
	"github.com/Dahbi-Dev/Excel-easy/pkg/dateutil"
)

// Filter returns the records of src that satisfy f, in source order. With an
// empty filter state src itself is returned.
func Filter(src model.RecordList, f model.FilterState) model.RecordList {
	if f.IsEmpty() {
		return src
	}
	m := newMatcher(f)
	out := make(model.RecordList, 0, len(src))
	for _, r := range src {
		if m.match(r) {
			out = append(out, r)
		}
	}
	return out
}

// Indices returns the source positions of the records that satisfy f.
func Indices(src model.RecordList, f model.FilterState) []int {
	out := make([]int, 0, len(src))
	if f.IsEmpty() {
		for i := range src {
			out = append(out, i)
		}
		return out
	}
	m := newMatcher(f)
	for i, r := range src {
		if m.match(r) {
			out = append(out, i)
		}
	}
	return out
}

// Match reports whether a single record satisfies f.
func Match(r model.Record, f model.FilterState) bool {
	if f.IsEmpty() {
		return true
	}
	return newMatcher(f).match(r)
}

type bound struct {
	start, end       time.Time
	hasStart, hasEnd bool
	// invalid is set when a bound is present but unparseable; nothing passes.
	invalid bool
}

type matcher struct {
	query   string
	filters map[string]string
	ranges  map[string]bound
}

func newMatcher(f model.FilterState) *matcher {
	m := &matcher{
		query:   strings.ToLower(strings.TrimSpace(f.Query)),
		filters: f.Filters,
		ranges:  make(map[string]bound, len(f.Ranges)),
	}
	for field, r := range f.Ranges {
		if !r.IsSet() {
			continue
		}
		var b bound
		if s := strings.TrimSpace(r.Start); s != "" {
			t, ok := dateutil.ParseString(s)
			b.start, b.hasStart = t, true
			b.invalid = b.invalid || !ok
		}
		if e := strings.TrimSpace(r.End); e != "" {
			t, ok := dateutil.ParseString(e)
			b.end, b.hasEnd = t, true
			b.invalid = b.invalid || !ok
		}
		m.ranges[field] = b
	}
	return m
}

func (m *matcher) match(r model.Record) bool {
	return m.matchText(r) && m.matchFilters(r) && m.matchRanges(r)
}

func (m *matcher) matchText(r model.Record) bool {
	if m.query == "" {
		return true
	}
	for _, field := range model.SearchableFields {
		if strings.Contains(strings.ToLower(r.Get(field)), m.query) {
			return true
		}
	}
	return false
}

func (m *matcher) matchFilters(r model.Record) bool {
	for field, want := range m.filters {
		if r.Get(field) != want {
			return false
		}
	}
	return true
}

func (m *matcher) matchRanges(r model.Record) bool {
	for field, b := range m.ranges {
		if b.invalid {
			return false
		}
		t, ok := dateutil.ParseString(r.Get(field))
		if !ok {
			return false
		}
		if b.hasStart && t.Before(b.start) {
			return false
		}
		if b.hasEnd && t.After(b.end) {
			return false
		}
	}
	return true
}
