package model

import "strings"

// DateRange bounds a date field; an empty bound is unset.
type DateRange struct {
	Start string `json:"start,omitempty"`
	End   string `json:"end,omitempty"`
}

// IsSet reports whether at least one bound is present.
func (d DateRange) IsSet() bool {
	return strings.TrimSpace(d.Start) != "" || strings.TrimSpace(d.End) != ""
}

// FilterState is the search session: free text, categorical equality
// constraints and per-field date ranges. It is never persisted.
type FilterState struct {
	Query   string               `json:"query"`
	Filters map[string]string    `json:"filters,omitempty"`
	Ranges  map[string]DateRange `json:"ranges,omitempty"`
}

// IsEmpty reports whether no constraint is active.
func (f FilterState) IsEmpty() bool {
	if strings.TrimSpace(f.Query) != "" || len(f.Filters) > 0 {
		return false
	}
	for _, r := range f.Ranges {
		if r.IsSet() {
			return false
		}
	}
	return true
}

// Toggle sets field=value, or clears it when that exact constraint is already
// active. Toggling twice restores the previous state.
func (f *FilterState) Toggle(field, value string) {
	if cur, ok := f.Filters[field]; ok && cur == value {
		delete(f.Filters, field)
		if len(f.Filters) == 0 {
			f.Filters = nil
		}
		return
	}
	if f.Filters == nil {
		f.Filters = make(map[string]string)
	}
	f.Filters[field] = value
}

// SetRange replaces the date range of a field; an empty range removes it.
func (f *FilterState) SetRange(field string, r DateRange) {
	if !r.IsSet() {
		delete(f.Ranges, field)
		if len(f.Ranges) == 0 {
			f.Ranges = nil
		}
		return
	}
	if f.Ranges == nil {
		f.Ranges = make(map[string]DateRange)
	}
	f.Ranges[field] = r
}

// Reset clears every constraint.
func (f *FilterState) Reset() {
	*f = FilterState{}
}

// Clone returns an independent copy.
func (f FilterState) Clone() FilterState {
	c := FilterState{Query: f.Query}
	if f.Filters != nil {
		c.Filters = make(map[string]string, len(f.Filters))
		for k, v := range f.Filters {
			c.Filters[k] = v
		}
	}
	if f.Ranges != nil {
		c.Ranges = make(map[string]DateRange, len(f.Ranges))
		for k, v := range f.Ranges {
			c.Ranges[k] = v
		}
	}
	return c
}
