package models

import (
	"fmt"
	"slices"
)

// Report accumulates the warnings of one walk. It is not safe for
// concurrent use; parallel analyses use one Report each.
type Report struct {
	warnings []Warning
}

func NewReport() *Report {
	return &Report{warnings: make([]Warning, 0)}
}

func (r *Report) Add(w Warning) {
	r.warnings = append(r.warnings, w)
}

func (r *Report) Len() int {
	return len(r.warnings)
}

// Warnings returns the warnings in the order they were added.
func (r *Report) Warnings() []Warning {
	return slices.Clone(r.warnings)
}

// Any reports whether some warning matches m.
func (r *Report) Any(m Match) bool {
	return slices.ContainsFunc(r.warnings, m.Matches)
}

// Exactly reports whether every matcher matches some warning and every
// warning is matched by some matcher.
func (r *Report) Exactly(ms ...Match) bool {
	for _, m := range ms {
		if !r.Any(m) {
			return false
		}
	}
	for _, w := range r.warnings {
		matched := false
		for _, m := range ms {
			if m.Matches(w) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	return true
}

// Match selects warnings by field. Zero-valued fields match anything.
type Match struct {
	SmellType  SmellType
	Context    string
	Lines      []int
	Message    string
	Source     string
	Parameters map[string]any
}

func (m Match) Matches(w Warning) bool {
	if m.SmellType != "" && m.SmellType != w.SmellType {
		return false
	}
	if m.Context != "" && m.Context != w.Context {
		return false
	}
	if m.Message != "" && m.Message != w.Message {
		return false
	}
	if m.Source != "" && m.Source != w.Source {
		return false
	}
	if m.Lines != nil && !slices.Equal(m.Lines, w.Lines) {
		return false
	}
	for key, want := range m.Parameters {
		got, ok := w.Parameters[key]
		if !ok || fmt.Sprint(got) != fmt.Sprint(want) {
			return false
		}
	}
	return true
}
