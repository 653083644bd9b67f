package diagnostic

import (
	"fmt"
	"sort"

	"github.com/cvet-dev/cvet/cvet/errors"
)

// A Collector aggregates the diagnostics of one analysis pass. It is
// created per pass and passed into every phase; no diagnostic state
// survives a pass. Append-only until DrainSorted.
type Collector struct {
	diagnostics []Diagnostic
	drained     bool
}

func NewCollector() *Collector {
	return &Collector{
		diagnostics: make([]Diagnostic, 0),
	}
}

func (self *Collector) Emit(diag Diagnostic) {
	if self.drained {
		panic("Emit was called on a drained collector; every pass needs a fresh one")
	}
	self.diagnostics = append(self.diagnostics, diag)
}

// Error is a convenience wrapper over Emit for plain errors.
func (self *Collector) Error(phase Phase, code Code, message string, notes []string, span errors.Span) {
	self.Emit(Diagnostic{
		Phase:   phase,
		Level:   LevelError,
		Code:    code,
		Message: message,
		Notes:   notes,
		Span:    span,
	})
}

func (self *Collector) Warn(phase Phase, code Code, message string, notes []string, span errors.Span) {
	self.Emit(Diagnostic{
		Phase:   phase,
		Level:   LevelWarning,
		Code:    code,
		Message: message,
		Notes:   notes,
		Span:    span,
	})
}

// HasErrors reports whether any error-level diagnostic was emitted so far.
func (self *Collector) HasErrors() bool {
	for _, diag := range self.diagnostics {
		if diag.Level == LevelError {
			return true
		}
	}
	return false
}

// Len returns the number of diagnostics emitted so far, before dedup.
func (self *Collector) Len() int {
	return len(self.diagnostics)
}

// DrainSorted finishes the pass: diagnostics are ordered by span start,
// ties broken by emission order, and exact duplicates (same code, span
// and message) are collapsed to one. The collector must not be used
// afterwards.
func (self *Collector) DrainSorted() []Diagnostic {
	self.drained = true

	sort.SliceStable(self.diagnostics, func(i int, j int) bool {
		return self.diagnostics[i].Span.Start.Index < self.diagnostics[j].Span.Start.Index
	})

	seen := make(map[string]struct{}, len(self.diagnostics))
	out := make([]Diagnostic, 0, len(self.diagnostics))
	for _, diag := range self.diagnostics {
		key := fmt.Sprintf("%s|%d|%d|%s", diag.Code, diag.Span.Start.Index, diag.Span.End.Index, diag.Message)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, diag)
	}

	return out
}
