// Package checker decides whether a finished history violates the
// invariants promised by a workload. Every checker is a pure function of
// the history and its own configuration; none of them log, block or
// mutate their input.
package checker

import (
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"histcheck/internal/history"
)

// Verdict is the structured outcome of one checker run.
type Verdict interface {
	IsValid() bool
}

// Checker analyzes a history.
type Checker interface {
	Check(h history.History) Verdict
}

// Func adapts an ordinary function to the Checker interface.
type Func func(h history.History) Verdict

// Check calls f(h).
func (f Func) Check(h history.History) Verdict { return f(h) }

// ComposedVerdict merges the verdicts of several named checkers.
type ComposedVerdict struct {
	Valid   bool               `json:"valid?"`
	Results map[string]Verdict `json:"results"`
}

func (v *ComposedVerdict) IsValid() bool { return v.Valid }

// Names returns the checker names in sorted order.
func (v *ComposedVerdict) Names() []string {
	names := maps.Keys(v.Results)
	slices.Sort(names)
	return names
}

// Compose runs every named checker against the same history, in name
// order, and is valid only if each of them is.
type Compose map[string]Checker

func (c Compose) Check(h history.History) Verdict {
	out := &ComposedVerdict{Valid: true, Results: make(map[string]Verdict, len(c))}
	names := maps.Keys(c)
	slices.Sort(names)
	for _, name := range names {
		v := c[name].Check(h)
		out.Results[name] = v
		out.Valid = out.Valid && v.IsValid()
	}
	return out
}
