package checker

import (
	"histcheck/internal/history"
)

// SetVerdict is the outcome of the set checker. Every category is also
// reported as a fraction of the attempted adds.
type SetVerdict struct {
	Valid bool   `json:"valid?"`
	Error string `json:"error,omitempty"`

	AttemptCount      int `json:"attempt-count"`
	AcknowledgedCount int `json:"acknowledged-count"`
	OkCount           int `json:"ok-count"`
	LostCount         int `json:"lost-count"`
	RecoveredCount    int `json:"recovered-count"`
	UnexpectedCount   int `json:"unexpected-count"`
	DuplicatedCount   int `json:"duplicated-count"`

	OkFrac           float64 `json:"ok-frac"`
	AcknowledgedFrac float64 `json:"acknowledged-frac"`
	LostFrac         float64 `json:"lost-frac"`
	RecoveredFrac    float64 `json:"recovered-frac"`
	UnexpectedFrac   float64 `json:"unexpected-frac"`
	DuplicatedFrac   float64 `json:"duplicated-frac"`

	Ok         []int64 `json:"ok"`
	Lost       []int64 `json:"lost"`
	Recovered  []int64 `json:"recovered"`
	Unexpected []int64 `json:"unexpected"`
	Duplicates []int64 `json:"duplicates"`

	// Unreadable counts elements of the final read that were not integers.
	// They match no attempt and so count as unexpected.
	Unreadable int `json:"unreadable"`
}

func (v *SetVerdict) IsValid() bool { return v.Valid }

// Set checks an add/read workload against a plain set: every acknowledged
// add must be in the final read, nothing may be read that was never
// attempted, and no element may be read twice.
type Set struct{}

// NewSet returns a set checker.
func NewSet() *Set { return &Set{} }

func (*Set) Check(h history.History) Verdict {
	final, ok := h.LastOk(history.Read)
	if !ok {
		return &SetVerdict{Valid: false, Error: "Set was never read"}
	}

	attempts := make(set[int64])
	acknowledged := make(set[int64])
	for _, op := range h {
		if op.F != history.Add {
			continue
		}
		v := op.Int()
		if v == nil {
			continue
		}
		switch op.Type {
		case history.Invoke:
			attempts.add(*v)
		case history.Ok:
			acknowledged.add(*v)
		}
	}

	var read []int64
	unreadable := 0
	for _, v := range final.Ints() {
		if v == nil {
			unreadable++
			continue
		}
		read = append(read, *v)
	}
	finalSet, dups := frequencies(read)

	okSet := finalSet.intersect(attempts)
	unexpected := finalSet.minus(attempts)
	lost := acknowledged.minus(finalSet)
	recovered := okSet.minus(acknowledged)

	n := len(attempts)
	unexpectedCount := len(unexpected) + unreadable
	return &SetVerdict{
		Valid: len(lost) == 0 && unexpectedCount == 0 && len(dups) == 0,

		AttemptCount:      n,
		AcknowledgedCount: len(acknowledged),
		OkCount:           len(okSet),
		LostCount:         len(lost),
		RecoveredCount:    len(recovered),
		UnexpectedCount:   unexpectedCount,
		DuplicatedCount:   len(dups),

		OkFrac:           Fraction(len(okSet), n),
		AcknowledgedFrac: Fraction(len(acknowledged), n),
		LostFrac:         Fraction(len(lost), n),
		RecoveredFrac:    Fraction(len(recovered), n),
		UnexpectedFrac:   Fraction(unexpectedCount, n),
		DuplicatedFrac:   Fraction(len(dups), n),

		Ok:         okSet.sorted(),
		Lost:       lost.sorted(),
		Recovered:  recovered.sorted(),
		Unexpected: unexpected.sorted(),
		Duplicates: dups,
		Unreadable: unreadable,
	}
}
