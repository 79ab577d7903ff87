package checker

import (
	"histcheck/internal/history"
)

// DefaultPartitions is the number of independent sequences the split
// monotonic workload spreads its inserts over.
const DefaultPartitions = 5

// Violation is a pair of consecutive rows of the final read that breaks an
// ordering rule. Index is the position of Row within the rows checked.
type Violation struct {
	Index int         `json:"index"`
	Prev  history.Row `json:"prev"`
	Row   history.Row `json:"row"`
}

// MonotonicVerdict is the outcome of the monotonic checker.
type MonotonicVerdict struct {
	Valid bool   `json:"valid?"`
	Error string `json:"error,omitempty"`

	AddCount int `json:"add-count"`
	RowCount int `json:"row-count"`

	Lost          []int64     `json:"lost"`
	Duplicates    []int64     `json:"duplicates"`
	OrderByErrors []Violation `json:"order-by-errors"`
	ValueReorders []Violation `json:"value-reorders"`

	RetryFrac float64 `json:"retry-frac"`
	AbortFrac float64 `json:"abort-frac"`
}

func (v *MonotonicVerdict) IsValid() bool { return v.Valid }

// Monotonic checks a single increasing sequence. The final read claims to
// return rows ordered by commit timestamp; each row's value must then be
// strictly greater than its predecessor's.
type Monotonic struct{}

// NewMonotonic returns a monotonic checker.
func NewMonotonic() *Monotonic { return &Monotonic{} }

func (*Monotonic) Check(h history.History) Verdict {
	final, ok := h.LastOk(history.Read)
	if !ok {
		return &MonotonicVerdict{Valid: false, Error: "Monotonic table was never read"}
	}
	rows := final.Rows()
	base := analyzeSequence(h, rows)
	orderBy, reorders := scan(rows)

	return &MonotonicVerdict{
		Valid:         base.valid() && len(orderBy) == 0 && len(reorders) == 0,
		AddCount:      base.adds,
		RowCount:      len(rows),
		Lost:          base.lost,
		Duplicates:    base.dups,
		OrderByErrors: orderBy,
		ValueReorders: reorders,
		RetryFrac:     base.retryFrac,
		AbortFrac:     base.abortFrac,
	}
}

// PartitionResult holds the ordering violations found in one partition.
type PartitionResult struct {
	Partition     int64       `json:"partition"`
	RowCount      int         `json:"row-count"`
	OrderByErrors []Violation `json:"order-by-errors"`
	ValueReorders []Violation `json:"value-reorders"`
}

// SplitMonotonicVerdict is the outcome of the partitioned monotonic checker.
type SplitMonotonicVerdict struct {
	Valid bool   `json:"valid?"`
	Error string `json:"error,omitempty"`

	AddCount int `json:"add-count"`
	RowCount int `json:"row-count"`

	Lost          []int64           `json:"lost"`
	Duplicates    []int64           `json:"duplicates"`
	Partitions    []PartitionResult `json:"partitions"`
	BadPartitions []history.Row     `json:"bad-partitions"`

	RetryFrac float64 `json:"retry-frac"`
	AbortFrac float64 `json:"abort-frac"`
}

func (v *SplitMonotonicVerdict) IsValid() bool { return v.Valid }

// SplitMonotonic checks N independently sequenced sub-streams. Ordering is
// only required within a partition; loss and duplication are judged over
// the whole read.
type SplitMonotonic struct {
	partitions int
}

// NewSplitMonotonic returns a checker for rows tagged with partitions
// 0..partitions-1. A non-positive count selects DefaultPartitions.
func NewSplitMonotonic(partitions int) *SplitMonotonic {
	if partitions <= 0 {
		partitions = DefaultPartitions
	}
	return &SplitMonotonic{partitions: partitions}
}

func (c *SplitMonotonic) Check(h history.History) Verdict {
	final, ok := h.LastOk(history.Read)
	if !ok {
		return &SplitMonotonicVerdict{Valid: false, Error: "Monotonic table was never read"}
	}
	rows := final.Rows()
	base := analyzeSequence(h, rows)

	byPartition := make([][]history.Row, c.partitions)
	var bad []history.Row
	for _, row := range rows {
		p := row.Partition
		if p == nil || *p < 0 || *p >= int64(c.partitions) {
			bad = append(bad, row)
			continue
		}
		byPartition[*p] = append(byPartition[*p], row)
	}

	valid := base.valid() && len(bad) == 0
	results := make([]PartitionResult, c.partitions)
	for p, prows := range byPartition {
		orderBy, reorders := scan(prows)
		results[p] = PartitionResult{
			Partition:     int64(p),
			RowCount:      len(prows),
			OrderByErrors: orderBy,
			ValueReorders: reorders,
		}
		valid = valid && len(orderBy) == 0 && len(reorders) == 0
	}

	return &SplitMonotonicVerdict{
		Valid:         valid,
		AddCount:      base.adds,
		RowCount:      len(rows),
		Lost:          base.lost,
		Duplicates:    base.dups,
		Partitions:    results,
		BadPartitions: bad,
		RetryFrac:     base.retryFrac,
		AbortFrac:     base.abortFrac,
	}
}

type sequenceStats struct {
	adds      int
	lost      []int64
	dups      []int64
	retryFrac float64
	abortFrac float64
}

func (s sequenceStats) valid() bool {
	return len(s.lost) == 0 && len(s.dups) == 0
}

// analyzeSequence computes the partition-independent part of a monotonic
// verdict: values acknowledged but not read, values read twice, and the
// retry/abort metrics.
func analyzeSequence(h history.History, rows []history.Row) sequenceStats {
	committed := make(set[int64])
	adds := 0
	for _, op := range h {
		if op.Type != history.Ok || op.F != history.Add {
			continue
		}
		adds++
		if v := op.Int(); v != nil {
			committed.add(*v)
		}
	}

	values := make([]int64, 0, len(rows))
	for _, row := range rows {
		if row.Value != nil {
			values = append(values, *row.Value)
		}
	}
	read, dups := frequencies(values)

	return sequenceStats{
		adds:      adds,
		lost:      committed.minus(read).sorted(),
		dups:      dups,
		retryFrac: Fraction(h.Count(history.HasErrorClass(history.ErrRetry)), len(h)),
		abortFrac: Fraction(h.Count(history.HasErrorClass(history.ErrAbortUncertain)), len(h)),
	}
}

// scan walks consecutive pairs of rows. A timestamp going backwards is an
// order-by error; a value that fails to strictly increase is a value
// reorder. A missing field fails the comparison it takes part in.
func scan(rows []history.Row) (orderBy, reorders []Violation) {
	for i := 1; i < len(rows); i++ {
		prev, row := rows[i-1], rows[i]
		if prev.Timestamp == nil || row.Timestamp == nil || prev.Timestamp.Cmp(row.Timestamp) > 0 {
			orderBy = append(orderBy, Violation{Index: i, Prev: prev, Row: row})
		}
		if prev.Value == nil || row.Value == nil || *prev.Value >= *row.Value {
			reorders = append(reorders, Violation{Index: i, Prev: prev, Row: row})
		}
	}
	return orderBy, reorders
}
