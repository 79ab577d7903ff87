package checker

import (
	"fmt"
	"strings"

	"golang.org/x/exp/constraints"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Fraction returns a/b, or 1 when b is zero.
func Fraction(a, b int) float64 {
	if b == 0 {
		return 1
	}
	return float64(a) / float64(b)
}

// IntervalString renders a set of integers compactly, collapsing runs of
// consecutive values: #{1..3 5 7..9}.
func IntervalString(xs []int64) string {
	xs = slices.Clone(xs)
	slices.Sort(xs)
	xs = slices.Compact(xs)

	var parts []string
	for i := 0; i < len(xs); {
		j := i
		for j+1 < len(xs) && xs[j+1] == xs[j]+1 {
			j++
		}
		if j == i {
			parts = append(parts, fmt.Sprintf("%d", xs[i]))
		} else {
			parts = append(parts, fmt.Sprintf("%d..%d", xs[i], xs[j]))
		}
		i = j + 1
	}
	return "#{" + strings.Join(parts, " ") + "}"
}

type set[T constraints.Ordered] map[T]struct{}

func (s set[T]) add(v T) { s[v] = struct{}{} }

func (s set[T]) has(v T) bool {
	_, ok := s[v]
	return ok
}

// minus returns the elements of s absent from other.
func (s set[T]) minus(other set[T]) set[T] {
	out := make(set[T])
	for v := range s {
		if !other.has(v) {
			out.add(v)
		}
	}
	return out
}

func (s set[T]) intersect(other set[T]) set[T] {
	out := make(set[T])
	for v := range s {
		if other.has(v) {
			out.add(v)
		}
	}
	return out
}

func (s set[T]) sorted() []T {
	keys := maps.Keys(s)
	slices.Sort(keys)
	return keys
}

// frequencies splits xs into its distinct elements and the elements that
// occur more than once.
func frequencies[T constraints.Ordered](xs []T) (distinct set[T], dups []T) {
	counts := make(map[T]int, len(xs))
	for _, x := range xs {
		counts[x]++
	}
	distinct = make(set[T], len(counts))
	dups = make([]T, 0)
	for x, n := range counts {
		distinct.add(x)
		if n > 1 {
			dups = append(dups, x)
		}
	}
	slices.Sort(dups)
	return distinct, dups
}
