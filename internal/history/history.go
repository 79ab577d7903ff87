package history

// History is the ordered log of one test run. Nothing in this module
// mutates a History once it has been loaded; projections return copies.
type History []Operation

// Filter returns the operations for which keep returns true, in order.
func (h History) Filter(keep func(Operation) bool) History {
	out := make(History, 0, len(h))
	for _, op := range h {
		if keep(op) {
			out = append(out, op)
		}
	}
	return out
}

// Count returns the number of operations matching pred.
func (h History) Count(pred func(Operation) bool) int {
	n := 0
	for _, op := range h {
		if pred(op) {
			n++
		}
	}
	return n
}

// LastOk returns the last successful completion of kind f. The designated
// final read of a workload is found this way, purely by position.
func (h History) LastOk(f Kind) (Operation, bool) {
	for i := len(h) - 1; i >= 0; i-- {
		if h[i].Type == Ok && h[i].F == f {
			return h[i], true
		}
	}
	return Operation{}, false
}

// Is returns a predicate matching operations of type t and kind f.
func Is(t Type, f Kind) func(Operation) bool {
	return func(op Operation) bool {
		return op.Type == t && op.F == f
	}
}

// HasErrorClass returns a predicate matching operations classified as c.
func HasErrorClass(c ErrorClass) func(Operation) bool {
	return func(op Operation) bool {
		return op.ErrorClass() == c
	}
}
