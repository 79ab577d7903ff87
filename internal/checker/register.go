package checker

import (
	"fmt"
	"io"
	"math"
	"time"

	"github.com/anishathalye/porcupine"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"histcheck/internal/history"
)

// DefaultLinearizableTimeout bounds the linearizability search.
const DefaultLinearizableTimeout = 30 * time.Second

type registerInput struct {
	f     history.Kind
	key   int64
	value *int64
	from  *int64
	to    *int64
}

// registerOutput is nil when the outcome of the operation is unknown.
type registerOutput struct {
	value *int64
}

type registerState struct {
	set   bool
	value int64
}

// RegisterVerdict is the outcome of the register checker.
type RegisterVerdict struct {
	Valid bool   `json:"valid?"`
	Error string `json:"error,omitempty"`

	Result     string `json:"result"`
	Ops        int    `json:"ops"`
	MaxPartial int    `json:"max-partial"`

	model porcupine.Model
	info  porcupine.LinearizationInfo
}

func (v *RegisterVerdict) IsValid() bool { return v.Valid }

// Visualize writes porcupine's HTML rendering of the search to w.
func (v *RegisterVerdict) Visualize(w io.Writer) error {
	return porcupine.Visualize(v.model, v.info, w)
}

// Register checks a compare-and-swap register workload for linearizability
// with porcupine. Registers are independent per key.
type Register struct {
	timeout time.Duration
}

// NewRegister returns a register checker that gives up after timeout. A
// non-positive timeout selects DefaultLinearizableTimeout.
func NewRegister(timeout time.Duration) *Register {
	if timeout <= 0 {
		timeout = DefaultLinearizableTimeout
	}
	return &Register{timeout: timeout}
}

func (c *Register) Check(h history.History) Verdict {
	ops := registerOperations(h)
	model := registerModel()
	if len(ops) == 0 {
		return &RegisterVerdict{Valid: true, Result: string(porcupine.Ok), model: model}
	}

	result, info := porcupine.CheckOperationsVerbose(model, ops, c.timeout)
	v := &RegisterVerdict{
		Valid:      result == porcupine.Ok,
		Result:     string(result),
		Ops:        len(ops),
		MaxPartial: maxPartialLength(info),
		model:      model,
		info:       info,
	}
	if result == porcupine.Unknown {
		v.Error = fmt.Sprintf("linearizability search gave up after %s", c.timeout)
	}
	return v
}

// registerOperations pairs each invocation with the next completion of the
// same process. History positions stand in for call and return times.
// Failed operations had no effect and are dropped; indeterminate writes and
// swaps stay pending forever, indeterminate reads tell us nothing.
func registerOperations(h history.History) []porcupine.Operation {
	pending := make(map[int64]history.Operation)
	var ops []porcupine.Operation

	emit := func(inv history.Operation, ret int64, out interface{}) {
		val, ok := inv.Register()
		if !ok {
			return
		}
		ops = append(ops, porcupine.Operation{
			ClientId: int(inv.Process),
			Input:    registerInput{f: inv.F, key: val.Key, value: val.Value, from: val.From, to: val.To},
			Call:     int64(inv.Index),
			Output:   out,
			Return:   ret,
		})
	}

	for i, op := range h {
		if op.F != history.Read && op.F != history.Write && op.F != history.Cas {
			continue
		}
		if op.IsInvoke() {
			op.Index = i
			pending[op.Process] = op
			continue
		}
		inv, ok := pending[op.Process]
		if !ok {
			continue
		}
		delete(pending, op.Process)

		switch op.Type {
		case history.Ok:
			out := registerOutput{}
			if op.F == history.Read {
				if val, ok := op.Register(); ok {
					out.value = val.Value
				}
			}
			emit(inv, int64(i), &out)
		case history.Info:
			if op.F != history.Read {
				emit(inv, math.MaxInt64, (*registerOutput)(nil))
			}
		}
	}

	for _, inv := range sortedPending(pending) {
		if inv.F != history.Read {
			emit(inv, math.MaxInt64, (*registerOutput)(nil))
		}
	}
	return ops
}

func sortedPending(pending map[int64]history.Operation) []history.Operation {
	out := maps.Values(pending)
	slices.SortFunc(out, func(a, b history.Operation) bool { return a.Index < b.Index })
	return out
}

func registerModel() porcupine.Model {
	return porcupine.Model{
		Init: func() interface{} {
			return registerState{}
		},
		Step: func(state, input, output interface{}) (bool, interface{}) {
			st := state.(registerState)
			in := input.(registerInput)
			out := output.(*registerOutput)

			switch in.f {
			case history.Read:
				return handleRead(st, out)
			case history.Write:
				return handleWrite(st, in)
			case history.Cas:
				return handleCas(st, in, out)
			default:
				return false, st
			}
		},
		DescribeOperation: describeOperation,
		DescribeState:     describeState,
		Partition:         partitionByKey,
	}
}

func handleRead(st registerState, out *registerOutput) (bool, interface{}) {
	if out == nil {
		return true, st
	}
	if !st.set {
		return out.value == nil, st
	}
	return out.value != nil && *out.value == st.value, st
}

func handleWrite(st registerState, in registerInput) (bool, interface{}) {
	if in.value == nil {
		return false, st
	}
	return true, registerState{set: true, value: *in.value}
}

// handleCas applies a swap whose precondition holds. An indeterminate swap
// is always legal: if its precondition fails it simply had no effect.
func handleCas(st registerState, in registerInput, out *registerOutput) (bool, interface{}) {
	if in.from == nil || in.to == nil {
		return false, st
	}
	matches := st.set && st.value == *in.from
	if out == nil {
		if matches {
			return true, registerState{set: true, value: *in.to}
		}
		return true, st
	}
	if !matches {
		return false, st
	}
	return true, registerState{set: true, value: *in.to}
}

func describeOperation(input, output interface{}) string {
	in := input.(registerInput)
	out := output.(*registerOutput)

	suffix := ""
	if out == nil {
		suffix = " ?"
	}
	switch in.f {
	case history.Read:
		if out == nil || out.value == nil {
			return fmt.Sprintf("read(%d) -> nil%s", in.key, suffix)
		}
		return fmt.Sprintf("read(%d) -> %d", in.key, *out.value)
	case history.Write:
		return fmt.Sprintf("write(%d, %s)%s", in.key, fmtPtr(in.value), suffix)
	case history.Cas:
		return fmt.Sprintf("cas(%d, %s, %s)%s", in.key, fmtPtr(in.from), fmtPtr(in.to), suffix)
	default:
		return fmt.Sprintf("%v -> %v", input, output)
	}
}

func describeState(state interface{}) string {
	st := state.(registerState)
	if !st.set {
		return "nil"
	}
	return fmt.Sprintf("%d", st.value)
}

func partitionByKey(ops []porcupine.Operation) [][]porcupine.Operation {
	partitions := make(map[int64][]porcupine.Operation)
	for _, op := range ops {
		key := op.Input.(registerInput).key
		partitions[key] = append(partitions[key], op)
	}
	keys := maps.Keys(partitions)
	slices.Sort(keys)

	result := make([][]porcupine.Operation, 0, len(partitions))
	for _, k := range keys {
		result = append(result, partitions[k])
	}
	return result
}

// maxPartialLength finds the longest partial linearization porcupine found.
func maxPartialLength(info porcupine.LinearizationInfo) int {
	longest := 0
	for _, partition := range info.PartialLinearizations() {
		for _, linearization := range partition {
			if len(linearization) > longest {
				longest = len(linearization)
			}
		}
	}
	return longest
}

func fmtPtr(v *int64) string {
	if v == nil {
		return "nil"
	}
	return fmt.Sprintf("%d", *v)
}
