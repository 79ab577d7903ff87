package history

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cockroachdb/apd"
)

// Row is one tuple of a monotonic read: (value, timestamp, node, partition).
// Any field the upstream parser could not read is nil.
type Row struct {
	Value     *int64
	Timestamp *apd.Decimal
	Node      *int64
	Partition *int64
}

// MarshalJSON renders the row back as the tuple it was read from. The
// timestamp is written as a string so no precision is lost.
func (r Row) MarshalJSON() ([]byte, error) {
	var ts interface{}
	if r.Timestamp != nil {
		ts = r.Timestamp.String()
	}
	return json.Marshal([]interface{}{r.Value, ts, r.Node, r.Partition})
}

func (r Row) String() string {
	return fmt.Sprintf("(%s %s %s %s)", fmtInt(r.Value), fmtDecimal(r.Timestamp), fmtInt(r.Node), fmtInt(r.Partition))
}

// TransferValue is the payload of a bank transfer.
type TransferValue struct {
	From   *int64 `json:"from"`
	To     *int64 `json:"to"`
	Amount *int64 `json:"amount"`
}

// RegisterValue is the payload of a register read, write or cas. Reads
// carry Value on completion, writes carry it on both records, and a cas
// swaps From for To.
type RegisterValue struct {
	Key   int64  `json:"key"`
	Value *int64 `json:"value,omitempty"`
	From  *int64 `json:"from,omitempty"`
	To    *int64 `json:"to,omitempty"`
}

// Int decodes the value as a single integer, e.g. a set add.
func (op Operation) Int() *int64 {
	v, ok := decode(op.Value)
	if !ok {
		return nil
	}
	return asInt(v)
}

// Ints decodes the value as a sequence of integers. Elements that are not
// integers come back as nil; duplicates are preserved.
func (op Operation) Ints() []*int64 {
	v, ok := decode(op.Value)
	if !ok {
		return nil
	}
	elems, ok := v.([]interface{})
	if !ok {
		return nil
	}
	out := make([]*int64, len(elems))
	for i, e := range elems {
		out[i] = asInt(e)
	}
	return out
}

// Rows decodes the value of a monotonic read. Short tuples are padded with
// nil fields rather than rejected.
func (op Operation) Rows() []Row {
	v, ok := decode(op.Value)
	if !ok {
		return nil
	}
	elems, ok := v.([]interface{})
	if !ok {
		return nil
	}
	rows := make([]Row, 0, len(elems))
	for _, e := range elems {
		tuple, _ := e.([]interface{})
		field := func(i int) interface{} {
			if i < len(tuple) {
				return tuple[i]
			}
			return nil
		}
		rows = append(rows, Row{
			Value:     asInt(field(0)),
			Timestamp: asDecimal(field(1)),
			Node:      asInt(field(2)),
			Partition: asInt(field(3)),
		})
	}
	return rows
}

// Transfer decodes the value of a bank transfer.
func (op Operation) Transfer() (TransferValue, bool) {
	var t TransferValue
	if err := json.Unmarshal(op.Value, &t); err != nil {
		return TransferValue{}, false
	}
	return t, true
}

// Register decodes the value of a register operation.
func (op Operation) Register() (RegisterValue, bool) {
	var r RegisterValue
	if err := json.Unmarshal(op.Value, &r); err != nil {
		return RegisterValue{}, false
	}
	return r, true
}

func decode(raw json.RawMessage) (interface{}, bool) {
	if len(raw) == 0 {
		return nil, false
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return nil, false
	}
	return v, v != nil
}

func asInt(v interface{}) *int64 {
	var n json.Number
	switch t := v.(type) {
	case json.Number:
		n = t
	case string:
		n = json.Number(strings.TrimSpace(t))
	default:
		return nil
	}
	i, err := n.Int64()
	if err != nil {
		return nil
	}
	return &i
}

func asDecimal(v interface{}) *apd.Decimal {
	var s string
	switch t := v.(type) {
	case json.Number:
		s = t.String()
	case string:
		s = strings.TrimSpace(t)
	default:
		return nil
	}
	d, _, err := apd.NewFromString(s)
	if err != nil || d.Form != apd.Finite {
		return nil
	}
	return d
}

func fmtInt(v *int64) string {
	if v == nil {
		return "nil"
	}
	return fmt.Sprintf("%d", *v)
}

func fmtDecimal(d *apd.Decimal) string {
	if d == nil {
		return "nil"
	}
	return d.String()
}
