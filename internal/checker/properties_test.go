package checker_test

import (
	"encoding/json"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"histcheck/internal/checker"
	"histcheck/internal/history"
)

// shuffled permutes the invoke/completion pairs of blocks, keeping each
// pair in order and the final block last.
func shuffled(rng *rand.Rand, blocks []history.History) history.History {
	head := append([]history.History(nil), blocks[:len(blocks)-1]...)
	rng.Shuffle(len(head), func(i, j int) { head[i], head[j] = head[j], head[i] })

	var h history.History
	for _, b := range head {
		h = append(h, b...)
	}
	return append(h, blocks[len(blocks)-1]...)
}

// flatten numbers the operations of blocks in place and concatenates them.
func flatten(blocks []history.History) history.History {
	var h history.History
	for _, b := range blocks {
		for i := range b {
			b[i].Index = len(h) + i
		}
		h = append(h, b...)
	}
	return h
}

func encode(t *testing.T, v checker.Verdict) string {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return string(data)
}

func pair(process int64, t history.Type, f history.Kind, value string) history.History {
	return history.History{
		op(process, history.Invoke, f, value),
		op(process, t, f, value),
	}
}

func TestVerdictsIgnoreOrderAndRepetition(t *testing.T) {
	tests := []struct {
		name    string
		checker checker.Checker
		blocks  []history.History
	}{
		{
			name:    "set",
			checker: checker.NewSet(),
			blocks: []history.History{
				pair(0, history.Ok, history.Add, "1"),
				pair(1, history.Ok, history.Add, "2"),
				{op(2, history.Invoke, history.Add, "3"), withError(op(2, history.Info, history.Add, "3"), "timeout")},
				{op(3, history.Invoke, history.Add, "4"), withError(op(3, history.Fail, history.Add, "4"), "retry")},
				pair(4, history.Ok, history.Read, "[1]"),
				pair(5, history.Ok, history.Read, "[1, 3, 3, 9]"),
			},
		},
		{
			name:    "monotonic",
			checker: checker.NewMonotonic(),
			blocks: []history.History{
				pair(0, history.Ok, history.Add, "0"),
				pair(1, history.Ok, history.Add, "1"),
				pair(2, history.Ok, history.Add, "2"),
				{op(3, history.Invoke, history.Add, "3"), withError(op(3, history.Fail, history.Add, "3"), "abort-uncertain")},
				pair(4, history.Ok, history.Read, `[[0, 1, 1, 0]]`),
				pair(5, history.Ok, history.Read, `[[0, 1, 1, 0], [2, 3, 1, 0], [1, 2, 1, 0], [2, 4, 1, 0]]`),
			},
		},
		{
			name:    "monotonic-split",
			checker: checker.NewSplitMonotonic(2),
			blocks: []history.History{
				pair(0, history.Ok, history.Add, "0"),
				pair(1, history.Ok, history.Add, "1"),
				pair(2, history.Ok, history.Add, "2"),
				pair(3, history.Ok, history.Add, "3"),
				{op(4, history.Invoke, history.Add, "4"), withError(op(4, history.Fail, history.Add, "4"), "retry")},
				pair(5, history.Ok, history.Read, `[[1, 1, 1, 0], [2, 2, 1, 1], [0, 3, 1, 0], [3, 4, 1, 1]]`),
			},
		},
		{
			name:    "bank",
			checker: checker.NewBank(3, 100),
			blocks: []history.History{
				pair(0, history.Ok, history.Transfer, `{"from": 0, "to": 1, "amount": 10}`),
				{op(1, history.Invoke, history.Transfer, `{"from": 1, "to": 2, "amount": 5}`), withError(op(1, history.Fail, history.Transfer, `{"from": 1, "to": 2, "amount": 5}`), "retry")},
				pair(2, history.Ok, history.Read, "[90, 110, 100]"),
				pair(3, history.Ok, history.Read, "[90, 110, 90]"),
				pair(4, history.Ok, history.Read, "[100, 100, 100]"),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := flatten(tt.blocks)
			want := encode(t, tt.checker.Check(h))
			require.Equal(t, want, encode(t, tt.checker.Check(h)), "repeated check")

			rng := rand.New(rand.NewSource(42))
			for i := 0; i < 20; i++ {
				// Operations keep the indices they were given above.
				p := shuffled(rng, tt.blocks)
				require.Equal(t, want, encode(t, tt.checker.Check(p)), "permutation %d", i)
			}
		})
	}
}
