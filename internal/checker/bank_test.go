package checker_test

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"

	"histcheck/internal/checker"
	"histcheck/internal/history"
)

func checkBank(t *testing.T, h history.History) *checker.BankVerdict {
	t.Helper()
	v, ok := checker.NewBank(3, 100).Check(h).(*checker.BankVerdict)
	require.True(t, ok)
	return v
}

func TestBankConserved(t *testing.T) {
	h := index(history.History{
		op(0, history.Invoke, history.Transfer, `{"from": 0, "to": 1, "amount": 10}`),
		op(0, history.Ok, history.Transfer, `{"from": 0, "to": 1, "amount": 10}`),
		op(1, history.Invoke, history.Read, ""),
		op(1, history.Ok, history.Read, "[100, 100, 100]"),
		op(1, history.Invoke, history.Read, ""),
		op(1, history.Ok, history.Read, "[90, 110, 100]"),
	})

	v := checkBank(t, h)
	require.True(t, v.Valid)
	require.Empty(t, v.BadReads)
	require.Equal(t, 2, v.ReadCount)
	require.Equal(t, 1, v.TransferCount)
}

func TestBankWrongTotal(t *testing.T) {
	h := index(history.History{
		op(1, history.Ok, history.Read, "[100, 100, 100]"),
		op(1, history.Ok, history.Read, "[90, 100, 100]"),
	})

	v := checkBank(t, h)
	require.False(t, v.Valid)
	require.Len(t, v.BadReads, 1)
	bad := v.BadReads[0]
	require.Equal(t, checker.WrongTotal, bad.Type)
	require.Equal(t, int64(300), bad.Expected)
	require.Equal(t, int64(290), *bad.Found)
	require.Equal(t, 1, bad.Op.Index)
}

func TestBankCollectsEveryViolation(t *testing.T) {
	h := index(history.History{
		op(1, history.Ok, history.Read, "[100, 100]"),
		op(1, history.Ok, history.Read, "[100, 100, 100]"),
		op(2, history.Ok, history.Read, "[100, 100, 100, 1]"),
		withError(op(2, history.Fail, history.Read, "[1]"), "retry"),
	})

	v := checkBank(t, h)
	require.False(t, v.Valid)
	require.Equal(t, 3, v.ReadCount)

	var types []string
	for _, bad := range v.BadReads {
		types = append(types, bad.Type)
	}
	require.Equal(t, []string{
		checker.WrongN, checker.WrongTotal,
		checker.WrongN, checker.WrongTotal,
	}, types)
	require.Equal(t, int64(2), *v.BadReads[0].Found)
	require.Equal(t, int64(4), *v.BadReads[2].Found)
}

func TestBankUnreadableBalance(t *testing.T) {
	h := history.History{
		op(1, history.Ok, history.Read, `[100, null, 200]`),
	}

	v := checkBank(t, h)
	require.False(t, v.Valid)
	require.Len(t, v.BadReads, 1)
	require.Equal(t, checker.WrongTotal, v.BadReads[0].Type)
	require.Nil(t, v.BadReads[0].Found)
}

func TestBankNoReads(t *testing.T) {
	v := checkBank(t, history.History{
		op(0, history.Invoke, history.Transfer, `{"from": 0, "to": 1, "amount": 10}`),
		withError(op(0, history.Fail, history.Transfer, `{"from": 0, "to": 1, "amount": 10}`), "retry"),
	})
	require.True(t, v.Valid)
	require.Equal(t, 0, v.ReadCount)
	require.Equal(t, 1, v.FailedTransferCount)
}

func TestBankTotal(t *testing.T) {
	require.Equal(t, int64(50), checker.NewBank(5, 10).Total())
}

func TestBankSumDoesNotWrap(t *testing.T) {
	// 2*MaxInt64 + 2 wraps to 0 in int64 arithmetic.
	h := index(history.History{
		op(1, history.Ok, history.Read, "[9223372036854775807, 9223372036854775807, 2]"),
	})

	v, ok := checker.NewBank(3, 0).Check(h).(*checker.BankVerdict)
	require.True(t, ok)
	require.False(t, v.Valid)
	require.Len(t, v.BadReads, 1)
	require.Equal(t, checker.WrongTotal, v.BadReads[0].Type)
	require.Nil(t, v.BadReads[0].Found)
}

func TestBankTotalOverflow(t *testing.T) {
	_, err := checker.BankTotal(3, 9223372036854775807)
	require.True(t, errors.Is(err, checker.ErrBankTotalOverflow))

	total, err := checker.BankTotal(5, 10)
	require.NoError(t, err)
	require.Equal(t, int64(50), total)

	opts := checker.DefaultOptions()
	opts.Balance = 9223372036854775807
	_, err = checker.ForWorkload(checker.WorkloadBank, opts)
	require.True(t, errors.Is(err, checker.ErrBankTotalOverflow))
}
