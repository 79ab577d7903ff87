package checker

import (
	"github.com/cockroachdb/apd"
	"github.com/cockroachdb/errors"

	"histcheck/internal/history"
)

// Bank violation types.
const (
	WrongN     = "wrong-n"
	WrongTotal = "wrong-total"
)

// BankViolation describes a read whose balances break conservation. Found
// is nil when a balance could not be read and the total is unknown.
type BankViolation struct {
	Type     string            `json:"type"`
	Expected int64             `json:"expected"`
	Found    *int64            `json:"found"`
	Op       history.Operation `json:"op"`
}

// BankVerdict is the outcome of the bank checker.
type BankVerdict struct {
	Valid bool `json:"valid?"`

	ReadCount           int `json:"read-count"`
	TransferCount       int `json:"transfer-count"`
	FailedTransferCount int `json:"failed-transfer-count"`

	BadReads []BankViolation `json:"bad-reads"`
}

func (v *BankVerdict) IsValid() bool { return v.Valid }

// Bank checks that every successful read sees the configured number of
// accounts holding the configured total.
type Bank struct {
	accounts int64
	total    int64
	exact    *apd.Decimal
}

// sumContext is wide enough that no sum of int64 balances is rounded.
var sumContext = apd.BaseContext.WithPrecision(64)

// ErrBankTotalOverflow is returned when accounts * balance does not fit in
// an int64.
var ErrBankTotalOverflow = errors.New("checker: bank total overflows int64")

// BankTotal returns accounts * balance, or ErrBankTotalOverflow.
func BankTotal(accounts, balance int64) (int64, error) {
	var d apd.Decimal
	if _, err := sumContext.Mul(&d, apd.New(accounts, 0), apd.New(balance, 0)); err != nil {
		return 0, errors.Wrap(err, "checker: bank total")
	}
	total, err := d.Int64()
	if err != nil {
		return 0, errors.Wrapf(ErrBankTotalOverflow, "%d accounts of %d", accounts, balance)
	}
	return total, nil
}

// NewBank returns a checker for accounts accounts each opened with balance.
// Reads are compared against the exact product even when it overflows
// int64; ForWorkload rejects such configurations up front.
func NewBank(accounts, balance int64) *Bank {
	exact := new(apd.Decimal)
	_, _ = sumContext.Mul(exact, apd.New(accounts, 0), apd.New(balance, 0))
	total, _ := exact.Int64()
	return &Bank{accounts: accounts, total: total, exact: exact}
}

// Total is the conserved sum of all balances.
func (c *Bank) Total() int64 { return c.total }

func (c *Bank) Check(h history.History) Verdict {
	v := &BankVerdict{}
	for _, op := range h {
		if op.F == history.Transfer {
			switch op.Type {
			case history.Ok:
				v.TransferCount++
			case history.Fail:
				v.FailedTransferCount++
			}
			continue
		}
		if op.Type != history.Ok || op.F != history.Read {
			continue
		}
		v.ReadCount++

		balances := op.Ints()
		if n := int64(len(balances)); n != c.accounts {
			v.BadReads = append(v.BadReads, BankViolation{
				Type:     WrongN,
				Expected: c.accounts,
				Found:    &n,
				Op:       op,
			})
		}
		if sum, ok := sumBalances(balances); !ok || sum.Cmp(c.exact) != 0 {
			v.BadReads = append(v.BadReads, BankViolation{
				Type:     WrongTotal,
				Expected: c.total,
				Found:    asFound(sum, ok),
				Op:       op,
			})
		}
	}
	v.Valid = len(v.BadReads) == 0
	return v
}

// sumBalances adds balances exactly. ok is false if any balance is unknown.
func sumBalances(balances []*int64) (sum *apd.Decimal, ok bool) {
	sum = new(apd.Decimal)
	for _, b := range balances {
		if b == nil {
			return nil, false
		}
		if _, err := sumContext.Add(sum, sum, apd.New(*b, 0)); err != nil {
			return nil, false
		}
	}
	return sum, true
}

// asFound narrows an exact sum for reporting; a sum outside int64 is
// reported as unknown.
func asFound(sum *apd.Decimal, ok bool) *int64 {
	if !ok {
		return nil
	}
	n, err := sum.Int64()
	if err != nil {
		return nil
	}
	return &n
}
