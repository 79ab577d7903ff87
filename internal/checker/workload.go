package checker

import (
	"time"

	"github.com/cockroachdb/errors"
)

// Workload names accepted by ForWorkload.
const (
	WorkloadSet            = "set"
	WorkloadMonotonic      = "monotonic"
	WorkloadSplitMonotonic = "monotonic-split"
	WorkloadBank           = "bank"
	WorkloadRegister       = "register"
)

// Workloads lists every supported workload.
var Workloads = []string{
	WorkloadSet,
	WorkloadMonotonic,
	WorkloadSplitMonotonic,
	WorkloadBank,
	WorkloadRegister,
}

// ErrUnknownWorkload is returned for a workload name ForWorkload does not know.
var ErrUnknownWorkload = errors.New("checker: unknown workload")

// Options is the configuration consumed by the workload checkers.
type Options struct {
	Accounts   int64
	Balance    int64
	Partitions int
	Timeout    time.Duration
}

// DefaultOptions matches the reference deployment.
func DefaultOptions() Options {
	return Options{
		Accounts:   5,
		Balance:    10,
		Partitions: DefaultPartitions,
		Timeout:    DefaultLinearizableTimeout,
	}
}

// ForWorkload returns the checker for the named workload.
func ForWorkload(name string, opts Options) (Checker, error) {
	switch name {
	case WorkloadSet:
		return NewSet(), nil
	case WorkloadMonotonic:
		return NewMonotonic(), nil
	case WorkloadSplitMonotonic:
		return NewSplitMonotonic(opts.Partitions), nil
	case WorkloadBank:
		if opts.Accounts <= 0 {
			return nil, errors.Newf("checker: bank needs a positive account count, got %d", opts.Accounts)
		}
		if _, err := BankTotal(opts.Accounts, opts.Balance); err != nil {
			return nil, err
		}
		return NewBank(opts.Accounts, opts.Balance), nil
	case WorkloadRegister:
		return NewRegister(opts.Timeout), nil
	default:
		return nil, errors.WithHintf(errors.Wrapf(ErrUnknownWorkload, "%q", name),
			"expected one of %v", Workloads)
	}
}
