package report

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/julianstephens/go-utils/generic"

	"histcheck/internal/checker"
)

// Print writes a colourized summary of r to w.
func Print(w io.Writer, r *Report) {
	fmt.Fprintln(w, "\n"+Colorize("📊 Summary", ColorBold+ColorBlue))
	for _, name := range r.Names() {
		printVerdict(w, name, r.Results[name])
	}

	status := generic.If(r.Valid, "✅", "🚫")
	color := generic.If(r.Valid, ColorGreen, ColorRed)
	line := fmt.Sprintf("%s %s (%s): %d ops", status, filepath.Base(r.History), r.Workload, r.Ops)
	fmt.Fprintln(w, Colorize(line, color))
}

func printVerdict(w io.Writer, name string, v checker.Verdict) {
	valid := v.IsValid()
	color := generic.If(valid, ColorGreen, ColorRed)
	line := func(format string, args ...interface{}) {
		fmt.Fprintln(w, Colorize(fmt.Sprintf("  "+format, args...), color))
	}

	if valid {
		line("✅ %s: valid", name)
	} else {
		line("🚫 %s: NOT valid", name)
	}

	switch v := v.(type) {
	case *checker.SetVerdict:
		if v.Error != "" {
			warn(w, v.Error)
			return
		}
		line("🧮 attempted %d, acknowledged %d (%.3f)", v.AttemptCount, v.AcknowledgedCount, v.AcknowledgedFrac)
		line("📌 ok %d (%.3f), recovered %d (%.3f)", v.OkCount, v.OkFrac, v.RecoveredCount, v.RecoveredFrac)
		if v.LostCount > 0 {
			line("🕳️  lost %d (%.3f): %s", v.LostCount, v.LostFrac, checker.IntervalString(v.Lost))
		}
		if v.UnexpectedCount > 0 {
			line("👻 unexpected %d (%.3f): %s", v.UnexpectedCount, v.UnexpectedFrac, checker.IntervalString(v.Unexpected))
		}
		if v.DuplicatedCount > 0 {
			line("♊ duplicated %d (%.3f): %s", v.DuplicatedCount, v.DuplicatedFrac, checker.IntervalString(v.Duplicates))
		}
	case *checker.MonotonicVerdict:
		if v.Error != "" {
			warn(w, v.Error)
			return
		}
		line("🧮 %d acknowledged adds, %d rows read", v.AddCount, v.RowCount)
		printSequence(line, v.Lost, v.Duplicates, v.RetryFrac, v.AbortFrac)
		printOrder(line, "", v.OrderByErrors, v.ValueReorders)
	case *checker.SplitMonotonicVerdict:
		if v.Error != "" {
			warn(w, v.Error)
			return
		}
		line("🧮 %d acknowledged adds, %d rows read over %d partitions", v.AddCount, v.RowCount, len(v.Partitions))
		printSequence(line, v.Lost, v.Duplicates, v.RetryFrac, v.AbortFrac)
		for _, p := range v.Partitions {
			printOrder(line, fmt.Sprintf("partition %d: ", p.Partition), p.OrderByErrors, p.ValueReorders)
		}
		if len(v.BadPartitions) > 0 {
			line("🏷️  %d rows with a missing or unknown partition", len(v.BadPartitions))
		}
	case *checker.BankVerdict:
		line("🧮 %d reads, %d transfers (%d failed)", v.ReadCount, v.TransferCount, v.FailedTransferCount)
		for _, bad := range v.BadReads {
			found := "nil"
			if bad.Found != nil {
				found = fmt.Sprintf("%d", *bad.Found)
			}
			line("💸 %s at op %d: expected %d, found %s", bad.Type, bad.Op.Index, bad.Expected, found)
		}
	case *checker.RegisterVerdict:
		line("🧮 %d operations, result %s", v.Ops, v.Result)
		if !valid && v.MaxPartial > 0 {
			line("📌 max partial linearization length: %d (out of %d)", v.MaxPartial, v.Ops)
		}
		if v.Error != "" {
			warn(w, v.Error)
		}
	}
}

func printSequence(line func(string, ...interface{}), lost, dups []int64, retry, abort float64) {
	if len(lost) > 0 {
		line("🕳️  lost %d: %s", len(lost), checker.IntervalString(lost))
	}
	if len(dups) > 0 {
		line("♊ duplicated %d: %s", len(dups), checker.IntervalString(dups))
	}
	line("🔁 retry-frac %.3f, abort-frac %.3f", retry, abort)
}

func printOrder(line func(string, ...interface{}), prefix string, orderBy, reorders []checker.Violation) {
	if len(orderBy) > 0 {
		line("⏱️  %s%d order-by errors, first %s after %s", prefix, len(orderBy), orderBy[0].Row, orderBy[0].Prev)
	}
	if len(reorders) > 0 {
		line("🔀 %s%d value reorders, first %s after %s", prefix, len(reorders), reorders[0].Row, reorders[0].Prev)
	}
}

func warn(w io.Writer, msg string) {
	fmt.Fprintln(w, Colorize("  ⚠️ "+msg, ColorYellow))
}
