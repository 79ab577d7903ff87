package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/cockroachdb/errors"

	"histcheck/internal/checker"
	"histcheck/internal/history"
	"histcheck/internal/logger"
	"histcheck/internal/report"
)

// ErrInvalidHistory is returned when a history fails its checks.
var ErrInvalidHistory = errors.New("history is not valid")

// Globals is bound into every command's Run method.
type Globals struct {
	Logger logger.Logger
}

// CheckCmd analyzes one or more history files.
type CheckCmd struct {
	Histories []string `arg:"" type:"existingfile" help:"History JSON files; several files are merged by time"`

	Workload   string        `short:"w" required:"" enum:"set,monotonic,monotonic-split,bank,register" help:"Workload the history was produced by (${enum})" envvar:"HISTCHECK_WORKLOAD"`
	Accounts   int64         `default:"5" help:"Bank: number of accounts"                                  envvar:"HISTCHECK_ACCOUNTS"`
	Balance    int64         `default:"10" help:"Bank: initial balance of each account"                   envvar:"HISTCHECK_BALANCE"`
	Partitions int           `default:"5" help:"Split monotonic: number of partitions"                    envvar:"HISTCHECK_PARTITIONS"`
	Timeout    time.Duration `default:"30s" help:"Register: linearizability search budget"                envvar:"HISTCHECK_TIMEOUT"`
	Out        string        `short:"o" help:"Directory for results.json (default: next to the history)" envvar:"HISTCHECK_OUT"`
	NoColor    bool          `help:"Disable colour output"                                                envvar:"NO_COLOR"`
}

func (c *CheckCmd) Run(g *Globals) error {
	lg := g.Logger
	report.NoColor = c.NoColor

	h, historyPath, err := loadHistories(c.Histories, lg)
	if err != nil {
		return err
	}

	chk, err := checker.ForWorkload(c.Workload, checker.Options{
		Accounts:   c.Accounts,
		Balance:    c.Balance,
		Partitions: c.Partitions,
		Timeout:    c.Timeout,
	})
	if err != nil {
		return err
	}

	lg.Info("checking history", "workload", c.Workload, "ops", len(h))
	start := time.Now()
	verdict := chk.Check(h)
	lg.Debug("check finished", "elapsed", time.Since(start), "valid", verdict.IsValid())

	r := report.New(c.Workload, historyPath, h, verdict)
	out := c.Out
	if out == "" {
		out = filepath.Join(filepath.Dir(historyPath), strings.TrimSuffix(filepath.Base(historyPath), filepath.Ext(historyPath)))
	}
	path, err := r.Write(out)
	if err != nil {
		lg.Error("writing report failed", err, "dir", out)
		return err
	}
	lg.Info("report written", "path", path, "run", r.RunID)

	report.Print(os.Stdout, r)
	if !r.Valid {
		return ErrInvalidHistory
	}
	return nil
}

// MergeCmd merges several history files into one.
type MergeCmd struct {
	Histories []string `arg:"" type:"existingfile" help:"History JSON files to merge"`
	Output    string   `short:"o" default:"merged-history.json" help:"Path of the merged history"`
}

func (c *MergeCmd) Run(g *Globals) error {
	h, err := history.Merge(c.Histories)
	if err != nil {
		return err
	}
	if err := history.WriteFile(c.Output, h); err != nil {
		return err
	}
	g.Logger.Info("merged histories", "files", len(c.Histories), "ops", len(h), "path", c.Output)
	return nil
}

// ServeCmd serves a report directory over HTTP.
type ServeCmd struct {
	Dir  string `arg:"" type:"existingdir" help:"Report directory to serve"`
	Port int    `short:"p" default:"8080" help:"Port for the web server" envvar:"HISTCHECK_PORT"`
}

func (c *ServeCmd) Run(g *Globals) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return report.Serve(ctx, c.Port, c.Dir, g.Logger)
}

// WorkloadsCmd lists the supported workloads.
type WorkloadsCmd struct{}

func (c *WorkloadsCmd) Run() error {
	for _, w := range checker.Workloads {
		fmt.Println(w)
	}
	return nil
}

func loadHistories(paths []string, lg logger.Logger) (history.History, string, error) {
	if len(paths) == 1 {
		h, err := history.Load(paths[0])
		if err != nil {
			return nil, "", err
		}
		lg.Debug("loaded history", "path", paths[0], "ops", len(h))
		return h, paths[0], nil
	}

	h, err := history.Merge(paths)
	if err != nil {
		return nil, "", err
	}
	merged := filepath.Join(filepath.Dir(paths[0]), "merged-history.json")
	if err := history.WriteFile(merged, h); err != nil {
		return nil, "", err
	}
	lg.Info("merged histories", "files", len(paths), "path", merged)
	return h, merged, nil
}
