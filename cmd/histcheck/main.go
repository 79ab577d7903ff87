package main

import (
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"
	"github.com/cockroachdb/errors"
	"github.com/julianstephens/go-utils/cliutil"

	"histcheck/internal/cli"
	"histcheck/internal/logger"
)

var (
	version = "histcheck v0.1.0"
)

type LogOpts struct {
	Level string `help:"Logging level (debug, info, warn, error)" default:"info" envvar:"HISTCHECK_LOG_LEVEL"`
	Debug bool   `help:"Enable debug logging (overrides --level)"                envvar:"HISTCHECK_DEBUG"`
	Dir   string `help:"Also log to rotating files in this directory"            envvar:"HISTCHECK_LOG_DIR" type:"path"`
}

type CLI struct {
	Check     cli.CheckCmd     `cmd:"" help:"Check a history against its workload's invariants"`
	Merge     cli.MergeCmd     `cmd:"" help:"Merge several history files by operation time"`
	Serve     cli.ServeCmd     `cmd:"" help:"Serve a report directory over HTTP"`
	Workloads cli.WorkloadsCmd `cmd:"" help:"List supported workloads"`

	LogOpts LogOpts          `embed:"" prefix:"log-" help:"Logging options"`
	Version kong.VersionFlag `help:"Show version information" short:"V"`
}

func createLogger(opts LogOpts) (logger.Logger, error) {
	level := opts.Level
	if opts.Debug {
		level = "debug"
	}
	consoleLogger := logger.NewConsoleLogger(level)
	if opts.Dir == "" {
		return consoleLogger, nil
	}

	fileLogger, err := logger.NewFileLogger(
		opts.Dir,
		logger.DefaultLogFileName,
		logger.DefaultLogMaxSize,
		logger.DefaultLogMaxBackups,
	)
	if err != nil {
		return nil, err
	}
	return logger.NewMultiLogger(fileLogger, consoleLogger), nil
}

func configPaths() []string {
	paths := []string{".histcheck.json"}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".histcheck.json"))
	}
	return paths
}

func main() {
	cliApp := &CLI{}
	ctx := kong.Parse(cliApp,
		kong.Name("histcheck"),
		kong.Description("Checks the history of a fault-injection run against its workload's invariants"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Configuration(kong.JSON, configPaths()...),
		kong.Vars{
			"version": version,
		},
	)

	lg, err := createLogger(cliApp.LogOpts)
	ctx.FatalIfErrorf(err)
	closeLogger := func() {
		if c, ok := lg.(logger.Closeable); ok {
			_ = c.Close()
		}
	}
	defer closeLogger()

	err = ctx.Run(&cli.Globals{Logger: lg})
	if errors.Is(err, cli.ErrInvalidHistory) {
		cliutil.PrintError("History is NOT valid")
		closeLogger()
		os.Exit(1)
	}
	if err != nil {
		lg.Error("command failed", err, "command", ctx.Command())
	}
	ctx.FatalIfErrorf(err)
}
