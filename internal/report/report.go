// Package report assembles checker verdicts into the final test report and
// renders it to the console, to disk and over HTTP.
package report

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/julianstephens/go-utils/helpers"
	"github.com/julianstephens/go-utils/jsonutil"

	"histcheck/internal/checker"
	"histcheck/internal/history"
)

// Report is the merged outcome of one analysis run.
type Report struct {
	RunID     string                     `json:"run-id"`
	Workload  string                     `json:"workload"`
	History   string                     `json:"history"`
	Ops       int                        `json:"ops"`
	CheckedAt time.Time                  `json:"checked-at"`
	Valid     bool                       `json:"valid?"`
	Results   map[string]checker.Verdict `json:"results"`

	// Files written next to the report, e.g. visualizations.
	Artifacts []string `json:"artifacts,omitempty"`
}

// New merges the verdict of a workload checker into a report. Composed
// verdicts are flattened so each named checker gets its own entry.
func New(workload, historyPath string, h history.History, v checker.Verdict) *Report {
	r := &Report{
		RunID:     uuid.NewString(),
		Workload:  workload,
		History:   historyPath,
		Ops:       len(h),
		CheckedAt: time.Now().UTC(),
		Valid:     v.IsValid(),
		Results:   make(map[string]checker.Verdict),
	}
	if composed, ok := v.(*checker.ComposedVerdict); ok {
		for name, sub := range composed.Results {
			r.Results[name] = sub
		}
	} else {
		r.Results[workload] = v
	}
	return r
}

// Write stores the report as results.json in dir, together with an HTML
// visualization for every register verdict. It returns the report path.
func (r *Report) Write(dir string) (string, error) {
	if err := helpers.Ensure(dir, true); err != nil {
		return "", errors.Wrapf(err, "report: creating %s", dir)
	}

	for _, name := range r.Names() {
		rv, ok := r.Results[name].(*checker.RegisterVerdict)
		if !ok || rv.Ops == 0 {
			continue
		}
		htmlPath := filepath.Join(dir, sanitize(name)+".html")
		if err := writeVisualization(htmlPath, rv); err != nil {
			return "", err
		}
		r.Artifacts = append(r.Artifacts, htmlPath)
	}

	data, err := jsonutil.Marshal(r)
	if err != nil {
		return "", errors.Wrap(err, "report: encoding")
	}
	path := filepath.Join(dir, "results.json")
	if err := helpers.AtomicFileWrite(path, data); err != nil {
		return "", errors.Wrapf(err, "report: writing %s", path)
	}
	return path, nil
}

// Names returns the checker names of the report in sorted order.
func (r *Report) Names() []string {
	composed := checker.ComposedVerdict{Results: r.Results}
	return composed.Names()
}

func writeVisualization(path string, v *checker.RegisterVerdict) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "report: creating %s", path)
	}
	defer f.Close()

	if err := v.Visualize(f); err != nil {
		return errors.Wrapf(err, "report: visualizing into %s", path)
	}
	return nil
}

func sanitize(name string) string {
	return strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' || r == ' ' {
			return '_'
		}
		return r
	}, name)
}
