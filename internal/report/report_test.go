package report_test

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	tst "github.com/julianstephens/go-utils/tests"

	"histcheck/internal/checker"
	"histcheck/internal/history"
	"histcheck/internal/report"
)

func setHistory(read string) history.History {
	return history.History{
		{Process: 0, Type: history.Invoke, F: history.Add, Value: json.RawMessage("1")},
		{Process: 0, Type: history.Ok, F: history.Add, Value: json.RawMessage("1")},
		{Process: 1, Type: history.Ok, F: history.Read, Value: json.RawMessage(read)},
	}
}

// TestNewSingleVerdict files a single verdict under its workload name
func TestNewSingleVerdict(t *testing.T) {
	h := setHistory("[1]")
	r := report.New("set", "h.json", h, checker.NewSet().Check(h))

	tst.AssertTrue(t, r.Valid, "expected valid report")
	tst.RequireDeepEqual(t, r.Ops, 3)
	tst.RequireDeepEqual(t, r.Names(), []string{"set"})
	_, err := uuid.Parse(r.RunID)
	tst.RequireNoError(t, err)
}

// TestNewFlattensComposedVerdicts gives each composed checker its own entry
func TestNewFlattensComposedVerdicts(t *testing.T) {
	h := setHistory("[1, 1]")
	v := checker.Compose{
		"set":  checker.NewSet(),
		"bank": checker.NewBank(1, 1),
	}.Check(h)

	r := report.New("set", "h.json", h, v)
	tst.AssertFalse(t, r.Valid, "expected invalid report")
	tst.RequireDeepEqual(t, r.Names(), []string{"bank", "set"})
}

// TestWrite writes results.json and a visualization for register verdicts
func TestWrite(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	h := history.History{
		{Process: 0, Type: history.Invoke, F: history.Write, Value: json.RawMessage(`{"key": 1, "value": 1}`)},
		{Process: 0, Type: history.Ok, F: history.Write, Value: json.RawMessage(`{"key": 1, "value": 1}`)},
		{Process: 1, Type: history.Invoke, F: history.Read, Value: json.RawMessage(`{"key": 1}`)},
		{Process: 1, Type: history.Ok, F: history.Read, Value: json.RawMessage(`{"key": 1, "value": 1}`)},
	}
	r := report.New("register", "h.json", h, checker.NewRegister(0).Check(h))

	path, err := r.Write(dir)
	tst.RequireNoError(t, err)
	tst.RequireDeepEqual(t, path, filepath.Join(dir, "results.json"))
	tst.RequireDeepEqual(t, r.Artifacts, []string{filepath.Join(dir, "register.html")})

	data, err := os.ReadFile(path)
	tst.RequireNoError(t, err)
	var decoded map[string]interface{}
	tst.RequireNoError(t, json.Unmarshal(data, &decoded))
	tst.RequireDeepEqual(t, decoded["valid?"], true)
	tst.RequireDeepEqual(t, decoded["workload"], "register")

	_, err = os.Stat(filepath.Join(dir, "register.html"))
	tst.RequireNoError(t, err)
}

// TestPrint renders the summary without colour
func TestPrint(t *testing.T) {
	report.NoColor = true
	defer func() { report.NoColor = false }()

	h := setHistory("[1, 1]")
	r := report.New("set", "/tmp/h.json", h, checker.NewSet().Check(h))

	var buf bytes.Buffer
	report.Print(&buf, r)
	out := buf.String()
	tst.AssertTrue(t, strings.Contains(out, "set: NOT valid"), "expected invalid verdict line")
	tst.AssertTrue(t, strings.Contains(out, "duplicated 1"), "expected duplicate count")
	tst.AssertTrue(t, strings.Contains(out, "#{1}"), "expected interval rendering")
	tst.AssertTrue(t, strings.Contains(out, "h.json (set): 3 ops"), "expected summary line")
	tst.AssertFalse(t, strings.Contains(out, "\033["), "expected no escape codes")
}

// TestPrintNeverRead shows the degraded verdict's message
func TestPrintNeverRead(t *testing.T) {
	report.NoColor = true
	defer func() { report.NoColor = false }()

	h := history.History{{Process: 0, Type: history.Ok, F: history.Add, Value: json.RawMessage("0")}}
	r := report.New("monotonic", "h.json", h, checker.NewMonotonic().Check(h))

	var buf bytes.Buffer
	report.Print(&buf, r)
	tst.AssertTrue(t, strings.Contains(buf.String(), "Monotonic table was never read"), "expected error message")
}

// TestColorize wraps text in escape codes
func TestColorize(t *testing.T) {
	tst.RequireDeepEqual(t, report.Colorize("x", report.ColorRed), report.ColorRed+"x"+report.ColorReset)
}
