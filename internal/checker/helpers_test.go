package checker_test

import (
	"encoding/json"

	"histcheck/internal/history"
)

func op(process int64, t history.Type, f history.Kind, value string) history.Operation {
	o := history.Operation{Process: process, Type: t, F: f}
	if value != "" {
		o.Value = json.RawMessage(value)
	}
	return o
}

func withError(o history.Operation, err string) history.Operation {
	o.Error = err
	return o
}

func index(h history.History) history.History {
	for i := range h {
		h[i].Index = i
	}
	return h
}
