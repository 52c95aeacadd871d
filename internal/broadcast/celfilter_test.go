package broadcast

import (
	"testing"

	"github.com/rivenlabs/pulse/internal/eventlog"
)

func TestFilterDisabledMatchesAll(t *testing.T) {
	f, err := NewFilter("")
	if err != nil {
		t.Fatalf("empty filter: %v", err)
	}
	if !f.Eval(eventlog.Event{Sequence: 1, Type: "anything"}) {
		t.Fatalf("disabled filter should match everything")
	}
}

func TestFilterByTypeAndJob(t *testing.T) {
	f, err := NewFilter(`type == "run.finished" && job_id == "job-1"`)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if !f.Eval(eventlog.Event{Type: "run.finished", JobID: "job-1"}) {
		t.Fatalf("expected match")
	}
	if f.Eval(eventlog.Event{Type: "run.finished", JobID: "job-2"}) {
		t.Fatalf("expected non-match on job")
	}
	if f.Eval(eventlog.Event{Type: "run.started", JobID: "job-1"}) {
		t.Fatalf("expected non-match on type")
	}
}

func TestFilterJSONPayloadField(t *testing.T) {
	f, err := NewFilter(`json.status == "error"`)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if !f.Eval(eventlog.Event{Payload: []byte(`{"status":"error"}`)}) {
		t.Fatalf("expected match on payload field")
	}
	if f.Eval(eventlog.Event{Payload: []byte(`{"status":"ok"}`)}) {
		t.Fatalf("expected non-match")
	}
	// Non-JSON payload: evaluation error counts as non-match, not a panic.
	if f.Eval(eventlog.Event{Payload: []byte(`not json`)}) {
		t.Fatalf("expected non-match for unparseable payload")
	}
}

func TestFilterCompileError(t *testing.T) {
	if _, err := NewFilter(`type ==`); err == nil {
		t.Fatalf("expected compile error")
	}
}
