package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestReadSSE(t *testing.T) {
	body := "retry: 3000\n\n" +
		"event: tick\nid: 1\ndata: {\"sequence\":1}\n\n" +
		": ping\n\n" +
		"event: tick\nid: 2\ndata: {\"sequence\":2}\n\n"

	var got []sseEvent
	err := readSSE(strings.NewReader(body), func(ev sseEvent) error {
		got = append(got, ev)
		return nil
	})
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 events, got %d: %+v", len(got), got)
	}
	if got[0].ID != "1" || got[0].Type != "tick" || got[0].Data != `{"sequence":1}` {
		t.Fatalf("first event: %+v", got[0])
	}
	if got[1].ID != "2" {
		t.Fatalf("second event: %+v", got[1])
	}
}

func TestReadSSECallbackError(t *testing.T) {
	body := "event: a\nid: 1\ndata: {}\n\nevent: b\nid: 2\ndata: {}\n\n"
	calls := 0
	err := readSSE(strings.NewReader(body), func(sseEvent) error {
		calls++
		return errTailDone
	})
	if err != errTailDone {
		t.Fatalf("expected callback error, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("callback ran %d times", calls)
	}
}

func TestEventsPublishCommand(t *testing.T) {
	var gotAuth, gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		var buf bytes.Buffer
		_, _ = buf.ReadFrom(r.Body)
		gotBody = buf.String()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusAccepted)
		_ = json.NewEncoder(w).Encode(map[string]any{"sequence": 7, "delivered": 1})
	}))
	defer srv.Close()

	root := NewEventsCommand(func() string { return srv.URL })
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"publish", "--type", "tick", "--job-id", "job-1", "--data", `{"ok":true}`, "--token", "pl_test"})
	if err := root.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}

	if gotAuth != "Bearer pl_test" {
		t.Fatalf("auth header: %q", gotAuth)
	}
	if !strings.Contains(gotBody, `"type":"tick"`) || !strings.Contains(gotBody, `"job_id":"job-1"`) {
		t.Fatalf("request body: %s", gotBody)
	}
	if !strings.Contains(out.String(), `"sequence":7`) {
		t.Fatalf("output: %s", out.String())
	}
}

func TestEventsPublishRequiresType(t *testing.T) {
	root := NewEventsCommand(func() string { return "http://127.0.0.1:0" })
	root.SetOut(new(bytes.Buffer))
	root.SetErr(new(bytes.Buffer))
	root.SetArgs([]string{"publish", "--data", "{}"})
	if err := root.Execute(); err == nil {
		t.Fatal("expected error without --type")
	}
}

func TestEventsListSurfacesAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = fmt.Fprint(w, `{"error":"E_INVALID_TOKEN","code":"invalid_token","message":"token mismatch"}`)
	}))
	defer srv.Close()

	root := NewEventsCommand(func() string { return srv.URL })
	root.SetOut(new(bytes.Buffer))
	root.SetErr(new(bytes.Buffer))
	root.SetArgs([]string{"list", "--token", "pl_wrong"})
	err := root.Execute()
	if err == nil || !strings.Contains(err.Error(), "invalid_token") {
		t.Fatalf("expected envelope error, got %v", err)
	}
}

func TestEventsTailCommand(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("after") != "0" {
			t.Errorf("missing after param: %s", r.URL.RawQuery)
		}
		w.Header().Set("Content-Type", "text/event-stream")
		_, _ = fmt.Fprint(w, "retry: 3000\n\n")
		for i := 1; i <= 3; i++ {
			_, _ = fmt.Fprintf(w, "event: tick\nid: %d\ndata: {\"sequence\":%d}\n\n", i, i)
		}
	}))
	defer srv.Close()

	root := NewEventsCommand(func() string { return srv.URL })
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"tail", "--after", "0", "--limit", "2", "--token", "pl_test"})
	if err := root.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %q", len(lines), out.String())
	}
	if lines[0] != `{"sequence":1}` || lines[1] != `{"sequence":2}` {
		t.Fatalf("lines: %v", lines)
	}
}
