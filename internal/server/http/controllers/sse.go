package controllers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/rivenlabs/pulse/internal/eventlog"
)

// sseSink writes Server-Sent Events frames to a response writer.
type sseSink struct {
	w http.ResponseWriter
	r *http.Request
}

// WriteEvent sends one event frame:
//
//	event: <type>
//	id: <sequence>
//	data: <json>
//
// The id line carries the sequence so EventSource clients resume with
// Last-Event-ID automatically.
func (s sseSink) WriteEvent(ev eventlog.Event) error {
	b, err := formatSSE(ev)
	if err != nil {
		return err
	}
	_, err = s.w.Write(b)
	return err
}

// WriteRetry sends the reconnect delay hint.
func (s sseSink) WriteRetry(ms int) error {
	_, err := fmt.Fprintf(s.w, "retry: %d\n\n", ms)
	return err
}

// WriteComment sends a comment frame, used as a keepalive tick.
func (s sseSink) WriteComment(text string) error {
	_, err := fmt.Fprintf(s.w, ": %s\n\n", text)
	return err
}

// Context returns the request context for cancellation.
func (s sseSink) Context() context.Context {
	return s.r.Context()
}

// Flush flushes the HTTP response writer if it supports flushing.
func (s sseSink) Flush() {
	if f, ok := s.w.(http.Flusher); ok {
		f.Flush()
	}
}

// formatSSE renders one event as an SSE frame.
func formatSSE(ev eventlog.Event) ([]byte, error) {
	data, err := json.Marshal(ev)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, len(data)+len(ev.Type)+40)
	out = append(out, "event: "...)
	out = append(out, ev.Type...)
	out = append(out, "\nid: "...)
	out = strconv.AppendUint(out, ev.Sequence, 10)
	out = append(out, "\ndata: "...)
	out = append(out, data...)
	out = append(out, "\n\n"...)
	return out, nil
}
