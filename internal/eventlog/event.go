package eventlog

import "encoding/json"

// Event is a stored event as returned by reads. Sequence doubles as the
// event's identity everywhere in the system, including stream resume
// positions.
type Event struct {
	Sequence uint64          `json:"sequence"`
	Type     string          `json:"type"`
	JobID    string          `json:"job_id,omitempty"`
	Payload  json.RawMessage `json:"payload"`
	TsMs     int64           `json:"ts_ms"`
}
