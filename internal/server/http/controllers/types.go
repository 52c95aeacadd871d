package controllers

import "encoding/json"

// Common request/response types for HTTP controllers.

// publishReq is a request to persist and broadcast one event.
type publishReq struct {
	Type    string          `json:"type"`
	JobID   string          `json:"job_id"`
	Payload json.RawMessage `json:"payload"`
}

// publishResp reports the assigned sequence and how many live connections
// accepted the event.
type publishResp struct {
	Sequence  uint64 `json:"sequence"`
	Delivered int    `json:"delivered"`
}
