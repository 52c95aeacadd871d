package controllers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
)

// Helper functions for common HTTP responses.

// writeError writes the standard error envelope: {error, code, message}.
func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":   "E_" + strings.ToUpper(code),
		"code":    code,
		"message": message,
	})
}

// writeJSON writes a JSON response with the given data.
func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(data)
}

// parseLimit parses a limit string and returns a valid limit value.
// Returns 0 for empty strings or invalid values.
func parseLimit(limitStr string) int {
	if limitStr == "" {
		return 0
	}
	if limit, err := strconv.Atoi(limitStr); err == nil && limit > 0 {
		return limit
	}
	return 0
}

// parseResume determines the replay position for a stream request. The
// Last-Event-ID header wins over the after query parameter. A missing or
// non-numeric value means no replay (nil): a client that never saw an
// event has nothing to resume from, and a garbage id must not trigger a
// full-history replay.
func parseResume(r *http.Request) *uint64 {
	candidates := []string{
		r.Header.Get("Last-Event-ID"),
		r.URL.Query().Get("after"),
	}
	for _, v := range candidates {
		if v == "" {
			continue
		}
		if seq, err := strconv.ParseUint(v, 10, 64); err == nil {
			return &seq
		}
		return nil
	}
	return nil
}
