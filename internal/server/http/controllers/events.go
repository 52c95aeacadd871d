package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/rivenlabs/pulse/internal/broadcast"
	"github.com/rivenlabs/pulse/internal/eventlog"
	"github.com/rivenlabs/pulse/internal/runtime"
	logpkg "github.com/rivenlabs/pulse/pkg/log"
)

// EventsController handles event publish, history, stats, and the SSE
// stream.
type EventsController struct {
	rt     *runtime.Runtime
	bc     *broadcast.Broadcaster
	rp     *broadcast.Replayer
	logger logpkg.Logger

	// pubMu serializes append+broadcast so live queues receive events in
	// ascending sequence order even under concurrent publishers. The
	// stream's dedupe watermark relies on that ordering.
	pubMu sync.Mutex
}

// NewEventsController creates a new events controller.
func NewEventsController(rt *runtime.Runtime, bc *broadcast.Broadcaster, rp *broadcast.Replayer, logger logpkg.Logger) *EventsController {
	return &EventsController{rt: rt, bc: bc, rp: rp, logger: logger}
}

// RegisterRoutes registers event routes with the given mux.
func (c *EventsController) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/v1/events/publish", c.handlePublish)
	mux.HandleFunc("/v1/events", c.handleList)
	mux.HandleFunc("/v1/events/stats", c.handleStats)
	mux.HandleFunc("/v1/events/subscribe", c.handleSubscribe)
}

// handlePublish persists one event, then broadcasts it to live
// connections. The append happens first so that a crash between the two
// steps loses a delivery, never an event.
func (c *EventsController) handlePublish(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "use POST")
		return
	}
	var req publishReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", "request body must be JSON")
		return
	}
	if req.Type == "" {
		writeError(w, http.StatusBadRequest, "invalid_body", "type is required")
		return
	}
	if len(req.Payload) == 0 {
		req.Payload = json.RawMessage(`{}`)
	}
	if !json.Valid(req.Payload) {
		writeError(w, http.StatusBadRequest, "invalid_body", "payload must be valid JSON")
		return
	}

	c.pubMu.Lock()
	seq, err := c.rt.Log().Append(r.Context(), req.Type, req.JobID, req.Payload)
	if err != nil {
		c.pubMu.Unlock()
		c.logger.Error("append failed", logpkg.Err(err), logpkg.Str("type", req.Type))
		writeError(w, http.StatusInternalServerError, "storage_error", "failed to persist event")
		return
	}
	delivered, err := c.bc.BroadcastByID(seq)
	c.pubMu.Unlock()
	if err != nil {
		// The event is durable; subscribers will pick it up via replay.
		c.logger.Error("broadcast failed", logpkg.Err(err), logpkg.Uint64("sequence", seq))
		writeError(w, http.StatusInternalServerError, "broadcast_error", "event persisted but broadcast failed")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	writeJSONBody(w, publishResp{Sequence: seq, Delivered: delivered})
}

// handleList returns stored events after a position, oldest first.
func (c *EventsController) handleList(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "use GET")
		return
	}
	q := r.URL.Query()
	var after uint64
	if v := q.Get("after"); v != "" {
		parsed := parseResume(r)
		if parsed == nil {
			writeError(w, http.StatusBadRequest, "invalid_after", "after must be a sequence number")
			return
		}
		after = *parsed
	}
	limit := parseLimit(q.Get("limit"))
	if limit == 0 || limit > 1000 {
		limit = 1000
	}
	events, err := c.rt.Log().GetEventsSince(after, q.Get("job_id"), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "storage_error", "failed to read events")
		return
	}
	if events == nil {
		events = []eventlog.Event{}
	}
	writeJSON(w, map[string]any{
		"events":        events,
		"last_sequence": c.rt.Log().CurrentSequence(),
	})
}

// handleStats reports broadcaster state.
func (c *EventsController) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "use GET")
		return
	}
	writeJSON(w, c.bc.Stats())
}

// handleSubscribe serves the SSE stream: optional replay from a resume
// position, then live events as they are broadcast.
//
// The connection registers with the broadcaster before replay starts, so
// an event published mid-replay lands in the queue instead of falling into
// the gap between the two phases. Events can therefore arrive twice at the
// boundary; the lastSent watermark drops the duplicates.
func (c *EventsController) handleSubscribe(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "use GET")
		return
	}
	q := r.URL.Query()
	jobID := q.Get("job_id")
	filter, err := broadcast.NewFilter(q.Get("filter"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_filter", "filter does not compile: "+err.Error())
		return
	}
	resume := parseResume(r)

	cfg := c.rt.Config()
	keepalive := time.Duration(cfg.KeepaliveMs) * time.Millisecond
	if keepalive <= 0 {
		keepalive = 30 * time.Second
	}

	conn := c.bc.AddConnection("")
	defer c.bc.RemoveConnection(conn.ID())

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	sink := sseSink{w: w, r: r}
	if err := sink.WriteRetry(cfg.RetryHintMs); err != nil {
		return
	}
	sink.Flush()

	log := c.logger.With(logpkg.Str("conn", conn.ID()))
	log.Debug("stream opened", logpkg.Str("job_id", jobID))

	var lastSent uint64
	send := func(ev eventlog.Event) error {
		if !filter.Eval(ev) {
			return nil
		}
		if err := sink.WriteEvent(ev); err != nil {
			return err
		}
		lastSent = ev.Sequence
		sink.Flush()
		return nil
	}

	if resume != nil {
		lastSent = *resume
		_, replayed, err := c.rp.Replay(r.Context(), *resume, jobID, func(ev eventlog.Event) error {
			if err := send(ev); err != nil {
				return err
			}
			// Advance past filtered-out events too, or they would be
			// re-sent if the live queue carries them.
			lastSent = ev.Sequence
			return nil
		})
		if err != nil {
			log.Debug("stream closed during replay", logpkg.Err(err))
			return
		}
		log.Debug("replay done", logpkg.Int("events", replayed), logpkg.Uint64("cursor", lastSent))
	}

	for {
		ev, ok, err := conn.Next(r.Context(), keepalive)
		if err != nil {
			if errors.Is(err, broadcast.ErrConnectionClosed) {
				log.Warn("stream evicted: consumer too slow")
			} else {
				log.Debug("stream closed", logpkg.Err(err))
			}
			return
		}
		if !ok {
			if err := sink.WriteComment("ping"); err != nil {
				return
			}
			sink.Flush()
			continue
		}
		// Live events arrive in ascending sequence order (publish is
		// serialized), so anything at or below the watermark is a replay
		// duplicate.
		if ev.Sequence <= lastSent {
			continue
		}
		if jobID != "" && ev.JobID != jobID {
			continue
		}
		if err := send(ev); err != nil {
			return
		}
	}
}

// writeJSONBody writes JSON without touching the status line, for handlers
// that already wrote a non-200 status.
func writeJSONBody(w http.ResponseWriter, data any) {
	_ = json.NewEncoder(w).Encode(data)
}
