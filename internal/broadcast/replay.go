package broadcast

import (
	"context"

	"github.com/rivenlabs/pulse/internal/eventlog"
)

// Replayer reads stored events in fixed-size chunks for the catch-up phase
// of a stream.
type Replayer struct {
	store Store
	chunk int
}

// NewReplayer constructs a Replayer. chunkSize <= 0 means 1000.
func NewReplayer(store Store, chunkSize int) *Replayer {
	if chunkSize <= 0 {
		chunkSize = 1000
	}
	return &Replayer{store: store, chunk: chunkSize}
}

// Replay walks events with sequence > after in ascending order, invoking fn
// for each. A short chunk from the store signals exhaustion. Returns the
// last sequence handed to fn (after when none were), the number of events
// replayed, and the first error from ctx, the store, or fn.
func (r *Replayer) Replay(ctx context.Context, after uint64, jobID string, fn func(eventlog.Event) error) (uint64, int, error) {
	cursor := after
	count := 0
	for {
		if err := ctx.Err(); err != nil {
			return cursor, count, err
		}
		events, err := r.store.GetEventsSince(cursor, jobID, r.chunk)
		if err != nil {
			return cursor, count, err
		}
		for _, ev := range events {
			if err := fn(ev); err != nil {
				return cursor, count, err
			}
			cursor = ev.Sequence
			count++
		}
		if len(events) < r.chunk {
			return cursor, count, nil
		}
	}
}

// MaxSequence returns the store's highest assigned sequence.
func (r *Replayer) MaxSequence() uint64 { return r.store.CurrentSequence() }
