package eventlog

import (
	"errors"

	"github.com/cockroachdb/pebble"
)

// GetEventByID returns the event stored under seq. The second return value
// is false when no such sequence exists (never assigned, or trimmed).
func (l *Log) GetEventByID(seq uint64) (Event, bool, error) {
	if seq == 0 {
		return Event{}, false, nil
	}
	val, err := l.db.Get(KeyEntry(seq))
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return Event{}, false, nil
		}
		return Event{}, false, err
	}
	ev, ok := DecodeRecord(seq, val)
	if !ok {
		return Event{}, false, ErrNotFound
	}
	return ev, true, nil
}

// GetEventsSince returns up to limit events with sequence > after, in
// ascending order. When jobID is non-empty, only events scoped to that job
// are returned; the limit counts matching events, so a full page means the
// caller should ask again.
func (l *Log) GetEventsSince(after uint64, jobID string, limit int) ([]Event, error) {
	if limit <= 0 {
		limit = 1000
	}
	low := KeyEntry(after + 1)
	hi := KeyEntry(^uint64(0))
	iter, err := l.db.NewIter(&pebble.IterOptions{LowerBound: low, UpperBound: append(hi, 0x00)})
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	events := make([]Event, 0, limit)
	for ok := iter.First(); ok && len(events) < limit; ok = iter.Next() {
		seq := seqFromKey(iter.Key())
		ev, okDec := DecodeRecord(seq, iter.Value())
		if !okDec {
			continue
		}
		if jobID != "" && ev.JobID != jobID {
			continue
		}
		events = append(events, ev)
	}
	return events, nil
}
