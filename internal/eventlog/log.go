package eventlog

import (
	"context"
	"encoding/binary"
	"errors"
	"sync"
	"time"

	pebblestore "github.com/rivenlabs/pulse/internal/storage/pebble"
)

// ErrNotFound reports a lookup for a sequence the store has never assigned
// or has already trimmed.
var ErrNotFound = errors.New("eventlog: event not found")

// Log is the append-only event store. Appends are serialized; reads go
// straight to Pebble and may run concurrently with appends.
type Log struct {
	db *pebblestore.DB

	mu      sync.Mutex
	lastSeq uint64
}

// Open initializes the Log and restores the last assigned sequence from
// metadata (if any).
func Open(db *pebblestore.DB) (*Log, error) {
	l := &Log{db: db}
	meta, err := db.Get(KeyMeta())
	if err == nil && len(meta) >= 8 {
		l.lastSeq = binary.BigEndian.Uint64(meta[:8])
	}
	return l, nil
}

// Append persists one event and returns its assigned sequence. The record
// and the updated metadata commit in one atomic batch, so the sequence is
// only ever observed after the event is durable.
func (l *Log) Append(ctx context.Context, typ, jobID string, payload []byte) (uint64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	seq := l.lastSeq + 1
	val, err := EncodeRecord(time.Now().UnixMilli(), typ, jobID, payload)
	if err != nil {
		return 0, err
	}

	b := l.db.NewBatch()
	defer b.Close()
	if err := b.Set(KeyEntry(seq), val, nil); err != nil {
		return 0, err
	}
	var meta [8]byte
	binary.BigEndian.PutUint64(meta[:], seq)
	if err := b.Set(KeyMeta(), meta[:], nil); err != nil {
		return 0, err
	}
	if err := l.db.CommitBatch(ctx, b); err != nil {
		return 0, err
	}
	l.lastSeq = seq
	return seq, nil
}

// CurrentSequence returns the highest assigned sequence, 0 when the log is
// empty. Trims do not move it backwards.
func (l *Log) CurrentSequence() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lastSeq
}
