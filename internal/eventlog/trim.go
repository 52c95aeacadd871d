package eventlog

import (
	"context"
	"encoding/binary"
	"time"

	"github.com/cockroachdb/pebble"
)

// TrimOlderThan deletes events whose write timestamp is < cutoffMs.
// Deletes commit in batches of up to batchLimit keys with an optional
// throttle between commits. The scan stops at the first entry at or past
// the cutoff, which is safe because timestamps are non-decreasing in
// sequence order. Returns the number of deleted events and the last
// deleted sequence (0 if none). The sequence counter is never rewound.
func (l *Log) TrimOlderThan(ctx context.Context, cutoffMs int64, batchLimit int, throttle time.Duration) (int, uint64, error) {
	if batchLimit <= 0 {
		batchLimit = 1024
	}

	low := KeyEntry(0)
	hi := KeyEntry(^uint64(0))
	iter, err := l.db.NewIter(&pebble.IterOptions{LowerBound: low, UpperBound: append(hi, 0x00)})
	if err != nil {
		return 0, 0, err
	}
	defer iter.Close()

	deleted := 0
	var lastSeq uint64
	for ok := iter.First(); ok; {
		b := l.db.NewBatch()
		n := 0
		for ok && n < batchLimit {
			seq := seqFromKey(iter.Key())
			if ms, okTs := recordTimestamp(iter.Value()); okTs && ms < cutoffMs {
				if err := b.Delete(iter.Key(), nil); err != nil {
					b.Close()
					return deleted, lastSeq, err
				}
				deleted++
				lastSeq = seq
				n++
				ok = iter.Next()
				continue
			}
			ok = false
			break
		}
		if n > 0 {
			if err := l.db.CommitBatch(ctx, b); err != nil {
				b.Close()
				return deleted, lastSeq, err
			}
			b.Close()
			if throttle > 0 {
				time.Sleep(throttle)
			}
		} else {
			b.Close()
		}
	}
	return deleted, lastSeq, nil
}

// recordTimestamp reads the write timestamp out of a framed record without
// decoding the whole event.
func recordTimestamp(b []byte) (int64, bool) {
	hlen, n := binary.Uvarint(b)
	if n <= 0 || hlen < 8 || n+8 > len(b) {
		return 0, false
	}
	return int64(binary.BigEndian.Uint64(b[n : n+8])), true
}
