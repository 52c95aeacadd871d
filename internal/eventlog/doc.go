// Package eventlog implements Pulse's durable, append-only event store.
//
// # Overview
//
// Events live in a single global log persisted in Pebble. Keys are
// lexicographically ordered for efficient range scans:
//   - log/m           (metadata: last assigned sequence)
//   - log/e/{seq_be8} (event records)
//
// Records are framed as: varint headerLen | header | payload | crc32c.
// The header carries the write timestamp (8 bytes big-endian ms) followed
// by a small JSON object with the event type and optional job scope.
//
// Sequence numbers start at 1, never repeat, and never decrease; the last
// assigned sequence is committed in the same batch as the record, so a
// restart resumes exactly where the log left off.
//
// API surface (internal)
//
//	l, _ := Open(db)
//	seq, _ := l.Append(ctx, "run.finished", "job-42", payload)
//	ev, ok, _ := l.GetEventByID(seq)
//	evs, _ := l.GetEventsSince(0, "", 1000)
//	_, _, _ = l.TrimOlderThan(ctx, cutoffMs, 1024, 0)
package eventlog
