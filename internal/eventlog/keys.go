package eventlog

import (
	"encoding/binary"
)

// Keyspace helpers for Pebble keys.
//
// Layout (byte-wise, lexicographically sortable):
// - log/m           (metadata: last assigned sequence)
// - log/e/{seq_be8} (event records)

var (
	metaKey     = []byte("log/m")
	entryPrefix = []byte("log/e/")
)

func appendBE8(dst []byte, v uint64) []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	return append(dst, b[:]...)
}

// KeyMeta returns the log metadata key.
func KeyMeta() []byte {
	return append([]byte(nil), metaKey...)
}

// KeyEntry builds the record key with a big-endian sequence so that byte
// order matches sequence order.
func KeyEntry(seq uint64) []byte {
	k := make([]byte, 0, len(entryPrefix)+8)
	k = append(k, entryPrefix...)
	k = appendBE8(k, seq)
	return k
}

// seqFromKey extracts the sequence from an entry key.
func seqFromKey(key []byte) uint64 {
	return binary.BigEndian.Uint64(key[len(key)-8:])
}
