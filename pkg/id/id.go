package id

import (
	"encoding/binary"
	"encoding/hex"
	"sync"
	"time"
)

// ID is a 16-byte connection identity: creation time in milliseconds,
// big-endian, followed by a per-process counter. Byte order doubles as age
// order, so sorted ids read oldest connection first.
type ID [16]byte

// String renders the id as 32 hex characters.
func (id ID) String() string { return hex.EncodeToString(id[:]) }

// clock is swapped out in tests.
var clock = func() int64 { return time.Now().UnixMilli() }

// Generator mints process-unique IDs. Two ids from one generator never
// collide, even when the wall clock stands still or steps backwards: the
// counter disambiguates within a millisecond and the generator never lets
// its notion of time move back.
type Generator struct {
	mu     sync.Mutex
	lastMs int64
	count  uint64
}

// NewGenerator returns a fresh Generator.
func NewGenerator() *Generator { return &Generator{} }

// Next returns a new ID.
func (g *Generator) Next() ID {
	g.mu.Lock()
	defer g.mu.Unlock()

	ms := clock()
	if ms <= g.lastMs {
		ms = g.lastMs
		g.count++
	} else {
		g.count = 0
	}
	g.lastMs = ms

	var id ID
	binary.BigEndian.PutUint64(id[:8], uint64(ms))
	binary.BigEndian.PutUint64(id[8:], g.count)
	return id
}
