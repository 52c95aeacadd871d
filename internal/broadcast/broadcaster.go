package broadcast

import (
	"fmt"
	"sync"

	"github.com/rivenlabs/pulse/internal/eventlog"
	"github.com/rivenlabs/pulse/pkg/id"
	logpkg "github.com/rivenlabs/pulse/pkg/log"
)

// Store is the read surface the broadcaster and replayer need from the
// event store.
type Store interface {
	GetEventByID(seq uint64) (eventlog.Event, bool, error)
	GetEventsSince(after uint64, jobID string, limit int) ([]eventlog.Event, error)
	CurrentSequence() uint64
}

// Options tunes the broadcaster.
type Options struct {
	// QueueCapacity is the per-connection queue depth. Zero means 10000.
	QueueCapacity int
}

// Stats is a point-in-time snapshot of broadcaster state.
type Stats struct {
	Connections   int         `json:"connections"`
	QueueCapacity int         `json:"queue_capacity"`
	Evicted       uint64      `json:"evicted_total"`
	LastSequence  uint64      `json:"last_sequence"`
	Conns         []ConnStats `json:"conns,omitempty"`
}

// ConnStats describes one registered connection.
type ConnStats struct {
	ID            string `json:"id"`
	QueueDepth    int    `json:"queue_depth"`
	LastDelivered uint64 `json:"last_delivered"`
}

// Broadcaster fans persisted events out to registered connections.
// Publishers hand it sequence numbers, never event bodies: the event must
// already be in the store, and an unknown sequence is a hard error rather
// than a silent skip.
type Broadcaster struct {
	store    Store
	logger   logpkg.Logger
	queueCap int
	ids      *id.Generator

	mu      sync.RWMutex
	conns   map[string]*Connection
	evicted uint64
}

// New constructs a Broadcaster over the given store.
func New(store Store, logger logpkg.Logger, opts Options) *Broadcaster {
	if logger == nil {
		logger = logpkg.NewLogger().With(logpkg.Component("broadcast"))
	}
	cap := opts.QueueCapacity
	if cap <= 0 {
		cap = 10000
	}
	return &Broadcaster{
		store:    store,
		logger:   logger,
		queueCap: cap,
		ids:      id.NewGenerator(),
		conns:    map[string]*Connection{},
	}
}

// AddConnection registers a new connection and returns it. An empty connID
// gets a generated identity. Re-registering an existing id closes the old
// connection first, so an id never has two live readers.
func (b *Broadcaster) AddConnection(connID string) *Connection {
	if connID == "" {
		connID = b.ids.Next().String()
	}
	conn := newConnection(connID, b.queueCap)

	b.mu.Lock()
	if old, ok := b.conns[connID]; ok {
		old.close()
	}
	b.conns[connID] = conn
	total := len(b.conns)
	b.mu.Unlock()

	b.logger.Debug("connection added", logpkg.Str("conn", connID), logpkg.Int("connections", total))
	return conn
}

// RemoveConnection closes and deregisters a connection. Unknown ids are a
// no-op, so disconnect paths can call it unconditionally.
func (b *Broadcaster) RemoveConnection(connID string) {
	b.mu.Lock()
	conn, ok := b.conns[connID]
	if ok {
		delete(b.conns, connID)
	}
	total := len(b.conns)
	b.mu.Unlock()

	if !ok {
		return
	}
	conn.close()
	b.logger.Debug("connection removed", logpkg.Str("conn", connID), logpkg.Int("connections", total))
}

// ConnectionCount returns the number of registered connections.
func (b *Broadcaster) ConnectionCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.conns)
}

// BroadcastByID delivers the persisted event with the given sequence to
// every connection and returns how many accepted it. A sequence the store
// does not know is a bug in the caller (events must be persisted before
// broadcast) and fails loudly. Connections whose queue is full are marked
// during the pass and evicted after it, so a slow consumer costs only its
// own connection.
func (b *Broadcaster) BroadcastByID(seq uint64) (int, error) {
	ev, ok, err := b.store.GetEventByID(seq)
	if err != nil {
		return 0, fmt.Errorf("broadcast: load event %d: %w", seq, err)
	}
	if !ok {
		return 0, fmt.Errorf("broadcast: event %d not persisted", seq)
	}

	b.mu.RLock()
	snapshot := make([]*Connection, 0, len(b.conns))
	for _, c := range b.conns {
		snapshot = append(snapshot, c)
	}
	b.mu.RUnlock()

	delivered := 0
	var overflowed []*Connection
	for _, c := range snapshot {
		if c.Closed() {
			continue
		}
		select {
		case c.queue <- ev:
			c.lastDelivered.Store(seq)
			delivered++
		default:
			overflowed = append(overflowed, c)
		}
	}

	for _, c := range overflowed {
		b.evict(c, seq)
	}
	return delivered, nil
}

// SendToConnection delivers one persisted event to a single connection.
// It returns false when the connection is unknown, already closed, or got
// evicted because its queue was full; an unpersisted sequence is an error
// exactly as in BroadcastByID.
func (b *Broadcaster) SendToConnection(connID string, seq uint64) (bool, error) {
	ev, ok, err := b.store.GetEventByID(seq)
	if err != nil {
		return false, fmt.Errorf("broadcast: load event %d: %w", seq, err)
	}
	if !ok {
		return false, fmt.Errorf("broadcast: event %d not persisted", seq)
	}

	b.mu.RLock()
	conn, exists := b.conns[connID]
	b.mu.RUnlock()
	if !exists || conn.Closed() {
		return false, nil
	}

	select {
	case conn.queue <- ev:
		conn.lastDelivered.Store(seq)
		return true, nil
	default:
		b.evict(conn, seq)
		return false, nil
	}
}

// evict removes a connection whose queue overflowed. Eviction over
// skipping keeps the per-connection stream gapless: the client reconnects
// and replays from its last acknowledged sequence instead of silently
// missing events.
func (b *Broadcaster) evict(c *Connection, seq uint64) {
	b.mu.Lock()
	removed := false
	if cur, ok := b.conns[c.id]; ok && cur == c {
		delete(b.conns, c.id)
		b.evicted++
		removed = true
	}
	b.mu.Unlock()
	c.close()

	if !removed {
		// Lost the race with RemoveConnection; nothing left to count.
		return
	}
	b.logger.Warn("connection evicted: queue full",
		logpkg.Str("conn", c.id),
		logpkg.Uint64("sequence", seq),
		logpkg.Int("queue_capacity", b.queueCap),
	)
}

// Stats returns a snapshot of broadcaster state.
func (b *Broadcaster) Stats() Stats {
	b.mu.RLock()
	defer b.mu.RUnlock()
	s := Stats{
		Connections:   len(b.conns),
		QueueCapacity: b.queueCap,
		Evicted:       b.evicted,
		LastSequence:  b.store.CurrentSequence(),
	}
	for _, c := range b.conns {
		s.Conns = append(s.Conns, ConnStats{ID: c.id, QueueDepth: c.QueueDepth(), LastDelivered: c.LastDelivered()})
	}
	return s
}
