package broadcast

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rivenlabs/pulse/internal/eventlog"
)

// ErrConnectionClosed reports a wait on a connection that has been removed
// or evicted.
var ErrConnectionClosed = errors.New("broadcast: connection closed")

// Connection is a single subscriber's delivery queue. The broadcaster
// enqueues; exactly one reader consumes via Next.
type Connection struct {
	id            string
	queue         chan eventlog.Event
	done          chan struct{}
	closeOnce     sync.Once
	createdAt     time.Time
	lastDelivered atomic.Uint64
}

func newConnection(id string, capacity int) *Connection {
	return &Connection{
		id:        id,
		queue:     make(chan eventlog.Event, capacity),
		done:      make(chan struct{}),
		createdAt: time.Now(),
	}
}

// ID returns the connection's identity.
func (c *Connection) ID() string { return c.id }

// Closed reports whether the connection has been closed.
func (c *Connection) Closed() bool {
	select {
	case <-c.done:
		return true
	default:
		return false
	}
}

func (c *Connection) close() {
	c.closeOnce.Do(func() { close(c.done) })
}

// QueueDepth returns the number of queued, undelivered events.
func (c *Connection) QueueDepth() int { return len(c.queue) }

// LastDelivered returns the highest sequence enqueued to this connection.
func (c *Connection) LastDelivered() uint64 { return c.lastDelivered.Load() }

// Next returns the next queued event. When wait elapses with nothing
// queued it returns ok=false and a nil error, which the stream layer uses
// as its keepalive tick. Events already queued before a close are still
// drained; once the queue is empty a closed connection reports
// ErrConnectionClosed.
func (c *Connection) Next(ctx context.Context, wait time.Duration) (eventlog.Event, bool, error) {
	// Drain without blocking first so close does not drop queued events.
	select {
	case ev := <-c.queue:
		return ev, true, nil
	default:
	}

	select {
	case <-c.done:
		return eventlog.Event{}, false, ErrConnectionClosed
	default:
	}

	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case ev := <-c.queue:
		return ev, true, nil
	case <-c.done:
		return eventlog.Event{}, false, ErrConnectionClosed
	case <-ctx.Done():
		return eventlog.Event{}, false, ctx.Err()
	case <-timer.C:
		return eventlog.Event{}, false, nil
	}
}
