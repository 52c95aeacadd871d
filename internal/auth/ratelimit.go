package auth

import (
	"sync"
	"time"

	"github.com/jellydator/ttlcache/v3"
)

// FailureLimiter tracks failed auth attempts per client over a sliding
// window. Entries expire via TTL so idle clients cost nothing.
type FailureLimiter struct {
	max    int
	window time.Duration

	mu    sync.Mutex
	cache *ttlcache.Cache[string, *failureWindow]
}

type failureWindow struct {
	attempts []time.Time
}

// NewFailureLimiter allows max failures per client within window.
func NewFailureLimiter(max int, window time.Duration) *FailureLimiter {
	cache := ttlcache.New[string, *failureWindow](
		ttlcache.WithTTL[string, *failureWindow](window),
	)
	go cache.Start()
	return &FailureLimiter{max: max, window: window, cache: cache}
}

// Limited reports whether client has exhausted its failure budget. A
// limited client stays limited until enough attempts age out of the
// window, regardless of what credentials it presents.
func (l *FailureLimiter) Limited(client string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	item := l.cache.Get(client)
	if item == nil {
		return false
	}
	return len(l.prune(item.Value())) >= l.max
}

// RecordFailure notes a failed attempt for client.
func (l *FailureLimiter) RecordFailure(client string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	var w *failureWindow
	if item := l.cache.Get(client); item != nil {
		w = item.Value()
	} else {
		w = &failureWindow{}
	}
	w.attempts = append(l.prune(w), time.Now())
	l.cache.Set(client, w, l.window)
}

// Reset clears the failure history for client.
func (l *FailureLimiter) Reset(client string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cache.Delete(client)
}

// Stop shuts down the TTL janitor.
func (l *FailureLimiter) Stop() { l.cache.Stop() }

func (l *FailureLimiter) prune(w *failureWindow) []time.Time {
	cutoff := time.Now().Add(-l.window)
	kept := w.attempts[:0]
	for _, t := range w.attempts {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	w.attempts = kept
	return kept
}
