package pebblestore

import (
	"context"
	"errors"
	"time"

	"github.com/cockroachdb/pebble"
)

// FsyncMode selects when committed writes are forced to the WAL.
type FsyncMode int

const (
	FsyncModeUnspecified FsyncMode = iota
	// FsyncModeAlways syncs the WAL on every commit. An acknowledged append
	// survives a crash.
	FsyncModeAlways
	// FsyncModeInterval lets Pebble coalesce WAL syncs inside a small window,
	// trading a bounded loss window for commit throughput.
	FsyncModeInterval
	// FsyncModeNever issues no application-driven syncs; Pebble still syncs
	// on its own schedule.
	FsyncModeNever
)

// defaultSyncWindow is the group-commit window when none is configured.
const defaultSyncWindow = 5 * time.Millisecond

// Options configures Open.
type Options struct {
	// DataDir is the Pebble database directory.
	DataDir string
	// Fsync selects the WAL sync policy. Unspecified behaves like
	// FsyncModeInterval with the default window.
	Fsync FsyncMode
	// FsyncInterval is the group-commit window for FsyncModeInterval.
	FsyncInterval time.Duration
}

// DB is the event store's view of Pebble: point reads and writes, atomic
// batches, and ordered iteration, all under one fsync policy fixed at open.
type DB struct {
	inner      *pebble.DB
	syncWrites bool
}

// Open creates or opens the database at opts.DataDir.
func Open(opts Options) (*DB, error) {
	if opts.DataDir == "" {
		return nil, errors.New("pebble: Options.DataDir is required")
	}

	po := &pebble.Options{}
	switch opts.Fsync {
	case FsyncModeAlways, FsyncModeNever:
		// Always syncs per commit; Never not at all. No sync window either way.
	case FsyncModeInterval:
		window := opts.FsyncInterval
		if window <= 0 {
			window = defaultSyncWindow
		}
		po.WALMinSyncInterval = func() time.Duration { return window }
	default:
		po.WALMinSyncInterval = func() time.Duration { return defaultSyncWindow }
	}

	inner, err := pebble.Open(opts.DataDir, po)
	if err != nil {
		return nil, err
	}
	return &DB{inner: inner, syncWrites: opts.Fsync == FsyncModeAlways}, nil
}

// Close closes the database. Safe on a nil receiver.
func (db *DB) Close() error {
	if db == nil || db.inner == nil {
		return nil
	}
	return db.inner.Close()
}

// NewBatch returns a batch for atomic multi-key updates. The caller commits
// it through CommitBatch so the fsync policy applies.
func (db *DB) NewBatch() *pebble.Batch {
	return db.inner.NewBatch()
}

// CommitBatch commits b under the configured fsync policy.
func (db *DB) CommitBatch(_ context.Context, b *pebble.Batch) error {
	if b == nil {
		return errors.New("pebble: nil batch")
	}
	syncMode := pebble.NoSync
	if db.syncWrites {
		syncMode = pebble.Sync
	}
	return b.Commit(syncMode)
}

// Set writes one key through a single-op batch.
func (db *DB) Set(key, value []byte) error {
	b := db.inner.NewBatch()
	defer func() { _ = b.Close() }()
	if err := b.Set(key, value, nil); err != nil {
		return err
	}
	return db.CommitBatch(context.Background(), b)
}

// Delete removes one key through a single-op batch.
func (db *DB) Delete(key []byte) error {
	b := db.inner.NewBatch()
	defer func() { _ = b.Close() }()
	if err := b.Delete(key, nil); err != nil {
		return err
	}
	return db.CommitBatch(context.Background(), b)
}

// Get returns a copy of the value for key. A missing key surfaces Pebble's
// pebble.ErrNotFound; callers translate it to their own absence signal.
func (db *DB) Get(key []byte) ([]byte, error) {
	val, closer, err := db.inner.Get(key)
	if err != nil {
		return nil, err
	}
	defer func() { _ = closer.Close() }()
	return append([]byte(nil), val...), nil
}

// NewIter returns a raw Pebble iterator over the given bounds. The event
// log leans on Pebble's key ordering for sequence-ordered scans.
func (db *DB) NewIter(opts *pebble.IterOptions) (*pebble.Iterator, error) {
	return db.inner.NewIter(opts)
}
