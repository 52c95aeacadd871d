package runtime

import (
	"context"
	"errors"
	"time"

	cfgpkg "github.com/rivenlabs/pulse/internal/config"
	"github.com/rivenlabs/pulse/internal/eventlog"
	pebblestore "github.com/rivenlabs/pulse/internal/storage/pebble"
)

// Options for building the Runtime.
type Options struct {
	DataDir       string
	Fsync         pebblestore.FsyncMode
	FsyncInterval time.Duration
	Config        cfgpkg.Config
}

// Runtime wires storage and config for a single-node instance. The event
// log opens eagerly so the sequence counter is restored before anything
// can publish.
type Runtime struct {
	db     *pebblestore.DB
	log    *eventlog.Log
	config cfgpkg.Config
}

// Open initializes the underlying storage and the event log.
func Open(opts Options) (*Runtime, error) {
	db, err := pebblestore.Open(pebblestore.Options{
		DataDir:       opts.DataDir,
		Fsync:         opts.Fsync,
		FsyncInterval: opts.FsyncInterval,
	})
	if err != nil {
		return nil, err
	}
	l, err := eventlog.Open(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Runtime{db: db, log: l, config: opts.Config}, nil
}

// Close closes underlying resources.
func (r *Runtime) Close() error {
	if r.db == nil {
		return nil
	}
	return r.db.Close()
}

// CheckHealth performs a simple health check against the store.
func (r *Runtime) CheckHealth(ctx context.Context) error {
	if r.db == nil {
		return errors.New("db not open")
	}
	it, err := r.db.NewIter(nil)
	if err != nil {
		return err
	}
	it.Close()
	return nil
}

// Log returns the event log.
func (r *Runtime) Log() *eventlog.Log { return r.log }

// DB exposes the underlying DB for advanced operations (internal use only).
func (r *Runtime) DB() *pebblestore.DB { return r.db }

// Config returns the runtime configuration.
func (r *Runtime) Config() cfgpkg.Config { return r.config }
