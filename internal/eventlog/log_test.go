package eventlog

import (
	"context"
	"testing"

	pebblestore "github.com/rivenlabs/pulse/internal/storage/pebble"
)

func newTestLog(t *testing.T) *Log {
	t.Helper()
	db := newTestDB(t, t.TempDir())
	l, err := Open(db)
	if err != nil {
		t.Fatalf("open log: %v", err)
	}
	return l
}

func newTestDB(t *testing.T, dir string) *pebblestore.DB {
	t.Helper()
	db, err := pebblestore.Open(pebblestore.Options{DataDir: dir, Fsync: pebblestore.FsyncModeAlways})
	if err != nil {
		t.Fatalf("open pebble: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestAppendAssignsSequential(t *testing.T) {
	l := newTestLog(t)
	ctx := context.Background()

	s1, err := l.Append(ctx, "run.started", "job-1", []byte(`{"n":1}`))
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	s2, err := l.Append(ctx, "run.finished", "job-1", []byte(`{"n":2}`))
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if s1 != 1 || s2 != 2 {
		t.Fatalf("expected sequences 1,2 got %d,%d", s1, s2)
	}
	if got := l.CurrentSequence(); got != 2 {
		t.Fatalf("current sequence: %d", got)
	}
}

func TestAppendDurableAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	db, err := pebblestore.Open(pebblestore.Options{DataDir: dir, Fsync: pebblestore.FsyncModeAlways})
	if err != nil {
		t.Fatalf("open pebble: %v", err)
	}
	l, err := Open(db)
	if err != nil {
		t.Fatalf("open log: %v", err)
	}
	ctx := context.Background()
	s1, err := l.Append(ctx, "ping", "", []byte(`{}`))
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := db.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	// Reopen: sequence counter must resume, stored event must survive.
	db2 := newTestDB(t, dir)
	l2, err := Open(db2)
	if err != nil {
		t.Fatalf("reopen log: %v", err)
	}
	if got := l2.CurrentSequence(); got != s1 {
		t.Fatalf("expected restored sequence %d, got %d", s1, got)
	}
	s2, err := l2.Append(ctx, "ping", "", []byte(`{}`))
	if err != nil {
		t.Fatalf("append after reopen: %v", err)
	}
	if s2 != s1+1 {
		t.Fatalf("expected %d, got %d", s1+1, s2)
	}
	ev, ok, err := l2.GetEventByID(s1)
	if err != nil || !ok {
		t.Fatalf("get after reopen: ok=%v err=%v", ok, err)
	}
	if ev.Type != "ping" {
		t.Fatalf("type: %q", ev.Type)
	}
}
