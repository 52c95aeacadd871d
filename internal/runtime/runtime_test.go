package runtime

import (
	"context"
	"testing"

	cfgpkg "github.com/rivenlabs/pulse/internal/config"
	pebblestore "github.com/rivenlabs/pulse/internal/storage/pebble"
)

func TestOpenCloseHealth(t *testing.T) {
	dir := t.TempDir()
	rt, err := Open(Options{DataDir: dir, Fsync: pebblestore.FsyncModeAlways, Config: cfgpkg.Default()})
	if err != nil {
		t.Fatalf("open runtime: %v", err)
	}
	defer rt.Close()
	if err := rt.CheckHealth(context.Background()); err != nil {
		t.Fatalf("health: %v", err)
	}
}

func TestLogOpensWithRuntime(t *testing.T) {
	dir := t.TempDir()
	rt, err := Open(Options{DataDir: dir, Fsync: pebblestore.FsyncModeAlways, Config: cfgpkg.Default()})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer rt.Close()

	seq, err := rt.Log().Append(context.Background(), "ping", "", []byte(`{}`))
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if seq != 1 {
		t.Fatalf("first sequence: %d", seq)
	}
	if _, ok, err := rt.Log().GetEventByID(seq); err != nil || !ok {
		t.Fatalf("get: ok=%v err=%v", ok, err)
	}
}
