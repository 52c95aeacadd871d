package broadcast

import (
	"context"
	"errors"
	"testing"

	"github.com/rivenlabs/pulse/internal/eventlog"
)

func TestReplayFromZero(t *testing.T) {
	store := &memStore{}
	for i := 0; i < 5; i++ {
		store.append("tick", "", `{}`)
	}
	r := NewReplayer(store, 2)

	var got []uint64
	last, count, err := r.Replay(context.Background(), 0, "", func(ev eventlog.Event) error {
		got = append(got, ev.Sequence)
		return nil
	})
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if count != 5 || last != 5 {
		t.Fatalf("count=%d last=%d", count, last)
	}
	for i, seq := range got {
		if seq != uint64(i+1) {
			t.Fatalf("order broken at %d: %d", i, seq)
		}
	}
}

func TestReplayDeterministic(t *testing.T) {
	store := &memStore{}
	for i := 0; i < 7; i++ {
		store.append("tick", "", `{}`)
	}
	r := NewReplayer(store, 3)

	run := func() []uint64 {
		var seqs []uint64
		_, _, err := r.Replay(context.Background(), 2, "", func(ev eventlog.Event) error {
			seqs = append(seqs, ev.Sequence)
			return nil
		})
		if err != nil {
			t.Fatalf("replay: %v", err)
		}
		return seqs
	}
	a, b := run(), run()
	if len(a) != len(b) || len(a) != 5 {
		t.Fatalf("lengths: %d %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("nondeterministic at %d: %d vs %d", i, a[i], b[i])
		}
	}
}

func TestReplayExactChunkBoundary(t *testing.T) {
	store := &memStore{}
	for i := 0; i < 4; i++ {
		store.append("tick", "", `{}`)
	}
	// Chunk size divides the event count evenly; the final empty chunk must
	// terminate the walk.
	r := NewReplayer(store, 2)
	_, count, err := r.Replay(context.Background(), 0, "", func(eventlog.Event) error { return nil })
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if count != 4 {
		t.Fatalf("count: %d", count)
	}
}

func TestReplayJobFilter(t *testing.T) {
	store := &memStore{}
	store.append("step", "job-a", `{}`)
	store.append("step", "job-b", `{}`)
	store.append("step", "job-a", `{}`)
	r := NewReplayer(store, 10)

	var seqs []uint64
	last, count, err := r.Replay(context.Background(), 0, "job-a", func(ev eventlog.Event) error {
		seqs = append(seqs, ev.Sequence)
		return nil
	})
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if count != 2 || last != 3 {
		t.Fatalf("count=%d last=%d", count, last)
	}
	if seqs[0] != 1 || seqs[1] != 3 {
		t.Fatalf("seqs: %v", seqs)
	}
}

func TestReplayEmptyStore(t *testing.T) {
	r := NewReplayer(&memStore{}, 10)
	last, count, err := r.Replay(context.Background(), 0, "", func(eventlog.Event) error {
		t.Fatalf("fn should not be called")
		return nil
	})
	if err != nil || count != 0 || last != 0 {
		t.Fatalf("last=%d count=%d err=%v", last, count, err)
	}
}

func TestReplayStopsOnCallbackError(t *testing.T) {
	store := &memStore{}
	for i := 0; i < 3; i++ {
		store.append("tick", "", `{}`)
	}
	r := NewReplayer(store, 10)

	boom := errors.New("sink broke")
	last, count, err := r.Replay(context.Background(), 0, "", func(ev eventlog.Event) error {
		if ev.Sequence == 2 {
			return boom
		}
		return nil
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err: %v", err)
	}
	if count != 1 || last != 1 {
		t.Fatalf("count=%d last=%d", count, last)
	}
}

func TestReplayHonorsContext(t *testing.T) {
	store := &memStore{}
	store.append("tick", "", `{}`)
	r := NewReplayer(store, 10)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, _, err := r.Replay(ctx, 0, "", func(eventlog.Event) error { return nil }); err == nil {
		t.Fatalf("expected context error")
	}
}
