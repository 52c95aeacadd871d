// Package runtime wires storage and config into a single-node Pulse
// instance. It exposes Open/Close, a basic health check, and the event
// log the rest of the system builds on.
//
// Example:
//
//	cfg := config.Default()
//	rt, _ := runtime.Open(runtime.Options{DataDir: "./data", Fsync: pebblestore.FsyncModeAlways, Config: cfg})
//	defer rt.Close()
//	_ = rt.CheckHealth(context.Background())
//	seq, _ := rt.Log().Append(context.Background(), "run.finished", "job-1", payload)
package runtime
