// Package httpserver provides Pulse's local HTTP API: JSON endpoints for
// publishing and inspecting events, and an SSE stream with replay and
// live delivery. Every request passes the auth gate except the identity
// and health routes; the listener is loopback-only.
//
// Example:
//
//	rt, _ := runtime.Open(runtime.Options{DataDir: "./data", Fsync: pebblestore.FsyncModeAlways, Config: config.Default()})
//	s := httpserver.New(rt, bc, rp, gate, logger)
//	ctx, cancel := context.WithCancel(context.Background())
//	defer cancel()
//	_ = s.ListenAndServe(ctx, "127.0.0.1:7517")
package httpserver
