// Package client provides the `pulse` command-line client.
//
// The CLI talks to the local Pulse HTTP endpoint to publish events,
// inspect stored history, and tail the live SSE stream from a terminal.
// It is primarily intended for developers and operators.
//
// Installation
//
//	go install github.com/rivenlabs/pulse/cmd/pulse@latest
//
// # Address and token configuration
//
// The HTTP base URL is discovered by the application that embeds the
// commands via a BaseURLFunc. When using the standalone binary, it
// defaults to http://127.0.0.1:7517 and can be overridden with the
// PULSE_HTTP environment variable. The auth token is taken from the
// --token flag, then the PULSE_TOKEN environment variable, then the
// local secret store shared with the server.
//
// Usage
//
//	pulse events publish --type run.finished --job-id job-1 --data '{"ok":true}'
//
//	pulse events list --after 0 --limit 50
//	pulse events list --job-id job-1
//
//	pulse events stats
//
//	# Tail the live stream; --after replays history first
//	pulse events tail
//	pulse events tail --after 0 --job-id job-1
//	pulse events tail --filter 'type == "run.finished"'
//
//	pulse auth show
//	pulse auth rotate
//	pulse auth reset
//
// Notes
//
//   - tail connects to the SSE stream endpoint and prints one JSON
//     event per line. Use --limit to stop after N events.
//   - auth rotate and auth reset operate on the local secret store
//     directly; restart clients after rotating.
package client
