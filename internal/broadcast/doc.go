// Package broadcast fans persisted events out to live stream connections.
//
// The broadcaster only accepts events by sequence number and looks each one
// up in the store before delivery, so nothing reaches a subscriber unless
// it is already durable. Every connection owns a bounded queue; a full
// queue evicts that connection rather than blocking the publisher or
// skipping events for anyone else.
//
// Replayer covers the catch-up path: it walks the store in fixed-size
// chunks from a resume position and hands events to the caller in
// sequence order.
package broadcast
