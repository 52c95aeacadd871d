// Package id mints the identities the broadcaster assigns to stream
// connections that did not bring their own.
//
// An ID packs the creation time and a per-process counter into 16 bytes,
// so connection ids in logs and stats sort by age, and ids stay unique
// within a process even under a stalled or backwards-stepping clock.
package id
