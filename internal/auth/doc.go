// Package auth implements the local token gate in front of the HTTP API.
//
// A single bearer token (prefix "pl_", 256 bits of randomness) is minted on
// first start and kept in the OS keyring when one is available, falling
// back to a 0600 file under the data directory. Token comparison is
// constant-time, failed attempts are rate limited per client over a
// sliding window, and anything token-shaped is scrubbed from log output.
package auth
