// Package config provides loading and environment overlay for Pulse runtime
// configuration. It exposes a Default() baseline, file loading (JSON or
// YAML, by extension), and a PULSE_* environment overlay, plus validation
// for the loopback-only listen address.
//
// Example:
//
//	cfg, err := config.Load("/etc/pulse.yaml")
//	if err != nil { /* handle */ }
//	config.FromEnv(&cfg)
//	if err := config.ValidateListenAddr(cfg.HTTPAddr); err != nil { /* refuse */ }
package config
