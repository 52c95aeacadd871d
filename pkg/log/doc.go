// Package log provides Pulse's structured logging facade.
//
// # Overview
//
// The package exposes a small Logger interface with leveled methods and a
// simple Field type for structured context. Entries flow through a
// formatter/outputs pipeline so the same logger can render text or JSON and
// write to one or more destinations.
//
// Quick start
//
//	l := log.NewLogger(
//	    log.WithLevel(log.InfoLevel),
//	    log.WithFormatter(&log.TextFormatter{}),
//	    log.WithOutput(log.NewConsoleOutput()),
//	)
//	l = l.With(log.Component("server"))
//	l.Info("server started", log.Str("addr", "127.0.0.1:7517"))
//
// # Configuration
//
// Use ApplyConfig to build a logger from a declarative Config, supporting
// text or JSON formatting.
//
// # Secret masking
//
// Outputs can be wrapped with NewMaskingOutput to mask secret-shaped
// substrings in every emitted line. The masking is applied to the formatted
// bytes, so it covers fields and messages alike regardless of which
// component produced the entry.
//
// # Interop
//
// To integrate with libraries expecting *log.Logger, use RedirectStdLog.
package log
