// Package logging provides structured logging for Lumen Route.
//
// This package wraps Go's standard log/slog package so every component
// logs through the same handler configuration.
//
// # Features
//
//   - JSON output for production (machine-parsable)
//   - Text output for development (human-readable)
//   - Default fields (service, version) on all log entries
//   - Level-based filtering (debug, info, warn, error)
//   - Thread-safe for concurrent use
//
// The routing hot path never logs per entity or per sent packet; only a
// failed Art-Net send is logged as it happens. Everything else is counted
// atomically and the monitor reports at intervals.
//
// # Usage
//
//	logger := logging.New(cfg.Logging, "1.0.0")
//	logger.Info("router started", "listen", addr)
//	logger.Error("send failed", "error", err)
package logging
