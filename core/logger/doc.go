// Package logger builds the zap loggers used by the boot, the container and the CLI.
//
// A debug level selects zap's development config (console friendly, caller info);
// every other level starts from the production config and only swaps the level.
//
// # Ray IDs
//
// WithRayID copies the ray id stored by the rayid middleware from a Fiber context into
// the logger, so every line written while serving a request carries it.
//
// # Configuration
//
// The package supports configuration for:
//   - Level: debug, info, warn, error
//   - Encoding: json (production) or console (development)
//   - Output: comma-separated sinks
//
// LoadFile reads the same keys from a logging properties file. ${key} placeholders in
// the file are expanded from caller replacements first, then from the boot config.
//
// # Usage
//
//	log, _ := logger.New(&logger.Config{Level: "info"})
//	log.Info("Server started")
//
//	// In a request handler:
//	l := logger.WithRayID(log, c)
//	l.Error("Handler failed", zap.Error(err))
package logger
