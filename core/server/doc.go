// Package server holds the HTTP server configuration.
//
// # Configuration
//
// The Config struct defines the listening port and bind address, the name sent in the
// Server header, the graceful shutdown timeout and the request body limit.
//
// # Connector
//
// A Connector carries the server.* overlay settings that describe how clients reach the
// listener (scheme, secure flag, proxy port). Its Handler stores it on every request so
// handlers can build external URLs with FromCtx.
//
// # Usage
//
// This package is embedded by core/config and consumed by core/boot when the fiber app
// is created.
package server
