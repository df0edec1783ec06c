// Package middleware contains HTTP middleware for the Fiber application.
//
// It provides cross-cutting concerns that sit between the request and the handler.
//
// # Components
//
//   - RayID: Generates a unique Request ID (RayID) for every incoming request,
//     injecting it into the context and response headers for tracing.
//   - Charset: Decodes percent-encoded request paths from the configured URI
//     encoding (or the request body charset) to UTF-8 before routing.
//   - AccessLog: Writes NCSA style access log lines to a daily file.
//
// These middleware components are registered globally by core/boot, in the order
// RayID, Charset, AccessLog, followed by the caller's own middleware.
package middleware
