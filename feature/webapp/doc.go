// Package webapp serves the web application assembled by the container.
//
// Mappings come from web fragments and handler indexes; each names a handler that the
// caller registers by name. Resource archives (META-INF/resources) are served as
// static files after the mapped routes, so a mapping always wins over a file with the
// same path.
package webapp
