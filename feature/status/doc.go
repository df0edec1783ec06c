// Package status serves GET /_boot/status, a JSON view of the running boot: its id
// and URL, the handling mode of each container feature, the fragments, initializers,
// tag libraries and resource archives the container ended up with, and the restart
// mark file in development.
package status
