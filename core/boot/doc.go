// Package boot starts an embedded web server the way a development team wants it:
// with selective archive scanning, an overlay configuration and, in development,
// automatic eviction of the previous instance on the same port.
//
// # Sequence
//
//   - Ready loads the overlay chain (core/props) and the optional logging file.
//   - Go registers the restart coordinator (development only), starts the container
//     context with the feature gate attached, builds the fiber app with the
//     built-in middleware, runs setup hooks, loads features and starts listening.
//   - Await blocks until the server stops and releases the boot.
//   - BootAwait does all three and closes the boot when its context is cancelled.
//
// # Options
//
// Boots are configured with functional options. BrowseOnDesktop and
// SuppressShutdownHook are rejected outside development.
//
// # Usage
//
//	b, err := boot.New(boot.WithPort(8080), boot.AsDevelopment(),
//		boot.UseTldDetect(gate.ContainsSelector("mylib")))
//	if err != nil {
//		return err
//	}
//	return b.BootAwait(ctx)
package boot
