// Package container implements the embedded web container that webboot boots.
//
// The container is deliberately small: it knows how to read archives (jar/zip files),
// scan them for descriptors, and drive a context through its lifecycle. HTTP serving
// is left to Fiber; the container only produces the metadata (mappings, resource sets,
// tag libraries) that the boot sequence mounts on the Fiber app.
//
// # Archives and Scanning
//
// Archives come from one or more ArchiveSource implementations (a lib directory, an
// object storage bucket). The Scanner walks them for a given ScanKind and consults its
// ArchiveFilter before handing each archive to the caller. The filter can be replaced
// at any time before scanning through SetFilter.
//
// # Lifecycle
//
// A Context emits events in a fixed order:
//
//	BeforeInit -> AfterInit -> BeforeStart -> ConfigureStart -> Start -> AfterStart
//	BeforeStop -> Stop -> AfterStop
//
// Listeners are notified synchronously, in registration order, on the goroutine that
// called Start or Stop. The built-in configurator runs the startup sub-steps on
// ConfigureStart through the ConfigSteps installed on the context, which lets callers
// decide which steps run without touching the container internals.
package container
