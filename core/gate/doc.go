// Package gate decides which container features run during startup.
//
// Four feature categories (annotations, META-INF resources, tag-library descriptors and
// web fragments) each have a Mode, Detect or None, held in a Registry together with
// optional archive-name selectors for the TLD and web-fragment categories.
//
// # Filter Composition
//
// SelectableFilter wraps the container's native archive filter. For a TLD scan with
// a Detect-mode TLD selector, or a pluggability scan with a Detect-mode web-fragments
// selector, the selector alone decides. Every other scan is left to the native filter.
// Compose never wraps a SelectableFilter twice.
//
// # Gate
//
// Gate is attached to a container.Context as both lifecycle listener and ConfigSteps.
// On the first lifecycle event it installs the SelectableFilter (when a selector is in
// play); later events do nothing. Each startup sub-step is delegated to the native
// container steps only when its category is in Detect mode:
//
//   - Web fragment discovery: WebFragments, otherwise an empty map.
//   - Initializer discovery: Annotation or Tld. Initializers named with
//     UnwantedInitializerPrefix are removed either way.
//   - Annotation processing: Annotation.
//   - Resource archive processing: MetaInfoResource (needs discovered fragments).
//
// # Usage
//
//	reg := gate.Registry{Tld: gate.ModeDetect, TldSelector: gate.ContainsSelector("mylib")}
//	g := gate.New(reg, container.NewNativeSteps(logger), logger)
//	g.Attach(ctx)
package gate
