// Package loader mounts features on the boot's fiber app.
//
// A feature is a named unit of routes that can be switched off:
//
//	type Feature interface {
//	    Name() string
//	    IsEnabled() bool
//	    Load(app fiber.Router) error
//	}
//
// The boot builds one Manager per start from its feature factories, so features
// can capture the started container and the boot report. Registration order is
// route order; a catch-all route (the webapp default mapping) must come after
// anything it would otherwise shadow. Registering a name twice replaces the
// earlier feature in place. LoadAll skips disabled features and stops at the
// first Load error, naming the feature.
package loader
