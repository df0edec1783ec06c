package gate

import (
	"context"
	"errors"
	"fmt"

	"webboot/core/container"

	"go.uber.org/zap"
)

// UnwantedInitializerPrefix names the initializer family that is always removed
// after discovery.
const UnwantedInitializerPrefix = "org.eclipse.jetty"

var (
	// ErrNilScanner is returned when the context has no archive scanner at installation time.
	ErrNilScanner = errors.New("context has no archive scanner")
	// ErrNilFilter is returned when the scanner has no filter at installation time.
	ErrNilFilter = errors.New("archive scanner has no filter")
)

// Gate installs the selectable filter on the first lifecycle event it receives and
// decides which startup sub-steps run.
//
// The fired flag has a single writer: the goroutine driving the context lifecycle.
// Concurrent lifecycle notifications are not supported.
type Gate struct {
	registry Registry
	native   container.ConfigSteps
	logger   *zap.Logger

	fired bool
}

// New creates a gate delegating the enabled steps to native.
func New(registry Registry, native container.ConfigSteps, logger *zap.Logger) *Gate {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Gate{registry: registry, native: native, logger: logger}
}

// Attach registers the gate as lifecycle listener and step implementation of c.
func (g *Gate) Attach(c *container.Context) {
	c.AddLifecycleListener(g)
	c.SetSteps(g)
}

// Registry returns the registry the gate decides with.
func (g *Gate) Registry() Registry { return g.registry }

// Fired reports whether the one-time installation has run.
func (g *Gate) Fired() bool { return g.fired }

// LifecycleEvent implements container.LifecycleListener.
func (g *Gate) LifecycleEvent(ctx context.Context, c *container.Context, ev container.Event) error {
	if g.fired {
		return nil
	}
	g.fired = true
	return g.install(c)
}

func (g *Gate) install(c *container.Context) error {
	if !g.registry.SelectorEnabled() {
		return nil
	}

	scanner := c.Scanner()
	if scanner == nil {
		return fmt.Errorf("failed to install selectable filter on %s: %w", c.Path(), ErrNilScanner)
	}
	existing := scanner.Filter()
	if existing == nil {
		return fmt.Errorf("failed to install selectable filter on %s: %w", c.Path(), ErrNilFilter)
	}

	scanner.SetFilter(Compose(g.registry, existing))
	g.logger.Info("Installed selectable archive filter",
		zap.Bool("tld_selector", g.registry.TldSelectorEnabled()),
		zap.Bool("web_fragments_selector", g.registry.WebFragmentsSelectorEnabled()),
	)
	return nil
}

// DiscoverFragments implements container.ConfigSteps.
func (g *Gate) DiscoverFragments(ctx context.Context, c *container.Context) (map[string]*container.Fragment, error) {
	if g.registry.WebFragments == ModeDetect {
		return g.native.DiscoverFragments(ctx, c)
	}
	g.logger.Debug("Skipping web fragment discovery")
	return make(map[string]*container.Fragment, 2), nil
}

// DiscoverInitializers implements container.ConfigSteps.
func (g *Gate) DiscoverInitializers(ctx context.Context, c *container.Context) error {
	if g.registry.InitializersAvailable() {
		if err := g.native.DiscoverInitializers(ctx, c); err != nil {
			return err
		}
	} else {
		g.logger.Debug("Skipping initializer discovery")
	}
	if n := c.RemoveInitializers(UnwantedInitializerPrefix); n > 0 {
		g.logger.Debug("Removed unwanted initializers", zap.Int("count", n))
	}
	return nil
}

// ProcessAnnotations implements container.ConfigSteps.
func (g *Gate) ProcessAnnotations(ctx context.Context, c *container.Context, fragments []*container.Fragment) error {
	if g.registry.Annotation != ModeDetect {
		return nil
	}
	return g.native.ProcessAnnotations(ctx, c, fragments)
}

// ProcessResourceArchives implements container.ConfigSteps.
// Only fragments found by discovery are processed, so this has no effect unless
// web fragment discovery ran too.
func (g *Gate) ProcessResourceArchives(ctx context.Context, c *container.Context, fragments []*container.Fragment) error {
	if g.registry.MetaInfoResource != ModeDetect {
		return nil
	}
	return g.native.ProcessResourceArchives(ctx, c, fragments)
}
