package container

import (
	"context"
	"fmt"
	"sort"
)

// ConfigSteps are the startup sub-steps the configurator runs on ConfigureStart.
// NativeSteps always runs all of them; callers install their own implementation
// through Context.SetSteps to decide which ones actually run.
type ConfigSteps interface {
	// DiscoverFragments returns the fragments found in the scanned archives, keyed by name.
	// Implementations never return a nil map.
	DiscoverFragments(ctx context.Context, c *Context) (map[string]*Fragment, error)
	// DiscoverInitializers registers the initializers the context runs on Start.
	DiscoverInitializers(ctx context.Context, c *Context) error
	// ProcessAnnotations registers handler declarations found in the fragments.
	ProcessAnnotations(ctx context.Context, c *Context, fragments []*Fragment) error
	// ProcessResourceArchives registers META-INF/resources content of the fragments.
	ProcessResourceArchives(ctx context.Context, c *Context, fragments []*Fragment) error
}

// configurator is the built-in listener that assembles the web application.
type configurator struct{}

func (cfg *configurator) LifecycleEvent(ctx context.Context, c *Context, ev Event) error {
	switch ev {
	case EventConfigureStart:
		return cfg.webConfig(ctx, c)
	case EventStart:
		return cfg.runInitializers(ctx, c)
	}
	return nil
}

func (cfg *configurator) webConfig(ctx context.Context, c *Context) error {
	if c.steps == nil {
		return fmt.Errorf("no config steps installed")
	}

	found, err := c.steps.DiscoverFragments(ctx, c)
	if err != nil {
		return fmt.Errorf("failed to discover fragments: %w", err)
	}
	fragments := orderFragments(found)
	for _, f := range fragments {
		c.fragments[f.Name] = f
		for _, m := range f.Mappings {
			c.AddMapping(m)
		}
	}

	if err := c.steps.DiscoverInitializers(ctx, c); err != nil {
		return fmt.Errorf("failed to discover initializers: %w", err)
	}
	if err := c.steps.ProcessAnnotations(ctx, c, fragments); err != nil {
		return fmt.Errorf("failed to process annotations: %w", err)
	}
	if err := c.steps.ProcessResourceArchives(ctx, c, fragments); err != nil {
		return fmt.Errorf("failed to process resource archives: %w", err)
	}
	return nil
}

func (cfg *configurator) runInitializers(ctx context.Context, c *Context) error {
	for _, i := range c.initializers {
		if err := i.OnStartup(ctx, c); err != nil {
			return fmt.Errorf("initializer %s: %w", i.Name(), err)
		}
	}
	return nil
}

// orderFragments sorts by fragment name so mapping order does not depend on map iteration.
func orderFragments(found map[string]*Fragment) []*Fragment {
	fragments := make([]*Fragment, 0, len(found))
	for _, f := range found {
		fragments = append(fragments, f)
	}
	sort.Slice(fragments, func(i, j int) bool {
		return fragments[i].Name < fragments[j].Name
	})
	return fragments
}
