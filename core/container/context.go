package container

import (
	"context"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"go.uber.org/zap"
)

// Event is a lifecycle notification emitted by a Context.
type Event int

const (
	EventBeforeInit Event = iota
	EventAfterInit
	EventBeforeStart
	EventConfigureStart
	EventStart
	EventAfterStart
	EventBeforeStop
	EventStop
	EventAfterStop
)

// String returns the string representation of the Event
func (e Event) String() string {
	switch e {
	case EventBeforeInit:
		return "before_init"
	case EventAfterInit:
		return "after_init"
	case EventBeforeStart:
		return "before_start"
	case EventConfigureStart:
		return "configure_start"
	case EventStart:
		return "start"
	case EventAfterStart:
		return "after_start"
	case EventBeforeStop:
		return "before_stop"
	case EventStop:
		return "stop"
	case EventAfterStop:
		return "after_stop"
	default:
		return "unknown"
	}
}

// LifecycleListener receives every event of the contexts it is attached to.
type LifecycleListener interface {
	LifecycleEvent(ctx context.Context, c *Context, ev Event) error
}

// ListenerFunc adapts a function to LifecycleListener.
type ListenerFunc func(ctx context.Context, c *Context, ev Event) error

// LifecycleEvent implements LifecycleListener.
func (f ListenerFunc) LifecycleEvent(ctx context.Context, c *Context, ev Event) error {
	return f(ctx, c, ev)
}

// State is the lifecycle state of a Context.
type State int

const (
	StateNew State = iota
	StateInitialized
	StateStarted
	StateStopped
	StateFailed
)

// Mapping binds a URL pattern to a named handler.
type Mapping struct {
	Pattern string `json:"pattern"`
	Handler string `json:"handler"`
	// Source is the archive (or "descriptor") the mapping was declared in.
	Source string `json:"source"`
}

// ResourceSet is static content contributed by an archive's META-INF/resources.
type ResourceSet struct {
	Archive string
	FS      fs.FS
}

// TagLibrary is a tag-library descriptor found in an archive.
type TagLibrary struct {
	URI       string `json:"uri"`
	ShortName string `json:"short_name"`
	Archive   string `json:"archive"`
	Entry     string `json:"entry"`
}

// Context is a single web application inside the container.
// It is not safe for concurrent use; the lifecycle runs on one goroutine.
type Context struct {
	path    string
	scanner *Scanner
	logger  *zap.Logger

	listeners  []LifecycleListener
	steps      ConfigSteps
	candidates []Initializer

	initializers []Initializer
	fragments    map[string]*Fragment
	mappings     []Mapping
	resources    []ResourceSet
	tagLibraries []TagLibrary

	state State
}

// Option configures a Context.
type Option func(*Context)

// WithLogger sets the context logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Context) {
		c.logger = l
	}
}

// WithCandidates sets the initializers available for discovery.
func WithCandidates(inits ...Initializer) Option {
	return func(c *Context) {
		c.candidates = append(c.candidates, inits...)
	}
}

// NewContext creates a context served under path. The built-in configurator is
// attached first and the native steps are installed until SetSteps replaces them.
func NewContext(path string, scanner *Scanner, opts ...Option) *Context {
	c := &Context{
		path:      path,
		scanner:   scanner,
		logger:    zap.NewNop(),
		fragments: make(map[string]*Fragment),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.steps = NewNativeSteps(c.logger)
	c.listeners = append(c.listeners, &configurator{})
	return c
}

// Path returns the context path.
func (c *Context) Path() string { return c.path }

// Scanner returns the archive scanner (nil when the context has none).
func (c *Context) Scanner() *Scanner { return c.scanner }

// Logger returns the context logger.
func (c *Context) Logger() *zap.Logger { return c.logger }

// State returns the current lifecycle state.
func (c *Context) State() State { return c.state }

// AddLifecycleListener attaches l. Listeners are notified in registration order.
func (c *Context) AddLifecycleListener(l LifecycleListener) {
	c.listeners = append(c.listeners, l)
}

// SetSteps installs the startup sub-steps run by the configurator.
func (c *Context) SetSteps(s ConfigSteps) {
	c.steps = s
}

// Steps returns the installed startup sub-steps.
func (c *Context) Steps() ConfigSteps { return c.steps }

// Candidates returns the initializers available for discovery.
func (c *Context) Candidates() []Initializer { return c.candidates }

// AddInitializer registers an initializer unless one with the same name exists.
func (c *Context) AddInitializer(i Initializer) {
	for _, existing := range c.initializers {
		if existing.Name() == i.Name() {
			return
		}
	}
	c.initializers = append(c.initializers, i)
}

// RemoveInitializers drops every registered initializer whose name starts with prefix
// and returns how many were removed.
func (c *Context) RemoveInitializers(prefix string) int {
	kept := c.initializers[:0]
	removed := 0
	for _, i := range c.initializers {
		if strings.HasPrefix(i.Name(), prefix) {
			removed++
			continue
		}
		kept = append(kept, i)
	}
	c.initializers = kept
	return removed
}

// Initializers returns the names of the registered initializers in run order.
func (c *Context) Initializers() []string {
	names := make([]string, 0, len(c.initializers))
	for _, i := range c.initializers {
		names = append(names, i.Name())
	}
	return names
}

// AddMapping registers a URL mapping.
func (c *Context) AddMapping(m Mapping) {
	c.mappings = append(c.mappings, m)
}

// Mappings returns the registered mappings.
func (c *Context) Mappings() []Mapping { return c.mappings }

// AddResources registers static content.
func (c *Context) AddResources(r ResourceSet) {
	c.resources = append(c.resources, r)
}

// Resources returns the registered resource sets.
func (c *Context) Resources() []ResourceSet { return c.resources }

// AddTagLibrary registers a tag library. A URI seen before is ignored.
func (c *Context) AddTagLibrary(t TagLibrary) {
	for _, existing := range c.tagLibraries {
		if t.URI != "" && existing.URI == t.URI {
			return
		}
	}
	c.tagLibraries = append(c.tagLibraries, t)
}

// TagLibraries returns the registered tag libraries.
func (c *Context) TagLibraries() []TagLibrary { return c.tagLibraries }

// Fragments returns the names of the merged fragments, sorted.
func (c *Context) Fragments() []string {
	names := make([]string, 0, len(c.fragments))
	for name := range c.fragments {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Start initializes (if needed) and starts the context.
// Starting a started context is a no-op.
func (c *Context) Start(ctx context.Context) error {
	if c.state == StateStarted {
		return nil
	}
	if c.state == StateNew {
		if err := c.fireAll(ctx, EventBeforeInit, EventAfterInit); err != nil {
			return err
		}
		c.state = StateInitialized
	}
	if err := c.fireAll(ctx, EventBeforeStart, EventConfigureStart, EventStart); err != nil {
		return err
	}
	c.state = StateStarted
	return c.fireAll(ctx, EventAfterStart)
}

// Stop stops a started context and releases its archives.
func (c *Context) Stop(ctx context.Context) error {
	if c.state != StateStarted {
		return nil
	}
	if err := c.fireAll(ctx, EventBeforeStop, EventStop); err != nil {
		return err
	}
	if c.scanner != nil {
		if err := c.scanner.Close(); err != nil {
			c.logger.Warn("Failed to close archives", zap.Error(err))
		}
	}
	c.state = StateStopped
	return c.fireAll(ctx, EventAfterStop)
}

func (c *Context) fireAll(ctx context.Context, events ...Event) error {
	for _, ev := range events {
		for _, l := range c.listeners {
			if err := l.LifecycleEvent(ctx, c, ev); err != nil {
				c.state = StateFailed
				return fmt.Errorf("context %s: %s: %w", c.path, ev, err)
			}
		}
	}
	return nil
}
