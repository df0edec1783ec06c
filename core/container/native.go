package container

import (
	"bufio"
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

const (
	// HandlerIndex lists annotated handler declarations, one "<pattern> <handler>" per line.
	HandlerIndex = "META-INF/handlers.idx"
	// ResourceDir is the archive directory served as static content.
	ResourceDir = "META-INF/resources"
)

// NativeSteps is the container's own implementation of every startup sub-step.
type NativeSteps struct {
	logger *zap.Logger
}

// NewNativeSteps creates the native steps.
func NewNativeSteps(logger *zap.Logger) *NativeSteps {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NativeSteps{logger: logger}
}

// DiscoverFragments scans every pluggability-accepted archive.
func (n *NativeSteps) DiscoverFragments(ctx context.Context, c *Context) (map[string]*Fragment, error) {
	fragments := make(map[string]*Fragment)
	scanner := c.Scanner()
	if scanner == nil {
		return fragments, nil
	}

	err := scanner.Scan(ctx, KindPluggability, func(a *Archive) error {
		f := &Fragment{Name: a.Name, Archive: a}
		if a.Has(FragmentDescriptor) {
			r, err := a.Open(FragmentDescriptor)
			if err != nil {
				return err
			}
			parsed, err := ParseFragment(a, r)
			_ = r.Close()
			if err != nil {
				return err
			}
			f = parsed
		}
		if _, dup := fragments[f.Name]; dup {
			n.logger.Warn("Duplicate fragment name, using archive name",
				zap.String("fragment", f.Name), zap.String("archive", a.Name))
			f.Name = a.Name
		}
		fragments[f.Name] = f
		return nil
	})
	if err != nil {
		return nil, err
	}
	return fragments, nil
}

// DiscoverInitializers registers every candidate initializer of the context.
func (n *NativeSteps) DiscoverInitializers(ctx context.Context, c *Context) error {
	for _, i := range c.Candidates() {
		c.AddInitializer(i)
	}
	return nil
}

// ProcessAnnotations reads the handler index of each fragment archive.
func (n *NativeSteps) ProcessAnnotations(ctx context.Context, c *Context, fragments []*Fragment) error {
	for _, f := range fragments {
		if f.Archive == nil || !f.Archive.Has(HandlerIndex) {
			continue
		}
		mappings, err := readHandlerIndex(f.Archive)
		if err != nil {
			return err
		}
		for _, m := range mappings {
			c.AddMapping(m)
		}
	}
	return nil
}

// ProcessResourceArchives exposes META-INF/resources of each fragment archive.
func (n *NativeSteps) ProcessResourceArchives(ctx context.Context, c *Context, fragments []*Fragment) error {
	for _, f := range fragments {
		if f.Archive == nil || !f.Archive.HasPrefix(ResourceDir+"/") {
			continue
		}
		sub, err := f.Archive.Sub(ResourceDir)
		if err != nil {
			return fmt.Errorf("failed to open resources of %s: %w", f.Archive.Name, err)
		}
		c.AddResources(ResourceSet{Archive: f.Archive.Name, FS: sub})
	}
	return nil
}

func readHandlerIndex(a *Archive) ([]Mapping, error) {
	r, err := a.Open(HandlerIndex)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	var mappings []Mapping
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.Fields(text)
		if len(fields) != 2 {
			return nil, fmt.Errorf("malformed %s line %d in %s: %q", HandlerIndex, line, a.Name, text)
		}
		mappings = append(mappings, Mapping{Pattern: fields[0], Handler: fields[1], Source: a.Name})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s in %s: %w", HandlerIndex, a.Name, err)
	}
	return mappings, nil
}
