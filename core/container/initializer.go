package container

import (
	"context"
	"encoding/xml"
	"fmt"
)

// Initializer runs once when its context starts.
type Initializer interface {
	Name() string
	OnStartup(ctx context.Context, c *Context) error
}

type funcInitializer struct {
	name string
	fn   func(ctx context.Context, c *Context) error
}

// NewInitializer wraps fn as a named Initializer.
func NewInitializer(name string, fn func(ctx context.Context, c *Context) error) Initializer {
	return &funcInitializer{name: name, fn: fn}
}

func (i *funcInitializer) Name() string { return i.name }

func (i *funcInitializer) OnStartup(ctx context.Context, c *Context) error {
	return i.fn(ctx, c)
}

// TldInitializerName names the built-in tag-library scanner.
const TldInitializerName = "webboot/jsp.TldScanner"

// NewTldInitializer returns the built-in initializer that collects tag-library
// descriptors from every TLD-accepted archive. Tag libraries are only found when
// initializer discovery runs.
func NewTldInitializer() Initializer {
	return NewInitializer(TldInitializerName, scanTagLibraries)
}

type taglibXML struct {
	XMLName   xml.Name `xml:"taglib"`
	ShortName string   `xml:"short-name"`
	URI       string   `xml:"uri"`
}

func scanTagLibraries(ctx context.Context, c *Context) error {
	scanner := c.Scanner()
	if scanner == nil {
		return nil
	}
	return scanner.Scan(ctx, KindTLD, func(a *Archive) error {
		for _, entry := range a.Entries("META-INF/", ".tld") {
			r, err := a.Open(entry)
			if err != nil {
				return err
			}
			var doc taglibXML
			err = xml.NewDecoder(r).Decode(&doc)
			_ = r.Close()
			if err != nil {
				return fmt.Errorf("failed to parse %s in %s: %w", entry, a.Name, err)
			}
			c.AddTagLibrary(TagLibrary{URI: doc.URI, ShortName: doc.ShortName, Archive: a.Name, Entry: entry})
		}
		return nil
	})
}
