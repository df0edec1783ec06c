package container

import (
	"encoding/xml"
	"fmt"
	"io"
)

// FragmentDescriptor is the entry holding an archive's web-fragment descriptor.
const FragmentDescriptor = "META-INF/web-fragment.xml"

// Fragment is the contribution of one scanned archive. Archives without a
// descriptor still produce a fragment (named after the archive) so that later
// steps can process their annotations and resources.
type Fragment struct {
	Name     string
	Archive  *Archive
	Mappings []Mapping
	// Descriptor is true when the archive carried a web-fragment.xml.
	Descriptor bool
}

type webFragmentXML struct {
	XMLName  xml.Name `xml:"web-fragment"`
	Name     string   `xml:"name"`
	Servlets []struct {
		Name    string `xml:"servlet-name"`
		Handler string `xml:"servlet-class"`
	} `xml:"servlet"`
	ServletMappings []struct {
		Name        string   `xml:"servlet-name"`
		URLPatterns []string `xml:"url-pattern"`
	} `xml:"servlet-mapping"`
}

// ParseFragment reads a web-fragment descriptor belonging to archive a.
func ParseFragment(a *Archive, r io.Reader) (*Fragment, error) {
	var doc webFragmentXML
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to parse %s in %s: %w", FragmentDescriptor, a.Name, err)
	}

	handlers := make(map[string]string, len(doc.Servlets))
	for _, s := range doc.Servlets {
		handlers[s.Name] = s.Handler
	}

	f := &Fragment{Name: doc.Name, Archive: a, Descriptor: true}
	if f.Name == "" {
		f.Name = a.Name
	}
	for _, m := range doc.ServletMappings {
		handler := handlers[m.Name]
		if handler == "" {
			handler = m.Name
		}
		for _, p := range m.URLPatterns {
			f.Mappings = append(f.Mappings, Mapping{Pattern: p, Handler: handler, Source: a.Name})
		}
	}
	return f, nil
}
