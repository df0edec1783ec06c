package boot

import (
	"time"

	"webboot/core/container"
	"webboot/core/loader"
	"webboot/core/server"
)

// Report describes a running boot.
type Report struct {
	ID          string            `json:"id"`
	URL         string            `json:"url"`
	Development bool              `json:"development"`
	Started     time.Time         `json:"started"`
	Modes       map[string]string `json:"modes"`
	Selectors   map[string]bool   `json:"selectors"`
	ConfigFiles []string          `json:"config_files,omitempty"`
	Connector   server.Connector  `json:"connector"`

	Fragments        []string            `json:"fragments"`
	Initializers     []string            `json:"initializers"`
	TagLibraries     []string            `json:"tag_libraries"`
	ResourceArchives []string            `json:"resource_archives"`
	Mappings         []container.Mapping `json:"mappings"`

	MarkFile     string     `json:"mark_file,omitempty"`
	MarkSnapshot *time.Time `json:"mark_snapshot,omitempty"`
}

// Report returns the current state of the boot.
func (b *Boot) Report() Report {
	reg := b.opts.registry
	r := Report{
		ID:          b.id,
		URL:         b.url,
		Development: b.opts.development,
		Started:     b.started,
		Modes: map[string]string{
			"annotation":         reg.Annotation.String(),
			"meta_info_resource": reg.MetaInfoResource.String(),
			"tld":                reg.Tld.String(),
			"web_fragments":      reg.WebFragments.String(),
		},
		Selectors: map[string]bool{
			"tld":           reg.TldSelectorEnabled(),
			"web_fragments": reg.WebFragmentsSelectorEnabled(),
		},
		ConfigFiles:      b.props.Files(),
		Connector:        b.connector,
		Fragments:        []string{},
		Initializers:     []string{},
		TagLibraries:     []string{},
		ResourceArchives: []string{},
		Mappings:         []container.Mapping{},
	}

	if c := b.container; c != nil {
		r.Fragments = append(r.Fragments, c.Fragments()...)
		r.Initializers = append(r.Initializers, c.Initializers()...)
		for _, t := range c.TagLibraries() {
			r.TagLibraries = append(r.TagLibraries, t.URI)
		}
		for _, rs := range c.Resources() {
			r.ResourceArchives = append(r.ResourceArchives, rs.Archive)
		}
		r.Mappings = append(r.Mappings, c.Mappings()...)
	}

	if co := b.coordinator; co != nil {
		r.MarkFile = co.Path()
		snap := co.Snapshot()
		r.MarkSnapshot = &snap
	}
	return r
}

func newManager(b *Boot) *loader.Manager {
	mgr := loader.NewManager()
	for _, factory := range b.opts.features {
		if f := factory(b); f != nil {
			mgr.Register(f)
		}
	}
	return mgr
}
