package gate

import (
	"webboot/core/container"
)

// SelectableFilter layers the registry selectors over the container's own filter.
type SelectableFilter struct {
	registry Registry
	existing container.ArchiveFilter
}

// Compose wraps existing with the registry selectors. Composing over a
// SelectableFilter returns it unchanged.
func Compose(registry Registry, existing container.ArchiveFilter) container.ArchiveFilter {
	if sf, ok := existing.(*SelectableFilter); ok {
		return sf
	}
	return &SelectableFilter{registry: registry, existing: existing}
}

// Check implements container.ArchiveFilter. A configured selector is authoritative
// for its scan kind; everything else is decided by the wrapped filter.
func (f *SelectableFilter) Check(kind container.ScanKind, archiveName string) bool {
	switch {
	case kind == container.KindTLD && f.registry.TldSelectorEnabled():
		return f.registry.TldSelector(archiveName)
	case kind == container.KindPluggability && f.registry.WebFragmentsSelectorEnabled():
		return f.registry.WebFragmentsSelector(archiveName)
	}
	return f.existing.Check(kind, archiveName)
}

// Unwrap returns the wrapped filter.
func (f *SelectableFilter) Unwrap() container.ArchiveFilter {
	return f.existing
}
