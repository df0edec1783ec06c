package container

import (
	"path"
)

// ScanKind classifies what an archive is being scanned for.
type ScanKind int

const (
	// KindOther covers scans that are neither TLD nor pluggability scans.
	KindOther ScanKind = iota
	// KindTLD is a scan for tag-library descriptors.
	KindTLD
	// KindPluggability is a scan for web-fragment descriptors.
	KindPluggability
)

// String returns the string representation of the ScanKind
func (k ScanKind) String() string {
	switch k {
	case KindTLD:
		return "tld"
	case KindPluggability:
		return "pluggability"
	default:
		return "other"
	}
}

// ArchiveFilter decides whether an archive is scanned for a given kind.
type ArchiveFilter interface {
	Check(kind ScanKind, archiveName string) bool
}

// FilterFunc adapts a function to ArchiveFilter.
type FilterFunc func(kind ScanKind, archiveName string) bool

// Check implements ArchiveFilter.
func (f FilterFunc) Check(kind ScanKind, archiveName string) bool {
	return f(kind, archiveName)
}

// DefaultSkip lists archives the standard filter never scans unless a scan pattern
// brings them back.
var DefaultSkip = []string{
	"*-sources.jar",
	"*-javadoc.jar",
	"*-tests.jar",
}

// StandardFilter is the container's native filter. Patterns are path.Match globs
// applied to the archive base name. Scan patterns take precedence over skip patterns,
// and archives matching neither are scanned.
type StandardFilter struct {
	Skip []string
	Scan []string

	TldSkip          []string
	TldScan          []string
	PluggabilitySkip []string
	PluggabilityScan []string
}

// NewStandardFilter returns a filter that skips DefaultSkip.
func NewStandardFilter() *StandardFilter {
	skip := make([]string, len(DefaultSkip))
	copy(skip, DefaultSkip)
	return &StandardFilter{Skip: skip}
}

// Check implements ArchiveFilter.
func (f *StandardFilter) Check(kind ScanKind, archiveName string) bool {
	name := path.Base(archiveName)

	skip, scan := f.Skip, f.Scan
	switch kind {
	case KindTLD:
		skip = append(append([]string{}, skip...), f.TldSkip...)
		scan = append(append([]string{}, scan...), f.TldScan...)
	case KindPluggability:
		skip = append(append([]string{}, skip...), f.PluggabilitySkip...)
		scan = append(append([]string{}, scan...), f.PluggabilityScan...)
	}

	if matchAny(scan, name) {
		return true
	}
	return !matchAny(skip, name)
}

func matchAny(patterns []string, name string) bool {
	for _, p := range patterns {
		if ok, err := path.Match(p, name); err == nil && ok {
			return true
		}
	}
	return false
}
