package gate

import (
	"path"
	"strings"
)

// Mode is the handling mode of one feature category.
type Mode int

const (
	// ModeNone skips the category's processing step.
	ModeNone Mode = iota
	// ModeDetect runs the category's processing step.
	ModeDetect
)

// String returns the string representation of the Mode
func (m Mode) String() string {
	if m == ModeDetect {
		return "detect"
	}
	return "none"
}

// ModeOf returns ModeDetect when detect is true.
func ModeOf(detect bool) Mode {
	if detect {
		return ModeDetect
	}
	return ModeNone
}

// Selector narrows the archives accepted within a Detect-mode category.
type Selector func(archiveName string) bool

// Registry holds the handling mode of each feature category and the optional
// selectors. It is built once per boot and never modified afterwards.
type Registry struct {
	Annotation       Mode
	MetaInfoResource Mode
	Tld              Mode
	WebFragments     Mode

	// TldSelector is consulted only when Tld is ModeDetect. Nil means no override.
	TldSelector Selector
	// WebFragmentsSelector is consulted only when WebFragments is ModeDetect. Nil means no override.
	WebFragmentsSelector Selector
}

// TldSelectorEnabled reports whether TLD scans are decided by TldSelector.
func (r Registry) TldSelectorEnabled() bool {
	return r.Tld == ModeDetect && r.TldSelector != nil
}

// WebFragmentsSelectorEnabled reports whether pluggability scans are decided by WebFragmentsSelector.
func (r Registry) WebFragmentsSelectorEnabled() bool {
	return r.WebFragments == ModeDetect && r.WebFragmentsSelector != nil
}

// SelectorEnabled reports whether any selector takes part in scanning.
func (r Registry) SelectorEnabled() bool {
	return r.TldSelectorEnabled() || r.WebFragmentsSelectorEnabled()
}

// InitializersAvailable reports whether initializer discovery runs.
// Initializers are needed for annotation handling and for the TLD search.
func (r Registry) InitializersAvailable() bool {
	return r.Annotation == ModeDetect || r.Tld == ModeDetect
}

// ContainsSelector accepts archive names containing any of substrings.
func ContainsSelector(substrings ...string) Selector {
	return func(archiveName string) bool {
		for _, s := range substrings {
			if strings.Contains(archiveName, s) {
				return true
			}
		}
		return false
	}
}

// GlobSelector accepts archive names whose base name matches any path.Match pattern.
// Malformed patterns never match.
func GlobSelector(patterns ...string) Selector {
	return func(archiveName string) bool {
		name := path.Base(archiveName)
		for _, p := range patterns {
			if ok, err := path.Match(p, name); err == nil && ok {
				return true
			}
		}
		return false
	}
}
