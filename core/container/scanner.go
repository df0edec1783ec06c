package container

import (
	"context"
	"errors"
	"sync"
)

// Scanner walks the archives of its sources, consulting the filter per scan kind.
type Scanner struct {
	sources []ArchiveSource
	filter  ArchiveFilter

	mu       sync.Mutex
	loaded   bool
	archives []*Archive
}

// NewScanner creates a scanner. A nil filter is replaced by NewStandardFilter().
func NewScanner(filter ArchiveFilter, sources ...ArchiveSource) *Scanner {
	if filter == nil {
		filter = NewStandardFilter()
	}
	return &Scanner{sources: sources, filter: filter}
}

// Filter returns the filter currently in use.
func (s *Scanner) Filter() ArchiveFilter {
	return s.filter
}

// SetFilter replaces the filter used by subsequent scans.
func (s *Scanner) SetFilter(filter ArchiveFilter) {
	s.filter = filter
}

// Archives loads (once) and returns every archive of every source.
// Archives with a name already seen from an earlier source are dropped.
func (s *Scanner) Archives(ctx context.Context) ([]*Archive, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.loaded {
		return s.archives, nil
	}

	seen := make(map[string]struct{})
	var all []*Archive
	for _, src := range s.sources {
		archives, err := src.Archives(ctx)
		if err != nil {
			closeAll(all)
			return nil, err
		}
		for _, a := range archives {
			if _, dup := seen[a.Name]; dup {
				_ = a.Close()
				continue
			}
			seen[a.Name] = struct{}{}
			all = append(all, a)
		}
	}

	s.archives = all
	s.loaded = true
	return all, nil
}

// Scan calls fn for every archive accepted by the filter for kind.
func (s *Scanner) Scan(ctx context.Context, kind ScanKind, fn func(*Archive) error) error {
	archives, err := s.Archives(ctx)
	if err != nil {
		return err
	}

	for _, a := range archives {
		if err := ctx.Err(); err != nil {
			return err
		}
		if s.filter != nil && !s.filter.Check(kind, a.Name) {
			continue
		}
		if err := fn(a); err != nil {
			return err
		}
	}
	return nil
}

// Close releases every loaded archive. The next scan reloads them.
func (s *Scanner) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var errs []error
	for _, a := range s.archives {
		if err := a.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	s.archives = nil
	s.loaded = false
	return errors.Join(errs...)
}
