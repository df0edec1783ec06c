package container

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Archive is a jar or zip file opened for scanning.
type Archive struct {
	// Name is the base file name, e.g. "mylib-1.0.jar". Filters and selectors see this value.
	Name string
	// Path is where the archive was loaded from (file path or object key).
	Path string
	// Reader gives access to the archive entries.
	Reader *zip.Reader

	closer io.Closer
}

// OpenArchive opens the archive at path.
func OpenArchive(path string) (*Archive, error) {
	rc, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive %s: %w", path, err)
	}
	return &Archive{
		Name:   filepath.Base(path),
		Path:   path,
		Reader: &rc.Reader,
		closer: rc,
	}, nil
}

// ReadArchive builds an archive from in-memory content.
func ReadArchive(name string, data []byte) (*Archive, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to read archive %s: %w", name, err)
	}
	return &Archive{Name: name, Path: name, Reader: zr}, nil
}

// Has reports whether the archive contains the named entry.
func (a *Archive) Has(entry string) bool {
	for _, f := range a.Reader.File {
		if f.Name == entry {
			return true
		}
	}
	return false
}

// HasPrefix reports whether any non-directory entry starts with prefix.
func (a *Archive) HasPrefix(prefix string) bool {
	for _, f := range a.Reader.File {
		if strings.HasPrefix(f.Name, prefix) && !strings.HasSuffix(f.Name, "/") {
			return true
		}
	}
	return false
}

// Entries returns the sorted names of entries under prefix ending with suffix.
func (a *Archive) Entries(prefix, suffix string) []string {
	var names []string
	for _, f := range a.Reader.File {
		if strings.HasPrefix(f.Name, prefix) && strings.HasSuffix(f.Name, suffix) {
			names = append(names, f.Name)
		}
	}
	sort.Strings(names)
	return names
}

// Open opens a single entry for reading.
func (a *Archive) Open(entry string) (io.ReadCloser, error) {
	f, err := a.Reader.Open(entry)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s in %s: %w", entry, a.Name, err)
	}
	return f, nil
}

// Sub returns the file system rooted at dir inside the archive.
func (a *Archive) Sub(dir string) (fs.FS, error) {
	return fs.Sub(a.Reader, dir)
}

// Close releases the underlying file, if any.
func (a *Archive) Close() error {
	if a.closer == nil {
		return nil
	}
	return a.closer.Close()
}

// ArchiveSource supplies archives to a Scanner.
type ArchiveSource interface {
	Archives(ctx context.Context) ([]*Archive, error)
}

// DirSource loads every *.jar and *.zip file directly under Dir.
// A missing directory yields no archives.
type DirSource struct {
	Dir string
}

// Archives implements ArchiveSource.
func (s DirSource) Archives(ctx context.Context) ([]*Archive, error) {
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read archive dir %s: %w", s.Dir, err)
	}

	var archives []*Archive
	for _, e := range entries {
		if e.IsDir() || !IsArchiveName(e.Name()) {
			continue
		}
		if err := ctx.Err(); err != nil {
			closeAll(archives)
			return nil, err
		}
		a, err := OpenArchive(filepath.Join(s.Dir, e.Name()))
		if err != nil {
			closeAll(archives)
			return nil, err
		}
		archives = append(archives, a)
	}
	return archives, nil
}

// IsArchiveName reports whether name looks like a scannable archive.
func IsArchiveName(name string) bool {
	lower := strings.ToLower(name)
	return strings.HasSuffix(lower, ".jar") || strings.HasSuffix(lower, ".zip")
}

func closeAll(archives []*Archive) {
	for _, a := range archives {
		_ = a.Close()
	}
}
