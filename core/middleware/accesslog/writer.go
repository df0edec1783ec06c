package accesslog

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/text/encoding"
	"golang.org/x/text/transform"
)

// DailyWriter appends to <dir>/<prefix><date><suffix>, switching files when the
// formatted date changes.
type DailyWriter struct {
	dir        string
	prefix     string
	suffix     string
	dateFormat string
	enc        encoding.Encoding
	now        func() time.Time

	mu      sync.Mutex
	current string
	file    *os.File
	out     io.Writer
}

func newDailyWriter(dir, prefix, suffix, dateFormat string, enc encoding.Encoding) *DailyWriter {
	return &DailyWriter{
		dir:        dir,
		prefix:     prefix,
		suffix:     suffix,
		dateFormat: dateFormat,
		enc:        enc,
		now:        time.Now,
	}
}

// Path returns the file the next write goes to.
func (w *DailyWriter) Path() string {
	return filepath.Join(w.dir, w.prefix+w.now().Format(w.dateFormat)+w.suffix)
}

func (w *DailyWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	path := w.Path()
	if path != w.current {
		if err := w.rotate(path); err != nil {
			return 0, err
		}
	}
	return w.out.Write(p)
}

func (w *DailyWriter) rotate(path string) error {
	if err := w.closeLocked(); err != nil {
		return err
	}
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create access log dir %s: %w", w.dir, err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open access log %s: %w", path, err)
	}
	w.file, w.current = f, path
	w.out = f
	if w.enc != nil {
		w.out = transform.NewWriter(f, w.enc.NewEncoder())
	}
	return nil
}

// Close flushes and closes the current file.
func (w *DailyWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.closeLocked()
}

func (w *DailyWriter) closeLocked() error {
	if w.file == nil {
		return nil
	}
	var err error
	if c, ok := w.out.(io.Closer); ok && w.out != io.Writer(w.file) {
		err = c.Close()
	}
	if cerr := w.file.Close(); err == nil {
		err = cerr
	}
	w.file, w.out, w.current = nil, nil, ""
	return err
}
