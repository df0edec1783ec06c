// Package containertest builds archives for tests.
package containertest

import (
	"archive/zip"
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"webboot/core/container"

	"github.com/stretchr/testify/require"
)

// JarBytes returns a zip archive holding entries (name -> content).
func JarBytes(t testing.TB, entries map[string]string) []byte {
	t.Helper()

	names := make([]string, 0, len(entries))
	for name := range entries {
		names = append(names, name)
	}
	sort.Strings(names)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, name := range names {
		w, err := zw.Create(name)
		require.NoError(t, err, "create entry %s", name)
		_, err = w.Write([]byte(entries[name]))
		require.NoError(t, err, "write entry %s", name)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

// WriteJar writes a jar named name into dir and returns its path.
func WriteJar(t testing.TB, dir, name string, entries map[string]string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, JarBytes(t, entries), 0o644))
	return path
}

// Archive returns an in-memory archive.
func Archive(t testing.TB, name string, entries map[string]string) *container.Archive {
	t.Helper()

	a, err := container.ReadArchive(name, JarBytes(t, entries))
	require.NoError(t, err, "read archive %s", name)
	return a
}

// Source is an ArchiveSource over fixed archives.
type Source []*container.Archive

// Archives implements container.ArchiveSource.
func (s Source) Archives(_ context.Context) ([]*container.Archive, error) {
	return s, nil
}

// FragmentXML returns a web-fragment descriptor mapping pattern to handler.
func FragmentXML(name, handler, pattern string) string {
	return `<?xml version="1.0" encoding="UTF-8"?>
<web-fragment xmlns="https://jakarta.ee/xml/ns/jakartaee" version="5.0">
  <name>` + name + `</name>
  <servlet>
    <servlet-name>` + handler + `</servlet-name>
    <servlet-class>` + handler + `</servlet-class>
  </servlet>
  <servlet-mapping>
    <servlet-name>` + handler + `</servlet-name>
    <url-pattern>` + pattern + `</url-pattern>
  </servlet-mapping>
</web-fragment>`
}

// TaglibXML returns a tag-library descriptor.
func TaglibXML(shortName, uri string) string {
	return `<?xml version="1.0" encoding="UTF-8"?>
<taglib xmlns="https://jakarta.ee/xml/ns/jakartaee" version="3.0">
  <tlib-version>1.0</tlib-version>
  <short-name>` + shortName + `</short-name>
  <uri>` + uri + `</uri>
</taglib>`
}
