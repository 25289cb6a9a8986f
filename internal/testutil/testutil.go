// Package testutil provides shared test fixtures.
package testutil

import (
	"path/filepath"
	"sort"
	"testing"

	"github.com/banshee-data/colmap2scene/internal/fsutil"
)

// SeedFiles writes each path/content pair into fsys, creating parent
// directories as needed. Paths are written in sorted order.
func SeedFiles(t testing.TB, fsys fsutil.FileSystem, files map[string]string) {
	t.Helper()
	paths := make([]string, 0, len(files))
	for p := range files {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	for _, p := range paths {
		if err := fsys.MkdirAll(filepath.Dir(p), 0755); err != nil {
			t.Fatalf("mkdir %s: %v", filepath.Dir(p), err)
		}
		if err := fsys.WriteFile(p, []byte(files[p]), 0644); err != nil {
			t.Fatalf("write %s: %v", p, err)
		}
	}
}

// ReadString returns the content of path, failing the test if it cannot be
// read.
func ReadString(t testing.TB, fsys fsutil.FileSystem, path string) string {
	t.Helper()
	data, err := fsys.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}
