// Package security holds the path checks applied before any file is written
// or renamed on behalf of configuration or input data.
package security

import (
	"fmt"
	"path/filepath"
	"strings"
)

// ValidateFileName checks that name is a single path element: non-empty, not
// "." or "..", and free of path separators.
func ValidateFileName(name string) error {
	if name == "" || name == "." || name == ".." {
		return fmt.Errorf("invalid file name %q", name)
	}
	if strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("file name %q contains a path separator", name)
	}
	return nil
}

// JoinWithinDirectory joins rel onto dir and returns the cleaned result,
// rejecting absolute paths and any rel that resolves outside dir. The check is
// lexical, so it works the same for on-disk and in-memory filesystems.
func JoinWithinDirectory(dir, rel string) (string, error) {
	if rel == "" {
		return "", fmt.Errorf("empty path")
	}
	if filepath.IsAbs(rel) {
		return "", fmt.Errorf("path %q must be relative to %s", rel, dir)
	}

	cleanDir := filepath.Clean(dir)
	joined := filepath.Join(cleanDir, rel)

	relPath, err := filepath.Rel(cleanDir, joined)
	if err != nil {
		return "", fmt.Errorf("path is outside directory: %w", err)
	}

	// Reject paths that escape the directory
	if relPath == "." || relPath == ".." || strings.HasPrefix(relPath, ".."+string(filepath.Separator)) || filepath.IsAbs(relPath) {
		return "", fmt.Errorf("path traversal detected: %s attempts to escape %s", rel, dir)
	}

	return joined, nil
}
