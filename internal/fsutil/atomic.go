package fsutil

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// WriteFileAtomic writes data to a uniquely named sibling of path and renames
// it over path, so readers never observe a partially written file. The
// temporary file is removed if either step fails.
func WriteFileAtomic(fsys FileSystem, path string, data []byte, perm os.FileMode) error {
	tmp := filepath.Join(filepath.Dir(path), fmt.Sprintf(".%s.%s.tmp", filepath.Base(path), uuid.NewString()))

	if err := fsys.WriteFile(tmp, data, perm); err != nil {
		_ = fsys.Remove(tmp)
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := fsys.Rename(tmp, path); err != nil {
		_ = fsys.Remove(tmp)
		return fmt.Errorf("failed to move %s into place: %w", path, err)
	}
	return nil
}
