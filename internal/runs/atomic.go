package runs

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"
)

// writeAtomic writes data next to path and renames it into place, so readers
// see either the previous content or the new content.
func writeAtomic(fs afero.Fs, path string, data []byte) error {
	dir, base := filepath.Split(path)
	if dir == "" {
		dir = "."
	}
	f, err := afero.TempFile(fs, dir, "."+base+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmp := f.Name()
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = fs.Remove(tmp)
		return fmt.Errorf("write %s: %w", base, err)
	}
	if err := f.Close(); err != nil {
		_ = fs.Remove(tmp)
		return fmt.Errorf("close %s: %w", base, err)
	}
	if err := fs.Chmod(tmp, 0o644); err != nil {
		_ = fs.Remove(tmp)
		return fmt.Errorf("chmod %s: %w", base, err)
	}
	if err := fs.Rename(tmp, path); err != nil {
		_ = fs.Remove(tmp)
		return fmt.Errorf("rename %s: %w", base, err)
	}
	return nil
}
