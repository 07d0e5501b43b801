package runs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

const latestFile = "latest.txt"

var ErrNoRuns = errors.New("no run has been registered")

// Registry is the pointer to the most recent successful run.
type Registry struct {
	fs  afero.Fs
	dir string
}

func NewRegistry(fs afero.Fs, dir string) *Registry {
	return &Registry{fs: fs, dir: dir}
}

func (r *Registry) Path() string {
	return filepath.Join(r.dir, latestFile)
}

// Update replaces latest.txt with runID. The file holds the bare id with no
// trailing newline and is swapped in with a rename.
func (r *Registry) Update(runID string) error {
	runID = strings.TrimSpace(runID)
	if runID == "" {
		return errors.New("run id is required")
	}
	if err := r.fs.MkdirAll(r.dir, 0o755); err != nil {
		return fmt.Errorf("create registry dir: %w", err)
	}
	if err := writeAtomic(r.fs, r.Path(), []byte(runID)); err != nil {
		return fmt.Errorf("update registry: %w", err)
	}
	return nil
}

func (r *Registry) Latest() (string, error) {
	raw, err := afero.ReadFile(r.fs, r.Path())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", ErrNoRuns
		}
		return "", fmt.Errorf("read registry: %w", err)
	}
	id := strings.TrimSpace(string(raw))
	if id == "" {
		return "", ErrNoRuns
	}
	return id, nil
}
