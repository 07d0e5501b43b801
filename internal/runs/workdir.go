package runs

import (
	"fmt"
	"os"
)

// WithWorkingDir runs fn with the process working directory set to dir and
// restores the previous directory afterwards, including when fn panics.
// The working directory is process-global; callers must not run two
// confined fits concurrently.
func WithWorkingDir(dir string, fn func() error) (err error) {
	prev, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("get working dir: %w", err)
	}
	if err := os.Chdir(dir); err != nil {
		return fmt.Errorf("enter %s: %w", dir, err)
	}
	defer func() {
		if cerr := os.Chdir(prev); cerr != nil && err == nil {
			err = fmt.Errorf("restore working dir: %w", cerr)
		}
	}()
	return fn()
}
