package runs

import (
	"fmt"
	"time"

	"github.com/animus-labs/animus-baseline/internal/domain"
)

const timestampLayout = "2006-01-02T15-04-05Z"

// NewRunID builds the directory name of a run. The timestamp is second
// resolution in UTC with filesystem-safe separators.
func NewRunID(now time.Time, tag string, seed int64, mode domain.RunMode) string {
	ts := now.UTC().Format(timestampLayout)
	if mode == domain.ModeMinimal {
		return fmt.Sprintf("%s__baseline__seed%d", ts, seed)
	}
	return fmt.Sprintf("%s__%s__session%d", ts, tag, seed)
}

// Subdirs lists the directories created inside a run directory.
func Subdirs(mode domain.RunMode) []string {
	if mode == domain.ModeMinimal {
		return []string{"metrics", "model"}
	}
	return []string{"metrics", "plots", "tables", "schema", "env", "model"}
}
