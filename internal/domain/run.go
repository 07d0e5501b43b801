package domain

import (
	"errors"
	"strings"
	"time"
)

// RunState is a step of the training run lifecycle.
type RunState string

const (
	RunStateLoading             RunState = "loading"
	RunStateValidating          RunState = "validating"
	RunStateSorting             RunState = "sorting"
	RunStateSchemaExtraction    RunState = "schema_extraction"
	RunStateEnvironmentCapture  RunState = "environment_capture"
	RunStateSplittingAndFitting RunState = "splitting_and_fitting"
	RunStatePersisting          RunState = "persisting"
	RunStateRegistryUpdate      RunState = "registry_update"
	RunStateDone                RunState = "done"
	RunStateFailed              RunState = "failed"
)

// Terminal reports whether no transition leaves the state.
func (s RunState) Terminal() bool {
	return s == RunStateDone || s == RunStateFailed
}

// Run is one training execution and the directory that records it.
type Run struct {
	ID        string
	UUID      string
	Tag       string
	Seed      int64
	Mode      RunMode
	Dir       string
	CreatedAt time.Time
}

func (r Run) Validate() error {
	if strings.TrimSpace(r.ID) == "" {
		return errors.New("run id is required")
	}
	if strings.TrimSpace(r.Dir) == "" {
		return errors.New("run dir is required")
	}
	if r.CreatedAt.IsZero() {
		return errors.New("run created_at is required")
	}
	return nil
}
