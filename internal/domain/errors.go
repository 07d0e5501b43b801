package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidConfig marks configuration problems that retries cannot fix.
	ErrInvalidConfig = errors.New("invalid config")
	// ErrMissingColumn marks a configured column absent from the input table.
	ErrMissingColumn = errors.New("missing column")
)

func invalidConfig(msg string) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfig, msg)
}

// Column roles used in MissingColumnError.
const (
	RoleTarget = "target"
	RoleTime   = "time"
)

// MissingColumnError names a configured column that the table lacks.
type MissingColumnError struct {
	Role   string
	Column string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("%s column %q not found in table", e.Role, e.Column)
}

func (e *MissingColumnError) Is(target error) bool {
	return target == ErrMissingColumn || target == ErrInvalidConfig
}
