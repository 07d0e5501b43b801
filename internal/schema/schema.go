// Package schema derives the column contract recorded with a training run.
package schema

import (
	"errors"
	"fmt"
	"slices"

	"github.com/animus-labs/animus-baseline/internal/domain"
	"github.com/animus-labs/animus-baseline/internal/table"
)

// Extract builds the schema contract for t. Feature columns are every column
// except the target and the configured identifiers, in source order.
func Extract(t *table.Table, target string, idCols []string, timeCol string) (domain.SchemaContract, error) {
	if !t.Has(target) {
		return domain.SchemaContract{}, &domain.MissingColumnError{Role: domain.RoleTarget, Column: target}
	}

	ids := make([]string, 0, len(idCols))
	for _, id := range idCols {
		if id != target && t.Has(id) && !slices.Contains(ids, id) {
			ids = append(ids, id)
		}
	}

	contract := domain.SchemaContract{
		Target:                  target,
		RequiredFeatureColumns:  make([]string, 0, t.Width()),
		OptionalIDColumns:       ids,
		FeatureDTypes:           make(map[string]string, t.Width()),
		DatetimeColumns:         make([]string, 0),
		PolicyUnknownCategories: domain.PolicyIgnoreUnknownCategories,
		ForbiddenColumns:        []string{target},
	}
	for _, c := range t.Columns() {
		if c.Name == target || slices.Contains(idCols, c.Name) {
			continue
		}
		contract.RequiredFeatureColumns = append(contract.RequiredFeatureColumns, c.Name)
		contract.FeatureDTypes[c.Name] = string(c.Kind)
		if c.Kind == table.KindDatetime {
			contract.DatetimeColumns = append(contract.DatetimeColumns, c.Name)
		}
	}
	// A configured time column is temporal by declaration even when its cells
	// are epoch numbers rather than parseable timestamps.
	if timeCol != "" && !slices.Contains(contract.DatetimeColumns, timeCol) && slices.Contains(contract.RequiredFeatureColumns, timeCol) {
		contract.DatetimeColumns = append(contract.DatetimeColumns, timeCol)
	}
	return contract, nil
}

// Validate checks the invariants of a contract read back from disk.
func Validate(c domain.SchemaContract) error {
	if c.Target == "" {
		return errors.New("schema target is required")
	}
	if slices.Contains(c.RequiredFeatureColumns, c.Target) {
		return fmt.Errorf("target %q listed as a required feature", c.Target)
	}
	if !slices.Contains(c.ForbiddenColumns, c.Target) {
		return fmt.Errorf("target %q missing from forbidden columns", c.Target)
	}
	for _, col := range c.RequiredFeatureColumns {
		if _, ok := c.FeatureDTypes[col]; !ok {
			return fmt.Errorf("feature %q has no dtype", col)
		}
	}
	return nil
}
