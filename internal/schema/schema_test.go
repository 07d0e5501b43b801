package schema

import (
	"errors"
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/animus-labs/animus-baseline/internal/domain"
	"github.com/animus-labs/animus-baseline/internal/table"
)

func fixture(t *testing.T) *table.Table {
	t.Helper()
	tbl, err := table.New(
		table.NewStringColumn("user_id", []string{"u001", "u002"}),
		table.NewColumn("country", []string{"US", "CA"}),
		table.NewColumn("n_orders", []string{"3", "7"}),
		table.NewColumn("avg_amount", []string{"10.5", "12"}),
		table.NewColumn("signed_up", []string{"2024-01-01", "2024-02-01"}),
		table.NewColumn("is_high_value", []string{"0", "1"}),
	)
	if err != nil {
		t.Fatalf("table.New() err=%v", err)
	}
	return tbl
}

func TestExtract(t *testing.T) {
	got, err := Extract(fixture(t), "is_high_value", []string{"user_id", "order_id"}, "")
	if err != nil {
		t.Fatalf("Extract() err=%v", err)
	}
	want := domain.SchemaContract{
		Target:                 "is_high_value",
		RequiredFeatureColumns: []string{"country", "n_orders", "avg_amount", "signed_up"},
		OptionalIDColumns:      []string{"user_id"},
		FeatureDTypes: map[string]string{
			"country":    "string",
			"n_orders":   "int",
			"avg_amount": "float",
			"signed_up":  "datetime",
		},
		DatetimeColumns:         []string{"signed_up"},
		PolicyUnknownCategories: "ignore",
		ForbiddenColumns:        []string{"is_high_value"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Extract() mismatch (-want +got):\n%s", diff)
	}
	if err := Validate(got); err != nil {
		t.Fatalf("Validate() err=%v", err)
	}
}

func TestExtractMissingTarget(t *testing.T) {
	_, err := Extract(fixture(t), "churned", []string{"user_id"}, "")
	if !errors.Is(err, domain.ErrMissingColumn) {
		t.Fatalf("Extract() err=%v, want ErrMissingColumn", err)
	}
	var mce *domain.MissingColumnError
	if !errors.As(err, &mce) || mce.Column != "churned" || mce.Role != domain.RoleTarget {
		t.Fatalf("Extract() err=%#v, want target column churned", err)
	}
}

func TestExtractTargetNeverAFeature(t *testing.T) {
	for _, ids := range [][]string{nil, {"user_id"}, {"is_high_value"}, {"country", "n_orders"}} {
		got, err := Extract(fixture(t), "is_high_value", ids, "")
		if err != nil {
			t.Fatalf("Extract(%v) err=%v", ids, err)
		}
		if slices.Contains(got.RequiredFeatureColumns, "is_high_value") {
			t.Fatalf("Extract(%v) listed the target as a feature", ids)
		}
		for _, id := range got.OptionalIDColumns {
			if !slices.Contains(ids, id) {
				t.Fatalf("Extract(%v) reported unconfigured id %q", ids, id)
			}
		}
	}
}

func TestExtractDeclaredTimeColumn(t *testing.T) {
	got, err := Extract(fixture(t), "is_high_value", []string{"user_id"}, "n_orders")
	if err != nil {
		t.Fatalf("Extract() err=%v", err)
	}
	if diff := cmp.Diff([]string{"signed_up", "n_orders"}, got.DatetimeColumns); diff != "" {
		t.Fatalf("DatetimeColumns mismatch (-want +got):\n%s", diff)
	}
}

func TestValidateRejectsTargetFeature(t *testing.T) {
	c := domain.SchemaContract{
		Target:                 "y",
		RequiredFeatureColumns: []string{"x", "y"},
		FeatureDTypes:          map[string]string{"x": "int", "y": "int"},
		ForbiddenColumns:       []string{"y"},
	}
	if err := Validate(c); err == nil {
		t.Fatalf("Validate() expected error")
	}
}
