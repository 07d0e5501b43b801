package domain

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestNormalizeFillsDefaults(t *testing.T) {
	cfg := TrainCfg{FeaturesPath: " data/features.csv ", Target: " is_high_value "}.Normalize()
	want := DefaultTrainCfg("data/features.csv", "is_high_value")
	want.SessionID = 0
	want.TrainSize = 0
	want.ThresholdValue = 0
	want.MinPrecision = 0
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Fatalf("Normalize() mismatch (-want +got):\n%s", diff)
	}
}

func TestNormalizeKeepsDefaults(t *testing.T) {
	in := DefaultTrainCfg(" data/features.csv ", "is_high_value")
	in.RunTag = "  "
	in.Mode = " FULL "
	cfg := in.Normalize()
	want := DefaultTrainCfg("data/features.csv", "is_high_value")
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Fatalf("Normalize() mismatch (-want +got):\n%s", diff)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() err=%v", err)
	}
}

func TestNormalizeKeepsMeaningfulZeros(t *testing.T) {
	in := DefaultTrainCfg("f.csv", "y")
	in.SessionID = 0
	in.TrainSize = 0
	in.ThresholdValue = 0
	cfg := in.Normalize()
	if cfg.SessionID != 0 || cfg.TrainSize != 0 || cfg.ThresholdValue != 0 {
		t.Fatalf("Normalize() replaced zero values: seed=%d train=%v threshold=%v", cfg.SessionID, cfg.TrainSize, cfg.ThresholdValue)
	}
	if err := cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("Validate() err=%v, want ErrInvalidConfig for train size 0", err)
	}
}

func TestNormalizeDedupesIDCols(t *testing.T) {
	cfg := TrainCfg{FeaturesPath: "f.csv", Target: "y", IDCols: []string{"user_id", " ", "user_id", "order_id"}}.Normalize()
	if diff := cmp.Diff([]string{"user_id", "order_id"}, cfg.IDCols); diff != "" {
		t.Fatalf("IDCols mismatch (-want +got):\n%s", diff)
	}

	empty := TrainCfg{FeaturesPath: "f.csv", Target: "y", IDCols: []string{}}.Normalize()
	if len(empty.IDCols) != 0 {
		t.Fatalf("IDCols=%v, want explicit empty list kept", empty.IDCols)
	}
}

func TestValidateRejects(t *testing.T) {
	base := DefaultTrainCfg("f.csv", "y")
	cases := map[string]func(*TrainCfg){
		"missing path":        func(c *TrainCfg) { c.FeaturesPath = "" },
		"missing target":      func(c *TrainCfg) { c.Target = "" },
		"train size one":      func(c *TrainCfg) { c.TrainSize = 1 },
		"train size zero":     func(c *TrainCfg) { c.TrainSize = 0 },
		"train size negative": func(c *TrainCfg) { c.TrainSize = -0.1 },
		"fold":                func(c *TrainCfg) { c.Fold = 1 },
		"threshold":           func(c *TrainCfg) { c.ThresholdStrategy = "youden" },
		"mode":                func(c *TrainCfg) { c.Mode = "dense" },
		"target as id":        func(c *TrainCfg) { c.IDCols = []string{"y"} },
		"target as time":      func(c *TrainCfg) { c.TimeCol = "y" },
		"tag with separator":  func(c *TrainCfg) { c.RunTag = "a/b" },
		"tag with delimiter":  func(c *TrainCfg) { c.RunTag = "a__b" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := base
			mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatalf("Validate() expected error")
			}
			if !errors.Is(err, ErrInvalidConfig) {
				t.Fatalf("Validate() err=%v, want ErrInvalidConfig", err)
			}
		})
	}
}

func TestMissingColumnError(t *testing.T) {
	var err error = &MissingColumnError{Role: RoleTarget, Column: "is_high_value"}
	if !errors.Is(err, ErrMissingColumn) {
		t.Fatalf("errors.Is(ErrMissingColumn)=false")
	}
	if got := err.Error(); got != `target column "is_high_value" not found in table` {
		t.Fatalf("Error()=%q", got)
	}
}
