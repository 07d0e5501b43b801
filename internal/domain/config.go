package domain

import (
	"fmt"
	"slices"
	"strings"
)

// Threshold strategies. They are carried in the config for later models; the
// majority-class baseline never consults them.
const (
	ThresholdFixed        = "fixed"
	ThresholdMinPrecision = "min_precision"
	ThresholdMaxF1        = "max_f1"
)

// RunMode selects the artifact set produced by a training run.
type RunMode string

const (
	// ModeFull captures schema and environment and names runs
	// <ts>__<tag>__session<seed>.
	ModeFull RunMode = "full"
	// ModeMinimal writes only metrics and model, naming runs
	// <ts>__baseline__seed<seed>.
	ModeMinimal RunMode = "minimal"
)

const DefaultRunTag = "baseline"

// TrainCfg is the immutable configuration of one training run. It is passed
// by value; slices are cloned by Normalize so callers cannot mutate a running
// configuration.
type TrainCfg struct {
	FeaturesPath string `yaml:"features_path" json:"features_path"`
	Target       string `yaml:"target" json:"target"`

	IDCols   []string `yaml:"id_cols" json:"id_cols"`
	TimeCol  string   `yaml:"time_col,omitempty" json:"time_col,omitempty"`
	GroupCol string   `yaml:"group_col,omitempty" json:"group_col,omitempty"`

	PosLabel          string  `yaml:"pos_label" json:"pos_label"`
	ThresholdStrategy string  `yaml:"threshold_strategy" json:"threshold_strategy"`
	ThresholdValue    float64 `yaml:"threshold_value" json:"threshold_value"`
	MinPrecision      float64 `yaml:"min_precision" json:"min_precision"`

	SessionID int64   `yaml:"session_id" json:"session_id"`
	TrainSize float64 `yaml:"train_size" json:"train_size"`
	Fold      int     `yaml:"fold" json:"fold"`

	SortMetric string `yaml:"sort_metric" json:"sort_metric"`
	TuneMetric string `yaml:"tune_metric" json:"tune_metric"`
	TuneIters  int    `yaml:"tune_iters" json:"tune_iters"`

	RunTag         string  `yaml:"run_tag" json:"run_tag"`
	Mode           RunMode `yaml:"mode" json:"mode"`
	Root           string  `yaml:"root" json:"root"`
	ConfineWorkdir bool    `yaml:"confine_workdir" json:"confine_workdir"`
}

// DefaultTrainCfg returns the defaults for a features file and target.
func DefaultTrainCfg(featuresPath, target string) TrainCfg {
	return TrainCfg{
		FeaturesPath:      featuresPath,
		Target:            target,
		IDCols:            []string{"id"},
		PosLabel:          "1",
		ThresholdStrategy: ThresholdFixed,
		ThresholdValue:    0.5,
		MinPrecision:      0.8,
		SessionID:         42,
		TrainSize:         0.8,
		Fold:              5,
		SortMetric:        "AUC",
		TuneMetric:        "AUC",
		TuneIters:         25,
		RunTag:            DefaultRunTag,
		Mode:              ModeFull,
		Root:              ".",
	}
}

// Normalize trims string fields, fills empty string and count fields with
// defaults and clones slices. Numeric fields where zero is meaningful
// (SessionID, TrainSize, ThresholdValue, MinPrecision) are kept as given;
// callers start from DefaultTrainCfg.
func (c TrainCfg) Normalize() TrainCfg {
	def := DefaultTrainCfg(c.FeaturesPath, c.Target)
	c.FeaturesPath = strings.TrimSpace(c.FeaturesPath)
	c.Target = strings.TrimSpace(c.Target)
	c.TimeCol = strings.TrimSpace(c.TimeCol)
	c.GroupCol = strings.TrimSpace(c.GroupCol)

	if c.IDCols == nil {
		c.IDCols = def.IDCols
	}
	ids := make([]string, 0, len(c.IDCols))
	for _, id := range c.IDCols {
		if id = strings.TrimSpace(id); id != "" && !slices.Contains(ids, id) {
			ids = append(ids, id)
		}
	}
	c.IDCols = ids

	if strings.TrimSpace(c.PosLabel) == "" {
		c.PosLabel = def.PosLabel
	}
	c.ThresholdStrategy = strings.ToLower(strings.TrimSpace(c.ThresholdStrategy))
	if c.ThresholdStrategy == "" {
		c.ThresholdStrategy = def.ThresholdStrategy
	}
	if c.Fold == 0 {
		c.Fold = def.Fold
	}
	if c.SortMetric == "" {
		c.SortMetric = def.SortMetric
	}
	if c.TuneMetric == "" {
		c.TuneMetric = def.TuneMetric
	}
	if c.TuneIters == 0 {
		c.TuneIters = def.TuneIters
	}
	c.RunTag = strings.TrimSpace(c.RunTag)
	if c.RunTag == "" {
		c.RunTag = def.RunTag
	}
	c.Mode = RunMode(strings.ToLower(strings.TrimSpace(string(c.Mode))))
	if c.Mode == "" {
		c.Mode = def.Mode
	}
	if strings.TrimSpace(c.Root) == "" {
		c.Root = def.Root
	}
	return c
}

func (c TrainCfg) Validate() error {
	if c.FeaturesPath == "" {
		return invalidConfig("features path is required")
	}
	if c.Target == "" {
		return invalidConfig("target column is required")
	}
	if !(c.TrainSize > 0 && c.TrainSize < 1) {
		return invalidConfig(fmt.Sprintf("train size must be in (0, 1), got %v", c.TrainSize))
	}
	if c.Fold < 2 {
		return invalidConfig(fmt.Sprintf("fold must be >= 2, got %d", c.Fold))
	}
	switch c.ThresholdStrategy {
	case ThresholdFixed, ThresholdMinPrecision, ThresholdMaxF1:
	default:
		return invalidConfig(fmt.Sprintf("threshold strategy unsupported: %q", c.ThresholdStrategy))
	}
	switch c.Mode {
	case ModeFull, ModeMinimal:
	default:
		return invalidConfig(fmt.Sprintf("mode unsupported: %q", c.Mode))
	}
	if slices.Contains(c.IDCols, c.Target) {
		return invalidConfig(fmt.Sprintf("target %q must not be listed as an id column", c.Target))
	}
	if c.TimeCol != "" && c.TimeCol == c.Target {
		return invalidConfig(fmt.Sprintf("target %q must not be the time column", c.Target))
	}
	if strings.ContainsAny(c.RunTag, `/\`) || strings.Contains(c.RunTag, "__") {
		return invalidConfig(fmt.Sprintf("run tag %q must not contain path separators or \"__\"", c.RunTag))
	}
	return nil
}
