// Package config assembles a TrainCfg from defaults, an optional YAML file
// and BASELINE_* environment variables, in that order of precedence.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/animus-labs/animus-baseline/internal/domain"
	"github.com/animus-labs/animus-baseline/internal/platform/env"
)

// Parse decodes a YAML document over the defaults. Unknown keys are rejected.
func Parse(input []byte) (domain.TrainCfg, error) {
	cfg := domain.DefaultTrainCfg("", "")
	dec := yaml.NewDecoder(bytes.NewReader(input))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return domain.TrainCfg{}, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

// Load reads path when it is non-empty and applies environment overrides.
// The result is normalized but not validated; callers validate after the
// command line has had its say.
func Load(fs afero.Fs, path string) (domain.TrainCfg, error) {
	cfg := domain.DefaultTrainCfg("", "")
	if path != "" {
		raw, err := afero.ReadFile(fs, path)
		if err != nil {
			return domain.TrainCfg{}, fmt.Errorf("read config: %w", err)
		}
		if cfg, err = Parse(raw); err != nil {
			return domain.TrainCfg{}, err
		}
	}
	cfg, err := ApplyEnv(cfg)
	if err != nil {
		return domain.TrainCfg{}, err
	}
	return cfg.Normalize(), nil
}

// ApplyEnv overrides cfg with any BASELINE_* variables that are set.
func ApplyEnv(cfg domain.TrainCfg) (domain.TrainCfg, error) {
	cfg.FeaturesPath = env.String("BASELINE_FEATURES_PATH", cfg.FeaturesPath)
	cfg.Target = env.String("BASELINE_TARGET", cfg.Target)
	cfg.IDCols = env.Strings("BASELINE_ID_COLS", cfg.IDCols)
	cfg.TimeCol = env.String("BASELINE_TIME_COL", cfg.TimeCol)
	cfg.RunTag = env.String("BASELINE_RUN_TAG", cfg.RunTag)
	cfg.Mode = domain.RunMode(env.String("BASELINE_MODE", string(cfg.Mode)))
	cfg.Root = env.String("BASELINE_ROOT", cfg.Root)

	seed, err := env.Int("BASELINE_SESSION_ID", int(cfg.SessionID))
	if err != nil {
		return domain.TrainCfg{}, err
	}
	cfg.SessionID = int64(seed)
	if cfg.TrainSize, err = env.Float("BASELINE_TRAIN_SIZE", cfg.TrainSize); err != nil {
		return domain.TrainCfg{}, err
	}
	if cfg.ConfineWorkdir, err = env.Bool("BASELINE_CONFINE_WORKDIR", cfg.ConfineWorkdir); err != nil {
		return domain.TrainCfg{}, err
	}
	return cfg, nil
}
