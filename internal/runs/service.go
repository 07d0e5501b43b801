package runs

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/afero"

	"github.com/animus-labs/animus-baseline/internal/domain"
	"github.com/animus-labs/animus-baseline/internal/envcapture"
	"github.com/animus-labs/animus-baseline/internal/paths"
	"github.com/animus-labs/animus-baseline/internal/schema"
	"github.com/animus-labs/animus-baseline/internal/table"
	"github.com/animus-labs/animus-baseline/internal/trainer"
)

const holdoutMetricsName = "baseline_holdout"

type EnvRecorder interface {
	Capture(ctx context.Context) envcapture.Snapshot
}

type Trainer interface {
	Fit(ctx context.Context, in trainer.Input) (trainer.Result, error)
}

// Publisher mirrors a finished run directory somewhere outside the local
// filesystem.
type Publisher interface {
	Publish(ctx context.Context, fs afero.Fs, run domain.Run) (int, error)
}

// Ledger records a finished run manifest.
type Ledger interface {
	Record(ctx context.Context, manifest Manifest) error
}

type Service struct {
	fs        afero.Fs
	logger    *slog.Logger
	env       EnvRecorder
	trainer   Trainer
	publisher Publisher
	ledger    Ledger
	now       func() time.Time
	newUUID   func() string
}

type Option func(*Service)

func WithEnvRecorder(r EnvRecorder) Option {
	return func(s *Service) {
		if r != nil {
			s.env = r
		}
	}
}

func WithTrainer(t Trainer) Option {
	return func(s *Service) {
		if t != nil {
			s.trainer = t
		}
	}
}

func WithPublisher(p Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

func WithLedger(l Ledger) Option {
	return func(s *Service) { s.ledger = l }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func New(fs afero.Fs, logger *slog.Logger, opts ...Option) *Service {
	if fs == nil {
		return nil
	}
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(os.Stderr, nil))
	}
	s := &Service{
		fs:      fs,
		logger:  logger,
		env:     envcapture.NewRecorder(),
		trainer: trainer.Baseline{},
		now:     time.Now,
		newUUID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type Result struct {
	Run      domain.Run
	State    domain.RunState
	Accuracy float64
	Manifest Manifest
}

// StepError reports the state a run failed in.
type StepError struct {
	State domain.RunState
	RunID string
	Err   error
}

func (e *StepError) Error() string {
	if e.RunID != "" {
		return fmt.Sprintf("run %s failed during %s: %v", e.RunID, e.State, e.Err)
	}
	return fmt.Sprintf("run failed during %s: %v", e.State, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

// execution tracks the current state of one Run call.
type execution struct {
	ctx    context.Context
	logger *slog.Logger
	state  domain.RunState
	runID  string
}

func (x *execution) enter(state domain.RunState) error {
	if err := x.ctx.Err(); err != nil {
		return err
	}
	x.state = state
	x.logger.Info("run state", "state", state, "run_id", x.runID)
	return nil
}

func (x *execution) fail(err error) (Result, error) {
	x.logger.Error("run failed", "state", x.state, "run_id", x.runID, "error", err)
	return Result{State: domain.RunStateFailed}, &StepError{State: x.state, RunID: x.runID, Err: err}
}

// Run executes one training run. On success the registry names the new run.
func (s *Service) Run(ctx context.Context, cfg domain.TrainCfg) (Result, error) {
	x := &execution{ctx: ctx, logger: s.logger, state: domain.RunStateLoading}

	cfg = cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		x.state = domain.RunStateValidating
		return x.fail(err)
	}
	if cfg.ConfineWorkdir {
		if _, ok := s.fs.(*afero.OsFs); !ok {
			x.state = domain.RunStateValidating
			return x.fail(fmt.Errorf("%w: confine_workdir requires the OS filesystem", domain.ErrInvalidConfig))
		}
	}
	layout := paths.FromRoot(cfg.Root)
	materializer := NewMaterializer(s.fs, layout.Runs, s.logger)

	if err := x.enter(domain.RunStateLoading); err != nil {
		return x.fail(err)
	}
	tbl, readPath, err := table.Load(s.fs, cfg.FeaturesPath, table.ReadOptions{StringColumns: cfg.IDCols})
	if err != nil {
		return x.fail(err)
	}
	if readPath != cfg.FeaturesPath {
		s.logger.Warn("features read from fallback file", "requested", cfg.FeaturesPath, "path", readPath)
	}
	s.logger.Info("features loaded", "path", readPath, "rows", tbl.Len(), "columns", tbl.Width())

	if err := x.enter(domain.RunStateValidating); err != nil {
		return x.fail(err)
	}
	target, ok := tbl.Column(cfg.Target)
	if !ok {
		return x.fail(&domain.MissingColumnError{Role: domain.RoleTarget, Column: cfg.Target})
	}
	if cfg.TimeCol != "" && !tbl.Has(cfg.TimeCol) {
		return x.fail(&domain.MissingColumnError{Role: domain.RoleTime, Column: cfg.TimeCol})
	}

	if cfg.TimeCol != "" {
		if err := x.enter(domain.RunStateSorting); err != nil {
			return x.fail(err)
		}
		if tbl, err = tbl.SortBy(cfg.TimeCol); err != nil {
			return x.fail(err)
		}
		target, _ = tbl.Column(cfg.Target)
	}

	var (
		contract domain.SchemaContract
		snap     envcapture.Snapshot
	)
	if cfg.Mode == domain.ModeFull {
		if err := x.enter(domain.RunStateSchemaExtraction); err != nil {
			return x.fail(err)
		}
		if contract, err = schema.Extract(tbl, cfg.Target, cfg.IDCols, cfg.TimeCol); err != nil {
			return x.fail(err)
		}
		if err := schema.Validate(contract); err != nil {
			return x.fail(err)
		}

		if err := x.enter(domain.RunStateEnvironmentCapture); err != nil {
			return x.fail(err)
		}
		snap = s.env.Capture(ctx)
	}

	if err := x.enter(domain.RunStateSplittingAndFitting); err != nil {
		return x.fail(err)
	}
	createdAt := s.now().UTC()
	run, err := materializer.Create(domain.Run{
		ID:        NewRunID(createdAt, cfg.RunTag, cfg.SessionID, cfg.Mode),
		UUID:      s.newUUID(),
		Tag:       cfg.RunTag,
		Seed:      cfg.SessionID,
		Mode:      cfg.Mode,
		CreatedAt: createdAt,
	})
	if err != nil {
		return x.fail(err)
	}
	x.runID = run.ID
	s.logger.Info("run dir claimed", "run_id", run.ID, "dir", run.Dir)

	features := tbl.Drop(append([]string{cfg.Target}, cfg.IDCols...)...)
	outputDir := run.Dir
	if cfg.ConfineWorkdir {
		if outputDir, err = filepath.Abs(run.Dir); err != nil {
			return x.fail(err)
		}
	}
	var fit trainer.Result
	fitFn := func() error {
		var ferr error
		fit, ferr = s.trainer.Fit(ctx, trainer.Input{
			Features:  features,
			Target:    target,
			TrainSize: cfg.TrainSize,
			Seed:      cfg.SessionID,
			OutputDir: outputDir,
		})
		return ferr
	}
	if cfg.ConfineWorkdir {
		err = WithWorkingDir(outputDir, fitFn)
	} else {
		err = fitFn()
	}
	if err != nil {
		return x.fail(err)
	}
	s.logger.Info("baseline fitted",
		"run_id", run.ID,
		"accuracy", fit.Accuracy,
		"train_rows", len(fit.TrainRows),
		"holdout_rows", len(fit.HoldoutRows),
	)

	if err := x.enter(domain.RunStatePersisting); err != nil {
		return x.fail(err)
	}
	var artifacts []Artifact
	if cfg.Mode == domain.ModeFull {
		a, err := materializer.WriteSchema(run, contract)
		if err != nil {
			return x.fail(err)
		}
		artifacts = append(artifacts, a)
		envArtifacts, err := materializer.WriteEnvironment(run, snap)
		if err != nil {
			return x.fail(err)
		}
		artifacts = append(artifacts, envArtifacts...)
	}
	metrics, err := materializer.WriteMetrics(run, holdoutMetricsName, holdoutMetrics{Accuracy: fit.Accuracy})
	if err != nil {
		return x.fail(err)
	}
	model, err := materializer.WriteModel(run, fit.Model)
	if err != nil {
		return x.fail(err)
	}
	artifacts = append(artifacts, metrics, model)

	manifest, err := materializer.WriteManifest(run, Manifest{
		RunID:        run.ID,
		RunUUID:      run.UUID,
		Tag:          run.Tag,
		Seed:         run.Seed,
		Mode:         run.Mode,
		CreatedAt:    run.CreatedAt,
		FeaturesPath: readPath,
		Config:       cfg,
		Metrics:      map[string]float64{"accuracy": fit.Accuracy},
		TrainRows:    len(fit.TrainRows),
		HoldoutRows:  len(fit.HoldoutRows),
		Artifacts:    artifacts,
	})
	if err != nil {
		return x.fail(err)
	}
	if s.publisher != nil {
		n, err := s.publisher.Publish(ctx, s.fs, run)
		if err != nil {
			return x.fail(fmt.Errorf("publish run: %w", err))
		}
		s.logger.Info("run published", "run_id", run.ID, "objects", n)
	}
	if s.ledger != nil {
		if err := s.ledger.Record(ctx, manifest); err != nil {
			return x.fail(fmt.Errorf("record run: %w", err))
		}
	}

	if err := x.enter(domain.RunStateRegistryUpdate); err != nil {
		return x.fail(err)
	}
	if err := NewRegistry(s.fs, layout.Registry).Update(run.ID); err != nil {
		return x.fail(err)
	}

	x.state = domain.RunStateDone
	s.logger.Info("run done", "run_id", run.ID, "dir", run.Dir, "accuracy", fit.Accuracy)
	return Result{
		Run:      run,
		State:    domain.RunStateDone,
		Accuracy: fit.Accuracy,
		Manifest: manifest,
	}, nil
}

type holdoutMetrics struct {
	Accuracy float64 `json:"accuracy"`
}

// Latest returns the id of the most recent successful run under root.
func Latest(fs afero.Fs, root string) (string, error) {
	return NewRegistry(fs, paths.FromRoot(root).Registry).Latest()
}
