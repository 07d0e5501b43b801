package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/animus-labs/animus-baseline/internal/config"
	"github.com/animus-labs/animus-baseline/internal/domain"
	"github.com/animus-labs/animus-baseline/internal/ledger"
	platformstore "github.com/animus-labs/animus-baseline/internal/platform/objectstore"
	"github.com/animus-labs/animus-baseline/internal/platform/postgres"
	"github.com/animus-labs/animus-baseline/internal/publish"
	"github.com/animus-labs/animus-baseline/internal/runs"
	"github.com/animus-labs/animus-baseline/internal/storage/objectstore"
)

type trainFlags struct {
	configPath     string
	idCols         []string
	timeCol        string
	sessionID      int64
	trainSize      float64
	runTag         string
	minimal        bool
	confineWorkdir bool
}

func newTrainCmd(a *app) *cobra.Command {
	f := &trainFlags{}
	cmd := &cobra.Command{
		Use:   "train FEATURES TARGET",
		Short: "Fit the majority-class baseline and register the run",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(a.fs, f.configPath)
			if err != nil {
				return err
			}
			cfg.FeaturesPath = args[0]
			cfg.Target = args[1]
			cfg.Root = a.rootOr(cfg.Root)
			flags := cmd.Flags()
			if flags.Changed("id-cols") {
				cfg.IDCols = f.idCols
			}
			if flags.Changed("time-col") {
				cfg.TimeCol = f.timeCol
			}
			if flags.Changed("session-id") {
				cfg.SessionID = f.sessionID
			}
			if flags.Changed("train-size") {
				cfg.TrainSize = f.trainSize
			}
			if flags.Changed("run-tag") {
				cfg.RunTag = f.runTag
			}
			if f.minimal {
				cfg.Mode = domain.ModeMinimal
			}
			if f.confineWorkdir {
				cfg.ConfineWorkdir = true
			}

			opts, cleanup, err := storageOptions(cmd.Context(), a.logger)
			defer cleanup()
			if err != nil {
				return err
			}

			svc := runs.New(a.fs, a.logger, opts...)
			res, err := svc.Run(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "run %s accuracy=%.4f dir=%s\n", res.Run.ID, res.Accuracy, res.Run.Dir)
			return nil
		},
	}
	fl := cmd.Flags()
	fl.StringVarP(&f.configPath, "config", "c", "", "YAML config file")
	fl.StringSliceVar(&f.idCols, "id-cols", nil, "identifier columns excluded from features")
	fl.StringVar(&f.timeCol, "time-col", "", "sort rows by this column before splitting")
	fl.Int64Var(&f.sessionID, "session-id", 42, "random seed")
	fl.Float64Var(&f.trainSize, "train-size", 0.8, "training fraction in (0,1)")
	fl.StringVar(&f.runTag, "run-tag", domain.DefaultRunTag, "tag embedded in the run id")
	fl.BoolVar(&f.minimal, "minimal", false, "write only metrics and model")
	fl.BoolVar(&f.confineWorkdir, "confine-workdir", false, "fit with the working directory set to the run dir")
	return cmd
}

var openDB = postgres.Open

// storageOptions wires the run mirror and the run ledger when their
// environment is configured.
func storageOptions(ctx context.Context, logger *slog.Logger) ([]runs.Option, func(), error) {
	var (
		opts    []runs.Option
		closers []func()
	)
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	if platformstore.Enabled() {
		storeCfg, err := platformstore.ConfigFromEnv()
		if err != nil {
			return nil, cleanup, fmt.Errorf("object store config: %w", err)
		}
		store, err := objectstore.NewMinioStore(storeCfg)
		if err != nil {
			return nil, cleanup, fmt.Errorf("object store client: %w", err)
		}
		if err := platformstore.EnsureBucket(ctx, store.Client(), storeCfg); err != nil {
			return nil, cleanup, err
		}
		pub, err := publish.New(store, storeCfg.BucketRuns, storeCfg.Prefix, logger)
		if err != nil {
			return nil, cleanup, err
		}
		opts = append(opts, runs.WithPublisher(pub))
		logger.Info("run mirror enabled", "endpoint", storeCfg.Endpoint, "bucket", storeCfg.BucketRuns)
	}

	if postgres.Enabled() {
		dbCfg, err := postgres.ConfigFromEnv()
		if err != nil {
			return nil, cleanup, fmt.Errorf("database config: %w", err)
		}
		db, err := openDB(ctx, dbCfg)
		if err != nil {
			return nil, cleanup, fmt.Errorf("database unavailable: %w", err)
		}
		closers = append(closers, func() { _ = db.Close() })
		store := ledger.NewStore(db)
		if err := store.EnsureSchema(ctx); err != nil {
			return nil, cleanup, err
		}
		opts = append(opts, runs.WithLedger(store))
		logger.Info("run ledger enabled")
	}
	return opts, cleanup, nil
}
