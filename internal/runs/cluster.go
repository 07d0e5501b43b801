package runs

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/animus-labs/animus-baseline/internal/clustering"
	"github.com/animus-labs/animus-baseline/internal/domain"
	"github.com/animus-labs/animus-baseline/internal/paths"
	"github.com/animus-labs/animus-baseline/internal/table"
)

const ClusterTag = "kmeans"

// ClusterCfg configures an unsupervised run. Every column that is neither an
// id nor excluded is a feature.
type ClusterCfg struct {
	FeaturesPath string
	IDCols       []string
	Exclude      []string
	K            int
	Seed         int64
	MaxIter      int
	Root         string
}

type ClusterResult struct {
	Run      domain.Run
	Inertia  float64
	Sizes    []int
	Manifest Manifest
}

type clusterMetrics struct {
	K          int      `json:"k"`
	Inertia    float64  `json:"inertia"`
	Iterations int      `json:"iterations"`
	Sizes      []int    `json:"sizes"`
	Features   []string `json:"features"`
}

// Cluster fits k-means over the features file and writes a kmeans run
// directory. It never touches the registry.
func (s *Service) Cluster(ctx context.Context, cfg ClusterCfg) (ClusterResult, error) {
	if cfg.FeaturesPath == "" {
		return ClusterResult{}, fmt.Errorf("%w: features path is required", domain.ErrInvalidConfig)
	}
	if cfg.K < 1 {
		return ClusterResult{}, fmt.Errorf("%w: k must be >= 1", domain.ErrInvalidConfig)
	}
	tbl, readPath, err := table.Load(s.fs, cfg.FeaturesPath, table.ReadOptions{StringColumns: cfg.IDCols})
	if err != nil {
		return ClusterResult{}, err
	}
	features := tbl.Drop(append(append([]string{}, cfg.IDCols...), cfg.Exclude...)...)
	if features.Width() == 0 {
		return ClusterResult{}, errors.New("no feature columns left to cluster")
	}

	pre, err := clustering.FitPreprocessor(features, features.Names())
	if err != nil {
		return ClusterResult{}, err
	}
	x, err := pre.Transform(features)
	if err != nil {
		return ClusterResult{}, err
	}
	fit, err := clustering.KMeans{K: cfg.K, Seed: cfg.Seed, MaxIter: cfg.MaxIter}.Fit(ctx, x)
	if err != nil {
		return ClusterResult{}, err
	}

	materializer := NewMaterializer(s.fs, paths.FromRoot(cfg.Root).Runs, s.logger)
	createdAt := s.now().UTC()
	run, err := materializer.Create(domain.Run{
		ID:        NewRunID(createdAt, ClusterTag, cfg.Seed, domain.ModeFull),
		UUID:      s.newUUID(),
		Tag:       ClusterTag,
		Seed:      cfg.Seed,
		Mode:      domain.ModeFull,
		CreatedAt: createdAt,
	})
	if err != nil {
		return ClusterResult{}, err
	}

	metrics, err := materializer.WriteMetrics(run, "cluster", clusterMetrics{
		K:          cfg.K,
		Inertia:    fit.Inertia,
		Iterations: fit.Iterations,
		Sizes:      fit.Sizes,
		Features:   pre.OutputNames(),
	})
	if err != nil {
		return ClusterResult{}, err
	}
	assignments, err := assignmentTable(tbl, cfg.IDCols, fit.Assignments)
	if err != nil {
		return ClusterResult{}, err
	}
	tableArtifact, err := materializer.WriteTable(run, "assignments", assignments)
	if err != nil {
		return ClusterResult{}, err
	}
	manifest, err := materializer.WriteManifest(run, Manifest{
		RunID:        run.ID,
		RunUUID:      run.UUID,
		Tag:          run.Tag,
		Seed:         run.Seed,
		Mode:         run.Mode,
		CreatedAt:    run.CreatedAt,
		FeaturesPath: readPath,
		Metrics:      map[string]float64{"inertia": fit.Inertia},
		TrainRows:    tbl.Len(),
		Artifacts:    []Artifact{metrics, tableArtifact},
	})
	if err != nil {
		return ClusterResult{}, err
	}
	s.logger.Info("clustering done", "run_id", run.ID, "k", cfg.K, "inertia", fit.Inertia, "iterations", fit.Iterations)
	return ClusterResult{Run: run, Inertia: fit.Inertia, Sizes: fit.Sizes, Manifest: manifest}, nil
}

func assignmentTable(t *table.Table, idCols []string, assign []int) (*table.Table, error) {
	cols := make([]*table.Column, 0, len(idCols)+1)
	for _, id := range idCols {
		if c, ok := t.Column(id); ok {
			cols = append(cols, c)
		}
	}
	cells := make([]string, len(assign))
	for i, a := range assign {
		cells[i] = strconv.Itoa(a)
	}
	cols = append(cols, table.NewColumn("cluster", cells))
	return table.New(cols...)
}
