package runs

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/afero"

	"github.com/animus-labs/animus-baseline/internal/domain"
)

func TestClusterWritesKMeansRun(t *testing.T) {
	fs, cfg := setup(t)
	svc := newService(fs)
	res, err := svc.Cluster(context.Background(), ClusterCfg{
		FeaturesPath: cfg.FeaturesPath,
		IDCols:       []string{"user_id"},
		Exclude:      []string{"is_high_value"},
		K:            3,
		Seed:         42,
		Root:         "proj",
	})
	if err != nil {
		t.Fatalf("Cluster() err=%v", err)
	}
	if !strings.Contains(res.Run.ID, "__kmeans__session42") {
		t.Fatalf("Run.ID=%q", res.Run.ID)
	}
	total := 0
	for _, n := range res.Sizes {
		total += n
	}
	if total != 50 {
		t.Fatalf("cluster sizes sum to %d, want 50", total)
	}

	raw, err := afero.ReadFile(fs, filepath.Join(res.Run.Dir, "tables", "assignments.csv"))
	if err != nil {
		t.Fatalf("read assignments: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	if lines[0] != "user_id,cluster" || len(lines) != 51 {
		t.Fatalf("assignments header=%q lines=%d", lines[0], len(lines))
	}
	if ok, _ := afero.Exists(fs, filepath.Join(res.Run.Dir, "metrics", "cluster.json")); !ok {
		t.Fatalf("metrics/cluster.json missing")
	}
	if err := res.Manifest.Verify(); err != nil {
		t.Fatalf("Verify() err=%v", err)
	}
	if _, err := Latest(fs, "proj"); !errors.Is(err, ErrNoRuns) {
		t.Fatalf("Latest() err=%v, clustering must not register", err)
	}
}

func TestClusterRejectsBadK(t *testing.T) {
	fs, cfg := setup(t)
	_, err := newService(fs).Cluster(context.Background(), ClusterCfg{FeaturesPath: cfg.FeaturesPath, K: 0})
	if !errors.Is(err, domain.ErrInvalidConfig) {
		t.Fatalf("Cluster() err=%v, want ErrInvalidConfig", err)
	}
}
