package runs

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/animus-labs/animus-baseline/internal/domain"
)

const (
	ManifestSchema = "animus.baseline.run.v1"
	manifestFile   = "run.json"
)

// Artifact is one file written into a run directory. Path is relative to the
// run directory and uses forward slashes.
type Artifact struct {
	Path      string `json:"path"`
	SHA256    string `json:"sha256"`
	SizeBytes int64  `json:"size_bytes"`
}

// Manifest is written as run.json once every other artifact is on disk.
type Manifest struct {
	Schema       string             `json:"schema"`
	RunID        string             `json:"run_id"`
	RunUUID      string             `json:"run_uuid"`
	Tag          string             `json:"tag"`
	Seed         int64              `json:"seed"`
	Mode         domain.RunMode     `json:"mode"`
	CreatedAt    time.Time          `json:"created_at"`
	FeaturesPath string             `json:"features_path"`
	Config       domain.TrainCfg    `json:"config"`
	Metrics      map[string]float64 `json:"metrics,omitempty"`
	TrainRows    int                `json:"train_rows"`
	HoldoutRows  int                `json:"holdout_rows"`
	Artifacts    []Artifact         `json:"artifacts"`

	IntegritySHA256 string `json:"integrity_sha256"`
}

// ComputeIntegritySHA256 hashes the manifest with its integrity field
// cleared. Map keys marshal in sorted order, so the digest is stable.
func ComputeIntegritySHA256(m Manifest) (string, error) {
	m.IntegritySHA256 = ""
	m.CreatedAt = m.CreatedAt.UTC()
	blob, err := json.Marshal(m)
	if err != nil {
		return "", fmt.Errorf("marshal integrity: %w", err)
	}
	sum := sha256.Sum256(blob)
	return hex.EncodeToString(sum[:]), nil
}

// Verify recomputes the integrity digest and compares it to the stored one.
func (m Manifest) Verify() error {
	want, err := ComputeIntegritySHA256(m)
	if err != nil {
		return err
	}
	if m.IntegritySHA256 != want {
		return fmt.Errorf("manifest %s integrity mismatch", m.RunID)
	}
	return nil
}
