package runs

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/spf13/afero"

	"github.com/animus-labs/animus-baseline/internal/domain"
	"github.com/animus-labs/animus-baseline/internal/envcapture"
	"github.com/animus-labs/animus-baseline/internal/table"
	"github.com/animus-labs/animus-baseline/internal/trainer"
)

const maxClaimAttempts = 100

// Materializer owns the models/runs tree. Every write lands atomically.
type Materializer struct {
	fs     afero.Fs
	root   string
	logger *slog.Logger
}

func NewMaterializer(fs afero.Fs, root string, logger *slog.Logger) *Materializer {
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(os.Stderr, nil))
	}
	return &Materializer{fs: fs, root: root, logger: logger}
}

func (m *Materializer) Root() string { return m.root }

// Create claims a fresh directory for run. The directory itself is created
// exclusively; when run.ID is taken the id gets a -2, -3, ... suffix. The
// returned run carries the final id and directory.
func (m *Materializer) Create(run domain.Run) (domain.Run, error) {
	if err := m.fs.MkdirAll(m.root, 0o755); err != nil {
		return domain.Run{}, fmt.Errorf("create runs root: %w", err)
	}
	base := run.ID
	for attempt := 1; attempt <= maxClaimAttempts; attempt++ {
		id := base
		if attempt > 1 {
			id = fmt.Sprintf("%s-%d", base, attempt)
		}
		dir := filepath.Join(m.root, id)
		err := m.fs.Mkdir(dir, 0o755)
		if errors.Is(err, os.ErrExist) {
			continue
		}
		if err != nil {
			return domain.Run{}, fmt.Errorf("create run dir: %w", err)
		}
		for _, sub := range Subdirs(run.Mode) {
			if err := m.fs.MkdirAll(filepath.Join(dir, sub), 0o755); err != nil {
				return domain.Run{}, fmt.Errorf("create %s: %w", sub, err)
			}
		}
		run.ID = id
		run.Dir = dir
		if err := run.Validate(); err != nil {
			return domain.Run{}, err
		}
		return run, nil
	}
	return domain.Run{}, fmt.Errorf("run id %s: %d directories already taken", base, maxClaimAttempts)
}

func (m *Materializer) WriteSchema(run domain.Run, contract domain.SchemaContract) (Artifact, error) {
	return m.writeJSON(run, "schema/schema.json", contract)
}

// WriteEnvironment writes env/environment.json and env/dependencies.txt.
func (m *Materializer) WriteEnvironment(run domain.Run, snap envcapture.Snapshot) ([]Artifact, error) {
	envJSON, err := m.writeJSON(run, "env/environment.json", snap)
	if err != nil {
		return nil, err
	}
	deps, err := m.write(run, "env/dependencies.txt", []byte(snap.DependencyListing()))
	if err != nil {
		return nil, err
	}
	return []Artifact{envJSON, deps}, nil
}

// WriteMetrics writes metrics/<name>.json.
func (m *Materializer) WriteMetrics(run domain.Run, name string, metrics any) (Artifact, error) {
	return m.writeJSON(run, path.Join("metrics", name+".json"), metrics)
}

func (m *Materializer) WriteModel(run domain.Run, model *trainer.Model) (Artifact, error) {
	if model == nil {
		return Artifact{}, errors.New("model is required")
	}
	var buf bytes.Buffer
	if err := model.Save(&buf); err != nil {
		return Artifact{}, err
	}
	return m.write(run, "model/model.gob", buf.Bytes())
}

// WriteTable writes tables/<name>.csv.
func (m *Materializer) WriteTable(run domain.Run, name string, t *table.Table) (Artifact, error) {
	var buf bytes.Buffer
	if err := table.WriteCSV(&buf, t); err != nil {
		return Artifact{}, err
	}
	return m.write(run, path.Join("tables", name+".csv"), buf.Bytes())
}

// WriteManifest stamps the integrity digest and writes run.json.
func (m *Materializer) WriteManifest(run domain.Run, manifest Manifest) (Manifest, error) {
	manifest.Schema = ManifestSchema
	sum, err := ComputeIntegritySHA256(manifest)
	if err != nil {
		return Manifest{}, err
	}
	manifest.IntegritySHA256 = sum
	if _, err := m.writeJSON(run, manifestFile, manifest); err != nil {
		return Manifest{}, err
	}
	return manifest, nil
}

// ReadManifest loads run.json from the run named id.
func (m *Materializer) ReadManifest(id string) (Manifest, error) {
	raw, err := afero.ReadFile(m.fs, filepath.Join(m.root, id, manifestFile))
	if err != nil {
		return Manifest{}, fmt.Errorf("read manifest: %w", err)
	}
	var manifest Manifest
	if err := json.Unmarshal(raw, &manifest); err != nil {
		return Manifest{}, fmt.Errorf("decode manifest: %w", err)
	}
	return manifest, nil
}

func (m *Materializer) writeJSON(run domain.Run, rel string, v any) (Artifact, error) {
	blob, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return Artifact{}, fmt.Errorf("marshal %s: %w", rel, err)
	}
	return m.write(run, rel, append(blob, '\n'))
}

func (m *Materializer) write(run domain.Run, rel string, data []byte) (Artifact, error) {
	if run.Dir == "" {
		return Artifact{}, errors.New("run dir is required")
	}
	if err := writeAtomic(m.fs, filepath.Join(run.Dir, filepath.FromSlash(rel)), data); err != nil {
		return Artifact{}, err
	}
	sum := sha256.Sum256(data)
	m.logger.Debug("artifact written",
		"run_id", run.ID,
		"path", rel,
		"size", humanize.Bytes(uint64(len(data))),
	)
	return Artifact{
		Path:      rel,
		SHA256:    hex.EncodeToString(sum[:]),
		SizeBytes: int64(len(data)),
	}, nil
}
