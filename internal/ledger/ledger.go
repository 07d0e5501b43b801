// Package ledger records finished runs in Postgres. Each row carries the
// run manifest and an integrity digest over the recorded fields.
package ledger

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/animus-labs/animus-baseline/internal/runs"
)

const SchemaSQL = `CREATE TABLE IF NOT EXISTS baseline_runs (
	ledger_id BIGSERIAL PRIMARY KEY,
	run_id TEXT NOT NULL UNIQUE,
	run_uuid TEXT NOT NULL,
	tag TEXT NOT NULL,
	seed BIGINT NOT NULL,
	mode TEXT NOT NULL,
	target TEXT NOT NULL,
	features_path TEXT NOT NULL,
	accuracy DOUBLE PRECISION NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	manifest JSONB NOT NULL,
	manifest_sha256 TEXT NOT NULL,
	integrity_sha256 TEXT NOT NULL
)`

type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

type QueryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// DB is satisfied by *sql.DB.
type DB interface {
	Execer
	QueryRower
}

// Entry is one ledger row.
type Entry struct {
	RunID          string
	RunUUID        string
	Tag            string
	Seed           int64
	Mode           string
	Target         string
	FeaturesPath   string
	Accuracy       float64
	CreatedAt      time.Time
	ManifestSHA256 string
}

func EntryFromManifest(m runs.Manifest) Entry {
	return Entry{
		RunID:          m.RunID,
		RunUUID:        m.RunUUID,
		Tag:            m.Tag,
		Seed:           m.Seed,
		Mode:           string(m.Mode),
		Target:         m.Config.Target,
		FeaturesPath:   m.FeaturesPath,
		Accuracy:       m.Metrics["accuracy"],
		CreatedAt:      m.CreatedAt,
		ManifestSHA256: m.IntegritySHA256,
	}
}

func (e Entry) Validate() error {
	if strings.TrimSpace(e.RunID) == "" {
		return errors.New("RunID is required")
	}
	if strings.TrimSpace(e.ManifestSHA256) == "" {
		return errors.New("ManifestSHA256 is required")
	}
	if e.CreatedAt.IsZero() {
		return errors.New("CreatedAt is required")
	}
	return nil
}

type Store struct {
	db DB
}

func NewStore(db DB) *Store {
	if db == nil {
		return nil
	}
	return &Store{db: db}
}

func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, SchemaSQL); err != nil {
		return fmt.Errorf("create ledger table: %w", err)
	}
	return nil
}

// Record inserts the manifest. Recording the same run twice is a no-op.
func (s *Store) Record(ctx context.Context, m runs.Manifest) error {
	_, err := s.Insert(ctx, m)
	return err
}

// Insert returns the ledger id of the new row, or 0 when the run was already
// recorded.
func (s *Store) Insert(ctx context.Context, m runs.Manifest) (int64, error) {
	entry := EntryFromManifest(m)
	if err := entry.Validate(); err != nil {
		return 0, err
	}
	manifestJSON, err := json.Marshal(m)
	if err != nil {
		return 0, fmt.Errorf("marshal manifest: %w", err)
	}
	integrity, err := ComputeIntegritySHA256(entry, manifestJSON)
	if err != nil {
		return 0, err
	}

	var id int64
	err = s.db.QueryRowContext(
		ctx,
		`INSERT INTO baseline_runs (
			run_id,
			run_uuid,
			tag,
			seed,
			mode,
			target,
			features_path,
			accuracy,
			created_at,
			manifest,
			manifest_sha256,
			integrity_sha256
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
		ON CONFLICT (run_id) DO NOTHING
		RETURNING ledger_id`,
		entry.RunID,
		entry.RunUUID,
		entry.Tag,
		entry.Seed,
		entry.Mode,
		entry.Target,
		entry.FeaturesPath,
		entry.Accuracy,
		entry.CreatedAt.UTC(),
		manifestJSON,
		entry.ManifestSHA256,
		integrity,
	).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("insert ledger entry: %w", err)
	}
	return id, nil
}

func ComputeIntegritySHA256(e Entry, manifestJSON []byte) (string, error) {
	type integrityInput struct {
		RunID          string          `json:"run_id"`
		RunUUID        string          `json:"run_uuid"`
		Tag            string          `json:"tag"`
		Seed           int64           `json:"seed"`
		Mode           string          `json:"mode"`
		Target         string          `json:"target"`
		FeaturesPath   string          `json:"features_path"`
		Accuracy       float64         `json:"accuracy"`
		CreatedAt      time.Time       `json:"created_at"`
		ManifestSHA256 string          `json:"manifest_sha256"`
		Manifest       json.RawMessage `json:"manifest"`
	}
	blob, err := json.Marshal(integrityInput{
		RunID:          strings.TrimSpace(e.RunID),
		RunUUID:        strings.TrimSpace(e.RunUUID),
		Tag:            strings.TrimSpace(e.Tag),
		Seed:           e.Seed,
		Mode:           strings.TrimSpace(e.Mode),
		Target:         strings.TrimSpace(e.Target),
		FeaturesPath:   strings.TrimSpace(e.FeaturesPath),
		Accuracy:       e.Accuracy,
		CreatedAt:      e.CreatedAt.UTC(),
		ManifestSHA256: strings.TrimSpace(e.ManifestSHA256),
		Manifest:       manifestJSON,
	})
	if err != nil {
		return "", fmt.Errorf("marshal integrity: %w", err)
	}
	sum := sha256.Sum256(blob)
	return hex.EncodeToString(sum[:]), nil
}
