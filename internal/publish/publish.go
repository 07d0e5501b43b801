// Package publish mirrors finished run directories into an object store.
package publish

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/animus-labs/animus-baseline/internal/domain"
	"github.com/animus-labs/animus-baseline/internal/storage/objectstore"
)

type Publisher struct {
	store  objectstore.Store
	bucket string
	prefix string
	logger *slog.Logger
}

func New(store objectstore.Store, bucket, prefix string, logger *slog.Logger) (*Publisher, error) {
	if store == nil {
		return nil, errors.New("object store is required")
	}
	if strings.TrimSpace(bucket) == "" {
		return nil, errors.New("bucket is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{
		store:  store,
		bucket: bucket,
		prefix: strings.Trim(prefix, "/"),
		logger: logger,
	}, nil
}

// Key returns the object key of a file inside a run directory.
func (p *Publisher) Key(runID, rel string) string {
	key := path.Join(runID, filepath.ToSlash(rel))
	if p.prefix == "" {
		return key
	}
	return p.prefix + "/" + key
}

// Publish uploads every regular file under run.Dir and checks each object's
// size after upload. It returns the number of objects written.
func (p *Publisher) Publish(ctx context.Context, fsys afero.Fs, run domain.Run) (int, error) {
	if err := run.Validate(); err != nil {
		return 0, err
	}
	count := 0
	err := afero.Walk(fsys, run.Dir, func(name string, info fs.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		rel, err := filepath.Rel(run.Dir, name)
		if err != nil {
			return err
		}
		if err := p.upload(ctx, fsys, name, p.Key(run.ID, rel), info.Size()); err != nil {
			return err
		}
		count++
		return nil
	})
	if err != nil {
		return count, err
	}
	p.logger.Debug("run mirrored", "run_id", run.ID, "bucket", p.bucket, "objects", count)
	return count, nil
}

func (p *Publisher) upload(ctx context.Context, fsys afero.Fs, name, key string, size int64) error {
	f, err := fsys.Open(name)
	if err != nil {
		return fmt.Errorf("open %s: %w", name, err)
	}
	defer f.Close()

	if err := p.store.Put(ctx, p.bucket, key, f, size, ContentType(name)); err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	info, err := p.store.Stat(ctx, p.bucket, key)
	if err != nil {
		return fmt.Errorf("stat %s: %w", key, err)
	}
	if info.Size != size {
		return fmt.Errorf("object %s has %d bytes, want %d", key, info.Size, size)
	}
	return nil
}

func ContentType(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json":
		return "application/json"
	case ".csv":
		return "text/csv"
	case ".txt":
		return "text/plain; charset=utf-8"
	default:
		return "application/octet-stream"
	}
}
