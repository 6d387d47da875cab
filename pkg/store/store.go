// Package store persists the ordered job collection. Every backend saves the
// whole collection at once; readers never see a partial write.
package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/afero"

	"github.com/iddaa-lens/laundry/pkg/models"
)

// Kinds of store
const (
	KindFile     = "file"
	KindSQLite   = "sqlite"
	KindPostgres = "postgres"
)

// Store loads and saves the ordered job collection
type Store interface {
	Load(ctx context.Context) ([]*models.Job, error)
	Save(ctx context.Context, jobs []*models.Job) error
	Close() error
}

// Options select and configure a backend
type Options struct {
	Kind        string
	Path        string
	DatabaseURL string
	Fs          afero.Fs
}

// Open creates the configured store
func Open(ctx context.Context, opts Options) (Store, error) {
	switch opts.Kind {
	case "", KindFile:
		fs := opts.Fs
		if fs == nil {
			fs = afero.NewOsFs()
		}
		return NewFileStore(fs, opts.Path), nil
	case KindSQLite:
		return OpenSQLite(ctx, opts.Path)
	case KindPostgres:
		return OpenPostgres(ctx, opts.DatabaseURL)
	default:
		return nil, fmt.Errorf("unknown store kind %q", opts.Kind)
	}
}

// encodeJob and decodeJob give the database backends one row format
func encodeJob(job *models.Job) ([]byte, error) {
	data, err := json.Marshal(job)
	if err != nil {
		return nil, fmt.Errorf("failed to encode job %s: %w", job.Name, err)
	}
	return data, nil
}

func decodeJob(data []byte) (*models.Job, error) {
	var job models.Job
	if err := json.Unmarshal(data, &job); err != nil {
		return nil, fmt.Errorf("failed to decode job: %w", err)
	}
	return &job, nil
}
