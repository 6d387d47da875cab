package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/iddaa-lens/laundry/pkg/models"
)

// document is the on-disk layout of the file store
type document struct {
	Jobs []*models.Job `yaml:"jobs"`
}

// FileStore keeps jobs in a single YAML file
type FileStore struct {
	fs   afero.Fs
	path string
}

func NewFileStore(fs afero.Fs, path string) *FileStore {
	return &FileStore{fs: fs, path: path}
}

// Load returns no jobs when the file does not exist yet
func (f *FileStore) Load(_ context.Context) ([]*models.Job, error) {
	data, err := afero.ReadFile(f.fs, f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", f.path, err)
	}

	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", f.path, err)
	}

	jobs := doc.Jobs[:0]
	for _, job := range doc.Jobs {
		if job != nil {
			jobs = append(jobs, job)
		}
	}
	return jobs, nil
}

// Save writes to a temporary file and renames it over the old one
func (f *FileStore) Save(_ context.Context, jobs []*models.Job) error {
	if jobs == nil {
		jobs = []*models.Job{}
	}
	data, err := yaml.Marshal(document{Jobs: jobs})
	if err != nil {
		return fmt.Errorf("failed to encode jobs: %w", err)
	}

	if err := f.fs.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return fmt.Errorf("failed to create %s: %w", filepath.Dir(f.path), err)
	}

	tmp := f.path + ".tmp"
	if err := afero.WriteFile(f.fs, tmp, data, 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %w", tmp, err)
	}
	if err := f.fs.Rename(tmp, f.path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", f.path, err)
	}
	return nil
}

func (f *FileStore) Close() error { return nil }
