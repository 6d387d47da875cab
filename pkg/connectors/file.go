package connectors

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/afero"

	"github.com/iddaa-lens/laundry/pkg/models"
	"github.com/iddaa-lens/laundry/pkg/utils"
)

const (
	FileTypeID     = "File"
	FileJSONTypeID = "File.JSON"
)

// FileFamily is the abstract parent of the file connectors. Its dir setting is
// shared between file inputs and outputs of related jobs.
type FileFamily struct {
	base
	defaultDir string
}

func NewFileFamily(homeDir string) *FileFamily {
	return &FileFamily{
		base:       base{id: FileTypeID, name: "File"},
		defaultDir: filepath.Join(homeDir, "files"),
	}
}

func (f *FileFamily) settings() []Setting {
	return []Setting{
		{
			Name:   "dir",
			Prompt: "Which directory holds the files?",
			Before: SuggestDefault("dir", f.defaultDir),
			After:  RequireNonBlank,
		},
	}
}

func (f *FileFamily) Input() Capability {
	return Capability{Description: "Reads local files.", Settings: f.settings()}
}

func (f *FileFamily) Output() Capability {
	return Capability{Description: "Writes local files.", Settings: f.settings()}
}

// FileJSON reads items from a JSON file and writes each run's items to a new
// timestamped file under <dir>/<job>/
type FileJSON struct {
	base
	fs  afero.Fs
	now func() time.Time
}

func NewFileJSON(fs afero.Fs) *FileJSON {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &FileJSON{
		base: base{id: FileJSONTypeID, parent: FileTypeID, name: "File/JSON"},
		fs:   fs,
		now:  time.Now,
	}
}

func (f *FileJSON) Input() Capability {
	return Capability{
		Description: "Loads items from a JSON file.",
		Settings: []Setting{
			{Name: "path", Prompt: "Which file, relative to the directory, holds the items?", After: RequireNonBlank},
		},
	}
}

func (f *FileJSON) Output() Capability {
	return Capability{Description: "Saves each run's items as a JSON file."}
}

func (f *FileJSON) Fetch(_ context.Context, cfg Config) ([]models.Item, error) {
	path := filepath.Join(cfg.Settings.String("dir"), cfg.Settings.String("path"))
	data, err := afero.ReadFile(f.fs, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return DecodeItems(data)
}

func (f *FileJSON) Push(_ context.Context, items []models.Item, cfg Config) error {
	dir := f.jobDir(cfg)
	if err := f.fs.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}

	if items == nil {
		items = []models.Item{}
	}
	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode items: %w", err)
	}

	name := f.now().UTC().Format("20060102T150405.000000000Z") + ".json"
	path := filepath.Join(dir, name)
	if err := afero.WriteFile(f.fs, path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// RemoveArtifacts deletes every file written for the job
func (f *FileJSON) RemoveArtifacts(_ context.Context, cfg Config) error {
	dir := f.jobDir(cfg)
	if err := f.fs.RemoveAll(dir); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove %s: %w", dir, err)
	}
	return nil
}

func (f *FileJSON) jobDir(cfg Config) string {
	return filepath.Join(cfg.Settings.String("dir"), utils.BuildPrefix(cfg.Job))
}
