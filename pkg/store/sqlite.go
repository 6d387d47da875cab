package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/iddaa-lens/laundry/pkg/models"

	_ "modernc.org/sqlite" // SQLite driver registration
)

const (
	sqliteSchemaVersion = 1
	sqliteBusyTimeoutMs = 5000
)

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS jobs (
		name     TEXT    PRIMARY KEY,
		position INTEGER NOT NULL,
		data     TEXT    NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_jobs_position ON jobs(position)`,
}

// SQLiteStore keeps one row per job, ordered by position
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (and creates) the database at path with WAL enabled and a
// single connection, then migrates the schema
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("sqlite: create directory %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: enable WAL: %w", err)
	}
	if _, err := db.ExecContext(ctx, fmt.Sprintf("PRAGMA busy_timeout=%d", sqliteBusyTimeoutMs)); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: set busy_timeout: %w", err)
	}
	if err := migrateSQLite(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &SQLiteStore{db: db}, nil
}

func migrateSQLite(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, "CREATE TABLE IF NOT EXISTS schema_version (version INTEGER PRIMARY KEY)"); err != nil {
		return fmt.Errorf("sqlite: create schema_version: %w", err)
	}

	var current int
	if err := db.QueryRowContext(ctx, "SELECT COALESCE(MAX(version), 0) FROM schema_version").Scan(&current); err != nil {
		return fmt.Errorf("sqlite: read schema version: %w", err)
	}
	if current >= sqliteSchemaVersion {
		return nil
	}

	for _, stmt := range sqliteSchema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("sqlite: migrate: %w\nstatement: %s", err, stmt)
		}
	}
	if _, err := db.ExecContext(ctx, "INSERT OR REPLACE INTO schema_version (version) VALUES (?)", sqliteSchemaVersion); err != nil {
		return fmt.Errorf("sqlite: record schema version: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Load(ctx context.Context) ([]*models.Job, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT data FROM jobs ORDER BY position")
	if err != nil {
		return nil, fmt.Errorf("sqlite: load jobs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var jobs []*models.Job
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("sqlite: scan job: %w", err)
		}
		job, err := decodeJob([]byte(data))
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

// Save replaces every row inside one transaction
func (s *SQLiteStore) Save(ctx context.Context, jobs []*models.Job) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM jobs"); err != nil {
		return fmt.Errorf("sqlite: clear jobs: %w", err)
	}
	for i, job := range jobs {
		data, err := encodeJob(job)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, "INSERT INTO jobs (name, position, data) VALUES (?, ?, ?)", job.Name, i, string(data)); err != nil {
			return fmt.Errorf("sqlite: insert job %s: %w", job.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: commit: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
