package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iddaa-lens/laundry/pkg/database"
	"github.com/iddaa-lens/laundry/pkg/database/pool"
	"github.com/iddaa-lens/laundry/pkg/logger"
	"github.com/iddaa-lens/laundry/pkg/models"
)

const postgresSchema = `CREATE TABLE IF NOT EXISTS laundry_jobs (
	name     TEXT    PRIMARY KEY,
	position INTEGER NOT NULL,
	data     JSONB   NOT NULL
)`

// TxBeginner is a DBTX that can open transactions; *pgxpool.Pool and *pgx.Conn qualify
type TxBeginner interface {
	database.DBTX
	Begin(ctx context.Context) (pgx.Tx, error)
}

// PostgresStore keeps one JSONB row per job
type PostgresStore struct {
	db     TxBeginner
	pool   *pgxpool.Pool
	logger *logger.Logger
}

// OpenPostgres connects a pool and creates the table
func OpenPostgres(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	p, err := pool.New(ctx, databaseURL, nil)
	if err != nil {
		return nil, err
	}

	s, err := NewPostgresStore(ctx, p)
	if err != nil {
		p.Close()
		return nil, err
	}
	s.pool = p
	return s, nil
}

// NewPostgresStore uses an existing connection and creates the table if needed
func NewPostgresStore(ctx context.Context, db TxBeginner) (*PostgresStore, error) {
	if _, err := db.Exec(ctx, postgresSchema); err != nil {
		return nil, fmt.Errorf("postgres: create laundry_jobs: %w", err)
	}
	return &PostgresStore{db: db, logger: logger.New("job_store")}, nil
}

// Pool returns the underlying pool when the store opened one
func (s *PostgresStore) Pool() *pgxpool.Pool {
	return s.pool
}

func (s *PostgresStore) Load(ctx context.Context) ([]*models.Job, error) {
	rows, err := s.db.Query(ctx, "SELECT data FROM laundry_jobs ORDER BY position")
	if err != nil {
		return nil, fmt.Errorf("postgres: load jobs: %w", err)
	}
	defer rows.Close()

	var jobs []*models.Job
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("postgres: scan job: %w", err)
		}
		job, err := decodeJob(data)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

// Save replaces every row inside one transaction
func (s *PostgresStore) Save(ctx context.Context, jobs []*models.Job) error {
	start := time.Now()
	err := s.replace(ctx, jobs)
	s.logger.LogDatabaseOperation("replace", "laundry_jobs", len(jobs), time.Since(start), err)
	return err
}

func (s *PostgresStore) replace(ctx context.Context, jobs []*models.Job) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("postgres: begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, "DELETE FROM laundry_jobs"); err != nil {
		return fmt.Errorf("postgres: clear jobs: %w", err)
	}

	batch := &pgx.Batch{}
	for i, job := range jobs {
		data, err := encodeJob(job)
		if err != nil {
			return err
		}
		batch.Queue("INSERT INTO laundry_jobs (name, position, data) VALUES ($1, $2, $3)", job.Name, i, data)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("postgres: insert jobs: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("postgres: commit: %w", err)
	}
	return nil
}

func (s *PostgresStore) Close() error {
	if s.pool != nil {
		s.pool.Close()
	}
	return nil
}
