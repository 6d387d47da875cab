package connectors

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/iddaa-lens/laundry/pkg/database"
	"github.com/iddaa-lens/laundry/pkg/logger"
	"github.com/iddaa-lens/laundry/pkg/models"
)

const (
	PostgresTypeID      = "Postgres"
	PostgresTableTypeID = "Postgres.Table"
)

// PostgresFamily is the abstract parent of the PostgreSQL connectors
type PostgresFamily struct{ base }

func NewPostgresFamily() *PostgresFamily {
	return &PostgresFamily{base{id: PostgresTypeID, name: "PostgreSQL"}}
}

func (p *PostgresFamily) Output() Capability {
	return Capability{
		Description: "Writes to a PostgreSQL database.",
		Settings: []Setting{
			{Name: "databaseURL", Prompt: "What is the connection URL of the database?", After: RequireNonBlank},
		},
	}
}

// PostgresTable upserts every item as a JSONB row keyed by (job, item_id)
type PostgresTable struct {
	base
	connect database.Connector
	logger  *logger.Logger
}

func NewPostgresTable(connect database.Connector) *PostgresTable {
	if connect == nil {
		connect = database.Connect
	}
	return &PostgresTable{
		base:    base{id: PostgresTableTypeID, parent: PostgresTypeID, name: "PostgreSQL/Table"},
		connect: connect,
		logger:  logger.New("postgres_table"),
	}
}

func (p *PostgresTable) Output() Capability {
	return Capability{
		Description: "Upserts items into a table, one JSONB row per item.",
		Settings: []Setting{
			{Name: "table", Prompt: "Which table should hold the items?", Before: SuggestDefault("table", "laundry_items"), After: RequireIdentifier},
		},
	}
}

func (p *PostgresTable) Push(ctx context.Context, items []models.Item, cfg Config) error {
	conn, err := p.connect(ctx, cfg.Settings.String("databaseURL"))
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() { _ = conn.Close(context.Background()) }()

	table := pgx.Identifier{cfg.Settings.String("table")}.Sanitize()
	create := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		job TEXT NOT NULL,
		item_id TEXT NOT NULL,
		payload JSONB NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL,
		PRIMARY KEY (job, item_id)
	)`, table)
	if _, err := conn.Exec(ctx, create); err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}

	start := time.Now()
	written, err := upsertItems(ctx, conn, table, cfg.Job, items)
	p.logger.LogDatabaseOperation("upsert", cfg.Settings.String("table"), written, time.Since(start), err)
	return err
}

func upsertItems(ctx context.Context, db database.DBTX, table, job string, items []models.Item) (int, error) {
	upsert := fmt.Sprintf(`INSERT INTO %s (job, item_id, payload, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (job, item_id) DO UPDATE SET payload = EXCLUDED.payload, updated_at = EXCLUDED.updated_at`, table)

	now := time.Now().UTC()
	for i, item := range items {
		payload, err := json.Marshal(item)
		if err != nil {
			return i, fmt.Errorf("failed to encode item %s: %w", item.ID, err)
		}
		if _, err := db.Exec(ctx, upsert, job, item.ID, payload, now); err != nil {
			return i, fmt.Errorf("failed to upsert item %s: %w", item.ID, err)
		}
	}
	return len(items), nil
}

// RemoveArtifacts deletes the job's rows
func (p *PostgresTable) RemoveArtifacts(ctx context.Context, cfg Config) error {
	if !cfg.Settings.Has("table") {
		return nil
	}
	conn, err := p.connect(ctx, cfg.Settings.String("databaseURL"))
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() { _ = conn.Close(context.Background()) }()

	table := pgx.Identifier{cfg.Settings.String("table")}.Sanitize()
	if _, err := conn.Exec(ctx, fmt.Sprintf("DELETE FROM %s WHERE job = $1", table), cfg.Job); err != nil {
		return fmt.Errorf("failed to delete rows: %w", err)
	}
	return nil
}
