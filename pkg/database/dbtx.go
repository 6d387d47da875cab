// Package database holds the PostgreSQL access contracts shared by the job
// store, the table connector and the advisory lock manager.
package database

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is satisfied by *pgx.Conn, *pgxpool.Pool and pgx.Tx
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

// Conn is a single closable connection
type Conn interface {
	DBTX
	Close(ctx context.Context) error
}

// Connector opens a connection for a database URL
type Connector func(ctx context.Context, databaseURL string) (Conn, error)

// Connect opens a plain pgx connection
func Connect(ctx context.Context, databaseURL string) (Conn, error) {
	conn, err := pgx.Connect(ctx, databaseURL)
	if err != nil {
		return nil, err
	}
	return conn, nil
}
