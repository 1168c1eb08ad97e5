package database

import (
	"context"
	"fmt"
	"time"

	"github.com/ekaya-inc/ekaya-normalize/pkg/retry"
)

// Store is a connected relational target.
// Each implementation owns its connection and must be closed when done.
type Store interface {
	// Dialect renders SQL for this backend.
	Dialect() Dialect

	// Begin opens a transaction scope.
	Begin(ctx context.Context) (Tx, error)

	// Ping verifies the store is reachable.
	Ping(ctx context.Context) error

	// Close releases the connection.
	Close() error
}

// Tx is one transaction scope. It is not safe for concurrent use.
type Tx interface {
	// Exec runs a DDL or DML statement and returns the affected row count.
	Exec(ctx context.Context, query string, args ...any) (int64, error)

	// Query runs a statement and calls scan once per result row.
	Query(ctx context.Context, query string, args []any, scan func(Row) error) error

	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// Row is the current row of a result set. Both pgx.Rows and *sql.Rows satisfy it.
type Row interface {
	Scan(dest ...any) error
}

// Config holds database connection configuration.
type Config struct {
	URL             string
	MaxConnections  int32
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
	Retry           *retry.Config
}

// InTx runs fn inside a transaction, committing on success and rolling back on error.
func InTx(ctx context.Context, store Store, fn func(tx Tx) error) (err error) {
	tx, err := store.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}
	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
