package database

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ekaya-inc/ekaya-normalize/pkg/models"
)

func init() {
	Register(StoreRegistration{
		Info: StoreInfo{
			Type:        "postgres",
			DisplayName: "PostgreSQL",
			Schemes:     []string{"postgres", "postgresql"},
		},
		Factory: func(ctx context.Context, cfg *Config) (Store, error) {
			db, err := NewConnection(ctx, cfg)
			if err != nil {
				return nil, err
			}
			return db, nil
		},
	})
}

// DB wraps a pgxpool connection pool.
type DB struct {
	*pgxpool.Pool
}

// NewConnection creates a new database connection pool.
func NewConnection(ctx context.Context, cfg *Config) (*DB, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	poolConfig.MaxConns = cfg.MaxConnections
	if poolConfig.MaxConns == 0 {
		poolConfig.MaxConns = 4
	}

	poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	if poolConfig.MaxConnLifetime == 0 {
		poolConfig.MaxConnLifetime = time.Hour
	}

	poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime
	if poolConfig.MaxConnIdleTime == 0 {
		poolConfig.MaxConnIdleTime = time.Minute * 30
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{Pool: pool}, nil
}

func (db *DB) Dialect() Dialect { return postgresDialect{} }

func (db *DB) Begin(ctx context.Context) (Tx, error) {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	return &pgTx{tx: tx}, nil
}

// Close closes the connection pool.
func (db *DB) Close() error {
	db.Pool.Close()
	return nil
}

type pgTx struct {
	tx pgx.Tx
}

func (t *pgTx) Exec(ctx context.Context, query string, args ...any) (int64, error) {
	tag, err := t.tx.Exec(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (t *pgTx) Query(ctx context.Context, query string, args []any, scan func(Row) error) error {
	rows, err := t.tx.Query(ctx, query, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		if err := scan(rows); err != nil {
			return err
		}
	}
	return rows.Err()
}

func (t *pgTx) Commit(ctx context.Context) error   { return t.tx.Commit(ctx) }
func (t *pgTx) Rollback(ctx context.Context) error { return t.tx.Rollback(ctx) }

type postgresDialect struct{}

func (postgresDialect) Name() string { return "postgres" }

func (postgresDialect) QuoteIdentifier(name string) string {
	return pgx.Identifier{name}.Sanitize()
}

func (postgresDialect) Placeholder(n int) string { return "$" + strconv.Itoa(n) }

func (postgresDialect) ColumnType(t models.ColumnType, unique bool) string {
	switch t {
	case models.ColumnReal:
		return "DOUBLE PRECISION"
	case models.ColumnInteger:
		return "INTEGER"
	case models.ColumnDate:
		return "DATE"
	default:
		return "VARCHAR"
	}
}

func (d postgresDialect) PrimaryKeyColumn(name string) string {
	return d.QuoteIdentifier(name) + " SERIAL PRIMARY KEY"
}

func (d postgresDialect) DropTable(table string) string {
	return "DROP TABLE IF EXISTS " + d.QuoteIdentifier(table) + " CASCADE"
}

func (postgresDialect) DropCascades() bool { return true }

// MaxBindParams is the wire protocol limit of 65535 parameters per statement.
func (postgresDialect) MaxBindParams() int { return 65535 }

func (postgresDialect) MaxRowsPerInsert() int { return 0 }

func (postgresDialect) BindDate(t time.Time) any { return t }
