package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite" // pure go sqlite driver

	"github.com/ekaya-inc/ekaya-normalize/pkg/models"
)

func init() {
	Register(StoreRegistration{
		Info: StoreInfo{
			Type:        "sqlite",
			DisplayName: "SQLite",
			Schemes:     []string{"sqlite"},
		},
		Factory: func(ctx context.Context, cfg *Config) (Store, error) {
			_, path, _ := strings.Cut(cfg.URL, "://")
			return NewSQLiteStore(ctx, path)
		},
	})
}

// NewSQLiteStore opens the SQLite database at path with foreign keys enforced.
func NewSQLiteStore(ctx context.Context, path string) (*SQLStore, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}
	dsn := path
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	dsn += sep + "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// SQLite serializes writers; one connection keeps a stage's transaction alone.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	return NewSQLStore(db, sqliteDialect{}), nil
}

type sqliteDialect struct{}

func (sqliteDialect) Name() string { return "sqlite" }

func (sqliteDialect) QuoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func (sqliteDialect) Placeholder(int) string { return "?" }

// ColumnType stores dates as ISO text so they read back as written.
func (sqliteDialect) ColumnType(t models.ColumnType, unique bool) string {
	switch t {
	case models.ColumnReal:
		return "REAL"
	case models.ColumnInteger:
		return "INTEGER"
	default:
		return "TEXT"
	}
}

func (d sqliteDialect) PrimaryKeyColumn(name string) string {
	return d.QuoteIdentifier(name) + " INTEGER PRIMARY KEY AUTOINCREMENT"
}

func (d sqliteDialect) DropTable(table string) string {
	return "DROP TABLE IF EXISTS " + d.QuoteIdentifier(table)
}

func (sqliteDialect) DropCascades() bool { return false }

// MaxBindParams matches SQLITE_MAX_VARIABLE_NUMBER since 3.32.
func (sqliteDialect) MaxBindParams() int { return 32766 }

func (sqliteDialect) MaxRowsPerInsert() int { return 0 }

func (sqliteDialect) BindDate(t time.Time) any { return t.Format(time.DateOnly) }
