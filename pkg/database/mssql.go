package database

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/microsoft/go-mssqldb" // SQL Server driver

	"github.com/ekaya-inc/ekaya-normalize/pkg/models"
)

func init() {
	Register(StoreRegistration{
		Info: StoreInfo{
			Type:        "sqlserver",
			DisplayName: "Microsoft SQL Server",
			Schemes:     []string{"sqlserver", "mssql"},
		},
		Factory: NewSQLServerStore,
	})
}

// NewSQLServerStore opens a SQL Server database from a sqlserver:// URL.
// The mssql:// alias is rewritten to the driver's scheme.
func NewSQLServerStore(ctx context.Context, cfg *Config) (Store, error) {
	dsn := cfg.URL
	if Scheme(dsn) == "mssql" {
		_, rest, _ := strings.Cut(dsn, "://")
		dsn = "sqlserver://" + rest
	}

	db, err := sql.Open("sqlserver", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlserver: %w", err)
	}
	if cfg.MaxConnections > 0 {
		db.SetMaxOpenConns(int(cfg.MaxConnections))
	}
	if cfg.MaxConnLifetime > 0 {
		db.SetConnMaxLifetime(cfg.MaxConnLifetime)
	}
	if cfg.MaxConnIdleTime > 0 {
		db.SetConnMaxIdleTime(cfg.MaxConnIdleTime)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlserver: %w", err)
	}
	return NewSQLStore(db, sqlServerDialect{}), nil
}

type sqlServerDialect struct{}

func (sqlServerDialect) Name() string { return "sqlserver" }

func (sqlServerDialect) QuoteIdentifier(name string) string {
	return "[" + strings.ReplaceAll(name, "]", "]]") + "]"
}

func (sqlServerDialect) Placeholder(n int) string { return "@p" + strconv.Itoa(n) }

// ColumnType uses a bounded NVARCHAR for unique columns; index keys are limited to 900 bytes.
func (sqlServerDialect) ColumnType(t models.ColumnType, unique bool) string {
	switch t {
	case models.ColumnReal:
		return "FLOAT"
	case models.ColumnInteger:
		return "INT"
	case models.ColumnDate:
		return "DATE"
	default:
		if unique {
			return "NVARCHAR(450)"
		}
		return "NVARCHAR(MAX)"
	}
}

func (d sqlServerDialect) PrimaryKeyColumn(name string) string {
	return d.QuoteIdentifier(name) + " INT IDENTITY(1,1) PRIMARY KEY"
}

func (d sqlServerDialect) DropTable(table string) string {
	return "DROP TABLE IF EXISTS " + d.QuoteIdentifier(table)
}

func (sqlServerDialect) DropCascades() bool { return false }

// MaxBindParams stays below the 2100 parameter limit of an RPC request.
func (sqlServerDialect) MaxBindParams() int { return 2000 }

// MaxRowsPerInsert is the table value constructor limit.
func (sqlServerDialect) MaxRowsPerInsert() int { return 1000 }

func (sqlServerDialect) BindDate(t time.Time) any { return t }
