package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ekaya-inc/ekaya-normalize/pkg/models"
)

// Dialect renders the backend-specific pieces of SQL the pipeline needs.
type Dialect interface {
	// Name returns the store type, e.g. "postgres".
	Name() string

	// QuoteIdentifier safely quotes a table or column name.
	QuoteIdentifier(name string) string

	// Placeholder returns the bind parameter for 1-based position n.
	Placeholder(n int) string

	// ColumnType returns the column type used for t in CREATE TABLE.
	ColumnType(t models.ColumnType, unique bool) string

	// PrimaryKeyColumn returns the auto-incrementing surrogate key definition.
	PrimaryKeyColumn(name string) string

	// DropTable returns a statement dropping table if it exists.
	DropTable(table string) string

	// DropCascades reports whether DropTable also removes referencing constraints.
	// When false, dependents must be dropped first.
	DropCascades() bool

	// MaxBindParams is the most bind parameters one statement may carry.
	MaxBindParams() int

	// MaxRowsPerInsert caps the rows of one multi-row INSERT; 0 means no cap.
	MaxRowsPerInsert() int

	// BindDate converts a calendar date to the driver value for a date column.
	BindDate(t time.Time) any
}

// CreateTableSQL renders CREATE TABLE for table.
func CreateTableSQL(d Dialect, table models.Table) string {
	defs := []string{d.PrimaryKeyColumn(table.PrimaryKey)}
	var fks []string
	for _, c := range table.Columns {
		def := d.QuoteIdentifier(c.Name) + " " + d.ColumnType(c.Type, c.Unique) + " NOT NULL"
		if c.Unique {
			def += " UNIQUE"
		}
		defs = append(defs, def)

		if c.References != "" {
			parent, ok := models.TableByName(c.References)
			if !ok {
				panic(fmt.Sprintf("table %s references unknown table %s", table.Name, c.References))
			}
			fks = append(fks, fmt.Sprintf("FOREIGN KEY (%s) REFERENCES %s (%s)",
				d.QuoteIdentifier(c.Name), d.QuoteIdentifier(parent.Name), d.QuoteIdentifier(parent.PrimaryKey)))
		}
	}
	defs = append(defs, fks...)

	return fmt.Sprintf("CREATE TABLE %s (\n\t%s\n)", d.QuoteIdentifier(table.Name), strings.Join(defs, ",\n\t"))
}

// DropTableSQL returns the statements that remove table, dropping
// dependents first when the dialect cannot cascade.
func DropTableSQL(d Dialect, table models.Table) []string {
	if d.DropCascades() {
		return []string{d.DropTable(table.Name)}
	}
	var stmts []string
	for _, dep := range models.Dependents(table.Name) {
		stmts = append(stmts, d.DropTable(dep))
	}
	return append(stmts, d.DropTable(table.Name))
}

// EnsureTable drops and recreates table inside tx.
func EnsureTable(ctx context.Context, tx Tx, d Dialect, table models.Table) error {
	for _, stmt := range DropTableSQL(d, table) {
		if _, err := tx.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("drop table %s: %w", table.Name, err)
		}
	}
	if _, err := tx.Exec(ctx, CreateTableSQL(d, table)); err != nil {
		return fmt.Errorf("create table %s: %w", table.Name, err)
	}
	return nil
}

// SelectSQL renders SELECT of columns from table ordered by its primary key.
func SelectSQL(d Dialect, table models.Table, columns ...string) string {
	quoted := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = d.QuoteIdentifier(c)
	}
	return fmt.Sprintf("SELECT %s FROM %s ORDER BY %s",
		strings.Join(quoted, ", "), d.QuoteIdentifier(table.Name), d.QuoteIdentifier(table.PrimaryKey))
}
