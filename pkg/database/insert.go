package database

import (
	"context"
	"fmt"
	"strings"

	"github.com/ekaya-inc/ekaya-normalize/pkg/models"
)

// DefaultPageSize is the number of rows grouped into one multi-row INSERT.
const DefaultPageSize = 5000

// InsertSQL renders a multi-row INSERT into table for rowCount rows of columns.
func InsertSQL(d Dialect, table models.Table, columns []string, rowCount int) string {
	var b strings.Builder
	b.WriteString("INSERT INTO ")
	b.WriteString(d.QuoteIdentifier(table.Name))
	b.WriteString(" (")
	for i, c := range columns {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(d.QuoteIdentifier(c))
	}
	b.WriteString(") VALUES ")

	n := 1
	for r := 0; r < rowCount; r++ {
		if r > 0 {
			b.WriteString(", ")
		}
		b.WriteByte('(')
		for c := range columns {
			if c > 0 {
				b.WriteString(", ")
			}
			b.WriteString(d.Placeholder(n))
			n++
		}
		b.WriteByte(')')
	}
	return b.String()
}

// RowsPerStatement returns how many rows of width columns fit into one
// INSERT given the requested page size and the dialect's limits.
func RowsPerStatement(d Dialect, columns, pageSize int) int {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	n := pageSize
	if columns > 0 {
		if byParams := d.MaxBindParams() / columns; byParams < n {
			n = byParams
		}
	}
	if limit := d.MaxRowsPerInsert(); limit > 0 && limit < n {
		n = limit
	}
	if n < 1 {
		n = 1
	}
	return n
}

// InsertEach inserts rows one statement at a time.
func InsertEach(ctx context.Context, tx Tx, d Dialect, table models.Table, rows [][]any) (int64, error) {
	columns := table.ColumnNames()
	query := InsertSQL(d, table, columns, 1)

	var total int64
	for i, row := range rows {
		n, err := tx.Exec(ctx, query, row...)
		if err != nil {
			return total, fmt.Errorf("insert %s row %d: %w", table.Name, i+1, err)
		}
		total += n
	}
	return total, nil
}

// InsertBatched inserts rows in grouped multi-row statements of up to
// pageSize rows each.
func InsertBatched(ctx context.Context, tx Tx, d Dialect, table models.Table, rows [][]any, pageSize int) (int64, error) {
	columns := table.ColumnNames()
	per := RowsPerStatement(d, len(columns), pageSize)

	var total int64
	var fullPageSQL string
	args := make([]any, 0, per*len(columns))
	for start := 0; start < len(rows); start += per {
		end := min(start+per, len(rows))
		page := rows[start:end]

		query := fullPageSQL
		if len(page) != per || query == "" {
			query = InsertSQL(d, table, columns, len(page))
			if len(page) == per {
				fullPageSQL = query
			}
		}

		args = args[:0]
		for _, row := range page {
			if len(row) != len(columns) {
				return total, fmt.Errorf("insert %s: row %d has %d values, want %d", table.Name, start+1, len(row), len(columns))
			}
			args = append(args, row...)
		}

		n, err := tx.Exec(ctx, query, args...)
		if err != nil {
			return total, fmt.Errorf("insert %s rows %d-%d: %w", table.Name, start+1, end, err)
		}
		total += n
	}
	return total, nil
}
