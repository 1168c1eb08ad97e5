package pipeline

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ekaya-inc/ekaya-normalize/pkg/database"
	"github.com/ekaya-inc/ekaya-normalize/pkg/testhelpers"
)

// textSource serves an in-memory export.
type textSource string

func (s textSource) Name() string { return "inline" }

func (s textSource) Open(ctx context.Context) (io.ReadCloser, error) {
	return io.NopCloser(strings.NewReader(string(s))), nil
}

// export builds an in-memory export from data lines.
func export(lines ...string) textSource {
	return textSource(testhelpers.ExportHeader + "\n" + strings.Join(lines, "\n") + "\n")
}

var line = testhelpers.ExportLine

// sampleLines covers repeat customers, multi-item orders and a product sold at two prices.
var sampleLines = []string{
	line("John Smith", "1 Main St", "Paris", "France", "Europe", "A;B", "X;Y", "DescX;DescY", "1.50;2.00", "1;2", "20230115;20230116"),
	line("Jane Doe", "2 High St", "London", "UK", "Europe", "A", "X", "DescX", "1.50", "3", "20230201"),
	line("John Smith", "1 Main St", "Paris", "France", "Europe", "C;A;B", "Y;X;Y", "DescY;DescX;DescY", "5;1.50;2.00", "1;1;1", "20230301;20230302;20230303"),
	line("Ken Tanaka", "3 Sakura", "Tokyo", "Japan", "Asia", "B", "Y", "DescY", "2.50", "4", "20230401"),
}

func queryStrings(t *testing.T, store database.Store, query string) []string {
	t.Helper()
	var out []string
	err := database.InTx(context.Background(), store, func(tx database.Tx) error {
		return tx.Query(context.Background(), query, nil, func(r database.Row) error {
			var s string
			if err := r.Scan(&s); err != nil {
				return err
			}
			out = append(out, s)
			return nil
		})
	})
	require.NoError(t, err)
	return out
}

func queryInt(t *testing.T, store database.Store, query string) int64 {
	t.Helper()
	var n int64
	err := database.InTx(context.Background(), store, func(tx database.Tx) error {
		return tx.Query(context.Background(), query, nil, func(r database.Row) error {
			return r.Scan(&n)
		})
	})
	require.NoError(t, err)
	return n
}

func countRows(t *testing.T, store database.Store, table string) int64 {
	t.Helper()
	return queryInt(t, store, "SELECT COUNT(*) FROM "+store.Dialect().QuoteIdentifier(table))
}
