package testhelpers

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ekaya-inc/ekaya-normalize/pkg/database"
)

// ExportHeader is the header line of a denormalized order export.
const ExportHeader = "CustomerName\tAddress\tCity\tCountry\tRegion\tProductName\tProductCategory\t" +
	"ProductCategoryDescription\tProductUnitPrice\tQuantityOrdered\tOrderDate"

// ExportLine joins the eleven fields of one order line with TABs.
func ExportLine(fields ...string) string {
	return strings.Join(fields, "\t")
}

// WriteExport writes a TSV export with the standard header followed by lines
// and returns its path.
func WriteExport(t *testing.T, lines ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "orders.tsv")
	content := ExportHeader + "\n" + strings.Join(lines, "\n") + "\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write export: %v", err)
	}
	return path
}

// NewSQLiteStore opens an empty SQLite store in the test's temp directory.
func NewSQLiteStore(t *testing.T) *database.SQLStore {
	t.Helper()
	store, err := database.NewSQLiteStore(context.Background(), filepath.Join(t.TempDir(), "normalized.db"))
	if err != nil {
		t.Fatalf("failed to open sqlite store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}
