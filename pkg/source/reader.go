package source

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/ekaya-inc/ekaya-normalize/pkg/apperrors"
)

// Field positions in a source line.
const (
	FieldCustomerName = iota
	FieldAddress
	FieldCity
	FieldCountry
	FieldRegion
	FieldProducts
	FieldCategories
	FieldCategoryDescriptions
	FieldUnitPrices
	FieldQuantities
	FieldOrderDates

	FieldCount
)

var fieldNames = [FieldCount]string{
	"customer_name", "address", "city", "country", "region", "products",
	"categories", "category_descriptions", "unit_prices", "quantities", "order_dates",
}

// FieldName returns the diagnostic name of a field position.
func FieldName(i int) string {
	if i < 0 || i >= FieldCount {
		return fmt.Sprintf("field_%d", i)
	}
	return fieldNames[i]
}

// maxLineSize bounds a single source line. Orders with many items produce long lines.
const maxLineSize = 16 * 1024 * 1024

// Record is one data line split on TAB.
type Record struct {
	Line   int // 1-based physical line number
	Fields []string
}

// Field returns the trimmed value at position i.
func (r Record) Field(i int) string {
	return strings.TrimSpace(r.Fields[i])
}

// Multi splits the field at position i into its sub-values.
func (r Record) Multi(i int) []string {
	return SplitMulti(r.Fields[i])
}

// Scan opens src and calls fn for each data line. The first non-blank line is
// the header and is skipped; blank lines are dropped and spaces and CR are
// trimmed from line ends before splitting; an empty leading or trailing field is kept. A line with fewer than minFields fields fails with a ParseError.
func Scan(ctx context.Context, src Source, minFields int, fn func(Record) error) error {
	rc, err := src.Open(ctx)
	if err != nil {
		return fmt.Errorf("open source %s: %w", src.Name(), err)
	}
	defer rc.Close()

	return scanReader(ctx, rc, minFields, fn)
}

func scanReader(ctx context.Context, r io.Reader, minFields int, fn func(Record) error) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	lineNo := 0
	headerSeen := false
	for scanner.Scan() {
		lineNo++
		if err := ctx.Err(); err != nil {
			return err
		}

		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		// Tabs delimit fields, so only spaces and CR are stripped at the ends.
		line = strings.Trim(line, " \r")
		if !headerSeen {
			headerSeen = true
			continue
		}

		fields := strings.Split(line, "\t")
		if len(fields) < minFields {
			return &apperrors.ParseError{
				Line: lineNo,
				Err:  fmt.Errorf("expected at least %d fields, got %d", minFields, len(fields)),
			}
		}
		if err := fn(Record{Line: lineNo, Fields: fields}); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read source line %d: %w", lineNo+1, err)
	}
	return nil
}
