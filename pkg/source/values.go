package source

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/ekaya-inc/ekaya-normalize/pkg/apperrors"
)

// MultiValueSeparator separates the per-item sub-values of a multi-valued field.
const MultiValueSeparator = ";"

// compactDateLayout is the YYYYMMDD layout used for order dates.
const compactDateLayout = "20060102"

// SplitMulti splits a multi-valued field into trimmed sub-values.
// An empty value yields a single empty element.
func SplitMulti(value string) []string {
	parts := strings.Split(strings.TrimSpace(value), MultiValueSeparator)
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}

// ParseCompactDate converts a YYYYMMDD value to a calendar date in UTC.
func ParseCompactDate(value string) (time.Time, error) {
	if len(value) != len(compactDateLayout) {
		return time.Time{}, fmt.Errorf("date must have %d digits", len(compactDateLayout))
	}
	for _, r := range value {
		if r < '0' || r > '9' {
			return time.Time{}, fmt.Errorf("date must contain only digits")
		}
	}
	return time.Parse(compactDateLayout, value)
}

// ParseDate parses the sub-value of a date field, reporting failures as a ParseError.
func ParseDate(line, field int, value string) (time.Time, error) {
	t, err := ParseCompactDate(value)
	if err != nil {
		return time.Time{}, &apperrors.ParseError{Line: line, Field: FieldName(field), Value: value, Err: err}
	}
	return t, nil
}

// ParseQuantity parses an integer sub-value, reporting failures as a ParseError.
func ParseQuantity(line, field int, value string) (int, error) {
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, &apperrors.ParseError{Line: line, Field: FieldName(field), Value: value, Err: err}
	}
	return n, nil
}

var errNotDecimal = errors.New("not a finite decimal number")

// ParsePrice parses a decimal sub-value, reporting failures as a ParseError.
// Hex floats, NaN and infinities are rejected.
func ParsePrice(line, field int, value string) (float64, error) {
	if strings.ContainsAny(value, "xX") {
		return 0, &apperrors.ParseError{Line: line, Field: FieldName(field), Value: value, Err: errNotDecimal}
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, &apperrors.ParseError{Line: line, Field: FieldName(field), Value: value, Err: err}
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, &apperrors.ParseError{Line: line, Field: FieldName(field), Value: value, Err: errNotDecimal}
	}
	return f, nil
}
