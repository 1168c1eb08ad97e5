package source

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ekaya-inc/ekaya-normalize/pkg/apperrors"
)

func TestSplitMulti(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{"empty", "", []string{""}},
		{"single", "Widget", []string{"Widget"}},
		{"several", "A;B;C", []string{"A", "B", "C"}},
		{"trims sub-values", " A ; B;C  ", []string{"A", "B", "C"}},
		{"keeps empty positions", "A;;C", []string{"A", "", "C"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SplitMulti(tt.input))
		})
	}
}

func TestParseCompactDate(t *testing.T) {
	d, err := ParseCompactDate("20230115")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2023, time.January, 15, 0, 0, 0, 0, time.UTC), d)
	assert.Equal(t, "2023-01-15", d.Format(time.DateOnly))

	for _, bad := range []string{"", "2023011", "202301150", "2023-01-15", "2023O115", "20231301", "20230230"} {
		_, err := ParseCompactDate(bad)
		assert.Error(t, err, bad)
	}
}

func TestParseDate_ReportsLineAndField(t *testing.T) {
	_, err := ParseDate(9, FieldOrderDates, "2023011x")
	require.Error(t, err)

	var pe *apperrors.ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, 9, pe.Line)
	assert.Equal(t, "order_dates", pe.Field)
	assert.Equal(t, "2023011x", pe.Value)
}

func TestParseQuantityAndPrice(t *testing.T) {
	q, err := ParseQuantity(1, FieldQuantities, "12")
	require.NoError(t, err)
	assert.Equal(t, 12, q)

	_, err = ParseQuantity(2, FieldQuantities, "1.5")
	assert.ErrorIs(t, err, apperrors.ErrParse)

	p, err := ParsePrice(1, FieldUnitPrices, "1.50")
	require.NoError(t, err)
	assert.InDelta(t, 1.5, p, 1e-9)

	_, err = ParsePrice(3, FieldUnitPrices, "free")
	assert.ErrorIs(t, err, apperrors.ErrParse)
}

func TestParsePrice_RejectsNonFinite(t *testing.T) {
	for _, value := range []string{"NaN", "nan", "Inf", "-Inf", "+infinity", "0x1p4", "0X10", "1e400"} {
		t.Run(value, func(t *testing.T) {
			_, err := ParsePrice(4, FieldUnitPrices, value)
			require.Error(t, err)
			assert.ErrorIs(t, err, apperrors.ErrParse)

			var pe *apperrors.ParseError
			require.ErrorAs(t, err, &pe)
			assert.Equal(t, value, pe.Value)
			assert.Equal(t, 4, pe.Line)
		})
	}

	p, err := ParsePrice(1, FieldUnitPrices, "1e2")
	require.NoError(t, err)
	assert.InDelta(t, 100, p, 1e-9)
}
