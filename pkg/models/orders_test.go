package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitCustomerName(t *testing.T) {
	tests := []struct {
		name  string
		full  string
		first string
		last  string
	}{
		{"two words", "John Smith", "John", "Smith"},
		{"middle name stays with last", "Mary Ann Lee", "Mary", "Ann Lee"},
		{"single word", "Cher", "Cher", ""},
		{"surrounding space", "  Ana  Lopez ", "Ana", "Lopez"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			first, last := SplitCustomerName(tt.full)
			assert.Equal(t, tt.first, first)
			assert.Equal(t, tt.last, last)
		})
	}
}

func TestCustomerKey(t *testing.T) {
	assert.Equal(t, "John Smith", CustomerKey("John", "Smith"))
	assert.Equal(t, "Cher", CustomerKey("Cher", ""))
	assert.Equal(t, "John Smith", Customer{FirstName: "John", LastName: "Smith"}.Key())
}
