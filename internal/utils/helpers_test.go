package utils

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestValidateAmount(t *testing.T) {
	valid := map[string]string{
		"25":      "25",
		"25.50":   "25.5",
		"12,34":   "12.34",
		" 10.00 ": "10",
	}
	for input, want := range valid {
		amount, err := ValidateAmount(input)
		if err != nil {
			t.Errorf("ValidateAmount(%q) unexpected error: %v", input, err)
			continue
		}
		if !amount.Equal(decimal.RequireFromString(want)) {
			t.Errorf("ValidateAmount(%q) = %s, want %s", input, amount, want)
		}
	}

	invalid := []string{"", "abc", "10$", "0", "-5", "1.2.3"}
	for _, input := range invalid {
		if _, err := ValidateAmount(input); err == nil {
			t.Errorf("ValidateAmount(%q) expected error", input)
		}
	}
}
