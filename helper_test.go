package finassist

import (
	"testing"

	"github.com/etnz/finassist/date"
	"github.com/shopspring/decimal"
)

// D is a helper for test to create a decimal from a literal.
func D(t *testing.T, v string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(v)
	if err != nil {
		t.Fatalf("invalid decimal %q: %v", v, err)
	}
	return d
}

// tx is a helper for test to create a transaction of account "A".
func tx(on, category string, amount float64) Transaction {
	return NewTransaction("A", date.MustParse(on), category, amount, "")
}
