package finassist

import (
	"maps"
	"slices"

	"github.com/shopspring/decimal"
)

// Summary maps each transaction category to the total amount of its
// transactions.
type Summary map[string]decimal.Decimal

// Summarize computes the per-category totals of txs.
//
// The result does not depend on the order of txs, and an empty input gives an
// empty Summary.
func Summarize(txs []Transaction) Summary {
	s := make(Summary)
	for _, tx := range txs {
		s[tx.Type] = s[tx.Type].Add(tx.Amount)
	}
	return s
}

// Types returns the categories of the summary in lexical order.
func (s Summary) Types() []string {
	return slices.Sorted(maps.Keys(s))
}

// Total returns the sum of all the categories.
func (s Summary) Total() decimal.Decimal {
	total := decimal.Zero
	for _, v := range s {
		total = total.Add(v)
	}
	return total
}
