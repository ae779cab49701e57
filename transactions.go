package finassist

import (
	"github.com/etnz/finassist/date"
	"github.com/shopspring/decimal"
)

// Well known transaction categories.
//
// The set of categories is open: stores may return any other Type and every
// function of this package treats it as an opaque key.
const (
	Deposit    = "Deposit"
	Withdrawal = "Withdrawal"
	Transfer   = "Transfer"
)

// Transaction is a single entry of an account's ledger.
//
// Amount is always a positive magnitude, the direction of the money flow is
// carried by Type.
type Transaction struct {
	AccountNumber string          `json:"-"`
	Date          date.Date       `json:"date"`
	Type          string          `json:"type"`
	Amount        decimal.Decimal `json:"amount"`
	Description   string          `json:"description"`
}

// NewTransaction creates a transaction of the given account.
func NewTransaction(account string, on date.Date, category string, amount float64, description string) Transaction {
	return Transaction{
		AccountNumber: account,
		Date:          on,
		Type:          category,
		Amount:        decimal.NewFromFloat(amount),
		Description:   description,
	}
}

// Last returns the n last transactions of txs, or all of them if there are
// fewer than n.
func Last(txs []Transaction, n int) []Transaction {
	if n < 0 {
		n = 0
	}
	if len(txs) <= n {
		return txs
	}
	return txs[len(txs)-n:]
}
