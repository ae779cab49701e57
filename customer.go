package finassist

import "github.com/shopspring/decimal"

// Customer is the holder of an account.
//
// Customers are provisioned outside of this package and never modified by it.
type Customer struct {
	AccountNumber string          `json:"accountNumber"`
	Name          string          `json:"name"`
	Email         string          `json:"email"`
	Balance       decimal.Decimal `json:"balance"` // current balance, may be negative
}
