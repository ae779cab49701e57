package renderer

import (
	"fmt"

	"github.com/etnz/finassist"
)

// Transaction renders a transaction to a single line.
//
//	2024-03-21 - Deposit - $1000 - Salary credited
func Transaction(tx finassist.Transaction) string {
	return fmt.Sprintf("%s - %s - $%s - %s", tx.Date, tx.Type, tx.Amount, tx.Description)
}
