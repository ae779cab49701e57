package renderer

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// formatMoney formats v in the currency's display format, e.g. "$1,750.00".
func formatMoney(v decimal.Decimal, currency string) string {
	// to get a never nil currency I need to call the Money constructor
	cur := money.New(0, currency).Currency()
	minor := v.Shift(int32(cur.Fraction)).Round(0)
	return cur.Formatter().Format(minor.IntPart())
}
