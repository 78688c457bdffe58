package service

import "github.com/shopspring/decimal"

// mustDecimal parses configuration-sourced decimal strings; config validation
// guarantees they parse, a broken value falls back to zero.
func mustDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
