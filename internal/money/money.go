// Package money converts YNAB milliunit amounts into currency units and
// provides the fixed roundings used across the pipeline.
package money

import "github.com/shopspring/decimal"

var thousand = decimal.NewFromInt(1000)

// FromMilliunits converts a raw milliunit amount into 2-decimal currency
// units. The decimal floating point is fixed at 2; future work could fetch it
// from the /budgets/{budgetId}/settings endpoint.
func FromMilliunits(ms int64) float64 {
	f, _ := decimal.NewFromInt(ms).Div(thousand).Round(2).Float64()
	return f
}

// RoundTolerance rounds a currency amount to the 3-decimal tolerance used by
// reconciliation, absorbing float accumulation noise.
func RoundTolerance(amount float64) float64 {
	f, _ := decimal.NewFromFloat(amount).Round(3).Float64()
	return f
}

// RoundUnit rounds an amount to the nearest whole unit, away from zero on
// ties. Used for synthetic interest amounts, which are kept in milliunits.
func RoundUnit(amount float64) int64 {
	return decimal.NewFromFloat(amount).Round(0).IntPart()
}
