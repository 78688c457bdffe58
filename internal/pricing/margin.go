package pricing

import (
	"errors"

	"github.com/shopspring/decimal"

	"github.com/lincomp/stizun/internal/model"
)

// ErrNoApplicableMarginRange means no range in any scope matched the price.
// Administrators must keep a catch-all range (both bounds absent) system-wide
// so this never fires in production.
var ErrNoApplicableMarginRange = errors.New("no applicable margin range for price")

// RangeSet carries the margin ranges applicable to one product, grouped by
// scope. Resolution priority is item, then supplier, then system-wide.
type RangeSet struct {
	Item     []model.MarginRange
	Supplier []model.MarginRange
	System   []model.MarginRange
}

// PercentageForPrice returns the margin percentage of the first range (in
// input order) that matches the price. Callers order ranges by whatever
// priority they need before calling.
func PercentageForPrice(price decimal.Decimal, ranges []model.MarginRange) (decimal.Decimal, error) {
	for i := range ranges {
		if ranges[i].Matches(price) {
			return ranges[i].MarginPercentage, nil
		}
	}
	return decimal.Zero, ErrNoApplicableMarginRange
}

// ResolvePercentage walks the scopes in priority order. A scope that has
// ranges but none matching falls through to the next scope; only when nothing
// matches anywhere does the resolver fail.
func (rs RangeSet) ResolvePercentage(price decimal.Decimal) (decimal.Decimal, error) {
	for _, scope := range [][]model.MarginRange{rs.Item, rs.Supplier, rs.System} {
		if pct, err := PercentageForPrice(price, scope); err == nil {
			return pct, nil
		}
	}
	return decimal.Zero, ErrNoApplicableMarginRange
}
