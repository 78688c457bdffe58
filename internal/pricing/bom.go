package pricing

import "github.com/shopspring/decimal"

// PricedStockedItem is the capability a component must expose to participate
// in BOM aggregation. Supply items implement it; anything else that acts as a
// buildable unit can too.
type PricedStockedItem interface {
	UnitPurchasePrice() decimal.Decimal
	UnitWeight() decimal.Decimal
	AvailableStock() int
}

// ComponentLine is one (component, quantity) pair of a componentized product.
type ComponentLine struct {
	Item     PricedStockedItem
	Quantity int
}

// Aggregate is the combined purchase price, weight and buildable stock of a
// component list.
type Aggregate struct {
	PurchasePrice  decimal.Decimal
	Weight         decimal.Decimal
	BuildableStock int
}

// AggregateComponents computes the aggregate over all lines in one pass.
//
// Buildable stock is the bottleneck: min over floor(stock/quantity). Any line
// whose required quantity exceeds its component's stock forces the whole
// result to zero immediately. An empty component list yields zero stock.
func AggregateComponents(lines []ComponentLine) Aggregate {
	agg := Aggregate{PurchasePrice: decimal.Zero, Weight: decimal.Zero}

	stockSet := false
	for _, line := range lines {
		qty := decimal.NewFromInt(int64(line.Quantity))
		agg.PurchasePrice = agg.PurchasePrice.Add(line.Item.UnitPurchasePrice().Mul(qty))
		agg.Weight = agg.Weight.Add(line.Item.UnitWeight().Mul(qty))

		if line.Quantity > line.Item.AvailableStock() {
			agg.BuildableStock = 0
			stockSet = true
			continue
		}
		// Integer division already floors.
		buildable := line.Item.AvailableStock() / line.Quantity
		if !stockSet || buildable < agg.BuildableStock {
			agg.BuildableStock = buildable
			stockSet = true
		}
	}
	return agg
}
