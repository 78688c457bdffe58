package pricing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lincomp/stizun/internal/model"
)

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func testEngine(rounding RoundingCalculator) *Engine {
	return NewEngine(rounding, WithClock(func() time.Time { return fixedNow }))
}

func taxClass(pct string) model.TaxClass {
	return model.TaxClass{Name: "test", Percentage: dec(pct)}
}

func systemRanges(pct string) RangeSet {
	return RangeSet{System: []model.MarginRange{catchAllRange(pct)}}
}

// componentizedProduct marks the product as componentized; the actual lines
// travel in the snapshot.
func componentizedProduct() *model.Product {
	return &model.Product{
		Name:       "bundle",
		Components: []model.ProductComponent{{Quantity: 1}},
	}
}

func TestQuoteComponentized(t *testing.T) {
	e := testEngine(NoRounding{})

	snap := Snapshot{
		Product: componentizedProduct(),
		Components: []ComponentLine{
			{Item: stubItem{price: dec("100"), weight: dec("0.5"), stock: 10}, Quantity: 5},
			{Item: stubItem{price: dec("45"), weight: dec("1.0"), stock: 9}, Quantity: 3},
		},
		Ranges:   systemRanges("10"),
		TaxClass: taxClass("8"),
	}

	q, err := e.QuoteFor(snap)
	require.NoError(t, err)

	assert.True(t, dec("635").Equal(q.PurchasePrice), "purchase price %s", q.PurchasePrice)
	assert.Equal(t, 2, q.BuildableStock)
	assert.True(t, dec("10").Equal(q.MarginPercentage))
	assert.True(t, dec("63.5").Equal(q.Margin), "margin %s", q.Margin)
	assert.True(t, dec("698.5").Equal(q.GrossPrice), "gross %s", q.GrossPrice)
	assert.True(t, dec("698.5").Equal(q.Price))
	assert.True(t, dec("55.88").Equal(q.Taxes), "taxes %s", q.Taxes)
	assert.True(t, dec("754.38").Equal(q.TaxedPrice), "taxed %s", q.TaxedPrice)
	assert.False(t, q.OnSale())
}

func TestQuoteComponentizedRequiresRoundingCalculator(t *testing.T) {
	e := testEngine(nil)

	snap := Snapshot{
		Product:    componentizedProduct(),
		Components: []ComponentLine{{Item: stubItem{price: dec("10"), stock: 1}, Quantity: 1}},
		Ranges:     systemRanges("10"),
		TaxClass:   taxClass("8"),
	}

	_, err := e.QuoteFor(snap)
	assert.ErrorIs(t, err, ErrNoRoundingCalculator)
}

func TestQuoteComponentizedAddsRoundingToGross(t *testing.T) {
	e := testEngine(NewDenominationRounding(dec("0.05")))

	snap := Snapshot{
		Product:    componentizedProduct(),
		Components: []ComponentLine{{Item: stubItem{price: dec("6.01"), stock: 10}, Quantity: 1}},
		Ranges:     systemRanges("0"),
		TaxClass:   taxClass("0"),
	}

	q, err := e.QuoteFor(snap)
	require.NoError(t, err)
	assert.True(t, dec("0.04").Equal(q.RoundingComponent), "rounding %s", q.RoundingComponent)
	assert.True(t, dec("6.05").Equal(q.GrossPrice), "gross %s", q.GrossPrice)
}

func TestQuoteSimpleProduct(t *testing.T) {
	e := testEngine(nil)

	snap := Snapshot{
		Product:  &model.Product{Name: "widget", PurchasePrice: dec("100"), Stock: 7},
		Ranges:   systemRanges("10"),
		TaxClass: taxClass("8"),
	}

	q, err := e.QuoteFor(snap)
	require.NoError(t, err)
	assert.True(t, dec("110").Equal(q.GrossPrice))
	assert.True(t, dec("110").Equal(q.Price))
	assert.Equal(t, 7, q.BuildableStock)
	assert.True(t, dec("8.8").Equal(q.Taxes), "taxes %s", q.Taxes)
	assert.True(t, dec("118.8").Equal(q.TaxedPrice))
}

// The simple branch computes the rounding component for storage but never
// folds it into the gross price.
func TestQuoteSimpleProductRoundingNotAdded(t *testing.T) {
	e := testEngine(NewDenominationRounding(dec("0.05")))

	snap := Snapshot{
		Product:  &model.Product{Name: "widget", PurchasePrice: dec("6.01")},
		Ranges:   systemRanges("0"),
		TaxClass: taxClass("0"),
	}

	q, err := e.QuoteFor(snap)
	require.NoError(t, err)
	assert.True(t, dec("0.04").Equal(q.RoundingComponent))
	assert.True(t, dec("6.01").Equal(q.GrossPrice), "gross must stay unrounded, got %s", q.GrossPrice)
}

func TestQuoteAbsolutelyPriced(t *testing.T) {
	e := testEngine(nil)

	snap := Snapshot{
		Product: &model.Product{
			Name:          "fixed",
			PurchasePrice: dec("80"),
			SalesPrice:    dec("100"),
		},
		// No ranges at all: an absolutely priced product never consults them.
		TaxClass: taxClass("8"),
	}

	q, err := e.QuoteFor(snap)
	require.NoError(t, err)
	assert.True(t, dec("100").Equal(q.GrossPrice))
	assert.True(t, dec("20").Equal(q.Margin))
	assert.True(t, dec("20").Equal(q.MarginPercentage), "pct %s", q.MarginPercentage)
	assert.True(t, dec("8").Equal(q.Taxes))
	assert.True(t, dec("108").Equal(q.TaxedPrice))
}

func TestQuoteNoMarginRangeFails(t *testing.T) {
	e := testEngine(nil)

	snap := Snapshot{
		Product:  &model.Product{Name: "widget", PurchasePrice: dec("100")},
		TaxClass: taxClass("8"),
	}

	_, err := e.QuoteFor(snap)
	assert.ErrorIs(t, err, ErrNoApplicableMarginRange)
}

// ── Rebates ──────────────────────────────────────────────────────────────────

func futureRebate() *time.Time {
	u := fixedNow.Add(24 * time.Hour)
	return &u
}

func pastRebate() *time.Time {
	u := fixedNow.Add(-24 * time.Hour)
	return &u
}

func TestRebateBelowPurchasePriceIsSuppressed(t *testing.T) {
	e := testEngine(nil)

	snap := Snapshot{
		Product: &model.Product{
			Name:           "guarded",
			PurchasePrice:  dec("100"),
			AbsoluteRebate: dec("20"),
			RebateUntil:    futureRebate(),
		},
		Ranges:   systemRanges("10"),
		TaxClass: taxClass("0"),
	}

	q, err := e.QuoteFor(snap)
	require.NoError(t, err)
	// 110 - 20 = 90 would undercut the 100 purchase price.
	assert.True(t, q.Rebate.IsZero(), "rebate %s", q.Rebate)
	assert.True(t, dec("110").Equal(q.Price))
	assert.False(t, q.OnSale())
}

func TestLossLeaderAllowsRebateBelowPurchasePrice(t *testing.T) {
	e := testEngine(nil)

	snap := Snapshot{
		Product: &model.Product{
			Name:           "leader",
			PurchasePrice:  dec("100"),
			AbsoluteRebate: dec("20"),
			RebateUntil:    futureRebate(),
			LossLeader:     true,
		},
		Ranges:   systemRanges("10"),
		TaxClass: taxClass("0"),
	}

	q, err := e.QuoteFor(snap)
	require.NoError(t, err)
	assert.True(t, dec("20").Equal(q.Rebate))
	assert.True(t, dec("90").Equal(q.Price))
	assert.True(t, q.OnSale())
}

func TestPercentageRebateApplies(t *testing.T) {
	e := testEngine(nil)

	snap := Snapshot{
		Product: &model.Product{
			Name:             "discounted",
			PurchasePrice:    dec("100"),
			PercentageRebate: dec("5"),
			RebateUntil:      futureRebate(),
		},
		Ranges:   systemRanges("10"),
		TaxClass: taxClass("8"),
	}

	q, err := e.QuoteFor(snap)
	require.NoError(t, err)
	assert.True(t, dec("5.5").Equal(q.Rebate), "rebate %s", q.Rebate)
	assert.True(t, dec("104.5").Equal(q.Price))
	// Taxes apply to the rebated amount: (110 - 5.5) * 8%.
	assert.True(t, dec("8.36").Equal(q.Taxes), "taxes %s", q.Taxes)
	assert.True(t, q.OnSale())
}

func TestAbsoluteRebateWinsOverPercentage(t *testing.T) {
	e := testEngine(nil)

	snap := Snapshot{
		Product: &model.Product{
			Name:             "both",
			PurchasePrice:    dec("100"),
			AbsoluteRebate:   dec("4"),
			PercentageRebate: dec("5"),
			RebateUntil:      futureRebate(),
		},
		Ranges:   systemRanges("10"),
		TaxClass: taxClass("0"),
	}

	q, err := e.QuoteFor(snap)
	require.NoError(t, err)
	assert.True(t, dec("4").Equal(q.Rebate))
}

func TestExpiredRebateIgnored(t *testing.T) {
	e := testEngine(nil)

	snap := Snapshot{
		Product: &model.Product{
			Name:           "expired",
			PurchasePrice:  dec("100"),
			AbsoluteRebate: dec("5"),
			RebateUntil:    pastRebate(),
		},
		Ranges:   systemRanges("10"),
		TaxClass: taxClass("0"),
	}

	q, err := e.QuoteFor(snap)
	require.NoError(t, err)
	assert.True(t, q.Rebate.IsZero())
	assert.False(t, q.OnSale())
}

func TestNoRebateWithoutExpiry(t *testing.T) {
	e := testEngine(nil)

	snap := Snapshot{
		Product: &model.Product{
			Name:           "no-window",
			PurchasePrice:  dec("100"),
			AbsoluteRebate: dec("5"),
		},
		Ranges:   systemRanges("10"),
		TaxClass: taxClass("0"),
	}

	q, err := e.QuoteFor(snap)
	require.NoError(t, err)
	assert.True(t, q.Rebate.IsZero())
}
