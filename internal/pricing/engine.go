package pricing

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/lincomp/stizun/internal/model"
)

var hundred = decimal.NewFromInt(100)

// Snapshot is everything the engine needs to price one product: the product
// fields, its resolved component lines, the margin ranges applicable to it
// (already grouped by scope) and its tax class. Building the snapshot is the
// caller's job; the engine itself never touches storage.
type Snapshot struct {
	Product    *model.Product
	Components []ComponentLine
	Ranges     RangeSet
	TaxClass   model.TaxClass
}

// Quote is the full pricing result for one product, computed in a single pass
// so both cached price fields always come from the same inputs.
type Quote struct {
	PurchasePrice     decimal.Decimal
	Weight            decimal.Decimal
	BuildableStock    int
	MarginPercentage  decimal.Decimal
	Margin            decimal.Decimal
	RoundingComponent decimal.Decimal
	GrossPrice        decimal.Decimal
	Rebate            decimal.Decimal
	Price             decimal.Decimal
	Taxes             decimal.Decimal
	TaxedPrice        decimal.Decimal
}

// OnSale reports whether a rebate is currently shaving the price.
func (q Quote) OnSale() bool { return q.Rebate.IsPositive() }

// Profitable reports whether the final price still covers the purchase cost.
func (q Quote) Profitable() bool { return q.Price.GreaterThan(q.PurchasePrice) }

// Engine computes quotes. It is stateless apart from its collaborators and is
// safe for concurrent use.
type Engine struct {
	rounding RoundingCalculator
	now      func() time.Time
}

// Option customizes an Engine.
type Option func(*Engine)

// WithClock replaces the engine's time source. Tests use this to pin "now"
// relative to rebate expiry timestamps.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

func NewEngine(rounding RoundingCalculator, opts ...Option) *Engine {
	e := &Engine{rounding: rounding, now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// QuoteFor prices a snapshot. Componentized products aggregate their
// components exactly once per call; the aggregate feeds purchase price,
// weight, buildable stock and the margin lookup.
func (e *Engine) QuoteFor(snap Snapshot) (Quote, error) {
	p := snap.Product
	q := Quote{
		PurchasePrice:  p.PurchasePrice,
		Weight:         p.Weight,
		BuildableStock: p.Stock,
	}

	switch {
	case p.Componentized():
		if e.rounding == nil {
			return Quote{}, ErrNoRoundingCalculator
		}
		agg := AggregateComponents(snap.Components)
		q.PurchasePrice = agg.PurchasePrice
		q.Weight = agg.Weight
		q.BuildableStock = agg.BuildableStock

		pct, err := snap.Ranges.ResolvePercentage(agg.PurchasePrice)
		if err != nil {
			return Quote{}, err
		}
		q.MarginPercentage = pct
		q.Margin = agg.PurchasePrice.Div(hundred).Mul(pct)
		q.RoundingComponent = e.rounding.Compute(e.roundingInput(p, q, snap.TaxClass))
		q.GrossPrice = agg.PurchasePrice.Add(q.Margin).Add(q.RoundingComponent)

	case p.AbsolutelyPriced():
		q.GrossPrice = p.SalesPrice
		q.Margin = p.SalesPrice.Sub(p.PurchasePrice)
		if !p.SalesPrice.IsZero() {
			q.MarginPercentage = hundred.Div(p.SalesPrice).Mul(q.Margin)
		}

	default:
		pct, err := snap.Ranges.ResolvePercentage(p.PurchasePrice)
		if err != nil {
			return Quote{}, err
		}
		q.MarginPercentage = pct
		q.Margin = p.PurchasePrice.Div(hundred).Mul(pct)
		q.GrossPrice = p.PurchasePrice.Add(q.Margin)
		if e.rounding != nil {
			q.RoundingComponent = e.rounding.Compute(e.roundingInput(p, q, snap.TaxClass))
		}
	}

	q.Rebate = e.rebate(p, q.GrossPrice, q.PurchasePrice)
	q.Price = q.GrossPrice.Sub(q.Rebate)

	taxBase := q.GrossPrice
	if p.AbsolutelyPriced() {
		taxBase = p.SalesPrice
	}
	q.Taxes = taxBase.Sub(q.Rebate).Div(hundred).Mul(snap.TaxClass.Percentage)
	q.TaxedPrice = q.Price.Add(q.Taxes)

	return q, nil
}

// rebate applies the active rebate to a gross price. An absolute rebate wins
// over a percentage one. A rebate that would push a non-loss-leader below its
// purchase price is forced to zero.
func (e *Engine) rebate(p *model.Product, grossPrice, purchasePrice decimal.Decimal) decimal.Decimal {
	rebate := decimal.Zero
	if p.RebateUntil != nil && e.now().Before(*p.RebateUntil) {
		switch {
		case p.AbsoluteRebate.IsPositive():
			rebate = p.AbsoluteRebate
		case p.PercentageRebate.IsPositive():
			rebate = grossPrice.Div(hundred).Mul(p.PercentageRebate)
		}
	}
	if grossPrice.Sub(rebate).LessThan(purchasePrice) && !p.LossLeader {
		rebate = decimal.Zero
	}
	return rebate
}

func (e *Engine) roundingInput(p *model.Product, q Quote, tc model.TaxClass) RoundingInput {
	in := RoundingInput{
		PurchasePrice:    q.PurchasePrice,
		MarginPercentage: q.MarginPercentage,
		TaxPercentage:    tc.Percentage,
	}
	// Rebates only feed the rounding calculation while they are active.
	if p.RebateUntil != nil && e.now().Before(*p.RebateUntil) {
		in.AbsoluteRebate = p.AbsoluteRebate
		in.PercentageRebate = p.PercentageRebate
	}
	return in
}
