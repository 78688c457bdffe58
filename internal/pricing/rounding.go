package pricing

import (
	"errors"

	"github.com/shopspring/decimal"
)

// ErrNoRoundingCalculator means the engine was asked for a componentized gross
// price without a rounding calculator wired in. Fatal for that computation
// only; batch callers report it per item.
var ErrNoRoundingCalculator = errors.New("no rounding calculator configured")

// RoundingInput is everything the external rounding calculator looks at when
// nudging a gross price towards a merchant-friendly denomination.
type RoundingInput struct {
	PurchasePrice    decimal.Decimal
	MarginPercentage decimal.Decimal
	TaxPercentage    decimal.Decimal
	AbsoluteRebate   decimal.Decimal
	PercentageRebate decimal.Decimal
}

// RoundingCalculator computes the adjustment added to a gross price. Treated
// as opaque and pure.
type RoundingCalculator interface {
	Compute(in RoundingInput) decimal.Decimal
}

// NoRounding is the identity calculator: no price nudging at all.
type NoRounding struct{}

func (NoRounding) Compute(RoundingInput) decimal.Decimal { return decimal.Zero }

// DenominationRounding nudges the taxed end price up to the next multiple of
// Step (0.05 for Swiss cash denominations). The returned component is
// expressed pre-tax so it can be added to the gross price.
type DenominationRounding struct {
	Step decimal.Decimal
}

func NewDenominationRounding(step decimal.Decimal) DenominationRounding {
	return DenominationRounding{Step: step}
}

func (r DenominationRounding) Compute(in RoundingInput) decimal.Decimal {
	if !r.Step.IsPositive() {
		return decimal.Zero
	}
	hundred := decimal.NewFromInt(100)
	gross := in.PurchasePrice.Add(in.PurchasePrice.Div(hundred).Mul(in.MarginPercentage))

	taxFactor := decimal.NewFromInt(1).Add(in.TaxPercentage.Div(hundred))
	taxed := gross.Mul(taxFactor)

	rounded := taxed.Div(r.Step).Ceil().Mul(r.Step)
	if rounded.Equal(taxed) {
		return decimal.Zero
	}
	return rounded.Sub(taxed).Div(taxFactor)
}
