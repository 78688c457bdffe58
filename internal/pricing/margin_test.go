package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lincomp/stizun/internal/model"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func boundedRange(start, end, pct string) model.MarginRange {
	return model.MarginRange{
		StartPrice:       decimal.NewNullDecimal(dec(start)),
		EndPrice:         decimal.NewNullDecimal(dec(end)),
		MarginPercentage: dec(pct),
	}
}

func catchAllRange(pct string) model.MarginRange {
	return model.MarginRange{MarginPercentage: dec(pct)}
}

func tieredRanges() []model.MarginRange {
	return []model.MarginRange{
		boundedRange("0", "50", "8"),
		boundedRange("50.01", "150", "10"),
		catchAllRange("5"),
	}
}

func TestPercentageForPrice(t *testing.T) {
	ranges := tieredRanges()

	cases := []struct {
		price string
		want  string
	}{
		{"20", "8"},
		{"50", "8"},
		{"50.01", "10"},
		{"120", "10"},
		{"150", "10"},
		{"390", "5"},
	}
	for _, tc := range cases {
		pct, err := PercentageForPrice(dec(tc.price), ranges)
		require.NoError(t, err, "price %s", tc.price)
		assert.True(t, dec(tc.want).Equal(pct), "price %s: want %s, got %s", tc.price, tc.want, pct)
	}
}

func TestPercentageForPriceNoMatch(t *testing.T) {
	ranges := []model.MarginRange{boundedRange("0", "50", "8")}

	_, err := PercentageForPrice(dec("99"), ranges)
	assert.ErrorIs(t, err, ErrNoApplicableMarginRange)
}

func TestPercentageForPriceEmpty(t *testing.T) {
	_, err := PercentageForPrice(dec("10"), nil)
	assert.ErrorIs(t, err, ErrNoApplicableMarginRange)
}

func TestPercentageForPriceFirstMatchWins(t *testing.T) {
	ranges := []model.MarginRange{
		boundedRange("0", "100", "12"),
		boundedRange("0", "100", "7"),
	}

	pct, err := PercentageForPrice(dec("40"), ranges)
	require.NoError(t, err)
	assert.True(t, dec("12").Equal(pct))
}

func TestResolvePercentageScopePriority(t *testing.T) {
	rs := RangeSet{
		Item:     []model.MarginRange{catchAllRange("3")},
		Supplier: []model.MarginRange{catchAllRange("6")},
		System:   []model.MarginRange{catchAllRange("9")},
	}

	pct, err := rs.ResolvePercentage(dec("100"))
	require.NoError(t, err)
	assert.True(t, dec("3").Equal(pct), "item scope must win")
}

func TestResolvePercentageFallsThroughNonMatchingScope(t *testing.T) {
	// The item scope has a range, but it does not cover the price — the
	// resolver must keep going instead of failing.
	rs := RangeSet{
		Item:     []model.MarginRange{boundedRange("0", "10", "3")},
		Supplier: []model.MarginRange{boundedRange("0", "10", "6")},
		System:   []model.MarginRange{catchAllRange("9")},
	}

	pct, err := rs.ResolvePercentage(dec("100"))
	require.NoError(t, err)
	assert.True(t, dec("9").Equal(pct))
}

func TestResolvePercentageNoMatchAnywhere(t *testing.T) {
	rs := RangeSet{
		System: []model.MarginRange{boundedRange("0", "10", "9")},
	}

	_, err := rs.ResolvePercentage(dec("100"))
	assert.ErrorIs(t, err, ErrNoApplicableMarginRange)
}
