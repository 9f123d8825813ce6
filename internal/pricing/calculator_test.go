package pricing

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiscountedPriceBounds(t *testing.T) {
	assert.Equal(t, 42.5, DiscountedPrice(42.5, 0))
	assert.Equal(t, 0.0, DiscountedPrice(42.5, 100))
	assert.Equal(t, 31.875, DiscountedPrice(42.5, 25))
}

func TestDiscountedPriceClampsOutOfRange(t *testing.T) {
	assert.Equal(t, 50.0, DiscountedPrice(50, -10))
	assert.Equal(t, 0.0, DiscountedPrice(50, 150))
	assert.Equal(t, 50.0, DiscountedPrice(50, math.NaN()))
}

func TestDiscountedPriceRoundsOnlyForDisplay(t *testing.T) {
	assert.InDelta(t, 6.6667, DiscountedPrice(10, 33.333), 1e-9)

	line := Compute(Input{Quantity: 1, UnitPrice: 10, PercentDiscount: 33.333}, TaxExclusive)
	assert.Equal(t, 6.667, line.UnitPriceDiscounted)
	assert.Equal(t, "6.667", line.Display().UnitPriceDiscounted)
}

func TestComputeGPPUsesUnroundedPrice(t *testing.T) {
	line := Compute(Input{Quantity: 1, UnitPrice: 0.9996, CostPrice: 0.8}, TaxExclusive)
	assert.Equal(t, 1.0, line.UnitPriceDiscounted)
	assert.Equal(t, 19.968, line.GPPExGST)
	assert.Equal(t, "19.968", line.Display().GPPExGST)
	assert.Equal(t, HighlightLowGPP, line.Highlight)
}

func TestComputeTotalUsesUnroundedPrice(t *testing.T) {
	line := Compute(Input{Quantity: 1000, UnitPrice: 9.99, CostPrice: 1, PercentDiscount: 33.33}, TaxExclusive)
	assert.Equal(t, 6.66, line.UnitPriceDiscounted)
	assert.Equal(t, 6660.33, line.TotalExGST)
	assert.Equal(t, "6660.33", line.Display().TotalExGST)
}

func TestGPPBoundary(t *testing.T) {
	assert.Equal(t, 20.0, GPP(100, 80))
	assert.Equal(t, 0.0, GPP(0, 80))
	assert.Equal(t, 0.0, GPP(-5, 1))
	assert.InDelta(t, -60.0, GPP(50, 80), 1e-9)

	line := Compute(Input{UnitPrice: 100, CostPrice: 80}, TaxExclusive)
	assert.Equal(t, "20.000", line.Display().GPPExGST)
	assert.NotEqual(t, HighlightLowGPP, line.Highlight)

	line = Compute(Input{UnitPrice: 100, CostPrice: 80.01}, TaxExclusive)
	assert.Equal(t, HighlightLowGPP, line.Highlight)
}

func TestAccumulatedDiscount(t *testing.T) {
	acc, ok := AccumulatedDiscount(110, 100)
	require.True(t, ok)
	assert.Equal(t, 0.0, acc)

	acc, ok = AccumulatedDiscount(110, 80)
	require.True(t, ok)
	assert.Equal(t, 20.0, acc)

	_, ok = AccumulatedDiscount(0, 100)
	assert.False(t, ok)
	_, ok = AccumulatedDiscount(-1, 100)
	assert.False(t, ok)
}

func TestComputeAccumulatedDiscountDisplay(t *testing.T) {
	line := Compute(Input{UnitPrice: 100, CostPrice: 50, RRP: 110}, TaxExclusive)
	require.NotNil(t, line.AccumulatedDiscount)
	assert.Equal(t, "0.00%", line.Display().AccumulatedDiscount)

	line = Compute(Input{UnitPrice: 100, CostPrice: 50}, TaxExclusive)
	assert.Nil(t, line.AccumulatedDiscount)
	assert.Equal(t, "N/A", line.Display().AccumulatedDiscount)
}

func TestClassify(t *testing.T) {
	cases := []struct {
		name  string
		gpp   float64
		price float64
		rrp   float64
		want  Highlight
	}{
		{"low gpp wins", 10, 50, 55, HighlightLowGPP},
		{"equal to net rrp", 30, 100, 110, HighlightEqualPrice},
		{"equal within rounding", 30, 99.996, 110, HighlightEqualPrice},
		{"below net rrp", 30, 90, 110, HighlightLowerPrice},
		{"above net rrp", 30, 105, 110, HighlightNone},
		{"unknown rrp", 30, 105, 0, HighlightNone},
		{"gpp exactly at threshold", 20, 105, 110, HighlightNone},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Classify(tc.gpp, tc.price, tc.rrp))
		})
	}
}

func TestComputeTotals(t *testing.T) {
	line := Compute(Input{SKU: "DET-5L", Quantity: 4, UnitPrice: 22, CostPrice: 11, PercentDiscount: 10}, TaxExclusive)
	assert.Equal(t, 19.8, line.UnitPriceDiscounted)
	assert.Equal(t, 79.2, line.TotalExGST)
	assert.Equal(t, 44.444, line.GPPExGST)

	line = Compute(Input{SKU: "DET-5L", Quantity: 4, UnitPrice: 22, CostPrice: 11, PercentDiscount: 10}, TaxInclusive)
	assert.Equal(t, 72.0, line.TotalExGST)
}

func TestComputeMalformedInput(t *testing.T) {
	line := Compute(Input{Quantity: 2, UnitPrice: math.NaN(), CostPrice: 5, RRP: math.Inf(1)}, TaxExclusive)
	assert.Equal(t, 0.0, line.UnitPriceDiscounted)
	assert.Equal(t, 0.0, line.GPPExGST)
	assert.Equal(t, "0.000", line.Display().GPPExGST)
	assert.Nil(t, line.AccumulatedDiscount)
	assert.Equal(t, HighlightLowGPP, line.Highlight)

	line = Compute(Input{UnitPrice: ParseNumber(""), CostPrice: 5}, TaxExclusive)
	assert.Equal(t, 0.0, line.UnitPriceDiscounted)
}

func TestComputeKeepsUncommittedDiscount(t *testing.T) {
	line := Compute(Input{UnitPrice: 10, PercentDiscount: 120}, TaxExclusive)
	assert.Equal(t, 120.0, line.PercentDiscount)
	assert.Equal(t, 0.0, line.UnitPriceDiscounted)

	line = Commit(Input{UnitPrice: 10, PercentDiscount: 120}, TaxExclusive)
	assert.Equal(t, 100.0, line.PercentDiscount)
}

func TestComputeIsRecalculatedFromInputs(t *testing.T) {
	in := Input{Quantity: 1, UnitPrice: 80, CostPrice: 40, RRP: 99}
	first := Compute(in, TaxExclusive)
	in.PercentDiscount = 50
	second := Compute(in, TaxExclusive)
	assert.Equal(t, 80.0, first.UnitPriceDiscounted)
	assert.Equal(t, 40.0, second.UnitPriceDiscounted)
	assert.Equal(t, 0.0, second.GPPExGST)
	assert.Equal(t, HighlightLowGPP, second.Highlight)
}

func TestSummarize(t *testing.T) {
	lines := ComputeAll([]Input{
		{SKU: "A", Quantity: 2, UnitPrice: 50, CostPrice: 30},
		{SKU: "B", Quantity: 1, UnitPrice: 100, CostPrice: 90},
	}, TaxExclusive)
	s := Summarize(lines)
	assert.Equal(t, 2, s.Lines)
	assert.Equal(t, 200.0, s.SubtotalExGST)
	assert.Equal(t, 20.0, s.GST)
	assert.Equal(t, 220.0, s.TotalIncGST)
	assert.Equal(t, 150.0, s.CostExGST)
	assert.Equal(t, 25.0, s.GPPExGST)
	assert.Equal(t, 1, s.LowGPPLines)

	empty := Summarize(nil)
	assert.Equal(t, 0.0, empty.GPPExGST)
}

func TestFormatting(t *testing.T) {
	assert.Equal(t, "$1,234.50", FormatMoney(1234.5))
	assert.Equal(t, "-$12.00", FormatMoney(-12))
	assert.Equal(t, "$0.00", FormatMoney(0))
	assert.Equal(t, "12.50%", FormatPercent(12.5, 2))
}
