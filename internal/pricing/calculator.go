// Package pricing computes discounted prices, gross profit and RRP
// comparisons for order lines.
package pricing

import (
	"math"
	"strconv"
)

const (
	// GSTRate is the Australian goods and services tax rate.
	GSTRate = 0.10
	// LowGPPThreshold is the gross profit percentage below which a line is flagged.
	LowGPPThreshold = 20.0

	priceTolerance = 0.001
)

// TaxModel states whether unit prices already include GST.
type TaxModel int

const (
	// TaxExclusive prices are ex-GST; totals are not adjusted.
	TaxExclusive TaxModel = iota
	// TaxInclusive prices include GST; totals are divided by 1 + GSTRate.
	TaxInclusive
)

// Highlight classifies a line for table row styling.
type Highlight string

const (
	HighlightNone       Highlight = ""
	HighlightLowGPP     Highlight = "low-gpp"
	HighlightEqualPrice Highlight = "equal-price"
	HighlightLowerPrice Highlight = "lower-price"
)

// Input holds the editable values of an order line.
type Input struct {
	SKU             string  `json:"sku"`
	Quantity        float64 `json:"quantity"`
	UnitPrice       float64 `json:"unit_price"`
	CostPrice       float64 `json:"cost_price"`
	RRP             float64 `json:"rrp"`
	PercentDiscount float64 `json:"percent_discount"`
}

// Line is an Input with its derived values. Derived values are always
// produced by Compute and never edited directly. They hold display precision;
// Compute derives each of them from the unrounded discounted price.
type Line struct {
	Input
	UnitPriceDiscounted float64   `json:"unit_price_discounted"`
	GPPExGST            float64   `json:"gpp_ex_gst"`
	AccumulatedDiscount *float64  `json:"accumulated_discount"`
	TotalExGST          float64   `json:"total_ex_gst"`
	Highlight           Highlight `json:"highlight"`
}

// ClampDiscount limits a percent discount to [0, 100].
func ClampDiscount(p float64) float64 {
	p = finite(p)
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}

// DiscountedPrice applies a clamped percent discount. The result is not
// rounded.
func DiscountedPrice(unitPrice, percentDiscount float64) float64 {
	return finite(finite(unitPrice) * (1 - ClampDiscount(percentDiscount)/100))
}

// GPP returns the unrounded gross profit percentage of sell over cost.
// A non-positive sell price yields 0.
func GPP(sell, cost float64) float64 {
	sell, cost = finite(sell), finite(cost)
	if sell <= 0 {
		return 0
	}
	return finite((sell - cost) / sell * 100)
}

// AccumulatedDiscount compares the GST-inclusive discounted price with the
// GST-inclusive RRP. It reports false when the RRP is unknown.
func AccumulatedDiscount(rrp, unitPriceDiscounted float64) (float64, bool) {
	rrp = finite(rrp)
	if rrp <= 0 {
		return 0, false
	}
	taxed := finite(unitPriceDiscounted) * (1 + GSTRate)
	return round((rrp-taxed)/rrp*100, 2), true
}

// NetRRP strips GST from a GST-inclusive RRP.
func NetRRP(rrp float64) float64 {
	return finite(rrp) / (1 + GSTRate)
}

// Classify picks the row highlight for a line.
func Classify(gpp, unitPriceDiscounted, rrp float64) Highlight {
	if gpp < LowGPPThreshold {
		return HighlightLowGPP
	}
	if finite(rrp) <= 0 {
		return HighlightNone
	}
	price := round(unitPriceDiscounted, 2)
	net := round(NetRRP(rrp), 2)
	switch {
	case math.Abs(price-net) < priceTolerance:
		return HighlightEqualPrice
	case price < net:
		return HighlightLowerPrice
	}
	return HighlightNone
}

// Compute derives every calculated field of a line.
func Compute(in Input, tax TaxModel) Line {
	in.Quantity = finite(in.Quantity)
	in.UnitPrice = finite(in.UnitPrice)
	in.CostPrice = finite(in.CostPrice)
	in.RRP = finite(in.RRP)
	in.PercentDiscount = finite(in.PercentDiscount)

	upd := DiscountedPrice(in.UnitPrice, in.PercentDiscount)
	gpp := GPP(upd, in.CostPrice)

	total := in.Quantity * upd
	if tax == TaxInclusive {
		total /= 1 + GSTRate
	}

	line := Line{
		Input:               in,
		UnitPriceDiscounted: round(upd, 3),
		GPPExGST:            round(gpp, 3),
		TotalExGST:          round(total, 2),
		Highlight:           Classify(gpp, upd, in.RRP),
	}
	if acc, ok := AccumulatedDiscount(in.RRP, upd); ok {
		line.AccumulatedDiscount = &acc
	}
	return line
}

// Commit clamps the discount the way a field blur does, then computes.
func Commit(in Input, tax TaxModel) Line {
	in.PercentDiscount = ClampDiscount(in.PercentDiscount)
	return Compute(in, tax)
}

// LineDisplay carries the table cell strings of a line.
type LineDisplay struct {
	UnitPriceDiscounted string `json:"unit_price_discounted"`
	GPPExGST            string `json:"gpp_ex_gst"`
	AccumulatedDiscount string `json:"accumulated_discount"`
	TotalExGST          string `json:"total_ex_gst"`
}

// Display formats the derived values for table cells.
func (l Line) Display() LineDisplay {
	acc := "N/A"
	if l.AccumulatedDiscount != nil {
		acc = strconv.FormatFloat(*l.AccumulatedDiscount, 'f', 2, 64) + "%"
	}
	return LineDisplay{
		UnitPriceDiscounted: strconv.FormatFloat(l.UnitPriceDiscounted, 'f', 3, 64),
		GPPExGST:            strconv.FormatFloat(l.GPPExGST, 'f', 3, 64),
		AccumulatedDiscount: acc,
		TotalExGST:          strconv.FormatFloat(l.TotalExGST, 'f', 2, 64),
	}
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return finite(math.Round(v*p) / p)
}
