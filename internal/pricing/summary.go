package pricing

// Summary aggregates computed lines of one order.
type Summary struct {
	Lines         int     `json:"lines"`
	SubtotalExGST float64 `json:"subtotal_ex_gst"`
	GST           float64 `json:"gst"`
	TotalIncGST   float64 `json:"total_inc_gst"`
	CostExGST     float64 `json:"cost_ex_gst"`
	GPPExGST      float64 `json:"gpp_ex_gst"`
	LowGPPLines   int     `json:"low_gpp_lines"`
}

// Summarize totals a set of computed lines. GPP is weighted by line value.
func Summarize(lines []Line) Summary {
	var s Summary
	for _, l := range lines {
		s.Lines++
		s.SubtotalExGST += l.TotalExGST
		s.CostExGST += l.Quantity * l.CostPrice
		if l.Highlight == HighlightLowGPP {
			s.LowGPPLines++
		}
	}
	s.SubtotalExGST = round(s.SubtotalExGST, 2)
	s.CostExGST = round(s.CostExGST, 2)
	s.GST = round(s.SubtotalExGST*GSTRate, 2)
	s.TotalIncGST = round(s.SubtotalExGST+s.GST, 2)
	s.GPPExGST = round(GPP(s.SubtotalExGST, s.CostExGST), 3)
	return s
}

// ComputeAll computes every input with one tax model.
func ComputeAll(inputs []Input, tax TaxModel) []Line {
	lines := make([]Line, 0, len(inputs))
	for _, in := range inputs {
		lines = append(lines, Compute(in, tax))
	}
	return lines
}
