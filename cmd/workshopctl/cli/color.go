package cli

import (
	"github.com/fatih/color"

	"github.com/cleanline/opsdesk/internal/pricing"
)

func flag(ok bool) string {
	if ok {
		return color.New(color.FgGreen).Sprint("yes")
	}
	return color.New(color.FgRed).Sprint("no")
}

func highlightLabel(h pricing.Highlight) string {
	switch h {
	case pricing.HighlightLowGPP:
		return color.New(color.FgRed, color.Bold).Sprint("LOW GPP")
	case pricing.HighlightEqualPrice:
		return color.New(color.FgYellow).Sprint("EQUAL TO RRP")
	case pricing.HighlightLowerPrice:
		return color.New(color.FgCyan).Sprint("BELOW RRP")
	}
	return color.New(color.FgGreen).Sprint("OK")
}
