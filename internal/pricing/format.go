package pricing

import (
	"fmt"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// FormatMoney renders an amount with thousands grouping, e.g. $1,234.50.
func FormatMoney(v float64) string {
	v = round(v, 2)
	if v < 0 {
		return printer.Sprintf("-$%.2f", -v)
	}
	return printer.Sprintf("$%.2f", v)
}

// FormatPercent renders a percentage with the given precision.
func FormatPercent(v float64, places int) string {
	return printer.Sprintf(fmt.Sprintf("%%.%df%%%%", places), round(v, places))
}
