package payroll

import (
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var currencyPrinter = message.NewPrinter(language.MustParse(DefaultLocale))

// FormatCurrency renders amount as whole escudos with locale digit
// grouping, e.g. "12 345 CVE".
func FormatCurrency(amount float64) string {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		amount = 0
	}
	rounded := int64(roundHalfUp(math.Abs(amount)))
	sign := ""
	if amount < 0 && rounded != 0 {
		sign = "-"
	}
	return sign + currencyPrinter.Sprintf("%d", rounded) + " " + DefaultCurrency
}

// FormatHours renders an hour figure with two decimals.
func FormatHours(hours float64) string {
	return currencyPrinter.Sprintf("%.2f h", hours)
}
