// Package money holds the decimal arithmetic and display formatting used
// for currency amounts.
package money

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Currency is the display suffix for amounts.
const Currency = "VND"

var (
	hundred = decimal.NewFromInt(100)
	printer = message.NewPrinter(language.English)
)

// FromMinor converts an integer amount in minor units to a decimal.
func FromMinor(v int64) decimal.Decimal {
	return decimal.NewFromInt(v)
}

// Percent returns pct percent of amount.
func Percent(amount decimal.Decimal, pct float64) decimal.Decimal {
	return amount.Mul(decimal.NewFromFloat(pct)).Div(hundred)
}

// Ratio returns part/whole in percent, or zero when whole is zero.
func Ratio(part, whole decimal.Decimal) float64 {
	if whole.IsZero() {
		return 0
	}
	return part.Mul(hundred).Div(whole).InexactFloat64()
}

// Format rounds d to a whole amount and groups thousands, e.g. 120,000.
func Format(d decimal.Decimal) string {
	return printer.Sprintf("%d", d.Round(0).IntPart())
}

// FormatVND is Format with the currency suffix.
func FormatVND(d decimal.Decimal) string {
	return Format(d) + " " + Currency
}

// FormatInt formats an integer amount with thousand separators.
func FormatInt(v int64) string {
	return printer.Sprintf("%d", v)
}
