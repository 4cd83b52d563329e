package payture

import (
	"strings"

	"github.com/shopspring/decimal"
)

var separatorReplacer = strings.NewReplacer(".", "", ",", "")

// StripSeparators renders a total the way the Init command wants its Amount:
// the decimal string with fractional separators removed (126.13 -> "12613").
func StripSeparators(total decimal.Decimal) string {
	return separatorReplacer.Replace(total.String())
}

// MinorUnits converts a total to minor currency units (126.77 -> "12677").
// Notification amounts arrive in this form.
func MinorUnits(total decimal.Decimal) string {
	return total.Shift(2).String()
}
