// Package money converts integer cent amounts into display strings.
package money

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Amount returns cents as a two-decimal string, e.g. 1250 -> "12.50".
func Amount(cents int64) string {
	return decimal.NewFromInt(cents).Shift(-2).StringFixed(2)
}

// FormatCents renders cents with an upper-case currency code, e.g. "12.50 USD".
func FormatCents(cents int64, currency string) string {
	code := strings.ToUpper(strings.TrimSpace(currency))
	if code == "" {
		return Amount(cents)
	}
	return Amount(cents) + " " + code
}
