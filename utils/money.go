package utils

import (
	"strings"

	"github.com/shopspring/decimal"
)

// FormatMoney formats an amount as a string like "$12,500.25".
// Uses comma as thousands separator and rounds to two decimals.
func FormatMoney(amount decimal.Decimal) string {
	neg := amount.IsNegative()
	if neg {
		amount = amount.Neg()
	}

	s := amount.StringFixed(2)
	intPart, fracPart, _ := strings.Cut(s, ".")

	var b strings.Builder
	// Pre-allocate: digits + separators + sign + $ + fraction
	b.Grow(len(intPart) + len(intPart)/3 + len(fracPart) + 3)
	if neg {
		b.WriteString("-$")
	} else {
		b.WriteString("$")
	}

	// Insert separators from the left.
	rem := len(intPart) % 3
	if rem == 0 {
		rem = 3
	}
	b.WriteString(intPart[:rem])
	for i := rem; i < len(intPart); i += 3 {
		b.WriteByte(',')
		b.WriteString(intPart[i : i+3])
	}
	b.WriteByte('.')
	b.WriteString(fracPart)

	return b.String()
}
