package valueobject

import (
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	currencySymbol = "R$"
	// nbsp separates the symbol from the amount, as pt-BR number formatting does
	nbsp = "\u00a0"
)

// ParseCurrency converts a numeric value or a locale-formatted amount into a
// decimal. Both pt-BR ("1.234,56") and en-US ("1,234.56") notations are
// accepted: whichever of '.' or ',' appears last is the decimal separator and
// the other one is treated as a thousands separator. Anything that cannot be
// parsed yields zero.
func ParseCurrency(input any) decimal.Decimal {
	switch v := input.(type) {
	case nil:
		return decimal.Zero
	case decimal.Decimal:
		return v
	case *decimal.Decimal:
		if v == nil {
			return decimal.Zero
		}
		return *v
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return decimal.Zero
		}
		return decimal.NewFromFloat(v)
	case float32:
		return ParseCurrency(float64(v))
	case int:
		return decimal.NewFromInt(int64(v))
	case int32:
		return decimal.NewFromInt(int64(v))
	case int64:
		return decimal.NewFromInt(v)
	case []byte:
		return parseCurrencyString(string(v))
	case string:
		return parseCurrencyString(v)
	default:
		return parseCurrencyString(fmt.Sprint(v))
	}
}

func parseCurrencyString(s string) decimal.Decimal {
	var b strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' || r == ',' || r == '-' {
			b.WriteRune(r)
		}
	}
	cleaned := b.String()
	if cleaned == "" {
		return decimal.Zero
	}

	lastDot := strings.LastIndexByte(cleaned, '.')
	lastComma := strings.LastIndexByte(cleaned, ',')
	switch {
	case lastDot < 0 && lastComma < 0:
		// integer amount
	case lastComma > lastDot:
		cleaned = normalizeSeparators(cleaned, ',', '.')
	default:
		cleaned = normalizeSeparators(cleaned, '.', ',')
	}
	cleaned = strings.TrimSuffix(cleaned, ".")

	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// normalizeSeparators drops every thousands separator and every decimal
// separator except the last one, which becomes '.'.
func normalizeSeparators(s string, decimalSep, thousandsSep byte) string {
	last := strings.LastIndexByte(s, decimalSep)
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == thousandsSep:
			continue
		case c == decimalSep && i == last:
			b.WriteByte('.')
		case c == decimalSep:
			continue
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// FormatCurrency renders an amount as BRL: "R$ 1.234,56" (non-breaking space
// after the symbol), negative amounts as "-R$ 1.234,56".
func FormatCurrency(amount decimal.Decimal) string {
	sign := ""
	if amount.Round(2).IsNegative() {
		sign = "-"
	}
	return sign + currencySymbol + nbsp + groupedAmount(amount.Abs())
}

// FormatAmount renders an amount with pt-BR decimal notation and no grouping
// or symbol ("1234,56"). Spreadsheet exports use it.
func FormatAmount(amount decimal.Decimal) string {
	return strings.Replace(amount.StringFixed(2), ".", ",", 1)
}

// groupedAmount formats a non-negative amount as "1.234.567,89"
func groupedAmount(amount decimal.Decimal) string {
	fixed := amount.StringFixed(2)
	intPart, fracPart, _ := strings.Cut(fixed, ".")

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	b.WriteByte(',')
	b.WriteString(fracPart)
	return b.String()
}
