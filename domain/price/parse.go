// Package price turns raw spreadsheet cells into positive prices.
package price

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"skuprice/domain/pricing"
)

var (
	hasLetters     = regexp.MustCompile(`[A-Za-z]`)
	currencyWord   = regexp.MustCompile(`(?i)\b(mxn|usd|mn|mx|pesos?)\b`)
	currencySymbol = regexp.MustCompile(`[$₱€£]`)
	currencyToken  = regexp.MustCompile(`(?i)\$|mxn|m\.n\.|mn|usd`)
	nonNumeric     = regexp.MustCompile(`[^\d.,\-]`)
	leadingNumber  = regexp.MustCompile(`^-?(\d+\.?\d*|\.\d+)`)
)

// Parse returns the cell as a positive finite price.
// Alphanumeric codes such as "REF-001" are rejected unless the text also
// carries a currency marker ("$1,234.56 MXN").
func Parse(c pricing.Cell) (float64, bool) {
	switch c.Kind {
	case pricing.CellNumber:
		if math.IsNaN(c.Number) || math.IsInf(c.Number, 0) || c.Number <= 0 {
			return 0, false
		}
		return c.Number, true
	case pricing.CellText:
		return ParseString(c.Text)
	default:
		return 0, false
	}
}

// ParseString applies Parse's rules to text
func ParseString(raw string) (float64, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, false
	}
	if hasLetters.MatchString(s) && !currencySymbol.MatchString(s) && !currencyWord.MatchString(s) {
		return 0, false
	}

	s = nonNumeric.ReplaceAllString(s, "")
	if !strings.ContainsAny(s, "0123456789") {
		return 0, false
	}
	s = normalizeSeparators(s)

	num := leadingNumber.FindString(s)
	if num == "" {
		return 0, false
	}
	d, err := decimal.NewFromString(num)
	if err != nil {
		return 0, false
	}
	v, _ := d.Float64()
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return 0, false
	}
	return v, true
}

// normalizeSeparators rewrites s so that "." is the only decimal separator.
// With both separators present the last one is the decimal mark; a lone
// comma is a decimal comma and earlier commas are thousands separators.
func normalizeSeparators(s string) string {
	lastComma := strings.LastIndex(s, ",")
	lastDot := strings.LastIndex(s, ".")
	switch {
	case lastComma >= 0 && lastDot >= 0:
		if lastDot > lastComma {
			return strings.ReplaceAll(s, ",", "")
		}
		s = strings.ReplaceAll(s, ".", "")
		return decimalComma(s)
	case lastComma >= 0:
		return decimalComma(s)
	default:
		return s
	}
}

func decimalComma(s string) string {
	i := strings.LastIndex(s, ",")
	return strings.ReplaceAll(s[:i], ",", "") + "." + s[i+1:]
}

// HasCurrencyToken reports whether a raw cell carries a currency marker
func HasCurrencyToken(c pricing.Cell) bool {
	if c.Kind != pricing.CellText {
		return false
	}
	return currencyToken.MatchString(c.Text)
}

// HasFraction reports whether v has a non-integer component
func HasFraction(v float64) bool {
	return math.Abs(v-math.Trunc(v)) > 1e-9
}

// Format renders a parsed price so that ParseString reads it back unchanged
func Format(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
