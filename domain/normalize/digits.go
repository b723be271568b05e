package normalize

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"skuprice/domain/pricing"
)

const (
	MinGtinDigits = 12
	MaxGtinDigits = 14
)

// spreadsheet auto-formatting turns long identifiers into "7.502216803657e+12"
var sciNotation = regexp.MustCompile(`(?i)^-?\d+(\.\d+)?e\+\d+$`)

var whitespace = regexp.MustCompile(`\s+`)

// DigitsOnly strips everything but ASCII digits from s
func DigitsOnly(s string) string {
	s = strings.TrimSpace(s)
	if sciNotation.MatchString(s) {
		if n, err := strconv.ParseFloat(s, 64); err == nil && !math.IsInf(n, 0) {
			s = strconv.FormatFloat(math.Trunc(n), 'f', 0, 64)
		}
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			b.WriteByte(s[i])
		}
	}
	return b.String()
}

// CellDigits is DigitsOnly for a raw cell; native numbers are truncated toward zero first
func CellDigits(c pricing.Cell) string {
	switch c.Kind {
	case pricing.CellNumber:
		if math.IsNaN(c.Number) || math.IsInf(c.Number, 0) {
			return ""
		}
		return DigitsOnly(strconv.FormatFloat(math.Trunc(c.Number), 'f', 0, 64))
	case pricing.CellText:
		return DigitsOnly(c.Text)
	default:
		return ""
	}
}

// LooksLikeGtin reports whether the cell holds a 12-14 digit identifier
func LooksLikeGtin(c pricing.Cell) bool {
	return IsGtin(CellDigits(c))
}

// IsGtin reports whether an already-normalized digit string has GTIN length
func IsGtin(digits string) bool {
	return len(digits) >= MinGtinDigits && len(digits) <= MaxGtinDigits
}

// NormalizeHeader lowercases, strips diacritics and collapses whitespace.
// The result is for keyword matching only.
func NormalizeHeader(s string) string {
	s = stripMarks(strings.ToLower(s))
	return strings.TrimSpace(whitespace.ReplaceAllString(s, " "))
}

func stripMarks(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}
