package normalize

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"

	"skuprice/domain/pricing"
)

// UTF-8 text decoded as Latin-1/CP1252 shows up as "Ã©", "Â°", "â€"
var mojibakeMarker = regexp.MustCompile(`[ÃÂ].|â€`)

var pureNumber = regexp.MustCompile(`^\d+(\.\d+)?$`)

// FixMojibake reverses UTF-8 text that was decoded with a single-byte
// codepage. Input without the marker, or whose repair is not valid UTF-8,
// is returned unchanged.
func FixMojibake(s string) string {
	if s == "" || !mojibakeMarker.MatchString(s) {
		return s
	}
	buf := make([]byte, 0, len(s))
	for _, r := range s {
		if r <= 0xFF {
			buf = append(buf, byte(r))
			continue
		}
		b, ok := charmap.Windows1252.EncodeRune(r)
		if !ok {
			return s
		}
		buf = append(buf, b)
	}
	if !utf8.Valid(buf) {
		return s
	}
	decoded := string(buf)
	if decoded == s {
		return s
	}
	return decoded
}

// CleanDisplay repairs encoding damage, collapses whitespace and trims
func CleanDisplay(s string) string {
	s = FixMojibake(s)
	return strings.TrimSpace(whitespace.ReplaceAllString(s, " "))
}

// CleanCell is CleanDisplay over a raw cell
func CleanCell(c pricing.Cell) string {
	return CleanDisplay(c.String())
}

var productNameHeaders = map[string]bool{
	"producto":      true,
	"producto/desc": true,
	"descripcion":   true,
	"nombre":        true,
	"name":          true,
	"product":       true,
	"item":          true,
	"articulo":      true,
}

// GuessProductName picks a display name from a row whose sheet had no
// product-name column: a known name header first, else the longest
// non-numeric text between 4 and 160 characters.
func GuessProductName(record pricing.RowRecord) string {
	for _, f := range record {
		if productNameHeaders[NormalizeHeader(f.Header)] {
			if v := CleanDisplay(f.Value); v != "" {
				return v
			}
		}
	}

	best, bestLen := "", 0
	for _, f := range record {
		v := CleanDisplay(f.Value)
		if v == "" || pureNumber.MatchString(v) {
			continue
		}
		n := utf8.RuneCountInString(v)
		if n < 4 || n > 160 {
			continue
		}
		if n > bestLen {
			best, bestLen = v, n
		}
	}
	return best
}
