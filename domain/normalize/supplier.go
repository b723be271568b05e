package normalize

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// supplierAliases maps a folded supplier name, legal suffix removed, to its canonical name
var supplierAliases = map[string]string{
	"ACME":                 "ACME",
	"NADRO":                "NADRO",
	"MARZAM":               "MARZAM",
	"CASA MARZAM":          "MARZAM",
	"FANASA":               "FANASA",
	"FARMACOS NACIONALES":  "FANASA",
	"SAUFER":               "SAUFER",
	"DISTRIBUIDORA SAUFER": "SAUFER",
}

var (
	nonWord     = regexp.MustCompile(`[^\w\s]`)
	legalSuffix = regexp.MustCompile(`(\s+(S\s?A\s?P\s?I|S\s?A\s?B|S\s?A|S\s?DE\s?R\s?L|S\s?C|INC|LLC|LTD))?(\s+DE\s+C\s?V)?$`)
)

func foldSupplier(s string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)))
	if out, _, err := transform.String(t, s); err == nil {
		s = out
	}
	s = nonWord.ReplaceAllString(s, "")
	s = whitespace.ReplaceAllString(s, " ")
	return strings.ToUpper(strings.TrimSpace(s))
}

// NormalizeSupplier maps known legal-entity spellings ("Acme, S.A. de C.V.")
// to one canonical name; unknown suppliers come back trimmed but otherwise as given.
func NormalizeSupplier(input string) string {
	raw := strings.TrimSpace(input)
	if raw == "" {
		return ""
	}
	key := foldSupplier(raw)
	if canonical, ok := supplierAliases[key]; ok {
		return canonical
	}
	stripped := strings.TrimSpace(legalSuffix.ReplaceAllString(key, ""))
	if canonical, ok := supplierAliases[stripped]; ok {
		return canonical
	}
	return raw
}
