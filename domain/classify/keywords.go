package classify

import (
	"strings"

	"skuprice/domain/pricing"
)

// roleKeywords are matched as substrings of normalized headers (lowercase, no diacritics)
var roleKeywords = []struct {
	role  pricing.Role
	words []string
}{
	{pricing.RoleIdentifier, []string{
		"sku", "gtin", "ean", "upc", "codigo", "codigo de barras", "codigo barras",
		"clave", "product id", "id producto", "code", "cod",
	}},
	{pricing.RolePrice, []string{
		"precio", "price", "costo", "cost", "unit price", "precio unitario", "precio sin iva",
		"precio con iva", "mayoreo", "menudeo", "lista", "neto", "publico",
	}},
	{pricing.RoleSupplier, []string{
		"proveedor", "supplier", "vendor", "marca", "brand", "fabricante", "manufacturer",
		"distribuidor",
	}},
	{pricing.RoleProductName, []string{
		"producto", "descripcion", "nombre", "nombre producto", "desc", "product", "item",
		"articulo",
	}},
	{pricing.RoleFormula, []string{
		"formula", "composicion", "formulacion", "presentacion",
	}},
	{pricing.RoleLab, []string{
		"lab", "laboratorio", "marca", "brand", "fabricante", "manufacturer",
	}},
}

// PriceWords mark a header as price-like for trust and scoring decisions
var PriceWords = []string{
	"precio", "price", "costo", "cost", "neto", "unit", "unitario", "publico", "menudeo", "lista",
}

// WholesaleWords mark tiered/bulk price columns
var WholesaleWords = []string{"mayoreo", "mayorista", "aaa", " aa", " aa "}

// ForeignCurrencyWords mark columns quoted in another currency
var ForeignCurrencyWords = []string{"usd", "dlls", "dls", "us$"}

// profilerPriceWords and nonPriceWords feed the statistical profiler's header bonus/penalty
var (
	profilerPriceWords = []string{"precio", "price", "costo", "cost", "neto", "unit", "unitario", "p.lista", "lista", "aaa"}
	nonPriceWords      = []string{"exist", "existencia", "stock", "qty", "cantidad", "pzas", "pz", "unid", "u.", "unidad"}
)

// priceHeaderHints rank headers when a sheet must commit to one price column
var priceHeaderHints = []string{
	"precio", "precio unitario", "p. unit", "p.unit", "p lista", "p.lista", "price",
	"unit price", "neto", "costo", "cost", "$", "mxn",
}

// SelectionPriority is the header order used to pick a row's price before falling back to the minimum
var SelectionPriority = []string{"precio unitario", "unit price", "costo", "cost", "precio neto", "neto"}

// ContainsAny reports whether header contains any of words
func ContainsAny(header string, words []string) bool {
	for _, w := range words {
		if strings.Contains(header, w) {
			return true
		}
	}
	return false
}

// RolesFor returns every role whose keywords appear in a normalized header
func RolesFor(normalizedHeader string) []pricing.Role {
	var roles []pricing.Role
	for _, rk := range roleKeywords {
		if ContainsAny(normalizedHeader, rk.words) {
			roles = append(roles, rk.role)
		}
	}
	return roles
}
