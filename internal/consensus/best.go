package consensus

import (
	"sort"

	"skuprice/domain/pricing"
)

type supplierQuote struct {
	key      string
	supplier string
	filename string
	price    float64
	source   pricing.PriceSource
}

// BestPrice groups selected prices by supplier (or by sheet label when the
// supplier is unknown), keeps each group's cheapest quote and returns the
// overall cheapest. The group key is reported as the supplier. Suppliers
// sharing that exact price are listed in Tie.
// It returns nil when no row has a price.
func BestPrice(files []pricing.FileResult) *pricing.BestPrice {
	byKey := make(map[string]int)
	var quotes []supplierQuote

	for _, f := range files {
		for _, m := range f.Matches {
			if !m.HasPrice() {
				continue
			}
			key := m.Supplier
			if key == "" {
				key = f.Label()
			}
			q := supplierQuote{
				key:      key,
				supplier: key,
				filename: f.Filename,
				price:    *m.PriceSelected,
				source: pricing.PriceSource{
					File:            f.Label(),
					RowIndex:        m.RowIndex,
					PriceColumnUsed: m.PriceColumnUsed,
				},
			}
			if i, ok := byKey[key]; ok {
				if q.price < quotes[i].price {
					quotes[i] = q
				}
				continue
			}
			byKey[key] = len(quotes)
			quotes = append(quotes, q)
		}
	}
	if len(quotes) == 0 {
		return nil
	}

	sort.SliceStable(quotes, func(a, b int) bool { return quotes[a].price < quotes[b].price })
	winner := quotes[0]
	best := &pricing.BestPrice{
		Supplier: winner.supplier,
		Filename: winner.filename,
		Price:    winner.price,
		Source:   winner.source,
	}

	var tie []pricing.TieEntry
	for _, q := range quotes {
		if q.price != winner.price {
			break
		}
		tie = append(tie, pricing.TieEntry{Supplier: q.supplier, Filename: q.filename, Price: q.price})
	}
	if len(tie) > 1 {
		best.Tie = tie
	}
	return best
}
