// Package dashboard provides the display-side helpers shared by the artifact
// server and the CLI: labels and number formatting, market overview counts,
// facet options, and table search and sorting over index rows.
package dashboard

import (
	"math/rand/v2"
	"sort"
	"strings"

	"stockboard/internal/domain"
)

// Overview counts the session movers in a set of index rows.
type Overview struct {
	Total     int `json:"total"`
	Gainers   int `json:"gainers"`
	Losers    int `json:"losers"`
	Unchanged int `json:"unchanged"`
}

// Summarize counts gainers, losers, and unchanged rows by variationPercent.
func Summarize(stocks []domain.StockSummary) Overview {
	o := Overview{Total: len(stocks)}
	for i := range stocks {
		switch v := stocks[i].VariationPercent; {
		case v > 0:
			o.Gainers++
		case v < 0:
			o.Losers++
		default:
			o.Unchanged++
		}
	}
	return o
}

// Facets lists the distinct non-empty filter values present in the rows,
// each sorted ascending.
type Facets struct {
	Exchanges  []string `json:"exchanges"`
	Sectors    []string `json:"sectors"`
	Industries []string `json:"industries"`
}

// CollectFacets gathers the filter options for a set of rows.
func CollectFacets(stocks []domain.StockSummary) Facets {
	ex, sec, ind := map[string]bool{}, map[string]bool{}, map[string]bool{}
	for i := range stocks {
		s := &stocks[i]
		if s.Exchange != "" {
			ex[s.Exchange] = true
		}
		if v := s.SectorOrEmpty(); v != "" {
			sec[v] = true
		}
		if v := s.IndustryOrEmpty(); v != "" {
			ind[v] = true
		}
	}
	return Facets{Exchanges: sortedKeys(ex), Sectors: sortedKeys(sec), Industries: sortedKeys(ind)}
}

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// ---------------------------------------------------------------------------
// Search
// ---------------------------------------------------------------------------

// Filter narrows index rows. Query is a case-insensitive substring matched
// against symbol, name, exchange, market category, industry, and sector.
// The facet fields must match exactly. Empty fields do not filter.
type Filter struct {
	Query    string
	Exchange string
	Sector   string
	Industry string
}

// Match reports whether s passes f.
func (f Filter) Match(s *domain.StockSummary) bool {
	if f.Exchange != "" && s.Exchange != f.Exchange {
		return false
	}
	if f.Sector != "" && s.SectorOrEmpty() != f.Sector {
		return false
	}
	if f.Industry != "" && s.IndustryOrEmpty() != f.Industry {
		return false
	}
	q := strings.ToLower(strings.TrimSpace(f.Query))
	if q == "" {
		return true
	}
	for _, field := range []string{s.Symbol, s.Name, s.Exchange, s.MarketCategory, s.IndustryOrEmpty(), s.SectorOrEmpty()} {
		if strings.Contains(strings.ToLower(field), q) {
			return true
		}
	}
	return false
}

// Search returns the rows matching f in their original order.
func Search(stocks []domain.StockSummary, f Filter) []domain.StockSummary {
	out := make([]domain.StockSummary, 0)
	for i := range stocks {
		if f.Match(&stocks[i]) {
			out = append(out, stocks[i])
		}
	}
	return out
}

// SortFields lists the columns SortBy accepts.
var SortFields = []string{"symbol", "name", "industry", "lastPrice", "variationPercent", "exchange", "sector"}

// SortBy orders stocks in place by field. Ties keep their relative order.
// It reports false, leaving stocks untouched, for an unknown field.
func SortBy(stocks []domain.StockSummary, field string, desc bool) bool {
	var less func(a, b *domain.StockSummary) bool
	switch field {
	case "symbol":
		less = func(a, b *domain.StockSummary) bool { return a.Symbol < b.Symbol }
	case "name":
		less = func(a, b *domain.StockSummary) bool { return a.Name < b.Name }
	case "industry":
		less = func(a, b *domain.StockSummary) bool { return a.IndustryOrEmpty() < b.IndustryOrEmpty() }
	case "sector":
		less = func(a, b *domain.StockSummary) bool { return a.SectorOrEmpty() < b.SectorOrEmpty() }
	case "exchange":
		less = func(a, b *domain.StockSummary) bool { return a.Exchange < b.Exchange }
	case "lastPrice":
		less = func(a, b *domain.StockSummary) bool { return a.LastPrice < b.LastPrice }
	case "variationPercent":
		less = func(a, b *domain.StockSummary) bool { return a.VariationPercent < b.VariationPercent }
	default:
		return false
	}
	sort.SliceStable(stocks, func(i, j int) bool {
		if desc {
			return less(&stocks[j], &stocks[i])
		}
		return less(&stocks[i], &stocks[j])
	})
	return true
}

// Sample returns up to n rows chosen uniformly at random without
// replacement. The input is not modified.
func Sample(stocks []domain.StockSummary, n int, rng *rand.Rand) []domain.StockSummary {
	if n <= 0 {
		return []domain.StockSummary{}
	}
	picked := make([]domain.StockSummary, len(stocks))
	copy(picked, stocks)
	rng.Shuffle(len(picked), func(i, j int) {
		picked[i], picked[j] = picked[j], picked[i]
	})
	if n < len(picked) {
		picked = picked[:n]
	}
	return picked
}
