package enrich

import (
	"strings"

	"stockboard/internal/domain"
)

// MergeReport counts the outcome of one merge.
type MergeReport struct {
	Loaded    int
	Matched   int
	Unmatched int
}

// Merge assigns the enrichment fields of every index row whose upper-cased
// symbol has a metadata entry. Assignment is wholesale, so merging the same
// metadata again leaves the index unchanged. Rows without an entry are left
// as they are.
func Merge(idx *domain.StocksIndex, meta map[string]domain.Enrichment) MergeReport {
	report := MergeReport{Loaded: len(meta)}
	for i := range idx.Stocks {
		s := &idx.Stocks[i]
		e, ok := meta[strings.ToUpper(s.Symbol)]
		if !ok {
			report.Unmatched++
			continue
		}
		s.Enrichment = &e
		report.Matched++
	}
	return report
}
