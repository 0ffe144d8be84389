// Package domain defines the core types shared across the stockboard
// pipeline, server, and client: raw and normalized price rows, per-symbol
// series, and the consolidated stocks index.
package domain

// ---------------------------------------------------------------------------
// Price data
// ---------------------------------------------------------------------------

// RawPriceRow is one trading session exactly as read from a per-symbol
// OHLCV CSV file. Fields are kept as text; coercion happens in Normalize.
type RawPriceRow struct {
	Date     string
	Open     string
	High     string
	Low      string
	Close    string
	AdjClose string
	Volume   string
}

// PricePoint is a normalized OHLCV observation as written to the per-symbol
// price artifact.
type PricePoint struct {
	Date   string  `json:"date"`
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume int64   `json:"volume"`
}

// StockSeries is the full price history for one symbol. Prices keep the
// order of the source file, which is expected to be ascending by date; no
// sorting is ever applied.
type StockSeries struct {
	Symbol string       `json:"symbol"`
	Prices []PricePoint `json:"prices"`
}

// ---------------------------------------------------------------------------
// Index data
// ---------------------------------------------------------------------------

// SymbolMeta is one row of the master symbol metadata table.
type SymbolMeta struct {
	Symbol          string
	SecurityName    string
	ListingExchange string
	MarketCategory  string
	ETF             string
}

// Enrichment holds the descriptive company fields joined onto a summary by
// the metadata merge stage.
type Enrichment struct {
	ShortName   string  `json:"shortName"`
	Industry    string  `json:"industry"`
	Description string  `json:"description"`
	Website     string  `json:"website"`
	Logo        string  `json:"logo"`
	CEO         string  `json:"ceo"`
	MarketCap   float64 `json:"marketCap"`
	Sector      string  `json:"sector"`
	Tag1        string  `json:"tag1"`
	Tag2        string  `json:"tag2"`
	Tag3        string  `json:"tag3"`
}

// StockSummary is one row of the stocks index.
//
// The embedded *Enrichment is nil until the merge stage finds a matching
// metadata row; while nil its fields are omitted from JSON entirely.
type StockSummary struct {
	Symbol           string  `json:"symbol"`
	Name             string  `json:"name"`
	Exchange         string  `json:"exchange"`
	MarketCategory   string  `json:"marketCategory"`
	IsETF            bool    `json:"isEtf"`
	LastPrice        float64 `json:"lastPrice"`
	LastDate         string  `json:"lastDate"`
	Variation        float64 `json:"variation"`
	VariationPercent float64 `json:"variationPercent"`

	*Enrichment
}

// Enriched reports whether metadata has been merged into the summary.
func (s *StockSummary) Enriched() bool {
	return s.Enrichment != nil
}

// IndustryOrEmpty returns the enrichment industry, or "" when not enriched.
func (s *StockSummary) IndustryOrEmpty() string {
	if s.Enrichment == nil {
		return ""
	}
	return s.Enrichment.Industry
}

// SectorOrEmpty returns the enrichment sector, or "" when not enriched.
func (s *StockSummary) SectorOrEmpty() string {
	if s.Enrichment == nil {
		return ""
	}
	return s.Enrichment.Sector
}

// StocksIndex is the consolidated index artifact.
type StocksIndex struct {
	Stocks []StockSummary `json:"stocks"`
}

// Find returns the summary for symbol, or nil.
func (idx *StocksIndex) Find(symbol string) *StockSummary {
	for i := range idx.Stocks {
		if idx.Stocks[i].Symbol == symbol {
			return &idx.Stocks[i]
		}
	}
	return nil
}

// MetadataRecord is one row of the company metadata table, keyed by the
// upper-cased ticker.
type MetadataRecord struct {
	Ticker string
	Enrichment
}
