// Package preprocess turns the raw per-symbol price CSVs and the master
// symbol table into the price artifacts and the stocks index.
package preprocess

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"stockboard/internal/csvline"
	"stockboard/internal/domain"
)

// Source layout under the configured source directory.
const (
	MasterFile = "symbols_valid_meta.csv"
	StocksDir  = "stocks"
)

// Master table column names.
const (
	colSymbol          = "Symbol"
	colSecurityName    = "Security Name"
	colListingExchange = "Listing Exchange"
	colMarketCategory  = "Market Category"
	colETF             = "ETF"
)

// LoadSymbolMeta reads the master symbol table at path. A missing file
// yields an error wrapping domain.ErrMissingInput.
func LoadSymbolMeta(path string) ([]domain.SymbolMeta, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("master symbol table %s: %w", path, domain.ErrMissingInput)
		}
		return nil, err
	}
	defer f.Close()

	table, err := csvline.ReadTable(f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	meta := make([]domain.SymbolMeta, 0, len(table.Rows))
	for _, row := range table.Rows {
		meta = append(meta, domain.SymbolMeta{
			Symbol:          row.Get(colSymbol),
			SecurityName:    row.Get(colSecurityName),
			ListingExchange: row.Get(colListingExchange),
			MarketCategory:  row.Get(colMarketCategory),
			ETF:             row.Get(colETF),
		})
	}
	return meta, nil
}

// Eligible drops every row flagged as an ETF. Only the exact value "Y"
// marks an ETF; anything else, including an empty column, is kept.
func Eligible(meta []domain.SymbolMeta) []domain.SymbolMeta {
	out := make([]domain.SymbolMeta, 0, len(meta))
	for _, m := range meta {
		if m.ETF != "Y" {
			out = append(out, m)
		}
	}
	return out
}
