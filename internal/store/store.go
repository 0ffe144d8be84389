// Package store defines storage interfaces for the pipeline artifacts and
// their derived archives: per-symbol price series, the stocks index, and a
// queryable catalog of index rows.
package store

import (
	"context"

	"stockboard/internal/domain"
)

// SeriesStore persists and retrieves per-symbol price series.
type SeriesStore interface {
	// WriteSeries persists one symbol's full series, replacing any previous
	// copy.
	WriteSeries(ctx context.Context, series domain.StockSeries) error

	// ReadSeries returns the stored series for symbol. A missing series
	// yields an error wrapping domain.ErrDataUnavailable.
	ReadSeries(ctx context.Context, symbol string) (domain.StockSeries, error)

	// ListSymbols returns all symbols with a stored series, sorted.
	ListSymbols(ctx context.Context) ([]string, error)
}

// IndexStore persists and retrieves the consolidated stocks index.
type IndexStore interface {
	// WriteIndex replaces the stored index.
	WriteIndex(ctx context.Context, idx *domain.StocksIndex) error

	// ReadIndex returns the stored index. A missing index yields an error
	// wrapping domain.ErrDataUnavailable.
	ReadIndex(ctx context.Context) (*domain.StocksIndex, error)
}

// Query selects and orders catalog rows. Empty fields do not filter.
type Query struct {
	Text     string // case-insensitive substring over the searchable columns
	Exchange string // exact match
	Sector   string // exact match
	Industry string // exact match
	SortBy   string // symbol, name, industry, lastPrice, variationPercent, exchange, sector
	Desc     bool
	Limit    int // 0 means no limit
}

// Catalog answers search queries over index rows.
type Catalog interface {
	// Search returns the rows matching q.
	Search(ctx context.Context, q Query) ([]domain.StockSummary, error)
}

// CatalogLoader rebuilds a catalog from a complete index.
type CatalogLoader interface {
	ReplaceIndex(ctx context.Context, idx *domain.StocksIndex) error
}
