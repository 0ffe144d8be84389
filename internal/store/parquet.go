package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/parquet-go/parquet-go"

	"stockboard/internal/domain"
)

// Compile-time interface check.
var _ SeriesStore = (*ParquetStore)(nil)

// ParquetStore implements SeriesStore using one Parquet file per symbol. It
// holds a columnar archive of the same series written as JSON artifacts.
type ParquetStore struct {
	DataDir string
}

// NewParquetStore creates a new ParquetStore rooted at the given data directory.
func NewParquetStore(dataDir string) *ParquetStore {
	return &ParquetStore{DataDir: dataDir}
}

// ---------------------------------------------------------------------------
// Parquet record types (on-disk schema)
// ---------------------------------------------------------------------------

// PriceRecord is the Parquet schema for one normalized daily observation.
// Date keeps the source text; Seq keeps the source order.
type PriceRecord struct {
	Symbol string  `parquet:"symbol"`
	Seq    int32   `parquet:"seq"`
	Date   string  `parquet:"date"`
	Open   float64 `parquet:"open"`
	High   float64 `parquet:"high"`
	Low    float64 `parquet:"low"`
	Close  float64 `parquet:"close"`
	Volume int64   `parquet:"volume"`
}

// ---------------------------------------------------------------------------
// SeriesStore implementation
// ---------------------------------------------------------------------------

// WriteSeries replaces the Parquet file for the series' symbol.
//
//	<DataDir>/prices/<SYMBOL>.parquet
func (s *ParquetStore) WriteSeries(_ context.Context, series domain.StockSeries) error {
	records := make([]PriceRecord, len(series.Prices))
	for i, p := range series.Prices {
		records[i] = PriceRecord{
			Symbol: series.Symbol,
			Seq:    int32(i),
			Date:   p.Date,
			Open:   p.Open,
			High:   p.High,
			Low:    p.Low,
			Close:  p.Close,
			Volume: p.Volume,
		}
	}
	if err := writeParquetFile(s.seriesPath(series.Symbol), records); err != nil {
		return fmt.Errorf("writing parquet series for %s: %w", series.Symbol, err)
	}
	return nil
}

// ReadSeries reads the archived series for symbol in its original order.
func (s *ParquetStore) ReadSeries(_ context.Context, symbol string) (domain.StockSeries, error) {
	series := domain.StockSeries{Symbol: symbol}
	if !validSymbol(symbol) {
		return series, fmt.Errorf("invalid symbol %q: %w", symbol, domain.ErrDataUnavailable)
	}

	path := s.seriesPath(symbol)
	records, err := readParquetFile[PriceRecord](path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return series, fmt.Errorf("%s: %w", path, domain.ErrDataUnavailable)
		}
		return series, fmt.Errorf("reading %s: %w", path, err)
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Seq < records[j].Seq
	})
	series.Prices = make([]domain.PricePoint, len(records))
	for i, r := range records {
		series.Prices[i] = domain.PricePoint{
			Date:   r.Date,
			Open:   r.Open,
			High:   r.High,
			Low:    r.Low,
			Close:  r.Close,
			Volume: r.Volume,
		}
	}
	return series, nil
}

// ListSymbols lists all symbols that have an archived series.
func (s *ParquetStore) ListSymbols(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(s.DataDir, PricesDir))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var symbols []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".parquet") {
			symbols = append(symbols, strings.TrimSuffix(e.Name(), ".parquet"))
		}
	}
	sort.Strings(symbols)
	return symbols, nil
}

// ---------------------------------------------------------------------------
// Path helpers
// ---------------------------------------------------------------------------

// seriesPath returns the filesystem path for a symbol's Parquet file.
// Layout: <dataDir>/prices/<SYMBOL>.parquet
func (s *ParquetStore) seriesPath(symbol string) string {
	return filepath.Join(s.DataDir, PricesDir, symbol+".parquet")
}

// ---------------------------------------------------------------------------
// Parquet file helpers
// ---------------------------------------------------------------------------

func writeParquetFile[T any](path string, records []T) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return parquet.WriteFile(path, records)
}

func readParquetFile[T any](path string) ([]T, error) {
	rows, err := parquet.ReadFile[T](path)
	if err != nil {
		return nil, err
	}
	return rows, nil
}
