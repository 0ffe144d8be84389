package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"stockboard/internal/domain"
)

// Compile-time interface checks.
var _ SeriesStore = (*ArtifactStore)(nil)
var _ IndexStore = (*ArtifactStore)(nil)

// Artifact file names under the output directory.
const (
	IndexFile = "stocks-index.json"
	PricesDir = "prices"
)

// ArtifactStore reads and writes the static JSON artifacts served to the UI.
//
// Layout:
//
//	<OutputDir>/stocks-index.json
//	<OutputDir>/prices/<SYMBOL>.json
type ArtifactStore struct {
	OutputDir string
}

// NewArtifactStore creates an ArtifactStore rooted at outputDir.
func NewArtifactStore(outputDir string) *ArtifactStore {
	return &ArtifactStore{OutputDir: outputDir}
}

// IndexPath returns the path of the index artifact.
func (s *ArtifactStore) IndexPath() string {
	return filepath.Join(s.OutputDir, IndexFile)
}

// SeriesPath returns the path of the price artifact for symbol. The symbol
// is used verbatim, as written by the pipeline.
func (s *ArtifactStore) SeriesPath(symbol string) string {
	return filepath.Join(s.OutputDir, PricesDir, symbol+".json")
}

// ---------------------------------------------------------------------------
// IndexStore implementation
// ---------------------------------------------------------------------------

// WriteIndex writes the index as two-space indented JSON.
func (s *ArtifactStore) WriteIndex(_ context.Context, idx *domain.StocksIndex) error {
	data, err := EncodeIndex(idx)
	if err != nil {
		return err
	}
	return writeFile(s.IndexPath(), data)
}

// ReadIndex reads the index artifact.
func (s *ArtifactStore) ReadIndex(_ context.Context) (*domain.StocksIndex, error) {
	data, err := readFile(s.IndexPath())
	if err != nil {
		return nil, err
	}
	idx := &domain.StocksIndex{}
	if err := json.Unmarshal(data, idx); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", s.IndexPath(), err)
	}
	return idx, nil
}

// EncodeIndex renders the index exactly as it is written to disk.
func EncodeIndex(idx *domain.StocksIndex) ([]byte, error) {
	if idx.Stocks == nil {
		idx = &domain.StocksIndex{Stocks: []domain.StockSummary{}}
	}
	data, err := json.MarshalIndent(idx, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding stocks index: %w", err)
	}
	return data, nil
}

// ---------------------------------------------------------------------------
// SeriesStore implementation
// ---------------------------------------------------------------------------

// WriteSeries writes one price artifact as compact JSON.
func (s *ArtifactStore) WriteSeries(_ context.Context, series domain.StockSeries) error {
	if series.Prices == nil {
		series.Prices = []domain.PricePoint{}
	}
	data, err := json.Marshal(series)
	if err != nil {
		return fmt.Errorf("encoding series %s: %w", series.Symbol, err)
	}
	return writeFile(s.SeriesPath(series.Symbol), data)
}

// ReadSeries reads one price artifact.
func (s *ArtifactStore) ReadSeries(_ context.Context, symbol string) (domain.StockSeries, error) {
	var series domain.StockSeries
	if !validSymbol(symbol) {
		return series, fmt.Errorf("invalid symbol %q: %w", symbol, domain.ErrDataUnavailable)
	}
	path := s.SeriesPath(symbol)
	data, err := readFile(path)
	if err != nil {
		return series, err
	}
	if err := json.Unmarshal(data, &series); err != nil {
		return series, fmt.Errorf("decoding %s: %w", path, err)
	}
	return series, nil
}

// ListSymbols lists every symbol with a price artifact.
func (s *ArtifactStore) ListSymbols(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(s.OutputDir, PricesDir))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var symbols []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".json") {
			symbols = append(symbols, strings.TrimSuffix(e.Name(), ".json"))
		}
	}
	sort.Strings(symbols)
	return symbols, nil
}

// ---------------------------------------------------------------------------
// File helpers
// ---------------------------------------------------------------------------

// validSymbol rejects symbols that would escape the prices directory.
func validSymbol(symbol string) bool {
	return symbol != "" && symbol != "." && symbol != ".." &&
		!strings.ContainsAny(symbol, `/\`)
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

func readFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", path, domain.ErrDataUnavailable)
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return data, nil
}
