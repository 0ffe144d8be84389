package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"stockboard/internal/domain"
)

func sampleSeries(symbol string) domain.StockSeries {
	return domain.StockSeries{
		Symbol: symbol,
		Prices: []domain.PricePoint{
			{Date: "2024-01-03", Open: 185.5, High: 187, Low: 185, Close: 186, Volume: 45000000},
			{Date: "2024-01-02", Open: 185, High: 186.5, Low: 184, Close: 185.5, Volume: 50000000},
			{Date: "2024-01-04", Open: 186, High: 188, Low: 185.5, Close: 187.25, Volume: 47000000},
		},
	}
}

func sampleIndex() *domain.StocksIndex {
	return &domain.StocksIndex{Stocks: []domain.StockSummary{
		{Symbol: "MSFT", Name: "Microsoft Corporation", Exchange: "Q", MarketCategory: "Q",
			LastPrice: 410.5, LastDate: "2024-01-04", Variation: 2.5, VariationPercent: 0.61,
			Enrichment: &domain.Enrichment{Industry: "Software", Sector: "Technology", MarketCap: 3e12}},
		{Symbol: "AAPL", Name: "Apple Inc.", Exchange: "Q", MarketCategory: "Q",
			LastPrice: 187.25, LastDate: "2024-01-04", Variation: 1.25, VariationPercent: 0.67,
			Enrichment: &domain.Enrichment{Industry: "Hardware", Sector: "Technology", CEO: "Tim Cook"}},
		{Symbol: "IBM", Name: "International Business Machines", Exchange: "N",
			LastPrice: 160, LastDate: "2024-01-04", Variation: -1, VariationPercent: -0.62},
	}}
}

// ---------------------------------------------------------------------------
// ArtifactStore
// ---------------------------------------------------------------------------

func TestArtifactStorePaths(t *testing.T) {
	s := NewArtifactStore("/out")
	if got, want := s.IndexPath(), filepath.Join("/out", "stocks-index.json"); got != want {
		t.Errorf("IndexPath = %s, want %s", got, want)
	}
	if got, want := s.SeriesPath("BRK.A"), filepath.Join("/out", "prices", "BRK.A.json"); got != want {
		t.Errorf("SeriesPath = %s, want %s", got, want)
	}
}

func TestArtifactStoreSeriesRoundTrip(t *testing.T) {
	s := NewArtifactStore(t.TempDir())
	ctx := context.Background()

	in := sampleSeries("AAPL")
	if err := s.WriteSeries(ctx, in); err != nil {
		t.Fatalf("WriteSeries: %v", err)
	}

	raw, err := os.ReadFile(s.SeriesPath("AAPL"))
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(raw), "\n") {
		t.Error("price artifact should be compact JSON")
	}
	if !strings.HasPrefix(string(raw), `{"symbol":"AAPL","prices":[{"date":"2024-01-03"`) {
		t.Errorf("unexpected artifact prefix: %.60s", raw)
	}

	out, err := s.ReadSeries(ctx, "AAPL")
	if err != nil {
		t.Fatalf("ReadSeries: %v", err)
	}
	if len(out.Prices) != 3 || out.Prices[0] != in.Prices[0] || out.Prices[2] != in.Prices[2] {
		t.Errorf("round trip mismatch: %+v", out.Prices)
	}
}

func TestArtifactStoreMissing(t *testing.T) {
	s := NewArtifactStore(t.TempDir())
	ctx := context.Background()

	if _, err := s.ReadSeries(ctx, "NOPE"); !errors.Is(err, domain.ErrDataUnavailable) {
		t.Errorf("ReadSeries missing: err = %v, want ErrDataUnavailable", err)
	}
	if _, err := s.ReadSeries(ctx, "../secret"); !errors.Is(err, domain.ErrDataUnavailable) {
		t.Errorf("ReadSeries traversal: err = %v, want ErrDataUnavailable", err)
	}
	if _, err := s.ReadIndex(ctx); !errors.Is(err, domain.ErrDataUnavailable) {
		t.Errorf("ReadIndex missing: err = %v, want ErrDataUnavailable", err)
	}
	syms, err := s.ListSymbols(ctx)
	if err != nil || len(syms) != 0 {
		t.Errorf("ListSymbols on empty dir = %v, %v", syms, err)
	}
}

func TestArtifactStoreIndex(t *testing.T) {
	s := NewArtifactStore(t.TempDir())
	ctx := context.Background()

	if err := s.WriteIndex(ctx, sampleIndex()); err != nil {
		t.Fatalf("WriteIndex: %v", err)
	}
	raw, err := os.ReadFile(s.IndexPath())
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(raw), "{\n  \"stocks\": [\n    {\n") {
		t.Errorf("index should be indented with two spaces:\n%.40s", raw)
	}
	// Un-enriched rows carry no enrichment keys.
	ibm := raw[strings.Index(string(raw), `"IBM"`):]
	if strings.Contains(string(ibm), "industry") {
		t.Error("un-enriched summary should omit enrichment fields")
	}

	idx, err := s.ReadIndex(ctx)
	if err != nil {
		t.Fatalf("ReadIndex: %v", err)
	}
	if len(idx.Stocks) != 3 {
		t.Fatalf("got %d stocks, want 3", len(idx.Stocks))
	}
	if !idx.Stocks[0].Enriched() || idx.Stocks[0].Industry != "Software" {
		t.Errorf("MSFT enrichment lost: %+v", idx.Stocks[0])
	}
	if idx.Stocks[2].Enriched() {
		t.Error("IBM should not be enriched after round trip")
	}
}

func TestEncodeIndexEmpty(t *testing.T) {
	data, err := EncodeIndex(&domain.StocksIndex{})
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "{\n  \"stocks\": []\n}" {
		t.Errorf("EncodeIndex(empty) = %q", data)
	}
}

func TestArtifactStoreListSymbols(t *testing.T) {
	s := NewArtifactStore(t.TempDir())
	ctx := context.Background()
	for _, sym := range []string{"MSFT", "AAPL", "BRK.B"} {
		if err := s.WriteSeries(ctx, domain.StockSeries{Symbol: sym}); err != nil {
			t.Fatal(err)
		}
	}
	syms, err := s.ListSymbols(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Join(syms, ",") != "AAPL,BRK.B,MSFT" {
		t.Errorf("ListSymbols = %v", syms)
	}
}

// ---------------------------------------------------------------------------
// ParquetStore
// ---------------------------------------------------------------------------

func TestParquetStorePath(t *testing.T) {
	ps := NewParquetStore("/data")
	want := filepath.Join("/data", "prices", "AAPL.parquet")
	if got := ps.seriesPath("AAPL"); got != want {
		t.Errorf("seriesPath mismatch:\n  got  %s\n  want %s", got, want)
	}
}

func TestParquetStoreRoundTripKeepsOrder(t *testing.T) {
	ps := NewParquetStore(t.TempDir())
	ctx := context.Background()

	in := sampleSeries("AAPL")
	if err := ps.WriteSeries(ctx, in); err != nil {
		t.Fatalf("WriteSeries: %v", err)
	}
	out, err := ps.ReadSeries(ctx, "AAPL")
	if err != nil {
		t.Fatalf("ReadSeries: %v", err)
	}
	if out.Symbol != "AAPL" || len(out.Prices) != len(in.Prices) {
		t.Fatalf("got %+v", out)
	}
	for i := range in.Prices {
		if out.Prices[i] != in.Prices[i] {
			t.Errorf("point %d: got %+v, want %+v", i, out.Prices[i], in.Prices[i])
		}
	}

	syms, err := ps.ListSymbols(ctx)
	if err != nil || len(syms) != 1 || syms[0] != "AAPL" {
		t.Errorf("ListSymbols = %v, %v", syms, err)
	}
}

func TestParquetStoreMissing(t *testing.T) {
	ps := NewParquetStore(t.TempDir())
	if _, err := ps.ReadSeries(context.Background(), "NOPE"); err == nil {
		t.Error("ReadSeries on missing file should fail")
	}
}

// ---------------------------------------------------------------------------
// SQLiteCatalog
// ---------------------------------------------------------------------------

func newCatalog(t *testing.T) *SQLiteCatalog {
	t.Helper()
	c, err := NewSQLiteCatalog(filepath.Join(t.TempDir(), "catalog.db"))
	if err != nil {
		t.Fatalf("NewSQLiteCatalog: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	if err := c.ReplaceIndex(context.Background(), sampleIndex()); err != nil {
		t.Fatalf("ReplaceIndex: %v", err)
	}
	return c
}

func symbolsOf(rows []domain.StockSummary) string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.Symbol
	}
	return strings.Join(out, ",")
}

func TestSQLiteCatalogSearch(t *testing.T) {
	c := newCatalog(t)
	ctx := context.Background()

	tests := []struct {
		name string
		q    Query
		want string
	}{
		{"all in index order", Query{}, "MSFT,AAPL,IBM"},
		{"text matches name", Query{Text: "apple"}, "AAPL"},
		{"text matches industry", Query{Text: "SOFT"}, "MSFT"},
		{"text matches exchange", Query{Text: "n"}, "MSFT,AAPL,IBM"},
		{"percent is literal", Query{Text: "%"}, ""},
		{"underscore is literal", Query{Text: "_"}, ""},
		{"exchange facet", Query{Exchange: "N"}, "IBM"},
		{"sector facet", Query{Sector: "Technology"}, "MSFT,AAPL"},
		{"facet and text", Query{Sector: "Technology", Text: "hard"}, "AAPL"},
		{"sort by price", Query{SortBy: "lastPrice"}, "IBM,AAPL,MSFT"},
		{"sort by change desc", Query{SortBy: "variationPercent", Desc: true}, "AAPL,MSFT,IBM"},
		{"unknown sort keeps order", Query{SortBy: "pos; DROP TABLE stock_rows"}, "MSFT,AAPL,IBM"},
		{"limit", Query{Limit: 2}, "MSFT,AAPL"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, err := c.Search(ctx, tt.q)
			if err != nil {
				t.Fatalf("Search: %v", err)
			}
			if got := symbolsOf(rows); got != tt.want {
				t.Errorf("Search(%+v) = %s, want %s", tt.q, got, tt.want)
			}
		})
	}
}

func TestSQLiteCatalogRestoresEnrichment(t *testing.T) {
	c := newCatalog(t)
	rows, err := c.Search(context.Background(), Query{Text: "AAPL"})
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 || !rows[0].Enriched() || rows[0].CEO != "Tim Cook" {
		t.Errorf("AAPL row = %+v", rows)
	}

	rows, _ = c.Search(context.Background(), Query{Exchange: "N"})
	if len(rows) != 1 || rows[0].Enriched() {
		t.Errorf("IBM should come back un-enriched: %+v", rows)
	}
}

func TestSQLiteCatalogReplace(t *testing.T) {
	c := newCatalog(t)
	ctx := context.Background()

	smaller := &domain.StocksIndex{Stocks: []domain.StockSummary{{Symbol: "TSLA", Name: "Tesla"}}}
	if err := c.ReplaceIndex(ctx, smaller); err != nil {
		t.Fatal(err)
	}
	n, err := c.Count(ctx)
	if err != nil || n != 1 {
		t.Errorf("Count after replace = %d, %v; want 1", n, err)
	}
}

func TestSQLiteCatalogKeepsDuplicateSymbols(t *testing.T) {
	c := newCatalog(t)
	ctx := context.Background()

	dup := &domain.StocksIndex{Stocks: []domain.StockSummary{
		{Symbol: "ABC", Name: "ABC Common"},
		{Symbol: "XYZ", Name: "XYZ Corp"},
		{Symbol: "ABC", Name: "ABC Class B"},
	}}
	if err := c.ReplaceIndex(ctx, dup); err != nil {
		t.Fatal(err)
	}
	if n, err := c.Count(ctx); err != nil || n != len(dup.Stocks) {
		t.Errorf("Count = %d, %v; want %d", n, err, len(dup.Stocks))
	}
	rows, err := c.Search(ctx, Query{Text: "abc"})
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 || rows[0].Name != "ABC Common" || rows[1].Name != "ABC Class B" {
		t.Errorf("duplicate rows = %+v", rows)
	}
}
