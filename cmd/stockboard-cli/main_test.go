package main

import (
	"bytes"
	"context"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"stockboard/internal/domain"
	"stockboard/internal/httpapi"
	"stockboard/internal/store"
)

func newBackend(t *testing.T) string {
	t.Helper()
	return newBackendWith(t, true)
}

// newBackendWith serves an AAPL series, and the index only when withIndex
// is set.
func newBackendWith(t *testing.T, withIndex bool) string {
	t.Helper()
	ctx := context.Background()
	artifacts := store.NewArtifactStore(filepath.Join(t.TempDir(), "out"))
	idx := &domain.StocksIndex{Stocks: []domain.StockSummary{
		{Symbol: "AAPL", Name: "Apple Inc.", Exchange: "Q", MarketCategory: "Q", LastPrice: 11, LastDate: "2024-01-03", Variation: 1, VariationPercent: 10,
			Enrichment: &domain.Enrichment{Industry: "Computer Hardware", Sector: "Technology", MarketCap: 2.5e12, Tag1: "Phones"}},
		{Symbol: "IBM", Name: "International Business Machines", Exchange: "N", LastPrice: 160, LastDate: "2024-01-03", VariationPercent: -1},
	}}
	if withIndex {
		if err := artifacts.WriteIndex(ctx, idx); err != nil {
			t.Fatal(err)
		}
	}
	series := domain.StockSeries{Symbol: "AAPL", Prices: []domain.PricePoint{
		{Date: "2024-01-02", Open: 10, High: 10.5, Low: 9.5, Close: 10, Volume: 1000},
		{Date: "2024-01-03", Open: 10, High: 11.5, Low: 9.8, Close: 11, Volume: 3000},
	}}
	if err := artifacts.WriteSeries(ctx, series); err != nil {
		t.Fatal(err)
	}

	srv := httptest.NewServer(httpapi.NewServer(httpapi.Options{Artifacts: artifacts}).Handler())
	t.Cleanup(srv.Close)
	return srv.URL
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	if err != nil || !strings.Contains(out, "stockboard-cli") {
		t.Errorf("version = %q, %v", out, err)
	}
}

func TestStatsCommand(t *testing.T) {
	url := newBackend(t)
	out, err := run(t, "--server", url, "stats", "aapl", "--range", "all")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"Apple Inc.", "NASDAQ", "Technology", "$2.50T", "Phones", "$11.00", "+10.00%", "$11.50", "$9.50", "2.00K", "2 points"} {
		if !strings.Contains(out, want) {
			t.Errorf("stats output missing %q:\n%s", want, out)
		}
	}
}

func TestStatsCommandWithoutIndex(t *testing.T) {
	url := newBackendWith(t, false)
	out, err := run(t, "--server", url, "stats", "AAPL")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"index unavailable", "stocks-index.json", "not in index", "$11.00"} {
		if !strings.Contains(out, want) {
			t.Errorf("stats output missing %q:\n%s", want, out)
		}
	}
}

func TestStatsCommandErrors(t *testing.T) {
	url := newBackend(t)
	if _, err := run(t, "--server", url, "stats", "AAPL", "--range", "5Y"); err == nil {
		t.Error("expected bad range error")
	}
	if _, err := run(t, "--server", url, "stats", "MSFT"); err == nil {
		t.Error("expected missing series error")
	}
}

func TestSearchCommand(t *testing.T) {
	url := newBackend(t)
	out, err := run(t, "--server", url, "search", "machines")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "IBM") || strings.Contains(out, "AAPL") || !strings.Contains(out, "1 of 1 matches") {
		t.Errorf("search output:\n%s", out)
	}

	if _, err := run(t, "--server", url, "search", "--sort", "volume"); err == nil {
		t.Error("expected unknown sort error")
	}
}

func TestOverviewCommand(t *testing.T) {
	url := newBackend(t)
	out, err := run(t, "--server", url, "overview")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "NYSE, NASDAQ") {
		t.Errorf("overview output:\n%s", out)
	}
}

func TestPadOrTrunc(t *testing.T) {
	if got := padOrTrunc("AAPL", 6); got != "AAPL  " {
		t.Errorf("pad = %q", got)
	}
	if got := padOrTrunc("International", 6); got != "Inter…" {
		t.Errorf("trunc = %q", got)
	}
}
