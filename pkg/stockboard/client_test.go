package stockboard

import (
	"context"
	"errors"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

const indexJSON = `{
  "stocks": [
    {"symbol": "AAPL", "name": "Apple Inc.", "exchange": "Q", "marketCategory": "Q", "isEtf": false,
     "lastPrice": 180.5, "lastDate": "2024-01-03", "variation": -1.2, "variationPercent": -0.66,
     "industry": "Computer Hardware", "sector": "Technology", "logo": "aapl.png"},
    {"symbol": "IBM", "name": "International Business Machines", "exchange": "N", "marketCategory": "", "isEtf": false,
     "lastPrice": 160, "lastDate": "2024-01-03", "variation": 0, "variationPercent": 0}
  ]
}`

const aaplJSON = `{"symbol":"AAPL","prices":[{"date":"2024-01-02","open":1,"high":2,"low":0.5,"close":1.5,"volume":100},{"date":"2024-01-03","open":1.5,"high":2,"low":1,"close":1.8,"volume":200}]}`

type testServer struct {
	*httptest.Server
	indexHits  atomic.Int32
	seriesHits atomic.Int32
	indexDown  atomic.Bool
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ts := &testServer{}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /data/stocks-index.json", func(w http.ResponseWriter, _ *http.Request) {
		ts.indexHits.Add(1)
		if ts.indexDown.Load() {
			http.Error(w, `{"error":"data unavailable"}`, http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(indexJSON))
	})
	mux.HandleFunc("GET /data/prices/AAPL.json", func(w http.ResponseWriter, _ *http.Request) {
		ts.seriesHits.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(aaplJSON))
	})
	mux.HandleFunc("GET /data/prices/TRUNC.json", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"symbol":"TRUNC","prices":[{"date":`))
	})
	ts.Server = httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return ts
}

func TestClientIndex(t *testing.T) {
	ts := newTestServer(t)
	idx, err := NewClient(ts.URL + "/").Index(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(idx.Stocks) != 2 {
		t.Fatalf("got %d stocks", len(idx.Stocks))
	}
	aapl := idx.Find("AAPL")
	if aapl == nil || !aapl.Enriched() || aapl.Sector != "Technology" {
		t.Errorf("AAPL = %+v", aapl)
	}
	if ibm := idx.Find("IBM"); ibm == nil || ibm.Enriched() {
		t.Errorf("IBM = %+v", ibm)
	}
}

func TestClientSeries(t *testing.T) {
	ts := newTestServer(t)
	c := NewClient(ts.URL)

	s, err := c.Series(context.Background(), "AAPL")
	if err != nil {
		t.Fatal(err)
	}
	if s.Symbol != "AAPL" || len(s.Prices) != 2 || s.Prices[1].Volume != 200 {
		t.Errorf("series = %+v", s)
	}

	if _, err := c.Series(context.Background(), "MSFT"); !errors.Is(err, ErrDataUnavailable) {
		t.Errorf("missing series err = %v, want ErrDataUnavailable", err)
	}
}

func TestClientTransportFailure(t *testing.T) {
	ts := newTestServer(t)
	url := ts.URL
	ts.Close()

	if _, err := NewClient(url).Index(context.Background()); !errors.Is(err, ErrDataUnavailable) {
		t.Errorf("err = %v, want ErrDataUnavailable", err)
	}
}

func TestClientDecodeFailure(t *testing.T) {
	ts := newTestServer(t)
	if _, err := NewClient(ts.URL).Series(context.Background(), "TRUNC"); !errors.Is(err, ErrDataUnavailable) {
		t.Errorf("err = %v, want ErrDataUnavailable", err)
	}
}

func TestCacheFillOnce(t *testing.T) {
	ts := newTestServer(t)
	cache := NewCache(NewClient(ts.URL))
	ctx := context.Background()

	for range 3 {
		if _, err := cache.Index(ctx); err != nil {
			t.Fatal(err)
		}
		if _, err := cache.Series(ctx, "AAPL"); err != nil {
			t.Fatal(err)
		}
	}
	if n := ts.indexHits.Load(); n != 1 {
		t.Errorf("index fetched %d times, want 1", n)
	}
	if n := ts.seriesHits.Load(); n != 1 {
		t.Errorf("series fetched %d times, want 1", n)
	}

	cache.Reload()
	if _, err := cache.Index(ctx); err != nil {
		t.Fatal(err)
	}
	if _, err := cache.Series(ctx, "AAPL"); err != nil {
		t.Fatal(err)
	}
	if ts.indexHits.Load() != 2 || ts.seriesHits.Load() != 2 {
		t.Errorf("after Reload: index %d, series %d fetches", ts.indexHits.Load(), ts.seriesHits.Load())
	}
}

func TestCacheFailuresNotCached(t *testing.T) {
	ts := newTestServer(t)
	cache := NewCache(NewClient(ts.URL))
	ctx := context.Background()

	ts.indexDown.Store(true)
	if _, err := cache.Index(ctx); !errors.Is(err, ErrDataUnavailable) {
		t.Fatalf("err = %v", err)
	}
	ts.indexDown.Store(false)
	idx, err := cache.Index(ctx)
	if err != nil || len(idx.Stocks) != 2 {
		t.Fatalf("retry = %v, %v", idx, err)
	}
	if n := ts.indexHits.Load(); n != 2 {
		t.Errorf("index fetched %d times, want 2", n)
	}
}

func TestCacheLookupAndSample(t *testing.T) {
	ts := newTestServer(t)
	cache := NewCache(NewClient(ts.URL))
	ctx := context.Background()

	row, err := cache.Lookup(ctx, "IBM")
	if err != nil || row == nil || row.Name != "International Business Machines" {
		t.Errorf("Lookup(IBM) = %+v, %v", row, err)
	}
	if row, err := cache.Lookup(ctx, "ZZZ"); err != nil || row != nil {
		t.Errorf("Lookup(ZZZ) = %+v, %v", row, err)
	}

	got, err := cache.Sample(ctx, 1, rand.New(rand.NewPCG(7, 7)))
	if err != nil || len(got) != 1 {
		t.Errorf("Sample = %v, %v", got, err)
	}
	if n := ts.indexHits.Load(); n != 1 {
		t.Errorf("index fetched %d times, want 1", n)
	}
}
