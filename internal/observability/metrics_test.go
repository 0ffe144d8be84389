package observability

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNewMetrics(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())
	if m.PipelineSymbolsTotal == nil || m.PipelineDuration == nil || m.LogosCopiedTotal == nil {
		t.Error("pipeline metrics not initialized")
	}
	if m.HTTPRequestsTotal == nil || m.HTTPRequestDuration == nil {
		t.Error("HTTP metrics not initialized")
	}
	if m.Gatherer() == nil {
		t.Error("Gatherer is nil")
	}
}

func TestNewMetricsNilRegistry(t *testing.T) {
	// Two instances must not collide on a shared registry.
	NewMetrics(nil)
	NewMetrics(nil)
}

func TestRecordSymbol(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.RecordSymbol("preprocess", OutcomeProcessed)
	m.RecordSymbol("preprocess", OutcomeProcessed)
	m.RecordSymbol("preprocess", "missing_price_file")

	if got := testutil.ToFloat64(m.PipelineSymbolsTotal.WithLabelValues("preprocess", OutcomeProcessed)); got != 2 {
		t.Errorf("processed count = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.PipelineSymbolsTotal.WithLabelValues("preprocess", "missing_price_file")); got != 1 {
		t.Errorf("skip count = %v, want 1", got)
	}
}

func TestRecordRunAndLogos(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())
	m.RecordRun("merge", 2*time.Second)
	m.RecordLogos(7)

	if got := testutil.CollectAndCount(m.PipelineDuration); got != 1 {
		t.Errorf("duration series = %d, want 1", got)
	}
	if got := testutil.ToFloat64(m.LogosCopiedTotal); got != 7 {
		t.Errorf("logos copied = %v, want 7", got)
	}
}

func TestMiddlewareUsesRoutePattern(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/api/stocks/{symbol}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	for _, sym := range []string{"AAPL", "MSFT"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/stocks/"+sym, nil))
	}

	got := testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/api/stocks/{symbol}", "404"))
	if got != 2 {
		t.Errorf("requests for route pattern = %v, want 2", got)
	}
}

func TestPush(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	m := NewMetrics(prometheus.NewRegistry())
	m.RecordSymbol("preprocess", OutcomeProcessed)
	if err := m.Push(srv.URL, "stock-preprocess"); err != nil {
		t.Fatalf("Push: %v", err)
	}
	if gotPath != "/metrics/job/stock-preprocess" {
		t.Errorf("push path = %q", gotPath)
	}
}
