// Package httpapi serves the pipeline artifacts and a small JSON API over
// them. The static routes under /data and /logos are the contract the
// dashboard UI reads; the /api routes answer the same questions server side.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"stockboard/internal/dashboard"
	"stockboard/internal/domain"
	"stockboard/internal/observability"
	"stockboard/internal/stats"
	"stockboard/internal/store"
)

// Options configures a Server. Artifacts is required; everything else is
// optional.
type Options struct {
	Artifacts *store.ArtifactStore
	Catalog   store.Catalog     // nil searches the in-memory index
	Archive   store.SeriesStore // consulted when a JSON series is missing
	Policy    stats.Policy
	Metrics   *observability.Metrics
	LogosDir  string // served at /logos/
	PublicDir string // built UI, served at / when set
	Log       *slog.Logger
}

// Server serves the stockboard HTTP routes.
//
// The index and each series are read from disk on first use and kept for
// the life of the process. Failed reads are not cached.
type Server struct {
	artifacts *store.ArtifactStore
	catalog   store.Catalog
	archive   store.SeriesStore
	policy    stats.Policy
	metrics   *observability.Metrics
	logosDir  string
	publicDir string
	log       *slog.Logger

	indexMu sync.Mutex
	index   *domain.StocksIndex

	series sync.Map // symbol → domain.StockSeries
}

// NewServer creates a Server from opts.
func NewServer(opts Options) *Server {
	s := &Server{
		artifacts: opts.Artifacts,
		catalog:   opts.Catalog,
		archive:   opts.Archive,
		policy:    opts.Policy.WithDefaults(),
		metrics:   opts.Metrics,
		logosDir:  opts.LogosDir,
		publicDir: opts.PublicDir,
		log:       opts.Log,
	}
	if s.metrics == nil {
		s.metrics = observability.NewMetrics(nil)
	}
	if s.log == nil {
		s.log = slog.Default()
	}
	return s
}

// Handler returns an http.Handler with all routes registered.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(s.metrics.Middleware)
	r.Use(corsMiddleware)

	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.HandlerFor(s.metrics.Gatherer(), promhttp.HandlerOpts{}))

	// Static artifacts.
	r.Get("/data/"+store.IndexFile, s.handleIndexFile)
	r.Get("/data/"+store.PricesDir+"/{file}", s.handleSeriesFile)
	r.Get("/logos/{file}", s.handleLogo)

	r.Route("/api", func(r chi.Router) {
		r.Get("/overview", s.handleOverview)
		r.Get("/stocks", s.handleStocks)
		r.Get("/stocks/{symbol}", s.handleStock)
		r.Get("/stocks/{symbol}/chart", s.handleChart)
		r.Get("/stocks/{symbol}/stats", s.handleStats)
	})

	if s.publicDir != "" {
		r.Handle("/*", http.FileServer(http.Dir(s.publicDir)))
	}
	return r
}

// ---------------------------------------------------------------------------
// Cache
// ---------------------------------------------------------------------------

func (s *Server) loadIndex(ctx context.Context) (*domain.StocksIndex, error) {
	s.indexMu.Lock()
	defer s.indexMu.Unlock()
	if s.index != nil {
		return s.index, nil
	}
	idx, err := s.artifacts.ReadIndex(ctx)
	if err != nil {
		return nil, err
	}
	s.index = idx
	s.log.Info("index loaded", "stocks", len(idx.Stocks))
	return idx, nil
}

func (s *Server) loadSeries(ctx context.Context, symbol string) (domain.StockSeries, error) {
	if v, ok := s.series.Load(symbol); ok {
		return v.(domain.StockSeries), nil
	}
	series, err := s.artifacts.ReadSeries(ctx, symbol)
	if err != nil && s.archive != nil && errors.Is(err, domain.ErrDataUnavailable) {
		series, err = s.archive.ReadSeries(ctx, symbol)
		if err == nil {
			s.log.Debug("series read from archive", "symbol", symbol)
		}
	}
	if err != nil {
		return domain.StockSeries{}, err
	}
	v, _ := s.series.LoadOrStore(symbol, series)
	return v.(domain.StockSeries), nil
}

// ---------------------------------------------------------------------------
// Static routes
// ---------------------------------------------------------------------------

// HealthResponse is the /healthz body. Archive and Catalog are present only
// when those stores are configured.
type HealthResponse struct {
	Status  string `json:"status"`
	Series  int    `json:"series"`
	Archive *int   `json:"archive,omitempty"`
	Catalog *int   `json:"catalog,omitempty"`
}

// counter is implemented by catalogs that can report their row count.
type counter interface {
	Count(ctx context.Context) (int, error)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	resp := HealthResponse{Status: "ok"}
	if syms, err := s.artifacts.ListSymbols(ctx); err != nil {
		s.log.Warn("listing series", "error", err)
	} else {
		resp.Series = len(syms)
	}
	if s.archive != nil {
		if syms, err := s.archive.ListSymbols(ctx); err != nil {
			s.log.Warn("listing archive", "error", err)
		} else {
			n := len(syms)
			resp.Archive = &n
		}
	}
	if c, ok := s.catalog.(counter); ok {
		if n, err := c.Count(ctx); err != nil {
			s.log.Warn("counting catalog", "error", err)
		} else {
			resp.Catalog = &n
		}
	}
	writeJSON(w, resp)
}

func (s *Server) handleIndexFile(w http.ResponseWriter, r *http.Request) {
	s.serveFile(w, r, s.artifacts.IndexPath(), store.IndexFile)
}

func (s *Server) handleSeriesFile(w http.ResponseWriter, r *http.Request) {
	file := chi.URLParam(r, "file")
	symbol, ok := strings.CutSuffix(file, ".json")
	if !ok || !validName(symbol) {
		writeError(w, http.StatusNotFound, "data unavailable: "+file)
		return
	}
	s.serveFile(w, r, s.artifacts.SeriesPath(symbol), file)
}

func (s *Server) handleLogo(w http.ResponseWriter, r *http.Request) {
	file := chi.URLParam(r, "file")
	if s.logosDir == "" || !validName(file) {
		writeError(w, http.StatusNotFound, "logo unavailable: "+file)
		return
	}
	s.serveFile(w, r, filepath.Join(s.logosDir, file), file)
}

// serveFile serves path, answering a JSON 404 when it does not exist.
func (s *Server) serveFile(w http.ResponseWriter, r *http.Request, path, name string) {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		writeError(w, http.StatusNotFound, "data unavailable: "+name)
		return
	}
	http.ServeFile(w, r, path)
}

// validName rejects names that would escape the directory they are joined
// onto.
func validName(name string) bool {
	return name != "" && name != "." && name != ".." &&
		!strings.ContainsAny(name, `/\`) && !strings.Contains(name, "..")
}

// ---------------------------------------------------------------------------
// API routes
// ---------------------------------------------------------------------------

func (s *Server) handleOverview(w http.ResponseWriter, r *http.Request) {
	idx, err := s.loadIndex(r.Context())
	if err != nil {
		s.writeLoadError(w, err, store.IndexFile)
		return
	}
	writeJSON(w, OverviewResponse{
		Overview: dashboard.Summarize(idx.Stocks),
		Facets:   dashboard.CollectFacets(idx.Stocks),
	})
}

func (s *Server) handleStocks(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := dashboard.Filter{
		Query:    q.Get("q"),
		Exchange: q.Get("exchange"),
		Sector:   q.Get("sector"),
		Industry: q.Get("industry"),
	}
	sortBy := q.Get("sort")
	if sortBy != "" && !slices.Contains(dashboard.SortFields, sortBy) {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown sort field %q", sortBy))
		return
	}
	desc := strings.EqualFold(q.Get("order"), "desc")

	limit, err := parseCount(q.Get("limit"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid limit: "+err.Error())
		return
	}
	sample, err := parseCount(q.Get("sample"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid sample: "+err.Error())
		return
	}

	var rows []domain.StockSummary
	if s.catalog != nil {
		query := store.Query{
			Text:     filter.Query,
			Exchange: filter.Exchange,
			Sector:   filter.Sector,
			Industry: filter.Industry,
			SortBy:   sortBy,
			Desc:     desc,
		}
		if sample == 0 {
			query.Limit = limit
		}
		rows, err = s.catalog.Search(r.Context(), query)
		if err != nil {
			s.log.Error("catalog search", "error", err)
			writeError(w, http.StatusInternalServerError, "search failed")
			return
		}
	} else {
		idx, err := s.loadIndex(r.Context())
		if err != nil {
			s.writeLoadError(w, err, store.IndexFile)
			return
		}
		rows = dashboard.Search(idx.Stocks, filter)
		if sortBy != "" {
			dashboard.SortBy(rows, sortBy, desc)
		}
	}

	if sample > 0 {
		rng := rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
		rows = dashboard.Sample(rows, sample, rng)
	}
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	if rows == nil {
		rows = []domain.StockSummary{}
	}
	writeJSON(w, StocksResponse{Total: len(rows), Stocks: rows})
}

func (s *Server) handleStock(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")

	idx, err := s.loadIndex(r.Context())
	switch {
	case err == nil:
		if row := idx.Find(symbol); row != nil {
			writeJSON(w, newStockResponse(*row, true))
			return
		}
	case !errors.Is(err, domain.ErrDataUnavailable):
		s.writeLoadError(w, err, store.IndexFile)
		return
	}

	// Not in the index: derive what we can from the series.
	series, err := s.loadSeries(r.Context(), symbol)
	if err != nil {
		s.writeLoadError(w, err, symbol)
		return
	}
	row, err := stats.SummaryFromSeries(series)
	if err != nil {
		writeError(w, http.StatusNotFound, fmt.Sprintf("data unavailable: %s: %v", symbol, err))
		return
	}
	writeJSON(w, newStockResponse(row, false))
}

func newStockResponse(row domain.StockSummary, inIndex bool) StockResponse {
	return StockResponse{
		StockSummary:  row,
		ExchangeLabel: dashboard.ExchangeLabel(row.Exchange),
		CategoryLabel: dashboard.CategoryLabel(row.MarketCategory),
		InIndex:       inIndex,
	}
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")

	window := stats.Range1Y
	if v := r.URL.Query().Get("range"); v != "" {
		parsed, err := stats.ParseRange(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		window = parsed
	}

	series, err := s.loadSeries(r.Context(), symbol)
	if err != nil {
		s.writeLoadError(w, err, symbol)
		return
	}
	prices := s.policy.FilterRange(series.Prices, window)
	if prices == nil {
		prices = []domain.PricePoint{}
	}
	writeJSON(w, ChartResponse{
		Symbol: series.Symbol,
		Range:  window,
		Points: len(prices),
		Prices: prices,
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")
	series, err := s.loadSeries(r.Context(), symbol)
	if err != nil {
		s.writeLoadError(w, err, symbol)
		return
	}

	snap := s.policy.Snapshot(series)
	resp := StatsResponse{
		Snapshot: snap,
		Display: StatsDisplay{
			Volume:    dashboard.Missing,
			High52W:   dashboard.Missing,
			Low52W:    dashboard.Missing,
			AvgVolume: dashboard.Missing,
		},
	}
	if snap.Latest != nil {
		resp.Display.Volume = dashboard.FormatVolume(snap.Latest.Volume, true)
	}
	if snap.High52W != nil {
		resp.Display.High52W = dashboard.FormatPrice(*snap.High52W, true)
	}
	if snap.Low52W != nil {
		resp.Display.Low52W = dashboard.FormatPrice(*snap.Low52W, true)
	}
	if snap.AvgVolume != nil {
		resp.Display.AvgVolume = dashboard.FormatVolume(*snap.AvgVolume, true)
	}
	writeJSON(w, resp)
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

// writeLoadError maps a cache load failure to a response: missing artifacts
// are 404, anything else is 500.
func (s *Server) writeLoadError(w http.ResponseWriter, err error, what string) {
	if errors.Is(err, domain.ErrDataUnavailable) {
		writeError(w, http.StatusNotFound, "data unavailable: "+what)
		return
	}
	s.log.Error("loading artifact", "artifact", what, "error", err)
	writeError(w, http.StatusInternalServerError, "failed to load "+what)
}

// parseCount parses an optional non-negative integer query parameter.
func parseCount(v string) (int, error) {
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, fmt.Errorf("must not be negative")
	}
	return n, nil
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encoding JSON response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{Error: msg})
}
