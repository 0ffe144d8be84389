// Package observability holds the Prometheus metrics shared by the pipeline
// tools and the artifact server.
package observability

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/push"
)

const namespace = "stockboard"

// Pipeline outcomes recorded per symbol.
const (
	OutcomeProcessed = "processed"
	OutcomeMatched   = "matched"
	OutcomeUnmatched = "unmatched"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Pipeline metrics
	PipelineSymbolsTotal *prometheus.CounterVec
	PipelineDuration     *prometheus.HistogramVec
	LogosCopiedTotal     prometheus.Counter

	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	gatherer prometheus.Gatherer
}

// defaultBuckets are the histogram buckets for request durations (in seconds).
var defaultBuckets = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30}

// runBuckets cover whole pipeline runs, which take seconds to minutes.
var runBuckets = []float64{1, 5, 15, 30, 60, 120, 300, 600, 1800}

// NewMetrics creates and registers all metrics on reg. A nil reg uses a
// fresh private registry.
func NewMetrics(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	factory := promauto.With(reg)

	return &Metrics{
		PipelineSymbolsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "pipeline",
				Name:      "symbols_total",
				Help:      "Symbols handled by a pipeline stage, by outcome",
			},
			[]string{"stage", "outcome"},
		),
		PipelineDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "pipeline",
				Name:      "duration_seconds",
				Help:      "Duration of pipeline runs in seconds",
				Buckets:   runBuckets,
			},
			[]string{"stage"},
		),
		LogosCopiedTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "pipeline",
				Name:      "logos_copied_total",
				Help:      "Logo files copied into the public directory",
			},
		),
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status_code"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "Duration of HTTP requests in seconds",
				Buckets:   defaultBuckets,
			},
			[]string{"method", "route"},
		),
		gatherer: reg,
	}
}

// Gatherer returns the registry the metrics were registered on.
func (m *Metrics) Gatherer() prometheus.Gatherer {
	return m.gatherer
}

// RecordSymbol counts one symbol outcome for stage.
func (m *Metrics) RecordSymbol(stage, outcome string) {
	m.PipelineSymbolsTotal.WithLabelValues(stage, outcome).Inc()
}

// RecordRun records the duration of a finished pipeline run.
func (m *Metrics) RecordRun(stage string, d time.Duration) {
	m.PipelineDuration.WithLabelValues(stage).Observe(d.Seconds())
}

// RecordLogos counts copied logo files.
func (m *Metrics) RecordLogos(n int) {
	m.LogosCopiedTotal.Add(float64(n))
}

// RecordHTTPRequest records an HTTP request.
func (m *Metrics) RecordHTTPRequest(method, route string, status int, d time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// Push sends every registered metric to a Prometheus pushgateway under job.
func (m *Metrics) Push(url, job string) error {
	if err := push.New(url, job).Gatherer(m.gatherer).Push(); err != nil {
		return fmt.Errorf("pushing metrics to %s: %w", url, err)
	}
	return nil
}

// Middleware records request counts and latency labelled by the chi route
// pattern rather than the raw path, keeping label cardinality bounded.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.RecordHTTPRequest(r.Method, route, status, time.Since(start))
	})
}
