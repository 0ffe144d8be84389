package preprocess

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"stockboard/internal/domain"
	"stockboard/internal/observability"
	"stockboard/internal/store"
)

// StageName labels this stage in logs and metrics.
const StageName = "preprocess"

// DefaultProgressEvery is how many processed symbols pass between progress
// log lines when the pipeline is not configured otherwise.
const DefaultProgressEvery = 500

// SkipReason classifies why a symbol was left out of the index.
type SkipReason string

const (
	SkipMissingPriceFile     SkipReason = "missing_price_file"
	SkipInsufficientHistory  SkipReason = "insufficient_history"
	SkipDegenerateArithmetic SkipReason = "degenerate_arithmetic"
	SkipReadError            SkipReason = "read_error"
)

// classify maps a per-symbol error to its skip reason.
func classify(err error) SkipReason {
	switch {
	case errors.Is(err, domain.ErrMissingInput):
		return SkipMissingPriceFile
	case errors.Is(err, domain.ErrInsufficientHistory):
		return SkipInsufficientHistory
	case errors.Is(err, domain.ErrNonNumericClose), errors.Is(err, domain.ErrDegenerateArithmetic):
		return SkipDegenerateArithmetic
	default:
		return SkipReadError
	}
}

// Report summarizes one pipeline run.
type Report struct {
	RunID     string
	Eligible  int
	Processed int
	Skipped   int
	SkippedBy map[SkipReason]int
	Elapsed   time.Duration
}

func (r *Report) skip(reason SkipReason) {
	r.Skipped++
	r.SkippedBy[reason]++
}

// Pipeline builds the price artifacts and the stocks index from a source
// directory laid out as
//
//	<SourceDir>/symbols_valid_meta.csv
//	<SourceDir>/stocks/<SYMBOL>.csv
//
// Symbols are handled one at a time in master-table order.
type Pipeline struct {
	SourceDir string
	Artifacts *store.ArtifactStore

	// Archive, when set, receives a copy of every written series.
	Archive store.SeriesStore
	// Catalog, when set, is rebuilt from the finished index.
	Catalog store.CatalogLoader
	// Metrics, when set, receives per-symbol outcome counts.
	Metrics *observability.Metrics

	ProgressEvery int
	Log           *slog.Logger
}

// NewPipeline creates a Pipeline reading from sourceDir and writing
// artifacts to artifacts.
func NewPipeline(sourceDir string, artifacts *store.ArtifactStore) *Pipeline {
	return &Pipeline{
		SourceDir:     sourceDir,
		Artifacts:     artifacts,
		ProgressEvery: DefaultProgressEvery,
		Log:           slog.Default(),
	}
}

// Name returns the stage identifier.
func (p *Pipeline) Name() string { return StageName }

// Run executes the whole batch. Per-symbol failures are logged, counted,
// and skipped. A missing master table, a failed artifact write, or a
// cancelled ctx ends the run with an error.
func (p *Pipeline) Run(ctx context.Context) (*Report, error) {
	runStart := time.Now()
	report := &Report{
		RunID:     uuid.NewString(),
		SkippedBy: make(map[SkipReason]int),
	}
	log := p.logger().With("stage", StageName, "run_id", report.RunID)

	// 1. Load and filter the master table.
	metaPath := filepath.Join(p.SourceDir, MasterFile)
	meta, err := LoadSymbolMeta(metaPath)
	if err != nil {
		return report, err
	}
	eligible := Eligible(meta)
	report.Eligible = len(eligible)
	log.Info("starting preprocess", "source", p.SourceDir, "symbols", len(meta), "eligible", len(eligible))

	// 2. One symbol at a time.
	idx := &domain.StocksIndex{Stocks: make([]domain.StockSummary, 0, len(eligible))}
	for _, m := range eligible {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		summary, err := p.processSymbol(ctx, m)
		if err != nil {
			var werr *writeError
			if errors.As(err, &werr) {
				return report, err
			}
			reason := classify(err)
			report.skip(reason)
			p.record(string(reason))
			if reason == SkipReadError {
				log.Error("processing symbol", "symbol", m.Symbol, "error", err)
			} else {
				log.Debug("skipping symbol", "symbol", m.Symbol, "reason", reason, "error", err)
			}
			continue
		}

		idx.Stocks = append(idx.Stocks, summary)
		report.Processed++
		p.record(observability.OutcomeProcessed)
		if p.ProgressEvery > 0 && report.Processed%p.ProgressEvery == 0 {
			log.Info("progress", "processed", report.Processed, "skipped", report.Skipped,
				"elapsed", time.Since(runStart).Round(time.Second))
		}
	}

	// 3. Write the index once.
	if err := p.Artifacts.WriteIndex(ctx, idx); err != nil {
		return report, fmt.Errorf("writing stocks index: %w", err)
	}

	// 4. Derived catalog.
	if p.Catalog != nil {
		if err := p.Catalog.ReplaceIndex(ctx, idx); err != nil {
			log.Warn("refreshing catalog", "error", err)
		}
	}

	report.Elapsed = time.Since(runStart)
	if p.Metrics != nil {
		p.Metrics.RecordRun(StageName, report.Elapsed)
	}
	log.Info("complete",
		"processed", report.Processed,
		"skipped", report.Skipped,
		"skipped_by", skippedAttrs(report.SkippedBy),
		"output", p.Artifacts.OutputDir,
		"elapsed", report.Elapsed.Round(time.Millisecond),
	)
	return report, nil
}

// writeError marks an output failure, which aborts the run.
type writeError struct{ err error }

func (e *writeError) Error() string { return e.err.Error() }
func (e *writeError) Unwrap() error { return e.err }

// processSymbol reads, summarizes, and writes one symbol. The price artifact
// is only written for symbols that make it into the index.
func (p *Pipeline) processSymbol(ctx context.Context, m domain.SymbolMeta) (domain.StockSummary, error) {
	path := filepath.Join(p.SourceDir, StocksDir, m.Symbol+".csv")
	rows, err := ReadPriceRows(path)
	if err != nil {
		return domain.StockSummary{}, err
	}

	summary, err := Summarize(m, rows)
	if err != nil {
		return domain.StockSummary{}, err
	}

	series := Normalize(m.Symbol, rows)
	if err := p.Artifacts.WriteSeries(ctx, series); err != nil {
		return domain.StockSummary{}, &writeError{err: err}
	}
	if p.Archive != nil {
		if err := p.Archive.WriteSeries(ctx, series); err != nil {
			p.logger().Warn("archiving series", "symbol", m.Symbol, "error", err)
		}
	}
	return summary, nil
}

func (p *Pipeline) record(outcome string) {
	if p.Metrics != nil {
		p.Metrics.RecordSymbol(StageName, outcome)
	}
}

func (p *Pipeline) logger() *slog.Logger {
	if p.Log == nil {
		return slog.Default()
	}
	return p.Log
}

// skippedAttrs renders skip counts as "reason=n" pairs for one log field.
func skippedAttrs(by map[SkipReason]int) string {
	var parts []string
	for _, r := range []SkipReason{SkipMissingPriceFile, SkipInsufficientHistory, SkipDegenerateArithmetic, SkipReadError} {
		if n := by[r]; n > 0 {
			parts = append(parts, fmt.Sprintf("%s=%d", r, n))
		}
	}
	return strings.Join(parts, ",")
}
