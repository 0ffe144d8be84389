package enrich

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"stockboard/internal/observability"
	"stockboard/internal/store"
)

// StageName labels this stage in logs and metrics.
const StageName = "merge"

// Stage merges company metadata into the index artifact in place, then
// publishes the logos.
type Stage struct {
	Artifacts      *store.ArtifactStore
	MetadataPath   string
	LogosDir       string
	LogosPublicDir string

	// Catalog, when set, is rebuilt from the merged index.
	Catalog store.CatalogLoader
	Metrics *observability.Metrics
	Log     *slog.Logger
}

// Result is the outcome of one Stage run.
type Result struct {
	RunID       string
	Merge       MergeReport
	Total       int
	LogosCopied int
	Elapsed     time.Duration
}

// Name returns the stage identifier.
func (s *Stage) Name() string { return StageName }

// Run loads the metadata and the index, merges, and rewrites the index.
// A missing metadata table or index ends the run with an error.
func (s *Stage) Run(ctx context.Context) (*Result, error) {
	runStart := time.Now()
	res := &Result{RunID: uuid.NewString()}
	log := s.Log
	if log == nil {
		log = slog.Default()
	}
	log = log.With("stage", StageName, "run_id", res.RunID)

	// 1. Metadata.
	meta, err := LoadMetadata(s.MetadataPath)
	if err != nil {
		return res, err
	}
	log.Info("loaded metadata", "companies", len(meta))

	// 2. Index.
	idx, err := s.Artifacts.ReadIndex(ctx)
	if err != nil {
		return res, fmt.Errorf("loading stocks index: %w", err)
	}
	res.Total = len(idx.Stocks)
	log.Info("loaded stocks index", "stocks", res.Total)

	// 3. Merge and write back.
	res.Merge = Merge(idx, meta)
	log.Info("merged metadata", "matched", res.Merge.Matched, "unmatched", res.Merge.Unmatched)
	if s.Metrics != nil {
		s.Metrics.PipelineSymbolsTotal.WithLabelValues(StageName, observability.OutcomeMatched).Add(float64(res.Merge.Matched))
		s.Metrics.PipelineSymbolsTotal.WithLabelValues(StageName, observability.OutcomeUnmatched).Add(float64(res.Merge.Unmatched))
	}
	if err := ctx.Err(); err != nil {
		return res, err
	}
	if err := s.Artifacts.WriteIndex(ctx, idx); err != nil {
		return res, fmt.Errorf("writing stocks index: %w", err)
	}

	// 4. Logos.
	copied, err := SyncLogos(s.LogosDir, s.LogosPublicDir, log)
	if err != nil {
		return res, fmt.Errorf("syncing logos: %w", err)
	}
	res.LogosCopied = copied
	if s.Metrics != nil {
		s.Metrics.RecordLogos(copied)
	}

	// 5. Derived catalog.
	if s.Catalog != nil {
		if err := s.Catalog.ReplaceIndex(ctx, idx); err != nil {
			log.Warn("refreshing catalog", "error", err)
		}
	}

	res.Elapsed = time.Since(runStart)
	if s.Metrics != nil {
		s.Metrics.RecordRun(StageName, res.Elapsed)
	}
	log.Info("complete", "matched", res.Merge.Matched, "logos", copied,
		"elapsed", res.Elapsed.Round(time.Millisecond))
	return res, nil
}
