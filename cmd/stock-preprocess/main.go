package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"stockboard/internal/config"
	"stockboard/internal/observability"
	"stockboard/internal/preprocess"
	"stockboard/internal/store"
	"stockboard/internal/util"
)

const tool = "stock-preprocess"

func main() {
	// Load config.
	config.LoadDotEnv()
	cfg, err := config.Load(config.Path())
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	// Setup logging.
	w, closeLog, err := util.LogWriter(tool, cfg.Logging.File)
	if err != nil {
		log.Fatalf("setting up logging: %v", err)
	}
	defer closeLog()
	logger := util.NewLogger(cfg.Logging.Level, cfg.Logging.Format, w)
	util.SetDefault(logger)

	// Wire the pipeline.
	metrics := observability.NewMetrics(nil)
	p := preprocess.NewPipeline(cfg.Storage.SourceDir, store.NewArtifactStore(cfg.Storage.OutputDir))
	p.ProgressEvery = cfg.Pipeline.ProgressEvery
	p.Metrics = metrics
	p.Log = logger

	if cfg.Storage.ParquetDir != "" {
		p.Archive = store.NewParquetStore(cfg.Storage.ParquetDir)
	}
	if cfg.Storage.SQLitePath != "" {
		catalog, err := store.NewSQLiteCatalog(cfg.Storage.SQLitePath)
		if err != nil {
			log.Fatalf("opening catalog: %v", err)
		}
		defer catalog.Close()
		p.Catalog = catalog
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger.Info("starting", "stage", p.Name(), "source", cfg.Storage.SourceDir, "output", cfg.Storage.OutputDir)
	if _, err := p.Run(ctx); err != nil {
		log.Fatalf("%s: %v", p.Name(), err)
	}

	if url := cfg.Metrics.PushgatewayURL; url != "" {
		if err := metrics.Push(url, tool); err != nil {
			logger.Warn("pushing metrics", "error", err)
		}
	}
}
