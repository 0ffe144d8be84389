package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"stockboard/internal/config"
	"stockboard/internal/enrich"
	"stockboard/internal/observability"
	"stockboard/internal/store"
	"stockboard/internal/util"
)

const tool = "stock-merge-metadata"

func main() {
	config.LoadDotEnv()
	cfg, err := config.Load(config.Path())
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	w, closeLog, err := util.LogWriter(tool, cfg.Logging.File)
	if err != nil {
		log.Fatalf("setting up logging: %v", err)
	}
	defer closeLog()
	logger := util.NewLogger(cfg.Logging.Level, cfg.Logging.Format, w)
	util.SetDefault(logger)

	metrics := observability.NewMetrics(nil)
	stage := &enrich.Stage{
		Artifacts:      store.NewArtifactStore(cfg.Storage.OutputDir),
		MetadataPath:   cfg.Metadata.CompaniesCSV,
		LogosDir:       cfg.Metadata.LogosDir,
		LogosPublicDir: cfg.Metadata.LogosPublicDir,
		Metrics:        metrics,
		Log:            logger,
	}
	if cfg.Storage.SQLitePath != "" {
		catalog, err := store.NewSQLiteCatalog(cfg.Storage.SQLitePath)
		if err != nil {
			log.Fatalf("opening catalog: %v", err)
		}
		defer catalog.Close()
		stage.Catalog = catalog
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger.Info("starting", "stage", stage.Name(), "metadata", cfg.Metadata.CompaniesCSV)
	if _, err := stage.Run(ctx); err != nil {
		log.Fatalf("%s: %v", stage.Name(), err)
	}

	if url := cfg.Metrics.PushgatewayURL; url != "" {
		if err := metrics.Push(url, tool); err != nil {
			logger.Warn("pushing metrics", "error", err)
		}
	}
}
