package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"stockboard/internal/api"
	"stockboard/internal/config"
	"stockboard/internal/httpapi"
	"stockboard/internal/observability"
	"stockboard/internal/stats"
	"stockboard/internal/store"
	"stockboard/internal/util"
)

func main() {
	// Load config.
	config.LoadDotEnv()
	cfg, err := config.Load(config.Path())
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	// Setup logging.
	w, closeLog, err := util.LogWriter("stock-server", cfg.Logging.File)
	if err != nil {
		log.Fatalf("setting up logging: %v", err)
	}
	defer closeLog()
	logger := util.NewLogger(cfg.Logging.Level, cfg.Logging.Format, w)
	util.SetDefault(logger)

	// Create stores and server.
	opts := httpapi.Options{
		Artifacts: store.NewArtifactStore(cfg.Storage.OutputDir),
		Policy: stats.Policy{
			YearWindow:     cfg.Stats.YearWindow,
			VolumeWindow:   cfg.Stats.VolumeWindow,
			MaxChartPoints: cfg.Stats.MaxChartPoints,
		},
		Metrics:   observability.NewMetrics(nil),
		LogosDir:  cfg.Metadata.LogosPublicDir,
		PublicDir: cfg.Server.PublicDir,
		Log:       logger,
	}
	if cfg.Storage.ParquetDir != "" {
		opts.Archive = store.NewParquetStore(cfg.Storage.ParquetDir)
	}
	if cfg.Storage.SQLitePath != "" {
		catalog, err := store.NewSQLiteCatalog(cfg.Storage.SQLitePath)
		if err != nil {
			log.Fatalf("opening catalog: %v", err)
		}
		defer catalog.Close()
		opts.Catalog = catalog
	}
	srv := httpapi.NewServer(opts)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	server := api.NewServer(cfg.Server.Addr(), cfg.Server.GRPCAddr(), srv.Handler(), logger)
	if err := server.ListenAndServe(ctx); err != nil {
		log.Fatalf("server: %v", err)
	}
	logger.Info("server stopped")
}
