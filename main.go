package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-normalize/pkg/config"
	"github.com/ekaya-inc/ekaya-normalize/pkg/database"
	"github.com/ekaya-inc/ekaya-normalize/pkg/logging"
	"github.com/ekaya-inc/ekaya-normalize/pkg/metrics"
	"github.com/ekaya-inc/ekaya-normalize/pkg/services/pipeline"
	"github.com/ekaya-inc/ekaya-normalize/pkg/source"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", config.DefaultPath, "Path to the YAML config file")
	sourcePath := flag.String("source", "", "TSV export to load (local path or s3://bucket/key)")
	databaseURL := flag.String("database-url", "", "Target store URL (postgres://, sqlite://, sqlserver://)")
	batchSize := flag.Int("batch-size", 0, "Order detail rows per INSERT statement")
	logLevel := flag.String("log-level", "", "Log level (debug, info, warn, error)")
	reportPath := flag.String("report", "", "Write a YAML run summary to this file")
	metricsPath := flag.String("metrics-file", "", "Write Prometheus metrics to this file")
	stages := flag.String("stages", "", "Comma-separated stages to run; their dependencies run too")
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(Version)
		return 0
	}

	cfg, err := config.Load(Version, *configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return 1
	}
	applyFlags(cfg, *sourcePath, *databaseURL, *batchSize, *logLevel, *reportPath, *metricsPath)

	logger, err := logging.NewLogger(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		return 1
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := normalize(ctx, cfg, *stages, logger); err != nil {
		logger.Error("Normalization failed", zap.String("error", logging.SanitizeError(err)))
		return 1
	}
	return 0
}

// applyFlags lets explicit flags override file and environment configuration.
func applyFlags(cfg *config.Config, sourcePath, databaseURL string, batchSize int, logLevel, reportPath, metricsPath string) {
	if sourcePath != "" {
		cfg.Source.Path = sourcePath
	}
	if databaseURL != "" {
		cfg.Database.URL = databaseURL
	}
	if batchSize > 0 {
		cfg.Pipeline.BatchSize = batchSize
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if reportPath != "" {
		cfg.Report.Path = reportPath
	}
	if metricsPath != "" {
		cfg.Metrics.TextfilePath = metricsPath
	}
}

func normalize(ctx context.Context, cfg *config.Config, stageList string, logger *zap.Logger) error {
	logger.Info("Configuration loaded",
		zap.String("version", cfg.Version),
		zap.String("environment", cfg.Env),
		zap.String("source", cfg.Source.Path),
		zap.String("database", logging.SanitizeConnectionString(cfg.Database.ConnectionURL())),
		zap.Int("batch_size", cfg.Pipeline.BatchSize))

	src, err := source.Open(ctx, cfg.Source.Path, cfg.Source.S3Config())
	if err != nil {
		return err
	}

	store, err := database.Open(ctx, cfg.Database.StoreConfig(), logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Warn("Failed to close store", zap.Error(err))
		}
	}()

	recorder := metrics.NewRecorder()
	p, err := pipeline.NewDefault(logger, recorder)
	if err != nil {
		return err
	}

	var only []pipeline.StageName
	if stageList != "" {
		only, err = p.ParseStageNames(strings.Split(stageList, ","))
		if err != nil {
			return err
		}
	}

	run := pipeline.NewRun(store, src, cfg.Pipeline.BatchSize)
	run.Progress = &pipeline.LogProgressReporter{Logger: logger.Named("progress")}

	summary, runErr := p.Execute(ctx, run, only...)

	if summary != nil && cfg.Report.Path != "" {
		if err := summary.WriteFile(cfg.Report.Path); err != nil {
			logger.Warn("Failed to write run summary", zap.Error(err))
		} else {
			logger.Info("Run summary written", zap.String("path", cfg.Report.Path))
		}
	}
	if cfg.Metrics.TextfilePath != "" {
		if err := recorder.WriteTextfile(cfg.Metrics.TextfilePath); err != nil {
			logger.Warn("Failed to write metrics", zap.Error(err))
		}
	}

	return runErr
}
