package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/aluiziolira/go-apps-merge/campaign"
	"github.com/aluiziolira/go-apps-merge/config"
	"github.com/aluiziolira/go-apps-merge/dataset"
	"github.com/aluiziolira/go-apps-merge/enrich"
	"github.com/aluiziolira/go-apps-merge/pipeline"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	// .env is optional; real environment variables win.
	_ = godotenv.Load()

	defaultCfg := config.DefaultConfig()
	primaryDefault := defaultCfg.PrimaryFile
	if value, ok := config.EnvString("APPSMERGE_PRIMARY"); ok {
		primaryDefault = value
	}
	outputDefault := defaultCfg.OutputFile
	if value, ok := config.EnvString("APPSMERGE_OUTPUT"); ok {
		outputDefault = value
	}
	metricsDefault := defaultCfg.MetricsAddr
	if value, ok := config.EnvString("APPSMERGE_METRICS_ADDR"); ok {
		metricsDefault = value
	}
	workersDefault := defaultCfg.Workers
	if value, ok, err := config.EnvInt("APPSMERGE_WORKERS"); err != nil {
		fmt.Fprintf(os.Stderr, "invalid APPSMERGE_WORKERS: %v\n", err)
		os.Exit(1)
	} else if ok {
		workersDefault = value
	}

	primaryFile := flag.String("primary", primaryDefault, "Primary app dataset CSV")
	reviewsFile := flag.String("reviews", defaultCfg.ReviewsFile, "Secondary user reviews CSV")
	cacheFile := flag.String("cache", defaultCfg.CacheFile, "Durable enrichment cache file")
	outputFile := flag.String("output", outputDefault, "Canonical output file path")
	outputFormat := flag.String("format", "csv", "Output format: csv, json, or dual")
	sampleSize := flag.Int("sample", defaultCfg.SampleSize, "Number of app names sampled for enrichment")
	sampleSeed := flag.Int64("seed", defaultCfg.SampleSeed, "Sampling seed")
	workers := flag.Int("workers", workersDefault, "Concurrent enrichment workers")
	maxAttempts := flag.Int("max-attempts", defaultCfg.MaxAttempts, "Maximum lookup attempts per app name")
	retryBackoffMs := flag.Int("retry-backoff", 200, "Initial retry backoff (milliseconds)")
	retryBackoffMaxMs := flag.Int("retry-backoff-max", 5000, "Maximum retry backoff (milliseconds)")
	enrichTimeoutS := flag.Int("enrich-timeout", 120, "Deadline for the whole enrichment phase (seconds)")
	flushEachPut := flag.Bool("flush-each-put", true, "Flush the cache after each successful resolution")
	live := flag.Bool("live", false, "Use the live app store API instead of the synthetic generator")
	country := flag.String("country", defaultCfg.Country, "Country code for live lookups")
	metricsAddr := flag.String("metrics-addr", metricsDefault, "Prometheus metrics listen address (e.g. :9090)")
	verbose := flag.Bool("v", false, "Enable verbose logging")
	campaigns := flag.Bool("campaigns", false, "Also generate and analyze mock D2C campaign data")
	campaignRecords := flag.Int("campaign-records", defaultCfg.CampaignRecords, "Mock campaign records to generate")

	flag.Parse()

	logger, level := newLogger(*verbose)
	slog.SetDefault(logger)
	slog.SetLogLoggerLevel(level.Level())

	cfg := defaultCfg
	cfg.PrimaryFile = *primaryFile
	cfg.ReviewsFile = *reviewsFile
	cfg.CacheFile = *cacheFile
	cfg.OutputFile = *outputFile
	cfg.OutputFormat = strings.ToLower(*outputFormat)
	cfg.SampleSize = *sampleSize
	cfg.SampleSeed = *sampleSeed
	cfg.Workers = *workers
	cfg.MaxAttempts = *maxAttempts
	cfg.RetryBackoff = time.Duration(*retryBackoffMs) * time.Millisecond
	cfg.RetryBackoffMax = time.Duration(*retryBackoffMaxMs) * time.Millisecond
	cfg.EnrichTimeout = time.Duration(*enrichTimeoutS) * time.Second
	cfg.FlushEachPut = *flushEachPut
	cfg.UseMockAPI = !*live
	cfg.Country = *country
	cfg.MetricsAddr = *metricsAddr
	cfg.Verbose = *verbose
	cfg.CampaignRecords = *campaignRecords
	if key, ok := config.EnvString("RAPIDAPI_KEY"); ok {
		cfg.APIKey = key
	}
	if host, ok := config.EnvString("RAPIDAPI_HOST"); ok {
		cfg.APIHost = host
	}

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", slog.Any("error", err))
		os.Exit(1)
	}

	runID := uuid.NewString()
	slog.Info("starting run",
		slog.String("run_id", runID),
		slog.String("primary", cfg.PrimaryFile),
		slog.Int("workers", cfg.Workers),
		slog.Bool("mock_api", cfg.UseMockAPI),
	)

	var fetcher enrich.Fetcher
	if cfg.UseMockAPI {
		fetcher = enrich.SyntheticFetcher{}
	} else {
		fetcher = enrich.NewHTTPFetcher(cfg.APIKey, cfg.APIHost, cfg.Timeout)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		slog.Info("shutdown signal received, waiting for in-flight work to finish")
	}()

	p := pipeline.New(cfg, fetcher)

	var metricsServer *http.Server
	if cfg.MetricsAddr != "" {
		metricsServer = &http.Server{
			Addr:    cfg.MetricsAddr,
			Handler: promhttp.HandlerFor(p.Metrics.Registry, promhttp.HandlerOpts{}),
		}
		go func() {
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("metrics server failed", slog.Any("error", err))
			}
		}()
		slog.Info("metrics server enabled", slog.String("addr", cfg.MetricsAddr))
	}

	summary, err := p.Run(ctx)
	if err != nil {
		exitWithRunError(err)
	}

	if *campaigns {
		if err := runCampaignStage(cfg); err != nil {
			slog.Error("campaign stage failed", slog.Any("error", err))
			os.Exit(1)
		}
	}

	if metricsServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			slog.Error("metrics server shutdown failed", slog.Any("error", err))
		}
		cancel()
	}

	printSummary(runID, summary, cfg.OutputFile)
}

func runCampaignStage(cfg *config.Config) error {
	records := campaign.Generate(cfg.CampaignRecords, cfg.CampaignSeed)
	if err := campaign.WriteRaw(records, cfg.CampaignRawFile); err != nil {
		return err
	}
	analyzed := campaign.Analyze(records)
	if err := campaign.WriteProcessed(analyzed, cfg.CampaignOutFile); err != nil {
		return err
	}
	slog.Info("campaign metrics written",
		slog.Int("raw_records", len(records)),
		slog.Int("processed_records", len(analyzed)),
		slog.String("file", cfg.CampaignOutFile),
	)
	return nil
}

// exitWithRunError prints an actionable message for the fatal taxonomy.
func exitWithRunError(err error) {
	var notFound dataset.NotFoundError
	var schema dataset.SchemaError
	switch {
	case errors.As(err, &notFound):
		slog.Error("required input file is missing", slog.String("file", notFound.Path))
	case errors.As(err, &schema):
		slog.Error("input schema mismatch",
			slog.String("file", schema.File),
			slog.String("missing_columns", strings.Join(schema.Columns, ", ")),
		)
	default:
		slog.Error("pipeline failed", slog.Any("error", err))
	}
	os.Exit(1)
}

func printSummary(runID string, summary *pipeline.Summary, outputFile string) {
	separator := "--------------------------------------------------"
	fmt.Println("\n" + separator)
	fmt.Println("Merge complete")
	fmt.Printf("  Run ID:        %s\n", runID)
	fmt.Printf("  Primary rows:  %d\n", summary.PrimaryRows)
	fmt.Printf("  Enriched rows: %d\n", summary.EnrichedRows)
	fmt.Printf("  Total rows:    %d\n", summary.TotalRows)
	fmt.Printf("  Cache hits:    %d\n", summary.CacheHits)
	fmt.Printf("  Fetched:       %d\n", summary.Fetched)
	fmt.Printf("  Retries:       %d\n", summary.Retries)
	fmt.Printf("  Skipped:       %d\n", len(summary.Skipped))
	if len(summary.Skipped) > 0 {
		fmt.Printf("  Skipped keys:  %v\n", summary.Skipped)
	}
	fmt.Printf("  Duration:      %v\n", summary.Duration)
	fmt.Printf("  Output file:   %s\n", outputFile)
	fmt.Println(separator)
}

func newLogger(verbose bool) (*slog.Logger, *slog.LevelVar) {
	level := &slog.LevelVar{}
	if verbose {
		level.Set(slog.LevelDebug)
	} else {
		level.Set(slog.LevelInfo)
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if isTerminal(os.Stdout) {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	return slog.New(handler), level
}

func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
