// Package pipeline wires the ingestion stages into one run.
package pipeline

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/aluiziolira/go-apps-merge/cache"
	"github.com/aluiziolira/go-apps-merge/config"
	"github.com/aluiziolira/go-apps-merge/dataset"
	"github.com/aluiziolira/go-apps-merge/enrich"
	"github.com/aluiziolira/go-apps-merge/models"
	"github.com/aluiziolira/go-apps-merge/output"
)

// Pipeline runs load -> sentiment join -> sampled enrichment -> merge and
// persists the canonical dataset.
type Pipeline struct {
	cfg     *config.Config
	fetcher enrich.Fetcher
	store   *cache.Store

	// Metrics is exposed so the caller can serve the registry.
	Metrics *enrich.Metrics
}

// New builds a pipeline around the given fetcher.
func New(cfg *config.Config, fetcher enrich.Fetcher) *Pipeline {
	return &Pipeline{
		cfg:     cfg,
		fetcher: fetcher,
		store:   cache.NewStore(cfg.CacheFile),
		Metrics: enrich.NewMetrics(),
	}
}

// Summary reports the outcome of one run.
type Summary struct {
	PrimaryRows  int
	EnrichedRows int
	TotalRows    int
	CacheHits    int
	Fetched      int
	Retries      int
	Skipped      []string
	Duration     time.Duration
}

// Run executes the full pipeline. Loader and schema failures abort the
// run; per-key enrichment failures are contained as skips.
func (p *Pipeline) Run(ctx context.Context) (*Summary, error) {
	start := time.Now()

	primary, err := dataset.LoadPrimary(p.cfg.PrimaryFile)
	if err != nil {
		return nil, err
	}
	if err := dataset.AttachSentiment(primary, p.cfg.ReviewsFile); err != nil {
		return nil, err
	}

	p.store.Load()
	client := enrich.NewClient(p.cfg, p.fetcher, p.store, p.Metrics)
	result, err := client.Resolve(ctx, SampleNames(primary, p.cfg.SampleSize, p.cfg.SampleSeed))
	if err != nil {
		return nil, err
	}

	combined := dataset.Merge(primary, result.Records)

	writer, err := output.New(p.cfg.OutputFormat, p.cfg.OutputFile)
	if err != nil {
		return nil, err
	}
	if err := writer.Write(combined); err != nil {
		writer.Close()
		return nil, fmt.Errorf("write canonical dataset: %w", err)
	}
	if err := writer.Validate(); err != nil {
		writer.Close()
		return nil, fmt.Errorf("validate canonical dataset: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("close canonical dataset: %w", err)
	}

	return &Summary{
		PrimaryRows:  len(primary),
		EnrichedRows: len(result.Records),
		TotalRows:    len(combined),
		CacheHits:    result.CacheHits,
		Fetched:      result.Fetched,
		Retries:      result.Retries,
		Skipped:      result.Skipped,
		Duration:     time.Since(start),
	}, nil
}

// SampleNames picks up to size app names from the cleaned primary table.
// The shuffle is seeded so a run is reproducible; names are already unique
// within the source.
func SampleNames(records []*models.AppRecord, size int, seed int64) []string {
	names := make([]string, 0, len(records))
	for _, record := range records {
		names = append(names, record.Name)
	}

	rng := rand.New(rand.NewSource(seed))
	rng.Shuffle(len(names), func(i, j int) {
		names[i], names[j] = names[j], names[i]
	})

	if size > 0 && len(names) > size {
		names = names[:size]
	}
	return names
}
