package enrich

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aluiziolira/go-apps-merge/cache"
	"github.com/aluiziolira/go-apps-merge/config"
	"github.com/aluiziolira/go-apps-merge/models"
	"github.com/jonboulle/clockwork"
)

// errNoCandidates marks a syntactically valid response that carries no
// candidates. The provider does not know the key; retrying is pointless.
var errNoCandidates = errors.New("no candidates in response")

// Client drains a bounded set of app names through the per-key resolution
// state machine: cache hit short-circuits, cache miss fetches with
// exponential backoff, exhaustion becomes a skip, an authorization failure
// aborts the phase.
type Client struct {
	fetcher      Fetcher
	store        *cache.Store
	metrics      *Metrics
	clock        clockwork.Clock
	workers      int
	maxAttempts  int
	backoff      time.Duration
	backoffMax   time.Duration
	timeout      time.Duration
	country      string
	flushEachPut bool
}

// NewClient builds a client from explicit configuration.
func NewClient(cfg *config.Config, fetcher Fetcher, store *cache.Store, metrics *Metrics) *Client {
	return &Client{
		fetcher:      fetcher,
		store:        store,
		metrics:      metrics,
		clock:        clockwork.NewRealClock(),
		workers:      cfg.Workers,
		maxAttempts:  cfg.MaxAttempts,
		backoff:      cfg.RetryBackoff,
		backoffMax:   cfg.RetryBackoffMax,
		timeout:      cfg.EnrichTimeout,
		country:      cfg.Country,
		flushEachPut: cfg.FlushEachPut,
	}
}

// Result reports the outcome of one enrichment pass. Records are in
// resolution order; Skipped lists the keys that could not be resolved.
type Result struct {
	Records   []*models.AppRecord
	Skipped   []string
	CacheHits int
	Fetched   int
	Retries   int
}

// Resolve standardizes one record per name, reading and updating the cache.
// Names are de-duplicated, so a key is never fetched twice concurrently.
// On the phase deadline, in-flight retries are cancelled and unresolved
// keys become skips; partial results are always valid. A fatal fetch
// failure is returned to the caller and aborts the phase, leaving
// already-cached state intact.
func (c *Client) Resolve(ctx context.Context, names []string) (*Result, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	unique := uniqueNames(names)
	jobs := make(chan string)
	go func() {
		defer close(jobs)
		for _, name := range unique {
			jobs <- name
		}
	}()

	var (
		mu       sync.Mutex
		result   = &Result{}
		fatalErr error
		wg       sync.WaitGroup
	)

	workers := c.workers
	if workers <= 0 {
		workers = 1
	}
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for name := range jobs {
				record, hit, retries, err := c.resolveOne(ctx, name)

				mu.Lock()
				result.Retries += retries
				switch {
				case err == nil:
					result.Records = append(result.Records, record)
					if hit {
						result.CacheHits++
					} else {
						result.Fetched++
					}
					c.metrics.IncResolved()
				case isFatal(err):
					if fatalErr == nil {
						fatalErr = fmt.Errorf("enrichment aborted: %w", err)
					}
					mu.Unlock()
					cancel()
					continue
				default:
					result.Skipped = append(result.Skipped, name)
					c.metrics.IncSkipped()
					slog.Debug("enrichment skip", slog.String("name", name), slog.Any("error", err))
				}
				mu.Unlock()
			}
		}()
	}

	wg.Wait()

	if err := c.store.Flush(); err != nil {
		slog.Error("cache flush failed", slog.Any("error", err))
	}
	return result, fatalErr
}

// resolveOne runs the state machine for a single key.
func (c *Client) resolveOne(ctx context.Context, name string) (record *models.AppRecord, cacheHit bool, retries int, err error) {
	if cached, ok := c.store.Get(name); ok {
		c.metrics.IncCacheHit()
		return cached, true, 0, nil
	}
	c.metrics.IncCacheMiss()

	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		if ctx.Err() != nil {
			return nil, false, retries, ctx.Err()
		}

		start := c.clock.Now()
		c.metrics.IncFetch()
		resp, fetchErr := c.fetcher.Fetch(ctx, Request{Query: name, Country: c.country})
		c.metrics.ObserveDuration(c.clock.Since(start))

		if fetchErr == nil {
			if len(resp.Candidates) == 0 {
				return nil, false, retries, errNoCandidates
			}
			record := Standardize(name, resp.Candidates[0])
			c.store.Put(name, record)
			if c.flushEachPut {
				if err := c.store.Flush(); err != nil {
					slog.Warn("incremental cache flush failed", slog.Any("error", err))
				}
			}
			return record, false, retries, nil
		}

		c.metrics.IncError(errorTypeLabel(fetchErr))
		if isFatal(fetchErr) {
			return nil, false, retries, fetchErr
		}
		if attempt == c.maxAttempts {
			return nil, false, retries, fmt.Errorf("attempts exhausted for %q: %w", name, fetchErr)
		}

		retries++
		c.metrics.IncRetries()
		select {
		case <-ctx.Done():
			return nil, false, retries, ctx.Err()
		case <-c.clock.After(c.backoffDelay(attempt)):
		}
	}
	return nil, false, retries, fmt.Errorf("attempts exhausted for %q", name)
}

func (c *Client) backoffDelay(attempt int) time.Duration {
	if attempt <= 0 {
		attempt = 1
	}

	base := c.backoff
	if base <= 0 {
		base = 100 * time.Millisecond
	}

	delay := base * time.Duration(1<<(attempt-1))
	if max := c.backoffMax; max > 0 && delay > max {
		delay = max
	}
	return delay
}

// Standardize maps a loosely-shaped candidate into the canonical record
// shape via explicit field mapping. The candidate itself is never mutated,
// and a previously cached entry is never touched.
func Standardize(name string, candidate Candidate) *models.AppRecord {
	title := candidate.StringField("title")
	if title == "" {
		title = name
	}
	category := candidate.StringField("category")
	if category == "" {
		category = "UNKNOWN"
	}

	record := &models.AppRecord{
		Name:          title,
		Category:      category,
		ContentRating: candidate.StringField("content_rating"),
		Source:        models.SourceAppStore,
	}
	if rating, ok := candidate.FloatField("rating"); ok {
		record.Rating = models.Float(rating)
	}
	if reviews, ok := candidate.IntField("review_count"); ok {
		record.ReviewCount = models.Int(reviews)
	}
	if installs, ok := candidate.IntField("installs_estimate"); ok {
		record.Installs = models.Int(installs)
	} else {
		record.Installs = models.Int(0)
	}

	price := 0.0
	if value, ok := candidate.FloatField("price"); ok {
		price = value
	}
	record.Price = models.Float(price)
	if price == 0 {
		record.Type = "Free"
	} else {
		record.Type = "Paid"
	}

	if updated := candidate.StringField("last_updated"); updated != "" {
		record.LastUpdated = models.String(updated)
	}
	return record
}

func uniqueNames(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	unique := make([]string, 0, len(names))
	for _, name := range names {
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		unique = append(unique, name)
	}
	return unique
}
