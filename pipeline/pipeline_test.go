package pipeline

import (
	"context"
	"encoding/csv"
	"math"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"testing"

	"github.com/aluiziolira/go-apps-merge/config"
	"github.com/aluiziolira/go-apps-merge/enrich"
	"github.com/aluiziolira/go-apps-merge/models"
)

const primaryHeader = "App,Category,Rating,Reviews,Size,Installs,Type,Price,Content Rating,Genres,Last Updated,Current Ver,Android Ver"

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.PrimaryFile = filepath.Join(dir, "apps.csv")
	cfg.ReviewsFile = filepath.Join(dir, "reviews.csv")
	cfg.CacheFile = filepath.Join(dir, "cache.json")
	cfg.OutputFile = filepath.Join(dir, "combined.csv")
	cfg.Workers = 2
	cfg.SampleSize = 10
	return cfg
}

func TestRunEndToEnd(t *testing.T) {
	cfg := testConfig(t)

	writeFile(t, cfg.PrimaryFile, primaryHeader+"\n"+
		`Sentinel App,LIFESTYLE,1.9,19,3.0M,Free,0,Everyone,,February 11 2018,1.0.19,4.0 and up,`+"\n"+
		`Solo App,TOOLS,4.1,50,10M,"1,000+",Free,0,Everyone,Tools,January 1 2018,1.0,4.0 and up`+"\n"+
		`Popular App,GAME,4.5,900,Varies with device,"1,000,000+",Free,0,Everyone,Action,March 5 2018,2.0,4.4 and up`+"\n")
	writeFile(t, cfg.ReviewsFile, "App,Sentiment_Polarity\n"+
		"Popular App,0.1\n"+
		"Popular App,0.3\n")

	p := New(cfg, enrich.SyntheticFetcher{})
	summary, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if summary.PrimaryRows != 2 {
		t.Fatalf("primary rows = %d, want 2 (sentinel row dropped)", summary.PrimaryRows)
	}
	if summary.EnrichedRows != 2 {
		t.Fatalf("enriched rows = %d, want 2", summary.EnrichedRows)
	}
	if summary.TotalRows != 4 {
		t.Fatalf("total rows = %d, want 4", summary.TotalRows)
	}

	f, err := os.Open(cfg.OutputFile)
	if err != nil {
		t.Fatalf("open output: %v", err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if !reflect.DeepEqual(rows[0], models.CanonicalColumns) {
		t.Fatalf("header = %v, want canonical columns", rows[0])
	}

	byName := make(map[string][]string)
	for _, row := range rows[1:] {
		if len(row) != len(models.CanonicalColumns) {
			t.Fatalf("row has %d columns, want %d: %v", len(row), len(models.CanonicalColumns), row)
		}
		// Primary rows come first, so enrichment duplicates do not clobber.
		if _, ok := byName[row[0]]; !ok {
			byName[row[0]] = row
		}
	}
	if _, ok := byName["Sentinel App"]; ok {
		t.Fatalf("sentinel row survived cleaning")
	}

	solo := byName["Solo App"]
	if solo == nil {
		t.Fatalf("Solo App missing from output")
	}
	if solo[8] != "10485760" {
		t.Fatalf("Solo App size = %q, want 10485760", solo[8])
	}
	if solo[11] != "0" {
		t.Fatalf("Solo App sentiment = %q, want neutral 0", solo[11])
	}

	popular := byName["Popular App"]
	if popular == nil {
		t.Fatalf("Popular App missing from output")
	}
	if popular[8] != "" {
		t.Fatalf("Popular App size = %q, want empty (varies with device)", popular[8])
	}
	sentiment, err := strconv.ParseFloat(popular[11], 64)
	if err != nil || math.Abs(sentiment-0.2) > 1e-9 {
		t.Fatalf("Popular App sentiment = %q, want 0.2", popular[11])
	}

	appStoreRows := 0
	for _, row := range rows[1:] {
		if row[12] == models.SourceAppStore {
			appStoreRows++
		}
	}
	if appStoreRows != 2 {
		t.Fatalf("app store rows = %d, want 2", appStoreRows)
	}
}

func TestRunUsesCacheAcrossRuns(t *testing.T) {
	cfg := testConfig(t)
	writeFile(t, cfg.PrimaryFile, primaryHeader+"\n"+
		`Solo App,TOOLS,4.1,50,10M,"1,000+",Free,0,Everyone,Tools,January 1 2018,1.0,4.0 and up`+"\n")

	first := New(cfg, enrich.SyntheticFetcher{})
	summaryA, err := first.Run(context.Background())
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	if summaryA.Fetched != 1 || summaryA.CacheHits != 0 {
		t.Fatalf("first run fetched/hits = %d/%d, want 1/0", summaryA.Fetched, summaryA.CacheHits)
	}

	second := New(cfg, enrich.SyntheticFetcher{})
	summaryB, err := second.Run(context.Background())
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if summaryB.Fetched != 0 || summaryB.CacheHits != 1 {
		t.Fatalf("second run fetched/hits = %d/%d, want 0/1", summaryB.Fetched, summaryB.CacheHits)
	}
}

func TestRunMissingPrimaryIsFatal(t *testing.T) {
	cfg := testConfig(t)
	p := New(cfg, enrich.SyntheticFetcher{})
	if _, err := p.Run(context.Background()); err == nil {
		t.Fatalf("expected fatal error for missing primary file")
	}
}

func TestSampleNames(t *testing.T) {
	records := []*models.AppRecord{
		{Name: "A"}, {Name: "B"}, {Name: "C"}, {Name: "D"}, {Name: "E"},
	}

	sample := SampleNames(records, 3, 42)
	if len(sample) != 3 {
		t.Fatalf("sample size = %d, want 3", len(sample))
	}

	again := SampleNames(records, 3, 42)
	if !reflect.DeepEqual(sample, again) {
		t.Fatalf("sampling must be reproducible for one seed: %v vs %v", sample, again)
	}

	all := SampleNames(records, 10, 42)
	if len(all) != 5 {
		t.Fatalf("cap above population should return everything, got %d", len(all))
	}
}
