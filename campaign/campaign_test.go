package campaign

import (
	"encoding/csv"
	"math"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestGenerateIsDeterministic(t *testing.T) {
	first := Generate(50, 7)
	second := Generate(50, 7)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("records differ between runs with the same seed")
	}
	if len(first) != 50 {
		t.Fatalf("records = %d, want 50", len(first))
	}
}

func TestGenerateBusinessRules(t *testing.T) {
	records := Generate(500, 11)
	for _, record := range records {
		if record.Type == "App Install" && record.RevenueUSD != 0 {
			t.Fatalf("app install campaign has revenue: %+v", record)
		}
		if record.Platform != "Google Search" && record.Keyword != "N/A" {
			t.Fatalf("keyword injected outside search campaigns: %+v", record)
		}
		if record.Platform == "Google Search" && record.Keyword == "N/A" {
			t.Fatalf("search campaign missing keyword: %+v", record)
		}
		if record.AdSpendUSD < 5.0 || record.AdSpendUSD > 500.0 {
			t.Fatalf("spend out of range: %f", record.AdSpendUSD)
		}
	}
}

func TestAnalyzeDerivedMetrics(t *testing.T) {
	records := []Record{
		{AdSpendUSD: 100, Conversions: 4, RevenueUSD: 50},
		{AdSpendUSD: 100, Conversions: 0, RevenueUSD: 500},
		{AdSpendUSD: 0, Conversions: 2, RevenueUSD: 80},
	}

	analyzed := Analyze(records)
	if len(analyzed) != 2 {
		t.Fatalf("analyzed rows = %d, want 2 (zero-conversion row excluded)", len(analyzed))
	}

	if math.Abs(analyzed[0].CACUSD-25.0) > 1e-9 {
		t.Fatalf("CAC = %f, want 25.0", analyzed[0].CACUSD)
	}
	if math.Abs(analyzed[0].ROAS-0.5) > 1e-9 {
		t.Fatalf("ROAS = %f, want 0.5", analyzed[0].ROAS)
	}

	// Zero spend never yields Inf.
	if analyzed[1].ROAS != 0.0 {
		t.Fatalf("zero-spend ROAS = %f, want exactly 0.0", analyzed[1].ROAS)
	}
	if math.IsInf(analyzed[1].CACUSD, 0) || math.IsNaN(analyzed[1].CACUSD) {
		t.Fatalf("zero-spend CAC = %f", analyzed[1].CACUSD)
	}
}

func TestWriters(t *testing.T) {
	dir := t.TempDir()
	rawPath := filepath.Join(dir, "raw", "campaigns.csv")
	outPath := filepath.Join(dir, "processed", "campaigns.csv")

	records := Generate(20, 3)
	if err := WriteRaw(records, rawPath); err != nil {
		t.Fatalf("write raw: %v", err)
	}
	analyzed := Analyze(records)
	if err := WriteProcessed(analyzed, outPath); err != nil {
		t.Fatalf("write processed: %v", err)
	}

	f, err := os.Open(outPath)
	if err != nil {
		t.Fatalf("open processed: %v", err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read processed: %v", err)
	}
	if len(rows) != len(analyzed)+1 {
		t.Fatalf("rows = %d, want %d", len(rows), len(analyzed)+1)
	}
	header := rows[0]
	if header[len(header)-2] != "CAC_USD" || header[len(header)-1] != "ROAS" {
		t.Fatalf("derived metric columns missing: %v", header)
	}
}
