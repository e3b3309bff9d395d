// Package campaign generates and analyzes mock D2C campaign performance
// data alongside the app dataset pipeline.
package campaign

import (
	"math"
	"math/rand"
	"time"
)

// Record is one raw campaign performance row.
type Record struct {
	Date        string
	Platform    string
	Type        string
	AdSpendUSD  float64
	Clicks      int
	Impressions int
	Conversions int
	RevenueUSD  float64
	Audience    string
	Keyword     string
}

// Analyzed extends a record with the derived funnel metrics.
type Analyzed struct {
	Record
	CACUSD float64
	ROAS   float64
}

var (
	platforms       = []string{"Facebook", "Google Search", "Instagram", "TikTok"}
	platformWeights = []float64{0.35, 0.40, 0.15, 0.10}
	types           = []string{"Brand Awareness", "Performance/ROAS", "App Install", "Re-engagement"}
	typeWeights     = []float64{0.1, 0.5, 0.2, 0.2}
	audiences       = []string{"Millennials", "Gen Z", "Working Professionals", "Students"}
	keywords        = []string{
		"best budget planning app", "free habit tracker", "mobile finance solutions",
		"easy goal setting", "top rated productivity app", "secure investment tracker",
	}
	keywordWeights = []float64{0.25, 0.15, 0.2, 0.15, 0.1, 0.15}
)

// Generate produces n mock campaign records. Output is deterministic for a
// given seed.
func Generate(n int, seed int64) []Record {
	rng := rand.New(rand.NewSource(seed))
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	records := make([]Record, 0, n)
	for i := 0; i < n; i++ {
		record := Record{
			Date:        base.AddDate(0, 0, rng.Intn(365)).Format("2006-01-02"),
			Platform:    weightedChoice(rng, platforms, platformWeights),
			Type:        weightedChoice(rng, types, typeWeights),
			AdSpendUSD:  round2(5.0 + rng.Float64()*495.0),
			Clicks:      50 + rng.Intn(4950),
			Impressions: 500 + rng.Intn(49500),
			Conversions: poisson(rng, 10),
			RevenueUSD:  round2(rng.Float64() * 1000.0),
			Audience:    audiences[rng.Intn(len(audiences))],
			Keyword:     "N/A",
		}

		// Low-converting campaigns rarely carry real revenue, and app
		// install campaigns are not direct-revenue campaigns.
		if record.Conversions < 5 {
			record.RevenueUSD = round2(record.RevenueUSD * 0.1)
		}
		if record.Type == "App Install" {
			record.RevenueUSD = 0
		}

		if record.Platform == "Google Search" {
			record.Keyword = weightedChoice(rng, keywords, keywordWeights)
		}

		records = append(records, record)
	}
	return records
}

// Analyze derives CAC and ROAS. Rows with zero conversions are excluded
// (CAC is undefined for them); ROAS at zero spend is defined as exactly
// 0.0, never Inf.
func Analyze(records []Record) []Analyzed {
	analyzed := make([]Analyzed, 0, len(records))
	for _, record := range records {
		if record.Conversions <= 0 {
			continue
		}

		row := Analyzed{
			Record: record,
			CACUSD: record.AdSpendUSD / float64(record.Conversions),
		}
		if record.AdSpendUSD == 0 {
			row.ROAS = 0.0
		} else {
			row.ROAS = record.RevenueUSD / record.AdSpendUSD
		}
		analyzed = append(analyzed, row)
	}
	return analyzed
}

func weightedChoice(rng *rand.Rand, values []string, weights []float64) string {
	r := rng.Float64()
	acc := 0.0
	for i, w := range weights {
		acc += w
		if r < acc {
			return values[i]
		}
	}
	return values[len(values)-1]
}

// poisson draws via Knuth's method; fine for small lambda.
func poisson(rng *rand.Rand, lambda float64) int {
	limit := math.Exp(-lambda)
	k := 0
	p := 1.0
	for {
		p *= rng.Float64()
		if p <= limit {
			return k
		}
		k++
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
