package enrich

import (
	"context"
	"hash/fnv"
	"math/rand"
)

var (
	mockCategories     = []string{"FINANCE", "GAME", "SOCIAL", "PHOTOGRAPHY", "BUSINESS"}
	mockInstallTiers   = []int64{100000, 500000, 1000000, 5000000}
	mockPaidPrices     = []float64{0.99, 1.99, 4.99}
	mockContentRatings = []string{"Everyone", "Teen", "Mature 17+"}
)

// SyntheticFetcher generates plausible app store candidates without any
// network traffic. Output is a pure function of the query, so repeated
// lookups for the same name always agree.
type SyntheticFetcher struct{}

// Fetch returns one deterministic candidate for the query.
func (SyntheticFetcher) Fetch(ctx context.Context, req Request) (*Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	h := fnv.New64a()
	h.Write([]byte(req.Query))
	rng := rand.New(rand.NewSource(int64(h.Sum64())))

	price := 0.0
	if rng.Float64() < 0.2 {
		price = mockPaidPrices[rng.Intn(len(mockPaidPrices))]
	}

	candidate := Candidate{
		"title":             req.Query,
		"category":          mockCategories[rng.Intn(len(mockCategories))],
		"rating":            3.8 + rng.Float64()*1.2,
		"review_count":      int64(500 + rng.Intn(49500)),
		"installs_estimate": mockInstallTiers[rng.Intn(len(mockInstallTiers))],
		"price":             price,
		"content_rating":    mockContentRatings[rng.Intn(len(mockContentRatings))],
		"last_updated":      "2024-08-01",
	}
	return &Response{Candidates: []Candidate{candidate}}, nil
}
