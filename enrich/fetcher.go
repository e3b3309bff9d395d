// Package enrich resolves per-app enrichment records from an external
// source, consulting and updating the durable cache with retry/backoff.
package enrich

import (
	"context"
	"strings"
)

// Request identifies one enrichment lookup.
type Request struct {
	Query   string
	Country string
}

// Candidate is one loosely-shaped provider record. Field names vary by
// provider and by casing; use the accessors for case-insensitive reads.
type Candidate map[string]any

// StringField returns the named field as a string, or "".
func (c Candidate) StringField(name string) string {
	value, ok := c.lookup(name)
	if !ok {
		return ""
	}
	s, _ := value.(string)
	return strings.TrimSpace(s)
}

// FloatField returns the named field as a float64.
func (c Candidate) FloatField(name string) (float64, bool) {
	value, ok := c.lookup(name)
	if !ok {
		return 0, false
	}
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	}
	return 0, false
}

// IntField returns the named field as an int64.
func (c Candidate) IntField(name string) (int64, bool) {
	value, ok := c.FloatField(name)
	if !ok {
		return 0, false
	}
	return int64(value), true
}

func (c Candidate) lookup(name string) (any, bool) {
	if value, ok := c[name]; ok {
		return value, true
	}
	for key, value := range c {
		if strings.EqualFold(key, name) {
			return value, true
		}
	}
	return nil, false
}

// Response carries zero or more candidates for a request.
type Response struct {
	Candidates []Candidate
}

// Fetcher resolves one request against an external source. The live HTTP
// fetcher and the synthetic generator conform to the same contract and are
// interchangeable without touching the resolution logic.
type Fetcher interface {
	Fetch(ctx context.Context, req Request) (*Response, error)
}
