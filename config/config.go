// Package config holds explicit pipeline configuration.
package config

import (
	"fmt"
	"time"
)

// Config holds pipeline configuration. Every component receives the values
// it needs at construction; nothing reads ambient globals.
type Config struct {
	PrimaryFile     string
	ReviewsFile     string
	CacheFile       string
	OutputFile      string
	OutputFormat    string // csv, json, or dual
	SampleSize      int
	SampleSeed      int64
	Workers         int
	MaxAttempts     int
	RetryBackoff    time.Duration
	RetryBackoffMax time.Duration
	EnrichTimeout   time.Duration
	FlushEachPut    bool
	Timeout         time.Duration
	APIKey          string
	APIHost         string
	Country         string
	UseMockAPI      bool
	MetricsAddr     string
	Verbose         bool

	// Campaign stage (optional, -campaigns).
	CampaignRecords int
	CampaignSeed    int64
	CampaignRawFile string
	CampaignOutFile string
}

// DefaultConfig returns conservative defaults for a local run.
func DefaultConfig() *Config {
	return &Config{
		PrimaryFile:     "data/google_play_apps.csv",
		ReviewsFile:     "data/googleplaystore_user_reviews.csv",
		CacheFile:       "data/cache/appstore_cache.json",
		OutputFile:      "data/processed/apps_combined.csv",
		OutputFormat:    "csv",
		SampleSize:      100,
		SampleSeed:      1,
		Workers:         8,
		MaxAttempts:     3,
		RetryBackoff:    200 * time.Millisecond,
		RetryBackoffMax: 5 * time.Second,
		EnrichTimeout:   2 * time.Minute,
		FlushEachPut:    true,
		Timeout:         10 * time.Second,
		APIHost:         "appstore-scrapper-api.p.rapidapi.com",
		Country:         "us",
		UseMockAPI:      true,
		MetricsAddr:     "",
		Verbose:         false,
		CampaignRecords: 2000,
		CampaignSeed:    1,
		CampaignRawFile: "data/raw/d2c_campaigns_raw.csv",
		CampaignOutFile: "data/processed/d2c_campaigns_processed.csv",
	}
}

// Validate ensures all configuration values are coherent.
func (c *Config) Validate() error {
	if c.PrimaryFile == "" {
		return fmt.Errorf("primary file cannot be empty")
	}
	if c.CacheFile == "" {
		return fmt.Errorf("cache file cannot be empty")
	}
	if c.OutputFile == "" {
		return fmt.Errorf("output file cannot be empty")
	}
	if c.OutputFormat != "csv" && c.OutputFormat != "json" && c.OutputFormat != "dual" {
		return fmt.Errorf("output format must be csv, json, or dual")
	}
	if c.SampleSize <= 0 {
		return fmt.Errorf("sample size must be positive")
	}
	if c.Workers <= 0 {
		return fmt.Errorf("workers must be positive")
	}
	if c.MaxAttempts <= 0 {
		return fmt.Errorf("max attempts must be positive")
	}
	if c.RetryBackoff < 0 {
		return fmt.Errorf("retry backoff cannot be negative")
	}
	if c.RetryBackoffMax < 0 {
		return fmt.Errorf("retry backoff max cannot be negative")
	}
	if c.RetryBackoffMax > 0 && c.RetryBackoff > c.RetryBackoffMax {
		return fmt.Errorf("retry backoff (%s) cannot exceed retry backoff max (%s)", c.RetryBackoff, c.RetryBackoffMax)
	}
	if c.EnrichTimeout < 0 {
		return fmt.Errorf("enrich timeout cannot be negative")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if !c.UseMockAPI {
		if c.APIKey == "" {
			return fmt.Errorf("API key required for live lookups")
		}
		if c.APIHost == "" {
			return fmt.Errorf("API host required for live lookups")
		}
	}
	if c.CampaignRecords <= 0 {
		return fmt.Errorf("campaign records must be positive")
	}
	return nil
}
