// Package dataset loads, cleans, joins, and merges the app tables.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/aluiziolira/go-apps-merge/models"
)

// installsSentinel marks the known corrupted row in the primary export,
// where a shifted column leaves a type flag in the installs field.
const installsSentinel = "Free"

// sizeSentinel is the upstream placeholder for an unknown app size.
const sizeSentinel = "Varies with device"

// LoadPrimary reads the primary export and returns the cleaned table in
// canonical pre-merge shape. Rows carrying the installs corruption sentinel
// are dropped before any parsing, exact-duplicate rows are removed, and
// rows missing a critical field (name, category, rating, installs) are
// dropped as a data-quality gate.
func LoadPrimary(path string) ([]*models.AppRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, NotFoundError{Path: path, Err: err}
		}
		return nil, fmt.Errorf("open primary file: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read primary header: %w", err)
	}
	index := headerIndex(header)
	if missing := GooglePlayDialect.missingColumns(index); len(missing) > 0 {
		return nil, SchemaError{File: path, Columns: missing}
	}

	var (
		records   []*models.AppRecord
		seenRows  = make(map[string]struct{})
		seenNames = make(map[string]struct{})
		dropped   struct{ sentinel, duplicate, gated int }
	)

	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read primary row: %w", err)
		}

		if field(row, index, "Installs") == installsSentinel {
			dropped.sentinel++
			continue
		}

		rowKey := strings.Join(row, "\x1f")
		if _, ok := seenRows[rowKey]; ok {
			dropped.duplicate++
			continue
		}
		seenRows[rowKey] = struct{}{}

		record := &models.AppRecord{
			Name:            strings.TrimSpace(field(row, index, "App")),
			Category:        strings.TrimSpace(field(row, index, "Category")),
			Rating:          parseFloat(field(row, index, "Rating")),
			ReviewCount:     parseInt(field(row, index, "Reviews")),
			Installs:        ParseInstalls(field(row, index, "Installs")),
			Type:            strings.TrimSpace(field(row, index, "Type")),
			Price:           ParsePrice(field(row, index, "Price")),
			ContentRating:   strings.TrimSpace(field(row, index, "Content Rating")),
			SizeBytes:       ParseSizeBytes(field(row, index, "Size")),
			RequiredVersion: optionalString(field(row, index, "Android Ver")),
			LastUpdated:     optionalString(field(row, index, "Last Updated")),
			Source:          models.SourceGooglePlay,
		}

		if record.Name == "" || record.Category == "" || record.Rating == nil || record.Installs == nil {
			dropped.gated++
			continue
		}

		// Name is the natural key within one source's cleaned table.
		if _, ok := seenNames[record.Name]; ok {
			dropped.duplicate++
			continue
		}
		seenNames[record.Name] = struct{}{}

		records = append(records, record)
	}

	slog.Info("primary source cleaned",
		slog.String("file", path),
		slog.Int("rows", len(records)),
		slog.Int("sentinel_dropped", dropped.sentinel),
		slog.Int("duplicates_dropped", dropped.duplicate),
		slog.Int("quality_gated", dropped.gated),
	)
	return records, nil
}

// ParseInstalls strips thousands separators and the trailing "+" marker and
// coerces to a nullable integer. Malformed entries yield nil, not an error.
func ParseInstalls(s string) *int64 {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "+")
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return nil
	}
	value, err := strconv.ParseInt(s, 10, 64)
	if err != nil || value < 0 {
		return nil
	}
	return models.Int(value)
}

// ParsePrice strips a leading currency symbol and coerces to a nullable
// float. Malformed entries yield nil.
func ParsePrice(s string) *float64 {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "$")
	if s == "" {
		return nil
	}
	value, err := strconv.ParseFloat(s, 64)
	if err != nil || value < 0 {
		return nil
	}
	return models.Float(value)
}

// ParseSizeBytes converts a human-readable size to bytes: "M" means
// value × 1024², "k"/"K" means value × 1024. The "Varies with device"
// sentinel and any unrecognized form map to nil.
func ParseSizeBytes(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, sizeSentinel) {
		return nil
	}

	multiplier := 0.0
	switch {
	case strings.HasSuffix(s, "M"), strings.HasSuffix(s, "m"):
		multiplier = 1024 * 1024
	case strings.HasSuffix(s, "K"), strings.HasSuffix(s, "k"):
		multiplier = 1024
	default:
		return nil
	}

	value, err := strconv.ParseFloat(s[:len(s)-1], 64)
	if err != nil || value < 0 {
		return nil
	}
	return models.Float(value * multiplier)
}

func parseFloat(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	value, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(value) {
		return nil
	}
	return models.Float(value)
}

func parseInt(s string) *int64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	value, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil
	}
	return models.Int(value)
}

func optionalString(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" || s == "NaN" {
		return nil
	}
	return models.String(s)
}

func headerIndex(header []string) map[string]int {
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(name)] = i
	}
	return index
}

// field reads a named column, tolerating ragged rows: a row shorter than
// the header yields "" for the missing trailing columns.
func field(row []string, index map[string]int, name string) string {
	i, ok := index[name]
	if !ok || i >= len(row) {
		return ""
	}
	return row[i]
}
