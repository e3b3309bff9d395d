package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/aluiziolira/go-apps-merge/models"
)

// AttachSentiment computes the mean sentiment polarity per app from the
// reviews file and joins it onto the cleaned primary table. Apps with no
// matching reviews keep the neutral default of 0.0. A missing reviews file
// is a degraded-but-valid case: the whole column stays neutral and the
// pipeline continues.
func AttachSentiment(records []*models.AppRecord, path string) error {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			slog.Warn("reviews file not found, sentiment defaults to neutral", slog.String("file", path))
			return nil
		}
		return fmt.Errorf("open reviews file: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return fmt.Errorf("read reviews header: %w", err)
	}
	index := headerIndex(header)
	if missing := ReviewsDialect.missingColumns(index); len(missing) > 0 {
		return SchemaError{File: path, Columns: missing}
	}

	sums := make(map[string]float64)
	counts := make(map[string]int)
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("read reviews row: %w", err)
		}

		polarity := parseFloat(field(row, index, "Sentiment_Polarity"))
		if polarity == nil {
			continue
		}
		name := field(row, index, "App")
		sums[name] += *polarity
		counts[name]++
	}

	matched := 0
	for _, record := range records {
		if n := counts[record.Name]; n > 0 {
			record.AvgSentimentPolarity = sums[record.Name] / float64(n)
			matched++
		} else {
			record.AvgSentimentPolarity = 0.0
		}
	}

	slog.Info("reviews joined",
		slog.String("file", path),
		slog.Int("apps_with_sentiment", matched),
	)
	return nil
}
