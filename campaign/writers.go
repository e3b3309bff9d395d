package campaign

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// WriteRaw persists generated campaign records.
func WriteRaw(records []Record, filename string) error {
	header := []string{
		"Date", "Campaign_Platform", "Campaign_Type", "Ad_Spend_USD", "Clicks",
		"Impressions", "Conversions", "Revenue_USD", "Target_Audience", "Keyword",
	}
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, rawRow(r))
	}
	return writeCSV(filename, header, rows)
}

// WriteProcessed persists analyzed campaign records with derived metrics.
func WriteProcessed(records []Analyzed, filename string) error {
	header := []string{
		"Date", "Campaign_Platform", "Campaign_Type", "Ad_Spend_USD", "Clicks",
		"Impressions", "Conversions", "Revenue_USD", "Target_Audience", "Keyword",
		"CAC_USD", "ROAS",
	}
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		row := rawRow(r.Record)
		row = append(row,
			strconv.FormatFloat(r.CACUSD, 'f', -1, 64),
			strconv.FormatFloat(r.ROAS, 'f', -1, 64),
		)
		rows = append(rows, row)
	}
	return writeCSV(filename, header, rows)
}

func rawRow(r Record) []string {
	return []string{
		r.Date,
		r.Platform,
		r.Type,
		strconv.FormatFloat(r.AdSpendUSD, 'f', 2, 64),
		strconv.Itoa(r.Clicks),
		strconv.Itoa(r.Impressions),
		strconv.Itoa(r.Conversions),
		strconv.FormatFloat(r.RevenueUSD, 'f', 2, 64),
		r.Audience,
		r.Keyword,
	}
}

func writeCSV(filename string, header []string, rows [][]string) error {
	dir := filepath.Dir(filename)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}

	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	writer := csv.NewWriter(f)
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	if err := writer.WriteAll(rows); err != nil {
		return fmt.Errorf("write csv rows: %w", err)
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}
