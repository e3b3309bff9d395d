package dataset

import (
	"log/slog"

	"github.com/aluiziolira/go-apps-merge/models"
)

// Merge unions the sentiment-joined primary table with the enrichment
// table into the canonical combined table. Both sides already carry the
// full canonical column set (absent fields are nil), so reindexing is by
// construction; row order is primary rows first, then enrichment rows in
// resolution order. The same logical app observed from two provenances is
// kept as two rows.
func Merge(primary, enriched []*models.AppRecord) []*models.AppRecord {
	combined := make([]*models.AppRecord, 0, len(primary)+len(enriched))
	combined = append(combined, primary...)
	combined = append(combined, enriched...)

	slog.Info("datasets merged",
		slog.Int("primary_rows", len(primary)),
		slog.Int("enriched_rows", len(enriched)),
		slog.Int("total_rows", len(combined)),
	)
	return combined
}
