package dataset

// Dialect declares how a known source file maps onto the canonical schema.
// Required columns are validated up front so a schema failure enumerates
// every missing column instead of surfacing one alias miss at a time.
type Dialect struct {
	Name     string
	Required []string
}

// GooglePlayDialect describes the primary Kaggle export.
var GooglePlayDialect = Dialect{
	Name: "google_play",
	Required: []string{
		"App",
		"Category",
		"Rating",
		"Reviews",
		"Installs",
		"Type",
		"Price",
		"Content Rating",
		"Size",
		"Android Ver",
		"Last Updated",
	},
}

// ReviewsDialect describes the secondary per-review sentiment export.
var ReviewsDialect = Dialect{
	Name: "google_play_reviews",
	Required: []string{
		"App",
		"Sentiment_Polarity",
	},
}

// missingColumns returns the required columns absent from the header.
func (d Dialect) missingColumns(index map[string]int) []string {
	var missing []string
	for _, col := range d.Required {
		if _, ok := index[col]; !ok {
			missing = append(missing, col)
		}
	}
	return missing
}
