// Package models defines the canonical dataset records.
package models

// Source tags identifying record provenance.
const (
	SourceGooglePlay = "Google_Play"
	SourceAppStore   = "Apple_App_Store"
)

// CanonicalColumns is the fixed output column set, in order. Every row the
// merger emits has exactly these columns; defined once, here.
var CanonicalColumns = []string{
	"Name",
	"Category",
	"Rating",
	"Review_Count",
	"Installs",
	"Type",
	"Price",
	"Content_Rating",
	"Size_Bytes",
	"Required_Android_Version",
	"Last_Updated_Date",
	"Avg_Sentiment_Polarity",
	"Source",
}

// AppRecord is one row of the canonical schema. Nullable columns are
// pointers; a nil pointer serializes as an empty CSV cell.
type AppRecord struct {
	Name            string   `csv:"Name" json:"name"`
	Category        string   `csv:"Category" json:"category"`
	Rating          *float64 `csv:"Rating" json:"rating"`
	ReviewCount     *int64   `csv:"Review_Count" json:"review_count"`
	Installs        *int64   `csv:"Installs" json:"installs"`
	Type            string   `csv:"Type" json:"type"`
	Price           *float64 `csv:"Price" json:"price"`
	ContentRating   string   `csv:"Content_Rating" json:"content_rating"`
	SizeBytes       *float64 `csv:"Size_Bytes" json:"size_bytes"`
	RequiredVersion *string  `csv:"Required_Android_Version" json:"required_android_version"`
	LastUpdated     *string  `csv:"Last_Updated_Date" json:"last_updated_date"`

	// Always populated; 0.0 means neutral.
	AvgSentimentPolarity float64 `csv:"Avg_Sentiment_Polarity" json:"avg_sentiment_polarity"`

	Source string `csv:"Source" json:"source"`
}

// Float returns a pointer to v.
func Float(v float64) *float64 { return &v }

// Int returns a pointer to v.
func Int(v int64) *int64 { return &v }

// String returns a pointer to v.
func String(v string) *string { return &v }
