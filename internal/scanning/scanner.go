package scanning

import "context"

// ExtractedItem is one purchased line read off a receipt.
type ExtractedItem struct {
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity"`
	Price    float64 `json:"price"`
}

// Extraction contains the text read from a receipt photo.
type Extraction struct {
	Merchant string          `json:"merchant"`
	Location string          `json:"location"`
	Date     string          `json:"date"` // ISO 8601 format
	Items    []ExtractedItem `json:"items"`
}

// Extractor turns a receipt photo into item strings and prices.
type Extractor interface {
	// ExtractItems reads the items of a receipt image or PDF
	ExtractItems(ctx context.Context, imageData []byte, contentType string) (*Extraction, error)
	// Close releases the extractor's resources
	Close() error
}
