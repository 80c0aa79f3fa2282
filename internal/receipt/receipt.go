package receipt

import (
	"time"

	"github.com/zombor/footprint/internal/emission"
	"github.com/zombor/footprint/internal/quality"
)

// Source records how a basket entered the system.
type Source string

const (
	SourceManual     Source = "manual"
	SourceScan       Source = "scan"
	SourceExtraction Source = "extraction"
)

// Basket represents an estimated shopping basket with its purchase context
type Basket struct {
	ID        string                `json:"id"`
	Merchant  string                `json:"merchant"`
	Location  string                `json:"location"`
	Date      time.Time             `json:"date"`
	Source    Source                `json:"source"`
	Lines     []emission.Line       `json:"lines"`
	Spend     float64               `json:"spend"` // Sum of line prices when known
	Result    emission.BasketResult `json:"result"`
	Quality   *quality.Result       `json:"quality,omitempty"` // Set for scanned receipts
	Image     string                `json:"image,omitempty"`   // Stored enhanced PNG of scanned receipts
	CreatedAt time.Time             `json:"created_at"`
}

// ItemRequest asks for the estimate of a single product
type ItemRequest struct {
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity"`
	Merchant string  `json:"merchant"`
	Location string  `json:"location"`
}

// BasketRequest asks for the estimate of several products bought together
type BasketRequest struct {
	Merchant string          `json:"merchant"`
	Location string          `json:"location"`
	Date     string          `json:"date"` // Optional, YYYY-MM-DD
	Items    []emission.Line `json:"items"`
	Save     bool            `json:"save"`
}

// Category describes one entry of the emission factor table
type Category struct {
	Name   string                  `json:"name"`
	Factor emission.EmissionFactor `json:"factor"`
}
