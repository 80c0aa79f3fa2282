package scanning

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// UnknownMerchant is used when the extractor could not read a store name.
const UnknownMerchant = "Unknown Merchant"

// ErrNoJSON is returned when an extractor reply contains no JSON object.
var ErrNoJSON = errors.New("no JSON object found in response")

var dateFormats = []string{
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	"02-01-2006",
	"01/02/06",
}

// ParseExtraction parses an extractor reply. The reply may wrap the JSON in
// markdown code blocks or prose. Unreadable dates fall back to today and
// items without a name are dropped.
func ParseExtraction(text string) (*Extraction, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSpace(text)

	// Find the JSON object boundaries - look for first { and last }
	startIdx := strings.Index(text, "{")
	if startIdx == -1 {
		return nil, ErrNoJSON
	}
	endIdx := strings.LastIndex(text, "}")
	if endIdx < startIdx {
		return nil, fmt.Errorf("invalid JSON object in response")
	}
	text = text[startIdx : endIdx+1]

	var data Extraction
	if err := json.Unmarshal([]byte(text), &data); err != nil {
		return nil, fmt.Errorf("unmarshaling json: %w", err)
	}

	data.Date = normalizeDate(data.Date)

	data.Merchant = strings.TrimSpace(data.Merchant)
	if data.Merchant == "" {
		data.Merchant = UnknownMerchant
	}
	data.Location = strings.TrimSpace(data.Location)

	items := make([]ExtractedItem, 0, len(data.Items))
	for _, item := range data.Items {
		item.Name = strings.TrimSpace(item.Name)
		if item.Name == "" {
			continue
		}
		if item.Quantity <= 0 {
			item.Quantity = 1
		}
		items = append(items, item)
	}
	data.Items = items

	return &data, nil
}

// normalizeDate rewrites a date in any known format as YYYY-MM-DD, or
// returns today's date.
func normalizeDate(date string) string {
	date = strings.TrimSpace(date)
	for _, format := range dateFormats {
		if d, err := time.Parse(format, date); err == nil {
			return d.Format("2006-01-02")
		}
	}
	return time.Now().Format("2006-01-02")
}
