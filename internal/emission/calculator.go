package emission

import (
	"math"
	"strings"
)

// Breakdown is an item's emissions split by lifecycle stage, in kg CO2e.
type Breakdown struct {
	Production float64 `json:"production"`
	Packaging  float64 `json:"packaging"`
	Transport  float64 `json:"transport"`
	Use        float64 `json:"use"`
	Disposal   float64 `json:"disposal"`
	Total      float64 `json:"total"`
}

// ItemResult is the estimate for one purchased item.
type ItemResult struct {
	Name        string    `json:"name"`
	Category    string    `json:"category"`
	Quantity    float64   `json:"quantity"`
	Unit        Unit      `json:"unit"`
	Breakdown   Breakdown `json:"breakdown"`
	TotalKg     float64   `json:"total_kg"`
	Suggestions []string  `json:"suggestions"`
	Confidence  float64   `json:"confidence"`
	Modifiers   Modifiers `json:"modifiers"`
	Family      Family    `json:"family"`
}

// Transport multipliers by sourcing.
const (
	importedTransportFactor = 1.5
	localTransportFactor    = 0.5
)

// Confidence scoring.
const (
	baseConfidence      = 0.6
	knownCategoryBonus  = 0.2
	descriptiveBonus    = 0.1
	modifierBonus       = 0.1
	maxItemConfidence   = 0.95
	descriptiveMinWords = 2
)

// Calculator estimates item and basket emissions against a Table.
// It holds no mutable state and is safe for concurrent use.
type Calculator struct {
	table      *Table
	classifier *Classifier
}

// NewCalculator creates a Calculator. Nil arguments select the built-in
// table and classifier.
func NewCalculator(table *Table, classifier *Classifier) *Calculator {
	if table == nil {
		table = DefaultTable()
	}
	if classifier == nil {
		classifier = NewClassifier()
	}
	return &Calculator{table: table, classifier: classifier}
}

// Table returns the factor table the calculator uses.
func (c *Calculator) Table() *Table {
	return c.table
}

// Calculate estimates the emissions of purchasedQty units of the product
// described by name. merchant and location may be empty. It never fails:
// unknown products use the default category with a lower confidence.
func (c *Calculator) Calculate(name string, purchasedQty float64, merchant, location string) ItemResult {
	category := c.classifier.Classify(name)
	factor, known := c.table.Lookup(category)
	if !known {
		category = DefaultCategory
	}

	modifiers := ExtractModifiers(name, merchant, location)
	parsed := ParseQuantity(name)
	if math.IsNaN(purchasedQty) || math.IsInf(purchasedQty, 0) || purchasedQty <= 0 {
		purchasedQty = 1
	}
	effective := purchasedQty * parsed.Amount

	production := factor.Production * effective * modifierFactor(factor, modifiers)
	transport := factor.Transport * effective * transportFactor(modifiers)

	b := Breakdown{
		Production: round2(production),
		Packaging:  round2(factor.Packaging * effective),
		Transport:  round2(transport),
		Use:        round2(factor.Use * effective),
		Disposal:   round2(factor.Disposal * effective),
	}
	b.Total = round2(b.Production + b.Packaging + b.Transport + b.Use + b.Disposal)

	return ItemResult{
		Name:        name,
		Category:    category,
		Quantity:    effective,
		Unit:        parsed.Unit,
		Breakdown:   b,
		TotalKg:     b.Total,
		Suggestions: suggest(b, factor.Family),
		Confidence:  confidence(category, name, modifiers),
		Modifiers:   modifiers,
		Family:      factor.Family,
	}
}

// modifierFactor multiplies the production multipliers of every active
// modifier the category defines.
func modifierFactor(f EmissionFactor, ms Modifiers) float64 {
	factor := 1.0
	for _, m := range ms.Active() {
		factor *= f.Multiplier(m)
	}
	return factor
}

// transportFactor applies sourcing distance. Imported wins when an item is
// tagged both imported and local.
func transportFactor(ms Modifiers) float64 {
	switch {
	case ms.Imported:
		return importedTransportFactor
	case ms.Local:
		return localTransportFactor
	default:
		return 1
	}
}

func confidence(category, name string, ms Modifiers) float64 {
	score := baseConfidence
	if category != DefaultCategory {
		score += knownCategoryBonus
	}
	if len(strings.Fields(name)) > descriptiveMinWords {
		score += descriptiveBonus
	}
	if ms.Any() {
		score += modifierBonus
	}
	return math.Min(round2(score), maxItemConfidence)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
