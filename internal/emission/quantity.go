package emission

import (
	"regexp"
	"strconv"
	"strings"
)

// Conversion constants to kilograms and liters.
const (
	PoundsToKg       = 0.453592
	OuncesToKg       = 0.0283495
	GramsToKg        = 0.001
	MillilitersToLit = 0.001
	FluidOuncesToLit = 0.0295735
)

// Quantity is a normalized amount. Mass is always in kilograms, volume in
// liters, and countable goods in items.
type Quantity struct {
	Amount float64 `json:"amount"`
	Unit   Unit    `json:"unit"`
}

// unitPattern converts the first number captured by re into unit by scale.
type unitPattern struct {
	name  string
	re    *regexp.Regexp
	unit  Unit
	scale float64
}

// number matches either a thousands-grouped amount ("1,000" or "1,000.5")
// or a plain amount with an optional decimal point or comma ("1.5", "1,5").
const number = `(\d{1,3}(?:,\d{3})+(?:\.\d+)?|\d+(?:[.,]\d+)?)`

// thousandsGrouped matches the first alternative of number exactly.
var thousandsGrouped = regexp.MustCompile(`^\d{1,3}(?:,\d{3})+(?:\.\d+)?$`)

// quantityPatterns are tried in order and the first match wins, so
// "2 lbs (907 g)" is read as pounds.
var quantityPatterns = []unitPattern{
	{"pounds", regexp.MustCompile(number + `\s*(?:lbs?|pounds?)\b`), UnitKg, PoundsToKg},
	{"kilograms", regexp.MustCompile(number + `\s*(?:kgs?|kilos?|kilograms?)\b`), UnitKg, 1},
	{"fluid ounces", regexp.MustCompile(number + `\s*(?:fl\.?\s*oz|fluid ounces?)\b`), UnitLiter, FluidOuncesToLit},
	{"ounces", regexp.MustCompile(number + `\s*(?:oz|ounces?)\b`), UnitKg, OuncesToKg},
	{"grams", regexp.MustCompile(number + `\s*(?:g|gr|grams?)\b`), UnitKg, GramsToKg},
	{"liters", regexp.MustCompile(number + `\s*(?:l|ltr|liters?|litres?)\b`), UnitLiter, 1},
	{"milliliters", regexp.MustCompile(number + `\s*(?:ml|milliliters?|millilitres?)\b`), UnitLiter, MillilitersToLit},
	{"count", regexp.MustCompile(`(\d+)\s*-?\s*(?:pack|pk|ct|count|pcs|pieces?)\b`), UnitItem, 1},
	{"pack-of", regexp.MustCompile(`\b(?:pack|box|case) of (\d+)\b`), UnitItem, 1},
}

// ParseQuantity extracts a normalized quantity from a product string. Strings
// without a recognizable amount yield one item.
func ParseQuantity(name string) Quantity {
	normalized := strings.ToLower(name)
	for _, p := range quantityPatterns {
		m := p.re.FindStringSubmatch(normalized)
		if m == nil {
			continue
		}
		amount, err := parseAmount(m[1])
		if err != nil || amount < 0 {
			continue
		}
		return Quantity{Amount: amount * p.scale, Unit: p.unit}
	}
	return Quantity{Amount: 1, Unit: UnitItem}
}

// parseAmount reads a matched number. Commas between groups of three digits
// are thousands separators; any other comma is a decimal comma.
func parseAmount(s string) (float64, error) {
	if thousandsGrouped.MatchString(s) {
		return strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
	}
	return strconv.ParseFloat(strings.Replace(s, ",", ".", 1), 64)
}
