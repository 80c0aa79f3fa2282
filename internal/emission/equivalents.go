package emission

import (
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Conversion factors, in kg CO2e per unit of activity.
const (
	KgPerMileDriven  = 0.404
	KgPerPhoneCharge = 0.008
	KgPerTreeDay     = 0.022
	KgPerKWh         = 0.5
)

const maxEquivalents = 2

// printer formats numbers with English thousands separators.
var printer = message.NewPrinter(language.English)

// EquivalentValues are a basket total expressed in everyday activities.
type EquivalentValues struct {
	MilesDriven  float64 `json:"miles_driven"`
	PhoneCharges float64 `json:"phone_charges"`
	TreeDays     float64 `json:"tree_days"`
	KWh          float64 `json:"kwh"`
}

// Equivalents converts a total in kg CO2e into relatable activities.
func Equivalents(totalKg float64) EquivalentValues {
	if totalKg <= 0 || math.IsNaN(totalKg) {
		return EquivalentValues{}
	}
	return EquivalentValues{
		MilesDriven:  totalKg / KgPerMileDriven,
		PhoneCharges: totalKg / KgPerPhoneCharge,
		TreeDays:     totalKg / KgPerTreeDay,
		KWh:          totalKg / KgPerKWh,
	}
}

// Phrases returns at most two display strings, driving first and phone
// charging second. A zero total has no equivalents.
func (v EquivalentValues) Phrases() []string {
	phrases := make([]string, 0, maxEquivalents)
	if v.MilesDriven > 0 {
		phrases = append(phrases, printer.Sprintf("%.1f miles driven by car", v.MilesDriven))
	}
	if v.PhoneCharges > 0 {
		phrases = append(phrases, printer.Sprintf("%d smartphone charges", int64(math.Round(v.PhoneCharges))))
	}
	return phrases
}
