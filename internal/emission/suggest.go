package emission

// Suggestion texts, in the order they are offered.
const (
	SuggestPlantBased = "Try a plant-based alternative such as beans, lentils or tofu; it can cut production emissions by up to 90%."
	SuggestLocal      = "Choose local or seasonal options to reduce transport emissions."
	SuggestPackaging  = "Buy in bulk or pick products with minimal packaging."
	SuggestEfficiency = "Use energy-efficient settings and keep the product longer to spread its footprint over more years."
)

// Stage shares above which a stage is considered dominant.
const (
	productionDominance = 0.6
	transportDominance  = 0.3
	packagingDominance  = 0.2
	maxSuggestions      = 3
)

// suggest returns up to three reduction hints driven by which lifecycle
// stages dominate the breakdown.
func suggest(b Breakdown, family Family) []string {
	suggestions := make([]string, 0, maxSuggestions)
	if b.Total <= 0 {
		return suggestions
	}

	if b.Production > productionDominance*b.Total && family.highImpact() {
		suggestions = append(suggestions, SuggestPlantBased)
	}
	if b.Transport > transportDominance*b.Total {
		suggestions = append(suggestions, SuggestLocal)
	}
	if b.Packaging > packagingDominance*b.Total {
		suggestions = append(suggestions, SuggestPackaging)
	}
	if b.Use > 0 {
		suggestions = append(suggestions, SuggestEfficiency)
	}

	if len(suggestions) > maxSuggestions {
		suggestions = suggestions[:maxSuggestions]
	}
	return suggestions
}
