package emission

import (
	"context"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Line is one raw basket entry as read from a receipt.
type Line struct {
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity"`
}

// Summary highlights where a basket's emissions come from.
type Summary struct {
	HighestImpactCategory string  `json:"highest_impact_category"`
	ReductionPotentialKg  float64 `json:"reduction_potential_kg"`
	ImprovementScore      int     `json:"improvement_score"`
}

// BasketResult aggregates the estimates of every item in a basket. It is
// always built from the full item list.
type BasketResult struct {
	Items            []ItemResult     `json:"items"`
	TotalKg          float64          `json:"total_kg"`
	Equivalents      []string         `json:"equivalents"`
	EquivalentValues EquivalentValues `json:"equivalent_values"`
	Summary          Summary          `json:"summary"`
}

// Aggregate sums item results into a basket result.
func (c *Calculator) Aggregate(items []ItemResult) BasketResult {
	result := BasketResult{
		Items:       make([]ItemResult, len(items)),
		Equivalents: []string{},
	}
	copy(result.Items, items)
	if len(items) == 0 {
		return result
	}

	var (
		total      float64
		reduction  float64
		confidence float64
		order      []string
		byCategory = make(map[string]float64)
	)
	for _, item := range items {
		total += item.TotalKg
		confidence += item.Confidence
		reduction += item.TotalKg * c.familyOf(item).reductionCoefficient()
		if _, seen := byCategory[item.Category]; !seen {
			order = append(order, item.Category)
		}
		byCategory[item.Category] += item.TotalKg
	}

	highest := order[0]
	for _, category := range order[1:] {
		if byCategory[category] > byCategory[highest] {
			highest = category
		}
	}

	values := Equivalents(total)
	result.TotalKg = total
	result.EquivalentValues = values
	result.Equivalents = values.Phrases()
	result.Summary = Summary{
		HighestImpactCategory: highest,
		ReductionPotentialKg:  round2(reduction),
		ImprovementScore:      int(math.Round(confidence / float64(len(items)) * 100)),
	}
	return result
}

// familyOf prefers the family recorded on the item and falls back to the
// table for results built elsewhere.
func (c *Calculator) familyOf(item ItemResult) Family {
	if item.Family != "" {
		return item.Family
	}
	f, _ := c.table.Lookup(item.Category)
	return f.Family
}

// EstimateBasket estimates every line concurrently and aggregates the
// results in input order. It only fails when ctx is done.
func (c *Calculator) EstimateBasket(ctx context.Context, lines []Line, merchant, location string) (BasketResult, error) {
	items := make([]ItemResult, len(lines))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for i, line := range lines {
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			items[i] = c.Calculate(line.Name, line.Quantity, merchant, location)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return BasketResult{}, err
	}

	return c.Aggregate(items), nil
}
