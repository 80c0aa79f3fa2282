// Package emission estimates the lifecycle greenhouse-gas footprint of
// purchased goods from free-text product descriptions.
//
// A Calculator classifies a product string into a category, derives
// purchase modifiers and a normalized quantity from the same string, and
// combines them with an immutable Table of per-category emission factors.
// Every operation is total: unknown products fall back to the default
// category with a lower confidence instead of failing.
package emission

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"
)

// DefaultCategory is the mandatory table entry used when classification fails.
const DefaultCategory = "default"

// Unit is the unit an emission factor is declared per.
type Unit string

const (
	UnitKg    Unit = "kg"
	UnitLiter Unit = "L"
	UnitItem  Unit = "item"
)

// Family groups categories by impact tier. It drives the plant-based
// suggestion and the basket reduction coefficients.
type Family string

const (
	FamilyRuminant Family = "ruminant"
	FamilyPork     Family = "pork"
	FamilyPoultry  Family = "poultry"
	FamilySeafood  Family = "seafood"
	FamilyDairy    Family = "dairy"
	FamilyPlant    Family = "plant"
	FamilyGoods    Family = "goods"
	FamilyOther    Family = "other"
)

// highImpact reports whether the family is an animal-product family for
// which a plant-based substitute is worth suggesting.
func (f Family) highImpact() bool {
	switch f {
	case FamilyRuminant, FamilyPork, FamilyPoultry, FamilyDairy:
		return true
	}
	return false
}

// reductionCoefficient is the share of an item's emissions a shopper could
// realistically avoid by substituting within or away from the family.
func (f Family) reductionCoefficient() float64 {
	switch f {
	case FamilyRuminant:
		return 0.8
	case FamilyDairy, FamilyPork:
		return 0.6
	default:
		return 0.3
	}
}

// Maximum multiplier a modifier may apply to production emissions.
const maxModifierFactor = 1.5

var (
	// ErrMissingDefault is returned when a table has no DefaultCategory entry.
	ErrMissingDefault = errors.New("emission table has no default category")
	// ErrInvalidFactor is returned for negative stages or out-of-range modifiers.
	ErrInvalidFactor = errors.New("invalid emission factor")
)

// EmissionFactor holds the per-unit emissions of one category, split into
// the five lifecycle stages, in kg CO2e per declared unit.
type EmissionFactor struct {
	Production float64              `json:"production" yaml:"production"`
	Packaging  float64              `json:"packaging" yaml:"packaging"`
	Transport  float64              `json:"transport" yaml:"transport"`
	Use        float64              `json:"use" yaml:"use"`
	Disposal   float64              `json:"disposal" yaml:"disposal"`
	Unit       Unit                 `json:"unit" yaml:"unit"`
	Family     Family               `json:"family" yaml:"family"`
	Modifiers  map[Modifier]float64 `json:"modifiers,omitempty" yaml:"modifiers,omitempty"`
}

// Multiplier returns the production multiplier for a modifier, or 1 when the
// category does not define one.
func (f EmissionFactor) Multiplier(m Modifier) float64 {
	if v, ok := f.Modifiers[m]; ok {
		return v
	}
	return 1
}

func (f EmissionFactor) validate() error {
	stages := []float64{f.Production, f.Packaging, f.Transport, f.Use, f.Disposal}
	for _, s := range stages {
		if s < 0 {
			return fmt.Errorf("%w: negative stage value %v", ErrInvalidFactor, s)
		}
	}
	switch f.Unit {
	case UnitKg, UnitLiter, UnitItem:
	default:
		return fmt.Errorf("%w: unknown unit %q", ErrInvalidFactor, f.Unit)
	}
	for m, v := range f.Modifiers {
		if !m.valid() {
			return fmt.Errorf("%w: unknown modifier %q", ErrInvalidFactor, m)
		}
		if v <= 0 || v > maxModifierFactor {
			return fmt.Errorf("%w: modifier %s factor %v outside (0, %v]", ErrInvalidFactor, m, v, maxModifierFactor)
		}
	}
	return nil
}

func (f EmissionFactor) clone() EmissionFactor {
	if f.Modifiers != nil {
		mods := make(map[Modifier]float64, len(f.Modifiers))
		for k, v := range f.Modifiers {
			mods[k] = v
		}
		f.Modifiers = mods
	}
	if f.Family == "" {
		f.Family = FamilyOther
	}
	return f
}

// Table is an immutable category to EmissionFactor mapping. It is safe for
// concurrent use.
type Table struct {
	factors map[string]EmissionFactor
}

// NewTable validates and copies factors into a Table. The map must contain
// DefaultCategory.
func NewTable(factors map[string]EmissionFactor) (*Table, error) {
	if _, ok := factors[DefaultCategory]; !ok {
		return nil, ErrMissingDefault
	}
	t := &Table{factors: make(map[string]EmissionFactor, len(factors))}
	for category, f := range factors {
		if err := f.validate(); err != nil {
			return nil, fmt.Errorf("category %q: %w", category, err)
		}
		t.factors[category] = f.clone()
	}
	return t, nil
}

// Lookup returns the factor for category, falling back to the default entry.
// The boolean reports whether the category itself was found.
func (t *Table) Lookup(category string) (EmissionFactor, bool) {
	if f, ok := t.factors[category]; ok {
		return f.clone(), true
	}
	return t.factors[DefaultCategory].clone(), false
}

// Categories returns the category names in sorted order.
func (t *Table) Categories() []string {
	names := make([]string, 0, len(t.factors))
	for name := range t.factors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// With returns a new Table where overrides replace or extend t's entries.
func (t *Table) With(overrides map[string]EmissionFactor) (*Table, error) {
	merged := make(map[string]EmissionFactor, len(t.factors)+len(overrides))
	for k, v := range t.factors {
		merged[k] = v
	}
	for k, v := range overrides {
		merged[k] = v
	}
	return NewTable(merged)
}

// ParseFactors decodes a YAML document mapping category names to factors and
// validates each entry. It does not require a default entry so the result
// can be used as an overlay with Table.With.
func ParseFactors(r io.Reader) (map[string]EmissionFactor, error) {
	var factors map[string]EmissionFactor
	if err := yaml.NewDecoder(r).Decode(&factors); err != nil {
		if errors.Is(err, io.EOF) {
			return map[string]EmissionFactor{}, nil
		}
		return nil, fmt.Errorf("decoding emission factors: %w", err)
	}
	for category, f := range factors {
		if f.Unit == "" {
			f.Unit = UnitKg
			factors[category] = f
		}
		if err := f.validate(); err != nil {
			return nil, fmt.Errorf("category %q: %w", category, err)
		}
	}
	return factors, nil
}

// LoadTable reads a complete table from YAML.
func LoadTable(r io.Reader) (*Table, error) {
	factors, err := ParseFactors(r)
	if err != nil {
		return nil, err
	}
	return NewTable(factors)
}

var defaultTable = sync.OnceValue(func() *Table {
	t, err := NewTable(builtinFactors())
	if err != nil {
		panic(fmt.Sprintf("built-in emission table: %v", err))
	}
	return t
})

// DefaultTable returns the built-in table. It is constructed once.
func DefaultTable() *Table {
	return defaultTable()
}

type mods = map[Modifier]float64

// builtinFactors lists kg CO2e per declared unit for each category.
func builtinFactors() map[string]EmissionFactor {
	return map[string]EmissionFactor{
		"Beef": {Production: 55.0, Packaging: 0.4, Transport: 0.6, Disposal: 0.1, Unit: UnitKg, Family: FamilyRuminant,
			Modifiers: mods{ModOrganic: 0.95, ModGrassFed: 1.15, ModFrozen: 1.05, ModBulk: 0.97}},
		"Lamb": {Production: 36.0, Packaging: 0.4, Transport: 1.2, Disposal: 0.1, Unit: UnitKg, Family: FamilyRuminant,
			Modifiers: mods{ModOrganic: 0.95, ModGrassFed: 1.1, ModFrozen: 1.05}},
		"Meat": {Production: 20.0, Packaging: 0.4, Transport: 0.5, Disposal: 0.1, Unit: UnitKg, Family: FamilyPork,
			Modifiers: mods{ModOrganic: 0.93, ModFrozen: 1.05}},
		"Pork": {Production: 10.0, Packaging: 0.3, Transport: 0.4, Disposal: 0.1, Unit: UnitKg, Family: FamilyPork,
			Modifiers: mods{ModOrganic: 0.92, ModFrozen: 1.05, ModBulk: 0.97}},
		"Chicken": {Production: 7.5, Packaging: 0.3, Transport: 0.3, Disposal: 0.08, Unit: UnitKg, Family: FamilyPoultry,
			Modifiers: mods{ModOrganic: 0.9, ModFrozen: 1.05, ModBulk: 0.97}},
		"Fish": {Production: 5.1, Packaging: 0.3, Transport: 0.5, Disposal: 0.1, Unit: UnitKg, Family: FamilySeafood,
			Modifiers: mods{ModFrozen: 1.1, ModSeasonal: 0.9}},
		"Seafood": {Production: 11.8, Packaging: 0.4, Transport: 1.0, Disposal: 0.1, Unit: UnitKg, Family: FamilySeafood,
			Modifiers: mods{ModFrozen: 1.1}},
		"Cheese": {Production: 21.0, Packaging: 0.3, Transport: 0.3, Disposal: 0.1, Unit: UnitKg, Family: FamilyDairy,
			Modifiers: mods{ModOrganic: 0.93, ModGrassFed: 1.05}},
		"Butter": {Production: 11.5, Packaging: 0.2, Transport: 0.2, Disposal: 0.05, Unit: UnitKg, Family: FamilyDairy,
			Modifiers: mods{ModOrganic: 0.93, ModGrassFed: 1.05}},
		"Yogurt": {Production: 2.5, Packaging: 0.3, Transport: 0.1, Disposal: 0.05, Unit: UnitKg, Family: FamilyDairy,
			Modifiers: mods{ModOrganic: 0.92}},
		"Milk": {Production: 2.8, Packaging: 0.15, Transport: 0.1, Disposal: 0.05, Unit: UnitLiter, Family: FamilyDairy,
			Modifiers: mods{ModOrganic: 0.9, ModGrassFed: 1.05, ModBulk: 0.98}},
		"Eggs": {Production: 0.35, Packaging: 0.02, Transport: 0.02, Disposal: 0.01, Unit: UnitItem, Family: FamilyPoultry,
			Modifiers: mods{ModOrganic: 0.9}},
		"Plant Milk": {Production: 0.7, Packaging: 0.15, Transport: 0.1, Disposal: 0.05, Unit: UnitLiter, Family: FamilyPlant,
			Modifiers: mods{ModOrganic: 0.9}},
		"Legumes": {Production: 0.9, Packaging: 0.1, Transport: 0.1, Disposal: 0.02, Unit: UnitKg, Family: FamilyPlant,
			Modifiers: mods{ModOrganic: 0.9, ModBulk: 0.95}},
		"Nuts": {Production: 2.3, Packaging: 0.15, Transport: 0.3, Disposal: 0.02, Unit: UnitKg, Family: FamilyPlant,
			Modifiers: mods{ModOrganic: 0.9, ModBulk: 0.95}},
		"Rice": {Production: 4.0, Packaging: 0.1, Transport: 0.2, Disposal: 0.02, Unit: UnitKg, Family: FamilyPlant,
			Modifiers: mods{ModOrganic: 0.9, ModBulk: 0.95}},
		"Pasta": {Production: 1.6, Packaging: 0.1, Transport: 0.1, Disposal: 0.02, Unit: UnitKg, Family: FamilyPlant,
			Modifiers: mods{ModOrganic: 0.92, ModBulk: 0.95}},
		"Bread & Grains": {Production: 1.4, Packaging: 0.1, Transport: 0.1, Disposal: 0.03, Unit: UnitKg, Family: FamilyPlant,
			Modifiers: mods{ModOrganic: 0.92, ModFrozen: 1.1}},
		"Vegetables": {Production: 0.4, Packaging: 0.05, Transport: 0.15, Disposal: 0.02, Unit: UnitKg, Family: FamilyPlant,
			Modifiers: mods{ModOrganic: 0.9, ModFrozen: 1.2, ModSeasonal: 0.85}},
		"Fruits": {Production: 0.5, Packaging: 0.05, Transport: 0.25, Disposal: 0.02, Unit: UnitKg, Family: FamilyPlant,
			Modifiers: mods{ModOrganic: 0.9, ModFrozen: 1.2, ModSeasonal: 0.85}},
		"Tropical Fruit": {Production: 0.8, Packaging: 0.05, Transport: 0.6, Disposal: 0.02, Unit: UnitKg, Family: FamilyPlant,
			Modifiers: mods{ModOrganic: 0.9, ModFrozen: 1.2}},
		"Coffee": {Production: 16.5, Packaging: 0.5, Transport: 0.5, Disposal: 0.05, Unit: UnitKg, Family: FamilyPlant,
			Modifiers: mods{ModOrganic: 0.9, ModBulk: 0.95}},
		"Chocolate": {Production: 18.7, Packaging: 0.5, Transport: 0.5, Disposal: 0.05, Unit: UnitKg, Family: FamilyPlant,
			Modifiers: mods{ModOrganic: 0.92}},
		"Beverages": {Production: 0.3, Packaging: 0.25, Transport: 0.1, Disposal: 0.05, Unit: UnitLiter, Family: FamilyOther,
			Modifiers: mods{ModBulk: 0.95}},
		"Alcohol": {Production: 1.2, Packaging: 0.5, Transport: 0.2, Disposal: 0.05, Unit: UnitLiter, Family: FamilyOther,
			Modifiers: mods{ModOrganic: 0.95}},
		"Snacks": {Production: 2.5, Packaging: 0.4, Transport: 0.2, Disposal: 0.05, Unit: UnitKg, Family: FamilyOther,
			Modifiers: mods{ModOrganic: 0.93, ModBulk: 0.95}},
		"Electronics": {Production: 60.0, Packaging: 3.0, Transport: 2.0, Use: 25.0, Disposal: 2.0, Unit: UnitItem, Family: FamilyGoods},
		"Clothing": {Production: 12.0, Packaging: 0.5, Transport: 1.5, Use: 3.0, Disposal: 0.5, Unit: UnitItem, Family: FamilyGoods,
			Modifiers: mods{ModOrganic: 0.85}},
		"Household": {Production: 1.5, Packaging: 0.4, Transport: 0.2, Disposal: 0.3, Unit: UnitItem, Family: FamilyGoods,
			Modifiers: mods{ModBulk: 0.9}},
		"Personal Care": {Production: 1.0, Packaging: 0.4, Transport: 0.2, Disposal: 0.2, Unit: UnitItem, Family: FamilyGoods,
			Modifiers: mods{ModOrganic: 0.95}},
		DefaultCategory: {Production: 2.0, Packaging: 0.3, Transport: 0.3, Disposal: 0.1, Unit: UnitItem, Family: FamilyOther},
	}
}
