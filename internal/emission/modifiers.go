package emission

import (
	"strings"
)

// Modifier names a purchase attribute that can change an item's emissions.
type Modifier string

const (
	ModOrganic  Modifier = "organic"
	ModImported Modifier = "imported"
	ModFrozen   Modifier = "frozen"
	ModGrassFed Modifier = "grassFed"
	ModLocal    Modifier = "local"
	ModBulk     Modifier = "bulk"
	ModSeasonal Modifier = "seasonal"
)

// allModifiers is the fixed evaluation and reporting order.
var allModifiers = []Modifier{ModOrganic, ModImported, ModFrozen, ModGrassFed, ModLocal, ModBulk, ModSeasonal}

func (m Modifier) valid() bool {
	for _, known := range allModifiers {
		if m == known {
			return true
		}
	}
	return false
}

// Modifiers is the set of purchase attributes detected for one item.
type Modifiers struct {
	Organic  bool `json:"organic"`
	Imported bool `json:"imported"`
	Frozen   bool `json:"frozen"`
	GrassFed bool `json:"grassFed"`
	Local    bool `json:"local"`
	Bulk     bool `json:"bulk"`
	Seasonal bool `json:"seasonal"`
}

// Has reports whether m is set.
func (ms Modifiers) Has(m Modifier) bool {
	switch m {
	case ModOrganic:
		return ms.Organic
	case ModImported:
		return ms.Imported
	case ModFrozen:
		return ms.Frozen
	case ModGrassFed:
		return ms.GrassFed
	case ModLocal:
		return ms.Local
	case ModBulk:
		return ms.Bulk
	case ModSeasonal:
		return ms.Seasonal
	}
	return false
}

func (ms *Modifiers) set(m Modifier) {
	switch m {
	case ModOrganic:
		ms.Organic = true
	case ModImported:
		ms.Imported = true
	case ModFrozen:
		ms.Frozen = true
	case ModGrassFed:
		ms.GrassFed = true
	case ModLocal:
		ms.Local = true
	case ModBulk:
		ms.Bulk = true
	case ModSeasonal:
		ms.Seasonal = true
	}
}

// Active returns the set modifiers in fixed order.
func (ms Modifiers) Active() []Modifier {
	var active []Modifier
	for _, m := range allModifiers {
		if ms.Has(m) {
			active = append(active, m)
		}
	}
	return active
}

// Any reports whether at least one modifier is set.
func (ms Modifiers) Any() bool {
	return len(ms.Active()) > 0
}

// purchaseContext is the normalized input every modifier predicate sees.
type purchaseContext struct {
	name     string
	merchant string
	location string
}

func newPurchaseContext(name, merchant, location string) purchaseContext {
	norm := func(s string) string { return strings.ToLower(strings.TrimSpace(s)) }
	return purchaseContext{name: norm(name), merchant: norm(merchant), location: norm(location)}
}

type modifierRule struct {
	modifier Modifier
	match    func(purchaseContext) bool
}

var (
	organicPattern       = words(`organic`, `bio`)
	importedPattern      = words(`imported`, `import`)
	frozenPattern        = words(`frozen`)
	grassFedPattern      = words(`grass[- ]?fed`, `pasture[- ]raised`)
	localPattern         = words(`local`, `locally grown`, `locally sourced`)
	localMerchantPattern = words(`farmers'? market`, `farm stand`, `co-?op`)
	bulkPattern          = words(`bulk`, `family pack`, `family size`, `value pack`, `club pack`)
	bulkMerchantPattern  = words(`costco`, `sam'?s club`, `bj'?s`)
	seasonalPattern      = words(`seasonal`, `in season`)
)

// modifierRules are independent: every rule is evaluated and any number of
// them may fire for one item.
var modifierRules = []modifierRule{
	{ModOrganic, func(c purchaseContext) bool {
		return organicPattern.MatchString(c.name)
	}},
	{ModImported, func(c purchaseContext) bool {
		return importedPattern.MatchString(c.name) || inferImported(c)
	}},
	{ModFrozen, func(c purchaseContext) bool {
		return frozenPattern.MatchString(c.name)
	}},
	{ModGrassFed, func(c purchaseContext) bool {
		return grassFedPattern.MatchString(c.name)
	}},
	{ModLocal, func(c purchaseContext) bool {
		return localPattern.MatchString(c.name) || localMerchantPattern.MatchString(c.merchant)
	}},
	{ModBulk, func(c purchaseContext) bool {
		return bulkPattern.MatchString(c.name) || bulkMerchantPattern.MatchString(c.merchant)
	}},
	{ModSeasonal, func(c purchaseContext) bool {
		return seasonalPattern.MatchString(c.name)
	}},
}

// tropicalFruits are produce keywords that rarely grow near the shopper.
var tropicalFruits = []string{
	`bananas?`, `mangos?`, `mangoes`, `pineapples?`, `papayas?`, `avocados?`,
	`coconuts?`, `kiwis?`, `passion ?fruit`, `guavas?`, `lychees?`, `plantains?`,
}

// tropicalRegions are locations where tropical fruit can be grown locally.
var tropicalRegions = []string{
	`hawaii`, `florida`, `puerto rico`, `mexico`, `brazil`, `colombia`, `ecuador`,
	`costa rica`, `guatemala`, `honduras`, `panama`, `peru`, `india`, `thailand`,
	`vietnam`, `philippines`, `indonesia`, `malaysia`, `singapore`, `kenya`,
	`nigeria`, `ghana`, `caribbean`, `jamaica`, `dominican republic`, `sri lanka`,
}

var (
	tropicalFruitPattern  = words(tropicalFruits...)
	tropicalRegionPattern = words(tropicalRegions...)
)

// inferImported guesses that tropical fruit bought outside a tropical region
// was shipped in. It only fires when a location is known.
func inferImported(c purchaseContext) bool {
	if c.location == "" {
		return false
	}
	if !tropicalFruitPattern.MatchString(c.name) {
		return false
	}
	return !tropicalRegionPattern.MatchString(c.location)
}

// ExtractModifiers derives the purchase modifiers of a product from its name
// and the optional merchant and location context.
func ExtractModifiers(name, merchant, location string) Modifiers {
	c := newPurchaseContext(name, merchant, location)
	var ms Modifiers
	for _, rule := range modifierRules {
		if rule.match(c) {
			ms.set(rule.modifier)
		}
	}
	return ms
}
