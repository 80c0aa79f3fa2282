package emission

import (
	"regexp"
	"strings"
)

// ClassificationRule maps a family of product patterns to a category.
type ClassificationRule struct {
	// ID names the rule in tests and debug logs.
	ID string

	// Category is the table entry assigned on a match.
	Category string

	// Pattern is matched against the lowercased product name.
	Pattern *regexp.Regexp
}

// Classifier assigns a category to a product name by evaluating its rules in
// order. The first matching rule wins.
type Classifier struct {
	rules []ClassificationRule
}

// NewClassifier creates a classifier with the built-in rules.
func NewClassifier() *Classifier {
	return &Classifier{rules: defaultRules}
}

// NewClassifierWithRules creates a classifier with custom rules.
func NewClassifierWithRules(rules []ClassificationRule) *Classifier {
	return &Classifier{rules: rules}
}

// Classify returns the category of the first rule matching name, or
// DefaultCategory when nothing matches.
func (c *Classifier) Classify(name string) string {
	category, _ := c.match(name)
	return category
}

// Rules returns the rules in evaluation order.
func (c *Classifier) Rules() []ClassificationRule {
	out := make([]ClassificationRule, len(c.rules))
	copy(out, c.rules)
	return out
}

func (c *Classifier) match(name string) (string, string) {
	normalized := strings.ToLower(strings.TrimSpace(name))
	if normalized == "" {
		return DefaultCategory, "fallback"
	}
	for _, rule := range c.rules {
		if rule.Pattern.MatchString(normalized) {
			return rule.Category, rule.ID
		}
	}
	return DefaultCategory, "fallback"
}

// words builds a pattern matching any of the alternatives as whole words.
func words(alternatives ...string) *regexp.Regexp {
	return regexp.MustCompile(`\b(?:` + strings.Join(alternatives, "|") + `)\b`)
}

// defaultRules is ordered from the most specific pattern family to the
// broadest. Compound names must appear before the rules that would match
// one of their parts: plant milks before milk, nut butters before butter,
// milk chocolate before milk, veggie burgers before beef, hamburger before
// ham, egg noodles before eggs, coconut water before tropical fruit.
var defaultRules = []ClassificationRule{
	{ID: "plant-milk", Category: "Plant Milk", Pattern: words(`(?:almond|oat|soy|soya|rice|coconut|cashew|hemp|plant[- ]based) (?:milk|drink|beverage)`)},
	{ID: "nut-butter", Category: "Nuts", Pattern: words(`(?:peanut|almond|cashew|hazelnut) (?:butter|spread)`)},
	{ID: "chocolate", Category: "Chocolate", Pattern: words(`chocolates?`, `cocoa`, `cacao`)},
	{ID: "coffee", Category: "Coffee", Pattern: words(`coffee`, `espresso`, `cold brew`)},
	{ID: "plant-protein", Category: "Legumes", Pattern: words(
		`(?:veggie|vegan|vegetarian|meatless|plant[- ]based|bean|black bean|lentil|chickpea|soy|tofu) (?:burgers?|patt(?:y|ies)|sausages?|nuggets?|mince|crumbles|meatballs?)`,
		`(?:beyond|impossible) (?:burgers?|meat|beef|sausages?)`,
		`plant[- ]based`,
		`meat[- ]free`,
	)},
	{ID: "beef", Category: "Beef", Pattern: words(`beef`, `steaks?`, `brisket`, `(?:ham)?burgers?`, `veal`, `sirloin`, `ribeye`)},
	{ID: "lamb", Category: "Lamb", Pattern: words(`lamb`, `mutton`)},
	{ID: "poultry", Category: "Chicken", Pattern: words(`chicken`, `turkey`, `duck`, `wings`)},
	{ID: "pork", Category: "Pork", Pattern: words(`pork`, `bacon`, `ham`, `sausages?`, `chorizo`, `prosciutto`, `salami`, `pepperoni`)},
	{ID: "shellfish", Category: "Seafood", Pattern: words(`shrimp`, `prawns?`, `lobster`, `crab`, `scallops?`, `mussels`, `oysters?`)},
	{ID: "fish", Category: "Fish", Pattern: words(`fish`, `salmon`, `tuna`, `cod`, `tilapia`, `trout`, `sardines?`, `halibut`)},
	{ID: "meat", Category: "Meat", Pattern: words(`meat`, `meatballs?`, `jerky`, `deli`)},
	{ID: "egg-pasta", Category: "Pasta", Pattern: words(`egg (?:noodles?|pasta)`)},
	{ID: "eggs", Category: "Eggs", Pattern: words(`eggs?`)},
	{ID: "cheese", Category: "Cheese", Pattern: words(`cheese`, `cheddar`, `mozzarella`, `parmesan`, `brie`, `feta`, `gouda`)},
	{ID: "butter", Category: "Butter", Pattern: words(`butter`, `ghee`)},
	{ID: "yogurt", Category: "Yogurt", Pattern: words(`yog(?:h)?urt`, `kefir`)},
	{ID: "milk", Category: "Milk", Pattern: words(`milk`, `cream`, `half and half`)},
	{ID: "green-beans", Category: "Vegetables", Pattern: words(`green beans?`, `string beans?`)},
	{ID: "legumes", Category: "Legumes", Pattern: words(`tofu`, `tempeh`, `lentils?`, `beans?`, `chickpeas?`, `hummus`)},
	{ID: "nuts", Category: "Nuts", Pattern: words(`nuts?`, `almonds?`, `walnuts?`, `cashews?`, `pistachios?`, `peanuts?`, `pecans?`)},
	{ID: "rice", Category: "Rice", Pattern: words(`rice`)},
	{ID: "pasta", Category: "Pasta", Pattern: words(`pasta`, `spaghetti`, `penne`, `macaroni`, `noodles?`)},
	{ID: "bread", Category: "Bread & Grains", Pattern: words(`bread`, `bagels?`, `tortillas?`, `flour`, `oats`, `oatmeal`, `cereal`, `granola`, `buns?`)},
	{ID: "fruit-drinks", Category: "Beverages", Pattern: words(`coconut water`, `juices?`, `smoothies?`)},
	{ID: "tropical-fruit", Category: "Tropical Fruit", Pattern: words(tropicalFruits...)},
	{ID: "fruit", Category: "Fruits", Pattern: words(`apples?`, `oranges?`, `berries`, `strawberries`, `blueberries`, `raspberries`, `grapes?`, `pears?`, `peach(?:es)?`, `plums?`, `cherries`, `lemons?`, `limes?`, `melons?`, `watermelon`, `fruits?`)},
	{ID: "vegetables", Category: "Vegetables", Pattern: words(`spinach`, `lettuce`, `kale`, `broccoli`, `carrots?`, `potato(?:es)?`, `tomato(?:es)?`, `onions?`, `peppers?`, `cucumbers?`, `celery`, `cabbage`, `zucchini`, `mushrooms?`, `garlic`, `salad`, `vegetables?`, `veggies`, `greens`, `asparagus`, `corn`, `squash`)},
	{ID: "alcohol", Category: "Alcohol", Pattern: words(`beer`, `wine`, `vodka`, `whiske?y`, `gin`, `rum`, `cider`, `lager`)},
	{ID: "beverages", Category: "Beverages", Pattern: words(`soda`, `cola`, `juice`, `water`, `lemonade`, `tea`, `kombucha`, `drinks?`)},
	{ID: "snacks", Category: "Snacks", Pattern: words(`chips`, `crisps`, `cookies?`, `crackers`, `candy`, `popcorn`, `pretzels`, `snacks?`)},
	{ID: "electronics", Category: "Electronics", Pattern: words(`phone`, `smartphone`, `laptop`, `tablet`, `headphones?`, `earbuds`, `charger`, `tv`, `television`, `monitor`, `camera`, `console`, `speaker`, `batter(?:y|ies)`, `cable`)},
	{ID: "clothing", Category: "Clothing", Pattern: words(`shirt`, `t-shirt`, `jeans`, `pants`, `dress`, `jacket`, `shoes?`, `sneakers`, `socks`, `sweater`, `hoodie`, `coat`)},
	{ID: "household", Category: "Household", Pattern: words(`detergent`, `soap`, `cleaner`, `bleach`, `paper towels?`, `toilet paper`, `tissues?`, `trash bags?`, `sponges?`)},
	{ID: "personal-care", Category: "Personal Care", Pattern: words(`shampoo`, `conditioner`, `toothpaste`, `deodorant`, `lotion`, `razors?`, `sunscreen`)},
}
