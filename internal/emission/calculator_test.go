package emission

import (
	"math"
	"regexp"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func stageSum(b Breakdown) float64 {
	return b.Production + b.Packaging + b.Transport + b.Use + b.Disposal
}

var _ = Describe("Calculator", func() {
	var (
		calc     *Calculator
		name     string
		qty      float64
		merchant string
		location string
		result   ItemResult
	)

	BeforeEach(func() {
		calc = NewCalculator(nil, nil)
		qty = 1
		merchant = ""
		location = ""
	})

	JustBeforeEach(func() {
		result = calc.Calculate(name, qty, merchant, location)
	})

	When("estimating organic ground beef by the pound", func() {
		BeforeEach(func() {
			name = "Organic Ground Beef 2 lbs"
		})

		It("classifies it as beef", func() {
			Expect(result.Category).To(Equal("Beef"))
			Expect(result.Family).To(Equal(FamilyRuminant))
		})

		It("converts the quantity to kilograms", func() {
			Expect(result.Unit).To(Equal(UnitKg))
			Expect(result.Quantity).To(BeNumerically("~", 0.907, 0.001))
		})

		It("applies the organic production factor", func() {
			Expect(result.Modifiers.Organic).To(BeTrue())
			Expect(result.Breakdown.Production).To(Equal(47.40))
		})

		It("computes the remaining stages", func() {
			Expect(result.Breakdown.Packaging).To(Equal(0.36))
			Expect(result.Breakdown.Transport).To(Equal(0.54))
			Expect(result.Breakdown.Use).To(Equal(0.0))
			Expect(result.Breakdown.Disposal).To(Equal(0.09))
			Expect(result.TotalKg).To(BeNumerically("~", 48.39, 1e-9))
		})

		It("is highly confident", func() {
			Expect(result.Confidence).To(Equal(0.95))
		})

		It("suggests a plant-based alternative", func() {
			Expect(result.Suggestions).To(Equal([]string{SuggestPlantBased}))
		})
	})

	When("the product is unknown", func() {
		BeforeEach(func() {
			name = "xyzzy-unknown-item"
		})

		It("uses the default category", func() {
			Expect(result.Category).To(Equal(DefaultCategory))
			Expect(result.TotalKg).To(BeNumerically("~", 2.7, 1e-9))
		})

		It("has the base confidence", func() {
			Expect(result.Confidence).To(Equal(0.6))
		})

		It("returns an empty suggestion list", func() {
			Expect(result.Suggestions).NotTo(BeNil())
			Expect(result.Suggestions).To(BeEmpty())
		})
	})

	When("the purchased quantity is not usable", func() {
		var baseline ItemResult

		BeforeEach(func() {
			name = "Beef 1kg"
			baseline = NewCalculator(nil, nil).Calculate(name, 1, "", "")
		})

		for _, bad := range []float64{0, -3, math.NaN(), math.Inf(1)} {
			Context("with quantity "+formatFloat(bad), func() {
				BeforeEach(func() {
					qty = bad
				})

				It("is treated as one", func() {
					Expect(result).To(Equal(baseline))
				})
			})
		}
	})

	When("the purchased quantity is doubled", func() {
		var single ItemResult

		BeforeEach(func() {
			name = "Cheddar Cheese 500g"
			qty = 2
			single = NewCalculator(nil, nil).Calculate(name, 1, "", "")
		})

		It("scales every stage linearly", func() {
			Expect(result.Quantity).To(BeNumerically("~", 2*single.Quantity, 1e-9))
			Expect(result.Breakdown.Production).To(BeNumerically("~", 2*single.Breakdown.Production, 0.011))
			Expect(result.Breakdown.Packaging).To(BeNumerically("~", 2*single.Breakdown.Packaging, 0.011))
			Expect(result.Breakdown.Transport).To(BeNumerically("~", 2*single.Breakdown.Transport, 0.011))
			Expect(result.Breakdown.Disposal).To(BeNumerically("~", 2*single.Breakdown.Disposal, 0.011))
		})
	})

	Describe("transport sourcing", func() {
		BeforeEach(func() {
			name = "Bananas 1kg"
		})

		When("tropical fruit is bought far from the tropics", func() {
			BeforeEach(func() {
				location = "Chicago, IL"
			})

			It("raises transport by half", func() {
				Expect(result.Modifiers.Imported).To(BeTrue())
				Expect(result.Breakdown.Transport).To(Equal(0.9))
			})
		})

		When("the item is local", func() {
			BeforeEach(func() {
				name = "Local Bananas 1kg"
			})

			It("halves transport", func() {
				Expect(result.Breakdown.Transport).To(Equal(0.3))
			})
		})

		When("the item is both local and imported", func() {
			BeforeEach(func() {
				name = "Local Bananas 1kg"
				location = "Oslo"
			})

			It("records both and lets imported win", func() {
				Expect(result.Modifiers.Local).To(BeTrue())
				Expect(result.Modifiers.Imported).To(BeTrue())
				Expect(result.Breakdown.Transport).To(Equal(0.9))
			})
		})
	})

	When("the product has a use phase", func() {
		BeforeEach(func() {
			name = "Laptop"
		})

		It("suggests efficient use", func() {
			Expect(result.Category).To(Equal("Electronics"))
			Expect(result.Breakdown.Use).To(Equal(25.0))
			Expect(result.Suggestions).To(Equal([]string{SuggestEfficiency}))
		})
	})

	When("packaging dominates", func() {
		BeforeEach(func() {
			name = "Sparkling Water 2L"
		})

		It("suggests less packaging", func() {
			Expect(result.Unit).To(Equal(UnitLiter))
			Expect(result.Suggestions).To(Equal([]string{SuggestPackaging}))
		})
	})

	When("several stages dominate", func() {
		BeforeEach(func() {
			table, err := NewTable(map[string]EmissionFactor{
				DefaultCategory: {Production: 1, Unit: UnitItem},
				"Widget":        {Packaging: 1, Transport: 1, Use: 1, Unit: UnitItem, Family: FamilyGoods},
			})
			Expect(err).NotTo(HaveOccurred())
			calc = NewCalculator(table, NewClassifierWithRules([]ClassificationRule{
				{ID: "widget", Category: "Widget", Pattern: regexp.MustCompile(`widget`)},
			}))
			name = "Widget"
		})

		It("returns at most three suggestions in fixed order", func() {
			Expect(result.Suggestions).To(Equal([]string{SuggestLocal, SuggestPackaging, SuggestEfficiency}))
		})
	})

	DescribeTable("repeated estimates",
		func(input, loc string) {
			first := NewCalculator(nil, nil).Calculate(input, 2, "Green Grocer", loc)
			for i := 0; i < 5; i++ {
				Expect(calc.Calculate(input, 2, "Green Grocer", loc)).To(Equal(first))
			}
		},
		Entry("beef by the pound", "Organic Ground Beef 2 lbs", ""),
		Entry("local produce", "Bananas 1kg", "Chicago, IL"),
		Entry("unknown item", "xyzzy-unknown-item", "Berlin"),
	)

	DescribeTable("invariants",
		func(input string) {
			r := NewCalculator(nil, nil).Calculate(input, 1, "", "")
			Expect(r.TotalKg).To(BeNumerically(">=", 0))
			Expect(r.TotalKg).To(BeNumerically("~", stageSum(r.Breakdown), 0.005))
			Expect(r.Confidence).To(BeNumerically(">=", 0.6))
			Expect(r.Confidence).To(BeNumerically("<=", 0.95))
			Expect(len(r.Suggestions)).To(BeNumerically("<=", 3))
		},
		Entry("meat", "Organic Grass-Fed Ribeye Steak 1.5 lb"),
		Entry("dairy", "Whole Milk 1 L"),
		Entry("produce", "Frozen Peas 500g"),
		Entry("goods", "Cotton T-Shirt"),
		Entry("empty", ""),
	)
})
