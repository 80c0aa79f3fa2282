package emission

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("ParseQuantity", func() {
	DescribeTable("recognized units",
		func(name string, amount float64, unit Unit) {
			q := ParseQuantity(name)
			Expect(q.Unit).To(Equal(unit))
			Expect(q.Amount).To(BeNumerically("~", amount, 1e-6))
		},
		Entry("pounds", "Ground Beef 2 lbs", 0.907184, UnitKg),
		Entry("single pound", "Butter 1 lb", 0.453592, UnitKg),
		Entry("kilograms", "Beef 1kg", 1.0, UnitKg),
		Entry("ounces", "Chips 12 oz", 0.340194, UnitKg),
		Entry("grams", "Spinach 200g", 0.2, UnitKg),
		Entry("liters", "Soda 2L", 2.0, UnitLiter),
		Entry("milliliters", "Juice 500 ml", 0.5, UnitLiter),
		Entry("decimal comma", "Olive Oil 1,5 L", 1.5, UnitLiter),
		Entry("decimal comma without space", "Milk 1,5L", 1.5, UnitLiter),
		Entry("thousands separator", "Rice 1,000 g", 1.0, UnitKg),
		Entry("thousands separator with decimals", "Flour 2,500.5 g", 2.5005, UnitKg),
		Entry("fluid ounces", "Orange Juice 16 fl oz", 0.473176, UnitLiter),
		Entry("fluid ounces with a period", "Cold Brew 12 fl. oz", 0.354882, UnitLiter),
		Entry("count", "Eggs 12 ct", 12.0, UnitItem),
		Entry("hyphenated pack", "Sparkling Water 6-pack", 6.0, UnitItem),
		Entry("pack of", "Case of 24", 24.0, UnitItem),
	)

	It("converts 2.2 lbs to about one kilogram", func() {
		q := ParseQuantity("2.2 lbs")
		Expect(q.Unit).To(Equal(UnitKg))
		Expect(q.Amount).To(BeNumerically("~", 1.0, 0.01))
	})

	It("uses the first matching pattern", func() {
		q := ParseQuantity("Ground Beef 2 lbs (907 g)")
		Expect(q.Amount).To(BeNumerically("~", 0.907184, 1e-6))
	})

	It("does not read units out of longer words", func() {
		Expect(ParseQuantity("Milk 2 gallons")).To(Equal(Quantity{Amount: 1, Unit: UnitItem}))
	})

	It("defaults to one item", func() {
		Expect(ParseQuantity("Bread")).To(Equal(Quantity{Amount: 1, Unit: UnitItem}))
	})
})
