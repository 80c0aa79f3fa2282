package emission

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("ExtractModifiers", func() {
	var (
		name     string
		merchant string
		location string
		ms       Modifiers
	)

	BeforeEach(func() {
		merchant = ""
		location = ""
	})

	JustBeforeEach(func() {
		ms = ExtractModifiers(name, merchant, location)
	})

	When("the name has no modifiers", func() {
		BeforeEach(func() {
			name = "Cheddar Cheese"
		})

		It("sets nothing", func() {
			Expect(ms.Any()).To(BeFalse())
			Expect(ms.Active()).To(BeEmpty())
		})
	})

	When("several modifiers appear", func() {
		BeforeEach(func() {
			name = "Organic Local Honey"
		})

		It("detects each independently", func() {
			Expect(ms.Organic).To(BeTrue())
			Expect(ms.Local).To(BeTrue())
		})

		It("reports them in fixed order", func() {
			Expect(ms.Active()).To(Equal([]Modifier{ModOrganic, ModLocal}))
		})
	})

	DescribeTable("name keywords",
		func(input string, want Modifier) {
			Expect(ExtractModifiers(input, "", "").Has(want)).To(BeTrue())
		},
		Entry("organic", "Organic Ground Beef", ModOrganic),
		Entry("bio", "Bio Yogurt", ModOrganic),
		Entry("imported", "Imported Parmesan", ModImported),
		Entry("frozen", "Frozen Peas", ModFrozen),
		Entry("grass-fed", "Grass-Fed Ribeye", ModGrassFed),
		Entry("grass fed", "grass fed butter", ModGrassFed),
		Entry("locally grown", "Locally Grown Tomatoes", ModLocal),
		Entry("bulk", "Bulk Rice 5kg", ModBulk),
		Entry("family pack", "Chicken Thighs Family Pack", ModBulk),
		Entry("seasonal", "Seasonal Squash", ModSeasonal),
	)

	It("does not match keywords inside other words", func() {
		Expect(ExtractModifiers("Biography of a Frozenheart", "", "").Any()).To(BeFalse())
	})

	Describe("merchant context", func() {
		BeforeEach(func() {
			name = "Eggs"
		})

		When("bought at a farmers market", func() {
			BeforeEach(func() {
				merchant = "Downtown Farmers Market"
			})

			It("marks the item local", func() {
				Expect(ms.Local).To(BeTrue())
			})
		})

		When("bought at a warehouse club", func() {
			BeforeEach(func() {
				merchant = "Costco Wholesale"
			})

			It("marks the item bulk", func() {
				Expect(ms.Bulk).To(BeTrue())
			})
		})
	})

	Describe("tropical fruit import inference", func() {
		BeforeEach(func() {
			name = "Bananas 1kg"
		})

		When("the location is outside the tropics", func() {
			BeforeEach(func() {
				location = "Chicago, IL"
			})

			It("infers imported", func() {
				Expect(ms.Imported).To(BeTrue())
			})
		})

		When("the location is tropical", func() {
			BeforeEach(func() {
				location = "Honolulu, Hawaii"
			})

			It("does not infer imported", func() {
				Expect(ms.Imported).To(BeFalse())
			})
		})

		When("no location is known", func() {
			It("does not infer imported", func() {
				Expect(ms.Imported).To(BeFalse())
			})
		})

		When("the product is not tropical", func() {
			BeforeEach(func() {
				name = "Apples"
				location = "Oslo"
			})

			It("does not infer imported", func() {
				Expect(ms.Imported).To(BeFalse())
			})
		})
	})
})
