package receipt

import (
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/zombor/footprint/internal/emission"
	"github.com/zombor/footprint/internal/quality"
)

var _ = Describe("BoltDB", func() {
	var (
		tmpDir string
		dbPath string
		db     *BoltDB
	)

	BeforeEach(func() {
		tmpDir = GinkgoT().TempDir()
		dbPath = filepath.Join(tmpDir, "test.db")
		var err error
		db, err = NewBoltDB(dbPath)
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		if db != nil {
			db.Close()
		}
	})

	newTestBasket := func(id string, created time.Time) *Basket {
		calculator := emission.NewCalculator(nil, nil)
		lines := []emission.Line{{Name: "Beef 1kg", Quantity: 1}}
		return &Basket{
			ID:        id,
			Merchant:  "Test Market",
			Date:      time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
			Source:    SourceManual,
			Lines:     lines,
			Spend:     12.5,
			Result:    calculator.Aggregate([]emission.ItemResult{calculator.Calculate("Beef 1kg", 1, "", "")}),
			CreatedAt: created,
		}
	}

	Describe("SaveBasket", func() {
		var (
			basket *Basket
			err    error
		)

		BeforeEach(func() {
			basket = newTestBasket("test-id", time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC))
			basket.Quality = &quality.Result{IsReceiptDetected: true, Confidence: 0.72, Suggestions: []string{}}
		})

		JustBeforeEach(func() {
			err = db.SaveBasket(basket)
		})

		When("saving succeeds", func() {
			It("should not return an error", func() {
				Expect(err).NotTo(HaveOccurred())
			})

			It("should round trip the basket", func() {
				saved, getErr := db.GetBasket("test-id")
				Expect(getErr).NotTo(HaveOccurred())
				Expect(saved.ID).To(Equal("test-id"))
				Expect(saved.Merchant).To(Equal("Test Market"))
				Expect(saved.Lines).To(Equal(basket.Lines))
				Expect(saved.Result.TotalKg).To(Equal(basket.Result.TotalKg))
				Expect(saved.Result.Items[0].Category).To(Equal("Beef"))
				Expect(saved.Quality.Confidence).To(Equal(0.72))
				Expect(saved.CreatedAt.Equal(basket.CreatedAt)).To(BeTrue())
			})
		})

		When("the basket already exists", func() {
			BeforeEach(func() {
				Expect(db.SaveBasket(newTestBasket("test-id", time.Now()))).To(Succeed())
				basket.Merchant = "Updated Market"
			})

			It("overwrites it", func() {
				saved, getErr := db.GetBasket("test-id")
				Expect(getErr).NotTo(HaveOccurred())
				Expect(saved.Merchant).To(Equal("Updated Market"))
			})
		})
	})

	Describe("GetBasket", func() {
		var (
			basketID string
			basket   *Basket
			err      error
		)

		JustBeforeEach(func() {
			basket, err = db.GetBasket(basketID)
		})

		When("basket exists", func() {
			BeforeEach(func() {
				basketID = "existing-id"
				Expect(db.SaveBasket(newTestBasket(basketID, time.Now()))).To(Succeed())
			})

			It("should not return an error", func() {
				Expect(err).NotTo(HaveOccurred())
			})

			It("should return the basket", func() {
				Expect(basket.ID).To(Equal("existing-id"))
			})
		})

		When("basket does not exist", func() {
			BeforeEach(func() {
				basketID = "non-existent"
			})

			It("should return ErrBasketNotFound", func() {
				Expect(err).To(MatchError(ErrBasketNotFound))
				Expect(err.Error()).To(ContainSubstring("non-existent"))
			})

			It("should return nil basket", func() {
				Expect(basket).To(BeNil())
			})
		})
	})

	Describe("ListBaskets", func() {
		var (
			baskets []*Basket
			err     error
		)

		JustBeforeEach(func() {
			baskets, err = db.ListBaskets()
		})

		When("no baskets exist", func() {
			It("should return an empty list", func() {
				Expect(err).NotTo(HaveOccurred())
				Expect(baskets).NotTo(BeNil())
				Expect(baskets).To(BeEmpty())
			})
		})

		When("baskets exist", func() {
			BeforeEach(func() {
				base := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
				Expect(db.SaveBasket(newTestBasket("a", base))).To(Succeed())
				Expect(db.SaveBasket(newTestBasket("b", base.Add(2*time.Hour)))).To(Succeed())
				Expect(db.SaveBasket(newTestBasket("c", base.Add(time.Hour)))).To(Succeed())
			})

			It("should return them newest first", func() {
				Expect(err).NotTo(HaveOccurred())
				ids := make([]string, 0, len(baskets))
				for _, b := range baskets {
					ids = append(ids, b.ID)
				}
				Expect(ids).To(Equal([]string{"b", "c", "a"}))
			})
		})
	})

	Describe("DeleteBasket", func() {
		BeforeEach(func() {
			Expect(db.SaveBasket(newTestBasket("doomed", time.Now()))).To(Succeed())
		})

		It("removes the basket", func() {
			Expect(db.DeleteBasket("doomed")).To(Succeed())
			_, err := db.GetBasket("doomed")
			Expect(err).To(MatchError(ErrBasketNotFound))
		})

		It("ignores unknown IDs", func() {
			Expect(db.DeleteBasket("missing")).To(Succeed())
		})
	})

	Describe("NewBoltDB", func() {
		It("reopens an existing database", func() {
			Expect(db.SaveBasket(newTestBasket("persisted", time.Now()))).To(Succeed())
			Expect(db.Close()).To(Succeed())

			var err error
			db, err = NewBoltDB(dbPath)
			Expect(err).NotTo(HaveOccurred())
			saved, err := db.GetBasket("persisted")
			Expect(err).NotTo(HaveOccurred())
			Expect(saved.ID).To(Equal("persisted"))
		})

		It("fails for an unwritable path", func() {
			_, err := NewBoltDB(filepath.Join(tmpDir, "missing", "dir", "test.db"))
			Expect(err).To(HaveOccurred())
		})
	})
})
