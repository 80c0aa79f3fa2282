package pixel

import (
	"bytes"
	"image"
	"image/color"
	"image/png"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Buffer", func() {
	Describe("NewBuffer", func() {
		It("rejects non-positive dimensions", func() {
			_, err := NewBuffer(nil, 0, 10)
			Expect(err).To(MatchError(ErrInvalidDimensions))
		})

		It("rejects a length mismatch", func() {
			_, err := NewBuffer(make([]uint8, 15), 2, 2)
			Expect(err).To(MatchError(ErrInvalidDimensions))
		})

		It("copies the caller's pixels", func() {
			pix := make([]uint8, 16)
			buf, err := NewBuffer(pix, 2, 2)
			Expect(err).NotTo(HaveOccurred())
			pix[0] = 99
			Expect(buf.Pix[0]).To(BeZero())
		})
	})

	Describe("Blank", func() {
		It("allocates a transparent buffer", func() {
			buf, err := Blank(3, 2)
			Expect(err).NotTo(HaveOccurred())
			Expect(buf.Pix).To(HaveLen(24))
		})

		It("rejects non-positive dimensions", func() {
			_, err := Blank(3, -1)
			Expect(err).To(MatchError(ErrInvalidDimensions))
		})
	})

	Describe("FromImage", func() {
		var src *image.NRGBA

		BeforeEach(func() {
			src = image.NewNRGBA(image.Rect(0, 0, 200, 100))
			for y := 0; y < 100; y++ {
				for x := 0; x < 200; x++ {
					src.SetNRGBA(x, y, color.NRGBA{R: uint8(x), G: uint8(y), B: 7, A: 255})
				}
			}
		})

		It("keeps the pixels of small images", func() {
			buf, err := FromImage(src, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(buf.Width).To(Equal(200))
			Expect(buf.Height).To(Equal(100))
			r, g, b, a := buf.At(10, 20)
			Expect([]uint8{r, g, b, a}).To(Equal([]uint8{10, 20, 7, 255}))
		})

		It("downscales the longer edge to maxDim", func() {
			buf, err := FromImage(src, 50)
			Expect(err).NotTo(HaveOccurred())
			Expect(buf.Width).To(Equal(50))
			Expect(buf.Height).To(Equal(25))
			Expect(buf.Pix).To(HaveLen(50 * 25 * 4))
		})

		It("normalizes images that do not start at the origin", func() {
			sub := src.SubImage(image.Rect(10, 10, 30, 40))
			buf, err := FromImage(sub, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(buf.Width).To(Equal(20))
			r, g, _, _ := buf.At(0, 0)
			Expect(r).To(Equal(uint8(10)))
			Expect(g).To(Equal(uint8(10)))
		})
	})

	Describe("PNG", func() {
		It("encodes a decodable image", func() {
			data, err := solid(4, 3, 1, 2, 3).PNG()
			Expect(err).NotTo(HaveOccurred())

			img, err := png.Decode(bytes.NewReader(data))
			Expect(err).NotTo(HaveOccurred())
			Expect(img.Bounds().Dx()).To(Equal(4))
			Expect(img.Bounds().Dy()).To(Equal(3))
		})
	})

	Describe("Clone", func() {
		It("does not share pixels", func() {
			a := solid(2, 2, 5, 5, 5)
			b := a.Clone()
			b.Pix[0] = 200
			Expect(a.Pix[0]).To(Equal(uint8(5)))
		})
	})

	Describe("Validate", func() {
		It("accepts a well-formed buffer", func() {
			Expect(solid(3, 2, 1, 2, 3).Validate()).To(Succeed())
		})

		It("rejects zero, mismatched and nil buffers", func() {
			var nilBuffer *Buffer
			Expect((&Buffer{}).Validate()).To(MatchError(ErrInvalidDimensions))
			Expect((&Buffer{Width: 2, Height: 2, Pix: make([]uint8, 15)}).Validate()).To(MatchError(ErrInvalidDimensions))
			Expect(nilBuffer.Validate()).To(MatchError(ErrInvalidDimensions))
		})

		It("panics through MustBeValid", func() {
			Expect(func() { (&Buffer{}).MustBeValid() }).To(Panic())
			Expect(func() { solid(1, 1, 0, 0, 0).MustBeValid() }).NotTo(Panic())
		})
	})
})
