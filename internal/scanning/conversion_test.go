package scanning

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func testImage() image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, 6, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 6; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: 200, G: 200, B: 200, A: 255})
		}
	}
	return img
}

func encodePNG(img image.Image) []byte {
	var buf bytes.Buffer
	Expect(png.Encode(&buf, img)).To(Succeed())
	return buf.Bytes()
}

var _ = Describe("DecodeImage", func() {
	var (
		data        []byte
		contentType string
		img         image.Image
		err         error
	)

	JustBeforeEach(func() {
		img, err = DecodeImage(data, contentType)
	})

	When("the upload is a PNG", func() {
		BeforeEach(func() {
			data = encodePNG(testImage())
			contentType = "image/png"
		})

		It("decodes it", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(img.Bounds().Dx()).To(Equal(6))
			Expect(img.Bounds().Dy()).To(Equal(4))
		})
	})

	When("the upload is a JPEG with parameters in its content type", func() {
		BeforeEach(func() {
			var buf bytes.Buffer
			Expect(jpeg.Encode(&buf, testImage(), nil)).To(Succeed())
			data = buf.Bytes()
			contentType = "image/jpeg; charset=binary"
		})

		It("decodes it", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(img.Bounds().Dx()).To(Equal(6))
		})
	})

	When("the upload is not an image", func() {
		BeforeEach(func() {
			data = []byte("definitely not an image")
			contentType = "application/octet-stream"
		})

		It("returns ErrUnsupportedFormat", func() {
			Expect(err).To(MatchError(ErrUnsupportedFormat))
		})
	})

	When("the upload claims to be a PDF but is not", func() {
		BeforeEach(func() {
			data = []byte("garbage")
			contentType = "application/pdf"
		})

		It("returns a PDF error", func() {
			Expect(err).To(MatchError(ContainSubstring("converting PDF to image")))
		})
	})
})

var _ = Describe("HEIC detection", func() {
	It("recognizes the ftyp brand", func() {
		data := append([]byte{0, 0, 0, 24}, []byte("ftypheic0000")...)
		Expect(isHEICFormat(data)).To(BeTrue())
	})

	It("ignores other files", func() {
		Expect(isHEICFormat([]byte("short"))).To(BeFalse())
		Expect(isHEICFormat(encodePNG(testImage()))).To(BeFalse())
	})

	It("recognizes the MIME types", func() {
		Expect(isHEICMimeType("image/HEIC")).To(BeTrue())
		Expect(isHEICMimeType(" image/heif ")).To(BeTrue())
		Expect(isHEICMimeType("image/png")).To(BeFalse())
	})
})

var _ = Describe("prepareImageData", func() {
	It("passes PNGs through", func() {
		data := encodePNG(testImage())
		out, converted, err := prepareImageData(data, "image/png")
		Expect(err).NotTo(HaveOccurred())
		Expect(converted).To(BeFalse())
		Expect(out).To(Equal(data))
	})

	It("converts other formats to PNG", func() {
		var buf bytes.Buffer
		Expect(jpeg.Encode(&buf, testImage(), nil)).To(Succeed())

		out, converted, err := prepareImageData(buf.Bytes(), "image/jpeg")
		Expect(err).NotTo(HaveOccurred())
		Expect(converted).To(BeTrue())
		_, format, err := image.Decode(bytes.NewReader(out))
		Expect(err).NotTo(HaveOccurred())
		Expect(format).To(Equal("png"))
	})
})
