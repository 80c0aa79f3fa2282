package pixel

import "math"

// Filter defaults.
const (
	DefaultContrastFactor = 1.4
	DefaultWindow         = 15
	grayBlend             = 0.7
	thresholdBias         = 10.0
)

// GaussianBlur smooths b with a separable Gaussian kernel of size 2*radius+1
// and sigma radius/3. Taps outside the image are dropped and the remaining
// weights renormalized, so borders are neither darkened nor wrapped. Alpha
// is copied unchanged. A radius below 1 returns a copy.
func GaussianBlur(b *Buffer, radius int) *Buffer {
	b.MustBeValid()
	if radius < 1 {
		return b.Clone()
	}

	kernel := gaussianKernel(radius)
	w, h := b.Width, b.Height

	// Horizontal pass keeps full precision for the vertical pass.
	tmp := make([]float64, w*h*3)
	forRows(h, func(y int) {
		for x := 0; x < w; x++ {
			var r, g, bl, sum float64
			for k := -radius; k <= radius; k++ {
				sx := x + k
				if sx < 0 || sx >= w {
					continue
				}
				wt := kernel[k+radius]
				i := (y*w + sx) * 4
				r += float64(b.Pix[i]) * wt
				g += float64(b.Pix[i+1]) * wt
				bl += float64(b.Pix[i+2]) * wt
				sum += wt
			}
			j := (y*w + x) * 3
			tmp[j], tmp[j+1], tmp[j+2] = r/sum, g/sum, bl/sum
		}
	})

	out := b.emptyLike()
	forRows(h, func(y int) {
		for x := 0; x < w; x++ {
			var r, g, bl, sum float64
			for k := -radius; k <= radius; k++ {
				sy := y + k
				if sy < 0 || sy >= h {
					continue
				}
				wt := kernel[k+radius]
				j := (sy*w + x) * 3
				r += tmp[j] * wt
				g += tmp[j+1] * wt
				bl += tmp[j+2] * wt
				sum += wt
			}
			i := (y*w + x) * 4
			out.Pix[i] = clamp(r / sum)
			out.Pix[i+1] = clamp(g / sum)
			out.Pix[i+2] = clamp(bl / sum)
			out.Pix[i+3] = b.Pix[i+3]
		}
	})
	return out
}

func gaussianKernel(radius int) []float64 {
	sigma := float64(radius) / 3
	kernel := make([]float64, 2*radius+1)
	for k := -radius; k <= radius; k++ {
		kernel[k+radius] = math.Exp(-float64(k*k) / (2 * sigma * sigma))
	}
	return kernel
}

// Grayscale blends every channel toward the pixel's luma:
// c' = 0.7*luma + 0.3*c. Some color survives for human review.
func Grayscale(b *Buffer) *Buffer {
	b.MustBeValid()
	out := b.emptyLike()
	w := b.Width
	forRows(b.Height, func(y int) {
		for i := y * w * 4; i < (y+1)*w*4; i += 4 {
			l := Luma(b.Pix[i], b.Pix[i+1], b.Pix[i+2]) * grayBlend
			out.Pix[i] = clamp(l + (1-grayBlend)*float64(b.Pix[i]))
			out.Pix[i+1] = clamp(l + (1-grayBlend)*float64(b.Pix[i+1]))
			out.Pix[i+2] = clamp(l + (1-grayBlend)*float64(b.Pix[i+2]))
			out.Pix[i+3] = b.Pix[i+3]
		}
	})
	return out
}

// EnhanceContrast equalizes the luma histogram and then stretches the
// equalized luma around mid-gray by factor. Each pixel's channels are shifted
// by the difference between its new and old luma, which keeps hue. A factor
// of zero or less selects DefaultContrastFactor.
func EnhanceContrast(b *Buffer, factor float64) *Buffer {
	b.MustBeValid()
	if factor <= 0 {
		factor = DefaultContrastFactor
	}

	lumas := make([]uint8, b.Width*b.Height)
	var hist [256]int
	for p := range lumas {
		i := p * 4
		l := clamp(Luma(b.Pix[i], b.Pix[i+1], b.Pix[i+2]))
		lumas[p] = l
		hist[l]++
	}

	var lut [256]float64
	total := float64(len(lumas))
	cdf := 0
	for v, n := range hist {
		cdf += n
		equalized := math.Round(float64(cdf) / total * 255)
		lut[v] = float64(clamp((equalized-128)*factor + 128))
	}

	out := b.emptyLike()
	w := b.Width
	forRows(b.Height, func(y int) {
		for p := y * w; p < (y+1)*w; p++ {
			i := p * 4
			delta := lut[lumas[p]] - float64(lumas[p])
			out.Pix[i] = clamp(float64(b.Pix[i]) + delta)
			out.Pix[i+1] = clamp(float64(b.Pix[i+1]) + delta)
			out.Pix[i+2] = clamp(float64(b.Pix[i+2]) + delta)
			out.Pix[i+3] = b.Pix[i+3]
		}
	})
	return out
}

// AdaptiveThreshold binarizes b against the mean luma of a window x window
// neighborhood clipped at the image borders. A pixel becomes black when its
// luma is at most the local mean minus 10, otherwise white. Even windows are
// widened by one; a window below 1 selects DefaultWindow.
func AdaptiveThreshold(b *Buffer, window int) *Buffer {
	b.MustBeValid()
	if window < 1 {
		window = DefaultWindow
	}
	if window%2 == 0 {
		window++
	}
	half := window / 2
	w, h := b.Width, b.Height

	// Summed-area table of luma with a zero first row and column.
	lumas := make([]float64, w*h)
	sat := make([]float64, (w+1)*(h+1))
	for y := 0; y < h; y++ {
		row := 0.0
		for x := 0; x < w; x++ {
			i := (y*w + x) * 4
			l := Luma(b.Pix[i], b.Pix[i+1], b.Pix[i+2])
			lumas[y*w+x] = l
			row += l
			sat[(y+1)*(w+1)+x+1] = sat[y*(w+1)+x+1] + row
		}
	}

	out := b.emptyLike()
	forRows(h, func(y int) {
		y0, y1 := max(0, y-half), min(h-1, y+half)
		for x := 0; x < w; x++ {
			x0, x1 := max(0, x-half), min(w-1, x+half)
			sum := sat[(y1+1)*(w+1)+x1+1] - sat[y0*(w+1)+x1+1] - sat[(y1+1)*(w+1)+x0] + sat[y0*(w+1)+x0]
			mean := sum / float64((x1-x0+1)*(y1-y0+1))

			var v uint8 = 255
			if lumas[y*w+x] <= mean-thresholdBias {
				v = 0
			}
			i := (y*w + x) * 4
			out.Pix[i], out.Pix[i+1], out.Pix[i+2] = v, v, v
			out.Pix[i+3] = b.Pix[i+3]
		}
	})
	return out
}
