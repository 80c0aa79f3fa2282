// Package pixel holds RGBA pixel buffers and the filters that prepare a
// receipt photo for quality assessment.
//
// Every filter returns a new Buffer with the dimensions of its input and
// leaves the input untouched, so independent filter chains can share a
// source buffer.
package pixel

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"
	"runtime"

	"golang.org/x/image/draw"
	"golang.org/x/sync/errgroup"
)

// ErrInvalidDimensions is returned when width or height is not positive or
// the pixel slice does not hold exactly width*height RGBA pixels.
var ErrInvalidDimensions = errors.New("invalid pixel buffer dimensions")

// Buffer is a row-major, non-premultiplied RGBA image.
type Buffer struct {
	Width  int
	Height int
	Pix    []uint8
}

// NewBuffer validates the dimensions and copies pix into a new Buffer.
func NewBuffer(pix []uint8, width, height int) (*Buffer, error) {
	if err := checkDimensions(len(pix), width, height); err != nil {
		return nil, err
	}
	b := &Buffer{Width: width, Height: height, Pix: make([]uint8, len(pix))}
	copy(b.Pix, pix)
	return b, nil
}

// Blank returns a fully transparent buffer.
func Blank(width, height int) (*Buffer, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height)
	}
	return &Buffer{Width: width, Height: height, Pix: make([]uint8, width*height*4)}, nil
}

func checkDimensions(n, width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height)
	}
	if n != width*height*4 {
		return fmt.Errorf("%w: %d bytes for %dx%d", ErrInvalidDimensions, n, width, height)
	}
	return nil
}

// Validate reports whether b has positive dimensions and a pixel slice of
// exactly Width*Height*4 bytes.
func (b *Buffer) Validate() error {
	if b == nil {
		return fmt.Errorf("%w: nil buffer", ErrInvalidDimensions)
	}
	return checkDimensions(len(b.Pix), b.Width, b.Height)
}

// MustBeValid panics on a malformed buffer. Buffers built by NewBuffer or
// FromImage are always valid, so a failure here is a caller bug.
func (b *Buffer) MustBeValid() {
	if err := b.Validate(); err != nil {
		panic(err)
	}
}

// Clone returns a deep copy of b.
func (b *Buffer) Clone() *Buffer {
	out := &Buffer{Width: b.Width, Height: b.Height, Pix: make([]uint8, len(b.Pix))}
	copy(out.Pix, b.Pix)
	return out
}

// emptyLike allocates a buffer with b's dimensions.
func (b *Buffer) emptyLike() *Buffer {
	return &Buffer{Width: b.Width, Height: b.Height, Pix: make([]uint8, len(b.Pix))}
}

// At returns the RGBA components of the pixel at (x, y).
func (b *Buffer) At(x, y int) (r, g, bl, a uint8) {
	i := (y*b.Width + x) * 4
	return b.Pix[i], b.Pix[i+1], b.Pix[i+2], b.Pix[i+3]
}

// FromImage converts img into a Buffer. When maxDim is positive and the
// longer edge exceeds it, the image is downscaled with Catmull-Rom
// resampling so the longer edge equals maxDim.
func FromImage(img image.Image, maxDim int) (*Buffer, error) {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, w, h)
	}

	if long := max(w, h); maxDim > 0 && long > maxDim {
		scale := float64(maxDim) / float64(long)
		w = max(1, int(float64(w)*scale+0.5))
		h = max(1, int(float64(h)*scale+0.5))
		dst := image.NewNRGBA(image.Rect(0, 0, w, h))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Src, nil)
		return &Buffer{Width: w, Height: h, Pix: dst.Pix}, nil
	}

	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), img, bounds.Min, draw.Src)
	return &Buffer{Width: w, Height: h, Pix: dst.Pix}, nil
}

// Image returns a copy of b as an *image.NRGBA.
func (b *Buffer) Image() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, b.Width, b.Height))
	copy(img.Pix, b.Pix)
	return img
}

// PNG encodes b as a PNG image.
func (b *Buffer) PNG() ([]byte, error) {
	var out bytes.Buffer
	if err := png.Encode(&out, b.Image()); err != nil {
		return nil, fmt.Errorf("encoding PNG: %w", err)
	}
	return out.Bytes(), nil
}

// Luma returns the Rec. 601 luma of an RGB triple.
func Luma(r, g, b uint8) float64 {
	return 0.299*float64(r) + 0.587*float64(g) + 0.114*float64(b)
}

// clamp rounds v to the nearest integer and limits it to [0, 255].
func clamp(v float64) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 255:
		return 255
	}
	return uint8(v + 0.5)
}

// forRows calls fn for every row in [0, height), splitting the rows into one
// contiguous band per CPU. fn must only write to its own rows.
func forRows(height int, fn func(y int)) {
	bands := min(runtime.NumCPU(), height)
	step := (height + bands - 1) / bands

	var g errgroup.Group
	for start := 0; start < height; start += step {
		end := min(start+step, height)
		g.Go(func() error {
			for y := start; y < end; y++ {
				fn(y)
			}
			return nil
		})
	}
	_ = g.Wait()
}
