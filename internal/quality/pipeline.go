package quality

import (
	"fmt"

	"github.com/zombor/footprint/internal/pixel"
)

// Pipeline is the enhancement chain run before detection.
type Pipeline struct {
	BlurRadius     int
	ContrastFactor float64
	Window         int
}

// DefaultPipeline returns the settings used when none are configured.
func DefaultPipeline() Pipeline {
	return Pipeline{
		BlurRadius:     2,
		ContrastFactor: pixel.DefaultContrastFactor,
		Window:         pixel.DefaultWindow,
	}
}

// Enhance runs blur, contrast, grayscale and adaptive threshold, in that
// order, and returns the final buffer.
func (p Pipeline) Enhance(b *pixel.Buffer) *pixel.Buffer {
	out := pixel.GaussianBlur(b, p.BlurRadius)
	out = pixel.EnhanceContrast(out, p.ContrastFactor)
	out = pixel.Grayscale(out)
	return pixel.AdaptiveThreshold(out, p.Window)
}

// Assess enhances b and scores the result.
func (p Pipeline) Assess(b *pixel.Buffer) Result {
	return Detect(p.Enhance(b))
}

// AssessPixels validates a raw RGBA slice and assesses it with the default
// pipeline.
func AssessPixels(pix []uint8, width, height int) (Result, error) {
	buf, err := pixel.NewBuffer(pix, width, height)
	if err != nil {
		return Result{}, fmt.Errorf("assessing receipt image: %w", err)
	}
	return DefaultPipeline().Assess(buf), nil
}
