// Package quality decides whether a photo is usable as a receipt scan.
package quality

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/zombor/footprint/internal/pixel"
)

// DetectionThreshold is the confidence a photo must exceed to count as a
// receipt.
const DetectionThreshold = 0.4

// Signal weights. They sum to one.
const (
	edgeWeight       = 0.30
	aspectWeight     = 0.20
	textWeight       = 0.25
	brightnessWeight = 0.15
	colorWeight      = 0.10
)

const (
	sobelThreshold     = 30.0
	edgeScale          = 8.0
	tallAspect         = 1.1
	wideAspectScore    = 0.3
	maxAspect          = 3.0
	textRowStep        = 3
	darkLuma           = 180.0
	minDarkFraction    = 0.1
	maxDarkFraction    = 0.8
	textLinesForFull   = 10.0
	brightnessVariance = 5000.0
	colorVariance      = 3000.0
)

// Sub-score levels below which a remediation hint is given.
const (
	edgeHintBelow       = 0.3
	textHintBelow       = 0.3
	brightnessHintBelow = 0.5
)

// Remediation hints, in the order they are offered.
const (
	SuggestVertical = "Hold the receipt vertically so it fills the frame from top to bottom."
	SuggestFocus    = "Hold the camera steady and tap to focus so the edges of the receipt are sharp."
	SuggestText     = "Move closer so the printed lines of text are clearly readable."
	SuggestLighting = "Use even lighting and avoid shadows or glare across the receipt."
	SuggestFraming  = "Place the receipt on a plain background with all four edges inside the frame."
)

// Scores are the individual signals, each in [0, 1].
type Scores struct {
	Edge       float64 `json:"edge"`
	Aspect     float64 `json:"aspect"`
	Text       float64 `json:"text"`
	Brightness float64 `json:"brightness"`
	Color      float64 `json:"color"`
}

func (s Scores) confidence() float64 {
	return edgeWeight*s.Edge + aspectWeight*s.Aspect + textWeight*s.Text +
		brightnessWeight*s.Brightness + colorWeight*s.Color
}

// Result is the outcome of a quality check. IsReceiptDetected is always
// Confidence > DetectionThreshold.
type Result struct {
	IsReceiptDetected bool     `json:"is_receipt_detected"`
	Confidence        float64  `json:"confidence"`
	Suggestions       []string `json:"suggestions"`
	Scores            Scores   `json:"scores"`
}

// Detect scores a buffer, normally the output of Pipeline.Enhance. It panics
// on a malformed buffer, as the filters do.
func Detect(b *pixel.Buffer) Result {
	b.MustBeValid()

	lumas := lumaPlane(b)
	aspect := float64(b.Height) / float64(b.Width)

	scores := Scores{
		Edge:       edgeScore(lumas, b.Width, b.Height),
		Aspect:     aspectScore(aspect),
		Text:       textScore(lumas, b.Width, b.Height),
		Brightness: brightnessScore(lumas),
		Color:      colorScore(b),
	}

	confidence := math.Min(math.Max(scores.confidence(), 0), 1)
	detected := confidence > DetectionThreshold

	suggestions := []string{}
	if !detected {
		if aspect < tallAspect {
			suggestions = append(suggestions, SuggestVertical)
		}
		if scores.Edge < edgeHintBelow {
			suggestions = append(suggestions, SuggestFocus)
		}
		if scores.Text < textHintBelow {
			suggestions = append(suggestions, SuggestText)
		}
		if scores.Brightness < brightnessHintBelow {
			suggestions = append(suggestions, SuggestLighting)
		}
		suggestions = append(suggestions, SuggestFraming)
	}

	return Result{
		IsReceiptDetected: detected,
		Confidence:        confidence,
		Suggestions:       suggestions,
		Scores:            scores,
	}
}

func lumaPlane(b *pixel.Buffer) []float64 {
	lumas := make([]float64, b.Width*b.Height)
	for p := range lumas {
		i := p * 4
		lumas[p] = pixel.Luma(b.Pix[i], b.Pix[i+1], b.Pix[i+2])
	}
	return lumas
}

// edgeScore is the fraction of interior pixels with a Sobel gradient
// magnitude above the threshold, scaled up since text covers little area.
func edgeScore(l []float64, w, h int) float64 {
	if w < 3 || h < 3 {
		return 0
	}
	at := func(x, y int) float64 { return l[y*w+x] }

	edges := 0
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			gx := at(x+1, y-1) + 2*at(x+1, y) + at(x+1, y+1) -
				at(x-1, y-1) - 2*at(x-1, y) - at(x-1, y+1)
			gy := at(x-1, y+1) + 2*at(x, y+1) + at(x+1, y+1) -
				at(x-1, y-1) - 2*at(x, y-1) - at(x+1, y-1)
			if math.Hypot(gx, gy) > sobelThreshold {
				edges++
			}
		}
	}
	interior := float64((w - 2) * (h - 2))
	return math.Min(float64(edges)/interior*edgeScale, 1)
}

func aspectScore(aspect float64) float64 {
	if aspect > tallAspect {
		return math.Min(aspect/maxAspect, 1)
	}
	return wideAspectScore
}

// textScore counts sampled rows that are partly dark, as printed lines are,
// rather than blank or solid.
func textScore(l []float64, w, h int) float64 {
	lines := 0
	for y := 0; y < h; y += textRowStep {
		dark := 0
		for _, v := range l[y*w : (y+1)*w] {
			if v < darkLuma {
				dark++
			}
		}
		fraction := float64(dark) / float64(w)
		if fraction > minDarkFraction && fraction < maxDarkFraction {
			lines++
		}
	}
	return math.Min(float64(lines)/textLinesForFull, 1)
}

func brightnessScore(l []float64) float64 {
	_, variance := stat.PopMeanVariance(l, nil)
	return 1 - math.Min(variance/brightnessVariance, 1)
}

// colorScore rewards images whose channels are uniform across the frame,
// the color counterpart of brightnessScore: the population variance of each
// of R, G and B over all pixels, averaged.
func colorScore(b *pixel.Buffer) float64 {
	n := b.Width * b.Height
	channels := [3][]float64{make([]float64, n), make([]float64, n), make([]float64, n)}
	for p := 0; p < n; p++ {
		i := p * 4
		channels[0][p] = float64(b.Pix[i])
		channels[1][p] = float64(b.Pix[i+1])
		channels[2][p] = float64(b.Pix[i+2])
	}

	var total float64
	for _, c := range channels {
		_, variance := stat.PopMeanVariance(c, nil)
		total += variance
	}
	return 1 - math.Min(total/3/colorVariance, 1)
}
