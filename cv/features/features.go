// Package features computes per-peak and scan-level descriptors from the
// validated peaks and the synthesized baseline. Downstream calibration and
// regression layers consume the resulting vector; nothing here mutates the
// pipeline's earlier outputs.
package features

import (
	"math"

	"gonum.org/v1/gonum/integrate"

	"github.com/cwbudde/algo-voltammetry/cv/baseline"
	"github.com/cwbudde/algo-voltammetry/cv/core"
	"github.com/cwbudde/algo-voltammetry/cv/peaks"
	"github.com/cwbudde/algo-voltammetry/cv/scan"
)

// PeakFeatures describes one accepted peak relative to the baseline.
type PeakFeatures struct {
	Kind         peaks.Kind
	Index        int
	Potential    float64 // V
	Height       float64 // |current - baseline| at the peak
	WidthSamples int     // full width at half maximum, samples
	WidthVolts   float64 // full width at half maximum, V
	Area         float64 // baseline-corrected, integrated over potential
	Symmetry     float64 // right half-width over left half-width
	Tailing      float64 // USP tailing factor (left+right)/(2*left)
	SNR          float64
	Confidence   float64
}

// ScanFeatures summarizes the whole scan for regression consumers.
type ScanFeatures struct {
	PeakCount       int
	OxidationArea   float64
	ReductionArea   float64
	AreaRatio       float64 // oxidation over reduction
	PeakSeparation  float64 // V between the dominant oxidation and reduction peaks
	Noise           float64
	SNR             float64
	BaselineQuality float64 // mean R² over winning segments
	DegradedHalves  int
}

// Vector is the full feature set of one analyzed scan.
type Vector struct {
	Peaks []PeakFeatures
	Scan  ScanFeatures
}

// Extract computes the feature vector. The baseline values are subtracted
// sample-wise; over a degraded half the baseline is zero, so features there
// describe the raw current.
func Extract(s scan.Scan, b baseline.Baseline, accepted []peaks.ValidatedPeak, th peaks.Thresholds) Vector {
	corrected := make([]float64, s.Len())
	for i := range corrected {
		corrected[i] = s.Current[i] - b.Values[i]
	}

	vec := Vector{
		Peaks: make([]PeakFeatures, 0, len(accepted)),
	}

	var domOx, domRed *PeakFeatures

	for _, p := range accepted {
		pf := extractPeak(s, corrected, p)
		vec.Peaks = append(vec.Peaks, pf)

		last := &vec.Peaks[len(vec.Peaks)-1]

		switch pf.Kind {
		case peaks.Oxidation:
			vec.Scan.OxidationArea += pf.Area
			if domOx == nil || pf.Height > domOx.Height {
				domOx = last
			}
		case peaks.Reduction:
			vec.Scan.ReductionArea += pf.Area
			if domRed == nil || pf.Height > domRed.Height {
				domRed = last
			}
		}
	}

	vec.Scan.PeakCount = len(vec.Peaks)
	vec.Scan.AreaRatio = core.SafeRatio(vec.Scan.OxidationArea, vec.Scan.ReductionArea)

	if domOx != nil && domRed != nil {
		vec.Scan.PeakSeparation = math.Abs(domOx.Potential - domRed.Potential)
	}

	vec.Scan.Noise = th.Noise
	vec.Scan.SNR = th.SNR
	vec.Scan.BaselineQuality = baselineQuality(b)
	vec.Scan.DegradedHalves = len(b.DegradedHalves())

	return vec
}

func extractPeak(s scan.Scan, corrected []float64, p peaks.ValidatedPeak) PeakFeatures {
	oriented := make([]float64, len(corrected))
	for i, v := range corrected {
		if p.Kind == peaks.Reduction {
			v = -v
		}

		oriented[i] = v
	}

	height := oriented[p.Index]
	if height < 0 {
		height = 0
	}

	left, right := halfMaxBounds(oriented, p.Index)
	widthSamples := right - left
	widthVolts := math.Abs(s.Potential[right] - s.Potential[left])

	pf := PeakFeatures{
		Kind:         p.Kind,
		Index:        p.Index,
		Potential:    p.Potential,
		Height:       height,
		WidthSamples: widthSamples,
		WidthVolts:   widthVolts,
		Area:         peakArea(s, oriented, p.Index, widthSamples),
		SNR:          p.SNR,
		Confidence:   p.Confidence,
	}

	leftHalf := float64(p.Index - left)
	rightHalf := float64(right - p.Index)

	pf.Symmetry = core.SafeRatio(rightHalf, leftHalf)
	pf.Tailing = core.SafeRatio(leftHalf+rightHalf, 2*leftHalf)

	return pf
}

// halfMaxBounds finds the nearest samples on each side that fall below half
// the (oriented, baseline-corrected) peak value.
func halfMaxBounds(oriented []float64, peak int) (left, right int) {
	level := oriented[peak] / 2

	left = peak
	for i := peak - 1; i >= 0; i-- {
		left = i
		if oriented[i] < level {
			break
		}
	}

	right = peak
	for i := peak + 1; i < len(oriented); i++ {
		right = i
		if oriented[i] < level {
			break
		}
	}

	return left, right
}

// peakArea integrates the oriented corrected current over a window sized
// from the peak width. Simpson's rule needs at least 3 points and strictly
// increasing potentials; otherwise the trapezoidal rule or a uniform-step
// fallback applies. Negative lobes are clipped so neighboring peaks of the
// opposite kind cannot cancel the area.
func peakArea(s scan.Scan, oriented []float64, peak, widthSamples int) float64 {
	halfWindow := widthSamples
	if halfWindow < 2 {
		halfWindow = 2
	}

	lo := core.ClampInt(peak-halfWindow, 0, len(oriented)-1)
	hi := core.ClampInt(peak+halfWindow+1, lo+1, len(oriented))

	x := append([]float64(nil), s.Potential[lo:hi]...)

	y := make([]float64, hi-lo)
	for i, v := range oriented[lo:hi] {
		if v < 0 {
			v = 0
		}

		y[i] = v
	}

	if len(x) >= 2 && decreasing(x) {
		reverse(x)
		reverse(y)
	}

	switch {
	case len(x) >= 3 && strictlyIncreasing(x):
		return integrate.Simpsons(x, y)
	case len(x) >= 2 && strictlyIncreasing(x):
		return integrate.Trapezoidal(x, y)
	default:
		return uniformArea(x, y)
	}
}

// uniformArea is the last-resort trapezoid over the mean potential step,
// used when the window's potentials are not strictly monotonic.
func uniformArea(x, y []float64) float64 {
	if len(x) < 2 {
		return 0
	}

	var dx float64
	for i := 1; i < len(x); i++ {
		dx += math.Abs(x[i] - x[i-1])
	}

	dx /= float64(len(x) - 1)

	var sum float64
	for i := 1; i < len(y); i++ {
		sum += 0.5 * (y[i] + y[i-1]) * dx
	}

	return sum
}

func baselineQuality(b baseline.Baseline) float64 {
	var (
		sum float64
		n   int
	)

	if b.Forward.Segment != nil {
		sum += b.Forward.Segment.R2
		n++
	}

	if b.Reverse.Segment != nil {
		sum += b.Reverse.Segment.R2
		n++
	}

	if n == 0 {
		return 0
	}

	return sum / float64(n)
}

func strictlyIncreasing(x []float64) bool {
	for i := 1; i < len(x); i++ {
		if x[i] <= x[i-1] {
			return false
		}
	}

	return true
}

func decreasing(x []float64) bool {
	return len(x) >= 2 && x[len(x)-1] < x[0]
}

func reverse(x []float64) {
	for i, j := 0, len(x)-1; i < j; i, j = i+1, j-1 {
		x[i], x[j] = x[j], x[i]
	}
}
