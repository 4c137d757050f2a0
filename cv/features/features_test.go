package features

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-voltammetry/cv/baseline"
	"github.com/cwbudde/algo-voltammetry/cv/peaks"
	"github.com/cwbudde/algo-voltammetry/cv/scan"
)

// peakScan builds a forward potential ramp carrying one Gaussian oxidation
// peak over a flat offset, with a matching constant baseline.
func peakScan(n, center int, height, offset float64) (scan.Scan, baseline.Baseline) {
	s := scan.Scan{
		Potential: make([]float64, n),
		Current:   make([]float64, n),
	}

	for i := range s.Potential {
		s.Potential[i] = float64(i) * 0.01

		d := float64(i-center) / 5
		s.Current[i] = offset + height*math.Exp(-0.5*d*d)
	}

	values := make([]float64, n)
	for i := range values {
		values[i] = offset
	}

	seg := &baseline.Segment{Intercept: offset, R2: 1}

	return s, baseline.Baseline{
		Values:  values,
		Forward: baseline.HalfBaseline{Status: baseline.StatusFound, Segment: seg},
		Reverse: baseline.HalfBaseline{Status: baseline.StatusFound, Segment: seg},
	}
}

func oxPeak(idx int, s scan.Scan) peaks.ValidatedPeak {
	return peaks.ValidatedPeak{
		Candidate: peaks.Candidate{
			Index:     idx,
			Potential: s.Potential[idx],
			Current:   s.Current[idx],
			Kind:      peaks.Oxidation,
		},
		Confidence: 90,
		SNR:        12,
		Accepted:   true,
	}
}

func TestExtractPeakGeometry(t *testing.T) {
	s, b := peakScan(101, 50, 1.0, 0.5)
	p := oxPeak(50, s)

	vec := Extract(s, b, []peaks.ValidatedPeak{p}, peaks.Thresholds{Noise: 0.01, SNR: 12})

	if len(vec.Peaks) != 1 {
		t.Fatalf("got %d peak features, want 1", len(vec.Peaks))
	}

	pf := vec.Peaks[0]

	if math.Abs(pf.Height-1.0) > 1e-9 {
		t.Errorf("Height = %g, want 1.0 after baseline subtraction", pf.Height)
	}

	// A Gaussian's FWHM is 2.355 sigma, about 12 samples at sigma 5.
	if pf.WidthSamples < 10 || pf.WidthSamples > 14 {
		t.Errorf("WidthSamples = %d, want ~12", pf.WidthSamples)
	}

	if math.Abs(pf.WidthVolts-float64(pf.WidthSamples)*0.01) > 1e-9 {
		t.Errorf("WidthVolts = %g inconsistent with %d samples at 10 mV", pf.WidthVolts, pf.WidthSamples)
	}

	// Symmetric peak: symmetry ~1, tailing ~1.
	if math.Abs(pf.Symmetry-1) > 0.25 {
		t.Errorf("Symmetry = %g, want ~1", pf.Symmetry)
	}

	if math.Abs(pf.Tailing-1) > 0.15 {
		t.Errorf("Tailing = %g, want ~1", pf.Tailing)
	}

	if pf.Confidence != 90 || pf.SNR != 12 {
		t.Errorf("passthrough fields wrong: %+v", pf)
	}
}

func TestExtractPeakArea(t *testing.T) {
	s, b := peakScan(101, 50, 1.0, 0.5)
	p := oxPeak(50, s)

	vec := Extract(s, b, []peaks.ValidatedPeak{p}, peaks.Thresholds{})

	// Gaussian area = height * sigma * sqrt(2*pi) = 1 * 0.05 * 2.5066.
	want := 0.05 * math.Sqrt(2*math.Pi)

	got := vec.Peaks[0].Area
	if math.Abs(got-want)/want > 0.15 {
		t.Errorf("Area = %g, want within 15%% of %g", got, want)
	}

	if vec.Scan.OxidationArea != got {
		t.Errorf("OxidationArea = %g, want %g", vec.Scan.OxidationArea, got)
	}
}

func TestExtractAreaScalesWithHeight(t *testing.T) {
	s1, b1 := peakScan(101, 50, 1.0, 0)
	s2, b2 := peakScan(101, 50, 2.0, 0)

	v1 := Extract(s1, b1, []peaks.ValidatedPeak{oxPeak(50, s1)}, peaks.Thresholds{})
	v2 := Extract(s2, b2, []peaks.ValidatedPeak{oxPeak(50, s2)}, peaks.Thresholds{})

	ratio := v2.Peaks[0].Area / v1.Peaks[0].Area
	if math.Abs(ratio-2) > 0.2 {
		t.Errorf("area ratio = %g, want ~2 for doubled height", ratio)
	}
}

func TestExtractScanSummary(t *testing.T) {
	n := 200

	s := scan.Scan{
		Potential: make([]float64, n),
		Current:   make([]float64, n),
	}

	half := n / 2
	for i := range s.Potential {
		if i < half {
			s.Potential[i] = float64(i) * 0.01
		} else {
			s.Potential[i] = float64(half)*0.01 - float64(i-half)*0.01
		}

		dOx := float64(i-50) / 5
		dRed := float64(i-150) / 5
		s.Current[i] = math.Exp(-0.5*dOx*dOx) - 0.8*math.Exp(-0.5*dRed*dRed)
	}

	b := baseline.Baseline{
		Values:  make([]float64, n),
		Forward: baseline.HalfBaseline{Status: baseline.StatusFound, Segment: &baseline.Segment{R2: 0.9}},
		Reverse: baseline.HalfBaseline{Status: baseline.StatusDegraded},
	}

	ox := peaks.ValidatedPeak{
		Candidate: peaks.Candidate{Index: 50, Potential: s.Potential[50], Current: s.Current[50], Kind: peaks.Oxidation},
		Accepted:  true,
	}
	red := peaks.ValidatedPeak{
		Candidate: peaks.Candidate{Index: 150, Potential: s.Potential[150], Current: s.Current[150], Kind: peaks.Reduction},
		Accepted:  true,
	}

	vec := Extract(s, b, []peaks.ValidatedPeak{ox, red}, peaks.Thresholds{Noise: 0.02, SNR: 25})

	if vec.Scan.PeakCount != 2 {
		t.Fatalf("PeakCount = %d, want 2", vec.Scan.PeakCount)
	}

	if vec.Scan.OxidationArea <= 0 || vec.Scan.ReductionArea <= 0 {
		t.Errorf("areas = %g / %g, want both positive", vec.Scan.OxidationArea, vec.Scan.ReductionArea)
	}

	if vec.Scan.AreaRatio <= 1 {
		t.Errorf("AreaRatio = %g, want > 1 for the larger oxidation peak", vec.Scan.AreaRatio)
	}

	// Forward peak at 0.50 V, reverse peak at potential 1.0 - 0.50 = 0.50 V.
	if vec.Scan.PeakSeparation > 0.02 {
		t.Errorf("PeakSeparation = %g, want ~0 for mirrored peaks", vec.Scan.PeakSeparation)
	}

	if vec.Scan.Noise != 0.02 || vec.Scan.SNR != 25 {
		t.Errorf("threshold passthrough wrong: %+v", vec.Scan)
	}

	if vec.Scan.BaselineQuality != 0.9 {
		t.Errorf("BaselineQuality = %g, want 0.9 from the single winning segment", vec.Scan.BaselineQuality)
	}

	if vec.Scan.DegradedHalves != 1 {
		t.Errorf("DegradedHalves = %d, want 1", vec.Scan.DegradedHalves)
	}
}

func TestExtractNoPeaks(t *testing.T) {
	s, b := peakScan(101, 50, 0, 1.0)

	vec := Extract(s, b, nil, peaks.Thresholds{})

	if vec.Scan.PeakCount != 0 || len(vec.Peaks) != 0 {
		t.Errorf("expected empty features, got %+v", vec)
	}

	if vec.Scan.AreaRatio != 0 {
		t.Errorf("AreaRatio = %g, want 0 without peaks", vec.Scan.AreaRatio)
	}
}

func TestExtractReductionOrientation(t *testing.T) {
	n := 101

	s := scan.Scan{
		Potential: make([]float64, n),
		Current:   make([]float64, n),
	}

	for i := range s.Potential {
		s.Potential[i] = float64(i) * 0.01

		d := float64(i-50) / 5
		s.Current[i] = -math.Exp(-0.5 * d * d)
	}

	b := baseline.Baseline{Values: make([]float64, n)}

	p := peaks.ValidatedPeak{
		Candidate: peaks.Candidate{Index: 50, Potential: 0.5, Current: s.Current[50], Kind: peaks.Reduction},
		Accepted:  true,
	}

	vec := Extract(s, b, []peaks.ValidatedPeak{p}, peaks.Thresholds{})

	pf := vec.Peaks[0]
	if math.Abs(pf.Height-1) > 1e-9 {
		t.Errorf("Height = %g, want 1 for the oriented cathodic peak", pf.Height)
	}

	if pf.Area <= 0 {
		t.Errorf("Area = %g, want positive after orientation", pf.Area)
	}
}
