package peaks

import (
	"math"

	algofft "github.com/MeKo-Christian/algo-fft"

	"github.com/cwbudde/algo-voltammetry/cv/core"
	"github.com/cwbudde/algo-voltammetry/stats/robust"
)

const (
	defaultMinWidthFraction = 0.015
	defaultHeightFactor     = 2.0
	minWidthFloor           = 3
	spectralMinSamples      = 64
)

// ThresholdConfig parameterizes threshold derivation.
type ThresholdConfig struct {
	ProminenceFactor float64 // user multiplier on the SNR-derived prominence, default 1
	MinWidthFraction float64 // minimum peak width as a fraction of sample count
	HeightFactor     float64 // minimum peak height in units of noise std-dev
	SpectralNoise    bool    // refine the noise figure from the high-frequency band
}

// DefaultThresholdConfig returns sensible threshold defaults.
func DefaultThresholdConfig() ThresholdConfig {
	return ThresholdConfig{
		ProminenceFactor: 1,
		MinWidthFraction: defaultMinWidthFraction,
		HeightFactor:     defaultHeightFactor,
		SpectralNoise:    true,
	}
}

func normalizeThresholdConfig(cfg ThresholdConfig) ThresholdConfig {
	if cfg.ProminenceFactor <= 0 {
		cfg.ProminenceFactor = 1
	}

	if cfg.MinWidthFraction <= 0 {
		cfg.MinWidthFraction = defaultMinWidthFraction
	}

	if cfg.HeightFactor <= 0 {
		cfg.HeightFactor = defaultHeightFactor
	}

	return cfg
}

// Thresholds are the SNR-adaptive detection parameters shared by all
// strategies.
type Thresholds struct {
	Noise       float64 // noise level estimate, signal units
	Signal      float64 // max |current|
	SNR         float64
	Prominence  float64 // minimum candidate prominence
	MinWidth    int     // minimum peak width, samples
	MinHeight   float64 // minimum peak height, signal units
	MinDistance int     // minimum samples between same-kind peaks
}

// Derive computes detection thresholds from the current sequence. The noise
// level starts as the current standard deviation; for longer scans a
// high-frequency spectral estimate replaces it when smaller, since the
// std-dev overstates noise on peak-rich scans. Higher SNR maps to a smaller
// required prominence fraction of the current range.
func Derive(current []float64, cfg ThresholdConfig) Thresholds {
	cfg = normalizeThresholdConfig(cfg)
	n := len(current)

	noise := robust.StdDev(current)
	if cfg.SpectralNoise && n >= spectralMinSamples {
		if est := spectralNoise(current); est > 0 && est < noise {
			noise = est
		}
	}

	// Signal strength is measured after median removal so a large
	// non-faradaic offset cannot inflate the SNR of a featureless scan.
	med := robust.Median(current)

	deviations := make([]float64, n)
	for i, v := range current {
		deviations[i] = v - med
	}

	signal := robust.Amplitude(deviations)
	snr := core.SafeRatio(signal, noise)

	rangeVal := robust.Range(current)
	prom := prominenceTier(snr) * rangeVal * cfg.ProminenceFactor

	minWidth := int(cfg.MinWidthFraction * float64(n))
	if minWidth < minWidthFloor {
		minWidth = minWidthFloor
	}

	minDistance := minWidth
	if d := n / 50; d > minDistance {
		minDistance = d
	}

	return Thresholds{
		Noise:       noise,
		Signal:      signal,
		SNR:         snr,
		Prominence:  prom,
		MinWidth:    minWidth,
		MinHeight:   cfg.HeightFactor * noise,
		MinDistance: minDistance,
	}
}

// prominenceTier maps SNR to the required prominence as a fraction of the
// current range. Cleaner signals can afford a lower bar.
func prominenceTier(snr float64) float64 {
	switch {
	case snr >= 20:
		return 0.04
	case snr >= 10:
		return 0.06
	case snr >= 5:
		return 0.10
	default:
		return 0.15
	}
}

// spectralNoise estimates the noise RMS from the upper half of the spectrum,
// where faradaic features contribute little. Returns 0 when the estimate is
// unavailable, leaving the caller on the std-dev figure.
func spectralNoise(current []float64) float64 {
	n := len(current)
	if n < 8 {
		return 0
	}

	fftSize := nextPowerOf2(n)

	plan, err := algofft.NewPlan64(fftSize)
	if err != nil {
		return 0
	}

	mean := robust.Mean(current)

	// Hann window keeps the zero-padding step from leaking into the band.
	inData := make([]complex128, fftSize)

	var windowPower float64

	for i, v := range current {
		w := 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(n-1)))
		inData[i] = complex((v-mean)*w, 0)
		windowPower += w * w
	}

	if windowPower == 0 {
		return 0
	}

	out := make([]complex128, fftSize)
	if err := plan.Forward(out, inData); err != nil {
		return 0
	}

	// Energy in the top half of the positive-frequency band, doubled for the
	// mirrored negative bins. White noise spreads evenly, so this band holds
	// about half the total noise power.
	var hfEnergy float64

	for k := fftSize / 4; k <= fftSize/2; k++ {
		x := out[k]
		hfEnergy += real(x)*real(x) + imag(x)*imag(x)
	}

	hfEnergy *= 2.0 / float64(fftSize)

	est := math.Sqrt(2 * hfEnergy / windowPower)
	if !core.IsFinite(est) {
		return 0
	}

	return est
}

func nextPowerOf2(n int) int {
	if n <= 1 {
		return 1
	}

	p := 1
	for p < n {
		p <<= 1
	}

	return p
}
