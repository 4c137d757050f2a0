package scan

import (
	"github.com/cwbudde/algo-voltammetry/cv/smooth"
)

const (
	// DefaultMinScanRatio is the minimum fraction of the scan each half keeps.
	DefaultMinScanRatio = 0.15

	defaultLookAhead       = 4
	defaultPotentialSmooth = 3
)

// SegmentConfig controls turning-point detection.
type SegmentConfig struct {
	MinScanRatio    float64 // minimum fraction of samples per half
	LookAhead       int     // samples a sign change must sustain
	PotentialSmooth int     // odd moving-average window applied before differencing
}

// DefaultSegmentConfig returns sensible segmentation defaults.
func DefaultSegmentConfig() SegmentConfig {
	return SegmentConfig{
		MinScanRatio:    DefaultMinScanRatio,
		LookAhead:       defaultLookAhead,
		PotentialSmooth: defaultPotentialSmooth,
	}
}

func normalizeSegmentConfig(cfg SegmentConfig) SegmentConfig {
	if cfg.MinScanRatio <= 0 || cfg.MinScanRatio >= 0.5 {
		cfg.MinScanRatio = DefaultMinScanRatio
	}

	if cfg.LookAhead < 1 {
		cfg.LookAhead = defaultLookAhead
	}

	if cfg.PotentialSmooth < 3 {
		cfg.PotentialSmooth = defaultPotentialSmooth
	}

	if cfg.PotentialSmooth%2 == 0 {
		cfg.PotentialSmooth++
	}

	return cfg
}

// Segment finds the potential-sweep reversal and splits the scan into a
// forward half [0, turn) and a reverse half [turn, n). The turn is the first
// index where the smoothed potential difference sustains a sign change over
// the look-ahead window. Without a discernible reversal the turn defaults to
// the midpoint. Each half is clamped to at least MinScanRatio of the scan.
func Segment(s Scan, cfg SegmentConfig) Segmentation {
	cfg = normalizeSegmentConfig(cfg)
	n := s.Len()

	turn := findTurn(s.Potential, cfg)
	if turn <= 0 || turn >= n {
		turn = n / 2
	}

	turn = clampTurn(turn, n, cfg.MinScanRatio)

	return Segmentation{
		Turn:    turn,
		Forward: Half{Start: 0, End: turn, Direction: Forward},
		Reverse: Half{Start: turn, End: n, Direction: Reverse},
	}
}

func findTurn(potential []float64, cfg SegmentConfig) int {
	n := len(potential)
	if n < 3 {
		return -1
	}

	p := potential
	if n >= cfg.PotentialSmooth {
		if smoothed, err := smooth.MovingAverage(potential, cfg.PotentialSmooth); err == nil {
			p = smoothed
		}
	}

	initial := initialSign(p)
	if initial == 0 {
		return -1
	}

	for i := 1; i < n; i++ {
		d := p[i] - p[i-1]
		if sign(d) == 0 || sign(d) == initial {
			continue
		}

		if sustains(p, i, -initial, cfg.LookAhead) {
			return i - 1
		}
	}

	return -1
}

// sustains reports whether the differences starting at index i keep the
// given sign for the look-ahead window (clipped at the end of the scan).
func sustains(p []float64, i, want, lookAhead int) bool {
	end := i + lookAhead
	if end > len(p) {
		end = len(p)
	}

	for j := i; j < end; j++ {
		if sign(p[j]-p[j-1]) == -want {
			return false
		}
	}

	return true
}

func initialSign(p []float64) int {
	for i := 1; i < len(p); i++ {
		if s := sign(p[i] - p[i-1]); s != 0 {
			return s
		}
	}

	return 0
}

func sign(v float64) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}
