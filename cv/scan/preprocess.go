package scan

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-voltammetry/cv/core"
	"github.com/cwbudde/algo-voltammetry/cv/smooth"
	"github.com/cwbudde/algo-voltammetry/stats/robust"
)

const (
	defaultOutlierCutoff   = 3.5
	defaultSmoothingWindow = 5
)

// PreprocessConfig controls scan cleanup ahead of segmentation.
type PreprocessConfig struct {
	MinSamples      int
	OutlierCutoff   float64 // robust z-score magnitude above which a sample is dropped
	SmoothingWindow int     // odd Savitzky-Golay window, used when NoiseReduction is set
	NoiseReduction  bool
}

// DefaultPreprocessConfig returns sensible preprocessing defaults.
func DefaultPreprocessConfig() PreprocessConfig {
	return PreprocessConfig{
		MinSamples:      DefaultMinSamples,
		OutlierCutoff:   defaultOutlierCutoff,
		SmoothingWindow: defaultSmoothingWindow,
		NoiseReduction:  true,
	}
}

func normalizePreprocessConfig(cfg PreprocessConfig) PreprocessConfig {
	if cfg.MinSamples <= 0 {
		cfg.MinSamples = DefaultMinSamples
	}

	if cfg.OutlierCutoff <= 0 {
		cfg.OutlierCutoff = defaultOutlierCutoff
	}

	if cfg.SmoothingWindow < 3 {
		cfg.SmoothingWindow = defaultSmoothingWindow
	}

	if cfg.SmoothingWindow%2 == 0 {
		cfg.SmoothingWindow++
	}

	return cfg
}

// Preprocess cleans a scan: drops non-finite sample pairs, rejects current
// outliers via MAD-based robust z-scores, and optionally smooths the current
// with a local-polynomial filter. The potential sequence is never smoothed.
//
// Outlier rejection is skipped entirely when it would leave fewer than the
// minimum usable samples. A failed smoothing step leaves the current
// unsmoothed rather than failing the scan.
func Preprocess(s Scan, cfg PreprocessConfig) (Scan, error) {
	cfg = normalizePreprocessConfig(cfg)

	if err := s.Validate(1); err != nil {
		return Scan{}, err
	}

	out := s
	out.Potential = make([]float64, 0, len(s.Potential))
	out.Current = make([]float64, 0, len(s.Current))

	for i := range s.Potential {
		if core.IsFinite(s.Potential[i]) && core.IsFinite(s.Current[i]) {
			out.Potential = append(out.Potential, s.Potential[i])
			out.Current = append(out.Current, s.Current[i])
		}
	}

	if len(out.Potential) < cfg.MinSamples {
		return Scan{}, fmt.Errorf("%w: %d finite of %d required",
			ErrInsufficientData, len(out.Potential), cfg.MinSamples)
	}

	out = rejectOutliers(out, cfg)

	if cfg.NoiseReduction && len(out.Current) >= cfg.SmoothingWindow {
		if smoothed, err := smooth.SavitzkyGolay(out.Current, cfg.SmoothingWindow); err == nil {
			out.Current = smoothed
		}
	}

	return out, nil
}

// rejectOutliers drops isolated spikes only. A genuine peak apex also scores
// far from the flat majority, but its neighbors do too; a spike's neighbors
// do not, so only single-sample excursions are removed.
func rejectOutliers(s Scan, cfg PreprocessConfig) Scan {
	scores := robust.ZScores(s.Current)

	isolated := func(i int) bool {
		if math.Abs(scores[i]) <= cfg.OutlierCutoff {
			return false
		}

		if i > 0 && math.Abs(scores[i-1]) > cfg.OutlierCutoff {
			return false
		}

		if i < len(scores)-1 && math.Abs(scores[i+1]) > cfg.OutlierCutoff {
			return false
		}

		return true
	}

	kept := 0
	for i := range scores {
		if !isolated(i) {
			kept++
		}
	}

	// Dropping below the minimum would trade a few spikes for a dead scan.
	if kept < cfg.MinSamples {
		return s
	}

	if kept == len(s.Current) {
		return s
	}

	out := s
	out.Potential = make([]float64, 0, kept)
	out.Current = make([]float64, 0, kept)

	for i := range scores {
		if !isolated(i) {
			out.Potential = append(out.Potential, s.Potential[i])
			out.Current = append(out.Current, s.Current[i])
		}
	}

	return out
}
