// Package baseline finds the best stable, peak-free linear segment in each
// sweep half and synthesizes a full-length non-faradaic baseline from the
// winners. The per-half search is an explicit state machine: a strict pass,
// a relaxed early/late pass, a narrow fallback fit, and finally a degraded
// terminal state. "No baseline" is a legitimate outcome, not an error.
package baseline

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/cwbudde/algo-voltammetry/cv/core"
	"github.com/cwbudde/algo-voltammetry/cv/scan"
	"github.com/cwbudde/algo-voltammetry/stats/robust"
)

// Status is the terminal state of one half's baseline search.
type Status int

const (
	// StatusFound means the strict search produced a qualifying segment.
	StatusFound Status = iota

	// StatusRelaxed means only the relaxed early/late search qualified.
	StatusRelaxed

	// StatusFallback means the narrow fixed-range fallback fit was used.
	StatusFallback

	// StatusDegraded means no qualifying segment exists; the baseline is
	// left unset over this half.
	StatusDegraded
)

// String returns the status name.
func (st Status) String() string {
	switch st {
	case StatusFound:
		return "found"
	case StatusRelaxed:
		return "relaxed"
	case StatusFallback:
		return "fallback"
	default:
		return "degraded"
	}
}

// Degraded reports whether the half produced no baseline.
func (st Status) Degraded() bool {
	return st == StatusDegraded
}

// Segment is a winning linear baseline segment within one half.
// Start and End are absolute scan indices, [Start, End).
type Segment struct {
	Half        scan.Half
	Start       int
	End         int
	Slope       float64
	Intercept   float64
	R2          float64
	ResidualStd float64
	Stability   float64
	Score       float64
}

// Len returns the segment length in samples.
func (g Segment) Len() int {
	return g.End - g.Start
}

// Eval returns the segment line evaluated at the given potential.
func (g Segment) Eval(potential float64) float64 {
	return g.Slope*potential + g.Intercept
}

// HalfBaseline pairs a search outcome with its winning segment (nil when
// degraded).
type HalfBaseline struct {
	Status  Status
	Segment *Segment
}

// Config parameterizes segment search and synthesis.
type Config struct {
	WindowSize         int     // initial sliding window; 0 derives from the half length
	SkipFraction       float64 // fraction of the half skipped at its start (rapid-change region)
	MaxSegmentFraction float64 // segment length cap as a fraction of the half
	ForwardMaxFraction float64 // forward-specific length cap
	RelaxedCapFraction float64 // shorter cap for the relaxed pass
	StrictR2           float64 // R² bar for the strict pass
	ExtendR2           float64 // R² floor during extension and relaxed/fallback passes
	MaxSlope           float64 // absolute slope ceiling; 0 derives from signal scale
	NoiseLevel         float64 // noise estimate used as a tolerance floor; 0 disables the floor
	RangeFraction      float64 // stability: window current range vs total range
	StdFraction        float64 // stability: window current std-dev vs total range
	ExclusionFraction  float64 // peak exclusion half-width as a fraction of scan length
	FadeFraction       float64 // turn-point fade buffer as a fraction of the half
}

// DefaultConfig returns sensible baseline defaults.
func DefaultConfig() Config {
	return Config{
		SkipFraction:       0.40,
		MaxSegmentFraction: 0.35,
		ForwardMaxFraction: 0.40,
		RelaxedCapFraction: 0.20,
		StrictR2:           0.95,
		ExtendR2:           0.90,
		RangeFraction:      0.05,
		StdFraction:        0.02,
		ExclusionFraction:  0.05,
		FadeFraction:       0.05,
	}
}

func normalizeConfig(cfg Config, half scan.Half) Config {
	def := DefaultConfig()

	if cfg.SkipFraction <= 0 || cfg.SkipFraction >= 1 {
		cfg.SkipFraction = def.SkipFraction
	}

	if cfg.MaxSegmentFraction <= 0 || cfg.MaxSegmentFraction > 1 {
		cfg.MaxSegmentFraction = def.MaxSegmentFraction
	}

	if cfg.ForwardMaxFraction <= 0 || cfg.ForwardMaxFraction > 1 {
		cfg.ForwardMaxFraction = def.ForwardMaxFraction
	}

	if cfg.RelaxedCapFraction <= 0 || cfg.RelaxedCapFraction > 1 {
		cfg.RelaxedCapFraction = def.RelaxedCapFraction
	}

	if cfg.StrictR2 <= 0 || cfg.StrictR2 > 1 {
		cfg.StrictR2 = def.StrictR2
	}

	if cfg.ExtendR2 <= 0 || cfg.ExtendR2 > 1 {
		cfg.ExtendR2 = def.ExtendR2
	}

	if cfg.RangeFraction <= 0 {
		cfg.RangeFraction = def.RangeFraction
	}

	if cfg.StdFraction <= 0 {
		cfg.StdFraction = def.StdFraction
	}

	if cfg.ExclusionFraction <= 0 {
		cfg.ExclusionFraction = def.ExclusionFraction
	}

	if cfg.FadeFraction <= 0 {
		cfg.FadeFraction = def.FadeFraction
	}

	if cfg.WindowSize < 3 {
		cfg.WindowSize = half.Len() / 10
		if cfg.WindowSize < 5 {
			cfg.WindowSize = 5
		}
	}

	return cfg
}

// lineFit is a least-squares line with its quality figures. R² is near zero
// for trendless data even when the fit is excellent, so the residual std-dev
// travels with it; qualification checks consider both.
type lineFit struct {
	Slope       float64
	Intercept   float64
	R2          float64
	ResidualStd float64
}

// fitLine fits y = slope*x + intercept. A window with zero current range is
// a perfect flat baseline, so its R² is 1 even though the regression is
// degenerate. A degenerate potential range yields ok = false.
func fitLine(x, y []float64) (lineFit, bool) {
	if len(x) < 2 || len(x) != len(y) {
		return lineFit{}, false
	}

	if robust.Range(x) == 0 {
		return lineFit{}, false
	}

	intercept, slope := stat.LinearRegression(x, y, nil, false)
	if !core.IsFinite(slope) || !core.IsFinite(intercept) {
		return lineFit{}, false
	}

	fit := lineFit{Slope: slope, Intercept: intercept}

	var ssRes float64
	for i := range x {
		d := y[i] - (slope*x[i] + intercept)
		ssRes += d * d
	}

	fit.ResidualStd = math.Sqrt(ssRes / float64(len(x)))

	if robust.Range(y) == 0 {
		fit.R2 = 1
		return fit, true
	}

	fit.R2 = stat.RSquared(x, y, nil, intercept, slope)
	if math.IsNaN(fit.R2) {
		return lineFit{}, false
	}

	return fit, true
}
