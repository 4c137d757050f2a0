package peaks

import (
	"github.com/cwbudde/algo-voltammetry/cv/analyte"
	"github.com/cwbudde/algo-voltammetry/cv/core"
	"github.com/cwbudde/algo-voltammetry/stats/robust"
)

// DefaultConfidenceThreshold accepts candidates scoring at least this
// confidence out of 100.
const DefaultConfidenceThreshold = 50.0

const (
	defaultRangeFraction = 0.05

	windowPenalty    = 0.3
	relHeightPenalty = 0.6
	minHeightPenalty = 0.4
	widthPenalty     = 0.4
	signPenalty      = 0.7
	snrPenalty       = 0.85
)

// ValidatorConfig parameterizes candidate scoring.
type ValidatorConfig struct {
	ConfidenceThreshold float64 // acceptance bar in [0, 100]
	RangeFraction       float64 // minimum height as a fraction of the current range
	Profile             *analyte.Profile
	Policy              analyte.Policy
}

// DefaultValidatorConfig returns sensible validation defaults.
func DefaultValidatorConfig() ValidatorConfig {
	return ValidatorConfig{
		ConfidenceThreshold: DefaultConfidenceThreshold,
		RangeFraction:       defaultRangeFraction,
		Policy:              analyte.PolicyFullRange,
	}
}

func normalizeValidatorConfig(cfg ValidatorConfig) ValidatorConfig {
	if cfg.ConfidenceThreshold <= 0 || cfg.ConfidenceThreshold > 100 {
		cfg.ConfidenceThreshold = DefaultConfidenceThreshold
	}

	if cfg.RangeFraction <= 0 {
		cfg.RangeFraction = defaultRangeFraction
	}

	return cfg
}

// Validate scores merged candidates against electrochemical expectations.
// Confidence starts at 100 and shrinks multiplicatively per failed check;
// a candidate is accepted iff its confidence reaches the configured
// threshold. Rejected candidates are returned separately as diagnostics.
func Validate(candidates []Candidate, current []float64, th Thresholds, cfg ValidatorConfig) (accepted, rejected []ValidatedPeak) {
	cfg = normalizeValidatorConfig(cfg)
	currentRange := robust.Range(current)

	minHeight := th.MinHeight
	if cfg.Profile != nil && cfg.Profile.MinHeight > minHeight {
		minHeight = cfg.Profile.MinHeight
	}

	for _, c := range candidates {
		vp := score(c, current, currentRange, minHeight, th, cfg)

		if vp.Accepted {
			accepted = append(accepted, vp)
		} else {
			rejected = append(rejected, vp)
		}
	}

	return accepted, rejected
}

func score(c Candidate, current []float64, currentRange, minHeight float64, th Thresholds, cfg ValidatorConfig) ValidatedPeak {
	confidence := 100.0

	var reasons []string

	height := c.Prominence

	// A candidate with no measurable height is not a peak at all. Region
	// search in particular nominates the tallest sample of its window even
	// on a perfectly flat scan.
	if height <= 0 {
		return ValidatedPeak{
			Candidate: c,
			Height:    height,
			Reasons:   []string{"no measurable prominence"},
		}
	}

	if cfg.Profile == nil && cfg.Policy == analyte.PolicyReject {
		confidence = 0

		reasons = append(reasons, "unknown analyte rejected by policy")
	}

	if cfg.Profile != nil {
		window := cfg.Profile.Oxidation
		if c.Kind == Reduction {
			window = cfg.Profile.Reduction
		}

		if !window.Contains(c.Potential) {
			confidence *= windowPenalty

			reasons = append(reasons, "potential outside expected window")
		}
	}

	if height < cfg.RangeFraction*currentRange {
		confidence *= relHeightPenalty

		reasons = append(reasons, "height small relative to current range")
	}

	if height < minHeight {
		confidence *= minHeightPenalty

		reasons = append(reasons, "height below minimum")
	}

	if w := candidateWidth(c, current, th); w >= 0 && w < th.MinWidth {
		confidence *= widthPenalty

		reasons = append(reasons, "peak narrower than minimum width")
	}

	snr := core.SafeRatio(height, th.Noise)
	if th.Noise > 0 && snr < 3 {
		factor := snrPenalty
		if snr < 2 {
			factor *= 0.5 + snr/4
		}

		confidence *= factor

		reasons = append(reasons, "low signal-to-noise ratio")
	}

	if (c.Kind == Oxidation && c.Current < 0) || (c.Kind == Reduction && c.Current > 0) {
		confidence *= signPenalty

		reasons = append(reasons, "current sign inconsistent with peak kind")
	}

	confidence = core.Clamp(confidence, 0, 100)

	return ValidatedPeak{
		Candidate:  c,
		Confidence: confidence,
		Height:     height,
		SNR:        snr,
		Accepted:   confidence >= cfg.ConfidenceThreshold,
		Reasons:    reasons,
	}
}

// candidateWidth measures the half-prominence width in the candidate's
// orientation. Returns -1 when the width bar is unset or the candidate index
// does not address the current sequence, leaving the check inert.
func candidateWidth(c Candidate, current []float64, th Thresholds) int {
	if th.MinWidth <= 0 || c.Index < 0 || c.Index >= len(current) {
		return -1
	}

	values := current
	if c.Kind == Reduction {
		values = negate(current)
	}

	return halfProminenceWidth(values, c.Index)
}
