package voltammetry

import (
	"github.com/cwbudde/algo-voltammetry/cv/analyte"
	"github.com/cwbudde/algo-voltammetry/cv/baseline"
	"github.com/cwbudde/algo-voltammetry/cv/features"
	"github.com/cwbudde/algo-voltammetry/cv/peaks"
	"github.com/cwbudde/algo-voltammetry/cv/scan"
)

// Result holds one scan analysis. All fields refer to the preprocessed scan
// in Scan; in particular the baseline has exactly that scan's length.
type Result struct {
	Scan         scan.Scan
	Segmentation scan.Segmentation
	Thresholds   peaks.Thresholds

	// Peaks are the accepted peaks; Rejected keeps the failed candidates
	// with their rejection reasons as diagnostics.
	Peaks    []peaks.ValidatedPeak
	Rejected []peaks.ValidatedPeak

	Baseline  baseline.Baseline
	Conflicts []baseline.Conflict
	Features  features.Vector
}

// HasPeaks reports whether any peak was accepted. A false value is the
// expected outcome for blank and dilute scans, not a failure.
func (r Result) HasPeaks() bool {
	return len(r.Peaks) > 0
}

// DegradedHalves returns the sweep directions whose baseline search found
// no qualifying segment.
func (r Result) DegradedHalves() []scan.Direction {
	return r.Baseline.DegradedHalves()
}

// Analyzer runs the peak-and-baseline extraction pipeline. It is read-only
// after construction and safe for concurrent use.
type Analyzer struct {
	cfg Config
}

// NewAnalyzer creates an analyzer from the default config plus options.
func NewAnalyzer(opts ...Option) *Analyzer {
	return &Analyzer{cfg: normalizeConfig(ApplyOptions(opts...))}
}

// NewAnalyzerFromConfig creates an analyzer from an explicit config.
func NewAnalyzerFromConfig(cfg Config) *Analyzer {
	return &Analyzer{cfg: normalizeConfig(cfg)}
}

// Config returns the analyzer's effective configuration.
func (a *Analyzer) Config() Config {
	return a.cfg
}

// Analyze is a one-shot analysis with default configuration plus options.
func Analyze(potential, current []float64, opts ...Option) (Result, error) {
	return NewAnalyzer(opts...).Analyze(potential, current)
}

// Analyze runs the pipeline over raw potential/current sequences.
func (a *Analyzer) Analyze(potential, current []float64) (Result, error) {
	return a.AnalyzeScan(scan.Scan{Potential: potential, Current: current})
}

// AnalyzeScan runs the pipeline over a scan record. The only errors are
// malformed input (mismatched lengths) and too few usable samples; every
// later stage degrades to an explicit empty state instead of failing.
func (a *Analyzer) AnalyzeScan(s scan.Scan) (Result, error) {
	cfg := a.cfg

	if err := s.Validate(cfg.MinSamples); err != nil {
		return Result{}, err
	}

	cleaned, err := scan.Preprocess(s, scan.PreprocessConfig{
		MinSamples:      cfg.MinSamples,
		SmoothingWindow: cfg.SmoothingWindow,
		NoiseReduction:  cfg.NoiseReduction,
	})
	if err != nil {
		return Result{}, err
	}

	segCfg := scan.DefaultSegmentConfig()
	segCfg.MinScanRatio = cfg.MinScanRatio
	seg := scan.Segment(cleaned, segCfg)

	th := peaks.Derive(cleaned.Current, peaks.ThresholdConfig{
		ProminenceFactor: cfg.PeakProminenceFactor,
		SpectralNoise:    true,
	})

	profile := a.profile()

	pool := peaks.GenerateAll(cleaned, th,
		peaks.ExtremumStrategy{},
		peaks.DerivativeStrategy{},
		peaks.RegionStrategy{Profile: profile, Segmentation: seg},
	)

	merged := peaks.Merge(pool, cfg.MergeTolerance)

	accepted, rejected := peaks.Validate(merged, cleaned.Current, th, peaks.ValidatorConfig{
		ConfidenceThreshold: cfg.ConfidenceThreshold,
		Profile:             profile,
		Policy:              cfg.UnknownAnalytePolicy,
	})

	blCfg := baseline.DefaultConfig()
	blCfg.WindowSize = cfg.BaselineWindowSize
	blCfg.NoiseLevel = th.Noise

	forward := baseline.SearchHalf(cleaned, seg.Forward, accepted, blCfg)
	reverse := baseline.SearchHalf(cleaned, seg.Reverse, accepted, blCfg)
	bl := baseline.Synthesize(cleaned, seg, forward, reverse, blCfg)

	conflicts := baseline.DetectConflicts(cleaned, bl, accepted, cfg.ConflictTolerance)

	return Result{
		Scan:         cleaned,
		Segmentation: seg,
		Thresholds:   th,
		Peaks:        accepted,
		Rejected:     rejected,
		Baseline:     bl,
		Conflicts:    conflicts,
		Features:     features.Extract(cleaned, bl, accepted, th),
	}, nil
}

// profile resolves the configured analyte, or nil when unknown. The unknown
// case is handled by the validator according to the configured policy.
func (a *Analyzer) profile() *analyte.Profile {
	if a.cfg.Analyte == "" {
		return nil
	}

	p, ok := a.cfg.Profiles.Lookup(a.cfg.Analyte)
	if !ok {
		return nil
	}

	return &p
}
