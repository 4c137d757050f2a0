package voltammetry

import (
	"github.com/cwbudde/algo-voltammetry/cv/analyte"
	"github.com/cwbudde/algo-voltammetry/cv/baseline"
	"github.com/cwbudde/algo-voltammetry/cv/peaks"
	"github.com/cwbudde/algo-voltammetry/cv/scan"
)

// Config holds analysis parameters. Zero values fall back to defaults, so a
// partially filled Config is always usable.
type Config struct {
	MinSamples           int
	MinScanRatio         float64
	ConfidenceThreshold  float64
	BaselineWindowSize   int
	PeakProminenceFactor float64
	SmoothingWindow      int
	NoiseReduction       bool
	MergeTolerance       float64 // V
	ConflictTolerance    float64 // V
	Analyte              string
	Profiles             analyte.Table
	UnknownAnalytePolicy analyte.Policy
}

// Option mutates a Config.
type Option func(*Config)

// DefaultConfig returns sensible analysis defaults.
func DefaultConfig() Config {
	return Config{
		MinSamples:           scan.DefaultMinSamples,
		MinScanRatio:         scan.DefaultMinScanRatio,
		ConfidenceThreshold:  peaks.DefaultConfidenceThreshold,
		PeakProminenceFactor: 1,
		SmoothingWindow:      5,
		NoiseReduction:       true,
		MergeTolerance:       peaks.DefaultMergeTolerance,
		ConflictTolerance:    baseline.DefaultConflictTolerance,
		Profiles:             analyte.DefaultTable(),
		UnknownAnalytePolicy: analyte.PolicyFullRange,
	}
}

// WithAnalyte selects the analyte profile used for expected peak windows.
func WithAnalyte(name string) Option {
	return func(cfg *Config) {
		cfg.Analyte = name
	}
}

// WithProfiles replaces the analyte profile table.
func WithProfiles(table analyte.Table) Option {
	return func(cfg *Config) {
		cfg.Profiles = table
	}
}

// WithConfidenceThreshold sets the peak acceptance bar in [0, 100].
func WithConfidenceThreshold(threshold float64) Option {
	return func(cfg *Config) {
		if threshold > 0 && threshold <= 100 {
			cfg.ConfidenceThreshold = threshold
		}
	}
}

// WithBaselineWindowSize sets the initial baseline sliding-window size in
// samples.
func WithBaselineWindowSize(size int) Option {
	return func(cfg *Config) {
		if size >= 3 {
			cfg.BaselineWindowSize = size
		}
	}
}

// WithPeakProminenceFactor scales the SNR-derived prominence threshold.
func WithPeakProminenceFactor(factor float64) Option {
	return func(cfg *Config) {
		if factor > 0 {
			cfg.PeakProminenceFactor = factor
		}
	}
}

// WithSmoothingWindow sets the odd Savitzky-Golay window applied during
// preprocessing when noise reduction is enabled.
func WithSmoothingWindow(window int) Option {
	return func(cfg *Config) {
		if window >= 3 {
			cfg.SmoothingWindow = window
		}
	}
}

// WithNoiseReduction toggles preprocessing noise reduction.
func WithNoiseReduction(enabled bool) Option {
	return func(cfg *Config) {
		cfg.NoiseReduction = enabled
	}
}

// WithMinScanRatio sets the minimum fraction of samples kept per sweep half.
func WithMinScanRatio(ratio float64) Option {
	return func(cfg *Config) {
		if ratio > 0 && ratio < 0.5 {
			cfg.MinScanRatio = ratio
		}
	}
}

// WithMinSamples sets the minimum usable sample count.
func WithMinSamples(minSamples int) Option {
	return func(cfg *Config) {
		if minSamples > 0 {
			cfg.MinSamples = minSamples
		}
	}
}

// WithMergeTolerance sets the candidate merge distance in volts.
func WithMergeTolerance(toleranceV float64) Option {
	return func(cfg *Config) {
		if toleranceV > 0 {
			cfg.MergeTolerance = toleranceV
		}
	}
}

// WithUnknownAnalytePolicy selects how peak search behaves without a
// matching analyte profile.
func WithUnknownAnalytePolicy(policy analyte.Policy) Option {
	return func(cfg *Config) {
		cfg.UnknownAnalytePolicy = policy
	}
}

// ApplyOptions applies zero or more options to the default config.
func ApplyOptions(opts ...Option) Config {
	cfg := DefaultConfig()

	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	return cfg
}

func normalizeConfig(cfg Config) Config {
	def := DefaultConfig()

	if cfg.MinSamples <= 0 {
		cfg.MinSamples = def.MinSamples
	}

	if cfg.MinScanRatio <= 0 || cfg.MinScanRatio >= 0.5 {
		cfg.MinScanRatio = def.MinScanRatio
	}

	if cfg.ConfidenceThreshold <= 0 || cfg.ConfidenceThreshold > 100 {
		cfg.ConfidenceThreshold = def.ConfidenceThreshold
	}

	if cfg.PeakProminenceFactor <= 0 {
		cfg.PeakProminenceFactor = def.PeakProminenceFactor
	}

	if cfg.SmoothingWindow < 3 {
		cfg.SmoothingWindow = def.SmoothingWindow
	}

	if cfg.MergeTolerance <= 0 {
		cfg.MergeTolerance = def.MergeTolerance
	}

	if cfg.ConflictTolerance <= 0 {
		cfg.ConflictTolerance = def.ConflictTolerance
	}

	if cfg.Profiles.Len() == 0 {
		cfg.Profiles = def.Profiles
	}

	return cfg
}
