package baseline

import (
	"math"

	"github.com/cwbudde/algo-voltammetry/cv/peaks"
	"github.com/cwbudde/algo-voltammetry/cv/scan"
)

// DefaultConflictTolerance is the potential distance in volts within which a
// baseline-segment sample counts as overlapping a peak.
const DefaultConflictTolerance = 0.020

// highSeverityCount is the overlap sample count above which a conflict is
// considered high severity.
const highSeverityCount = 3

// Severity grades a baseline/peak conflict.
type Severity int

const (
	// SeverityLow marks a marginal overlap.
	SeverityLow Severity = iota

	// SeverityHigh marks a baseline segment substantially inside a peak.
	SeverityHigh
)

// String returns the severity name.
func (sv Severity) String() string {
	if sv == SeverityHigh {
		return "high"
	}

	return "low"
}

// Conflict reports baseline-segment samples inside an accepted peak's
// potential window. It is diagnostic only and never mutates the baseline.
type Conflict struct {
	Peak     peaks.ValidatedPeak
	Overlap  int
	Severity Severity
}

// DetectConflicts counts, per accepted peak, the winning-segment samples
// whose potential lies within toleranceV of the peak potential. Any nonzero
// count is a conflict; more than highSeverityCount overlapping samples makes
// it high severity.
func DetectConflicts(s scan.Scan, b Baseline, accepted []peaks.ValidatedPeak, toleranceV float64) []Conflict {
	if toleranceV <= 0 {
		toleranceV = DefaultConflictTolerance
	}

	segments := make([]*Segment, 0, 2)
	if b.Forward.Segment != nil {
		segments = append(segments, b.Forward.Segment)
	}

	if b.Reverse.Segment != nil {
		segments = append(segments, b.Reverse.Segment)
	}

	var conflicts []Conflict

	for _, p := range accepted {
		overlap := 0

		for _, seg := range segments {
			for i := seg.Start; i < seg.End; i++ {
				// The slack keeps samples exactly at the tolerance from
				// dropping out to float rounding.
				if math.Abs(s.Potential[i]-p.Potential) <= toleranceV+1e-12 {
					overlap++
				}
			}
		}

		if overlap == 0 {
			continue
		}

		severity := SeverityLow
		if overlap > highSeverityCount {
			severity = SeverityHigh
		}

		conflicts = append(conflicts, Conflict{Peak: p, Overlap: overlap, Severity: severity})
	}

	return conflicts
}
