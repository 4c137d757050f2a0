// Package scan defines the cyclic-voltammetry scan data model and the first
// two pipeline stages: preprocessing (non-finite removal, robust outlier
// rejection, optional smoothing) and sweep segmentation (turning-point
// search splitting the scan into forward and reverse halves).
package scan

import (
	"errors"
	"fmt"

	"github.com/cwbudde/algo-voltammetry/cv/core"
)

var (
	// ErrLengthMismatch is returned when potential and current differ in length.
	ErrLengthMismatch = errors.New("scan: potential and current length mismatch")

	// ErrInsufficientData is returned when fewer usable samples remain than
	// the configured minimum.
	ErrInsufficientData = errors.New("scan: insufficient usable samples")
)

// DefaultMinSamples is the minimum usable sample count for analysis.
const DefaultMinSamples = 12

// Scan is one cyclic-voltammetry measurement: paired potential (V) and
// current sequences plus acquisition identity. Input sequences are not
// required to be monotonic.
type Scan struct {
	Potential  []float64
	Current    []float64
	SampleID   string
	Instrument string
	ScanRate   float64 // nominal, V/s
}

// Len returns the number of samples in the scan.
func (s Scan) Len() int {
	return len(s.Potential)
}

// Validate checks structural invariants: equal sequence lengths and at
// least minSamples points. A non-positive minSamples uses DefaultMinSamples.
func (s Scan) Validate(minSamples int) error {
	if len(s.Potential) != len(s.Current) {
		return fmt.Errorf("%w: %d vs %d", ErrLengthMismatch, len(s.Potential), len(s.Current))
	}

	if minSamples <= 0 {
		minSamples = DefaultMinSamples
	}

	if len(s.Potential) < minSamples {
		return fmt.Errorf("%w: %d < %d", ErrInsufficientData, len(s.Potential), minSamples)
	}

	return nil
}

// Clone returns a deep copy of the scan.
func (s Scan) Clone() Scan {
	out := s
	out.Potential = append([]float64(nil), s.Potential...)
	out.Current = append([]float64(nil), s.Current...)

	return out
}

// Direction tags a sweep half.
type Direction int

const (
	// Forward is the half before the turning point.
	Forward Direction = iota

	// Reverse is the half after the turning point.
	Reverse
)

// String returns the direction name.
func (d Direction) String() string {
	if d == Reverse {
		return "reverse"
	}

	return "forward"
}

// Half is an immutable index range [Start, End) tagged with its sweep
// direction, produced once by segmentation.
type Half struct {
	Start     int
	End       int
	Direction Direction
}

// Len returns the number of samples in the half.
func (h Half) Len() int {
	return h.End - h.Start
}

// Contains reports whether index i lies inside the half.
func (h Half) Contains(i int) bool {
	return i >= h.Start && i < h.End
}

// Potential returns the half's view of the scan potential.
func (h Half) Potential(s Scan) []float64 {
	return s.Potential[h.Start:h.End]
}

// Current returns the half's view of the scan current.
func (h Half) Current(s Scan) []float64 {
	return s.Current[h.Start:h.End]
}

// PotentialSpan returns the min and max potential within the half.
func (h Half) PotentialSpan(s Scan) (lo, hi float64) {
	if h.Len() == 0 {
		return 0, 0
	}

	p := h.Potential(s)
	lo, hi = p[0], p[0]

	for _, v := range p[1:] {
		if v < lo {
			lo = v
		}

		if v > hi {
			hi = v
		}
	}

	return lo, hi
}

// Segmentation is the result of splitting a scan at its turning point.
type Segmentation struct {
	Turn    int
	Forward Half
	Reverse Half
}

// Halves returns both halves in forward, reverse order.
func (g Segmentation) Halves() [2]Half {
	return [2]Half{g.Forward, g.Reverse}
}

// HalfAt returns the half containing index i. Indices beyond the scan end
// map to the reverse half.
func (g Segmentation) HalfAt(i int) Half {
	if i < g.Turn {
		return g.Forward
	}

	return g.Reverse
}

func clampTurn(turn, n int, minRatio float64) int {
	if minRatio <= 0 || minRatio >= 0.5 {
		minRatio = DefaultMinScanRatio
	}

	minLen := int(minRatio * float64(n))
	if minLen < 1 {
		minLen = 1
	}

	return core.ClampInt(turn, minLen, n-minLen)
}
