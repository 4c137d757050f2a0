package baseline

import (
	vecmath "github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-voltammetry/cv/scan"
)

const fadeFloor = 5

// Baseline is the synthesized non-faradaic background aligned to the scan.
// Values over a degraded half are zero; check the per-half status before
// trusting them.
type Baseline struct {
	Values  []float64
	Forward HalfBaseline
	Reverse HalfBaseline
}

// DegradedHalves returns the directions whose baseline search degraded.
func (b Baseline) DegradedHalves() []scan.Direction {
	var out []scan.Direction

	if b.Forward.Status.Degraded() {
		out = append(out, scan.Forward)
	}

	if b.Reverse.Status.Degraded() {
		out = append(out, scan.Reverse)
	}

	return out
}

// Synthesize evaluates each winning segment's line over its half and blends
// the two halves across a buffer around the turning point so the baseline
// has no discontinuity there. When only one half has a segment, its edge
// fades to zero toward the unset half. The result always has the scan's
// length.
func Synthesize(s scan.Scan, seg scan.Segmentation, forward, reverse HalfBaseline, cfg Config) Baseline {
	cfg = normalizeConfig(cfg, seg.Forward)
	n := s.Len()

	values := make([]float64, n)

	evalHalf(values, s, seg.Forward, forward)
	evalHalf(values, s, seg.Reverse, reverse)

	fwdOK := forward.Segment != nil
	revOK := reverse.Segment != nil

	switch {
	case fwdOK && revOK:
		blendAtTurn(values, s, seg, *forward.Segment, *reverse.Segment, cfg)
	case fwdOK:
		fadeToZero(values, seg.Forward, seg.Turn, cfg, true)
	case revOK:
		fadeToZero(values, seg.Reverse, seg.Turn, cfg, false)
	}

	return Baseline{Values: values, Forward: forward, Reverse: reverse}
}

func evalHalf(values []float64, s scan.Scan, h scan.Half, hb HalfBaseline) {
	if hb.Segment == nil {
		return
	}

	for i := h.Start; i < h.End; i++ {
		values[i] = hb.Segment.Eval(s.Potential[i])
	}
}

// blendAtTurn crossfades the forward and reverse lines over the fade buffer
// on both sides of the turn.
func blendAtTurn(values []float64, s scan.Scan, seg scan.Segmentation, fwd, rev Segment, cfg Config) {
	buffer := fadeLen(seg.Forward.Len(), cfg)

	lo := seg.Turn - buffer
	if lo < 0 {
		lo = 0
	}

	hi := seg.Turn + buffer
	if hi > s.Len() {
		hi = s.Len()
	}

	if hi <= lo {
		return
	}

	span := float64(hi - lo)
	for i := lo; i < hi; i++ {
		t := (float64(i-lo) + 0.5) / span
		values[i] = (1-t)*fwd.Eval(s.Potential[i]) + t*rev.Eval(s.Potential[i])
	}
}

// fadeToZero scales the buffer adjacent to the turn down to zero, avoiding a
// step against the unset half.
func fadeToZero(values []float64, h scan.Half, turn int, cfg Config, forward bool) {
	buffer := fadeLen(h.Len(), cfg)
	if buffer > h.Len() {
		buffer = h.Len()
	}

	if buffer < 1 {
		return
	}

	fade := make([]float64, buffer)

	if forward {
		// Samples [turn-buffer, turn) taper toward the turn.
		for i := range fade {
			fade[i] = float64(buffer-i) / float64(buffer+1)
		}

		vecmath.MulBlockInPlace(values[turn-buffer:turn], fade)

		return
	}

	// Samples [turn, turn+buffer) ramp up away from the turn.
	for i := range fade {
		fade[i] = float64(i+1) / float64(buffer+1)
	}

	vecmath.MulBlockInPlace(values[turn:turn+buffer], fade)
}

func fadeLen(halfLen int, cfg Config) int {
	buffer := int(cfg.FadeFraction * float64(halfLen))
	if buffer < fadeFloor {
		buffer = fadeFloor
	}

	return buffer
}
