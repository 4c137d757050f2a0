package baseline

import (
	"math"

	"github.com/cwbudde/algo-voltammetry/cv/peaks"
	"github.com/cwbudde/algo-voltammetry/cv/scan"
	"github.com/cwbudde/algo-voltammetry/stats/robust"
)

const (
	exclusionFloor  = 3
	relaxedEdgeFrac = 0.25
	prefSpanFrac    = 0.30
	prefBonus       = 1.2

	// Noise floors for the stability tolerances. On blank scans the total
	// current range is itself just noise, so fractions of it reject every
	// window; the floors keep flat-but-noisy regions eligible.
	rangeNoiseFloor = 5.0
	stdNoiseFloor   = 1.5
	slopeNoiseFloor = 5.0
)

// fallback fit ranges as fractions into the half.
const (
	forwardFallbackLo = 0.40
	forwardFallbackHi = 0.60
	reverseFallbackLo = 0.80
	reverseFallbackHi = 0.95
)

type searchState int

const (
	stateSearching searchState = iota
	stateStrictFound
	stateRelaxedFound
	stateFallbackFound
	stateDegraded
)

// searcher carries the per-half search context so each pass stays small.
type searcher struct {
	scan       scan.Scan
	half       scan.Half
	cfg        Config
	exclusions [][2]int
	totalRange float64
	slopeCeil  float64
	rangeTol   float64
	stdTol     float64
	pmin       float64
	pmax       float64
}

// SearchHalf runs the segment search state machine for one half: strict
// sliding-window pass, relaxed early/late pass, narrow fallback fit, then
// degraded. Validated-peak exclusion zones are never entered.
func SearchHalf(s scan.Scan, h scan.Half, accepted []peaks.ValidatedPeak, cfg Config) HalfBaseline {
	cfg = normalizeConfig(cfg, h)

	if h.Len() < cfg.WindowSize {
		return HalfBaseline{Status: StatusDegraded}
	}

	sr := newSearcher(s, h, accepted, cfg)

	state := stateSearching

	var best *Segment

	if seg := sr.strictPass(); seg != nil && sr.qualifies(seg, cfg.StrictR2) {
		state, best = stateStrictFound, seg
	}

	if state == stateSearching {
		if seg := sr.relaxedPass(); seg != nil && sr.qualifies(seg, cfg.ExtendR2) {
			state, best = stateRelaxedFound, seg
		}
	}

	if state == stateSearching {
		if seg := sr.fallbackFit(); seg != nil {
			state, best = stateFallbackFound, seg
		}
	}

	if state == stateSearching {
		state = stateDegraded
	}

	switch state {
	case stateStrictFound:
		return HalfBaseline{Status: StatusFound, Segment: best}
	case stateRelaxedFound:
		return HalfBaseline{Status: StatusRelaxed, Segment: best}
	case stateFallbackFound:
		return HalfBaseline{Status: StatusFallback, Segment: best}
	default:
		return HalfBaseline{Status: StatusDegraded}
	}
}

func newSearcher(s scan.Scan, h scan.Half, accepted []peaks.ValidatedPeak, cfg Config) *searcher {
	n := s.Len()

	zone := int(cfg.ExclusionFraction * float64(n))
	if zone < exclusionFloor {
		zone = exclusionFloor
	}

	exclusions := make([][2]int, 0, len(accepted))
	for _, p := range accepted {
		exclusions = append(exclusions, [2]int{p.Index - zone, p.Index + zone + 1})
	}

	totalRange := robust.Range(s.Current)
	pmin, pmax := potentialSpan(s.Potential)
	noise := cfg.NoiseLevel

	slopeCeil := cfg.MaxSlope
	if slopeCeil <= 0 && pmax > pmin {
		slopeCeil = math.Max(0.2*totalRange, slopeNoiseFloor*noise) / (pmax - pmin)
	}

	return &searcher{
		scan:       s,
		half:       h,
		cfg:        cfg,
		exclusions: exclusions,
		totalRange: totalRange,
		slopeCeil:  slopeCeil,
		rangeTol:   math.Max(cfg.RangeFraction*totalRange, rangeNoiseFloor*noise),
		stdTol:     math.Max(cfg.StdFraction*totalRange, stdNoiseFloor*noise),
		pmin:       pmin,
		pmax:       pmax,
	}
}

// qualifies reports whether a segment clears the given R² bar. A segment
// whose residuals sit within the noise-floored tolerance is linear for all
// practical purposes even when R² is low, which is always the case on
// trendless data.
func (sr *searcher) qualifies(seg *Segment, r2Bar float64) bool {
	return seg.R2 >= r2Bar || seg.ResidualStd <= sr.stdTol
}

// strictPass slides a window over the half, skipping the rapid-change region
// at its start, extending stable windows greedily, and keeping the best
// scored segment.
func (sr *searcher) strictPass() *Segment {
	h := sr.half
	w := sr.cfg.WindowSize

	startMin := h.Start + int(sr.cfg.SkipFraction*float64(h.Len()))

	return sr.bestSegment(startMin, h.End-w, sr.maxSegmentLen())
}

// relaxedPass retries with windows anchored near the edges of the half and a
// shorter length cap, without the rapid-change skip.
func (sr *searcher) relaxedPass() *Segment {
	h := sr.half
	w := sr.cfg.WindowSize

	edge := int(relaxedEdgeFrac * float64(h.Len()))

	lengthCap := int(sr.cfg.RelaxedCapFraction * float64(h.Len()))
	if lengthCap < w {
		lengthCap = w
	}

	early := sr.bestSegment(h.Start, h.Start+edge, lengthCap)
	late := sr.bestSegment(h.End-edge-w, h.End-w, lengthCap)

	switch {
	case early == nil:
		return late
	case late == nil:
		return early
	case late.Score > early.Score:
		return late
	default:
		return early
	}
}

// fallbackFit tries one narrow, independently validated fit in a fixed
// region of the half.
func (sr *searcher) fallbackFit() *Segment {
	h := sr.half

	lo, hi := forwardFallbackLo, forwardFallbackHi
	if h.Direction == scan.Reverse {
		lo, hi = reverseFallbackLo, reverseFallbackHi
	}

	start := h.Start + int(lo*float64(h.Len()))
	end := h.Start + int(hi*float64(h.Len()))

	if end-start < 3 {
		return nil
	}

	if sr.overlapsExclusion(start, end) {
		return nil
	}

	fit, ok := sr.fitRange(start, end)
	if !ok || !sr.slopeOK(fit.Slope) {
		return nil
	}

	seg := sr.makeSegment(start, end, fit)
	if !sr.qualifies(&seg, sr.cfg.ExtendR2) {
		return nil
	}

	return &seg
}

// bestSegment scans window start positions in [startLo, startHi], extends
// each stable window, and returns the highest-scoring segment within the
// length cap.
func (sr *searcher) bestSegment(startLo, startHi, maxLen int) *Segment {
	h := sr.half
	w := sr.cfg.WindowSize

	if startLo < h.Start {
		startLo = h.Start
	}

	if startHi > h.End-w {
		startHi = h.End - w
	}

	if h.Direction == scan.Forward {
		if fwdCap := int(sr.cfg.ForwardMaxFraction * float64(h.Len())); fwdCap < maxLen {
			maxLen = fwdCap
		}
	}

	if maxLen < w {
		maxLen = w
	}

	var best *Segment

	for start := startLo; start <= startHi; start++ {
		end := start + w

		if sr.overlapsExclusion(start, end) {
			continue
		}

		fit, ok := sr.fitRange(start, end)
		if !ok || !sr.stable(start, end, fit.Slope) {
			continue
		}

		end = sr.extend(start, end, start+maxLen)

		fit, ok = sr.fitRange(start, end)
		if !ok || !sr.slopeOK(fit.Slope) {
			continue
		}

		seg := sr.makeSegment(start, end, fit)

		if best == nil || seg.Score > best.Score {
			best = &seg
		}
	}

	return best
}

// extend grows the window to the right while the fit stays linear, the slope
// stays bounded, and no exclusion zone or length cap is hit.
func (sr *searcher) extend(start, end, maxEnd int) int {
	if maxEnd > sr.half.End {
		maxEnd = sr.half.End
	}

	for end < maxEnd {
		if sr.inExclusion(end) {
			break
		}

		fit, ok := sr.fitRange(start, end+1)
		if !ok || !sr.slopeOK(fit.Slope) {
			break
		}

		if fit.R2 < sr.cfg.ExtendR2 && fit.ResidualStd > sr.stdTol {
			break
		}

		end++
	}

	return end
}

func (sr *searcher) fitRange(start, end int) (lineFit, bool) {
	return fitLine(sr.scan.Potential[start:end], sr.scan.Current[start:end])
}

// stable applies the initial window stability test: current range and
// std-dev small against the noise-floored tolerances, and a bounded slope.
func (sr *searcher) stable(start, end int, slope float64) bool {
	window := sr.scan.Current[start:end]

	if robust.Range(window) > sr.rangeTol {
		return false
	}

	if robust.StdDev(window) > sr.stdTol {
		return false
	}

	return sr.slopeOK(slope)
}

func (sr *searcher) slopeOK(slope float64) bool {
	return math.Abs(slope) <= sr.slopeCeil
}

func (sr *searcher) maxSegmentLen() int {
	return int(sr.cfg.MaxSegmentFraction * float64(sr.half.Len()))
}

func (sr *searcher) overlapsExclusion(start, end int) bool {
	for _, z := range sr.exclusions {
		if start < z[1] && end > z[0] {
			return true
		}
	}

	return false
}

func (sr *searcher) inExclusion(i int) bool {
	for _, z := range sr.exclusions {
		if i >= z[0] && i < z[1] {
			return true
		}
	}

	return false
}

func (sr *searcher) makeSegment(start, end int, fit lineFit) Segment {
	stability := 1.0
	if sr.stdTol > 0 {
		stability = 1 / (1 + fit.ResidualStd/sr.stdTol)
	}

	seg := Segment{
		Half:        sr.half,
		Start:       start,
		End:         end,
		Slope:       fit.Slope,
		Intercept:   fit.Intercept,
		R2:          fit.R2,
		ResidualStd: fit.ResidualStd,
		Stability:   stability,
	}
	seg.Score = sr.score(seg)

	return seg
}

// score combines stability, flatness, fit quality, a length bonus, and the
// per-direction voltage-range preference.
func (sr *searcher) score(seg Segment) float64 {
	flatness := 1.0
	if sr.slopeCeil > 0 {
		flatness = 1 / (1 + math.Abs(seg.Slope)/sr.slopeCeil)
	} else if seg.Slope != 0 {
		flatness = 0.5
	}

	quality := seg.R2
	if fromResiduals := 1 - seg.ResidualStd/math.Max(sr.stdTol, 1e-30); fromResiduals > quality {
		quality = fromResiduals
	}

	if quality < 0 {
		quality = 0
	}

	quarter := 0.25 * float64(seg.Half.Len())

	lengthBonus := 1.0
	if quarter > 0 {
		frac := float64(seg.Len()) / quarter
		if frac > 1 {
			frac = 1
		}

		lengthBonus += 0.5 * frac
	}

	return seg.Stability * flatness * quality * lengthBonus * sr.voltagePreference(seg)
}

// voltagePreference favors segments in the early part of the potential span
// for the forward half and the late part for the reverse half.
func (sr *searcher) voltagePreference(seg Segment) float64 {
	span := sr.pmax - sr.pmin
	if span <= 0 {
		return 1
	}

	mean := robust.Mean(sr.scan.Potential[seg.Start:seg.End])

	if seg.Half.Direction == scan.Forward {
		if mean <= sr.pmin+prefSpanFrac*span {
			return prefBonus
		}

		return 1
	}

	if mean >= sr.pmax-prefSpanFrac*span {
		return prefBonus
	}

	return 1
}

func potentialSpan(potential []float64) (lo, hi float64) {
	if len(potential) == 0 {
		return 0, 0
	}

	lo, hi = potential[0], potential[0]
	for _, v := range potential[1:] {
		if v < lo {
			lo = v
		}

		if v > hi {
			hi = v
		}
	}

	return lo, hi
}
