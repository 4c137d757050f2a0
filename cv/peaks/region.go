package peaks

import (
	"github.com/cwbudde/algo-voltammetry/cv/analyte"
	"github.com/cwbudde/algo-voltammetry/cv/scan"
)

// derivedWindowFraction sizes the fallback search windows as the central
// fraction of each half's potential span when no analyte profile is known.
const derivedWindowFraction = 0.6

// RegionStrategy searches for one extremum per expected potential window.
// With an analyte profile configured it is the most precise strategy; without
// one it derives generic windows from each half's potential span.
type RegionStrategy struct {
	Profile      *analyte.Profile
	Segmentation scan.Segmentation
}

// Name returns the strategy identifier.
func (RegionStrategy) Name() string {
	return "region"
}

// Generate emits at most one candidate per window and kind.
func (r RegionStrategy) Generate(s scan.Scan, th Thresholds) []Candidate {
	if s.Len() == 0 {
		return nil
	}

	oxWindow, redWindow := r.windows(s)

	var found []Candidate

	if c, ok := r.search(s, th, oxWindow, r.Segmentation.Forward, Oxidation); ok {
		found = append(found, c)
	}

	if c, ok := r.search(s, th, redWindow, r.Segmentation.Reverse, Reduction); ok {
		found = append(found, c)
	}

	return found
}

func (r RegionStrategy) windows(s scan.Scan) (ox, red analyte.Window) {
	if r.Profile != nil {
		return r.Profile.Oxidation, r.Profile.Reduction
	}

	return derivedWindow(r.Segmentation.Forward, s), derivedWindow(r.Segmentation.Reverse, s)
}

func derivedWindow(h scan.Half, s scan.Scan) analyte.Window {
	lo, hi := h.PotentialSpan(s)
	margin := (hi - lo) * (1 - derivedWindowFraction) / 2

	return analyte.Window{Min: lo + margin, Max: hi - margin}
}

func (r RegionStrategy) search(s scan.Scan, th Thresholds, w analyte.Window, h scan.Half, kind Kind) (Candidate, bool) {
	values := s.Current
	if kind == Reduction {
		values = negate(s.Current)
	}

	best := -1
	for i := h.Start; i < h.End; i++ {
		if !w.Contains(s.Potential[i]) {
			continue
		}

		if best < 0 || values[i] > values[best] {
			best = i
		}
	}

	if best < 0 {
		return Candidate{}, false
	}

	prom := prominence(values, best)
	if prom < shallowFactor*th.Prominence {
		return Candidate{}, false
	}

	return Candidate{
		Index:      best,
		Potential:  s.Potential[best],
		Current:    s.Current[best],
		Prominence: prom,
		Kind:       kind,
		Source:     r.Name(),
	}, true
}
