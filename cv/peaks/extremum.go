package peaks

import (
	"sort"

	"github.com/cwbudde/algo-voltammetry/cv/scan"
)

// ExtremumStrategy finds local current extrema honoring the prominence,
// width, and minimum-distance thresholds. It runs once on the current for
// oxidation peaks and once on the negated current for reduction peaks.
type ExtremumStrategy struct{}

// Name returns the strategy identifier.
func (ExtremumStrategy) Name() string {
	return "extremum"
}

// Generate emits candidates for both peak kinds.
func (e ExtremumStrategy) Generate(s scan.Scan, th Thresholds) []Candidate {
	out := e.detect(s, s.Current, Oxidation, th)
	out = append(out, e.detect(s, negate(s.Current), Reduction, th)...)

	return out
}

func (e ExtremumStrategy) detect(s scan.Scan, values []float64, kind Kind, th Thresholds) []Candidate {
	window := th.MinWidth / 2
	if window < 2 {
		window = 2
	}

	if len(values) < 2*window+1 {
		return nil
	}

	var found []Candidate

	for i := window; i < len(values)-window; i++ {
		if !isLocalMaximum(values, i, window) {
			continue
		}

		prom := prominence(values, i)
		if prom < th.Prominence {
			continue
		}

		if halfProminenceWidth(values, i) < th.MinWidth {
			continue
		}

		found = append(found, Candidate{
			Index:      i,
			Potential:  s.Potential[i],
			Current:    s.Current[i],
			Prominence: prom,
			Kind:       kind,
			Source:     e.Name(),
		})
	}

	return filterByDistance(found, th.MinDistance)
}

func isLocalMaximum(values []float64, i, window int) bool {
	v := values[i]

	for j := i - window; j < i; j++ {
		if values[j] >= v {
			return false
		}
	}

	for j := i + 1; j <= i+window; j++ {
		if values[j] >= v {
			return false
		}
	}

	return true
}

// filterByDistance keeps the most prominent candidate within every
// minDistance-sample neighborhood.
func filterByDistance(candidates []Candidate, minDistance int) []Candidate {
	if len(candidates) < 2 || minDistance <= 0 {
		return candidates
	}

	sorted := append([]Candidate(nil), candidates...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Prominence != sorted[j].Prominence {
			return sorted[i].Prominence > sorted[j].Prominence
		}

		return sorted[i].Index < sorted[j].Index
	})

	kept := make([]Candidate, 0, len(sorted))

	for _, c := range sorted {
		tooClose := false

		for _, k := range kept {
			d := c.Index - k.Index
			if d < 0 {
				d = -d
			}

			if d < minDistance {
				tooClose = true
				break
			}
		}

		if !tooClose {
			kept = append(kept, c)
		}
	}

	sort.Slice(kept, func(i, j int) bool {
		return kept[i].Index < kept[j].Index
	})

	return kept
}
