package peaks

import (
	"github.com/cwbudde/algo-voltammetry/cv/scan"
	"github.com/cwbudde/algo-voltammetry/cv/smooth"
)

// shallowFactor relaxes the prominence bar for the derivative strategy,
// which exists to catch peaks too shallow for the extremum search.
const shallowFactor = 0.5

// DerivativeStrategy detects peaks where the first derivative of the current
// changes sign, confirmed by second-derivative curvature. It tolerates
// shallower peaks than the extremum search.
type DerivativeStrategy struct{}

// Name returns the strategy identifier.
func (DerivativeStrategy) Name() string {
	return "derivative"
}

// Generate emits candidates for both peak kinds.
func (d DerivativeStrategy) Generate(s scan.Scan, th Thresholds) []Candidate {
	n := s.Len()
	if n < 5 {
		return nil
	}

	d1 := gradient(s.Current)
	if smoothed, err := smooth.MovingAverage(d1, 3); err == nil {
		d1 = smoothed
	}

	d2 := gradient(d1)

	var found []Candidate

	for i := 1; i < n-1; i++ {
		var kind Kind

		switch {
		case d1[i-1] > 0 && d1[i] <= 0 && d2[i] <= 0:
			kind = Oxidation
		case d1[i-1] < 0 && d1[i] >= 0 && d2[i] >= 0:
			kind = Reduction
		default:
			continue
		}

		idx := refineExtremum(s.Current, i, kind, th.MinWidth)

		values := s.Current
		if kind == Reduction {
			values = negate(s.Current)
		}

		prom := prominence(values, idx)
		if prom < shallowFactor*th.Prominence {
			continue
		}

		found = append(found, Candidate{
			Index:      idx,
			Potential:  s.Potential[idx],
			Current:    s.Current[idx],
			Prominence: prom,
			Kind:       kind,
			Source:     d.Name(),
		})
	}

	return filterByDistance(found, th.MinDistance)
}

// gradient returns central differences with one-sided edges, same length as
// the input.
func gradient(values []float64) []float64 {
	n := len(values)
	out := make([]float64, n)

	if n < 2 {
		return out
	}

	out[0] = values[1] - values[0]
	out[n-1] = values[n-1] - values[n-2]

	for i := 1; i < n-1; i++ {
		out[i] = (values[i+1] - values[i-1]) / 2
	}

	return out
}

// refineExtremum walks from the sign-change index to the true extremum
// within a small neighborhood, since derivative smoothing can shift the
// crossing by a sample or two.
func refineExtremum(current []float64, i int, kind Kind, radius int) int {
	lo := i - radius
	if lo < 0 {
		lo = 0
	}

	hi := i + radius
	if hi > len(current)-1 {
		hi = len(current) - 1
	}

	best := i
	for j := lo; j <= hi; j++ {
		if kind == Oxidation && current[j] > current[best] {
			best = j
		}

		if kind == Reduction && current[j] < current[best] {
			best = j
		}
	}

	return best
}
