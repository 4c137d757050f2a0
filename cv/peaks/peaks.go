// Package peaks turns a segmented scan into validated oxidation and
// reduction peaks. Detection runs several independent strategies over the
// whole signal, pools and deduplicates their candidates, then scores each
// survivor against electrochemical expectations.
package peaks

// Kind classifies a peak by the redox process behind it.
type Kind int

const (
	// Oxidation is a positive-current local extremum (anodic peak).
	Oxidation Kind = iota

	// Reduction is a negative-current local extremum (cathodic peak).
	Reduction
)

// String returns the kind name.
func (k Kind) String() string {
	if k == Reduction {
		return "reduction"
	}

	return "oxidation"
}

// Candidate is a transient detection result emitted by one strategy.
// Candidates are pooled and merged before validation.
type Candidate struct {
	Index      int
	Potential  float64
	Current    float64
	Prominence float64
	Kind       Kind
	Source     string
}

// ValidatedPeak is a scored candidate. It is immutable once produced.
// Confidence lies in [0, 100]; rejected peaks keep their rejection reasons
// as diagnostics.
type ValidatedPeak struct {
	Candidate

	Confidence float64
	Height     float64
	SNR        float64
	Accepted   bool
	Reasons    []string
}

// prominence returns the height of values[peak] above the higher of the two
// valleys separating it from its taller neighbors.
func prominence(values []float64, peak int) float64 {
	peakValue := values[peak]

	leftMin := peakValue
	for i := peak - 1; i >= 0; i-- {
		if values[i] < leftMin {
			leftMin = values[i]
		}

		if values[i] > peakValue {
			break
		}
	}

	rightMin := peakValue
	for i := peak + 1; i < len(values); i++ {
		if values[i] < rightMin {
			rightMin = values[i]
		}

		if values[i] > peakValue {
			break
		}
	}

	valley := leftMin
	if rightMin > valley {
		valley = rightMin
	}

	return peakValue - valley
}

// halfProminenceWidth returns the width in samples of the peak at half its
// prominence.
func halfProminenceWidth(values []float64, peak int) int {
	level := values[peak] - prominence(values, peak)/2

	left := peak
	for i := peak - 1; i >= 0; i-- {
		if values[i] < level {
			left = i
			break
		}
	}

	right := peak
	for i := peak + 1; i < len(values); i++ {
		if values[i] < level {
			right = i
			break
		}
	}

	return right - left
}

func negate(values []float64) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = -v
	}

	return out
}
