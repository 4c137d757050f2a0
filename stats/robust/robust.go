// Package robust provides outlier-resistant statistics for noisy
// electrochemical signals: median, median absolute deviation, and
// MAD-based robust z-scores.
package robust

import (
	"math"
	"sort"

	vecmath "github.com/cwbudde/algo-vecmath"
)

// madScale converts a MAD to a consistent estimate of the standard
// deviation for normally distributed data (1/Phi^-1(3/4)).
const madScale = 1.4826

// Median returns the median of the signal. Returns NaN for empty input.
func Median(signal []float64) float64 {
	n := len(signal)
	if n == 0 {
		return math.NaN()
	}

	sorted := make([]float64, n)
	copy(sorted, signal)
	sort.Float64s(sorted)

	mid := n / 2
	if n%2 == 1 {
		return sorted[mid]
	}

	return 0.5 * (sorted[mid-1] + sorted[mid])
}

// MAD returns the median absolute deviation of the signal around its median.
// Returns NaN for empty input.
func MAD(signal []float64) float64 {
	n := len(signal)
	if n == 0 {
		return math.NaN()
	}

	med := Median(signal)

	dev := make([]float64, n)
	for i, v := range signal {
		dev[i] = math.Abs(v - med)
	}

	return Median(dev)
}

// ZScores returns MAD-based robust z-scores for every sample. When the MAD
// is zero (constant signal) all scores are zero, so a flat signal never
// flags outliers.
func ZScores(signal []float64) []float64 {
	n := len(signal)
	if n == 0 {
		return nil
	}

	med := Median(signal)
	mad := MAD(signal)

	scores := make([]float64, n)
	if mad == 0 || math.IsNaN(mad) {
		return scores
	}

	scale := 1 / (madScale * mad)
	for i, v := range signal {
		scores[i] = (v - med) * scale
	}

	return scores
}

// Mean returns the arithmetic mean of the signal. Returns 0 for empty input.
func Mean(signal []float64) float64 {
	if len(signal) == 0 {
		return 0
	}

	return vecmath.Sum(signal) / float64(len(signal))
}

// StdDev returns the population standard deviation of the signal.
// Returns 0 for fewer than two samples.
func StdDev(signal []float64) float64 {
	n := len(signal)
	if n < 2 {
		return 0
	}

	mean := Mean(signal)

	var sumSq float64
	for _, v := range signal {
		d := v - mean
		sumSq += d * d
	}

	return math.Sqrt(sumSq / float64(n))
}

// Amplitude returns the peak absolute value of the signal.
func Amplitude(signal []float64) float64 {
	if len(signal) == 0 {
		return 0
	}

	return vecmath.MaxAbs(signal)
}

// Range returns max - min of the signal. Returns 0 for empty input.
func Range(signal []float64) float64 {
	if len(signal) == 0 {
		return 0
	}

	minVal := signal[0]
	maxVal := signal[0]

	for _, v := range signal[1:] {
		if v < minVal {
			minVal = v
		}

		if v > maxVal {
			maxVal = v
		}
	}

	return maxVal - minVal
}
