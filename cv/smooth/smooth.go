// Package smooth provides local-polynomial (Savitzky-Golay) and moving
// average smoothing for voltammetric signals. Savitzky-Golay preserves peak
// height and width far better than a plain moving average, which matters
// when the smoothed signal feeds peak detection.
package smooth

import (
	"errors"
	"fmt"

	vecmath "github.com/cwbudde/algo-vecmath"
)

var (
	// ErrWindowSize is returned when the smoothing window is not an odd
	// integer of at least 3.
	ErrWindowSize = errors.New("smooth: window must be odd and >= 3")

	// ErrShortSignal is returned when the signal is shorter than the window.
	ErrShortSignal = errors.New("smooth: signal shorter than window")
)

// Coefficients returns symmetric Savitzky-Golay smoothing coefficients for a
// quadratic/cubic local polynomial over an odd window of the given size.
func Coefficients(window int) ([]float64, error) {
	if window < 3 || window%2 == 0 {
		return nil, fmt.Errorf("%w: %d", ErrWindowSize, window)
	}

	m := window / 2
	mf := float64(m)
	norm := (2*mf + 3) * (2*mf + 1) * (2*mf - 1)

	coeffs := make([]float64, window)
	for j := -m; j <= m; j++ {
		jf := float64(j)
		coeffs[j+m] = (3*(3*mf*mf+3*mf-1) - 15*jf*jf) / norm
	}

	return coeffs, nil
}

// SavitzkyGolay smooths the signal with a quadratic local-polynomial filter
// over an odd window. Edges use mirror padding so the output has the same
// length as the input.
func SavitzkyGolay(signal []float64, window int) ([]float64, error) {
	coeffs, err := Coefficients(window)
	if err != nil {
		return nil, err
	}

	if len(signal) < window {
		return nil, fmt.Errorf("%w: %d < %d", ErrShortSignal, len(signal), window)
	}

	m := window / 2
	out := make([]float64, len(signal))

	// Interior samples see a contiguous window.
	for i := m; i < len(signal)-m; i++ {
		out[i] = vecmath.DotProduct(signal[i-m:i+m+1], coeffs)
	}

	// Mirror-padded edges.
	for i := 0; i < m; i++ {
		out[i] = mirrorDot(signal, coeffs, i, m)
		out[len(signal)-1-i] = mirrorDot(signal, coeffs, len(signal)-1-i, m)
	}

	return out, nil
}

// MovingAverage smooths the signal with a centered moving average over an
// odd window, shrinking the window near the edges.
func MovingAverage(signal []float64, window int) ([]float64, error) {
	if window < 3 || window%2 == 0 {
		return nil, fmt.Errorf("%w: %d", ErrWindowSize, window)
	}

	if len(signal) == 0 {
		return nil, fmt.Errorf("%w: empty signal", ErrShortSignal)
	}

	m := window / 2
	out := make([]float64, len(signal))

	for i := range signal {
		lo := i - m
		if lo < 0 {
			lo = 0
		}

		hi := i + m + 1
		if hi > len(signal) {
			hi = len(signal)
		}

		out[i] = vecmath.Sum(signal[lo:hi]) / float64(hi-lo)
	}

	return out, nil
}

func mirrorDot(signal, coeffs []float64, center, m int) float64 {
	var sum float64

	for j := -m; j <= m; j++ {
		idx := center + j
		if idx < 0 {
			idx = -idx
		}

		if idx >= len(signal) {
			idx = 2*(len(signal)-1) - idx
		}

		sum += coeffs[j+m] * signal[idx]
	}

	return sum
}
