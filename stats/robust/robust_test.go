package robust

import (
	"math"
	"testing"
)

func TestMedian(t *testing.T) {
	tests := []struct {
		name   string
		signal []float64
		want   float64
	}{
		{"odd", []float64{3, 1, 2}, 2},
		{"even", []float64{4, 1, 3, 2}, 2.5},
		{"single", []float64{7}, 7},
		{"unsorted negatives", []float64{-5, 10, 0, -1, 3}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Median(tt.signal); got != tt.want {
				t.Errorf("Median(%v) = %g, want %g", tt.signal, got, tt.want)
			}
		})
	}

	if !math.IsNaN(Median(nil)) {
		t.Error("Median(nil) should be NaN")
	}
}

func TestMAD(t *testing.T) {
	// Median 3, absolute deviations {2, 1, 0, 1, 2}, median deviation 1.
	if got := MAD([]float64{1, 2, 3, 4, 5}); got != 1 {
		t.Errorf("MAD = %g, want 1", got)
	}

	if got := MAD([]float64{4, 4, 4}); got != 0 {
		t.Errorf("MAD of constant = %g, want 0", got)
	}

	if !math.IsNaN(MAD(nil)) {
		t.Error("MAD(nil) should be NaN")
	}
}

func TestZScoresConstantSignal(t *testing.T) {
	scores := ZScores([]float64{2, 2, 2, 2})

	for i, z := range scores {
		if z != 0 {
			t.Fatalf("score[%d] = %g, want 0 for constant signal", i, z)
		}
	}
}

func TestZScoresFlagsSpike(t *testing.T) {
	signal := []float64{1, 1.1, 0.9, 1, 1.05, 0.95, 1, 100, 1, 0.9, 1.1, 1}
	scores := ZScores(signal)

	if len(scores) != len(signal) {
		t.Fatalf("len = %d, want %d", len(scores), len(signal))
	}

	if math.Abs(scores[7]) < 10 {
		t.Errorf("spike score = %g, expected strongly flagged", scores[7])
	}

	for i, z := range scores {
		if i == 7 {
			continue
		}

		if math.Abs(z) > 3.5 {
			t.Errorf("inlier %d scored %g", i, z)
		}
	}
}

func TestMean(t *testing.T) {
	if got := Mean([]float64{1, 2, 3, 4}); got != 2.5 {
		t.Errorf("Mean = %g, want 2.5", got)
	}

	if got := Mean(nil); got != 0 {
		t.Errorf("Mean(nil) = %g, want 0", got)
	}
}

func TestStdDev(t *testing.T) {
	// Population std-dev of {2, 4, 4, 4, 5, 5, 7, 9} is exactly 2.
	got := StdDev([]float64{2, 4, 4, 4, 5, 5, 7, 9})
	if math.Abs(got-2) > 1e-12 {
		t.Errorf("StdDev = %g, want 2", got)
	}

	if got := StdDev([]float64{1}); got != 0 {
		t.Errorf("StdDev of single sample = %g, want 0", got)
	}
}

func TestAmplitude(t *testing.T) {
	if got := Amplitude([]float64{1, -3, 2}); got != 3 {
		t.Errorf("Amplitude = %g, want 3", got)
	}

	if got := Amplitude(nil); got != 0 {
		t.Errorf("Amplitude(nil) = %g, want 0", got)
	}
}

func TestRange(t *testing.T) {
	if got := Range([]float64{-1, 4, 0, 2}); got != 5 {
		t.Errorf("Range = %g, want 5", got)
	}

	if got := Range(nil); got != 0 {
		t.Errorf("Range(nil) = %g, want 0", got)
	}
}
