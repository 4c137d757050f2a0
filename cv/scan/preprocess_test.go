package scan

import (
	"errors"
	"math"
	"testing"
)

func flatScan(n int) Scan {
	s := Scan{
		Potential: make([]float64, n),
		Current:   make([]float64, n),
	}

	for i := range s.Potential {
		s.Potential[i] = float64(i) * 0.01
		s.Current[i] = 1 + 0.01*float64(i%3)
	}

	return s
}

func TestPreprocessDropsNonFinitePairs(t *testing.T) {
	s := flatScan(20)
	s.Current[3] = math.NaN()
	s.Potential[7] = math.Inf(1)

	out, err := Preprocess(s, DefaultPreprocessConfig())
	if err != nil {
		t.Fatalf("Preprocess: %v", err)
	}

	if out.Len() != 18 {
		t.Fatalf("Len = %d, want 18", out.Len())
	}

	for i := range out.Potential {
		if math.IsNaN(out.Potential[i]) || math.IsNaN(out.Current[i]) {
			t.Fatalf("non-finite sample survived at %d", i)
		}
	}
}

func TestPreprocessRemovesIsolatedSpike(t *testing.T) {
	s := flatScan(40)
	s.Current[20] = 500

	cfg := DefaultPreprocessConfig()
	cfg.NoiseReduction = false

	out, err := Preprocess(s, cfg)
	if err != nil {
		t.Fatalf("Preprocess: %v", err)
	}

	if out.Len() != 39 {
		t.Fatalf("Len = %d, want 39 after spike removal", out.Len())
	}

	for i, v := range out.Current {
		if v > 100 {
			t.Fatalf("spike survived at %d: %g", i, v)
		}
	}
}

func TestPreprocessKeepsContiguousExcursion(t *testing.T) {
	// A run of high samples looks like a real peak, not a spike, and must
	// survive outlier rejection.
	s := flatScan(40)
	for i := 18; i <= 22; i++ {
		s.Current[i] = 500
	}

	cfg := DefaultPreprocessConfig()
	cfg.NoiseReduction = false

	out, err := Preprocess(s, cfg)
	if err != nil {
		t.Fatalf("Preprocess: %v", err)
	}

	if out.Len() != 40 {
		t.Fatalf("Len = %d, want 40: contiguous excursion should be kept", out.Len())
	}
}

func TestPreprocessSmoothing(t *testing.T) {
	s := flatScan(60)
	for i := range s.Current {
		s.Current[i] += 0.1 * float64(1-2*(i%2))
	}

	raw := append([]float64(nil), s.Current...)

	cfg := DefaultPreprocessConfig()
	cfg.NoiseReduction = true

	out, err := Preprocess(s, cfg)
	if err != nil {
		t.Fatalf("Preprocess: %v", err)
	}

	if out.Len() != 60 {
		t.Fatalf("Len = %d, want 60", out.Len())
	}

	changed := false
	for i := range out.Current {
		if out.Current[i] != raw[i] {
			changed = true
			break
		}
	}

	if !changed {
		t.Error("smoothing left the current untouched")
	}
}

func TestPreprocessInsufficientFiniteData(t *testing.T) {
	s := flatScan(20)
	for i := 0; i < 15; i++ {
		s.Current[i] = math.NaN()
	}

	_, err := Preprocess(s, DefaultPreprocessConfig())
	if !errors.Is(err, ErrInsufficientData) {
		t.Errorf("got %v, want ErrInsufficientData", err)
	}
}

func TestPreprocessLengthMismatch(t *testing.T) {
	s := Scan{Potential: make([]float64, 5), Current: make([]float64, 4)}

	_, err := Preprocess(s, DefaultPreprocessConfig())
	if !errors.Is(err, ErrLengthMismatch) {
		t.Errorf("got %v, want ErrLengthMismatch", err)
	}
}
