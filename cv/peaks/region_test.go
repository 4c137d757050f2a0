package peaks

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-voltammetry/cv/analyte"
	"github.com/cwbudde/algo-voltammetry/cv/scan"
)

// cvScan builds a triangular sweep over [vmin, vmax] with a forward-half
// Gaussian oxidation bump and a reverse-half reduction bump.
func cvScan(t *testing.T, oxHeight, redHeight float64) scan.Scan {
	t.Helper()

	g := scan.NewGenerator(scan.WithPoints(200), scan.WithSeed(5))

	s, err := g.Scan(0, 0,
		scan.Bump{Center: 0.2, Height: oxHeight, Width: 0.05, Direction: scan.Forward},
		scan.Bump{Center: 0.1, Height: -redHeight, Width: 0.05, Direction: scan.Reverse},
	)
	if err != nil {
		t.Fatalf("generate scan: %v", err)
	}

	return s
}

func TestRegionWithProfile(t *testing.T) {
	s := cvScan(t, 1, 0.8)
	seg := scan.Segment(s, scan.DefaultSegmentConfig())

	profile := &analyte.Profile{
		Name:      "test",
		Oxidation: analyte.Window{Min: 0.1, Max: 0.3},
		Reduction: analyte.Window{Min: 0.0, Max: 0.2},
	}

	r := RegionStrategy{Profile: profile, Segmentation: seg}

	got := r.Generate(s, testThresholds())
	if len(got) != 2 {
		t.Fatalf("got %d candidates, want 2: %+v", len(got), got)
	}

	var ox, red *Candidate
	for i := range got {
		if got[i].Kind == Oxidation {
			ox = &got[i]
		} else {
			red = &got[i]
		}
	}

	if ox == nil || red == nil {
		t.Fatalf("missing a kind: %+v", got)
	}

	if math.Abs(ox.Potential-0.2) > 0.03 {
		t.Errorf("oxidation at %g V, want near 0.2", ox.Potential)
	}

	if math.Abs(red.Potential-0.1) > 0.03 {
		t.Errorf("reduction at %g V, want near 0.1", red.Potential)
	}

	if ox.Source != "region" {
		t.Errorf("Source = %q", ox.Source)
	}
}

func TestRegionWithoutProfileDerivesWindows(t *testing.T) {
	s := cvScan(t, 1, 0.8)
	seg := scan.Segment(s, scan.DefaultSegmentConfig())

	r := RegionStrategy{Segmentation: seg}

	got := r.Generate(s, testThresholds())
	if len(got) == 0 {
		t.Fatal("derived windows found nothing")
	}

	for _, c := range got {
		if c.Kind == Oxidation && math.Abs(c.Potential-0.2) > 0.05 {
			t.Errorf("oxidation at %g V, want near 0.2", c.Potential)
		}
	}
}

func TestRegionEmptyWindow(t *testing.T) {
	s := cvScan(t, 1, 0.8)
	seg := scan.Segment(s, scan.DefaultSegmentConfig())

	// Windows entirely outside the sweep range yield nothing.
	profile := &analyte.Profile{
		Oxidation: analyte.Window{Min: 2, Max: 3},
		Reduction: analyte.Window{Min: 2, Max: 3},
	}

	r := RegionStrategy{Profile: profile, Segmentation: seg}

	if got := r.Generate(s, testThresholds()); len(got) != 0 {
		t.Errorf("out-of-range windows produced %+v", got)
	}
}

func TestRegionEmptyScan(t *testing.T) {
	r := RegionStrategy{}

	if got := r.Generate(scan.Scan{}, testThresholds()); got != nil {
		t.Errorf("empty scan produced %+v", got)
	}
}
