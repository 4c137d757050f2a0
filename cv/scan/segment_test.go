package scan

import "testing"

func triangularScan(n, turn int) Scan {
	s := Scan{
		Potential: make([]float64, n),
		Current:   make([]float64, n),
	}

	for i := range s.Potential {
		if i < turn {
			s.Potential[i] = float64(i) * 0.01
		} else {
			s.Potential[i] = float64(turn)*0.01 - float64(i-turn)*0.01
		}
	}

	return s
}

func TestSegmentFindsTurn(t *testing.T) {
	s := triangularScan(100, 50)

	seg := Segment(s, DefaultSegmentConfig())

	if seg.Turn < 45 || seg.Turn > 55 {
		t.Fatalf("Turn = %d, want near 50", seg.Turn)
	}

	if seg.Forward.Start != 0 || seg.Forward.End != seg.Turn {
		t.Errorf("forward half = [%d, %d)", seg.Forward.Start, seg.Forward.End)
	}

	if seg.Reverse.Start != seg.Turn || seg.Reverse.End != 100 {
		t.Errorf("reverse half = [%d, %d)", seg.Reverse.Start, seg.Reverse.End)
	}

	if seg.Forward.Direction != Forward || seg.Reverse.Direction != Reverse {
		t.Error("half directions wrong")
	}
}

func TestSegmentMonotonicDefaultsToMidpoint(t *testing.T) {
	s := Scan{
		Potential: make([]float64, 80),
		Current:   make([]float64, 80),
	}

	for i := range s.Potential {
		s.Potential[i] = float64(i) * 0.01
	}

	seg := Segment(s, DefaultSegmentConfig())

	if seg.Turn != 40 {
		t.Errorf("Turn = %d, want midpoint 40 for a sweep without reversal", seg.Turn)
	}
}

func TestSegmentClampsEarlyTurn(t *testing.T) {
	// Reversal after only 5 of 100 samples; each half must still keep at
	// least the minimum ratio of the scan.
	s := triangularScan(100, 5)

	cfg := DefaultSegmentConfig()
	seg := Segment(s, cfg)

	minLen := int(cfg.MinScanRatio * 100)
	if seg.Forward.Len() < minLen {
		t.Errorf("forward half %d samples, want >= %d", seg.Forward.Len(), minLen)
	}

	if seg.Reverse.Len() < minLen {
		t.Errorf("reverse half %d samples, want >= %d", seg.Reverse.Len(), minLen)
	}
}

func TestSegmentRespectsCustomMinScanRatio(t *testing.T) {
	s := triangularScan(100, 5)

	cfg := DefaultSegmentConfig()
	cfg.MinScanRatio = 0.30

	seg := Segment(s, cfg)

	if seg.Forward.Len() < 30 {
		t.Errorf("forward half %d samples, want >= 30", seg.Forward.Len())
	}
}
