package peaks

import (
	"math"
	"sort"

	"github.com/cwbudde/algo-voltammetry/cv/scan"
)

// DefaultMergeTolerance is the potential distance in volts below which two
// same-kind candidates are considered the same peak.
const DefaultMergeTolerance = 0.010

// Strategy generates peak candidates from a preprocessed scan. Strategies
// are independent; their pooled output goes through one canonical dedup
// stage before validation.
type Strategy interface {
	Name() string
	Generate(s scan.Scan, th Thresholds) []Candidate
}

// GenerateAll pools the candidates of every strategy.
func GenerateAll(s scan.Scan, th Thresholds, strategies ...Strategy) []Candidate {
	var pool []Candidate
	for _, st := range strategies {
		if st != nil {
			pool = append(pool, st.Generate(s, th)...)
		}
	}

	return pool
}

// Merge deduplicates pooled candidates: any two of the same kind within
// toleranceV volts collapse into the higher-prominence one. Ordering is
// deterministic (prominence descending, then index, then source).
func Merge(candidates []Candidate, toleranceV float64) []Candidate {
	if toleranceV <= 0 {
		toleranceV = DefaultMergeTolerance
	}

	if len(candidates) == 0 {
		return nil
	}

	sorted := append([]Candidate(nil), candidates...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Prominence != sorted[j].Prominence {
			return sorted[i].Prominence > sorted[j].Prominence
		}

		if sorted[i].Index != sorted[j].Index {
			return sorted[i].Index < sorted[j].Index
		}

		return sorted[i].Source < sorted[j].Source
	})

	kept := make([]Candidate, 0, len(sorted))

	for _, c := range sorted {
		duplicate := false

		for _, k := range kept {
			if k.Kind == c.Kind && math.Abs(k.Potential-c.Potential) <= toleranceV {
				duplicate = true
				break
			}
		}

		if !duplicate {
			kept = append(kept, c)
		}
	}

	sort.Slice(kept, func(i, j int) bool {
		return kept[i].Index < kept[j].Index
	})

	return kept
}
