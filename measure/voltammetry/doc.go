// Package voltammetry analyzes cyclic-voltammetry scans: it cleans and
// segments the sweep, derives SNR-adaptive detection thresholds, finds and
// validates oxidation/reduction peaks, synthesizes a non-faradaic baseline,
// flags baseline/peak conflicts, and extracts per-peak and scan-level
// features for downstream calibration.
//
// The pipeline is a pure, synchronous computation: results depend only on
// the inputs and configuration, with no hidden randomness and no shared
// mutable state. Independent scans can be analyzed concurrently with one
// analyzer per goroutine, or with a single analyzer since it is read-only
// after construction.
//
// # Usage
//
// One-shot analysis with defaults:
//
//	res, err := voltammetry.Analyze(potential, current)
//	if err != nil {
//	    // ErrLengthMismatch or ErrInsufficientData
//	}
//	for _, p := range res.Peaks {
//	    fmt.Printf("%s peak at %.3f V, height %.3g\n", p.Kind, p.Potential, p.Height)
//	}
//
// A configured analyzer can be reused across scans:
//
//	a := voltammetry.NewAnalyzer(
//	    voltammetry.WithAnalyte("dopamine"),
//	    voltammetry.WithConfidenceThreshold(60),
//	)
//	res, err := a.Analyze(potential, current)
//
// A half without a qualifying baseline segment is reported as degraded, not
// as an error; likewise a scan with no detectable peaks returns an empty
// peak list. Only malformed input (mismatched lengths) and too few usable
// samples fail the analysis.
package voltammetry
