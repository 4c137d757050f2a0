package voltammetry

import (
	"fmt"
	"testing"

	"github.com/cwbudde/algo-voltammetry/cv/scan"
)

func BenchmarkAnalyzer_AnalyzeScan(b *testing.B) {
	sizes := []int{400, 2000, 10000}

	for _, size := range sizes {
		b.Run(fmt.Sprintf("%d", size), func(b *testing.B) {
			gen := scan.NewGenerator(scan.WithPoints(size), scan.WithSeed(1))

			s, err := gen.Scan(0.1, 0.01,
				scan.Bump{Center: 0.25, Height: 1, Width: 0.05, Direction: scan.Forward},
				scan.Bump{Center: 0.18, Height: -0.8, Width: 0.05, Direction: scan.Reverse})
			if err != nil {
				b.Fatalf("generate scan: %v", err)
			}

			a := NewAnalyzer()
			b.SetBytes(int64(size * 16))
			b.ResetTimer()

			for range b.N {
				if _, err := a.AnalyzeScan(s); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
