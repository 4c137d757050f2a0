package scan

import (
	"fmt"
	"math"
	"math/rand"
)

// Generator creates deterministic synthetic scans for tests, examples, and
// the demo CLI. The potential follows a triangular sweep from VMin to VMax
// and back; currents are composed from a flat level, seeded white noise, and
// optional Gaussian redox bumps.
type Generator struct {
	points int
	vmin   float64
	vmax   float64
	rate   float64
	seed   int64
}

// GeneratorOption configures a Generator.
type GeneratorOption func(*Generator)

// WithPoints sets the total number of samples (forward plus reverse).
func WithPoints(points int) GeneratorOption {
	return func(g *Generator) {
		if points > 0 {
			g.points = points
		}
	}
}

// WithPotentialRange sets the sweep limits in volts.
func WithPotentialRange(vmin, vmax float64) GeneratorOption {
	return func(g *Generator) {
		if vmin < vmax {
			g.vmin = vmin
			g.vmax = vmax
		}
	}
}

// WithScanRate sets the nominal scan rate in V/s recorded on the scan.
func WithScanRate(rate float64) GeneratorOption {
	return func(g *Generator) {
		if rate > 0 {
			g.rate = rate
		}
	}
}

// WithSeed sets the deterministic random seed for noise generation.
func WithSeed(seed int64) GeneratorOption {
	return func(g *Generator) {
		g.seed = seed
	}
}

// NewGenerator creates a configured scan generator.
func NewGenerator(opts ...GeneratorOption) *Generator {
	g := &Generator{
		points: 400,
		vmin:   -0.5,
		vmax:   0.5,
		rate:   0.1,
		seed:   1,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(g)
		}
	}

	return g
}

// Bump is a Gaussian current feature injected into one sweep half.
type Bump struct {
	Center    float64 // peak potential, V
	Height    float64 // signed current amplitude
	Width     float64 // Gaussian sigma, V
	Direction Direction
}

// Potential generates the triangular potential sweep.
func (g *Generator) Potential() []float64 {
	n := g.points
	out := make([]float64, n)

	half := n / 2
	if half < 1 {
		half = 1
	}

	span := g.vmax - g.vmin
	for i := 0; i < n; i++ {
		if i < half {
			out[i] = g.vmin + span*float64(i)/float64(half)
		} else {
			out[i] = g.vmax - span*float64(i-half)/float64(n-half)
		}
	}

	return out
}

// Scan generates a full synthetic scan: flat level plus seeded noise plus
// the given bumps. Bumps only contribute within their declared half.
func (g *Generator) Scan(level, noiseAmp float64, bumps ...Bump) (Scan, error) {
	if g.points < 2 {
		return Scan{}, fmt.Errorf("scan: generator needs at least 2 points, got %d", g.points)
	}

	if noiseAmp < 0 {
		return Scan{}, fmt.Errorf("scan: noise amplitude must be >= 0: %f", noiseAmp)
	}

	potential := g.Potential()
	current := make([]float64, g.points)
	rng := rand.New(rand.NewSource(g.seed))

	half := g.points / 2

	for i := range current {
		current[i] = level + (rng.Float64()*2-1)*noiseAmp

		for _, b := range bumps {
			if b.Width <= 0 {
				continue
			}

			if (b.Direction == Forward) != (i < half) {
				continue
			}

			d := (potential[i] - b.Center) / b.Width
			current[i] += b.Height * math.Exp(-0.5*d*d)
		}
	}

	return Scan{
		Potential: potential,
		Current:   current,
		SampleID:  "synthetic",
		ScanRate:  g.rate,
	}, nil
}
