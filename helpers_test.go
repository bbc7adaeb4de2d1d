package ldc

import (
	"math"
	"math/rand"
)

// bump describes one Gaussian blob for gaussianGrid: amplitude and center in
// native axis order.
type bump struct {
	amp    float64
	center []float64
}

// gaussianGrid builds a grid holding the sum of unit-sigma Gaussian bumps.
func gaussianGrid(shape []int, bumps ...bump) Grid {
	g := Grid{Shape: shape}
	g.Data = make([]float64, g.NumCells())
	coord := make([]int, len(shape))
	for i := range g.Data {
		unravel(i, shape, coord)
		for _, b := range bumps {
			var r2 float64
			for a, c := range coord {
				d := float64(c) - b.center[a]
				r2 += d * d
			}
			g.Data[i] += b.amp * math.Exp(-r2/2)
		}
	}
	return g
}

// randomGrid returns a grid of uniform noise in [0, 1) from a fixed seed.
func randomGrid(shape []int, seed int64) Grid {
	rng := rand.New(rand.NewSource(seed))
	g := Grid{Shape: shape}
	g.Data = make([]float64, g.NumCells())
	for i := range g.Data {
		g.Data[i] = rng.Float64()
	}
	return g
}

// testConfig returns the parameters used by the synthetic-scene tests.
func testConfig() Config {
	cfg := DefaultConfig()
	cfg.RhoMin = 1
	cfg.DeltaMin = 1
	cfg.VMin = 3
	cfg.GradMin = 0.01
	cfg.Noise = 0.1
	return cfg
}

func almostEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}
