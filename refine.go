package ldc

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// RefineBoundaries trims every preliminary cluster and renumbers the
// survivors. For cluster k with members M:
//   - fewer than vMin members: rejected
//   - zero density range over M: rejected, the gradient carries no scale
//   - otherwise keep members whose gradient divided by the density range
//     exceeds gradMin, plus members denser than the mean density of M
//   - fewer than vMin kept: rejected
//
// Kept cells get IDs 1, 2, ... in order of k; every other cell is 0.
// Densities and gradients are not modified.
func RefineBoundaries(rho []float64, a *Assignment, vMin int, gradMin float64) []int {
	out := make([]int, len(rho))

	members := make([][]int, len(a.Centers)+1)
	for i, k := range a.Labels {
		if k > 0 {
			members[k] = append(members[k], i)
		}
	}

	nextID := 1
	vals := make([]float64, 0)
	for k := 1; k < len(members); k++ {
		m := members[k]
		if len(m) < vMin || len(m) == 0 {
			continue
		}

		vals = vals[:0]
		for _, i := range m {
			vals = append(vals, rho[i])
		}
		rng := floats.Max(vals) - floats.Min(vals)
		if rng == 0 {
			debugf("cluster %d rejected: flat density over %d cells", k, len(m))
			continue
		}
		mean := stat.Mean(vals, nil)

		kept := 0
		for _, i := range m {
			if a.Gradient[i]/rng > gradMin || rho[i] > mean {
				kept++
			}
		}
		if kept < vMin || kept == 0 {
			continue
		}
		for _, i := range m {
			if a.Gradient[i]/rng > gradMin || rho[i] > mean {
				out[i] = nextID
			}
		}
		nextID++
	}

	return out
}
