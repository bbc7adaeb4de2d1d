package ldc

import "math"

// NoNeighbor marks a cell without a nearest denser neighbor: an isolated
// point, a cell below the noise floor, or a local maximum.
const NoNeighbor = -1

// radiusTol widens the neighbor search radius and sets the delta reported
// for cells with no denser neighbor in range.
const radiusTol = 1e-4

// PeakGraph holds the nearest-denser-neighbor forest over the indexed cells.
// All slices are indexed by flat cell index; cells that were not indexed keep
// Delta 0, Gradient 0 and Neighbor NoNeighbor.
type PeakGraph struct {
	// Delta is the distance to the nearest strictly denser neighbor, or
	// DeltaMin + 1e-4 when none lies within DeltaMin.
	Delta []float64
	// Gradient is (rho[Neighbor] - rho[i]) / Delta, or -1 when Neighbor is
	// NoNeighbor.
	Gradient []float64
	// Neighbor is the flat index of the nearest strictly denser neighbor.
	Neighbor []int
	// Cells lists the indexed cells (density above the noise floor) in
	// ascending flat index order. Row k of the spatial index is Cells[k].
	Cells []int
}

// IndexCells returns the flat indices of cells with density above noise and
// their lattice coordinates as flat row-major points, fastest-varying axis
// first.
func IndexCells(shape []int, rho []float64, noise float64) (cells []int, coords []float64) {
	dims := len(shape)
	coord := make([]int, dims)
	for i, v := range rho {
		if v <= noise {
			continue
		}
		cells = append(cells, i)
		unravel(i, shape, coord)
		for a := dims - 1; a >= 0; a-- {
			coords = append(coords, float64(coord[a]))
		}
	}
	return cells, coords
}

// ComputePeakGraph finds, for every indexed cell, the nearest cell of strictly
// higher density within deltaMin (boundary inclusive). tree must be built over
// the coordinates of cells, in the same order. Ties in distance go to the
// lowest flat index. Work is split across numWorkers goroutines; the result
// does not depend on the split.
func ComputePeakGraph(tree SpatialIndex, cells []int, rho []float64, deltaMin float64, numWorkers int) *PeakGraph {
	nd := len(rho)
	pg := &PeakGraph{
		Delta:    make([]float64, nd),
		Gradient: make([]float64, nd),
		Neighbor: make([]int, nd),
		Cells:    cells,
	}
	for i := range pg.Neighbor {
		pg.Neighbor[i] = NoNeighbor
	}

	dims := tree.NumFeatures()
	data := tree.Data()
	isolated := deltaMin + radiusTol

	parallelRange(len(cells), numWorkers, func(start, end int) {
		for k := start; k < end; k++ {
			gi := cells[k]
			p := data[k*dims : (k+1)*dims]
			rhoI := rho[gi]

			best := NoNeighbor
			bestD2 := math.Inf(1)
			for _, j := range tree.QueryRadius(p, isolated) {
				gj := cells[j]
				if rho[gj] <= rhoI {
					continue
				}
				if d2 := sqDist(p, data[j*dims:(j+1)*dims]); d2 < bestD2 {
					best, bestD2 = gj, d2
				}
			}

			if best == NoNeighbor {
				pg.Delta[gi] = isolated
				pg.Gradient[gi] = -1
				continue
			}
			d := math.Sqrt(bestD2)
			pg.Delta[gi] = d
			pg.Gradient[gi] = (rho[best] - rhoI) / d
			pg.Neighbor[gi] = best
		}
	})

	return pg
}
