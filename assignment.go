package ldc

import "sort"

// Assignment is the preliminary clustering produced by propagating center
// labels down the peak graph.
type Assignment struct {
	// Labels holds the cluster of every cell: 1..len(Centers), or -1 for
	// cells whose neighbor chain never reaches a center.
	Labels []int
	// Gradient is the peak graph gradient with every center set to -1.
	Gradient []float64
	// Centers lists the flat index of each center; center k has label k+1.
	Centers []int
}

// AssignClusters selects centers (rho > rhoMin and delta > deltaMin) and
// labels them 1, 2, ... in ascending flat index order. It then visits every
// cell in order of decreasing density and gives each non-center the label of
// its nearest denser neighbor. Because that neighbor is strictly denser it is
// always visited first, so one sequential pass suffices.
func AssignClusters(rho []float64, pg *PeakGraph, rhoMin, deltaMin float64) *Assignment {
	nd := len(rho)
	a := &Assignment{
		Labels:   make([]int, nd),
		Gradient: make([]float64, nd),
	}
	copy(a.Gradient, pg.Gradient)
	for i := range a.Labels {
		a.Labels[i] = -1
	}

	for i := 0; i < nd; i++ {
		if rho[i] > rhoMin && pg.Delta[i] > deltaMin {
			a.Centers = append(a.Centers, i)
			a.Labels[i] = len(a.Centers)
		}
	}

	for _, i := range densityOrder(rho) {
		if a.Labels[i] != -1 {
			a.Gradient[i] = -1
			continue
		}
		if nb := pg.Neighbor[i]; nb != NoNeighbor {
			a.Labels[i] = a.Labels[nb]
		}
	}

	return a
}

// densityOrder returns all cell indices sorted by decreasing density, equal
// densities in ascending index order.
func densityOrder(rho []float64) []int {
	order := make([]int, len(rho))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return rho[order[i]] > rho[order[j]]
	})
	return order
}
