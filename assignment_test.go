package ldc

import (
	"reflect"
	"testing"
)

// twoPeakGraph is a hand-built forest with roots 0 and 4 and one cell (6)
// too faint to be a center.
func twoPeakGraph() ([]float64, *PeakGraph) {
	rho := []float64{5, 4, 3, 2, 6, 1, 0.5}
	pg := &PeakGraph{
		Delta:    []float64{10, 1, 1, 1, 10, 1, 10},
		Gradient: []float64{-1, 1, 1, 4, -1, 1, -1},
		Neighbor: []int{NoNeighbor, 0, 1, 4, NoNeighbor, 3, NoNeighbor},
		Cells:    []int{0, 1, 2, 3, 4, 5, 6},
	}
	return rho, pg
}

func TestAssignClusters_TwoPeaks(t *testing.T) {
	rho, pg := twoPeakGraph()
	a := AssignClusters(rho, pg, 0.7, 4)

	if want := []int{0, 4}; !equalInts(a.Centers, want) {
		t.Fatalf("Centers = %v, want %v", a.Centers, want)
	}
	want := []int{1, 1, 1, 2, 2, 2, -1}
	if !equalInts(a.Labels, want) {
		t.Errorf("Labels = %v, want %v", a.Labels, want)
	}
	if a.Gradient[0] != -1 || a.Gradient[4] != -1 {
		t.Errorf("center gradients = %v, %v, want -1", a.Gradient[0], a.Gradient[4])
	}
	if a.Gradient[3] != 4 {
		t.Errorf("Gradient[3] = %v, want 4", a.Gradient[3])
	}
}

func TestAssignClusters_DoesNotModifyGraph(t *testing.T) {
	rho, pg := twoPeakGraph()
	before := append([]float64(nil), pg.Gradient...)
	a := AssignClusters(rho, pg, 0.7, 4)
	a.Gradient[1] = 99
	if !reflect.DeepEqual(pg.Gradient, before) {
		t.Error("AssignClusters modified the peak graph")
	}
}

func TestAssignClusters_CenterNeedsBothThresholds(t *testing.T) {
	rho, pg := twoPeakGraph()

	// Delta threshold at the root distance: no cell qualifies.
	a := AssignClusters(rho, pg, 0, 10)
	if len(a.Centers) != 0 {
		t.Errorf("Centers = %v, want none", a.Centers)
	}
	for i, k := range a.Labels {
		if k != -1 {
			t.Errorf("Labels[%d] = %d, want -1", i, k)
		}
	}

	// Density threshold above cell 0: only cell 4 is a center, and cell 0's
	// chain never reaches it.
	a = AssignClusters(rho, pg, 5, 4)
	if want := []int{4}; !equalInts(a.Centers, want) {
		t.Fatalf("Centers = %v, want %v", a.Centers, want)
	}
	want := []int{-1, -1, -1, 1, 1, 1, -1}
	if !equalInts(a.Labels, want) {
		t.Errorf("Labels = %v, want %v", a.Labels, want)
	}
}

func TestAssignClusters_CentersInFlatOrder(t *testing.T) {
	// The denser root has the larger index but still gets the second label.
	rho := []float64{3, 1, 7}
	pg := &PeakGraph{
		Delta:    []float64{5, 1, 5},
		Gradient: []float64{-1, 2, -1},
		Neighbor: []int{NoNeighbor, 0, NoNeighbor},
	}
	a := AssignClusters(rho, pg, 0, 4)
	if !equalInts(a.Centers, []int{0, 2}) {
		t.Fatalf("Centers = %v, want [0 2]", a.Centers)
	}
	if !equalInts(a.Labels, []int{1, 1, 2}) {
		t.Errorf("Labels = %v, want [1 1 2]", a.Labels)
	}
}

func TestDensityOrder(t *testing.T) {
	rho := []float64{1, 3, 2, 3, 0}
	got := densityOrder(rho)
	want := []int{1, 3, 2, 0, 4}
	if !equalInts(got, want) {
		t.Errorf("densityOrder = %v, want %v", got, want)
	}
}
