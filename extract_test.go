package ldc

import (
	"math"
	"testing"
)

func TestExtractClumps_HandComputed(t *testing.T) {
	// Two rows of three columns.
	g := Grid{Shape: []int{2, 3}, Data: []float64{
		1, 2, 0,
		0, 3, 4,
	}}
	labels := []int{
		1, 1, 0,
		0, 2, 2,
	}
	clumps := ExtractClumps(g, labels)
	if len(clumps) != 2 {
		t.Fatalf("got %d clumps, want 2", len(clumps))
	}

	tests := []struct {
		id       int
		peak     []int
		centroid []float64
		size     []float64
		peakVal  float64
		sum      float64
		volume   int
	}{
		{
			id:       1,
			peak:     []int{2, 1},
			centroid: []float64{5.0 / 3, 1},
			size:     []float64{fwhmFactor * math.Sqrt(2.0/9), 0},
			peakVal:  2, sum: 3, volume: 2,
		},
		{
			id:       2,
			peak:     []int{3, 2},
			centroid: []float64{18.0 / 7, 2},
			size:     []float64{fwhmFactor * math.Sqrt(12.0/49), 0},
			peakVal:  4, sum: 7, volume: 2,
		},
	}
	for i, tt := range tests {
		c := clumps[i]
		if c.ID != tt.id {
			t.Errorf("clump %d: ID = %d", i, c.ID)
		}
		if !equalInts(c.Peak, tt.peak) {
			t.Errorf("clump %d: Peak = %v, want %v", tt.id, c.Peak, tt.peak)
		}
		for a := range tt.centroid {
			if !almostEqual(c.Centroid[a], tt.centroid[a], 1e-12) {
				t.Errorf("clump %d: Centroid[%d] = %v, want %v", tt.id, a, c.Centroid[a], tt.centroid[a])
			}
			if !almostEqual(c.Size[a], tt.size[a], 1e-12) {
				t.Errorf("clump %d: Size[%d] = %v, want %v", tt.id, a, c.Size[a], tt.size[a])
			}
		}
		if c.PeakValue != tt.peakVal || c.Sum != tt.sum || c.Volume != tt.volume {
			t.Errorf("clump %d: peak %v sum %v volume %d, want %v %v %d",
				tt.id, c.PeakValue, c.Sum, c.Volume, tt.peakVal, tt.sum, tt.volume)
		}
		if c.Fragments != 1 {
			t.Errorf("clump %d: Fragments = %d, want 1", tt.id, c.Fragments)
		}
	}
}

func TestExtractClumps_AxisOrder3D(t *testing.T) {
	shape := []int{2, 3, 4}
	g := Grid{Shape: shape, Data: make([]float64, 24)}
	labels := make([]int, 24)
	// Native (1, 2, 3): last axis fastest.
	idx := 1*12 + 2*4 + 3
	g.Data[idx] = 5
	labels[idx] = 1

	clumps := ExtractClumps(g, labels)
	if len(clumps) != 1 {
		t.Fatalf("got %d clumps, want 1", len(clumps))
	}
	c := clumps[0]
	if want := []int{4, 3, 2}; !equalInts(c.Peak, want) {
		t.Errorf("Peak = %v, want %v", c.Peak, want)
	}
	for a, want := range []float64{4, 3, 2} {
		if c.Centroid[a] != want {
			t.Errorf("Centroid[%d] = %v, want %v", a, c.Centroid[a], want)
		}
		if c.Size[a] != 0 {
			t.Errorf("Size[%d] = %v, want 0", a, c.Size[a])
		}
	}
}

func TestExtractClumps_PeakTieFirstInScanOrder(t *testing.T) {
	g := Grid{Shape: []int{2, 2}, Data: []float64{1, 3, 3, 1}}
	clumps := ExtractClumps(g, []int{1, 1, 1, 1})
	if want := []int{2, 1}; !equalInts(clumps[0].Peak, want) {
		t.Errorf("Peak = %v, want %v", clumps[0].Peak, want)
	}
}

func TestExtractClumps_ZeroIntensity(t *testing.T) {
	g := Grid{Shape: []int{1, 4}, Data: []float64{0, 0, 0, 0}}
	clumps := ExtractClumps(g, []int{0, 1, 1, 1})
	c := clumps[0]
	if c.Sum != 0 || c.Volume != 3 {
		t.Fatalf("sum %v volume %d, want 0 and 3", c.Sum, c.Volume)
	}
	// Unweighted mean of columns 2..4, 1-based.
	if c.Centroid[0] != 3 || c.Centroid[1] != 1 {
		t.Errorf("Centroid = %v, want [3 1]", c.Centroid)
	}
	if c.Size[0] != 0 || c.Size[1] != 0 {
		t.Errorf("Size = %v, want zeros", c.Size)
	}
	for _, v := range c.Centroid {
		if math.IsNaN(v) {
			t.Fatal("centroid is NaN")
		}
	}
}

// checkCentroidBounds verifies that every clump centroid lies inside the
// 1-based bounding box of its member cells, fastest-varying axis first.
func checkCentroidBounds(t *testing.T, shape []int, labels []int, clumps []Clump) {
	t.Helper()
	dims := len(shape)
	lo := make([][]int, len(clumps))
	hi := make([][]int, len(clumps))
	coord := make([]int, dims)
	for i, k := range labels {
		if k <= 0 {
			continue
		}
		unravel(i, shape, coord)
		if lo[k-1] == nil {
			lo[k-1] = make([]int, dims)
			hi[k-1] = make([]int, dims)
			for a := range lo[k-1] {
				lo[k-1][a] = math.MaxInt
				hi[k-1][a] = math.MinInt
			}
		}
		for a := 0; a < dims; a++ {
			x := coord[dims-1-a] + 1
			lo[k-1][a] = min(lo[k-1][a], x)
			hi[k-1][a] = max(hi[k-1][a], x)
		}
	}
	for k, c := range clumps {
		if lo[k] == nil {
			t.Errorf("clump %d has no member cells", c.ID)
			continue
		}
		for a, v := range c.Centroid {
			if v < float64(lo[k][a]) || v > float64(hi[k][a]) {
				t.Errorf("clump %d: Centroid[%d] = %v outside [%d, %d]", c.ID, a, v, lo[k][a], hi[k][a])
			}
		}
	}
}

func TestExtractClumps_CentroidWithinMembers(t *testing.T) {
	g := Grid{Shape: []int{3, 4}, Data: []float64{
		0, 0, 0, 0,
		0, 0, 0, 0,
		5, 1, 0, 2,
	}}
	labels := []int{
		1, 1, 0, 2,
		1, 0, 0, 2,
		0, 3, 3, 2,
	}
	clumps := ExtractClumps(g, labels)
	if len(clumps) != 3 {
		t.Fatalf("got %d clumps, want 3", len(clumps))
	}
	// Clump 1 carries no intensity and falls back to the unweighted mean.
	if clumps[0].Sum != 0 {
		t.Fatalf("clump 1 Sum = %v, want 0", clumps[0].Sum)
	}
	if !almostEqual(clumps[0].Centroid[0], 4.0/3, 1e-12) || !almostEqual(clumps[0].Centroid[1], 4.0/3, 1e-12) {
		t.Errorf("clump 1 Centroid = %v, want [4/3 4/3]", clumps[0].Centroid)
	}
	checkCentroidBounds(t, g.Shape, labels, clumps)
}

func TestExtractClumps_NoLabels(t *testing.T) {
	g := Grid{Shape: []int{2, 2}, Data: []float64{1, 2, 3, 4}}
	if clumps := ExtractClumps(g, []int{0, 0, 0, 0}); len(clumps) != 0 {
		t.Errorf("got %d clumps, want 0", len(clumps))
	}
}

func TestExtractClumps_Fragments(t *testing.T) {
	g := Grid{Shape: []int{1, 5}, Data: []float64{1, 1, 0, 1, 1}}
	clumps := ExtractClumps(g, []int{1, 0, 2, 0, 1})
	if clumps[0].Fragments != 2 {
		t.Errorf("clump 1 Fragments = %d, want 2", clumps[0].Fragments)
	}
	if clumps[0].Volume != 2 {
		t.Errorf("clump 1 Volume = %d, want 2", clumps[0].Volume)
	}
	if clumps[1].Fragments != 1 {
		t.Errorf("clump 2 Fragments = %d, want 1", clumps[1].Fragments)
	}
}

func TestCountFragments(t *testing.T) {
	tests := []struct {
		name   string
		shape  []int
		labels []int
		n      int
		want   []int
	}{
		{"diagonal is not connected", []int{2, 2}, []int{1, 0, 0, 1}, 1, []int{2}},
		{"row connected", []int{2, 3}, []int{1, 1, 1, 0, 0, 0}, 1, []int{1}},
		{"column connected", []int{3, 2}, []int{0, 1, 0, 1, 0, 1}, 1, []int{1}},
		{"two labels", []int{2, 3}, []int{1, 2, 1, 1, 2, 1}, 2, []int{2, 1}},
		{"3d slices", []int{2, 1, 2}, []int{1, 0, 1, 0}, 1, []int{1}},
		{"none", []int{2, 2}, []int{0, 0, 0, 0}, 0, []int{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CountFragments(tt.shape, tt.labels, tt.n)
			if !equalInts(got, tt.want) {
				t.Errorf("CountFragments = %v, want %v", got, tt.want)
			}
		})
	}
}
