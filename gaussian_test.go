package ldc

import (
	"math"
	"testing"
)

func TestGaussianKernel(t *testing.T) {
	tests := []struct {
		sigma  float64
		radius int
	}{
		{0.3, 1},
		{0.5, 2},
		{0.9, 4},
		{1.0, 4},
		{2.0, 8},
	}
	for _, tt := range tests {
		k := gaussianKernel(tt.sigma)
		if got := len(k) / 2; got != tt.radius {
			t.Errorf("sigma=%v: radius = %d, want %d", tt.sigma, got, tt.radius)
		}
		var sum float64
		for _, w := range k {
			sum += w
		}
		if !almostEqual(sum, 1, 1e-12) {
			t.Errorf("sigma=%v: weights sum to %v, want 1", tt.sigma, sum)
		}
		for i := range k {
			if k[i] != k[len(k)-1-i] {
				t.Errorf("sigma=%v: kernel not symmetric at %d", tt.sigma, i)
			}
		}
	}
}

func TestGaussianSmooth_NonPositiveSigmaCopies(t *testing.T) {
	g := Grid{Shape: []int{2, 2}, Data: []float64{1, 2, 3, 4}}
	out := GaussianSmooth(g, 0)
	for i := range out {
		if out[i] != g.Data[i] {
			t.Errorf("out[%d] = %v, want %v", i, out[i], g.Data[i])
		}
	}
	out[0] = 99
	if g.Data[0] != 1 {
		t.Error("GaussianSmooth returned an alias of the input")
	}
}

func TestGaussianSmooth_ConstantField(t *testing.T) {
	for _, shape := range [][]int{{6, 7}, {3, 4, 5}} {
		g := Grid{Shape: shape}
		g.Data = make([]float64, g.NumCells())
		for i := range g.Data {
			g.Data[i] = 2.5
		}
		out := GaussianSmooth(g, 0.7)
		for i, v := range out {
			if !almostEqual(v, 2.5, 1e-12) {
				t.Fatalf("shape %v: out[%d] = %v, want 2.5", shape, i, v)
			}
		}
	}
}

func TestGaussianSmooth_PointSource(t *testing.T) {
	g := Grid{Shape: []int{9, 9}, Data: make([]float64, 81)}
	g.Data[4*9+4] = 1
	out := GaussianSmooth(g, 1)

	// Interior point source: mass is conserved and the response is the
	// outer product of the 1D kernel with itself.
	var sum float64
	for _, v := range out {
		sum += v
	}
	if !almostEqual(sum, 1, 1e-12) {
		t.Errorf("mass = %v, want 1", sum)
	}
	k := gaussianKernel(1)
	r := len(k) / 2
	if got, want := out[4*9+4], k[r]*k[r]; !almostEqual(got, want, 1e-15) {
		t.Errorf("center = %v, want %v", got, want)
	}
	if got, want := out[4*9+5], k[r]*k[r+1]; !almostEqual(got, want, 1e-15) {
		t.Errorf("right neighbor = %v, want %v", got, want)
	}
	if out[3*9+4] != out[5*9+4] || out[4*9+3] != out[4*9+5] {
		t.Error("response is not symmetric")
	}
}

func TestGaussianSmooth_EdgeClamp(t *testing.T) {
	// A single row with a step at the left edge: clamping repeats the edge
	// value, so the first cell stays above the mean of the row.
	g := Grid{Shape: []int{1, 5}, Data: []float64{4, 0, 0, 0, 0}}
	out := GaussianSmooth(g, 0.5)
	k := gaussianKernel(0.5)
	r := len(k) / 2
	var want float64
	for i := 0; i <= r; i++ {
		want += k[i] * 4
	}
	if !almostEqual(out[0], want, 1e-12) {
		t.Errorf("out[0] = %v, want %v", out[0], want)
	}
	if math.IsNaN(out[4]) || out[4] < 0 {
		t.Errorf("out[4] = %v", out[4])
	}
}
