package ldc

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// fwhmFactor converts a Gaussian standard deviation to a full width at half
// maximum.
const fwhmFactor = 2.3548

// Clump is one detected region. Coordinates are 1-based pixel positions
// listed fastest-varying axis first.
type Clump struct {
	ID int
	// Peak is the position of the brightest cell; on ties, the first in
	// C-order scan.
	Peak []int
	// Centroid is the intensity-weighted mean position.
	Centroid []float64
	// Size is the intensity-weighted FWHM along each axis.
	Size      []float64
	PeakValue float64
	Sum       float64
	Volume    int
	// Fragments is the number of face-connected pieces of the clump mask.
	// Labels are taken as given, so a value above 1 means the clump is
	// spatially disjoint.
	Fragments int
}

// ExtractClumps measures every positive label of labels over the intensity
// grid g. labels must be dense (1..n with no gaps); clump k is returned at
// index k-1. Statistics use the label mask as given and do not re-derive
// connectivity.
func ExtractClumps(g Grid, labels []int) []Clump {
	n := 0
	for _, k := range labels {
		if k > n {
			n = k
		}
	}
	if n == 0 {
		return nil
	}

	dims := len(g.Shape)
	clumps := make([]Clump, n)
	first := make([][]float64, n) // Σ v·x per axis
	plain := make([][]float64, n) // Σ x per axis, for zero-weight clumps
	for k := range clumps {
		clumps[k] = Clump{
			ID:        k + 1,
			Peak:      make([]int, dims),
			Centroid:  make([]float64, dims),
			Size:      make([]float64, dims),
			PeakValue: math.Inf(-1),
		}
		first[k] = make([]float64, dims)
		plain[k] = make([]float64, dims)
	}

	coord := make([]int, dims)
	for i, k := range labels {
		if k <= 0 {
			continue
		}
		c := &clumps[k-1]
		v := g.Data[i]
		unravel(i, g.Shape, coord)
		c.Volume++
		c.Sum += v
		if v > c.PeakValue {
			c.PeakValue = v
			for a := 0; a < dims; a++ {
				c.Peak[a] = coord[dims-1-a] + 1
			}
		}
		for a := 0; a < dims; a++ {
			x := float64(coord[dims-1-a])
			first[k-1][a] += v * x
			plain[k-1][a] += x
		}
	}

	for k := range clumps {
		c := &clumps[k]
		if c.Sum > 0 {
			floats.ScaleTo(c.Centroid, 1/c.Sum, first[k])
		} else {
			floats.ScaleTo(c.Centroid, 1/float64(c.Volume), plain[k])
		}
	}

	second := make([][]float64, n)
	for k := range second {
		second[k] = make([]float64, dims)
	}
	for i, k := range labels {
		if k <= 0 {
			continue
		}
		v := g.Data[i]
		unravel(i, g.Shape, coord)
		cen := clumps[k-1].Centroid
		for a := 0; a < dims; a++ {
			d := float64(coord[dims-1-a]) - cen[a]
			second[k-1][a] += v * d * d
		}
	}

	frags := CountFragments(g.Shape, labels, n)
	for k := range clumps {
		c := &clumps[k]
		if c.Sum > 0 {
			for a := 0; a < dims; a++ {
				c.Size[a] = fwhmFactor * math.Sqrt(second[k][a]/c.Sum)
			}
		}
		floats.AddConst(1, c.Centroid)
		c.Fragments = frags[k]
	}

	return clumps
}
