package ldc

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrDimensions indicates a grid that is neither 2D nor 3D.
	ErrDimensions = errors.New("ldc: grid must have 2 or 3 axes")
	// ErrShapeMismatch indicates that len(Data) differs from the product of Shape.
	ErrShapeMismatch = errors.New("ldc: data length does not match shape")
)

// Grid is a scalar field on a regular lattice. Data is flat in C order:
// Shape[0] is the slowest-varying axis and Shape[len(Shape)-1] the fastest.
type Grid struct {
	Shape []int
	Data  []float64
}

// Validate checks that the grid is 2D or 3D with positive axis lengths and
// that Data holds exactly one value per cell.
func (g Grid) Validate() error {
	if len(g.Shape) != 2 && len(g.Shape) != 3 {
		return fmt.Errorf("%w, got %d", ErrDimensions, len(g.Shape))
	}
	for i, s := range g.Shape {
		if s < 1 {
			return fmt.Errorf("ldc: Shape[%d] must be >= 1, got %d", i, s)
		}
	}
	if n := g.NumCells(); len(g.Data) != n {
		return fmt.Errorf("%w: len(Data)=%d, shape %v needs %d", ErrShapeMismatch, len(g.Data), g.Shape, n)
	}
	return nil
}

// NumCells returns the number of cells in the grid.
func (g Grid) NumCells() int {
	n := 1
	for _, s := range g.Shape {
		n *= s
	}
	return n
}

// strides returns the C-order stride of every native axis.
func strides(shape []int) []int {
	st := make([]int, len(shape))
	s := 1
	for a := len(shape) - 1; a >= 0; a-- {
		st[a] = s
		s *= shape[a]
	}
	return st
}

// unravel writes the native-order coordinates of flat index idx into coord.
func unravel(idx int, shape []int, coord []int) {
	for a := len(shape) - 1; a >= 0; a-- {
		coord[a] = idx % shape[a]
		idx /= shape[a]
	}
}

// Sanitize replaces NaN and ±Inf values with zero in place and returns the
// number of values replaced. Detect assumes finite input; readers of real
// cubes should call this first.
func Sanitize(data []float64) int {
	n := 0
	for i, v := range data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			data[i] = 0
			n++
		}
	}
	return n
}
