package ldc

import "math"

// gaussianTruncate is the kernel half-width in standard deviations.
const gaussianTruncate = 4.0

// gaussianKernel returns normalized 1D Gaussian weights for sigma, with
// radius int(4*sigma + 0.5) cells on each side of the center tap.
func gaussianKernel(sigma float64) []float64 {
	radius := int(gaussianTruncate*sigma + 0.5)
	k := make([]float64, 2*radius+1)
	s2 := sigma * sigma
	var sum float64
	for i := -radius; i <= radius; i++ {
		w := math.Exp(-0.5 / s2 * float64(i*i))
		k[i+radius] = w
		sum += w
	}
	for i := range k {
		k[i] /= sum
	}
	return k
}

// GaussianSmooth applies an isotropic Gaussian filter of standard deviation
// sigma (in cells) to the grid, one axis at a time. Out-of-range taps take
// the value of the nearest edge cell. A non-positive sigma returns a copy.
func GaussianSmooth(g Grid, sigma float64) []float64 {
	out := make([]float64, len(g.Data))
	copy(out, g.Data)
	if sigma <= 0 || len(out) == 0 {
		return out
	}

	kernel := gaussianKernel(sigma)
	st := strides(g.Shape)
	buf := make([]float64, len(out))
	for a := range g.Shape {
		smoothAxis(out, buf, g.Shape[a], st[a], kernel)
		out, buf = buf, out
	}
	return out
}

// smoothAxis correlates src with kernel along one axis of length n and
// stride stride, writing to dst. Indices past either end clamp to the edge.
func smoothAxis(src, dst []float64, n, stride int, kernel []float64) {
	r := len(kernel) / 2
	for idx := range src {
		c := (idx / stride) % n
		base := idx - c*stride
		var acc float64
		for k, w := range kernel {
			j := c + k - r
			if j < 0 {
				j = 0
			} else if j >= n {
				j = n - 1
			}
			acc += w * src[base+j*stride]
		}
		dst[idx] = acc
	}
}
