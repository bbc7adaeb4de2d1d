package ldc

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Adaptive scale sweep. Downstream thresholds are calibrated against these
// exact values, including the float64 rounding of (stop-start)/step to
// 60.00000000000001 that yields 61 scales. They are variables so the count is
// computed in float64 at run time; untyped constants would fold exactly to 60.
var (
	scaleStart = 0.30
	scaleStop  = 0.90
	scaleStep  = 0.01
)

// DensityCache stores density fields between runs, keyed by DensityKey.
type DensityCache interface {
	// LoadDensity returns the cached field for key, or ok=false on a miss.
	LoadDensity(key string) (rho []float64, ok bool, err error)
	// StoreDensity saves the field for key, replacing any previous entry.
	StoreDensity(key string, rho []float64) error
}

// DensityScales returns the smoothing scales tried by the adaptive density
// estimate: start + i*step for i < ceil((stop-start)/step).
func DensityScales() []float64 {
	n := int(math.Ceil((scaleStop - scaleStart) / scaleStep))
	scales := make([]float64, n)
	for i := range scales {
		scales[i] = scaleStart + float64(i)*scaleStep
	}
	return scales
}

// EstimateDensity returns one density value per cell. With scale > 0 the
// grid is smoothed once at that sigma. Otherwise the grid is smoothed at
// every scale of DensityScales and each cell keeps the smoothed value closest
// to its own mean across scales (the first such scale on ties).
func EstimateDensity(g Grid, scale float64, workers int) []float64 {
	if scale > 0 {
		return GaussianSmooth(g, scale)
	}

	scales := DensityScales()
	nd := len(g.Data)

	// The per-scale stack is kept in single precision. The cross-scale mean
	// and deviations are taken in float64 over those samples, so a cell whose
	// two closest scales tie to within float32 rounding may pick the other
	// one than a float32 reduction would.
	stack := make([][]float32, len(scales))
	parallelRange(len(scales), workers, func(start, end int) {
		for s := start; s < end; s++ {
			sm := GaussianSmooth(g, scales[s])
			f := make([]float32, nd)
			for i, v := range sm {
				f[i] = float32(v)
			}
			stack[s] = f
		}
	})

	rho := make([]float64, nd)
	parallelRange(nd, workers, func(start, end int) {
		col := make([]float64, len(scales))
		dev := make([]float64, len(scales))
		for i := start; i < end; i++ {
			for s := range stack {
				col[s] = float64(stack[s][i])
			}
			mean := stat.Mean(col, nil)
			for s, v := range col {
				dev[s] = math.Abs(v - mean)
			}
			rho[i] = col[floats.MinIdx(dev)]
		}
	})
	return rho
}

// DensityKey identifies the density field of g at the given fixed scale
// (0 for the adaptive sweep). It hashes the shape, every data value, and
// the scale parameters.
func DensityKey(g Grid, scale float64) string {
	h := sha256.New()
	var b [8]byte
	for _, s := range g.Shape {
		binary.LittleEndian.PutUint64(b[:], uint64(s))
		h.Write(b[:])
	}
	for _, p := range []float64{scale, scaleStart, scaleStop, scaleStep} {
		binary.LittleEndian.PutUint64(b[:], math.Float64bits(p))
		h.Write(b[:])
	}
	for _, v := range g.Data {
		binary.LittleEndian.PutUint64(b[:], math.Float64bits(v))
		h.Write(b[:])
	}
	return hex.EncodeToString(h.Sum(nil))
}
