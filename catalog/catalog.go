// Package catalog writes LDC clump tables: the pixel catalog, the world
// coordinate catalog, and the plain-text detection log.
package catalog

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/TrevorS/ldc"
)

// Header returns the catalog column names for ndim axes:
// ID, Peak1.., Cen1.., Size1.., Peak, Sum, Volume.
func Header(ndim int) []string {
	h := []string{"ID"}
	for _, prefix := range []string{"Peak", "Cen", "Size"} {
		for a := 1; a <= ndim; a++ {
			h = append(h, prefix+strconv.Itoa(a))
		}
	}
	return append(h, "Peak", "Sum", "Volume")
}

// WriteTSV writes clumps as a tab-separated pixel catalog. Coordinates are
// 1-based, fastest-varying axis first; floating-point columns are rounded to
// three decimals.
func WriteTSV(w io.Writer, clumps []ldc.Clump, ndim int) error {
	cw := csv.NewWriter(w)
	cw.Comma = '\t'
	if err := cw.Write(Header(ndim)); err != nil {
		return fmt.Errorf("catalog: write header: %w", err)
	}
	for _, c := range clumps {
		if len(c.Peak) != ndim {
			return fmt.Errorf("catalog: clump %d has %d axes, want %d", c.ID, len(c.Peak), ndim)
		}
		row := []string{strconv.Itoa(c.ID)}
		for _, p := range c.Peak {
			row = append(row, strconv.Itoa(p))
		}
		row = appendFloats(row, c.Centroid)
		row = appendFloats(row, c.Size)
		row = appendFloats(row, []float64{c.PeakValue, c.Sum})
		row = append(row, strconv.Itoa(c.Volume))
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("catalog: write clump %d: %w", c.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func appendFloats(row []string, vs []float64) []string {
	for _, v := range vs {
		row = append(row, formatFloat(v))
	}
	return row
}

// formatFloat rounds to three decimals and drops trailing zeros.
func formatFloat(v float64) string {
	s := strconv.FormatFloat(v, 'f', 3, 64)
	r, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return s
	}
	if r == 0 {
		r = 0 // normalize -0
	}
	return strconv.FormatFloat(r, 'f', -1, 64)
}
