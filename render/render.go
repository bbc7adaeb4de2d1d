// Package render draws quick-look images of LDC detections: an integrated
// intensity map with the clump centroids marked on top.
package render

import (
	"fmt"
	"image/color"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/TrevorS/ldc"
)

// Map is a 2D intensity image in C order. It implements plotter.GridXYZ with
// 1-based pixel coordinates, matching clump centroids.
type Map struct {
	Rows, Cols int
	Data       []float64
}

// Dims implements plotter.GridXYZ.
func (m Map) Dims() (c, r int) { return m.Cols, m.Rows }

// Z implements plotter.GridXYZ.
func (m Map) Z(c, r int) float64 { return m.Data[r*m.Cols+c] }

// X implements plotter.GridXYZ.
func (m Map) X(c int) float64 { return float64(c + 1) }

// Y implements plotter.GridXYZ.
func (m Map) Y(r int) float64 { return float64(r + 1) }

// IntegratedMap collapses g to two dimensions. A cube is summed along its
// slowest-varying axis; a 2D grid is copied.
func IntegratedMap(g ldc.Grid) (Map, error) {
	if err := g.Validate(); err != nil {
		return Map{}, err
	}
	if len(g.Shape) == 2 {
		data := make([]float64, len(g.Data))
		copy(data, g.Data)
		return Map{Rows: g.Shape[0], Cols: g.Shape[1], Data: data}, nil
	}

	rows, cols := g.Shape[1], g.Shape[2]
	plane := rows * cols
	m := Map{Rows: rows, Cols: cols, Data: make([]float64, plane)}
	for k := 0; k < g.Shape[0]; k++ {
		floats.Add(m.Data, g.Data[k*plane:(k+1)*plane])
	}
	return m, nil
}

// SavePNG draws m as a heat map, marks the centroid of every clump with a
// cross, and writes the image to path. The file format follows the path
// extension.
func SavePNG(path string, m Map, clumps []ldc.Clump, title string) error {
	if m.Rows < 1 || m.Cols < 1 || len(m.Data) != m.Rows*m.Cols {
		return fmt.Errorf("render: map %dx%d with %d values", m.Rows, m.Cols, len(m.Data))
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "x (pixel)"
	p.Y.Label.Text = "y (pixel)"

	hm := plotter.NewHeatMap(m, palette.Heat(12, 1))
	if hm.Min == hm.Max {
		hm.Max = hm.Min + 1
	}
	p.Add(hm)

	if len(clumps) > 0 {
		pts := make(plotter.XYs, len(clumps))
		for i, c := range clumps {
			pts[i].X = c.Centroid[0]
			pts[i].Y = c.Centroid[1]
		}
		sc, err := plotter.NewScatter(pts)
		if err != nil {
			return fmt.Errorf("render: centroids: %w", err)
		}
		sc.GlyphStyle.Shape = draw.CrossGlyph{}
		sc.GlyphStyle.Radius = vg.Points(4)
		sc.GlyphStyle.Color = color.RGBA{R: 30, G: 144, B: 255, A: 255}
		p.Add(sc)
	}

	width := 8 * vg.Inch
	height := width * vg.Length(m.Rows) / vg.Length(m.Cols)
	if height < 3*vg.Inch {
		height = 3 * vg.Inch
	}
	if err := p.Save(width, height, path); err != nil {
		return fmt.Errorf("render: save %s: %w", path, err)
	}
	return nil
}
