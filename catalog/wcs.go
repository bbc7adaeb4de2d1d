package catalog

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/TrevorS/ldc"
	"gopkg.in/yaml.v3"
)

// LinearWCS maps 1-based pixel coordinates to world coordinates with a
// linear projection per axis: world = CRVAL + (pixel - CRPIX) * CDELT. Axes
// are listed fastest-varying first (longitude, latitude, velocity for a
// position-position-velocity cube).
type LinearWCS struct {
	CRVAL []float64 `yaml:"crval"`
	CRPIX []float64 `yaml:"crpix"`
	CDELT []float64 `yaml:"cdelt"`
}

// Units scales pixel sizes into world units and converts the velocity axis.
type Units struct {
	// SizeScale multiplies Size along each axis.
	SizeScale []float64 `yaml:"size_scale"`
	// VelocityDivisor divides the third world axis, e.g. m/s to km/s.
	VelocityDivisor float64 `yaml:"velocity_divisor"`
}

// DefaultUnits returns the survey units: 30 arcsec per spatial pixel,
// 0.166 km/s per channel, velocities stored in m/s.
func DefaultUnits(ndim int) Units {
	u := Units{SizeScale: []float64{30, 30}, VelocityDivisor: 1000}
	if ndim == 3 {
		u.SizeScale = append(u.SizeScale, 0.166)
	}
	return u
}

// wcsFile is the on-disk layout read by LoadWCS.
type wcsFile struct {
	WCS   LinearWCS `yaml:"wcs"`
	Units *Units    `yaml:"units"`
}

// LoadWCS reads a YAML file holding a "wcs" block and an optional "units"
// block. Missing units fall back to DefaultUnits.
func LoadWCS(path string) (LinearWCS, Units, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return LinearWCS{}, Units{}, fmt.Errorf("catalog: read wcs: %w", err)
	}
	var f wcsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return LinearWCS{}, Units{}, fmt.Errorf("catalog: parse wcs %s: %w", path, err)
	}
	n := len(f.WCS.CRVAL)
	if n != 2 && n != 3 {
		return LinearWCS{}, Units{}, fmt.Errorf("catalog: wcs must have 2 or 3 axes, got %d", n)
	}
	if len(f.WCS.CRPIX) != n || len(f.WCS.CDELT) != n {
		return LinearWCS{}, Units{}, fmt.Errorf("catalog: wcs crval/crpix/cdelt lengths differ")
	}
	units := DefaultUnits(n)
	if f.Units != nil {
		units = *f.Units
		if len(units.SizeScale) != n {
			return LinearWCS{}, Units{}, fmt.Errorf("catalog: units.size_scale has %d entries, want %d", len(units.SizeScale), n)
		}
		if n == 3 && units.VelocityDivisor == 0 {
			units.VelocityDivisor = 1
		}
	}
	return f.WCS, units, nil
}

// PixToWorld converts a 1-based pixel coordinate along axis a.
func (w LinearWCS) PixToWorld(a int, p float64) float64 {
	return w.CRVAL[a] + (p-w.CRPIX[a])*w.CDELT[a]
}

// NumAxes returns the number of axes the projection covers.
func (w LinearWCS) NumAxes() int { return len(w.CRVAL) }

// WorldClump is a clump in world coordinates.
type WorldClump struct {
	ID        int
	Name      string
	Peak      []float64
	Centroid  []float64
	Size      []float64
	PeakValue float64
	Sum       float64
	Volume    int
}

// ToWorld converts pixel clumps to world coordinates.
func ToWorld(clumps []ldc.Clump, wcs LinearWCS, units Units) ([]WorldClump, error) {
	n := wcs.NumAxes()
	out := make([]WorldClump, 0, len(clumps))
	for _, c := range clumps {
		if len(c.Peak) != n {
			return nil, fmt.Errorf("catalog: clump %d has %d axes, wcs has %d", c.ID, len(c.Peak), n)
		}
		wc := WorldClump{
			ID:        c.ID,
			Peak:      make([]float64, n),
			Centroid:  make([]float64, n),
			Size:      make([]float64, n),
			PeakValue: c.PeakValue,
			Sum:       c.Sum,
			Volume:    c.Volume,
		}
		for a := 0; a < n; a++ {
			wc.Peak[a] = wcs.PixToWorld(a, float64(c.Peak[a]))
			wc.Centroid[a] = wcs.PixToWorld(a, c.Centroid[a])
			wc.Size[a] = c.Size[a] * units.SizeScale[a]
		}
		if n == 3 && units.VelocityDivisor != 0 {
			wc.Peak[2] /= units.VelocityDivisor
			wc.Centroid[2] /= units.VelocityDivisor
		}
		wc.Name = ClumpName(wc.Centroid)
		out = append(out, wc)
	}
	return out, nil
}

// ClumpName builds the survey designation from a world centroid, e.g.
// MWISP017.558+00.150+20.170 for l=17.558, b=0.15, v=20.17.
func ClumpName(cen []float64) string {
	name := fmt.Sprintf("MWISP%07.3f", cen[0])
	for _, v := range cen[1:] {
		sign := "+"
		if v < 0 {
			sign = "-"
			v = -v
		}
		name += fmt.Sprintf("%s%06.3f", sign, v)
	}
	return name
}
