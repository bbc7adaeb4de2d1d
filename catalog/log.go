package catalog

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/TrevorS/ldc"
)

// WriteWorldTSV writes world-coordinate clumps as a tab-separated catalog
// with the same columns as WriteTSV; the ID column holds the clump name.
func WriteWorldTSV(w io.Writer, clumps []WorldClump, ndim int) error {
	cw := csv.NewWriter(w)
	cw.Comma = '\t'
	if err := cw.Write(Header(ndim)); err != nil {
		return fmt.Errorf("catalog: write header: %w", err)
	}
	for _, c := range clumps {
		row := []string{c.Name}
		row = appendFloats(row, c.Peak)
		row = appendFloats(row, c.Centroid)
		row = appendFloats(row, c.Size)
		row = appendFloats(row, []float64{c.PeakValue, c.Sum})
		row = append(row, strconv.Itoa(c.Volume))
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("catalog: write clump %s: %w", c.Name, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// DetectLog is the content of a detection log.
type DetectLog struct {
	Source string
	RMS    float64
	Shape  []int
	Config ldc.Config

	Detected int
	Interior int
	Local    int
	Timings  ldc.Timings
}

// NewDetectLog fills a DetectLog from a detection result.
func NewDetectLog(source string, rms float64, cfg ldc.Config, res *ldc.Result) DetectLog {
	return DetectLog{
		Source:   source,
		RMS:      rms,
		Shape:    res.Shape,
		Config:   cfg,
		Detected: len(res.Clumps),
		Interior: len(res.Interior),
		Local:    len(res.Local),
		Timings:  res.Timings,
	}
}

const logRule = "===================="

// WriteDetectLog writes the three-section plain-text log: data information,
// algorithm parameters, and detection results.
func WriteDetectLog(w io.Writer, l DetectLog) error {
	var b strings.Builder

	b.WriteString("Data information\n")
	fmt.Fprintf(&b, "data file: %s\n", l.Source)
	fmt.Fprintf(&b, "the rms of data: %.5f\n", l.RMS)
	dims := make([]string, len(l.Shape))
	for i, s := range l.Shape {
		dims[i] = strconv.Itoa(s)
	}
	fmt.Fprintf(&b, "data shape: [%s]\n", strings.Join(dims, " "))
	b.WriteString(logRule + "\n\n")

	b.WriteString("Algorithm parameter information\n")
	c := l.Config
	fmt.Fprintf(&b, "rho_min[%.1f*rms] = %.3f\n", c.RMSTimes, c.RhoMin)
	fmt.Fprintf(&b, "delta_min = %.3f\n", c.DeltaMin)
	fmt.Fprintf(&b, "v_min = %d\n", c.VMin)
	fmt.Fprintf(&b, "gradmin = %.3f\n", c.GradMin)
	fmt.Fprintf(&b, "noise[%.1f*rms] = %.3f\n", c.NoiseTimes, c.Noise)
	if c.Scale > 0 {
		fmt.Fprintf(&b, "scale = %.3f\n", c.Scale)
	} else {
		b.WriteString("scale = adaptive\n")
	}
	b.WriteString(logRule + "\n\n")

	b.WriteString("Detect result\n")
	if rejected := l.Detected - l.Interior; rejected == 0 {
		b.WriteString("0 clumps are rejected.\n")
	} else {
		fmt.Fprintf(&b, "%d clumps are rejected because they touched the border.\n", rejected)
	}
	fmt.Fprintf(&b, "The number of clumps: %d\n", l.Interior)
	fmt.Fprintf(&b, "The number of local region clumps: %d\n", l.Local)
	fmt.Fprintf(&b, "Density is calculated, using %s.\n", seconds(l.Timings.Density))
	fmt.Fprintf(&b, "Delta and gradient are calculated, using %s.\n", seconds(l.Timings.PeakGraph))
	fmt.Fprintf(&b, "Clumps are extracted, using %s.\n", seconds(l.Timings.Clusters))

	_, err := io.WriteString(w, b.String())
	return err
}

func seconds(d time.Duration) string {
	return fmt.Sprintf("%.2f seconds", d.Seconds())
}
