// Command ldc detects clumps in a 2D image or 3D cube with local density
// clustering and writes the label mask, catalogs, and a detection log.
//
// Usage:
//
//	ldc -grid cube.json -out result/ [-config params.yaml] [-rms 0.23]
//	    [-wcs wcs.yaml] [-db ldc.db] [-plot] [-workers 8] [-v]
//
// The grid file is JSON: {"shape": [nv, ny, nx], "data": [...]} with data in
// C order (x fastest). Null values are read as zero.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/TrevorS/ldc"
	"github.com/TrevorS/ldc/catalog"
	"github.com/TrevorS/ldc/render"
	"github.com/TrevorS/ldc/store"
)

// defaultRMS is used when neither -rms nor the config file sets thresholds.
const defaultRMS = 0.23

type options struct {
	gridPath   string
	configPath string
	wcsPath    string
	dbPath     string
	outDir     string
	rms        float64
	plot       bool
	workers    int
	verbose    bool
}

func main() {
	log.SetPrefix("[ldc] ")
	var opts options
	flag.StringVar(&opts.gridPath, "grid", "", "input grid JSON file (required)")
	flag.StringVar(&opts.configPath, "config", "", "YAML parameter file")
	flag.StringVar(&opts.wcsPath, "wcs", "", "YAML linear WCS; enables catalog_wcs.tsv")
	flag.StringVar(&opts.dbPath, "db", "", "SQLite file for the density cache and run archive")
	flag.StringVar(&opts.outDir, "out", ".", "output directory")
	flag.Float64Var(&opts.rms, "rms", 0, "background rms; sets rho_min and noise from rms_times and noise_times")
	flag.BoolVar(&opts.plot, "plot", false, "write map.png with clump centroids")
	flag.IntVar(&opts.workers, "workers", 0, "worker goroutines (0 = NumCPU)")
	flag.BoolVar(&opts.verbose, "v", false, "log per-stage timings")
	flag.Parse()

	if opts.gridPath == "" {
		flag.Usage()
		os.Exit(2)
	}
	if err := run(context.Background(), opts); err != nil {
		log.Fatalf("%v", err)
	}
}

// gridFile is the JSON layout of an input grid.
type gridFile struct {
	Shape []int      `json:"shape"`
	Data  []*float64 `json:"data"`
}

func readGrid(path string) (ldc.Grid, error) {
	raw, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return ldc.Grid{}, fmt.Errorf("read grid: %w", err)
	}
	var f gridFile
	if err := json.Unmarshal(raw, &f); err != nil {
		return ldc.Grid{}, fmt.Errorf("parse grid %s: %w", path, err)
	}
	g := ldc.Grid{Shape: f.Shape, Data: make([]float64, len(f.Data))}
	for i, v := range f.Data {
		if v != nil {
			g.Data[i] = *v
		}
	}
	if n := ldc.Sanitize(g.Data); n > 0 {
		log.Printf("replaced %d non-finite values with 0", n)
	}
	return g, g.Validate()
}

func run(ctx context.Context, opts options) error {
	if opts.verbose {
		ldc.SetDebugLogger(os.Stderr)
	}

	g, err := readGrid(opts.gridPath)
	if err != nil {
		return err
	}
	log.Printf("grid %s: shape %v", opts.gridPath, g.Shape)

	cfg := ldc.DefaultConfig()
	if opts.configPath != "" {
		if cfg, err = ldc.LoadConfig(opts.configPath); err != nil {
			return err
		}
	}
	rms := opts.rms
	switch {
	case rms > 0:
		cfg.ApplyRMS(rms)
	case cfg.RhoMin == 0 && cfg.Noise == 0:
		rms = defaultRMS
		cfg.ApplyRMS(rms)
		log.Printf("no rms given, using %.2f", rms)
	}
	if opts.workers > 0 {
		cfg.Workers = opts.workers
	}

	var st *store.Store
	if opts.dbPath != "" {
		if st, err = store.Open(opts.dbPath); err != nil {
			return err
		}
		defer st.Close()
		cfg.Cache = st
	}

	res, err := ldc.Detect(g, cfg)
	if err != nil {
		return err
	}
	log.Printf("%d clumps detected, %d interior, %d local", len(res.Clumps), len(res.Interior), len(res.Local))

	if err := os.MkdirAll(opts.outDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if err := writeOutputs(opts, g, cfg, rms, res); err != nil {
		return err
	}

	if st != nil {
		runID, err := st.SaveRun(ctx, opts.gridPath, cfg, res.Interior)
		if err != nil {
			return err
		}
		log.Printf("archived run %s", runID)
	}
	return nil
}

func writeOutputs(opts options, g ldc.Grid, cfg ldc.Config, rms float64, res *ldc.Result) error {
	ndim := len(g.Shape)
	out := func(name string) string { return filepath.Join(opts.outDir, name) }

	labels, err := json.Marshal(struct {
		Shape  []int `json:"shape"`
		Labels []int `json:"labels"`
	}{res.Shape, res.Labels})
	if err != nil {
		return fmt.Errorf("encode labels: %w", err)
	}
	if err := os.WriteFile(out("labels.json"), labels, 0o644); err != nil {
		return fmt.Errorf("write labels: %w", err)
	}

	if err := writeFile(out("catalog.tsv"), func(f *os.File) error {
		return catalog.WriteTSV(f, res.Interior, ndim)
	}); err != nil {
		return err
	}
	if err := writeFile(out("catalog_local.tsv"), func(f *os.File) error {
		return catalog.WriteTSV(f, res.Local, ndim)
	}); err != nil {
		return err
	}

	if opts.wcsPath != "" {
		wcs, units, err := catalog.LoadWCS(opts.wcsPath)
		if err != nil {
			return err
		}
		world, err := catalog.ToWorld(res.Interior, wcs, units)
		if err != nil {
			return err
		}
		if err := writeFile(out("catalog_wcs.tsv"), func(f *os.File) error {
			return catalog.WriteWorldTSV(f, world, ndim)
		}); err != nil {
			return err
		}
	}

	if err := writeFile(out("detect.log"), func(f *os.File) error {
		return catalog.WriteDetectLog(f, catalog.NewDetectLog(opts.gridPath, rms, cfg, res))
	}); err != nil {
		return err
	}

	if opts.plot {
		m, err := render.IntegratedMap(g)
		if err != nil {
			return err
		}
		if err := render.SavePNG(out("map.png"), m, res.Interior, filepath.Base(opts.gridPath)); err != nil {
			return err
		}
	}
	return nil
}

// writeFile creates path and hands it to fn, reporting the first error from
// either fn or Close.
func writeFile(path string, fn func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := fn(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}
