package ldc

import (
	"fmt"
	"time"
)

// Result contains the output of LDC detection.
type Result struct {
	// Shape is the native shape of the grid the labels belong to.
	Shape []int

	// Labels assigns each cell (flat C order) to a clump ID, or 0 for
	// background. Every ID in 1..len(Clumps) occurs.
	Labels []int

	// Clumps describes every labeled clump; Clumps[k-1].ID == k.
	Clumps []Clump

	// Interior is Clumps without the clumps touching the grid border, or
	// Clumps itself when Config.RejectEdgeClumps is false.
	Interior []Clump

	// Local is Interior restricted by Config.LocalMargins.
	Local []Clump

	// Density is the estimated density of every cell.
	Density []float64

	// Graph is the nearest-denser-neighbor forest the clusters grew along.
	Graph *PeakGraph

	// Centers lists the flat index of every preliminary cluster center,
	// before boundary trimming.
	Centers []int

	Timings Timings
}

// Timings records wall-clock time spent in each phase of Detect.
type Timings struct {
	Density   time.Duration
	PeakGraph time.Duration
	Clusters  time.Duration
}

// Detect runs the full pipeline on g: density estimation, neighbor index,
// peak graph, center selection and propagation, boundary trimming and clump
// extraction. It returns an error only for a malformed grid or config; a
// grid with nothing above the noise floor yields a Result with no clumps.
//
// Detect treats g as read-only. Non-finite values must be removed first
// (see Sanitize).
func Detect(g Grid, cfg Config) (*Result, error) {
	applyDefaults(&cfg)
	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}

	t0 := time.Now()
	rho, err := densityField(g, cfg)
	if err != nil {
		return nil, err
	}
	tDensity := time.Since(t0)

	t0 = time.Now()
	cells, coords := IndexCells(g.Shape, rho, cfg.Noise)
	tree, err := NewSpatialIndex(cfg.Index, coords, len(cells), len(g.Shape), cfg.LeafSize)
	if err != nil {
		return nil, err
	}
	if nc, ok := tree.(interface{ NumNodes() int }); ok {
		debugf("index: %s over %d cells, %d nodes", cfg.Index, len(cells), nc.NumNodes())
	}
	pg := ComputePeakGraph(tree, cells, rho, cfg.DeltaMin, cfg.Workers)
	tGraph := time.Since(t0)
	debugf("peak graph: %d of %d cells above noise %.4g, %.2fs",
		len(cells), len(rho), cfg.Noise, tGraph.Seconds())

	t0 = time.Now()
	asg := AssignClusters(rho, pg, cfg.RhoMin, cfg.DeltaMin)
	labels := RefineBoundaries(rho, asg, cfg.VMin, cfg.GradMin)
	// Fragmented clumps stay under one ID; see Clump.Fragments.
	clumps := ExtractClumps(g, labels)
	tClusters := time.Since(t0)

	interior := clumps
	if cfg.RejectEdgeClumps {
		interior = RejectEdgeClumps(clumps, g.Shape)
	}
	local := LocalClumps(interior, g.Shape, cfg.LocalMargins)
	debugf("clusters: %d centers, %d clumps, %d interior, %d local, %.2fs",
		len(asg.Centers), len(clumps), len(interior), len(local), tClusters.Seconds())

	shape := make([]int, len(g.Shape))
	copy(shape, g.Shape)
	return &Result{
		Shape:    shape,
		Labels:   labels,
		Clumps:   clumps,
		Interior: interior,
		Local:    local,
		Density:  rho,
		Graph:    pg,
		Centers:  asg.Centers,
		Timings: Timings{
			Density:   tDensity,
			PeakGraph: tGraph,
			Clusters:  tClusters,
		},
	}, nil
}

// densityField estimates the density of g, going through cfg.Cache when set.
func densityField(g Grid, cfg Config) ([]float64, error) {
	if cfg.Cache == nil {
		return EstimateDensity(g, cfg.Scale, cfg.Workers), nil
	}

	key := DensityKey(g, cfg.Scale)
	rho, ok, err := cfg.Cache.LoadDensity(key)
	if err != nil {
		return nil, fmt.Errorf("ldc: load cached density: %w", err)
	}
	if ok && len(rho) == len(g.Data) {
		debugf("density: cache hit %s", key[:12])
		return rho, nil
	}

	rho = EstimateDensity(g, cfg.Scale, cfg.Workers)
	if err := cfg.Cache.StoreDensity(key, rho); err != nil {
		return nil, fmt.Errorf("ldc: store density: %w", err)
	}
	return rho, nil
}
