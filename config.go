package ldc

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"
)

// IndexKind selects the spatial index used for neighbor searches.
type IndexKind string

const (
	IndexAuto     IndexKind = "auto"
	IndexKDTree   IndexKind = "kdtree"
	IndexBallTree IndexKind = "balltree"
)

// Config controls LDC detection behavior.
// Start with [DefaultConfig] and override the fields you need.
type Config struct {
	// RhoMin is the minimum density for a cluster center. It should be above
	// Noise; when it is not, detection still runs but finds nothing useful.
	RhoMin float64 `yaml:"rho_min"`

	// DeltaMin is both the search radius for the nearest denser neighbor and
	// the minimum distance a center must keep from any denser cell.
	// Default: 4.
	DeltaMin float64 `yaml:"delta_min"`

	// VMin is the minimum clump volume in cells, applied before and after
	// boundary trimming. Must be >= 0. Default: 27.
	VMin int `yaml:"v_min"`

	// GradMin is the minimum normalized gradient (gradient divided by the
	// cluster's density range) for a cell to survive trimming on gradient
	// grounds alone. Default: 0.01.
	GradMin float64 `yaml:"gradmin"`

	// Noise is the density floor. Cells at or below it are not indexed and
	// never join a clump.
	Noise float64 `yaml:"noise"`

	// Scale fixes the Gaussian smoothing sigma (in cells) used for the density
	// field. 0 selects the scale per cell from the sweep 0.30..0.90.
	// Must be >= 0. Default: 0.
	Scale float64 `yaml:"scale"`

	// RMSTimes and NoiseTimes turn a background RMS into RhoMin and Noise
	// when ApplyRMS is called. Defaults: 3 and 2.
	RMSTimes   float64 `yaml:"rms_times"`
	NoiseTimes float64 `yaml:"noise_times"`

	// RejectEdgeClumps drops clumps touching the grid border from
	// Result.Interior. Result.Clumps always keeps every labeled clump.
	// Default: true.
	RejectEdgeClumps bool `yaml:"reject_edge_clumps"`

	// LocalMargins restricts Result.Local to interior clumps whose centroid
	// lies more than LocalMargins[a] cells away from both ends of axis a
	// (fastest-varying axis first). Empty means Local equals Interior.
	// Default: empty, for any grid size. Survey cubes usually set
	// [30, 30, 60] to drop the overlap with neighboring cells.
	LocalMargins []int `yaml:"local_margins"`

	// Index selects the spatial index. Default: "auto" (KD-tree).
	Index IndexKind `yaml:"index"`

	// LeafSize controls the maximum number of points in a spatial tree leaf.
	// Default: 40.
	LeafSize int `yaml:"leaf_size"`

	// Workers controls the number of goroutines for the smoothing sweep and
	// the peak graph. 0 means use runtime.NumCPU(). Results do not depend on
	// the worker count.
	Workers int `yaml:"workers"`

	// Cache, when set, is consulted before estimating the density field and
	// filled afterwards.
	Cache DensityCache `yaml:"-" json:"-"`
}

// DefaultConfig returns a Config with the defaults used for molecular line
// cubes. RhoMin and Noise are zero; set them directly or through ApplyRMS.
func DefaultConfig() Config {
	return Config{
		DeltaMin:         4,
		VMin:             27,
		GradMin:          0.01,
		RMSTimes:         3,
		NoiseTimes:       2,
		RejectEdgeClumps: true,
		Index:            IndexAuto,
		LeafSize:         40,
	}
}

// ApplyRMS derives RhoMin and Noise from a background RMS using the
// RMSTimes and NoiseTimes multipliers.
func (c *Config) ApplyRMS(rms float64) {
	if c.RMSTimes == 0 {
		c.RMSTimes = 3
	}
	if c.NoiseTimes == 0 {
		c.NoiseTimes = 2
	}
	c.RhoMin = rms * c.RMSTimes
	c.Noise = rms * c.NoiseTimes
}

// LoadConfig reads a YAML parameter file on top of DefaultConfig. Keys that
// are absent keep their default values.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return cfg, fmt.Errorf("ldc: read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("ldc: parse config %s: %w", path, err)
	}
	applyDefaults(&cfg)
	if err := validateConfig(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// validateConfig checks that cfg fields are structurally valid. Parameter
// combinations that merely produce an empty detection (RhoMin <= Noise,
// DeltaMin <= 0) are accepted.
func validateConfig(cfg *Config) error {
	params := []struct {
		name string
		v    float64
	}{
		{"RhoMin", cfg.RhoMin}, {"DeltaMin", cfg.DeltaMin},
		{"GradMin", cfg.GradMin}, {"Noise", cfg.Noise}, {"Scale", cfg.Scale},
	}
	for _, p := range params {
		if math.IsNaN(p.v) || math.IsInf(p.v, 0) {
			return fmt.Errorf("ldc: %s must be finite, got %f", p.name, p.v)
		}
	}
	if cfg.VMin < 0 {
		return fmt.Errorf("ldc: VMin must be >= 0, got %d", cfg.VMin)
	}
	if cfg.Scale < 0 {
		return fmt.Errorf("ldc: Scale must be >= 0 (0 means adaptive), got %f", cfg.Scale)
	}
	if cfg.Workers < 0 {
		return fmt.Errorf("ldc: Workers must be >= 0 (0 means NumCPU), got %d", cfg.Workers)
	}
	switch cfg.Index {
	case IndexAuto, IndexKDTree, IndexBallTree:
		// valid
	default:
		return fmt.Errorf("ldc: invalid Index %q", cfg.Index)
	}
	if cfg.LeafSize < 1 {
		return fmt.Errorf("ldc: LeafSize must be >= 1, got %d", cfg.LeafSize)
	}
	for i, m := range cfg.LocalMargins {
		if m < 0 {
			return fmt.Errorf("ldc: LocalMargins[%d] must be >= 0, got %d", i, m)
		}
	}
	return nil
}

// applyDefaults fills in zero-valued config fields with their defaults.
func applyDefaults(cfg *Config) {
	if cfg.Index == "" {
		cfg.Index = IndexAuto
	}
	if cfg.LeafSize == 0 {
		cfg.LeafSize = 40
	}
	if cfg.Workers == 0 {
		cfg.Workers = runtime.NumCPU()
	}
}
