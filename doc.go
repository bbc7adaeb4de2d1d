// Package ldc implements local density clustering (LDC) for detecting compact
// clumps in a scalar field sampled on a regular 2D or 3D grid, such as an
// astronomical position-position-velocity cube.
//
// LDC is a density-peak method. Every cell gets a smoothed density, every cell
// above the noise floor is linked to its nearest strictly-denser neighbor
// within a search radius, cells that are both dense and far from anything
// denser become cluster centers, and labels flow down the resulting forest in
// density order. A gradient/density filter then trims each cluster before
// per-clump statistics are measured on the original intensities.
//
// Basic usage:
//
//	cfg := ldc.DefaultConfig()
//	cfg.ApplyRMS(0.23) // rho_min = 3*rms, noise = 2*rms
//	result, err := ldc.Detect(ldc.Grid{Shape: []int{nv, ny, nx}, Data: cube}, cfg)
//	// result.Labels[i] is the clump ID of cell i (0 = background)
//	// result.Clumps[k-1] describes clump k in 1-based pixel coordinates
//
// # Axis order
//
// Grid data is flat in C order: Shape lists the slowest-varying axis first.
// Clump coordinates are reported the other way around, fastest-varying axis
// first, so Peak[0], Centroid[0] and Size[0] refer to the last entry of Shape.
//
// # Spatial index
//
// Neighbor searches use a KD-tree by default. Set Config.Index to force a
// specific structure:
//
//	cfg.Index = ldc.IndexKDTree   // axis-aligned bounding boxes
//	cfg.Index = ldc.IndexBallTree // centroid + radius bounds
package ldc
