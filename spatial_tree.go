package ldc

import "fmt"

// NodeData describes a single node in a spatial tree.
type NodeData struct {
	IdxStart, IdxEnd int
	IsLeaf           bool
	Radius           float64 // ball tree radius; 0 for KD-tree
}

// SpatialIndex answers fixed-radius Euclidean queries over a point set.
// Point i of the index is row i of the flat row-major data it was built from.
type SpatialIndex interface {
	// QueryRadius returns the indices of all points within Euclidean
	// distance r of point (boundary inclusive), in ascending index order.
	QueryRadius(point []float64, r float64) []int

	// Data returns the flat row-major point data owned by the tree.
	Data() []float64

	// NumFeatures returns the dimensionality of each point.
	NumFeatures() int
}

// NewSpatialIndex builds the index selected by kind over n points of
// dimensionality dims. IndexAuto builds a KD-tree, which suits the
// low-dimensional lattice coordinates LDC searches over.
func NewSpatialIndex(kind IndexKind, data []float64, n, dims, leafSize int) (SpatialIndex, error) {
	switch kind {
	case IndexAuto, IndexKDTree:
		return NewKDTree(data, n, dims, leafSize), nil
	case IndexBallTree:
		return NewBallTree(data, n, dims, leafSize), nil
	default:
		return nil, fmt.Errorf("ldc: invalid Index %q", kind)
	}
}

// treeMaxNodes returns an upper bound on the number of nodes needed for a
// binary tree with n points and the given leaf size.
func treeMaxNodes(n, leafSize int) int {
	if n == 0 {
		return 1
	}
	// Depth of tree: ceil(log2(ceil(n/leafSize))) + 1.
	// Number of nodes in a complete binary tree of depth d = 2^(d+1) - 1.
	leaves := (n + leafSize - 1) / leafSize
	depth := 0
	v := 1
	for v < leaves {
		v *= 2
		depth++
	}
	return (1 << (depth + 1)) - 1 + 2 // +2 for safety margin
}

// treeCountNodes counts how many nodes were actually initialized by a build.
func treeCountNodes(nodes []NodeData, nodeID, maxNodes int) int {
	if nodeID >= maxNodes {
		return 0
	}
	if nodes[nodeID].IdxStart == 0 && nodes[nodeID].IdxEnd == 0 && nodeID != 0 {
		return 0
	}
	count := 1
	if !nodes[nodeID].IsLeaf {
		count += treeCountNodes(nodes, 2*nodeID+1, maxNodes)
		count += treeCountNodes(nodes, 2*nodeID+2, maxNodes)
	}
	return count
}

// treeCollectNodes appends the initialized nodes below nodeID to out in
// pre-order. The array layout can leave gaps, so a prefix of nodes is not
// enough.
func treeCollectNodes(nodes []NodeData, nodeID int, out []NodeData) []NodeData {
	if nodeID >= len(nodes) {
		return out
	}
	if nodes[nodeID].IdxStart == 0 && nodes[nodeID].IdxEnd == 0 && nodeID != 0 {
		return out
	}
	out = append(out, nodes[nodeID])
	if !nodes[nodeID].IsLeaf {
		out = treeCollectNodes(nodes, 2*nodeID+1, out)
		out = treeCollectNodes(nodes, 2*nodeID+2, out)
	}
	return out
}

// sqDist returns the squared Euclidean distance between a and b.
func sqDist(a, b []float64) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}
