package ldc

// CountFragments returns, for labels 1..n, how many face-connected pieces
// carry each label (entry k-1 for label k). Two cells are connected when
// they differ by one step along a single axis.
//
// Boundary trimming can leave a clump in several pieces. Detect reports the
// count but keeps the pieces under one ID.
func CountFragments(shape []int, labels []int, n int) []int {
	frags := make([]int, n)
	if n == 0 {
		return frags
	}

	uf := NewUnionFind(len(labels))
	st := strides(shape)
	coord := make([]int, len(shape))
	for i, k := range labels {
		if k <= 0 {
			continue
		}
		unravel(i, shape, coord)
		for a := range shape {
			if coord[a]+1 < shape[a] && labels[i+st[a]] == k {
				uf.Union(i, i+st[a])
			}
		}
	}

	for i, k := range labels {
		if k > 0 && k <= n && uf.Find(i) == i {
			frags[k-1]++
		}
	}
	return frags
}
