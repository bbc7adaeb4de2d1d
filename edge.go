package ldc

// edgeSigmas is how many standard deviations of a clump must fit inside the
// grid for the clump to count as interior.
const edgeSigmas = 2.0

// RejectEdgeClumps returns the clumps that do not touch the border of a grid
// with the given native shape. A clump touches the border when its peak lies
// on the first or last cell of any axis, or when centroid ± 2σ (σ = Size /
// 2.3548) leaves [1, axis length].
func RejectEdgeClumps(clumps []Clump, shape []int) []Clump {
	dims := len(shape)
	var out []Clump
	for _, c := range clumps {
		touches := false
		for a := 0; a < dims && !touches; a++ {
			n := shape[dims-1-a]
			reach := edgeSigmas / fwhmFactor * c.Size[a]
			switch {
			case c.Peak[a] == 1 || c.Peak[a] == n:
				touches = true
			case c.Centroid[a]+reach > float64(n) || c.Centroid[a]-reach < 1:
				touches = true
			}
		}
		if !touches {
			out = append(out, c)
		}
	}
	return out
}

// LocalClumps keeps the clumps whose centroid satisfies
// margins[a] < Centroid[a] <= len(a) - margins[a] - 1 on every axis a that
// has a margin (fastest-varying axis first). With no margins every clump is
// kept.
func LocalClumps(clumps []Clump, shape []int, margins []int) []Clump {
	if len(margins) == 0 {
		return clumps
	}
	dims := len(shape)
	var out []Clump
	for _, c := range clumps {
		inside := true
		for a := 0; a < dims && a < len(margins); a++ {
			n := shape[dims-1-a]
			lo := float64(margins[a])
			hi := float64(n - margins[a] - 1)
			if c.Centroid[a] <= lo || c.Centroid[a] > hi {
				inside = false
				break
			}
		}
		if inside {
			out = append(out, c)
		}
	}
	return out
}
