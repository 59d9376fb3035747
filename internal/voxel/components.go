package voxel

import "scan2schem/internal/mesh"

// PruneComponents removes connected components of occupied cells smaller
// than minSize, using 6-neighborhood connectivity. It returns a new grid
// whose canonical order is the surviving subsequence of the input order,
// along with the number of cells removed. minSize values of 0 or 1 keep
// everything.
func PruneComponents(g *Grid, minSize int) (*Grid, int) {
	if minSize <= 1 || g.Len() == 0 {
		return g, 0
	}

	neighbors := []Coord{
		{1, 0, 0}, {-1, 0, 0},
		{0, 1, 0}, {0, -1, 0},
		{0, 0, 1}, {0, 0, -1},
	}

	const unlabeled = -1
	label := make([]int, g.Len())
	for i := range label {
		label[i] = unlabeled
	}

	keep := make([]bool, g.Len())
	var queue []int
	for start := range g.Coords {
		if label[start] != unlabeled {
			continue
		}
		label[start] = start
		queue = append(queue[:0], start)
		var members []int
		for len(queue) > 0 {
			i := queue[0]
			queue = queue[1:]
			members = append(members, i)
			c := g.Coords[i]
			for _, d := range neighbors {
				n := Coord{c[0] + d[0], c[1] + d[1], c[2] + d[2]}
				if ni, ok := g.IndexOf(n); ok && label[ni] == unlabeled {
					label[ni] = start
					queue = append(queue, ni)
				}
			}
		}
		if len(members) >= minSize {
			for _, i := range members {
				keep[i] = true
			}
		}
	}

	kept := make([]Coord, 0, g.Len())
	for i, c := range g.Coords {
		if keep[i] {
			kept = append(kept, c)
		}
	}
	out := NewGrid(g.Dims, g.Origin, g.Edge, kept)
	if g.Colors != nil {
		out.Colors = make([]mesh.RGB, 0, len(kept))
		for i := range g.Coords {
			if keep[i] {
				out.Colors = append(out.Colors, g.Colors[i])
			}
		}
	}
	return out, g.Len() - len(kept)
}
