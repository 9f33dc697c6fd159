package tubed

import "math"

// icosahedronBuffers returns a unit-scale icosahedron as indexed buffers:
// 12 vertices, 20 faces, closed manifold.
func icosahedronBuffers() ([]float64, []int) {
	phi := (1 + math.Sqrt(5)) / 2
	verts := [][3]float64{
		{-1, phi, 0}, {1, phi, 0}, {-1, -phi, 0}, {1, -phi, 0},
		{0, -1, phi}, {0, 1, phi}, {0, -1, -phi}, {0, 1, -phi},
		{phi, 0, -1}, {phi, 0, 1}, {-phi, 0, -1}, {-phi, 0, 1},
	}
	faces := [][3]int{
		{0, 11, 5}, {0, 5, 1}, {0, 1, 7}, {0, 7, 10}, {0, 10, 11},
		{1, 5, 9}, {5, 11, 4}, {11, 10, 2}, {10, 7, 6}, {7, 1, 8},
		{3, 9, 4}, {3, 4, 2}, {3, 2, 6}, {3, 6, 8}, {3, 8, 9},
		{4, 9, 5}, {2, 4, 11}, {6, 2, 10}, {8, 6, 7}, {9, 8, 1},
	}
	return flattenBuffers(verts, faces)
}

// gridBuffers returns a flat 2x2 grid of quads triangulated along
// alternating diagonals, 9 vertices and 8 faces. The alternation makes
// the face-dual graph a single cycle.
func gridBuffers() ([]float64, []int) {
	var verts [][3]float64
	for y := 0; y < 3; y++ {
		for x := 0; x < 3; x++ {
			verts = append(verts, [3]float64{float64(x), float64(y), 0})
		}
	}
	idx := func(x, y int) int {
		return y*3 + x
	}
	var faces [][3]int
	for cy := 0; cy < 2; cy++ {
		for cx := 0; cx < 2; cx++ {
			a := idx(cx, cy)
			b := idx(cx+1, cy)
			c := idx(cx+1, cy+1)
			d := idx(cx, cy+1)
			if (cx+cy)%2 == 0 {
				faces = append(faces, [3]int{a, b, c}, [3]int{a, c, d})
			} else {
				faces = append(faces, [3]int{a, b, d}, [3]int{b, c, d})
			}
		}
	}
	return flattenBuffers(verts, faces)
}

// tetrahedronBuffers returns one tetrahedron translated by offset along
// the x axis, as an un-indexed triangle soup (welding required).
func tetrahedronBuffers(offset float64) []float64 {
	verts := [][3]float64{
		{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {0, 0, 1},
	}
	faces := [][3]int{
		{0, 2, 1}, {0, 1, 3}, {0, 3, 2}, {1, 2, 3},
	}
	var out []float64
	for _, f := range faces {
		for _, vi := range f {
			v := verts[vi]
			out = append(out, v[0]+offset, v[1], v[2])
		}
	}
	return out
}

func flattenBuffers(verts [][3]float64, faces [][3]int) ([]float64, []int) {
	positions := make([]float64, 0, len(verts)*3)
	for _, v := range verts {
		positions = append(positions, v[0], v[1], v[2])
	}
	indices := make([]int, 0, len(faces)*3)
	for _, f := range faces {
		indices = append(indices, f[0], f[1], f[2])
	}
	return positions, indices
}

func mustGraph(positions []float64, indices []int) *MeshGraph {
	g, err := NewMeshGraph(positions, indices)
	if err != nil {
		panic(err)
	}
	return g
}
