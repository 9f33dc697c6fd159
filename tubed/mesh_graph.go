package tubed

import (
	"fmt"
	"math"
	"sort"

	"github.com/unixpickle/model3d/model3d"
	"golang.org/x/exp/slices"
)

const (
	// weldScale quantizes positions to four decimal places when merging
	// duplicate vertices during Populate.
	weldScale = 1e4

	// isolatedCost is the sentinel collapse cost for a vertex with no
	// neighbors. It sorts below every real cost so cleanup happens first.
	isolatedCost = -0.01
)

// A Vertex is one welded position in a MeshGraph along with its local
// topology and the cached cost of collapsing its cheapest incident edge.
type Vertex struct {
	Position model3d.Coord3D

	// Index is the vertex's position in the owning graph's vertex list.
	// It is renumbered whenever an earlier vertex is removed.
	Index int

	Faces     []*Face
	Neighbors []*Vertex

	CollapseCost     float64
	CollapseNeighbor *Vertex
}

// A Face is a triangle over three distinct vertices of a MeshGraph.
//
// Normal and Centroid are refreshed whenever a vertex of the face moves or
// is substituted. Hash is a snapshot of the sorted vertex index triple and
// is only trustworthy between calls to MeshGraph.RecomputeFaceHashes.
type Face struct {
	V [3]*Vertex

	Normal   model3d.Coord3D
	Centroid model3d.Coord3D

	Hash  string
	Index int
}

func (f *Face) HasVertex(v *Vertex) bool {
	return f.V[0] == v || f.V[1] == v || f.V[2] == v
}

func (f *Face) recompute() {
	t := model3d.Triangle{f.V[0].Position, f.V[1].Position, f.V[2].Position}
	f.Normal = t.Normal()
	f.Centroid = f.V[0].Position.Add(f.V[1].Position).Add(f.V[2].Position).Scale(1.0 / 3)
}

// RecomputeHash refreshes the face's content hash from its current vertex
// indices. Callers normally use MeshGraph.RecomputeFaceHashes instead of
// refreshing faces one at a time.
func (f *Face) RecomputeHash() {
	i0, i1, i2 := f.V[0].Index, f.V[1].Index, f.V[2].Index
	if i0 > i1 {
		i0, i1 = i1, i0
	}
	if i1 > i2 {
		i1, i2 = i2, i1
	}
	if i0 > i1 {
		i0, i1 = i1, i0
	}
	f.Hash = fmt.Sprintf("%d,%d,%d", i0, i1, i2)
}

// A MeshGraph owns the vertices and faces of one triangulated mesh and
// keeps an index of vertices sorted by collapse cost so that the globally
// cheapest collapse can be popped cheaply.
type MeshGraph struct {
	Vertices []*Vertex
	Faces    []*Face

	// costOrder is a permutation of vertex indices sorted ascending by
	// CollapseCost, ties broken by insertion order.
	costOrder []int
}

// NewMeshGraph builds a graph from a flat position buffer (3*N floats) and
// an optional triangle index buffer. A nil index buffer treats every three
// consecutive positions as one triangle.
func NewMeshGraph(positions []float64, indices []int) (*MeshGraph, error) {
	g := &MeshGraph{}
	if err := g.Populate(positions, indices); err != nil {
		return nil, err
	}
	return g, nil
}

type weldKey [3]int64

func quantize(c model3d.Coord3D) weldKey {
	return weldKey{
		int64(math.Round(c.X * weldScale)),
		int64(math.Round(c.Y * weldScale)),
		int64(math.Round(c.Z * weldScale)),
	}
}

// Populate builds the graph's vertices and faces, welding duplicate
// positions within the quantization tolerance before constructing
// triangles. Triangles degenerate after welding are dropped. If no usable
// vertices or faces remain the graph is left untouched and
// ErrMalformedInput is returned.
func (g *MeshGraph) Populate(positions []float64, indices []int) error {
	if len(positions)%3 != 0 {
		return fmt.Errorf("populate: position buffer length %d not divisible by 3: %w",
			len(positions), ErrMalformedInput)
	}
	numPoints := len(positions) / 3
	if indices == nil {
		indices = make([]int, numPoints)
		for i := range indices {
			indices[i] = i
		}
	}
	if len(indices)%3 != 0 {
		return fmt.Errorf("populate: index buffer length %d not divisible by 3: %w",
			len(indices), ErrMalformedInput)
	}

	var verts []*Vertex
	welded := map[weldKey]*Vertex{}
	lookup := make([]*Vertex, numPoints)
	for i := 0; i < numPoints; i++ {
		c := model3d.XYZ(positions[i*3], positions[i*3+1], positions[i*3+2])
		key := quantize(c)
		v, ok := welded[key]
		if !ok {
			v = &Vertex{Position: c, Index: len(verts)}
			welded[key] = v
			verts = append(verts, v)
		}
		lookup[i] = v
	}

	var faces []*Face
	for i := 0; i+2 < len(indices); i += 3 {
		for _, idx := range indices[i : i+3] {
			if idx < 0 || idx >= numPoints {
				return fmt.Errorf("populate: triangle index %d out of range: %w",
					idx, ErrMalformedInput)
			}
		}
		v0, v1, v2 := lookup[indices[i]], lookup[indices[i+1]], lookup[indices[i+2]]
		if v0 == v1 || v1 == v2 || v0 == v2 {
			// Degenerate after welding.
			continue
		}
		f := &Face{V: [3]*Vertex{v0, v1, v2}, Index: len(faces)}
		faces = append(faces, f)
	}

	if len(verts) == 0 || len(faces) == 0 {
		return fmt.Errorf("populate: no usable geometry after welding: %w", ErrMalformedInput)
	}

	g.Vertices = verts
	g.Faces = faces
	for _, f := range g.Faces {
		for _, v := range f.V {
			v.Faces = append(v.Faces, f)
		}
		linkNeighbors(f.V[0], f.V[1])
		linkNeighbors(f.V[1], f.V[2])
		linkNeighbors(f.V[2], f.V[0])
		f.recompute()
	}
	g.RecomputeFaceHashes()
	for _, v := range g.Vertices {
		g.updateVertexCost(v)
	}
	g.buildCostOrder()
	return nil
}

// linkNeighbors records a symmetric neighbor relation, skipping duplicates.
func linkNeighbors(a, b *Vertex) {
	if !containsVertex(a.Neighbors, b) {
		a.Neighbors = append(a.Neighbors, b)
	}
	if !containsVertex(b.Neighbors, a) {
		b.Neighbors = append(b.Neighbors, a)
	}
}

func containsVertex(list []*Vertex, v *Vertex) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}

func removeVertexFrom(list []*Vertex, v *Vertex) []*Vertex {
	for i, x := range list {
		if x == v {
			return append(list[:i], list[i+1:]...)
		}
	}
	return list
}

func removeFaceFrom(list []*Face, f *Face) []*Face {
	for i, x := range list {
		if x == f {
			return append(list[:i], list[i+1:]...)
		}
	}
	return list
}

// AddVertex appends v to the graph and inserts it into the cost index.
func (g *MeshGraph) AddVertex(v *Vertex) {
	v.Index = len(g.Vertices)
	g.Vertices = append(g.Vertices, v)
	g.insertCost(v)
}

// RemoveVertex deletes v, purges it from every neighbor's neighbor list,
// renumbers all later vertices down by one, and repairs the cost index.
func (g *MeshGraph) RemoveVertex(v *Vertex) {
	for _, n := range v.Neighbors {
		n.Neighbors = removeVertexFrom(n.Neighbors, v)
	}
	v.Neighbors = nil

	idx := v.Index
	g.Vertices = append(g.Vertices[:idx], g.Vertices[idx+1:]...)
	for i := idx; i < len(g.Vertices); i++ {
		g.Vertices[i].Index = i
	}

	out := g.costOrder[:0]
	for _, vi := range g.costOrder {
		if vi == idx {
			continue
		}
		if vi > idx {
			vi--
		}
		out = append(out, vi)
	}
	g.costOrder = out
}

// RemoveFace detaches f from its three vertices. A neighbor relation
// between two of f's vertices is dropped only if no remaining face still
// connects the pair.
func (g *MeshGraph) RemoveFace(f *Face) {
	for _, v := range f.V {
		v.Faces = removeFaceFrom(v.Faces, f)
	}
	pairs := [3][2]*Vertex{
		{f.V[0], f.V[1]},
		{f.V[1], f.V[2]},
		{f.V[2], f.V[0]},
	}
	for _, p := range pairs {
		if !facesConnect(p[0], p[1]) {
			p[0].Neighbors = removeVertexFrom(p[0].Neighbors, p[1])
			p[1].Neighbors = removeVertexFrom(p[1].Neighbors, p[0])
		}
	}

	idx := f.Index
	g.Faces = append(g.Faces[:idx], g.Faces[idx+1:]...)
	for i := idx; i < len(g.Faces); i++ {
		g.Faces[i].Index = i
	}
}

// facesConnect reports whether any face contains both a and b, scanning
// whichever vertex has the shorter face list.
func facesConnect(a, b *Vertex) bool {
	small, other := a, b
	if len(b.Faces) < len(a.Faces) {
		small, other = b, a
	}
	for _, f := range small.Faces {
		if f.HasVertex(other) {
			return true
		}
	}
	return false
}

// RecomputeFaceHashes is the designated bulk refresh of face identity.
// Hashes are stale between a removal that renumbers vertices and the next
// call here; nothing may compare hashes across that window.
func (g *MeshGraph) RecomputeFaceHashes() {
	for _, f := range g.Faces {
		f.RecomputeHash()
	}
}

func (g *MeshGraph) buildCostOrder() {
	order := make([]int, len(g.Vertices))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) bool {
		return g.Vertices[a].CollapseCost < g.Vertices[b].CollapseCost
	})
	g.costOrder = order
}

// PopCheapest removes and returns the vertex with the lowest collapse
// cost, or nil if the index is empty.
func (g *MeshGraph) PopCheapest() *Vertex {
	if len(g.costOrder) == 0 {
		return nil
	}
	v := g.Vertices[g.costOrder[0]]
	g.costOrder = g.costOrder[1:]
	return v
}

// CheapestCost returns the lowest collapse cost currently indexed.
func (g *MeshGraph) CheapestCost() (float64, bool) {
	if len(g.costOrder) == 0 {
		return 0, false
	}
	return g.Vertices[g.costOrder[0]].CollapseCost, true
}

func (g *MeshGraph) insertCost(v *Vertex) {
	i := sort.Search(len(g.costOrder), func(i int) bool {
		return g.Vertices[g.costOrder[i]].CollapseCost > v.CollapseCost
	})
	g.costOrder = append(g.costOrder, 0)
	copy(g.costOrder[i+1:], g.costOrder[i:])
	g.costOrder[i] = v.Index
}

// ReindexCost moves v to its correct position in the cost index after its
// collapse cost changed.
func (g *MeshGraph) ReindexCost(v *Vertex) {
	for i, vi := range g.costOrder {
		if vi == v.Index {
			g.costOrder = append(g.costOrder[:i], g.costOrder[i+1:]...)
			break
		}
	}
	g.insertCost(v)
}

// Buffers flattens the graph back into the external position/index buffer
// shape.
func (g *MeshGraph) Buffers() ([]float64, []int) {
	positions := make([]float64, 0, len(g.Vertices)*3)
	for _, v := range g.Vertices {
		positions = append(positions, v.Position.X, v.Position.Y, v.Position.Z)
	}
	indices := make([]int, 0, len(g.Faces)*3)
	for _, f := range g.Faces {
		indices = append(indices, f.V[0].Index, f.V[1].Index, f.V[2].Index)
	}
	return positions, indices
}

// Mesh converts the graph into a model3d mesh for rendering or export.
func (g *MeshGraph) Mesh() *model3d.Mesh {
	tris := make([]*model3d.Triangle, len(g.Faces))
	for i, f := range g.Faces {
		tris[i] = &model3d.Triangle{f.V[0].Position, f.V[1].Position, f.V[2].Position}
	}
	return model3d.NewMeshTriangles(tris)
}
