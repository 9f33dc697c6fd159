package tubed

import (
	"fmt"
	"strings"

	"golang.org/x/exp/slices"
)

// A FaceEdge connects two faces that share a mesh edge. The pair is
// canonicalized so that A carries the lexicographically smaller hash, and
// the edge hash embeds both face hashes in that order.
type FaceEdge struct {
	A, B *Face

	// Cost is 1 - dot(A.Normal, B.Normal): near zero for coplanar faces.
	Cost float64

	Hash string
}

func newFaceEdge(f1, f2 *Face) *FaceEdge {
	a, b := f1, f2
	if b.Hash < a.Hash {
		a, b = b, a
	}
	return &FaceEdge{
		A:    a,
		B:    b,
		Cost: 1 - f1.Normal.Dot(f2.Normal),
		Hash: a.Hash + "|" + b.Hash,
	}
}

// Other returns the edge's face opposite f.
func (e *FaceEdge) Other(f *Face) *Face {
	if e.A == f {
		return e.B
	}
	return e.A
}

// An EdgeSet is the face-dual edge registry for one mesh: every pair of
// adjacent faces appears exactly once, retrievable in ascending cost
// order or by hash.
type EdgeSet struct {
	edges  []*FaceEdge
	byHash map[string]*FaceEdge
}

// BuildEdgeSet derives the face-dual edge set of a graph. Face hashes are
// refreshed first since edge identity is built on them.
func BuildEdgeSet(g *MeshGraph) (*EdgeSet, error) {
	if len(g.Faces) < 2 {
		return nil, fmt.Errorf("edge set: %d faces: %w", len(g.Faces), ErrInsufficientGeometry)
	}
	g.RecomputeFaceHashes()

	byHash := map[string]*FaceEdge{}
	for _, f := range g.Faces {
		for _, n := range dualNeighbors(f) {
			e := newFaceEdge(f, n)
			if _, ok := byHash[e.Hash]; !ok {
				byHash[e.Hash] = e
			}
		}
	}
	if len(byHash) == 0 {
		return nil, fmt.Errorf("edge set: no adjacent faces: %w", ErrInsufficientGeometry)
	}

	edges := make([]*FaceEdge, 0, len(byHash))
	for _, e := range byHash {
		edges = append(edges, e)
	}
	slices.SortFunc(edges, func(a, b *FaceEdge) bool {
		if a.Cost == b.Cost {
			return a.Hash < b.Hash
		}
		return a.Cost < b.Cost
	})
	return &EdgeSet{edges: edges, byHash: byHash}, nil
}

func (s *EdgeSet) Len() int {
	return len(s.edges)
}

// PopCheapest removes and returns the lowest-cost edge.
func (s *EdgeSet) PopCheapest() *FaceEdge {
	if len(s.edges) == 0 {
		return nil
	}
	e := s.edges[0]
	s.edges = s.edges[1:]
	delete(s.byHash, e.Hash)
	return e
}

// Remove deletes the edge with the given hash if present.
func (s *EdgeSet) Remove(hash string) bool {
	if _, ok := s.byHash[hash]; !ok {
		return false
	}
	delete(s.byHash, hash)
	for i, e := range s.edges {
		if e.Hash == hash {
			s.edges = append(s.edges[:i], s.edges[i+1:]...)
			break
		}
	}
	return true
}

// EdgesFor returns the registered edges incident to f, found by matching
// f's hash against the prefix or suffix of each edge hash.
func (s *EdgeSet) EdgesFor(f *Face) []*FaceEdge {
	prefix := f.Hash + "|"
	suffix := "|" + f.Hash
	var out []*FaceEdge
	for _, e := range s.edges {
		if strings.HasPrefix(e.Hash, prefix) || strings.HasSuffix(e.Hash, suffix) {
			out = append(out, e)
		}
	}
	return out
}

// PartitionEdges splits accepted edges into three disjoint groups by the
// degree of their faces: isolated (both faces still have spare capacity),
// terminal (exactly one does), and connected (neither does).
func PartitionEdges(edges []*FaceEdge, degrees []int) (isolated, terminal, connected []*FaceEdge) {
	for _, e := range edges {
		aSpare := degrees[e.A.Index] < 2
		bSpare := degrees[e.B.Index] < 2
		switch {
		case aSpare && bSpare:
			isolated = append(isolated, e)
		case aSpare || bSpare:
			terminal = append(terminal, e)
		default:
			connected = append(connected, e)
		}
	}
	return
}

// dualNeighbors lists the faces sharing a mesh edge (two vertices) with f.
func dualNeighbors(f *Face) []*Face {
	var out []*Face
	pairs := [3][2]*Vertex{
		{f.V[0], f.V[1]},
		{f.V[1], f.V[2]},
		{f.V[2], f.V[0]},
	}
	for _, p := range pairs {
		small, other := p[0], p[1]
		if len(other.Faces) < len(small.Faces) {
			small, other = other, small
		}
		for _, g := range small.Faces {
			if g != f && g.HasVertex(other) && !containsFace(out, g) {
				out = append(out, g)
			}
		}
	}
	return out
}

func containsFace(list []*Face, f *Face) bool {
	for _, x := range list {
		if x == f {
			return true
		}
	}
	return false
}

// dualAdjacent reports whether two faces share at least two vertices.
func dualAdjacent(a, b *Face) bool {
	shared := 0
	for _, v := range a.V {
		if b.HasVertex(v) {
			shared++
		}
	}
	return shared >= 2
}
