package tubed

import (
	"errors"
	"strings"
	"testing"
)

func TestBuildEdgeSetCounts(t *testing.T) {
	positions, indices := icosahedronBuffers()
	g := mustGraph(positions, indices)
	set, err := BuildEdgeSet(g)
	if err != nil {
		t.Fatal(err)
	}
	// A closed manifold has 3F/2 mesh edges, each yielding one dual edge.
	if set.Len() != 30 {
		t.Errorf("edge count %d but should be 30", set.Len())
	}
}

func TestBuildEdgeSetInsufficient(t *testing.T) {
	positions := []float64{0, 0, 0, 1, 0, 0, 0, 1, 0}
	g := mustGraph(positions, nil)
	if _, err := BuildEdgeSet(g); !errors.Is(err, ErrInsufficientGeometry) {
		t.Errorf("single face error %v but should wrap ErrInsufficientGeometry", err)
	}

	// Two triangles with no shared edge.
	soup := []float64{
		0, 0, 0, 1, 0, 0, 0, 1, 0,
		5, 0, 0, 6, 0, 0, 5, 1, 0,
	}
	g = mustGraph(soup, nil)
	if _, err := BuildEdgeSet(g); !errors.Is(err, ErrInsufficientGeometry) {
		t.Errorf("disjoint faces error %v but should wrap ErrInsufficientGeometry", err)
	}
}

func TestEdgeSetPopOrder(t *testing.T) {
	positions, indices := icosahedronBuffers()
	g := mustGraph(positions, indices)
	set, err := BuildEdgeSet(g)
	if err != nil {
		t.Fatal(err)
	}
	last := -1.0
	for i := 0; set.Len() > 0; i++ {
		e := set.PopCheapest()
		if i > 0 && e.Cost < last {
			t.Errorf("pop %d cost %f below previous %f", i, e.Cost, last)
		}
		last = e.Cost
	}
}

func TestEdgeSetCanonicalHashes(t *testing.T) {
	positions, indices := gridBuffers()
	g := mustGraph(positions, indices)
	set, err := BuildEdgeSet(g)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range set.edges {
		parts := strings.SplitN(e.Hash, "|", 2)
		if len(parts) != 2 || parts[0] != e.A.Hash || parts[1] != e.B.Hash {
			t.Errorf("edge hash %q does not embed its face hashes", e.Hash)
		}
		if e.A.Hash >= e.B.Hash {
			t.Errorf("edge %q not in canonical order", e.Hash)
		}
	}
}

func TestEdgeSetEdgesFor(t *testing.T) {
	positions, indices := gridBuffers()
	g := mustGraph(positions, indices)
	set, err := BuildEdgeSet(g)
	if err != nil {
		t.Fatal(err)
	}
	// Every face of the alternating grid lies on exactly two dual edges.
	for _, f := range g.Faces {
		edges := set.EdgesFor(f)
		if len(edges) != 2 {
			t.Errorf("face %d has %d registered edges but should have 2", f.Index, len(edges))
		}
		for _, e := range edges {
			if e.A != f && e.B != f {
				t.Errorf("EdgesFor(%d) returned an edge not touching the face", f.Index)
			}
		}
	}
}

func TestEdgeSetRemove(t *testing.T) {
	positions, indices := gridBuffers()
	g := mustGraph(positions, indices)
	set, err := BuildEdgeSet(g)
	if err != nil {
		t.Fatal(err)
	}
	before := set.Len()
	hash := set.edges[2].Hash
	if !set.Remove(hash) {
		t.Fatal("remove by hash failed")
	}
	if set.Len() != before-1 {
		t.Errorf("length %d after removal but should be %d", set.Len(), before-1)
	}
	if set.Remove(hash) {
		t.Error("double removal should report false")
	}
}

func TestPartitionEdges(t *testing.T) {
	positions, indices := gridBuffers()
	g := mustGraph(positions, indices)
	set, err := BuildEdgeSet(g)
	if err != nil {
		t.Fatal(err)
	}
	a := set.edges[0]
	degrees := make([]int, len(g.Faces))

	iso, term, conn := PartitionEdges([]*FaceEdge{a}, degrees)
	if len(iso) != 1 || len(term) != 0 || len(conn) != 0 {
		t.Errorf("fresh edge partitioned as %d/%d/%d but should be isolated", len(iso), len(term), len(conn))
	}

	degrees[a.A.Index] = 2
	iso, term, conn = PartitionEdges([]*FaceEdge{a}, degrees)
	if len(term) != 1 || len(iso) != 0 || len(conn) != 0 {
		t.Errorf("half-consumed edge partitioned as %d/%d/%d but should be terminal", len(iso), len(term), len(conn))
	}

	degrees[a.B.Index] = 2
	iso, term, conn = PartitionEdges([]*FaceEdge{a}, degrees)
	if len(conn) != 1 || len(iso) != 0 || len(term) != 0 {
		t.Errorf("consumed edge partitioned as %d/%d/%d but should be connected", len(iso), len(term), len(conn))
	}
}

func TestGreedyWalkAcyclic(t *testing.T) {
	positions, indices := icosahedronBuffers()
	g := mustGraph(positions, indices)
	degrees := make([]int, len(g.Faces))
	seqs, err := greedyWalk(g, degrees)
	if err != nil {
		t.Fatal(err)
	}
	seen := map[*Face]bool{}
	for _, seq := range seqs {
		for i, f := range seq {
			if seen[f] {
				t.Error("face appears in more than one assembled chain")
			}
			seen[f] = true
			if i > 0 && !dualAdjacent(seq[i-1], f) {
				t.Error("chain contains non-adjacent consecutive faces")
			}
		}
	}
	for i, d := range degrees {
		if d > 2 {
			t.Errorf("face %d consumed %d times but the cap is 2", i, d)
		}
	}
}

func TestGreedySearchEndToEnd(t *testing.T) {
	positions, indices := icosahedronBuffers()
	g := mustGraph(positions, indices)
	res, err := Search(g, SearchOptions{Algorithm: Greedy})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Paths) == 0 {
		t.Fatal("greedy search produced no paths")
	}
	for i, p := range res.Paths {
		if len(p) < 2 {
			t.Errorf("path %d has %d points but chains always span at least 2 faces", i, len(p))
		}
	}
}
