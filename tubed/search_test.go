package tubed

import (
	"errors"
	"testing"
)

func TestParseAlgorithm(t *testing.T) {
	for _, name := range []string{"sequential", "nearest", "greedy", "wrapping"} {
		a, err := ParseAlgorithm(name)
		if err != nil {
			t.Errorf("parse %q: %v", name, err)
		}
		if a.String() != name {
			t.Errorf("algorithm %q round trips to %q", name, a.String())
		}
	}
	if _, err := ParseAlgorithm("dijkstra"); err == nil {
		t.Error("unknown algorithm should not parse")
	}
}

func TestSearchInsufficientGeometry(t *testing.T) {
	positions := []float64{0, 0, 0, 1, 0, 0, 0, 1, 0}
	g := mustGraph(positions, nil)
	_, err := Search(g, SearchOptions{Algorithm: NearestNeighbor})
	if !errors.Is(err, ErrInsufficientGeometry) {
		t.Errorf("single face search error %v but should wrap ErrInsufficientGeometry", err)
	}
}

func TestSequentialWalkCoversAllFaces(t *testing.T) {
	positions, indices := gridBuffers()
	g := mustGraph(positions, indices)
	degrees := make([]int, len(g.Faces))
	seqs := sequentialWalk(g, degrees)
	total := 0
	for _, seq := range seqs {
		total += len(seq)
		for i := 1; i < len(seq); i++ {
			if !dualAdjacent(seq[i-1], seq[i]) {
				t.Error("sequential walk emitted non-adjacent consecutive faces")
			}
		}
	}
	if total != len(g.Faces) {
		t.Errorf("walk consumed %d faces but should consume %d", total, len(g.Faces))
	}
}

func TestNearestNeighborGridSinglePath(t *testing.T) {
	positions, indices := gridBuffers()
	g := mustGraph(positions, indices)
	res, err := Search(g, SearchOptions{Algorithm: NearestNeighbor})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Paths) != 1 {
		t.Fatalf("grid produced %d paths but should produce 1", len(res.Paths))
	}
	if len(res.Paths[0]) != 8 {
		t.Errorf("path has %d points but should have one per face (8)", len(res.Paths[0]))
	}
	if res.MinSpacing <= 0 {
		t.Errorf("min spacing %f but should be positive", res.MinSpacing)
	}
}

func TestNearestNeighborCoverage(t *testing.T) {
	positions, indices := icosahedronBuffers()
	g := mustGraph(positions, indices)
	degrees := make([]int, len(g.Faces))
	seqs := nearestNeighborWalk(g, degrees)
	for i, d := range degrees {
		if d < 1 {
			t.Errorf("face %d left unvisited", i)
		}
	}
	total := 0
	for _, seq := range seqs {
		total += len(seq)
	}
	if total != len(g.Faces) {
		t.Errorf("runs consumed %d faces but should consume each of %d exactly once",
			total, len(g.Faces))
	}
}

func TestNearestNeighborBackwardGrowth(t *testing.T) {
	// Force a mid-path seed by consuming the faces before it, so growth
	// has to extend both ways around the remaining cycle.
	positions, indices := gridBuffers()
	g := mustGraph(positions, indices)
	degrees := make([]int, len(g.Faces))
	degrees[0] = 1
	seqs := nearestNeighborWalk(g, degrees)
	total := 0
	for _, seq := range seqs {
		total += len(seq)
	}
	if total != len(g.Faces)-1 {
		t.Errorf("runs consumed %d faces but should consume %d", total, len(g.Faces)-1)
	}
}

func TestWrappingDisjointRegions(t *testing.T) {
	soup := append(tetrahedronBuffers(0), tetrahedronBuffers(10)...)
	g := mustGraph(soup, nil)
	res, err := Search(g, SearchOptions{Algorithm: Wrapping})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Paths) != 2 {
		t.Fatalf("two disjoint tetrahedra produced %d paths but should produce 2", len(res.Paths))
	}
	for i, p := range res.Paths {
		if len(p) != 4 {
			t.Errorf("path %d has %d points but should have 4", i, len(p))
		}
	}
}

func TestWrappingCoverage(t *testing.T) {
	positions, indices := icosahedronBuffers()
	g := mustGraph(positions, indices)
	degrees := make([]int, len(g.Faces))
	seqs := wrappingWalk(g, degrees)
	if len(seqs) != 1 {
		t.Errorf("connected mesh produced %d wrapping regions but should produce 1", len(seqs))
	}
	for i, d := range degrees {
		if d < 1 {
			t.Errorf("face %d left unvisited", i)
		}
	}
}

func TestSearchIdempotent(t *testing.T) {
	// Degree state is per-invocation, so repeated searches agree.
	positions, indices := icosahedronBuffers()
	g := mustGraph(positions, indices)
	first, err := Search(g, SearchOptions{Algorithm: NearestNeighbor})
	if err != nil {
		t.Fatal(err)
	}
	second, err := Search(g, SearchOptions{Algorithm: NearestNeighbor})
	if err != nil {
		t.Fatal(err)
	}
	if len(first.Paths) != len(second.Paths) {
		t.Fatalf("path counts %d and %d differ across runs", len(first.Paths), len(second.Paths))
	}
	for i := range first.Paths {
		if len(first.Paths[i]) != len(second.Paths[i]) {
			t.Errorf("path %d lengths differ across runs", i)
		}
	}
}

func TestTerminatePathsExtendsEndpoints(t *testing.T) {
	soup := append(tetrahedronBuffers(0), tetrahedronBuffers(3)...)
	g := mustGraph(soup, nil)
	plain, err := Search(g, SearchOptions{Algorithm: Wrapping})
	if err != nil {
		t.Fatal(err)
	}
	stitched, err := Search(g, SearchOptions{Algorithm: Wrapping, TerminatePaths: true})
	if err != nil {
		t.Fatal(err)
	}
	for i := range plain.Paths {
		if len(stitched.Paths[i]) != len(plain.Paths[i])+2 {
			t.Errorf("path %d has %d points after stitching but should have %d",
				i, len(stitched.Paths[i]), len(plain.Paths[i])+2)
		}
	}
}

func TestSearchRunStepwise(t *testing.T) {
	soup := append(tetrahedronBuffers(0), tetrahedronBuffers(10)...)
	g := mustGraph(soup, nil)
	run, err := BeginSearch(g, SearchOptions{Algorithm: Wrapping})
	if err != nil {
		t.Fatal(err)
	}
	steps := 0
	for !run.Step() {
		steps++
	}
	if steps != 2 {
		t.Errorf("stepwise search emitted %d runs but should emit one per region (2)", steps)
	}
	res := run.Result()
	whole, err := Search(g, SearchOptions{Algorithm: Wrapping})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Paths) != len(whole.Paths) {
		t.Errorf("stepwise search found %d paths but whole-run search found %d",
			len(res.Paths), len(whole.Paths))
	}
}

func TestTracePointPlacement(t *testing.T) {
	positions, indices := gridBuffers()
	g := mustGraph(positions, indices)
	degrees := make([]int, len(g.Faces))
	seqs := nearestNeighborWalk(g, degrees)
	if len(seqs) != 1 {
		t.Fatalf("grid produced %d runs but should produce 1", len(seqs))
	}
	tracer := &pathTracer{minSpacing: 1e18}
	path := tracer.trace(seqs[0])
	if len(path) != len(seqs[0]) {
		t.Fatalf("trace emitted %d points for %d faces", len(path), len(seqs[0]))
	}
	// The first two points are exact centroids.
	for i := 0; i < 2; i++ {
		if path[i].Dist(seqs[0][i].Centroid) > 1e-9 {
			t.Errorf("point %d should be the face centroid", i)
		}
	}
}
