package tubed

import (
	"fmt"
	"math"

	"github.com/unixpickle/model3d/model3d"
	"go.uber.org/zap"
)

// Algorithm selects one of the interchangeable face-coverage strategies.
type Algorithm int

const (
	// SequentialWalk follows the input face order, breaking a path
	// whenever consecutive faces are not dual-adjacent. Baseline only.
	SequentialWalk Algorithm = iota

	// NearestNeighbor grows each path forward and backward from a seed,
	// always taking the unvisited neighbor that deviates least from the
	// current travel direction. This is the default.
	NearestNeighbor

	// Greedy accepts face-dual edges cheapest-first, rejecting edges
	// that would over-consume a face or close a cycle.
	Greedy

	// Wrapping expands a frontier of unvisited neighbors breadth-first,
	// preferring the nearest face still adjacent to the current one.
	Wrapping
)

func (a Algorithm) String() string {
	switch a {
	case SequentialWalk:
		return "sequential"
	case NearestNeighbor:
		return "nearest"
	case Greedy:
		return "greedy"
	case Wrapping:
		return "wrapping"
	}
	return fmt.Sprintf("Algorithm(%d)", int(a))
}

// ParseAlgorithm maps a name to an Algorithm.
func ParseAlgorithm(name string) (Algorithm, error) {
	switch name {
	case "sequential":
		return SequentialWalk, nil
	case "nearest":
		return NearestNeighbor, nil
	case "greedy":
		return Greedy, nil
	case "wrapping":
		return Wrapping, nil
	}
	return 0, fmt.Errorf("unknown search algorithm: %q", name)
}

// A Path is an ordered, open sequence of 3D points.
type Path []model3d.Coord3D

// SearchOptions configures one path search invocation.
type SearchOptions struct {
	Algorithm Algorithm

	// TerminatePaths extends each path's endpoints toward the closest
	// point of a neighboring path for nicer joins.
	TerminatePaths bool

	Log *zap.SugaredLogger
}

// SearchResult is the output of one search invocation.
type SearchResult struct {
	Paths []Path

	// MinSpacing is the smallest nonzero distance observed between
	// consecutive points of any path, or 0 if no two points were placed.
	MinSpacing float64
}

// Search traverses the face-dual graph of g with the selected algorithm
// and returns one point path per connected run. Every invocation works on
// a fresh face-degree array, so repeated searches on the same graph are
// independent.
func Search(g *MeshGraph, opts SearchOptions) (*SearchResult, error) {
	run, err := BeginSearch(g, opts)
	if err != nil {
		return nil, err
	}
	for !run.Step() {
	}
	return run.Result(), nil
}

// A SearchRun is an in-progress path search. Each Step emits one face
// run, so a host scheduler can interleave search with other work.
type SearchRun struct {
	g       *MeshGraph
	opts    SearchOptions
	degrees []int
	seqs    [][]*Face
	next    func() ([]*Face, bool)
}

// BeginSearch validates the graph, allocates a fresh degree array, and
// prepares the selected strategy. The greedy strategy accepts its edges
// here; its assembled chains are then delivered one per Step.
func BeginSearch(g *MeshGraph, opts SearchOptions) (*SearchRun, error) {
	if len(g.Faces) < 2 {
		return nil, fmt.Errorf("path search: %d faces: %w", len(g.Faces), ErrInsufficientGeometry)
	}
	r := &SearchRun{g: g, opts: opts, degrees: make([]int, len(g.Faces))}
	switch opts.Algorithm {
	case SequentialWalk:
		r.next = sequentialNext(g, r.degrees)
	case NearestNeighbor:
		r.next = nearestNext(g, r.degrees)
	case Greedy:
		seqs, err := greedyWalk(g, r.degrees)
		if err != nil {
			return nil, err
		}
		r.next = pendingNext(seqs)
	case Wrapping:
		r.next = wrappingNext(g, r.degrees)
	default:
		return nil, fmt.Errorf("path search: unknown algorithm %v", opts.Algorithm)
	}
	return r, nil
}

// Step produces the next face run and reports whether the search is
// exhausted.
func (r *SearchRun) Step() bool {
	if r.next == nil {
		return true
	}
	seq, ok := r.next()
	if !ok {
		r.next = nil
		return true
	}
	r.seqs = append(r.seqs, seq)
	return false
}

// Result converts the accumulated face runs into point paths. Call after
// Step reports exhaustion.
func (r *SearchRun) Result() *SearchResult {
	tracer := &pathTracer{minSpacing: math.Inf(1)}
	paths := make([]Path, 0, len(r.seqs))
	for _, seq := range r.seqs {
		if p := tracer.trace(seq); len(p) > 0 {
			paths = append(paths, p)
		}
	}
	if r.opts.TerminatePaths {
		stitchEndpoints(paths)
	}

	minSpacing := tracer.minSpacing
	if math.IsInf(minSpacing, 1) {
		minSpacing = 0
	}
	if r.opts.Log != nil {
		r.opts.Log.Infow("path search complete",
			"algorithm", r.opts.Algorithm.String(),
			"paths", len(paths),
			"minSpacing", minSpacing)
	}
	return &SearchResult{Paths: paths, MinSpacing: minSpacing}
}

// sequentialNext walks the input face order, emitting one run of
// consecutively dual-adjacent faces per call.
func sequentialNext(g *MeshGraph, degrees []int) func() ([]*Face, bool) {
	cursor := 0
	return func() ([]*Face, bool) {
		if cursor >= len(g.Faces) {
			return nil, false
		}
		f := g.Faces[cursor]
		degrees[f.Index]++
		seq := []*Face{f}
		cursor++
		for cursor < len(g.Faces) && dualAdjacent(seq[len(seq)-1], g.Faces[cursor]) {
			f = g.Faces[cursor]
			degrees[f.Index]++
			seq = append(seq, f)
			cursor++
		}
		return seq, true
	}
}

// nearestNext seeds at the first unvisited face, grows a run forward,
// grows a second run backward from the same seed, and emits
// backward-reversed + seed + forward.
func nearestNext(g *MeshGraph, degrees []int) func() ([]*Face, bool) {
	return func() ([]*Face, bool) {
		var seed *Face
		for _, f := range g.Faces {
			if degrees[f.Index] == 0 {
				seed = f
				break
			}
		}
		if seed == nil {
			return nil, false
		}
		degrees[seed.Index]++

		forward := growRun(seed, degrees)
		backward := growRun(seed, degrees)

		seq := make([]*Face, 0, len(backward)+1+len(forward))
		for i := len(backward) - 1; i >= 0; i-- {
			seq = append(seq, backward[i])
		}
		seq = append(seq, seed)
		seq = append(seq, forward...)
		return seq, true
	}
}

// growRun extends from seed while an unvisited dual neighbor exists. The
// first step picks the neighbor whose normal best matches the seed's;
// later steps pick the neighbor whose centroid direction deviates least
// from the current travel direction.
func growRun(seed *Face, degrees []int) []*Face {
	var run []*Face
	current := seed
	var prev *Face
	for {
		var best *Face
		bestCost := math.Inf(1)
		for _, cand := range dualNeighbors(current) {
			if degrees[cand.Index] != 0 {
				continue
			}
			var cost float64
			if prev == nil {
				cost = 1 - current.Normal.Dot(cand.Normal)
			} else {
				prevDir := normalizeOrZero(current.Centroid.Sub(prev.Centroid))
				candDir := normalizeOrZero(cand.Centroid.Sub(current.Centroid))
				cost = 1 - prevDir.Dot(candDir)
			}
			if cost < bestCost {
				bestCost = cost
				best = cand
			}
		}
		if best == nil {
			return run
		}
		degrees[best.Index]++
		run = append(run, best)
		prev, current = current, best
	}
}

// wrappingNext seeds at the next unvisited face in index order and emits
// one exhausted wrapping region per call.
func wrappingNext(g *MeshGraph, degrees []int) func() ([]*Face, bool) {
	cursor := 0
	return func() ([]*Face, bool) {
		for cursor < len(g.Faces) && degrees[g.Faces[cursor].Index] != 0 {
			cursor++
		}
		if cursor >= len(g.Faces) {
			return nil, false
		}
		return wrapRegion(g.Faces[cursor], degrees), true
	}
}

// wrapRegion expands a frontier of unvisited neighbors from seed,
// preferring the nearest centroid among frontier faces still adjacent to
// the current face, until the region is exhausted.
func wrapRegion(seed *Face, degrees []int) []*Face {
	degrees[seed.Index]++
	seq := []*Face{seed}

	var frontier []*Face
	expand := func(f *Face) {
		for _, n := range dualNeighbors(f) {
			if degrees[n.Index] == 0 && !containsFace(frontier, n) {
				frontier = append(frontier, n)
			}
		}
	}
	expand(seed)

	current := seed
	for len(frontier) > 0 {
		pickAt := -1
		bestDist := math.Inf(1)
		for i, f := range frontier {
			if !dualAdjacent(current, f) {
				continue
			}
			if d := f.Centroid.Dist(current.Centroid); d < bestDist {
				bestDist = d
				pickAt = i
			}
		}
		if pickAt == -1 {
			for i, f := range frontier {
				if d := f.Centroid.Dist(current.Centroid); d < bestDist {
					bestDist = d
					pickAt = i
				}
			}
		}
		pick := frontier[pickAt]
		frontier = append(frontier[:pickAt], frontier[pickAt+1:]...)
		degrees[pick.Index]++
		seq = append(seq, pick)
		current = pick
		expand(pick)
	}
	return seq
}

// pendingNext delivers precomputed runs one per call.
func pendingNext(seqs [][]*Face) func() ([]*Face, bool) {
	return func() ([]*Face, bool) {
		if len(seqs) == 0 {
			return nil, false
		}
		seq := seqs[0]
		seqs = seqs[1:]
		return seq, true
	}
}

func drainRuns(next func() ([]*Face, bool)) [][]*Face {
	var seqs [][]*Face
	for {
		seq, ok := next()
		if !ok {
			return seqs
		}
		seqs = append(seqs, seq)
	}
}

func sequentialWalk(g *MeshGraph, degrees []int) [][]*Face {
	return drainRuns(sequentialNext(g, degrees))
}

func nearestNeighborWalk(g *MeshGraph, degrees []int) [][]*Face {
	return drainRuns(nearestNext(g, degrees))
}

func wrappingWalk(g *MeshGraph, degrees []int) [][]*Face {
	return drainRuns(wrappingNext(g, degrees))
}

// A pathTracer converts face sequences into point paths, tracking the
// smallest spacing seen between consecutive points for later resampling.
type pathTracer struct {
	minSpacing float64
}

// trace emits one point per face. The first two points are centroids;
// from then on points are placed ahead of the travel direction.
func (t *pathTracer) trace(seq []*Face) Path {
	path := make(Path, 0, len(seq))
	for _, f := range seq {
		var p model3d.Coord3D
		if len(path) < 2 {
			p = f.Centroid
		} else {
			last := path[len(path)-1]
			dir := normalizeOrZero(last.Sub(path[len(path)-2]))
			p = nextPoint(f, last, dir)
		}
		if len(path) > 0 {
			if d := p.Dist(path[len(path)-1]); d > 0 && d < t.minSpacing {
				t.minSpacing = d
			}
		}
		path = append(path, p)
	}
	return path
}

// nextPoint places a point on f relative to the travel direction: an
// ahead-weighted blend of the vertices when all three lie strictly ahead,
// otherwise the midpoint of the centroid and the furthest-ahead vertex.
func nextPoint(f *Face, from, dir model3d.Coord3D) model3d.Coord3D {
	var ahead [3]float64
	allAhead := true
	best := 0
	for i, v := range f.V {
		ahead[i] = v.Position.Sub(from).Dot(dir)
		if ahead[i] <= 0 {
			allAhead = false
		}
		if ahead[i] > ahead[best] {
			best = i
		}
	}
	if allAhead {
		total := ahead[0] + ahead[1] + ahead[2]
		return f.V[0].Position.Scale(ahead[0] / total).
			Add(f.V[1].Position.Scale(ahead[1] / total)).
			Add(f.V[2].Position.Scale(ahead[2] / total))
	}
	return f.Centroid.Mid(f.V[best].Position)
}

// stitchEndpoints extends each path's two endpoints toward the closest
// point of any path, skipping a two-point margin on the path's own end so
// the join reaches past its immediate neighborhood.
func stitchEndpoints(paths []Path) {
	const margin = 2
	for i := range paths {
		if len(paths[i]) < 2 {
			continue
		}
		if q, ok := closestPoint(paths, i, paths[i][0], margin, true); ok {
			paths[i] = append(Path{q}, paths[i]...)
		}
		p := paths[i]
		if q, ok := closestPoint(paths, i, p[len(p)-1], margin, false); ok {
			paths[i] = append(p, q)
		}
	}
}

func closestPoint(paths []Path, self int, from model3d.Coord3D, margin int, atStart bool) (model3d.Coord3D, bool) {
	best := math.Inf(1)
	var bestPt model3d.Coord3D
	found := false
	for j, q := range paths {
		for k, pt := range q {
			if j == self {
				if atStart && k < margin {
					continue
				}
				if !atStart && k >= len(q)-margin {
					continue
				}
			}
			d := pt.Dist(from)
			if d == 0 {
				continue
			}
			if d < best {
				best = d
				bestPt = pt
				found = true
			}
		}
	}
	return bestPt, found
}

func normalizeOrZero(c model3d.Coord3D) model3d.Coord3D {
	if n := c.Norm(); n > 0 {
		return c.Scale(1 / n)
	}
	return c
}
