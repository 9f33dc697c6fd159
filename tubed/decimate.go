package tubed

import (
	"math"

	"go.uber.org/zap"
)

// A Decimator removes vertices from a MeshGraph by iterative edge
// collapse, always collapsing the globally cheapest edge first.
//
// Log may be nil, in which case nothing is logged.
type Decimator struct {
	Graph *MeshGraph
	Log   *zap.SugaredLogger
}

// Collapse removes target vertices synchronously and returns the number
// actually removed. A target larger than the current vertex count is
// substituted with half the current count; the substitution is logged,
// not an error.
func (d *Decimator) Collapse(target int) int {
	run := d.Begin(target)
	for !run.Step(run.Remaining()) {
	}
	return run.Removed()
}

// A CollapseRun is an in-progress decimation that can be driven in
// bounded steps by any host scheduler.
type CollapseRun struct {
	d         *Decimator
	remaining int
	removed   int
	done      bool
}

// Begin clamps the removal target against the current vertex count and
// returns a resumable run.
func (d *Decimator) Begin(target int) *CollapseRun {
	if target > len(d.Graph.Vertices) {
		substituted := len(d.Graph.Vertices) / 2
		if d.Log != nil {
			d.Log.Warnw("collapse target exceeds vertex count, substituting",
				"requested", target,
				"vertices", len(d.Graph.Vertices),
				"substituted", substituted)
		}
		target = substituted
	}
	if target < 0 {
		target = 0
	}
	return &CollapseRun{d: d, remaining: target}
}

// Step performs up to budget collapses and reports whether the run is
// complete. Face hashes are refreshed once, in bulk, when the run
// finishes; they are stale while it is in progress.
func (r *CollapseRun) Step(budget int) bool {
	if r.done {
		return true
	}
	g := r.d.Graph
	for budget > 0 && r.remaining > 0 {
		u := g.PopCheapest()
		if u == nil {
			r.remaining = 0
			break
		}
		r.d.collapseVertex(u)
		r.removed++
		r.remaining--
		budget--
	}
	if r.remaining == 0 {
		r.done = true
		g.RecomputeFaceHashes()
		if r.d.Log != nil {
			r.d.Log.Infow("collapse complete",
				"removed", r.removed,
				"vertices", len(g.Vertices),
				"faces", len(g.Faces))
		}
	}
	return r.done
}

// Remaining returns the number of collapses the run still has to do.
func (r *CollapseRun) Remaining() int {
	return r.remaining
}

// Removed returns the number of vertices removed so far.
func (r *CollapseRun) Removed() int {
	return r.removed
}

// collapseVertex merges u into its collapse neighbor, or removes it
// outright if it has none.
func (d *Decimator) collapseVertex(u *Vertex) {
	g := d.Graph
	v := u.CollapseNeighbor
	if v == nil {
		g.RemoveVertex(u)
		return
	}

	oldNeighbors := append([]*Vertex{}, u.Neighbors...)

	// Faces containing both endpoints degenerate when u merges into v.
	for _, f := range append([]*Face{}, u.Faces...) {
		if f.HasVertex(v) {
			g.RemoveFace(f)
		}
	}

	// Re-point the surviving faces of u at v.
	remaining := append([]*Face{}, u.Faces...)
	u.Faces = nil
	for _, f := range remaining {
		for i, w := range f.V {
			if w == u {
				f.V[i] = v
			}
		}
		v.Faces = append(v.Faces, f)
		linkNeighbors(f.V[0], f.V[1])
		linkNeighbors(f.V[1], f.V[2])
		linkNeighbors(f.V[2], f.V[0])
		f.recompute()
	}

	g.RemoveVertex(u)

	for _, n := range oldNeighbors {
		if n == u {
			continue
		}
		g.updateVertexCost(n)
		g.ReindexCost(n)
	}
}

// updateVertexCost recomputes a vertex's collapse cost as the mean edge
// collapse cost over its neighbors, and its collapse neighbor as the
// cheapest such neighbor. A vertex with no neighbors gets the sentinel
// cost so it is cleaned up before any real collapse.
func (g *MeshGraph) updateVertexCost(v *Vertex) {
	if len(v.Neighbors) == 0 {
		v.CollapseCost = isolatedCost
		v.CollapseNeighbor = nil
		return
	}
	total := 0.0
	best := math.Inf(1)
	var bestNeighbor *Vertex
	for _, n := range v.Neighbors {
		c := edgeCollapseCost(v, n)
		total += c
		if c < best {
			best = c
			bestNeighbor = n
		}
	}
	v.CollapseCost = total / float64(len(v.Neighbors))
	v.CollapseNeighbor = bestNeighbor
}

// edgeCollapseCost scores collapsing u into v as edge length times local
// curvature. A boundary edge (anything but exactly two wing faces) takes
// the maximum curvature penalty.
func edgeCollapseCost(u, v *Vertex) float64 {
	length := u.Position.Dist(v.Position)

	var wings []*Face
	for _, f := range u.Faces {
		if f.HasVertex(v) {
			wings = append(wings, f)
		}
	}

	curvature := 1.0
	if len(wings) == 2 {
		curvature = 0.0
		for _, f := range u.Faces {
			best := math.Max(f.Normal.Dot(wings[0].Normal), f.Normal.Dot(wings[1].Normal))
			c := math.Min(1, (1-best)/2)
			if c > curvature {
				curvature = c
			}
		}
	}
	return length * curvature
}
