package tubed

// greedyWalk builds the full face-dual edge set and accepts edges
// cheapest-first, skipping any edge that would consume a face more than
// twice or close a cycle among accepted edges. Paths are then assembled
// by walking chains of accepted edges between terminal edges. The
// isolated group from the partition is intentionally unused.
func greedyWalk(g *MeshGraph, degrees []int) ([][]*Face, error) {
	set, err := BuildEdgeSet(g)
	if err != nil {
		return nil, err
	}

	incident := map[*Face][]*FaceEdge{}
	var accepted []*FaceEdge
	for {
		e := set.PopCheapest()
		if e == nil {
			break
		}
		if degrees[e.A.Index] >= 2 || degrees[e.B.Index] >= 2 {
			continue
		}
		if onSameChain(e.A, e.B, incident) {
			continue
		}
		degrees[e.A.Index]++
		degrees[e.B.Index]++
		incident[e.A] = append(incident[e.A], e)
		incident[e.B] = append(incident[e.B], e)
		accepted = append(accepted, e)
	}

	_, terminal, _ := PartitionEdges(accepted, degrees)

	visited := map[*FaceEdge]bool{}
	var seqs [][]*Face
	for _, t := range terminal {
		if visited[t] {
			continue
		}
		open, next := t.A, t.B
		if degrees[open.Index] >= 2 {
			open, next = next, open
		}
		visited[t] = true
		seq := []*Face{open}
		came := t
		cur := next
		for {
			seq = append(seq, cur)
			var nextEdge *FaceEdge
			for _, e := range incident[cur] {
				if e != came && !visited[e] {
					nextEdge = e
					break
				}
			}
			if nextEdge == nil {
				break
			}
			visited[nextEdge] = true
			came = nextEdge
			cur = nextEdge.Other(cur)
		}
		seqs = append(seqs, seq)
	}
	return seqs, nil
}

// onSameChain walks the accepted-edge chain outward from b in both
// directions and reports whether it reaches a. Accepted edges always form
// simple chains (degree cap plus this check), so each walk terminates.
func onSameChain(a, b *Face, incident map[*Face][]*FaceEdge) bool {
	for _, start := range incident[b] {
		came := start
		cur := start.Other(b)
		for {
			if cur == a {
				return true
			}
			var next *FaceEdge
			for _, e := range incident[cur] {
				if e != came {
					next = e
					break
				}
			}
			if next == nil {
				break
			}
			came = next
			cur = next.Other(cur)
		}
	}
	return false
}
