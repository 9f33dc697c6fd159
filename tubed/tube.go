package tubed

import (
	"math"

	"github.com/unixpickle/model3d/model3d"
)

// TubeOptions sizes the extruded tube geometry.
type TubeOptions struct {
	// Radius of the tube cross-section. Zero means a default.
	Radius float64

	// Density multiplies each curve's resampled point count to give the
	// number of rings extruded along it. Zero means 1.
	Density float64

	// Sides is the number of vertices per cross-section ring. Zero
	// means a default.
	Sides int
}

const (
	defaultTubeRadius = 0.005
	defaultTubeSides  = 8
)

// A Tube is the merged extruded geometry of all curves, ordered along the
// stitched curve sequence so that a prefix of it can be revealed as a
// printing progress animation.
type Tube struct {
	triangles []*model3d.Triangle

	// trisPerSegment is the triangle count added per revealed ring.
	trisPerSegment int

	totalPoints int
}

// ExtrudeTubes builds one tube per curve with parallel-transport framing
// and merges them, in curve order, into a single triangle list.
func ExtrudeTubes(curves *BuiltCurves, opts TubeOptions) *Tube {
	radius := opts.Radius
	if radius == 0 {
		radius = defaultTubeRadius
	}
	density := opts.Density
	if density == 0 {
		density = 1
	}
	sides := opts.Sides
	if sides == 0 {
		sides = defaultTubeSides
	}

	t := &Tube{trisPerSegment: 2 * sides}
	for i, c := range curves.Curves {
		rings := int(float64(len(curves.Points[i])) * density)
		if rings < 2 {
			rings = 2
		}
		t.extrudeCurve(c, rings, radius, sides)
		t.totalPoints += rings
	}
	return t
}

func (t *Tube) extrudeCurve(c *Curve, rings int, radius float64, sides int) {
	centers := make([]model3d.Coord3D, rings)
	for i := range centers {
		centers[i] = c.EvalFrac(float64(i) / float64(rings-1))
	}

	tangents := make([]model3d.Coord3D, rings)
	for i := range tangents {
		var d model3d.Coord3D
		if i+1 < rings {
			d = centers[i+1].Sub(centers[i])
		} else {
			d = centers[i].Sub(centers[i-1])
		}
		tangents[i] = normalizeOrZero(d)
	}

	// Parallel transport: project the previous ring's normal off the new
	// tangent rather than picking a fresh frame per ring, so consecutive
	// rings never twist against each other.
	normal := perpendicular(tangents[0])
	var prevRing []model3d.Coord3D
	for i := 0; i < rings; i++ {
		proj := normal.Sub(tangents[i].Scale(normal.Dot(tangents[i])))
		if proj.Norm() < 1e-9 {
			proj = perpendicular(tangents[i])
		}
		normal = normalizeOrZero(proj)
		binormal := tangents[i].Cross(normal)

		ring := make([]model3d.Coord3D, sides)
		for k := 0; k < sides; k++ {
			theta := 2 * math.Pi * float64(k) / float64(sides)
			offset := normal.Scale(math.Cos(theta)).Add(binormal.Scale(math.Sin(theta)))
			ring[k] = centers[i].Add(offset.Scale(radius))
		}
		if prevRing != nil {
			for k := 0; k < sides; k++ {
				k1 := (k + 1) % sides
				t.triangles = append(t.triangles,
					&model3d.Triangle{prevRing[k], prevRing[k1], ring[k]},
					&model3d.Triangle{prevRing[k1], ring[k1], ring[k]},
				)
			}
		}
		prevRing = ring
	}
}

// perpendicular returns a unit vector perpendicular to v.
func perpendicular(v model3d.Coord3D) model3d.Coord3D {
	axis := model3d.X(1)
	if math.Abs(v.X) > 0.9 {
		axis = model3d.Y(1)
	}
	return normalizeOrZero(axis.Sub(v.Scale(axis.Dot(v))))
}

// TotalPoints returns the number of rings across all tubes.
func (t *Tube) TotalPoints() int {
	return t.totalPoints
}

// VisibleAt maps a progress fraction in [0, 1] onto a prefix of the
// merged geometry: progress times the total ring count, scaled by the
// per-segment triangle multiplier. It is a pure function of progress.
func (t *Tube) VisibleAt(progress float64) []*model3d.Triangle {
	if progress <= 0 {
		return nil
	}
	if progress > 1 {
		progress = 1
	}
	cutoff := int(progress*float64(t.totalPoints)) * t.trisPerSegment
	if cutoff > len(t.triangles) {
		cutoff = len(t.triangles)
	}
	return t.triangles[:cutoff]
}

// Mesh returns the full tube geometry.
func (t *Tube) Mesh() *model3d.Mesh {
	return model3d.NewMeshTriangles(t.triangles)
}
