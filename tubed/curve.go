package tubed

import (
	"sort"

	"github.com/unixpickle/model3d/model3d"
)

// curveSubdiv is the number of sub-samples per control segment used to
// build the arc-length table.
const curveSubdiv = 8

// A Curve is a smooth Catmull-Rom interpolation through a path's points,
// parameterized by arc-length fraction.
type Curve struct {
	points  []model3d.Coord3D
	samples []model3d.Coord3D
	cumLen  []float64
	length  float64
}

// FitCurve interpolates a curve through the points of a path. The path
// must contain at least two points.
func FitCurve(path Path) *Curve {
	c := &Curve{points: append([]model3d.Coord3D{}, path...)}
	for i := 0; i < len(c.points)-1; i++ {
		for j := 0; j < curveSubdiv; j++ {
			c.samples = append(c.samples, c.evalSegment(i, float64(j)/curveSubdiv))
		}
	}
	c.samples = append(c.samples, c.points[len(c.points)-1])

	c.cumLen = make([]float64, len(c.samples))
	for i := 1; i < len(c.samples); i++ {
		c.cumLen[i] = c.cumLen[i-1] + c.samples[i].Dist(c.samples[i-1])
	}
	c.length = c.cumLen[len(c.cumLen)-1]
	return c
}

// Length returns the curve's total arc length.
func (c *Curve) Length() float64 {
	return c.length
}

// evalSegment evaluates the Catmull-Rom segment between control points i
// and i+1 at local parameter t in [0, 1]. Endpoint segments reuse their
// boundary point as the missing outer control.
func (c *Curve) evalSegment(i int, t float64) model3d.Coord3D {
	at := func(j int) model3d.Coord3D {
		if j < 0 {
			j = 0
		} else if j >= len(c.points) {
			j = len(c.points) - 1
		}
		return c.points[j]
	}
	p0, p1, p2, p3 := at(i-1), at(i), at(i+1), at(i+2)

	t2 := t * t
	t3 := t2 * t
	return p1.Scale(2).
		Add(p2.Sub(p0).Scale(t)).
		Add(p0.Scale(2).Sub(p1.Scale(5)).Add(p2.Scale(4)).Sub(p3).Scale(t2)).
		Add(p1.Scale(3).Sub(p0).Sub(p2.Scale(3)).Add(p3).Scale(t3)).
		Scale(0.5)
}

// EvalFrac returns the point at arc-length fraction t in [0, 1].
func (c *Curve) EvalFrac(t float64) model3d.Coord3D {
	if t <= 0 {
		return c.samples[0]
	}
	if t >= 1 {
		return c.samples[len(c.samples)-1]
	}
	target := t * c.length
	i := sort.SearchFloat64s(c.cumLen, target)
	if i == 0 {
		return c.samples[0]
	}
	span := c.cumLen[i] - c.cumLen[i-1]
	if span == 0 {
		return c.samples[i]
	}
	frac := (target - c.cumLen[i-1]) / span
	a, b := c.samples[i-1], c.samples[i]
	return a.Add(b.Sub(a).Scale(frac))
}

// Resample returns evenly spaced points along the curve, one per interval
// of arc length, never fewer than two.
func (c *Curve) Resample(interval float64) []model3d.Coord3D {
	n := int(c.length / interval)
	if n < 2 {
		n = 2
	}
	out := make([]model3d.Coord3D, n)
	for i := range out {
		out[i] = c.EvalFrac(float64(i) / float64(n-1))
	}
	return out
}
