package tubed

import (
	"fmt"
	"math"

	"github.com/unixpickle/model3d/model3d"
	"go.uber.org/zap"
)

const (
	minSampleInterval = 0.001
	maxSampleInterval = 0.0012

	// sampleBudgetFactor caps total resampled points at this multiple of
	// the target point count; the interval is widened when exceeded.
	sampleBudgetFactor = 3

	defaultTargetPoints = 20000
)

// CurveOptions configures BuildCurves.
type CurveOptions struct {
	// TargetPoints bounds the total number of resampled points across
	// all curves (times sampleBudgetFactor). Zero means a default.
	TargetPoints int

	Log *zap.SugaredLogger
}

// BuiltCurves is the ordered, fitted, resampled output of BuildCurves.
type BuiltCurves struct {
	Curves []*Curve

	// Points holds the resampled points of each curve, index-aligned
	// with Curves.
	Points [][]model3d.Coord3D

	// Interval is the sampling interval actually used.
	Interval float64

	// TotalPoints is the realized point count across all curves.
	TotalPoints int
}

// BuildCurves prunes and reorders the raw search paths, fits one smooth
// curve per surviving path, and resamples each at a shared interval
// derived from the minimum observed point spacing.
func BuildCurves(paths []Path, minSpacing float64, opts CurveOptions) (*BuiltCurves, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("curve builder: no paths: %w", ErrInsufficientGeometry)
	}
	target := opts.TargetPoints
	if target <= 0 {
		target = defaultTargetPoints
	}

	interval := minSpacing / 2
	if interval < minSampleInterval {
		interval = minSampleInterval
	} else if interval > maxSampleInterval {
		interval = maxSampleInterval
	}
	totalLen := 0.0
	for _, p := range paths {
		totalLen += chordLength(p)
	}
	budget := float64(sampleBudgetFactor * target)
	if totalLen/interval > budget {
		interval = totalLen / budget
	}

	pruned := make([]Path, 0, len(paths))
	for _, p := range paths {
		if q := prunePath(p, interval); len(q) >= 2 {
			pruned = append(pruned, q)
		}
	}
	if len(pruned) == 0 {
		return nil, fmt.Errorf("curve builder: all paths pruned away: %w", ErrInsufficientGeometry)
	}
	ordered := orderPaths(pruned)

	res := &BuiltCurves{Interval: interval}
	for _, p := range ordered {
		c := FitCurve(p)
		if c.Length() < interval {
			continue
		}
		pts := c.Resample(interval)
		res.Curves = append(res.Curves, c)
		res.Points = append(res.Points, pts)
		res.TotalPoints += len(pts)
	}
	if len(res.Curves) == 0 {
		return nil, fmt.Errorf("curve builder: no curve longer than interval %f: %w",
			interval, ErrInsufficientGeometry)
	}
	if opts.Log != nil {
		opts.Log.Infow("curves built",
			"curves", len(res.Curves),
			"interval", res.Interval,
			"points", res.TotalPoints)
	}
	return res, nil
}

func chordLength(p Path) float64 {
	total := 0.0
	for i := 1; i < len(p); i++ {
		total += p[i].Dist(p[i-1])
	}
	return total
}

// prunePath scans back-to-front, dropping points whose cumulative squared
// distance from the previously retained point stays below interval². Both
// endpoints are always retained.
func prunePath(p Path, interval float64) Path {
	if len(p) < 2 {
		return nil
	}
	threshold := interval * interval
	reversed := Path{p[len(p)-1]}
	acc := 0.0
	for i := len(p) - 2; i > 0; i-- {
		d := p[i].Sub(p[i+1])
		acc += d.Dot(d)
		if acc < threshold {
			continue
		}
		reversed = append(reversed, p[i])
		acc = 0
	}
	reversed = append(reversed, p[0])

	out := make(Path, len(reversed))
	for i, pt := range reversed {
		out[len(out)-1-i] = pt
	}
	return out
}

// orderPaths greedily reorders paths so that each path starts nearest to
// the previous path's end. Single pass, not globally optimal.
func orderPaths(paths []Path) []Path {
	if len(paths) <= 1 {
		return paths
	}
	remaining := append([]Path{}, paths...)
	out := []Path{remaining[0]}
	remaining = remaining[1:]
	for len(remaining) > 0 {
		last := out[len(out)-1]
		end := last[len(last)-1]
		pick := 0
		best := math.Inf(1)
		for i, p := range remaining {
			d := p[0].Sub(end)
			if sq := d.Dot(d); sq < best {
				best = sq
				pick = i
			}
		}
		out = append(out, remaining[pick])
		remaining = append(remaining[:pick], remaining[pick+1:]...)
	}
	return out
}
