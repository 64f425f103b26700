package geom

import (
	"fmt"
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Path is an ordered polyline a sweep travels along. A closed path wraps
// from its last point back to its first.
type Path struct {
	Points []v3.Vec
	Closed bool
}

// Len returns the number of path points.
func (p Path) Len() int { return len(p.Points) }

// Tangents estimates a unit tangent at every path point by central finite
// differences. For an open path the end tangents are one-sided; for a
// closed path the differences wrap.
func (p Path) Tangents() []v3.Vec {
	n := len(p.Points)
	out := make([]v3.Vec, n)
	if n < 2 {
		return out
	}
	for i := 0; i < n; i++ {
		var d v3.Vec
		switch {
		case p.Closed:
			d = p.Points[(i+1)%n].Sub(p.Points[(i-1+n)%n])
		case i == 0:
			d = p.Points[1].Sub(p.Points[0])
		case i == n-1:
			d = p.Points[n-1].Sub(p.Points[n-2])
		default:
			d = p.Points[i+1].Sub(p.Points[i-1])
		}
		l := d.Length()
		if l < Epsilon {
			// Coincident neighbors; fall back to the previous tangent.
			if i > 0 {
				out[i] = out[i-1]
				continue
			}
			d = v3.Vec{X: 0, Y: 0, Z: 1}
			l = 1
		}
		out[i] = d.DivScalar(l)
	}
	return out
}

// ArcLengths returns the cumulative arclength at every path point, starting
// at 0. For a closed path one extra entry holds the full loop length.
func (p Path) ArcLengths() []float64 {
	n := len(p.Points)
	size := n
	if p.Closed {
		size = n + 1
	}
	out := make([]float64, size)
	for i := 1; i < n; i++ {
		out[i] = out[i-1] + p.Points[i].Sub(p.Points[i-1]).Length()
	}
	if p.Closed {
		out[n] = out[n-1] + p.Points[0].Sub(p.Points[n-1]).Length()
	}
	return out
}

// Length returns the total arclength of the path.
func (p Path) Length() float64 {
	al := p.ArcLengths()
	return al[len(al)-1]
}

// Fractions returns each point's arclength position as a fraction of the
// total path length, so a quantity can be interpolated evenly along the
// path. For a closed path the fractions run over the full loop, ending
// short of 1 at the last point.
func (p Path) Fractions() []float64 {
	al := p.ArcLengths()
	total := al[len(al)-1]
	out := make([]float64, len(p.Points))
	if total < Epsilon {
		return out
	}
	for i := range out {
		out[i] = al[i] / total
	}
	return out
}

// Resample returns the path resampled to n points evenly spaced by
// arclength. The first point is preserved; for an open path the last point
// is preserved too.
func (p Path) Resample(n int) (Path, error) {
	if n < 2 {
		return Path{}, fmt.Errorf("geom: path resample: need at least 2 points, got %d", n)
	}
	if len(p.Points) < 2 {
		return Path{}, fmt.Errorf("geom: path resample: source has %d points", len(p.Points))
	}
	al := p.ArcLengths()
	total := al[len(al)-1]
	if total < Epsilon {
		return Path{}, fmt.Errorf("geom: path resample: degenerate path of zero length")
	}

	// Target arclengths.
	targets := make([]float64, n)
	for i := range targets {
		if p.Closed {
			targets[i] = total * float64(i) / float64(n)
		} else {
			targets[i] = total * float64(i) / float64(n-1)
		}
	}

	pts := make([]v3.Vec, n)
	seg := 0
	for i, t := range targets {
		for seg < len(al)-2 && al[seg+1] < t {
			seg++
		}
		a := p.Points[seg%len(p.Points)]
		b := p.Points[(seg+1)%len(p.Points)]
		span := al[seg+1] - al[seg]
		if span < Epsilon {
			pts[i] = a
			continue
		}
		pts[i] = Lerp(a, b, (t-al[seg])/span)
	}
	return Path{Points: pts, Closed: p.Closed}, nil
}

// LinePath returns a straight open path of n points from a to b.
func LinePath(a, b v3.Vec, n int) Path {
	if n < 2 {
		n = 2
	}
	pts := make([]v3.Vec, n)
	for i := range pts {
		pts[i] = Lerp(a, b, float64(i)/float64(n-1))
	}
	return Path{Points: pts}
}

// ArcPath returns a circular arc of the given radius in the XY plane,
// centered at the origin, spanning angle degrees from angle 0. A full 360
// degree arc becomes a closed path.
func ArcPath(r, angle float64, n int) Path {
	if n < 2 {
		n = DefaultSegments
	}
	full := math.Abs(angle-360) < Epsilon
	pts := make([]v3.Vec, n)
	for i := range pts {
		var f float64
		if full {
			f = float64(i) / float64(n)
		} else {
			f = float64(i) / float64(n-1)
		}
		a := angle * math.Pi / 180 * f
		pts[i] = v3.Vec{X: r * math.Cos(a), Y: r * math.Sin(a)}
	}
	return Path{Points: pts, Closed: full}
}

// HelixPath returns an open helical path around the Z axis with the given
// radius, pitch (height gained per turn) and number of turns.
func HelixPath(r, pitch, turns float64, n int) Path {
	if n < 2 {
		n = DefaultSegments
	}
	pts := make([]v3.Vec, n)
	for i := range pts {
		f := float64(i) / float64(n-1)
		a := 2 * math.Pi * turns * f
		pts[i] = v3.Vec{X: r * math.Cos(a), Y: r * math.Sin(a), Z: pitch * turns * f}
	}
	return Path{Points: pts}
}
