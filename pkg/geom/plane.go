package geom

import (
	"fmt"
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Plane is an oriented plane in Hessian normal form: points x on the plane
// satisfy Normal·x == D, with Normal of unit length.
type Plane struct {
	Normal v3.Vec
	D      float64
}

// PlaneFromPoints returns the plane through three points, with the normal
// following the right-hand rule on (a, b, c). Collinear points are an error.
func PlaneFromPoints(a, b, c v3.Vec) (Plane, error) {
	n := b.Sub(a).Cross(c.Sub(a))
	l := n.Length()
	if l < Epsilon {
		return Plane{}, fmt.Errorf("geom: plane from collinear points")
	}
	n = n.DivScalar(l)
	return Plane{Normal: n, D: n.Dot(a)}, nil
}

// Distance returns the signed distance from p to the plane, positive on the
// normal side.
func (pl Plane) Distance(p v3.Vec) float64 {
	return pl.Normal.Dot(p) - pl.D
}

// LineAngle returns the signed angle in radians between the plane and the
// line from p to q: positive when the line rises toward the normal side,
// zero when the line lies in the plane.
func (pl Plane) LineAngle(p, q v3.Vec) float64 {
	d := q.Sub(p)
	l := d.Length()
	if l < Epsilon {
		return 0
	}
	s := pl.Normal.Dot(d) / l
	s = math.Max(-1, math.Min(1, s))
	return math.Asin(s)
}

// PointLineDistance returns the distance from p to the infinite line
// through a and b.
func PointLineDistance(p, a, b v3.Vec) float64 {
	d := b.Sub(a)
	l := d.Length()
	if l < Epsilon {
		return p.Sub(a).Length()
	}
	return p.Sub(a).Cross(d).Length() / l
}
