// Package geom provides the shared geometry vocabulary for loft:
// cross-section profiles, sweep paths, planes, and the small set of
// vector helpers the matching and framing algorithms are built on.
// Points are sdfx vectors: v2.Vec for planar input, v3.Vec everywhere
// internally.
package geom

import (
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Epsilon is the tolerance used for degeneracy tests throughout loft.
const Epsilon = 1e-9

// DefaultSegments is the segment count used when a caller asks for a
// curved profile or path without specifying a resolution.
const DefaultSegments = 32

// Lerp linearly interpolates between a and b at parameter t in [0,1].
func Lerp(a, b v3.Vec, t float64) v3.Vec {
	return a.Add(b.Sub(a).MulScalar(t))
}

// ProjectPlane returns v with its component along the unit vector n removed.
func ProjectPlane(v, n v3.Vec) v3.Vec {
	return v.Sub(n.MulScalar(v.Dot(n)))
}

// AngleAbout returns the signed angle in radians that rotates from onto to
// around the given axis, in (-pi, pi]. Both vectors should be roughly
// orthogonal to axis; their axial components are ignored.
func AngleAbout(axis, from, to v3.Vec) float64 {
	n := axis.Normalize()
	f := ProjectPlane(from, n)
	t := ProjectPlane(to, n)
	return math.Atan2(n.Dot(f.Cross(t)), f.Dot(t))
}

// Collinear reports whether the three points lie on one line within tol.
func Collinear(a, b, c v3.Vec, tol float64) bool {
	return b.Sub(a).Cross(c.Sub(a)).Length() <= tol
}
