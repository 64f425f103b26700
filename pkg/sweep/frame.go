// Package sweep places a fixed cross-section shape along a path. It
// computes one rigid frame per path point under a chosen orientation
// method, distributes twist and closure corrections across the frames, and
// assembles the placed sections into a mesh.
package sweep

import (
	"math"

	"github.com/chazu/loft/pkg/geom"
	"github.com/deadsy/sdfx/sdf"
	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Frame is one rigid placement along a sweep: an origin, an orthonormal
// right-handed basis, and a per-frame section scale. Z is the forward axis
// and always equals the local path tangent; the section's plane is spanned
// by X and Y. Any twist is already baked into X and Y.
type Frame struct {
	Origin  v3.Vec
	X, Y, Z v3.Vec
	Scale   v2.Vec
}

// Place maps a 2D section point into world space through the frame.
func (f Frame) Place(p v2.Vec) v3.Vec {
	return f.Origin.
		Add(f.X.MulScalar(p.X * f.Scale.X)).
		Add(f.Y.MulScalar(p.Y * f.Scale.Y))
}

// PlaceProfile maps a whole 2D section through the frame.
func (f Frame) PlaceProfile(shape geom.Profile2D) geom.Profile {
	out := make(geom.Profile, len(shape))
	for i, p := range shape {
		out[i] = f.Place(p)
	}
	return out
}

// M44 returns the frame as an affine transform,
// translate(origin) * rotation(basis) * scale, for callers that attach
// auxiliary geometry or drive a displacement pass.
func (f Frame) M44() sdf.M44 {
	return sdf.Translate3d(f.Origin).
		Mul(f.rotation()).
		Mul(sdf.Scale3d(v3.Vec{X: f.Scale.X, Y: f.Scale.Y, Z: 1}))
}

// rotation builds the basis rotation from primitive axis rotations: first
// carry the world Z axis onto the frame's forward axis, then roll about it
// until the world X axis image lands on the frame's side axis.
func (f Frame) rotation() sdf.M44 {
	ez := v3.Vec{X: 0, Y: 0, Z: 1}
	d := ez.Dot(f.Z)
	var m sdf.M44
	switch {
	case d > 1-geom.Epsilon:
		m = sdf.Identity3d()
	case d < -1+geom.Epsilon:
		m = sdf.Rotate3d(v3.Vec{X: 1, Y: 0, Z: 0}, math.Pi)
	default:
		axis := ez.Cross(f.Z).Normalize()
		m = sdf.Rotate3d(axis, math.Acos(math.Max(-1, math.Min(1, d))))
	}
	u := m.MulPosition(v3.Vec{X: 1, Y: 0, Z: 0})
	roll := geom.AngleAbout(f.Z, u, f.X)
	return sdf.Rotate3d(f.Z, roll).Mul(m)
}

// twisted returns the frame rotated by angle radians about its forward
// axis.
func (f Frame) twisted(angle float64) Frame {
	if angle == 0 {
		return f
	}
	c := math.Cos(angle)
	s := math.Sin(angle)
	x := f.X.MulScalar(c).Add(f.Y.MulScalar(s))
	f.X = x.Normalize()
	f.Y = f.Z.Cross(f.X)
	return f
}

// TransformList is an ordered, immutable frame sequence for one sweep.
// A closed sweep carries one extra synthetic frame at the end, frame 0
// advanced around the full loop, used to measure and absorb the closure
// twist mismatch.
type TransformList []Frame

// SectionCount returns the number of real section placements, excluding a
// closed sweep's synthetic closing frame.
func (tf TransformList) SectionCount(closed bool) int {
	if closed && len(tf) > 0 {
		return len(tf) - 1
	}
	return len(tf)
}

// Fractions returns each frame's arclength position along the sweep as a
// fraction of the total, measured over the frame origins.
func (tf TransformList) Fractions() []float64 {
	out := make([]float64, len(tf))
	total := 0.0
	for i := 1; i < len(tf); i++ {
		total += tf[i].Origin.Sub(tf[i-1].Origin).Length()
		out[i] = total
	}
	if total < geom.Epsilon {
		return out
	}
	for i := range out {
		out[i] /= total
	}
	return out
}

// At returns the frame nearest to the given arclength fraction of the
// sweep, for attaching auxiliary geometry at a path position.
func (tf TransformList) At(fraction float64) Frame {
	if len(tf) == 0 {
		return Frame{}
	}
	fr := tf.Fractions()
	best := 0
	for i, f := range fr {
		if math.Abs(f-fraction) < math.Abs(fr[best]-fraction) {
			best = i
		}
	}
	return tf[best]
}
