package sweep

import (
	"fmt"
	"math"

	"github.com/chazu/loft/pkg/geom"
	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Method selects how section orientation is derived along the path.
type Method int

const (
	// Incremental advances a rotation-minimizing frame point to point by
	// double reflection, then spreads any end-condition mismatch and
	// requested twist across the sweep.
	Incremental Method = iota
	// Natural orients the side axis along the local curvature direction
	// (the Frenet frame). Undefined at zero curvature.
	Natural
	// Manual orients frames from a caller-supplied normal, single or
	// per-point.
	Manual
)

// String returns the method name as used by callers and scripts.
func (m Method) String() string {
	switch m {
	case Incremental:
		return "incremental"
	case Natural:
		return "natural"
	case Manual:
		return "manual"
	}
	return fmt.Sprintf("Method(%d)", int(m))
}

// ParseMethod converts a method name to a Method.
func ParseMethod(s string) (Method, error) {
	switch s {
	case "incremental":
		return Incremental, nil
	case "natural":
		return Natural, nil
	case "manual":
		return Manual, nil
	}
	return 0, fmt.Errorf("sweep: unknown method %q", s)
}

// Warning is a non-fatal diagnostic produced while computing frames, such
// as a degenerate curvature in the natural method. The sweep still
// completes best-effort; the caller decides whether to surface it.
type Warning struct {
	Index   int
	Message string
}

func (w Warning) String() string {
	return fmt.Sprintf("point %d: %s", w.Index, w.Message)
}

// inflectionDot is the threshold on the dot product of curvature
// directions two samples apart below which the natural method reports a
// curvature flip.
const inflectionDot = 0.0

// defaultUp seeds the incremental frame's side axis.
var defaultUp = v3.Vec{X: 0, Y: 0, Z: 1}

// Options configures frame computation for one sweep.
type Options struct {
	Method   Method
	Twist    float64 // total twist over the sweep, degrees
	Symmetry int     // rotational symmetry of the section, default 1
	Up       v3.Vec  // incremental seed, default +Z

	Normals []v3.Vec // manual: one normal, or one per path point
	Relaxed bool     // manual: keep sections parallel to the normal

	LastNormal *v3.Vec  // incremental, open path: desired final side axis
	Tangents   []v3.Vec // override finite-difference tangents
	Scale      *v2.Vec  // end scale, interpolated from (1,1) by arclength
}

// Frames computes one frame per path point under the configured
// orientation method. For a closed path one synthetic closing frame is
// appended: frame 0 carried around the full loop, with the closure
// mismatch already absorbed, so it differs from frame 0 only by the
// requested twist.
//
// Precondition failures (too few points, bad twist for a closed sweep, a
// manual normal parallel to the tangent) return an error naming the
// offending point. Curvature degeneracies in the natural method return
// warnings alongside a best-effort result instead.
func Frames(path geom.Path, opts Options) (TransformList, []Warning, error) {
	n := path.Len()
	if n < 2 {
		return nil, nil, fmt.Errorf("sweep: path needs at least 2 points, got %d", n)
	}
	sym := opts.Symmetry
	if sym < 1 {
		sym = 1
	}
	symStep := 360.0 / float64(sym)
	if path.Closed {
		rem := math.Mod(opts.Twist, symStep)
		if math.Abs(rem) > geom.Epsilon && math.Abs(math.Abs(rem)-symStep) > geom.Epsilon {
			return nil, nil, fmt.Errorf("sweep: closed sweep twist %v must be a multiple of %v (360/symmetry %d)",
				opts.Twist, symStep, sym)
		}
	}

	tangents := opts.Tangents
	if tangents == nil {
		tangents = path.Tangents()
	} else if len(tangents) != n {
		return nil, nil, fmt.Errorf("sweep: %d tangents for %d path points", len(tangents), n)
	}

	// Arclength fractions over the full loop for a closed path, so the
	// synthetic closing frame sits at fraction 1.
	al := path.ArcLengths()
	total := al[len(al)-1]
	frac := make([]float64, n)
	if total > geom.Epsilon {
		for i := range frac {
			frac[i] = al[i] / total
		}
	}

	var (
		frames   TransformList
		warnings []Warning
		err      error
	)
	twistRad := opts.Twist * math.Pi / 180

	switch opts.Method {
	case Incremental:
		frames, err = incrementalFrames(path, tangents, opts)
		if err != nil {
			return nil, nil, err
		}
		correction := twistRad
		var closing Frame
		if path.Closed {
			closing = frames[len(frames)-1]
			frames = frames[:len(frames)-1]
			mismatch := geom.AngleAbout(tangents[0], frames[0].X, closing.X)
			step := 2 * math.Pi / float64(sym)
			residual := mismatch - step*math.Round(mismatch/step)
			correction -= residual
		} else if opts.LastNormal != nil {
			tEnd := tangents[n-1]
			desired := geom.ProjectPlane(*opts.LastNormal, tEnd)
			if desired.Length() < geom.Epsilon {
				return nil, nil, fmt.Errorf("sweep: last normal parallel to tangent at point %d", n-1)
			}
			correction += geom.AngleAbout(tEnd, frames[n-1].X, desired.Normalize())
		}
		for i := range frames {
			frames[i] = frames[i].twisted(correction * frac[i])
		}
		if path.Closed {
			frames = append(frames, closing.twisted(correction))
		}

	case Natural:
		frames, warnings = naturalFrames(path, tangents, opts)
		for i := range frames {
			frames[i] = frames[i].twisted(twistRad * frac[i])
		}
		if path.Closed {
			frames = append(frames, frames[0].twisted(twistRad))
		}

	case Manual:
		frames, err = manualFrames(path, tangents, opts)
		if err != nil {
			return nil, nil, err
		}
		for i := range frames {
			frames[i] = frames[i].twisted(twistRad * frac[i])
		}
		if path.Closed {
			frames = append(frames, frames[0].twisted(twistRad))
		}

	default:
		return nil, nil, fmt.Errorf("sweep: unknown method %v", opts.Method)
	}

	// Interpolate the section scale by arclength.
	end := v2.Vec{X: 1, Y: 1}
	if opts.Scale != nil {
		end = *opts.Scale
	}
	for i := range frames {
		f := frac[min(i, n-1)]
		if i >= n {
			f = 1 // synthetic closing frame
		}
		frames[i].Scale = v2.Vec{
			X: 1 + (end.X-1)*f,
			Y: 1 + (end.Y-1)*f,
		}
	}
	return frames, warnings, nil
}

// ---------------------------------------------------------------------------
// Incremental (rotation-minimizing)
// ---------------------------------------------------------------------------

// incrementalFrames propagates a rotation-minimizing side axis along the
// path by double reflection. For a closed path the returned list has one
// extra frame: the side axis carried from the last point back to the
// start, before any closure correction.
func incrementalFrames(path geom.Path, tangents []v3.Vec, opts Options) (TransformList, error) {
	n := path.Len()
	up := opts.Up
	if up.Length() < geom.Epsilon {
		up = defaultUp
	}
	x0 := geom.ProjectPlane(up, tangents[0])
	if x0.Length() < geom.Epsilon {
		// Tangent parallel to up: fall back to the world X axis.
		x0 = geom.ProjectPlane(v3.Vec{X: 1}, tangents[0])
		if x0.Length() < geom.Epsilon {
			x0 = v3.Vec{X: 1}
		}
	}
	x0 = x0.Normalize()

	frames := make(TransformList, 0, n+1)
	frames = append(frames, newFrame(path.Points[0], tangents[0], x0))
	x := x0
	for i := 0; i < n-1; i++ {
		x = rmfStep(path.Points[i], path.Points[i+1], tangents[i], tangents[i+1], x)
		frames = append(frames, newFrame(path.Points[i+1], tangents[i+1], x))
	}
	if path.Closed {
		x = rmfStep(path.Points[n-1], path.Points[0], tangents[n-1], tangents[0], x)
		frames = append(frames, newFrame(path.Points[0], tangents[0], x))
	}
	return frames, nil
}

// rmfStep advances the side axis x0 from (p0, t0) to (p1, t1) by the
// double-reflection construction: reflect through the plane bisecting the
// two points, then through the plane bisecting the tangent change. This
// keeps rotation about the tangent minimal without needing curvature.
func rmfStep(p0, p1, t0, t1, x0 v3.Vec) v3.Vec {
	v1 := p1.Sub(p0)
	c1 := v1.Dot(v1)
	if c1 < geom.Epsilon {
		return geom.ProjectPlane(x0, t1).Normalize()
	}
	xL := x0.Sub(v1.MulScalar(2 / c1 * v1.Dot(x0)))
	tL := t0.Sub(v1.MulScalar(2 / c1 * v1.Dot(t0)))
	u := t1.Sub(tL)
	c2 := u.Dot(u)
	if c2 < geom.Epsilon {
		return geom.ProjectPlane(xL, t1).Normalize()
	}
	x := xL.Sub(u.MulScalar(2 / c2 * u.Dot(xL)))
	// Re-orthonormalize against accumulated drift.
	return geom.ProjectPlane(x, t1).Normalize()
}

// ---------------------------------------------------------------------------
// Natural (Frenet)
// ---------------------------------------------------------------------------

// naturalFrames orients each side axis along the local curvature
// direction, estimated by differencing neighboring tangents. Points with
// vanishing curvature borrow the nearest defined direction and report a
// warning; a curvature-direction flip (inflection) is reported but still
// swept best-effort, since the resulting mesh is likely self-intersecting.
func naturalFrames(path geom.Path, tangents []v3.Vec, opts Options) (TransformList, []Warning) {
	n := path.Len()
	var warnings []Warning
	dirs := make([]v3.Vec, n)
	defined := make([]bool, n)

	for i := 0; i < n; i++ {
		var d v3.Vec
		switch {
		case path.Closed:
			d = tangents[(i+1)%n].Sub(tangents[(i-1+n)%n])
		case i == 0:
			d = tangents[1].Sub(tangents[0])
		case i == n-1:
			d = tangents[n-1].Sub(tangents[n-2])
		default:
			d = tangents[i+1].Sub(tangents[i-1])
		}
		k := geom.ProjectPlane(d, tangents[i])
		if k.Length() < geom.Epsilon {
			warnings = append(warnings, Warning{Index: i, Message: "zero curvature, side axis undefined; borrowing neighbor"})
			continue
		}
		dirs[i] = k.Normalize()
		defined[i] = true
	}

	// Fill undefined directions from the nearest defined neighbor, forward
	// then backward. A fully straight path falls back to a projected up.
	var last v3.Vec
	haveLast := false
	for i := 0; i < n; i++ {
		if defined[i] {
			last = dirs[i]
			haveLast = true
		} else if haveLast {
			dirs[i] = geom.ProjectPlane(last, tangents[i]).Normalize()
		}
	}
	for i := n - 1; i >= 0; i-- {
		if defined[i] {
			last = dirs[i]
			haveLast = true
		} else if haveLast && dirs[i].Length() < geom.Epsilon {
			dirs[i] = geom.ProjectPlane(last, tangents[i]).Normalize()
		}
	}
	if !haveLast {
		for i := 0; i < n; i++ {
			x := geom.ProjectPlane(defaultUp, tangents[i])
			if x.Length() < geom.Epsilon {
				x = v3.Vec{X: 1}
			}
			dirs[i] = x.Normalize()
		}
	}

	// An abrupt sign flip of the curvature direction signals an
	// inflection: the sweep will fold through itself there.
	for i := 2; i < n; i++ {
		if defined[i] && defined[i-2] && dirs[i].Dot(dirs[i-2]) < inflectionDot {
			warnings = append(warnings, Warning{Index: i, Message: "curvature direction flip (inflection); sweep may self-intersect"})
		}
	}

	frames := make(TransformList, n)
	for i := 0; i < n; i++ {
		frames[i] = newFrame(path.Points[i], tangents[i], dirs[i])
	}
	return frames, warnings
}

// ---------------------------------------------------------------------------
// Manual
// ---------------------------------------------------------------------------

// manualFrames orients frames from caller-supplied normals. The default
// mode projects the normal orthogonal to the tangent; relaxed mode instead
// re-projects the tangent orthogonal to the normal, keeping the sections
// literally parallel to the supplied normal.
func manualFrames(path geom.Path, tangents []v3.Vec, opts Options) (TransformList, error) {
	n := path.Len()
	if len(opts.Normals) != 1 && len(opts.Normals) != n {
		return nil, fmt.Errorf("sweep: manual method needs 1 or %d normals, got %d", n, len(opts.Normals))
	}
	frames := make(TransformList, n)
	for i := 0; i < n; i++ {
		nm := opts.Normals[0]
		if len(opts.Normals) == n {
			nm = opts.Normals[i]
		}
		if nm.Length() < geom.Epsilon {
			return nil, fmt.Errorf("sweep: zero normal at point %d", i)
		}
		nm = nm.Normalize()
		if opts.Relaxed {
			z := geom.ProjectPlane(tangents[i], nm)
			if z.Length() < geom.Epsilon {
				return nil, fmt.Errorf("sweep: normal parallel to tangent at point %d", i)
			}
			z = z.Normalize()
			f := Frame{Origin: path.Points[i], X: nm, Z: z}
			f.Y = f.Z.Cross(f.X)
			frames[i] = f
			continue
		}
		x := geom.ProjectPlane(nm, tangents[i])
		if x.Length() < geom.Epsilon {
			return nil, fmt.Errorf("sweep: normal parallel to tangent at point %d", i)
		}
		frames[i] = newFrame(path.Points[i], tangents[i], x.Normalize())
	}
	return frames, nil
}

// newFrame builds a right-handed frame from an origin, forward axis and
// side axis. x must be unit length and orthogonal to z.
func newFrame(origin, z, x v3.Vec) Frame {
	f := Frame{Origin: origin, X: x, Z: z, Scale: v2.Vec{X: 1, Y: 1}}
	f.Y = f.Z.Cross(f.X)
	return f
}
