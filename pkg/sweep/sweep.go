package sweep

import (
	"fmt"
	"math"

	"github.com/chazu/loft/pkg/geom"
	"github.com/chazu/loft/pkg/mesh"
	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// SweepOptions configures mesh assembly from a frame list.
type SweepOptions struct {
	// Closed stitches the final section back to the first. The frame
	// list's synthetic closing frame supplies the index shift when the
	// ends meet a section symmetry apart.
	Closed bool
	// Caps closes the open ends of an open sweep with flat N-gons.
	Caps bool
	// Style picks the quad split used when stitching sections.
	Style mesh.Style
}

// Sweep places the shape at every frame of a prebuilt transform list and
// stitches the sections into a mesh. The frame list already encodes slice
// density, so no interpolated layers are added.
//
// The output is not checked for global self-intersection; a path that
// bends tighter than the shape is wide produces an invalid mesh.
func Sweep(shape geom.Profile2D, tf TransformList, opts SweepOptions) (*mesh.Mesh, error) {
	if len(shape) < 3 {
		return nil, fmt.Errorf("sweep: shape needs at least 3 points, got %d", len(shape))
	}
	sections := tf.SectionCount(opts.Closed)
	if sections < 2 {
		return nil, fmt.Errorf("sweep: need at least 2 frames, got %d", sections)
	}

	layers := make([][]v3.Vec, sections)
	for i := 0; i < sections; i++ {
		layers[i] = tf[i].PlaceProfile(shape)
	}

	shift := 0
	if opts.Closed && len(tf) > sections {
		var err error
		shift, err = closureShift(shape, tf[sections], tf[0])
		if err != nil {
			return nil, err
		}
	}

	return mesh.Stack(layers, mesh.StackOptions{
		Closed:     opts.Closed,
		CloseShift: shift,
		CapStart:   !opts.Closed && opts.Caps,
		CapEnd:     !opts.Closed && opts.Caps,
		Style:      opts.Style,
	})
}

// closureShift converts the angle between a closed sweep's synthetic
// closing frame and its first frame into an index shift of the section.
// The angle is a multiple of the section symmetry by construction; the
// shift must land on a whole vertex, so the shape length has to divide
// evenly.
func closureShift(shape geom.Profile2D, closing, first Frame) (int, error) {
	n := len(shape)
	ang := geom.AngleAbout(first.Z, first.X, closing.X)
	turns := ang / (2 * math.Pi)
	shiftF := turns * float64(n)
	shift := int(math.Round(shiftF))
	if math.Abs(shiftF-float64(shift)) > 1e-6 {
		return 0, fmt.Errorf("sweep: closure twist needs %.3f of %d section vertices; section length must divide the symmetry step", shiftF, n)
	}
	return ((shift % n) + n) % n, nil
}

// PathSweepOptions configures a sweep along a path.
type PathSweepOptions struct {
	Frames Options // orientation, twist, scale
	Caps   bool
	Style  mesh.Style
}

// PathSweep computes frames along the path and sweeps the shape through
// them. The transform list is returned alongside the mesh so callers can
// attach auxiliary geometry at a path fraction or drive a displacement
// pass over the same frames.
func PathSweep(shape geom.Profile2D, path geom.Path, opts PathSweepOptions) (*mesh.Mesh, TransformList, []Warning, error) {
	tf, warnings, err := Frames(path, opts.Frames)
	if err != nil {
		return nil, nil, nil, err
	}
	m, err := Sweep(shape, tf, SweepOptions{
		Closed: path.Closed,
		Caps:   opts.Caps,
		Style:  opts.Style,
	})
	if err != nil {
		return nil, nil, warnings, err
	}
	return m, tf, warnings, nil
}

// ---------------------------------------------------------------------------
// Convenience wrappers
// ---------------------------------------------------------------------------

// LinearOptions configures LinearSweep.
type LinearOptions struct {
	Height float64
	Twist  float64 // degrees over the full height
	Slices int     // extra intermediate sections
	Scale  *v2.Vec // end scale
	Caps   bool
	Style  mesh.Style
}

// LinearSweep extrudes the shape straight up the Z axis, optionally
// twisting and scaling along the way. It only normalizes arguments into a
// PathSweep along a vertical line.
func LinearSweep(shape geom.Profile2D, opts LinearOptions) (*mesh.Mesh, TransformList, []Warning, error) {
	if opts.Height <= 0 {
		return nil, nil, nil, fmt.Errorf("sweep: linear sweep height %v must be positive", opts.Height)
	}
	n := opts.Slices + 2
	path := geom.LinePath(v3.Vec{}, v3.Vec{Z: opts.Height}, n)
	return PathSweep(shape, path, PathSweepOptions{
		Frames: Options{
			Method: Incremental,
			Twist:  opts.Twist,
			Scale:  opts.Scale,
		},
		Caps:  opts.Caps,
		Style: opts.Style,
	})
}

// RotateOptions configures RotateSweep.
type RotateOptions struct {
	Radius   float64
	Angle    float64 // degrees, default 360
	Segments int
	Caps     bool // only for partial revolutions
	Style    mesh.Style
}

// RotateSweep revolves the shape about the Z axis at the given radius. A
// full revolution closes into a torus topology; a partial one is an open
// sweep that may be capped.
func RotateSweep(shape geom.Profile2D, opts RotateOptions) (*mesh.Mesh, TransformList, []Warning, error) {
	if opts.Radius <= 0 {
		return nil, nil, nil, fmt.Errorf("sweep: rotate sweep radius %v must be positive", opts.Radius)
	}
	angle := opts.Angle
	if angle == 0 {
		angle = 360
	}
	segments := opts.Segments
	if segments < 3 {
		segments = geom.DefaultSegments
	}
	path := geom.ArcPath(opts.Radius, angle, segments)
	return PathSweep(shape, path, PathSweepOptions{
		Frames: Options{Method: Incremental},
		Caps:   opts.Caps,
		Style:  opts.Style,
	})
}

// SpiralOptions configures SpiralSweep.
type SpiralOptions struct {
	Radius   float64
	Pitch    float64 // height gained per turn
	Turns    float64
	Segments int // per full path
	Caps     bool
	Style    mesh.Style
}

// SpiralSweep sweeps the shape along a helix around the Z axis.
func SpiralSweep(shape geom.Profile2D, opts SpiralOptions) (*mesh.Mesh, TransformList, []Warning, error) {
	if opts.Radius <= 0 || opts.Turns <= 0 {
		return nil, nil, nil, fmt.Errorf("sweep: spiral sweep needs positive radius and turns, got %v and %v",
			opts.Radius, opts.Turns)
	}
	segments := opts.Segments
	if segments < 2 {
		segments = int(opts.Turns * float64(geom.DefaultSegments))
	}
	path := geom.HelixPath(opts.Radius, opts.Pitch, opts.Turns, segments)
	return PathSweep(shape, path, PathSweepOptions{
		Frames: Options{Method: Incremental},
		Caps:   opts.Caps,
		Style:  opts.Style,
	})
}
