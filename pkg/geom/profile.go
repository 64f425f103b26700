package geom

import (
	"fmt"
	"math"

	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// ---------------------------------------------------------------------------
// Profile
// ---------------------------------------------------------------------------

// Profile is an ordered loop of 3D points forming one cross-section.
// The loop is implicitly closed: the last point connects back to the first.
// A valid profile has at least 3 points and consistent winding.
type Profile []v3.Vec

// Centroid returns the average of the profile's points.
func (p Profile) Centroid() v3.Vec {
	var c v3.Vec
	for _, pt := range p {
		c = c.Add(pt)
	}
	return c.DivScalar(float64(len(p)))
}

// Perimeter returns the total length of the closed loop.
func (p Profile) Perimeter() float64 {
	total := 0.0
	for i := range p {
		total += p[(i+1)%len(p)].Sub(p[i]).Length()
	}
	return total
}

// EdgeLengths returns the length of each edge, edge i running from
// point i to point i+1 (cyclic).
func (p Profile) EdgeLengths() []float64 {
	out := make([]float64, len(p))
	for i := range p {
		out[i] = p[(i+1)%len(p)].Sub(p[i]).Length()
	}
	return out
}

// Rotated returns the profile cyclically rotated so that index k becomes
// index 0. k may be any integer; it is reduced modulo len(p).
func (p Profile) Rotated(k int) Profile {
	n := len(p)
	k = ((k % n) + n) % n
	out := make(Profile, n)
	for i := range p {
		out[i] = p[(i+k)%n]
	}
	return out
}

// Reversed returns the profile with its winding direction reversed,
// keeping point 0 in place.
func (p Profile) Reversed() Profile {
	n := len(p)
	out := make(Profile, n)
	out[0] = p[0]
	for i := 1; i < n; i++ {
		out[i] = p[n-i]
	}
	return out
}

// Clone returns a copy of the profile.
func (p Profile) Clone() Profile {
	out := make(Profile, len(p))
	copy(out, p)
	return out
}

// ---------------------------------------------------------------------------
// Resampling
// ---------------------------------------------------------------------------

// Sampling selects how extra points are distributed when a profile is
// resampled to a higher point count.
type Sampling int

const (
	// SamplingLength distributes extra points proportionally to edge length.
	SamplingLength Sampling = iota
	// SamplingSegment distributes extra points evenly across edges.
	SamplingSegment
)

// String returns the sampling name.
func (s Sampling) String() string {
	switch s {
	case SamplingLength:
		return "length"
	case SamplingSegment:
		return "segment"
	}
	return fmt.Sprintf("Sampling(%d)", int(s))
}

// Resample returns the profile with points inserted along its edges until it
// has exactly n points. Original points are always preserved; only new
// points are inserted, so a resampled profile still passes through every
// vertex of the input.
func (p Profile) Resample(n int, sampling Sampling) (Profile, error) {
	m := len(p)
	if n < m {
		return nil, fmt.Errorf("geom: resample: target %d below point count %d (insertion only)", n, m)
	}
	if n == m {
		return p.Clone(), nil
	}
	extra := n - m
	counts := make([]int, m)

	switch sampling {
	case SamplingSegment:
		base := extra / m
		rem := extra % m
		for i := range counts {
			counts[i] = base
			if i < rem {
				counts[i]++
			}
		}
	case SamplingLength:
		lengths := p.EdgeLengths()
		total := 0.0
		for _, l := range lengths {
			total += l
		}
		// Largest-remainder apportionment of the extra points.
		fracs := make([]float64, m)
		assigned := 0
		for i, l := range lengths {
			q := float64(extra) * l / total
			counts[i] = int(q)
			fracs[i] = q - float64(counts[i])
			assigned += counts[i]
		}
		for assigned < extra {
			best := 0
			for i := 1; i < m; i++ {
				if fracs[i] > fracs[best] {
					best = i
				}
			}
			counts[best]++
			fracs[best] = -1
			assigned++
		}
	default:
		return nil, fmt.Errorf("geom: resample: unknown sampling %v", sampling)
	}

	out := make(Profile, 0, n)
	for i := range p {
		a := p[i]
		b := p[(i+1)%m]
		out = append(out, a)
		for j := 0; j < counts[i]; j++ {
			t := float64(j+1) / float64(counts[i]+1)
			out = append(out, Lerp(a, b, t))
		}
	}
	return out, nil
}

// ---------------------------------------------------------------------------
// ProfileSource: tagged 2D/3D input variants
// ---------------------------------------------------------------------------

// ProfileSource is a caller-supplied cross-section, either planar points
// plus a height assigned later, or fully positioned 3D points. Sources are
// normalized to the internal 3D Profile form at the API boundary, so the
// algorithms never branch on dimensionality.
type ProfileSource interface {
	profileSource()
}

// Profile2D is a planar cross-section in the XY plane. Its Z placement
// comes from a per-profile height supplied alongside it.
type Profile2D []v2.Vec

func (Profile2D) profileSource() {}

// Profile3D is a cross-section already positioned in space.
type Profile3D Profile

func (Profile3D) profileSource() {}

// At returns the 2D profile lifted to 3D at the given height.
func (p Profile2D) At(z float64) Profile {
	out := make(Profile, len(p))
	for i, pt := range p {
		out[i] = v3.Vec{X: pt.X, Y: pt.Y, Z: z}
	}
	return out
}

// ResolveProfile normalizes a tagged profile source to the internal 3D form.
// A 2D source requires hasHeight; a 3D source ignores the height.
func ResolveProfile(src ProfileSource, height float64, hasHeight bool) (Profile, error) {
	switch s := src.(type) {
	case Profile2D:
		if !hasHeight {
			return nil, fmt.Errorf("geom: 2D profile requires a height")
		}
		return s.At(height), nil
	case Profile3D:
		return Profile(s), nil
	}
	return nil, fmt.Errorf("geom: unknown profile source %T", src)
}

// ---------------------------------------------------------------------------
// 2D profile constructors
// ---------------------------------------------------------------------------

// Rect returns a centered axis-aligned rectangle, wound counterclockwise.
func Rect(w, h float64) Profile2D {
	return Profile2D{
		{X: -w / 2, Y: -h / 2},
		{X: w / 2, Y: -h / 2},
		{X: w / 2, Y: h / 2},
		{X: -w / 2, Y: h / 2},
	}
}

// Circle returns a centered regular polygon approximating a circle of the
// given radius, wound counterclockwise, starting at angle 0.
func Circle(r float64, segments int) Profile2D {
	if segments < 3 {
		segments = DefaultSegments
	}
	out := make(Profile2D, segments)
	for i := 0; i < segments; i++ {
		a := 2 * math.Pi * float64(i) / float64(segments)
		out[i] = v2.Vec{X: r * math.Cos(a), Y: r * math.Sin(a)}
	}
	return out
}

// Ngon returns a centered regular n-gon with circumradius r.
func Ngon(n int, r float64) Profile2D {
	return Circle(r, n)
}

// Star returns a centered 2n-point star alternating between outer radius r1
// and inner radius r2.
func Star(n int, r1, r2 float64) Profile2D {
	out := make(Profile2D, 2*n)
	for i := 0; i < 2*n; i++ {
		a := math.Pi * float64(i) / float64(n)
		r := r1
		if i%2 == 1 {
			r = r2
		}
		out[i] = v2.Vec{X: r * math.Cos(a), Y: r * math.Sin(a)}
	}
	return out
}
