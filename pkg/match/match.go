// Package match computes vertex correspondences between adjacent
// cross-section profiles so they can be stitched into a mesh. Profiles of
// unequal length are reconciled by duplicating vertices; the methods differ
// in how hard they try to find a good assignment.
package match

import (
	"fmt"

	"github.com/chazu/loft/pkg/geom"
)

// Method selects a correspondence algorithm.
type Method int

const (
	// Direct pairs vertices by index and requires equal lengths.
	Direct Method = iota
	// Reindex pairs equal-length profiles by the cyclic rotation that
	// minimizes total connecting-edge length.
	Reindex
	// Distance finds the globally minimal-cost monotone alignment over
	// every cyclic rotation, duplicating vertices as needed.
	Distance
	// FastDistance runs the same alignment anchored at vertex 0 of both
	// profiles, skipping the rotation search.
	FastDistance
	// Tangent matches the shorter profile's edges against tangent points
	// of the longer one. Fast on smooth convex curves, but can fail.
	Tangent
)

// String returns the method name as used by callers and scripts.
func (m Method) String() string {
	switch m {
	case Direct:
		return "direct"
	case Reindex:
		return "reindex"
	case Distance:
		return "distance"
	case FastDistance:
		return "fast_distance"
	case Tangent:
		return "tangent"
	}
	return fmt.Sprintf("Method(%d)", int(m))
}

// ParseMethod converts a method name to a Method.
func ParseMethod(s string) (Method, error) {
	switch s {
	case "direct":
		return Direct, nil
	case "reindex":
		return Reindex, nil
	case "distance":
		return Distance, nil
	case "fast_distance", "fast-distance":
		return FastDistance, nil
	case "tangent":
		return Tangent, nil
	}
	return 0, fmt.Errorf("match: unknown method %q", s)
}

// Duplicating reports whether the method reconciles unequal profile
// lengths by duplicating vertices rather than resampling.
func (m Method) Duplicating() bool {
	return m == Distance || m == FastDistance || m == Tangent
}

// ---------------------------------------------------------------------------
// Correspondence map
// ---------------------------------------------------------------------------

// Map is a vertex correspondence between two profiles: position i of A
// connects to position i of B. Both index sequences have the same length,
// at least max(len(a), len(b)), and every source vertex appears at least
// once. Indices repeat where a vertex is duplicated.
type Map struct {
	A []int
	B []int
}

// Len returns the matched length.
func (mp Map) Len() int { return len(mp.A) }

// Apply expands the two source profiles into matched equal-length profiles.
func (mp Map) Apply(a, b geom.Profile) (geom.Profile, geom.Profile) {
	outA := make(geom.Profile, len(mp.A))
	outB := make(geom.Profile, len(mp.B))
	for i := range mp.A {
		outA[i] = a[mp.A[i]]
		outB[i] = b[mp.B[i]]
	}
	return outA, outB
}

// identityMap returns the n-long identity correspondence.
func identityMap(n int) Map {
	a := make([]int, n)
	for i := range a {
		a[i] = i
	}
	b := make([]int, n)
	copy(b, a)
	return Map{A: a, B: b}
}

// ---------------------------------------------------------------------------
// Entry points
// ---------------------------------------------------------------------------

// Match computes matched equal-length copies of profiles a and b using the
// given method. For Reindex with unequal lengths, both profiles are first
// resampled to the longer length; the duplicating methods reconcile lengths
// themselves.
func Match(a, b geom.Profile, method Method) (geom.Profile, geom.Profile, error) {
	if len(a) < 3 || len(b) < 3 {
		return nil, nil, fmt.Errorf("match: profiles need at least 3 points, got %d and %d", len(a), len(b))
	}
	switch method {
	case Direct:
		if len(a) != len(b) {
			return nil, nil, fmt.Errorf("match: direct: profile lengths differ (%d vs %d)", len(a), len(b))
		}
		return a.Clone(), b.Clone(), nil

	case Reindex:
		var err error
		if len(a) != len(b) {
			n := max(len(a), len(b))
			a, err = a.Resample(n, geom.SamplingLength)
			if err != nil {
				return nil, nil, fmt.Errorf("match: reindex: %w", err)
			}
			b, err = b.Resample(n, geom.SamplingLength)
			if err != nil {
				return nil, nil, fmt.Errorf("match: reindex: %w", err)
			}
		}
		return ReindexMatch(a, b)

	case Distance:
		mp, err := DistanceMatch(a, b)
		if err != nil {
			return nil, nil, err
		}
		ma, mb := mp.Apply(a, b)
		return ma, mb, nil

	case FastDistance:
		mp, err := AlignedDistanceMatch(a, b)
		if err != nil {
			return nil, nil, err
		}
		ma, mb := mp.Apply(a, b)
		return ma, mb, nil

	case Tangent:
		mp, err := TangentMatch(a, b)
		if err != nil {
			return nil, nil, err
		}
		ma, mb := mp.Apply(a, b)
		return ma, mb, nil
	}
	return nil, nil, fmt.Errorf("match: unknown method %v", method)
}

// ReindexMatch pairs two equal-length profiles by trying every cyclic
// rotation of b and keeping the one with minimal total connecting-edge
// length. Ties keep the earliest rotation.
func ReindexMatch(a, b geom.Profile) (geom.Profile, geom.Profile, error) {
	if len(a) != len(b) {
		return nil, nil, fmt.Errorf("match: reindex: profile lengths differ (%d vs %d)", len(a), len(b))
	}
	n := len(a)
	bestRot := 0
	bestCost := rotationCost(a, b, 0)
	for r := 1; r < n; r++ {
		if c := rotationCost(a, b, r); c < bestCost {
			bestCost = c
			bestRot = r
		}
	}
	return a.Clone(), b.Rotated(bestRot), nil
}

// rotationCost is the total connecting-edge length when b is rotated by r.
func rotationCost(a, b geom.Profile, r int) float64 {
	n := len(a)
	total := 0.0
	for i := 0; i < n; i++ {
		total += a[i].Sub(b[(i+r)%n]).Length()
	}
	return total
}
