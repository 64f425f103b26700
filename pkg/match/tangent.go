package match

import (
	"fmt"
	"math"

	"github.com/chazu/loft/pkg/geom"
)

// TangentMatch matches the shorter profile (the "polygon") against the
// longer one (the "curve") by locating, for each polygon edge, the curve
// sample where the curve's local direction becomes tangent to the plane
// spanned by that edge. Curve vertices between consecutive tangent points
// all connect to the polygon vertex separating the two edges, so the
// polygon vertex is duplicated by the gap size.
//
// Where an edge sees several tangent candidates (the sign of the
// plane/tangent angle changes more than twice around the curve) the
// candidate closest to the edge line is taken, after shifting the curve by
// the centroid offset between the two profiles. That tie-break is a
// heuristic: it resolves the common convex cases but carries no optimality
// guarantee.
//
// Fails when the per-vertex duplication counts cannot add up to the curve
// length, which happens on curves too coarsely sampled for the polygon or
// on strongly non-convex inputs.
func TangentMatch(a, b geom.Profile) (Map, error) {
	poly, curve, swapped := orient(a, b)
	m := len(poly)
	n := len(curve)

	offset := poly.Centroid().Sub(curve.Centroid())

	tangentIdx := make([]int, m)
	angles := make([]float64, n)
	for e := 0; e < m; e++ {
		ea := poly[e]
		eb := poly[(e+1)%m]

		for i := 0; i < n; i++ {
			pl, err := geom.PlaneFromPoints(ea, eb, curve[i])
			if err != nil {
				// Curve point on the edge line: already tangent.
				angles[i] = 0
				continue
			}
			angles[i] = pl.LineAngle(curve[i], curve[(i+1)%n])
		}

		best := -1
		bestDist := math.Inf(1)
		for i := 0; i < n; i++ {
			if !signChange(angles[i], angles[(i+1)%n]) {
				continue
			}
			d := geom.PointLineDistance(curve[i].Add(offset), ea, eb)
			if d < bestDist {
				bestDist = d
				best = i
			}
		}
		if best < 0 {
			return Map{}, fmt.Errorf("match: tangent: no tangent point found for edge %d", e)
		}
		tangentIdx[e] = best
	}

	// Curve vertices strictly after tangent point e-1 up to tangent point e
	// belong to polygon vertex e. The duplication count is the cyclic gap.
	counts := make([]int, m)
	total := 0
	for v := 0; v < m; v++ {
		gap := (tangentIdx[v] - tangentIdx[(v-1+m)%m] + n) % n
		if gap == 0 {
			return Map{}, fmt.Errorf("match: tangent: edges %d and %d share tangent point %d (curve too coarse or non-convex)",
				(v-1+m)%m, v, tangentIdx[v])
		}
		counts[v] = gap
		total += gap
	}
	if total != n {
		return Map{}, fmt.Errorf("match: tangent: duplicated length %d does not match curve length %d (curve too coarse or non-convex)",
			total, n)
	}

	polyIdx := make([]int, 0, n)
	curveIdx := make([]int, 0, n)
	for v := 0; v < m; v++ {
		start := tangentIdx[(v-1+m)%m]
		for k := 1; k <= counts[v]; k++ {
			polyIdx = append(polyIdx, v)
			curveIdx = append(curveIdx, (start+k)%n)
		}
	}
	return buildMap(polyIdx, curveIdx, swapped), nil
}

// signChange reports whether two consecutive plane/tangent angles straddle
// zero. An exact zero counts as a change against either sign.
func signChange(a, b float64) bool {
	return (a >= 0 && b < 0) || (a < 0 && b >= 0) || (a == 0 && b != 0)
}
