package match

import (
	"fmt"
	"math"

	"github.com/chazu/loft/pkg/geom"
)

// The distance methods reconcile two profiles of unequal length by a
// monotone alignment: walking both loops forward in lockstep, each step
// either advances both profiles or advances one while duplicating the
// other's current vertex. The alignment minimizing the summed distance
// between paired vertices is found by dynamic programming over the shorter
// profile ("small") against the longer one ("big"). DistanceMatch retries
// the program for every cyclic rotation of big and keeps the global best;
// AlignedDistanceMatch anchors vertex 0 of both profiles and runs it once.

// choice table entries for backtracking.
const (
	moveDiag = iota // advance both
	moveBig         // advance big, reuse small's vertex
	moveSmall       // advance small, reuse big's vertex
)

// DistanceMatch returns the globally optimal duplication map between a and
// b over all cyclic rotations of the longer profile. A rotation whose
// running cost already exceeds the best total found so far is abandoned
// early; the bound compares strictly greater, so a rotation tied with the
// best is still fully evaluated and optimality is never lost to the prune.
func DistanceMatch(a, b geom.Profile) (Map, error) {
	small, big, swapped := orient(a, b)
	bestCost := math.Inf(1)
	var bestSmall, bestBig []int
	for r := 0; r < len(big); r++ {
		cost, si, bi, ok := distanceDP(small, big.Rotated(r), bestCost)
		if !ok || cost >= bestCost {
			continue
		}
		bestCost = cost
		bestSmall = si
		// Map rotated indices back to the original profile.
		bestBig = make([]int, len(bi))
		for i, j := range bi {
			bestBig[i] = (j + r) % len(big)
		}
	}
	return buildMap(bestSmall, bestBig, swapped), nil
}

// AlignedDistanceMatch runs the duplication alignment with vertex 0 of both
// profiles forced to correspond, skipping the rotation search.
func AlignedDistanceMatch(a, b geom.Profile) (Map, error) {
	small, big, swapped := orient(a, b)
	_, si, bi, _ := distanceDP(small, big, math.Inf(1))
	return buildMap(si, bi, swapped), nil
}

// orient returns the shorter profile first and whether the inputs were
// swapped to achieve that.
func orient(a, b geom.Profile) (geom.Profile, geom.Profile, bool) {
	if len(a) <= len(b) {
		return a, b, false
	}
	return b, a, true
}

// buildMap assembles a Map from small/big index sequences, undoing an
// orient swap so A always indexes the first argument.
func buildMap(smallIdx, bigIdx []int, swapped bool) Map {
	if swapped {
		return Map{A: bigIdx, B: smallIdx}
	}
	return Map{A: smallIdx, B: bigIdx}
}

// distanceDP fills the alignment cost table for one fixed rotation.
//
// Cell (i, j) holds the minimal summed distance of an alignment pairing
// small[0..i] with big[0..j], ending with small[i] paired to big[j]. The
// predecessors are (i-1, j-1) advancing both, (i, j-1) duplicating
// small[i], and (i-1, j) duplicating big[j]. A parallel choice table
// records which predecessor won so the per-vertex duplication counts can
// be recovered by backtracking from the final cell.
//
// After each row, if the row's minimum already exceeds bound the whole
// rotation is dominated and the run aborts, returning ok=false.
func distanceDP(small, big geom.Profile, bound float64) (float64, []int, []int, bool) {
	m := len(small)
	n := len(big)
	cost := make([]float64, m*n)
	choice := make([]byte, m*n)

	cost[0] = small[0].Sub(big[0]).Length()
	for j := 1; j < n; j++ {
		cost[j] = cost[j-1] + small[0].Sub(big[j]).Length()
		choice[j] = moveBig
	}
	for i := 1; i < m; i++ {
		row := i * n
		prev := row - n
		cost[row] = cost[prev] + small[i].Sub(big[0]).Length()
		choice[row] = moveSmall
		rowMin := cost[row]
		for j := 1; j < n; j++ {
			d := small[i].Sub(big[j]).Length()
			best := cost[prev+j-1]
			ch := byte(moveDiag)
			if c := cost[row+j-1]; c < best {
				best = c
				ch = moveBig
			}
			if c := cost[prev+j]; c < best {
				best = c
				ch = moveSmall
			}
			cost[row+j] = best + d
			choice[row+j] = ch
			if cost[row+j] < rowMin {
				rowMin = cost[row+j]
			}
		}
		if rowMin > bound {
			return 0, nil, nil, false
		}
	}

	// Backtrack from the final cell to recover the paired index sequences.
	steps := 0
	for i, j := m-1, n-1; ; steps++ {
		if i == 0 && j == 0 {
			steps++
			break
		}
		switch choice[i*n+j] {
		case moveDiag:
			i--
			j--
		case moveBig:
			j--
		default:
			i--
		}
	}
	si := make([]int, steps)
	bi := make([]int, steps)
	k := steps - 1
	for i, j := m-1, n-1; ; k-- {
		si[k] = i
		bi[k] = j
		if i == 0 && j == 0 {
			break
		}
		switch choice[i*n+j] {
		case moveDiag:
			i--
			j--
		case moveBig:
			j--
		default:
			i--
		}
	}
	return cost[m*n-1], si, bi, true
}

// MatchCost returns the total pairwise connecting distance of an applied
// correspondence, the quantity the distance methods minimize.
func MatchCost(mp Map, a, b geom.Profile) (float64, error) {
	if len(mp.A) != len(mp.B) {
		return 0, fmt.Errorf("match: map index sequences differ in length (%d vs %d)", len(mp.A), len(mp.B))
	}
	total := 0.0
	for i := range mp.A {
		total += a[mp.A[i]].Sub(b[mp.B[i]]).Length()
	}
	return total, nil
}
