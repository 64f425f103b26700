package mesh

import (
	"fmt"

	"github.com/chazu/loft/pkg/geom"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Style selects how each quad of a layer-to-layer strip is split into
// triangles.
type Style int

const (
	// StyleDefault splits every quad along the same diagonal.
	StyleDefault Style = iota
	// StyleAlt splits along the other diagonal.
	StyleAlt
	// StyleMinEdge picks the shorter diagonal per quad.
	StyleMinEdge
	// StyleConvex picks the diagonal whose two triangles agree most in
	// orientation, favoring a locally convex surface.
	StyleConvex
	// StyleQuincunx adds a center vertex per quad and emits four
	// triangles around it.
	StyleQuincunx
)

// String returns the style name as used by callers and scripts.
func (s Style) String() string {
	switch s {
	case StyleDefault:
		return "default"
	case StyleAlt:
		return "alt"
	case StyleMinEdge:
		return "min_edge"
	case StyleConvex:
		return "convex"
	case StyleQuincunx:
		return "quincunx"
	}
	return fmt.Sprintf("Style(%d)", int(s))
}

// ParseStyle converts a style name to a Style.
func ParseStyle(s string) (Style, error) {
	switch s {
	case "default", "":
		return StyleDefault, nil
	case "alt":
		return StyleAlt, nil
	case "min_edge", "min-edge":
		return StyleMinEdge, nil
	case "convex":
		return StyleConvex, nil
	case "quincunx":
		return StyleQuincunx, nil
	}
	return 0, fmt.Errorf("mesh: unknown style %q", s)
}

// DiagonalFunc chooses the split diagonal for one quad (a, b, c, d),
// where a-b lies on the lower layer and d-c on the upper. Returning true
// splits along a-c, false along b-d. Supplying one overrides the Style.
type DiagonalFunc func(a, b, c, d v3.Vec) bool

// StackOptions configures section stacking.
type StackOptions struct {
	// Closed stitches the last layer back to the first (torus topology)
	// instead of leaving or capping the ends.
	Closed bool
	// CloseShift rotates the first layer's indices when closing, for
	// sweeps whose ends meet a symmetry of the section apart.
	CloseShift int
	// CapStart and CapEnd emit one flat N-gon over the respective open
	// end. The start cap is wound in reverse so its normal faces outward.
	CapStart, CapEnd bool
	// Style picks the quad split; Diagonal overrides it when non-nil.
	Style    Style
	Diagonal DiagonalFunc
	// SkipNormalize leaves the face winding as built instead of flipping
	// on negative signed volume. Used when sub-meshes are concatenated
	// and normalized once at the end.
	SkipNormalize bool
}

// Stack stitches a sequence of equal-length vertex layers into a mesh.
// Each consecutive layer pair becomes a triangulated quad strip; each
// layer's own loop is closed from its last vertex back to its first.
// Degenerate quads from duplicated vertices collapse to single triangles,
// and zero-area triangles are culled, so duplication never emits slivers.
func Stack(layers [][]v3.Vec, opts StackOptions) (*Mesh, error) {
	if len(layers) < 2 {
		return nil, fmt.Errorf("mesh: stack needs at least 2 layers, got %d", len(layers))
	}
	n := len(layers[0])
	if n < 3 {
		return nil, fmt.Errorf("mesh: stack layers need at least 3 vertices, got %d", n)
	}
	for i, l := range layers {
		if len(l) != n {
			return nil, fmt.Errorf("mesh: stack layer %d has %d vertices, want %d", i, len(l), n)
		}
	}
	if opts.Closed && opts.CloseShift != 0 {
		s := ((opts.CloseShift % n) + n) % n
		opts.CloseShift = s
	}
	if opts.Closed && (opts.CapStart || opts.CapEnd) {
		return nil, fmt.Errorf("mesh: closed stack cannot be capped")
	}

	m := &Mesh{Verts: make([]v3.Vec, 0, len(layers)*n)}
	for _, l := range layers {
		m.Verts = append(m.Verts, l...)
	}

	for li := 0; li < len(layers)-1; li++ {
		stitchPair(m, li*n, (li+1)*n, 0, n, opts)
	}
	if opts.Closed {
		stitchPair(m, (len(layers)-1)*n, 0, opts.CloseShift, n, opts)
	} else {
		if opts.CapStart {
			addCap(m, 0, n, true)
		}
		if opts.CapEnd {
			addCap(m, (len(layers)-1)*n, n, false)
		}
	}

	if !opts.SkipNormalize {
		m.NormalizeWinding()
	}
	return m, nil
}

// stitchPair emits the quad strip between the layer at base lo and the
// layer at base hi, shifting the hi layer's indices by shift.
func stitchPair(m *Mesh, lo, hi, shift, n int, opts StackOptions) {
	for j := 0; j < n; j++ {
		j1 := (j + 1) % n
		a := lo + j
		b := lo + j1
		c := hi + (j1+shift)%n
		d := hi + (j+shift)%n

		if opts.Diagonal == nil && opts.Style == StyleQuincunx {
			center := m.Verts[a].Add(m.Verts[b]).Add(m.Verts[c]).Add(m.Verts[d]).DivScalar(4)
			ci := len(m.Verts)
			m.Verts = append(m.Verts, center)
			addTri(m, a, b, ci)
			addTri(m, b, c, ci)
			addTri(m, c, d, ci)
			addTri(m, d, a, ci)
			continue
		}

		useAC := true
		switch {
		case opts.Diagonal != nil:
			useAC = opts.Diagonal(m.Verts[a], m.Verts[b], m.Verts[c], m.Verts[d])
		case opts.Style == StyleAlt:
			useAC = false
		case opts.Style == StyleMinEdge:
			useAC = m.Verts[c].Sub(m.Verts[a]).Length() <= m.Verts[d].Sub(m.Verts[b]).Length()
		case opts.Style == StyleConvex:
			useAC = convexSplit(m.Verts[a], m.Verts[b], m.Verts[c], m.Verts[d])
		}
		if useAC {
			addTri(m, a, b, c)
			addTri(m, a, c, d)
		} else {
			addTri(m, a, b, d)
			addTri(m, b, c, d)
		}
	}
}

// addTri appends a triangle unless it is degenerate: repeated indices or
// near-zero area, both of which arise from duplicated matched vertices.
func addTri(m *Mesh, a, b, c int) {
	if a == b || b == c || a == c {
		return
	}
	ab := m.Verts[b].Sub(m.Verts[a])
	ac := m.Verts[c].Sub(m.Verts[a])
	if ab.Cross(ac).Length() < geom.Epsilon {
		return
	}
	m.AddFace(a, b, c)
}

// convexSplit compares the two candidate splits of quad (a, b, c, d) and
// reports whether the a-c diagonal gives triangle normals that agree more
// than the b-d diagonal does.
func convexSplit(a, b, c, d v3.Vec) bool {
	nAC1 := b.Sub(a).Cross(c.Sub(a))
	nAC2 := c.Sub(a).Cross(d.Sub(a))
	nBD1 := b.Sub(a).Cross(d.Sub(a))
	nBD2 := c.Sub(b).Cross(d.Sub(b))
	return nAC1.Dot(nAC2) >= nBD1.Dot(nBD2)
}

// addCap emits one flat N-gon over a layer, dropping consecutive
// duplicated vertices so a cap over a duplicated profile stays a simple
// polygon. The start cap is reversed so its normal opposes the end cap's.
func addCap(m *Mesh, base, n int, reversed bool) {
	face := make([]int, 0, n)
	for j := 0; j < n; j++ {
		idx := base + j
		if len(face) > 0 && m.Verts[face[len(face)-1]].Sub(m.Verts[idx]).Length() < geom.Epsilon {
			continue
		}
		face = append(face, idx)
	}
	for len(face) > 1 && m.Verts[face[0]].Sub(m.Verts[face[len(face)-1]]).Length() < geom.Epsilon {
		face = face[:len(face)-1]
	}
	if len(face) < 3 {
		return
	}
	if reversed {
		for i, j := 0, len(face)-1; i < j; i, j = i+1, j-1 {
			face[i], face[j] = face[j], face[i]
		}
	}
	m.AddFace(face...)
}

// InterpolateLayers returns count evenly spaced intermediate layers
// between two matched equal-length layers, exclusive of both ends. Valid
// because position i of each layer already corresponds.
func InterpolateLayers(a, b []v3.Vec, count int) [][]v3.Vec {
	out := make([][]v3.Vec, 0, count)
	for s := 1; s <= count; s++ {
		t := float64(s) / float64(count+1)
		layer := make([]v3.Vec, len(a))
		for i := range a {
			layer[i] = geom.Lerp(a[i], b[i], t)
		}
		out = append(out, layer)
	}
	return out
}
