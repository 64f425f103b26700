package skin

import (
	"math"
	"testing"

	"github.com/chazu/loft/pkg/geom"
	"github.com/chazu/loft/pkg/match"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

func square3D(side, z float64) geom.Profile3D {
	h := side / 2
	return geom.Profile3D{
		{X: -h, Y: -h, Z: z},
		{X: h, Y: -h, Z: z},
		{X: h, Y: h, Z: z},
		{X: -h, Y: h, Z: z},
	}
}

func triangle3D(side, z float64) geom.Profile3D {
	r := side / math.Sqrt(3)
	out := make(geom.Profile3D, 3)
	for i := range out {
		a := 2 * math.Pi * float64(i) / 3
		out[i] = v3.Vec{X: r * math.Cos(a), Y: r * math.Sin(a), Z: z}
	}
	return out
}

// A square lofted to a triangle under distance matching. One triangle
// vertex is duplicated, so one side quad collapses to a single triangle:
// 7 side faces plus a 4-gon and a 3-gon cap.
func TestSkinSquareToTriangle(t *testing.T) {
	m, err := Skin([]geom.ProfileSource{square3D(4, 0), triangle3D(4, 2)}, Options{
		Methods: []match.Method{match.Distance},
		Caps:    true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	tris, quads, others := 0, 0, 0
	for _, f := range m.Faces {
		switch len(f) {
		case 3:
			tris++
		case 4:
			quads++
		default:
			others++
		}
	}
	// 7 side triangles + the 3-gon cap share arity; the square cap is
	// the lone quad.
	if tris != 8 || quads != 1 || others != 0 {
		t.Errorf("got %d triangles, %d quads, %d others; want 8, 1, 0", tris, quads, others)
	}
	if v := m.SignedVolume(); v <= 0 {
		t.Errorf("signed volume %v, want positive", v)
	}
}

func TestSkinDirectIdenticalSquares(t *testing.T) {
	m, err := Skin([]geom.ProfileSource{square3D(4, 0), square3D(4, 3)}, Options{
		Methods: []match.Method{match.Direct},
		Caps:    true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v := m.SignedVolume(); math.Abs(v-48) > 1e-9 {
		t.Errorf("signed volume %v, want 48", v)
	}
}

func TestSkinSlicesAddLayers(t *testing.T) {
	m, err := Skin([]geom.ProfileSource{square3D(4, 0), square3D(2, 4)}, Options{
		Methods: []match.Method{match.Direct},
		Slices:  []int{3},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// 5 layers of 4 vertices, stitched into 4 strips of 8 triangles.
	if m.VertexCount() != 20 {
		t.Errorf("got %d vertices, want 20", m.VertexCount())
	}
	if m.FaceCount() != 32 {
		t.Errorf("got %d faces, want 32", m.FaceCount())
	}
}

func TestSkin2DProfilesNeedHeights(t *testing.T) {
	sources := []geom.ProfileSource{geom.Rect(4, 4), geom.Rect(2, 2)}
	if _, err := Skin(sources, Options{Methods: []match.Method{match.Direct}}); err == nil {
		t.Fatal("expected error for 2D profiles without heights")
	}
	m, err := Skin(sources, Options{
		Methods: []match.Method{match.Direct},
		Heights: []float64{0, 5},
		Caps:    true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v := m.SignedVolume(); v <= 0 {
		t.Errorf("signed volume %v, want positive", v)
	}
}

func TestSkinLengthSamplingRejectsDuplicatingMethod(t *testing.T) {
	s := geom.SamplingLength
	_, err := Skin([]geom.ProfileSource{square3D(4, 0), triangle3D(4, 2)}, Options{
		Methods:  []match.Method{match.Distance},
		Sampling: &s,
	})
	if err == nil {
		t.Fatal("expected error for length sampling with a duplicating method")
	}
}

func TestSkinRefineResamples(t *testing.T) {
	m, err := Skin([]geom.ProfileSource{square3D(4, 0), square3D(4, 2)}, Options{
		Methods: []match.Method{match.Direct},
		Refine:  []int{2},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Both squares refined to 8 vertices.
	if m.VertexCount() != 16 {
		t.Errorf("got %d vertices, want 16", m.VertexCount())
	}
}

func TestSkinUnequalLengthsReindexResamples(t *testing.T) {
	m, err := Skin([]geom.ProfileSource{square3D(4, 0), triangle3D(4, 2)}, Options{
		Methods: []match.Method{match.Reindex},
		Caps:    true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v := m.SignedVolume(); v <= 0 {
		t.Errorf("signed volume %v, want positive", v)
	}
}

func TestSkinClosedChain(t *testing.T) {
	sources := []geom.ProfileSource{
		square3D(4, 0),
		square3D(4, 3),
		square3D(2, 6),
		square3D(2, -3),
	}
	m, err := Skin(sources, Options{
		Methods: []match.Method{match.Direct},
		Closed:  true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Closed chain: no caps, every face a side triangle.
	for _, f := range m.Faces {
		if len(f) != 3 {
			t.Fatalf("closed skin has an n-gon cap face")
		}
	}
}

func TestSkinMultiProfileChain(t *testing.T) {
	sources := []geom.ProfileSource{
		square3D(4, 0),
		triangle3D(4, 2),
		square3D(3, 4),
	}
	m, err := Skin(sources, Options{Caps: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v := m.SignedVolume(); v <= 0 {
		t.Errorf("signed volume %v, want positive", v)
	}
	// Shared middle layer must be welded: Euler characteristic of a
	// sphere-like solid is 2 after triangulation.
	m.Triangulate()
	edges := make(map[[2]int]int)
	for _, f := range m.Faces {
		for i := range f {
			a, b := f[i], f[(i+1)%len(f)]
			if a > b {
				a, b = b, a
			}
			edges[[2]int{a, b}]++
		}
	}
	for e, count := range edges {
		if count != 2 {
			t.Fatalf("edge %v shared by %d faces, want 2", e, count)
		}
	}
}

func TestSkinRegionsUnion(t *testing.T) {
	left := []geom.ProfileSource{
		geom.Profile3D{{X: -4, Y: -1}, {X: -2, Y: -1}, {X: -2, Y: 1}, {X: -4, Y: 1}},
		geom.Profile3D{{X: -4, Y: -1, Z: 2}, {X: -2, Y: -1, Z: 2}, {X: -2, Y: 1, Z: 2}, {X: -4, Y: 1, Z: 2}},
	}
	right := []geom.ProfileSource{
		geom.Profile3D{{X: 2, Y: -1}, {X: 4, Y: -1}, {X: 4, Y: 1}, {X: 2, Y: 1}},
		geom.Profile3D{{X: 2, Y: -1, Z: 2}, {X: 4, Y: -1, Z: 2}, {X: 4, Y: 1, Z: 2}, {X: 2, Y: 1, Z: 2}},
	}
	capOpts := Options{Methods: []match.Method{match.Direct}, Caps: true}
	m, err := Regions([]Region{
		{Sources: left, Opts: capOpts},
		{Sources: right, Opts: capOpts},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	single, err := Skin(left, capOpts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.FaceCount() != 2*single.FaceCount() {
		t.Errorf("union has %d faces, want %d", m.FaceCount(), 2*single.FaceCount())
	}
	if math.Abs(m.SignedVolume()-2*single.SignedVolume()) > 1e-9 {
		t.Errorf("union volume %v, want %v", m.SignedVolume(), 2*single.SignedVolume())
	}
}
