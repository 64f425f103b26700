package engine

import (
	"math"
	"strings"
	"testing"
)

// ---------------------------------------------------------------------------
// Preprocessing tests
// ---------------------------------------------------------------------------

func TestPreprocessKeywords(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		expect string
	}{
		{
			name:   "simple keyword",
			input:  `(texture :preset "ribs")`,
			expect: `(texture "__kw_preset" "ribs")`,
		},
		{
			name:   "multiple keywords",
			input:  `(circle 10 :segments 32)`,
			expect: `(circle 10 "__kw_segments" 32)`,
		},
		{
			name:   "keyword in string preserved",
			input:  `"thing with :keyword inside"`,
			expect: `"thing with :keyword inside"`,
		},
		{
			name:   "assignment operator preserved",
			input:  `(def x := 10)`,
			expect: `(def x := 10)`,
		},
		{
			name:   "kebab-case identifier",
			input:  `(path-sweep shape p :method :natural)`,
			expect: `(path_sweep shape p "__kw_method" "__kw_natural")`,
		},
		{
			name:   "minus operator preserved",
			input:  `(- 10 5)`,
			expect: `(- 10 5)`,
		},
		{
			name:   "comment converted to // style",
			input:  `;; comment with :keyword`,
			expect: `// comment with :keyword`,
		},
		{
			name:   "single semicolon comment",
			input:  `; simple comment`,
			expect: `// simple comment`,
		},
		{
			name:   "hyphen in keyword preserved",
			input:  `:min-edge`,
			expect: `"__kw_min-edge"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := preprocessSource(tt.input)
			if got != tt.expect {
				t.Errorf("preprocessSource(%q) = %q, want %q", tt.input, got, tt.expect)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// DSL evaluation tests
// ---------------------------------------------------------------------------

func TestSkinScript(t *testing.T) {
	eng := NewEngine()

	// A square lofted to a triangle under distance matching: the classic
	// duplicated-corner prism.
	source := `
(part "hopper"
  (skin (rect 4 4) (ngon 3 2)
        :heights (list 0 2)
        :method :distance
        :caps true))
`
	d, evalErrs, err := eng.Evaluate(source)
	if err != nil {
		t.Fatalf("fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("eval errors: %v", evalErrs)
	}
	if d.PartCount() != 1 {
		t.Fatalf("expected 1 part, got %d", d.PartCount())
	}

	p := d.Lookup("hopper")
	if p == nil {
		t.Fatal("expected part named 'hopper'")
	}
	// 7 side triangles plus two caps.
	if p.Mesh.FaceCount() != 9 {
		t.Errorf("expected 9 faces, got %d", p.Mesh.FaceCount())
	}
	if v := p.Mesh.SignedVolume(); v <= 0 {
		t.Errorf("signed volume %v, want positive", v)
	}
}

func TestLinearSweepScript(t *testing.T) {
	eng := NewEngine()

	source := `
(def r 2)
(part "post" (linear-sweep (circle r :segments 16) :height 10 :caps true))
`
	d, evalErrs, err := eng.Evaluate(source)
	if err != nil {
		t.Fatalf("fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("eval errors: %v", evalErrs)
	}

	p := d.Lookup("post")
	if p == nil {
		t.Fatal("expected part named 'post'")
	}
	if p.Transforms == nil {
		t.Fatal("swept part should carry its transform list")
	}
	// Approximate cylinder volume: pi is out of reach for a 16-gon, so
	// allow a few percent.
	want := math.Pi * 4 * 10
	if v := p.Mesh.SignedVolume(); math.Abs(v-want)/want > 0.05 {
		t.Errorf("volume %v, want within 5%% of %v", v, want)
	}
}

func TestPathSweepScript(t *testing.T) {
	eng := NewEngine()

	source := `
(part "bend"
  (path-sweep (rect 1 1)
              (path (vec3 0 0 0) (vec3 0 0 5) (vec3 0 3 8))
              :caps true))
`
	d, evalErrs, err := eng.Evaluate(source)
	if err != nil {
		t.Fatalf("fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("eval errors: %v", evalErrs)
	}
	p := d.Lookup("bend")
	if p == nil {
		t.Fatal("expected part named 'bend'")
	}
	// 3 sections of 4 vertices each.
	if p.Mesh.VertexCount() != 12 {
		t.Errorf("expected 12 vertices, got %d", p.Mesh.VertexCount())
	}
}

func TestDisplaceScript(t *testing.T) {
	eng := NewEngine()

	source := `
(def body (linear-sweep (circle 2 :segments 16) :height 10 :slices 8))
(part "plain" body)
(part "ribbed" (displace body (texture :preset "ribs" :n 6) :depth 0.5))
`
	d, evalErrs, err := eng.Evaluate(source)
	if err != nil {
		t.Fatalf("fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("eval errors: %v", evalErrs)
	}
	plain := d.Lookup("plain")
	ribbed := d.Lookup("ribbed")
	if plain == nil || ribbed == nil {
		t.Fatal("expected parts 'plain' and 'ribbed'")
	}
	if plain.Mesh.VertexCount() != ribbed.Mesh.VertexCount() {
		t.Error("displacement changed the vertex count")
	}
	moved := false
	for i := range plain.Mesh.Verts {
		if plain.Mesh.Verts[i].Sub(ribbed.Mesh.Verts[i]).Length() > 1e-9 {
			moved = true
			break
		}
	}
	if !moved {
		t.Error("displacement moved no vertices")
	}
}

func TestDisplaceClosedRevolveScript(t *testing.T) {
	eng := NewEngine()

	// A full revolution carries a synthetic closing frame; displace must
	// still layer the mesh over the real sections.
	source := `
(def ring (rotate-sweep (circle 1 :segments 8) :radius 5 :segments 24))
(part "plain" ring)
(part "knurled" (displace ring (texture :preset "checker" :n 4) :depth 0.3))
`
	d, evalErrs, err := eng.Evaluate(source)
	if err != nil {
		t.Fatalf("fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("eval errors: %v", evalErrs)
	}
	plain := d.Lookup("plain")
	knurled := d.Lookup("knurled")
	if plain == nil || knurled == nil {
		t.Fatal("expected parts 'plain' and 'knurled'")
	}
	if plain.Mesh.VertexCount() != knurled.Mesh.VertexCount() {
		t.Error("displacement changed the vertex count")
	}
	moved := false
	for i := range plain.Mesh.Verts {
		if plain.Mesh.Verts[i].Sub(knurled.Mesh.Verts[i]).Length() > 1e-9 {
			moved = true
			break
		}
	}
	if !moved {
		t.Error("displacement moved no vertices")
	}
}

func TestDisplaceRequiresSweptMesh(t *testing.T) {
	eng := NewEngine()

	// A skinned mesh has no frames to texture over.
	source := `
(displace (skin (rect 4 4) (rect 2 2) :heights (list 0 5))
          (texture :preset "ribs"))
`
	d, evalErrs, err := eng.Evaluate(source)
	if err != nil {
		t.Fatalf("expected non-fatal eval error, got fatal: %v", err)
	}
	if d != nil {
		t.Fatal("expected nil design on displace error")
	}
	if len(evalErrs) == 0 {
		t.Fatal("expected an eval error")
	}
	if !strings.Contains(evalErrs[0].Message, "frames") {
		t.Errorf("error %q should mention missing frames", evalErrs[0].Message)
	}
}

func TestDuplicatePartName(t *testing.T) {
	eng := NewEngine()

	source := `
(part "a" (linear-sweep (circle 1 :segments 8) :height 1))
(part "a" (linear-sweep (circle 1 :segments 8) :height 2))
`
	d, evalErrs, err := eng.Evaluate(source)
	if err != nil {
		t.Fatalf("expected non-fatal eval error, got fatal: %v", err)
	}
	if d != nil {
		t.Fatal("expected nil design on duplicate part name")
	}
	if len(evalErrs) == 0 {
		t.Fatal("expected an eval error")
	}
}

func TestRotateSweepScript(t *testing.T) {
	eng := NewEngine()

	source := `(part "ring" (rotate-sweep (circle 1 :segments 8) :radius 5 :segments 24))`
	d, evalErrs, err := eng.Evaluate(source)
	if err != nil {
		t.Fatalf("fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("eval errors: %v", evalErrs)
	}
	p := d.Lookup("ring")
	if p == nil {
		t.Fatal("expected part named 'ring'")
	}
	// Torus: every face is a side triangle, no caps.
	for _, f := range p.Mesh.Faces {
		if len(f) != 3 {
			t.Fatal("closed revolve should have no cap faces")
		}
	}
	if p.Mesh.VertexCount() != 24*8 {
		t.Errorf("expected %d vertices, got %d", 24*8, p.Mesh.VertexCount())
	}
}

func TestKebabCaseBuiltins(t *testing.T) {
	eng := NewEngine()

	// Builtins are registered with underscores; the preprocessor maps the
	// script's kebab-case onto them.
	source := `
(part "spring"
  (path-sweep (circle 0.5 :segments 8)
              (helix-path :radius 4 :pitch 2 :turns 2 :segments 40)))
`
	d, evalErrs, err := eng.Evaluate(source)
	if err != nil {
		t.Fatalf("fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("eval errors: %v", evalErrs)
	}
	if d.Lookup("spring") == nil {
		t.Fatal("expected part named 'spring'")
	}
}
