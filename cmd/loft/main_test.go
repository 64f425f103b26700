package main

import (
	"encoding/binary"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

const testScript = `
; square lofted to a triangle, with caps
(part "hopper"
  (skin (rect 4 4) (ngon 3 2)
        :heights (list 0 2)
        :method :distance
        :caps true))
`

func writeScript(t *testing.T, source string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.loft")
	if err := os.WriteFile(path, []byte(source), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRunSTL(t *testing.T) {
	script := writeScript(t, testScript)
	out := filepath.Join(t.TempDir(), "out.stl")

	if err := run(script, out, "stl"); err != nil {
		t.Fatalf("run: %v", err)
	}

	raw, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if len(raw) < 84 {
		t.Fatalf("STL file too short: %d bytes", len(raw))
	}
	// Binary STL: 80-byte header, uint32 triangle count, 50 bytes per triangle.
	count := binary.LittleEndian.Uint32(raw[80:84])
	// 7 side triangles + triangulated quad cap (2) + triangle cap (1).
	if count != 10 {
		t.Errorf("triangle count = %d, want 10", count)
	}
	if want := 84 + int(count)*50; len(raw) != want {
		t.Errorf("file size = %d, want %d", len(raw), want)
	}
}

func TestRunJSON(t *testing.T) {
	script := writeScript(t, testScript)
	out := filepath.Join(t.TempDir(), "out.json")

	if err := run(script, out, "json"); err != nil {
		t.Fatalf("run: %v", err)
	}

	raw, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	var data []MeshData
	if err := json.Unmarshal(raw, &data); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(data) != 1 {
		t.Fatalf("expected 1 mesh, got %d", len(data))
	}
	m := data[0]
	if m.PartName != "hopper" {
		t.Errorf("partName = %q, want %q", m.PartName, "hopper")
	}
	if m.Color != colorPalette[0] {
		t.Errorf("color = %q, want %q", m.Color, colorPalette[0])
	}
	if len(m.Indices)%3 != 0 || len(m.Indices) == 0 {
		t.Errorf("indices length %d not a positive multiple of 3", len(m.Indices))
	}
	if len(m.Vertices) != len(m.Normals) {
		t.Errorf("vertices length %d != normals length %d", len(m.Vertices), len(m.Normals))
	}
}

func TestRunScriptErrors(t *testing.T) {
	script := writeScript(t, `(rect -1 4)`)
	out := filepath.Join(t.TempDir(), "out.stl")
	if err := run(script, out, "stl"); err == nil {
		t.Fatal("expected error for failing script")
	}
}

func TestRunEmptyDesign(t *testing.T) {
	script := writeScript(t, `(+ 1 2)`)
	out := filepath.Join(t.TempDir(), "out.stl")
	if err := run(script, out, "stl"); err == nil {
		t.Fatal("expected error for script that registers no parts")
	}
}
