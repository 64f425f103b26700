package design

import (
	"testing"

	"github.com/chazu/loft/pkg/mesh"
)

func TestAddAndLookup(t *testing.T) {
	d := New()
	if err := d.AddPart(&Part{Name: "body", Mesh: &mesh.Mesh{}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := d.AddPart(&Part{Name: "lid", Mesh: &mesh.Mesh{}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p := d.Lookup("body"); p == nil || p.Name != "body" {
		t.Errorf("Lookup(body) = %v", p)
	}
	if p := d.Lookup("missing"); p != nil {
		t.Errorf("Lookup(missing) = %v, want nil", p)
	}
	if got := d.PartCount(); got != 2 {
		t.Errorf("PartCount() = %d, want 2", got)
	}
}

func TestDuplicateNameRejected(t *testing.T) {
	d := New()
	if err := d.AddPart(&Part{Name: "body", Mesh: &mesh.Mesh{}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := d.AddPart(&Part{Name: "body", Mesh: &mesh.Mesh{}}); err == nil {
		t.Fatal("expected error for duplicate part name")
	}
	if err := d.AddPart(&Part{Mesh: &mesh.Mesh{}}); err == nil {
		t.Fatal("expected error for unnamed part")
	}
}

func TestPartsInsertionOrder(t *testing.T) {
	d := New()
	names := []string{"c", "a", "b"}
	for _, n := range names {
		if err := d.AddPart(&Part{Name: n, Mesh: &mesh.Mesh{}}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	for i, p := range d.Parts() {
		if p.Name != names[i] {
			t.Errorf("parts[%d] = %q, want %q", i, p.Name, names[i])
		}
	}
}

func TestMustLookupPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for missing part")
		}
	}()
	New().MustLookup("nope")
}
