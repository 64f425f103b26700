// Package design collects the named mesh parts a script evaluation
// produces, in insertion order, for rendering or export.
package design

import (
	"fmt"

	"github.com/chazu/loft/pkg/mesh"
	"github.com/chazu/loft/pkg/sweep"
)

// Part is one named mesh in a design. Transforms carries the sweep's
// frame list when the part came from a sweep, so callers can attach
// auxiliary geometry or re-displace it; it is nil for skinned parts.
// Warnings holds any non-fatal diagnostics raised while building the
// part's geometry.
type Part struct {
	Name       string
	Mesh       *mesh.Mesh
	Transforms sweep.TransformList
	Warnings   []string
}

// Design is the top-level artifact produced by evaluating a script. It
// is built once per evaluation and never mutated afterwards.
type Design struct {
	parts  []*Part
	byName map[string]int
}

// New creates an empty design.
func New() *Design {
	return &Design{byName: make(map[string]int)}
}

// AddPart registers a part. Part names are unique within a design.
func (d *Design) AddPart(p *Part) error {
	if p.Name == "" {
		return fmt.Errorf("design: part needs a name")
	}
	if _, ok := d.byName[p.Name]; ok {
		return fmt.Errorf("design: duplicate part name %q", p.Name)
	}
	d.byName[p.Name] = len(d.parts)
	d.parts = append(d.parts, p)
	return nil
}

// Lookup returns the part with the given name, or nil.
func (d *Design) Lookup(name string) *Part {
	i, ok := d.byName[name]
	if !ok {
		return nil
	}
	return d.parts[i]
}

// MustLookup returns the part with the given name, or panics.
func (d *Design) MustLookup(name string) *Part {
	p := d.Lookup(name)
	if p == nil {
		panic(fmt.Sprintf("design: no part named %q", name))
	}
	return p
}

// Parts returns all parts in insertion order.
func (d *Design) Parts() []*Part {
	return d.parts
}

// PartCount returns the number of parts.
func (d *Design) PartCount() int {
	return len(d.parts)
}
