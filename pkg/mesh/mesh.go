// Package mesh holds the indexed-mesh artifact the skin and sweep
// algorithms produce, and the section stacker that assembles it from
// layers of matched cross-sections.
package mesh

import (
	"fmt"
	"math"

	"github.com/chazu/loft/pkg/geom"
	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Mesh is a flat vertex array plus face index lists. Faces are mostly
// triangles; end caps are stored as single N-gons until Triangulate is
// called. In a closed region every edge is shared by exactly two
// oppositely wound faces once coincident vertices are merged.
type Mesh struct {
	Verts []v3.Vec
	Faces [][]int
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int { return len(m.Verts) }

// FaceCount returns the number of faces.
func (m *Mesh) FaceCount() int { return len(m.Faces) }

// AddFace appends one face. Indices must reference existing vertices.
func (m *Mesh) AddFace(idx ...int) {
	m.Faces = append(m.Faces, idx)
}

// Concat unions disjoint meshes by vertex-index-offset concatenation.
// The inputs are not modified.
func Concat(meshes ...*Mesh) *Mesh {
	out := &Mesh{}
	for _, mm := range meshes {
		offset := len(out.Verts)
		out.Verts = append(out.Verts, mm.Verts...)
		for _, f := range mm.Faces {
			nf := make([]int, len(f))
			for i, v := range f {
				nf[i] = v + offset
			}
			out.Faces = append(out.Faces, nf)
		}
	}
	return out
}

// MergeVertices welds vertices closer than tol together in place,
// rewriting face indices and dropping faces collapsed below 3 distinct
// vertices. Welding restores the shared-edge invariant between regions
// that were assembled independently.
func (m *Mesh) MergeVertices(tol float64) {
	if tol <= 0 {
		tol = geom.Epsilon
	}
	type cell struct{ x, y, z int64 }
	grid := make(map[cell][]int)
	remap := make([]int, len(m.Verts))
	kept := make([]v3.Vec, 0, len(m.Verts))

	for i, v := range m.Verts {
		c := cell{
			x: int64(math.Round(v.X / tol)),
			y: int64(math.Round(v.Y / tol)),
			z: int64(math.Round(v.Z / tol)),
		}
		found := -1
		// Check the cell and its neighbors so points straddling a cell
		// boundary still weld.
		for dx := int64(-1); dx <= 1 && found < 0; dx++ {
			for dy := int64(-1); dy <= 1 && found < 0; dy++ {
				for dz := int64(-1); dz <= 1 && found < 0; dz++ {
					for _, k := range grid[cell{c.x + dx, c.y + dy, c.z + dz}] {
						if kept[k].Sub(v).Length() <= tol {
							found = k
							break
						}
					}
				}
			}
		}
		if found >= 0 {
			remap[i] = found
			continue
		}
		remap[i] = len(kept)
		grid[c] = append(grid[c], len(kept))
		kept = append(kept, v)
	}

	faces := m.Faces[:0]
	for _, f := range m.Faces {
		nf := make([]int, 0, len(f))
		for _, v := range f {
			idx := remap[v]
			if len(nf) > 0 && nf[len(nf)-1] == idx {
				continue
			}
			nf = append(nf, idx)
		}
		for len(nf) > 1 && nf[0] == nf[len(nf)-1] {
			nf = nf[:len(nf)-1]
		}
		if len(nf) >= 3 {
			faces = append(faces, nf)
		}
	}
	m.Verts = kept
	m.Faces = faces
}

// SignedVolume returns the mesh volume under the divergence theorem:
// positive when face windings point outward, negative when they point
// inward. Open meshes give the volume of the region swept by their fan
// triangulation; the sign is still deterministic.
func (m *Mesh) SignedVolume() float64 {
	total := 0.0
	for _, f := range m.Faces {
		for i := 2; i < len(f); i++ {
			a := m.Verts[f[0]]
			b := m.Verts[f[i-1]]
			c := m.Verts[f[i]]
			total += a.Dot(b.Cross(c))
		}
	}
	return total / 6
}

// ReverseFaces flips the winding of every face in place.
func (m *Mesh) ReverseFaces() {
	for _, f := range m.Faces {
		for i, j := 0, len(f)-1; i < j; i, j = i+1, j-1 {
			f[i], f[j] = f[j], f[i]
		}
	}
}

// NormalizeWinding flips every face if the signed volume is negative, so
// the outward-normal convention holds regardless of the winding of the
// input profiles.
func (m *Mesh) NormalizeWinding() {
	if m.SignedVolume() < 0 {
		m.ReverseFaces()
	}
}

// Triangulate fans every N-gon face into triangles in place. Cap faces
// come from simple profile loops, which fan cleanly from their first
// vertex.
func (m *Mesh) Triangulate() {
	faces := make([][]int, 0, len(m.Faces))
	for _, f := range m.Faces {
		if len(f) == 3 {
			faces = append(faces, f)
			continue
		}
		for i := 2; i < len(f); i++ {
			faces = append(faces, []int{f[0], f[i-1], f[i]})
		}
	}
	m.Faces = faces
}

// Triangles returns the mesh as renderer triangles, triangulating N-gon
// faces on the fly. The mesh itself is not modified.
func (m *Mesh) Triangles() []*sdf.Triangle3 {
	var tris []*sdf.Triangle3
	for _, f := range m.Faces {
		for i := 2; i < len(f); i++ {
			tris = append(tris, &sdf.Triangle3{
				m.Verts[f[0]], m.Verts[f[i-1]], m.Verts[f[i]],
			})
		}
	}
	return tris
}

// SaveSTL writes the mesh to an STL file.
func (m *Mesh) SaveSTL(path string) error {
	tris := m.Triangles()
	if len(tris) == 0 {
		return fmt.Errorf("mesh: empty mesh, nothing to save")
	}
	return render.SaveSTL(path, tris)
}
