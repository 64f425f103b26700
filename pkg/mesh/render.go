package mesh

import (
	"github.com/chazu/loft/pkg/geom"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// RenderMesh is a renderer-facing triangle mesh. All arrays are flat:
// vertices has 3 floats per vertex (x,y,z), normals has 3 floats per
// vertex, indices has 3 uint32s per triangle.
type RenderMesh struct {
	Vertices []float32 `json:"vertices"` // [x0,y0,z0, x1,y1,z1, ...]
	Normals  []float32 `json:"normals"`  // [nx0,ny0,nz0, ...]
	Indices  []uint32  `json:"indices"`  // [i0,i1,i2, ...] triangles
	PartName string    `json:"partName"` // which design part this came from
}

// VertexCount returns the number of vertices.
func (m *RenderMesh) VertexCount() int {
	return len(m.Vertices) / 3
}

// TriangleCount returns the number of triangles.
func (m *RenderMesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// IsEmpty returns true if the mesh has no geometry.
func (m *RenderMesh) IsEmpty() bool {
	return len(m.Vertices) == 0
}

// Render converts the mesh to the flat-array renderer form, keeping the
// shared indexed vertices and averaging face normals per vertex.
func (m *Mesh) Render(partName string) *RenderMesh {
	normals := make([]v3.Vec, len(m.Verts))
	var indices []uint32
	for _, f := range m.Faces {
		for i := 2; i < len(f); i++ {
			a, b, c := f[0], f[i-1], f[i]
			n := m.Verts[b].Sub(m.Verts[a]).Cross(m.Verts[c].Sub(m.Verts[a]))
			normals[a] = normals[a].Add(n)
			normals[b] = normals[b].Add(n)
			normals[c] = normals[c].Add(n)
			indices = append(indices, uint32(a), uint32(b), uint32(c))
		}
	}

	out := &RenderMesh{
		Vertices: make([]float32, 0, len(m.Verts)*3),
		Normals:  make([]float32, 0, len(m.Verts)*3),
		Indices:  indices,
		PartName: partName,
	}
	for i, v := range m.Verts {
		out.Vertices = append(out.Vertices, float32(v.X), float32(v.Y), float32(v.Z))
		n := normals[i]
		if n.Length() > geom.Epsilon {
			n = n.Normalize()
		}
		out.Normals = append(out.Normals, float32(n.X), float32(n.Y), float32(n.Z))
	}
	return out
}
