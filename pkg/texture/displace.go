package texture

import (
	"fmt"

	"github.com/chazu/loft/pkg/geom"
	"github.com/chazu/loft/pkg/mesh"
	"github.com/chazu/loft/pkg/sweep"
)

// Options configures a displacement pass.
type Options struct {
	// Depth scales the height field into model units.
	Depth float64
	// Taper fades the displacement linearly to zero at both ends of the
	// sweep, keeping the end sections (and any caps) flat.
	Taper bool
	// Closed marks tf as coming from a closed sweep, whose final frame
	// is the synthetic closing frame and places no section of its own.
	Closed bool
}

// Displace returns a copy of a swept mesh with every vertex pushed along
// its radial direction by the texture height. The mesh must be
// layer-structured over the transform list: one section of equal vertex
// count per frame, as produced by Sweep from the same transforms. For a
// closed sweep the caller sets Closed so the synthetic closing frame is
// not counted as a section.
//
// u is the frame's arclength fraction, v the vertex fraction around the
// loop. The direction is the component of (vertex - frame origin)
// orthogonal to the frame's forward axis, falling back to the side axis
// for vertices on the path itself. Cap faces reuse section vertices, so
// caps follow the displaced rim; face windings are left untouched and
// normals are not recomputed.
func Displace(m *mesh.Mesh, tf sweep.TransformList, tex Texture, opts Options) (*mesh.Mesh, error) {
	if len(tf) == 0 {
		return nil, fmt.Errorf("texture: empty transform list")
	}
	nf := tf.SectionCount(opts.Closed)
	if nf < 2 || len(m.Verts)%nf != 0 {
		return nil, fmt.Errorf("texture: mesh with %d vertices does not layer over %d sections", len(m.Verts), nf)
	}
	per := len(m.Verts) / nf
	fractions := tf.Fractions()

	res := &mesh.Mesh{}
	res.Verts = append(res.Verts, m.Verts...)
	res.Faces = make([][]int, len(m.Faces))
	for i, f := range m.Faces {
		face := make([]int, len(f))
		copy(face, f)
		res.Faces[i] = face
	}

	for i := 0; i < nf; i++ {
		u := fractions[i]
		taper := 1.0
		if opts.Taper {
			t := u
			if t > 0.5 {
				t = 1 - t
			}
			taper = 2 * t
		}
		f := tf[i]
		for j := 0; j < per; j++ {
			v := float64(j) / float64(per)
			idx := i*per + j
			dir := geom.ProjectPlane(res.Verts[idx].Sub(f.Origin), f.Z)
			if dir.Length() < geom.Epsilon {
				dir = f.X
			} else {
				dir = dir.Normalize()
			}
			h := tex.Height(u, v) * opts.Depth * taper
			res.Verts[idx] = res.Verts[idx].Add(dir.MulScalar(h))
		}
	}
	return res, nil
}
