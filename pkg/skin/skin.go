// Package skin builds a mesh interpolating a sequence of cross-section
// profiles: each adjacent pair is vertex-matched, optionally separated by
// interpolated slices, and the resulting layers are stitched into one
// winding-consistent mesh.
package skin

import (
	"fmt"

	"github.com/chazu/loft/pkg/geom"
	"github.com/chazu/loft/pkg/match"
	"github.com/chazu/loft/pkg/mesh"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Options configures a skin.
type Options struct {
	// Methods holds one correspondence method, or one per gap between
	// adjacent profiles. Default is distance matching.
	Methods []match.Method
	// Slices holds one interpolated-layer count, or one per gap.
	// Default 0.
	Slices []int
	// Refine holds one upsampling factor, or one per profile: profile i
	// is resampled to len(i) * refine before matching. Default 1.
	Refine []int
	// Sampling picks how refinement distributes points. Unset, it
	// follows the methods: length sampling for direct and reindex,
	// segment sampling otherwise. Length sampling cannot be combined
	// with a duplicating method.
	Sampling *geom.Sampling
	// Closed connects the last profile back to the first.
	Closed bool
	// Caps closes the two ends of an open chain with flat N-gons.
	Caps bool
	// Style picks the quad split used when stitching layers.
	Style mesh.Style
	// Heights assigns a Z position to each 2D profile source; required
	// if any source is 2D, with one entry per profile.
	Heights []float64
}

// Skin builds the mesh connecting the given profile chain.
//
// The matching criteria are local per gap: the output is not checked for
// global self-intersection, and wildly misaligned profiles can produce an
// invalid mesh from valid-looking inputs.
func Skin(sources []geom.ProfileSource, opts Options) (*mesh.Mesh, error) {
	profiles, err := resolveSources(sources, opts.Heights)
	if err != nil {
		return nil, err
	}
	n := len(profiles)
	if n < 2 {
		return nil, fmt.Errorf("skin: need at least 2 profiles, got %d", n)
	}
	gaps := n - 1
	if opts.Closed {
		gaps = n
	}

	methods, err := expandMethods(opts.Methods, gaps)
	if err != nil {
		return nil, err
	}
	slices, err := expandInts(opts.Slices, gaps, 0, "slices")
	if err != nil {
		return nil, err
	}
	refine, err := expandInts(opts.Refine, n, 1, "refine")
	if err != nil {
		return nil, err
	}

	duplicating := false
	for _, m := range methods {
		if m.Duplicating() {
			duplicating = true
		}
	}
	sampling := geom.SamplingLength
	if duplicating {
		sampling = geom.SamplingSegment
	}
	if opts.Sampling != nil {
		sampling = *opts.Sampling
		if sampling == geom.SamplingLength && duplicating {
			for k, m := range methods {
				if m.Duplicating() {
					return nil, fmt.Errorf("skin: length sampling is incompatible with method %v at gap %d", m, k)
				}
			}
		}
	}

	// Refine keeps the original vertices and only inserts new ones.
	for i := range profiles {
		if refine[i] > 1 {
			profiles[i], err = profiles[i].Resample(len(profiles[i])*refine[i], sampling)
			if err != nil {
				return nil, fmt.Errorf("skin: profile %d: %w", i, err)
			}
		}
	}

	// Direct and reindex transitions need equal lengths everywhere:
	// resample every profile up to the longest.
	if !duplicating {
		target := 0
		for _, p := range profiles {
			target = max(target, len(p))
		}
		for i := range profiles {
			profiles[i], err = profiles[i].Resample(target, sampling)
			if err != nil {
				return nil, fmt.Errorf("skin: profile %d: %w", i, err)
			}
		}
	}

	// Build one band of layers per gap. Duplication methods may assign
	// different duplications to the same profile on its two sides, so
	// bands are stitched independently and welded at their shared
	// layers afterwards.
	bands := make([]*mesh.Mesh, 0, gaps)
	cur := profiles[0]
	for k := 0; k < gaps; k++ {
		a := cur
		b := profiles[(k+1)%n]
		if methods[k].Duplicating() {
			a = profiles[k%n]
		}
		ma, mb, err := match.Match(a, b, methods[k])
		if err != nil {
			return nil, fmt.Errorf("skin: gap %d: %w", k, err)
		}
		cur = mb

		bm, err := buildBand(ma, mb, slices[k], k, gaps, opts)
		if err != nil {
			return nil, err
		}
		bands = append(bands, bm)
	}

	out := mesh.Concat(bands...)
	out.MergeVertices(geom.Epsilon)
	out.NormalizeWinding()
	return out, nil
}

// buildBand stacks one matched pair plus its interpolated slices into an
// unnormalized sub-mesh, capping only at the true ends of an open chain.
func buildBand(ma, mb geom.Profile, sliceCount, gap, gaps int, opts Options) (*mesh.Mesh, error) {
	layers := make([][]v3.Vec, 0, sliceCount+2)
	layers = append(layers, ma)
	layers = append(layers, mesh.InterpolateLayers(ma, mb, sliceCount)...)
	layers = append(layers, mb)
	bm, err := mesh.Stack(layers, mesh.StackOptions{
		CapStart:      !opts.Closed && opts.Caps && gap == 0,
		CapEnd:        !opts.Closed && opts.Caps && gap == gaps-1,
		Style:         opts.Style,
		SkipNormalize: true,
	})
	if err != nil {
		return nil, fmt.Errorf("skin: gap %d: %w", gap, err)
	}
	return bm, nil
}

// Region is one independent profile chain in a multi-part skin, such as
// one of several disjoint simple polygons of a composite cross-section.
type Region struct {
	Sources []geom.ProfileSource
	Opts    Options
}

// Regions skins each region independently and unions the sub-meshes by
// vertex-index-offset concatenation. Each region gets its own requested
// caps and its own winding normalization.
func Regions(regions []Region) (*mesh.Mesh, error) {
	if len(regions) == 0 {
		return nil, fmt.Errorf("skin: no regions")
	}
	parts := make([]*mesh.Mesh, len(regions))
	for i, r := range regions {
		m, err := Skin(r.Sources, r.Opts)
		if err != nil {
			return nil, fmt.Errorf("skin: region %d: %w", i, err)
		}
		parts[i] = m
	}
	return mesh.Concat(parts...), nil
}

// resolveSources normalizes tagged 2D/3D sources to 3D profiles. 2D
// sources take their Z from Heights, which must then cover every profile.
func resolveSources(sources []geom.ProfileSource, heights []float64) ([]geom.Profile, error) {
	any2D := false
	for _, s := range sources {
		if _, ok := s.(geom.Profile2D); ok {
			any2D = true
		}
	}
	if any2D && len(heights) != len(sources) {
		return nil, fmt.Errorf("skin: %d heights for %d profiles (2D profiles need one height each)",
			len(heights), len(sources))
	}
	out := make([]geom.Profile, len(sources))
	for i, s := range sources {
		h := 0.0
		if heights != nil {
			h = heights[i]
		}
		p, err := geom.ResolveProfile(s, h, heights != nil)
		if err != nil {
			return nil, fmt.Errorf("skin: profile %d: %w", i, err)
		}
		if len(p) < 3 {
			return nil, fmt.Errorf("skin: profile %d has %d points, need at least 3", i, len(p))
		}
		out[i] = p
	}
	return out, nil
}

// expandMethods expands a scalar-or-per-gap method list.
func expandMethods(methods []match.Method, gaps int) ([]match.Method, error) {
	switch len(methods) {
	case 0:
		out := make([]match.Method, gaps)
		for i := range out {
			out[i] = match.Distance
		}
		return out, nil
	case 1:
		out := make([]match.Method, gaps)
		for i := range out {
			out[i] = methods[0]
		}
		return out, nil
	case gaps:
		return methods, nil
	}
	return nil, fmt.Errorf("skin: %d methods for %d gaps (want 1 or %d)", len(methods), gaps, gaps)
}

// expandInts expands a scalar-or-per-item int list.
func expandInts(vals []int, want, def int, name string) ([]int, error) {
	switch len(vals) {
	case 0:
		out := make([]int, want)
		for i := range out {
			out[i] = def
		}
		return out, nil
	case 1:
		out := make([]int, want)
		for i := range out {
			out[i] = vals[0]
		}
		return out, nil
	case want:
		return vals, nil
	}
	return nil, fmt.Errorf("skin: %d %s values for %d items (want 1 or %d)", len(vals), name, want, want)
}
