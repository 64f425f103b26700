// Package texture perturbs the vertices of a swept mesh along their radial
// directions using a height field, as a decoupled post-process over the
// sweep's transform list. It also carries a small catalog of preset height
// fields.
package texture

import (
	"fmt"
	"math"

	"github.com/aquilax/go-perlin"
)

// Texture is a height field over the sweep surface. u runs along the
// sweep (arclength fraction of the frame), v runs around the section
// loop; both are in [0, 1). Heights are nominally in [-1, 1] and scaled
// by the displacement depth.
type Texture interface {
	Height(u, v float64) float64
}

// HeightFunc adapts a plain function to a Texture.
type HeightFunc func(u, v float64) float64

// Height returns f(u, v).
func (f HeightFunc) Height(u, v float64) float64 { return f(u, v) }

// Grid is a sampled height field, bilinearly interpolated and wrapping in
// both directions. Rows index u, columns v.
type Grid [][]float64

// Height samples the grid with bilinear interpolation.
func (g Grid) Height(u, v float64) float64 {
	if len(g) == 0 || len(g[0]) == 0 {
		return 0
	}
	rows := float64(len(g))
	cols := float64(len(g[0]))
	x := wrap(u) * rows
	y := wrap(v) * cols
	i := int(x) % len(g)
	j := int(y) % len(g[0])
	fx := x - math.Floor(x)
	fy := y - math.Floor(y)
	i1 := (i + 1) % len(g)
	j1 := (j + 1) % len(g[0])
	top := g[i][j]*(1-fy) + g[i][j1]*fy
	bot := g[i1][j]*(1-fy) + g[i1][j1]*fy
	return top*(1-fx) + bot*fx
}

func wrap(t float64) float64 {
	t = t - math.Floor(t)
	if t < 0 {
		t += 1
	}
	return t
}

// ---------------------------------------------------------------------------
// Presets
// ---------------------------------------------------------------------------

// Ribs returns n straight ridges running along the sweep.
func Ribs(n int) Texture {
	return HeightFunc(func(u, v float64) float64 {
		return math.Cos(2 * math.Pi * float64(n) * v)
	})
}

// Waves returns n sinusoidal rings around the sweep.
func Waves(n int) Texture {
	return HeightFunc(func(u, v float64) float64 {
		return math.Cos(2 * math.Pi * float64(n) * u)
	})
}

// Checker returns an nu x nv checkerboard of raised and sunken cells.
func Checker(nu, nv int) Texture {
	return HeightFunc(func(u, v float64) float64 {
		iu := int(wrap(u) * float64(nu))
		iv := int(wrap(v) * float64(nv))
		if (iu+iv)%2 == 0 {
			return 1
		}
		return -1
	})
}

// Diamonds returns an n-cell diamond (pyramid) relief.
func Diamonds(n int) Texture {
	return HeightFunc(func(u, v float64) float64 {
		fu := wrap(u * float64(n))
		fv := wrap(v * float64(n))
		return 1 - 2*math.Max(math.Abs(fu-0.5), math.Abs(fv-0.5))*2
	})
}

// perlinAlpha and perlinBeta are the classic smoothness parameters for
// the preset noise field.
const (
	perlinAlpha = 2
	perlinBeta  = 2
	perlinIter  = 3
)

// Perlin is a seeded gradient-noise height field. The same seed and
// scales always produce the same surface.
type Perlin struct {
	noise  *perlin.Perlin
	scaleU float64
	scaleV float64
}

// NewPerlin returns a Perlin texture with scale noise cells along each
// axis.
func NewPerlin(seed int64, scaleU, scaleV float64) *Perlin {
	return &Perlin{
		noise:  perlin.NewPerlin(perlinAlpha, perlinBeta, perlinIter, seed),
		scaleU: scaleU,
		scaleV: scaleV,
	}
}

// Height samples the noise field.
func (p *Perlin) Height(u, v float64) float64 {
	return p.noise.Noise2D(u*p.scaleU+0.5, v*p.scaleV+0.5)
}

// Preset returns a catalog texture by name. n tunes the cell count where
// the preset has one; seed feeds the perlin preset.
func Preset(name string, n int, seed int64) (Texture, error) {
	if n <= 0 {
		n = 8
	}
	switch name {
	case "ribs":
		return Ribs(n), nil
	case "waves":
		return Waves(n), nil
	case "checker":
		return Checker(n, n), nil
	case "diamonds":
		return Diamonds(n), nil
	case "perlin":
		return NewPerlin(seed, float64(n), float64(n)), nil
	}
	return nil, fmt.Errorf("texture: unknown preset %q", name)
}
