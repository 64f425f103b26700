package engine

import (
	"fmt"
	"math"
	"strings"

	"github.com/chazu/loft/pkg/design"
	"github.com/chazu/loft/pkg/geom"
	"github.com/chazu/loft/pkg/match"
	"github.com/chazu/loft/pkg/mesh"
	"github.com/chazu/loft/pkg/skin"
	"github.com/chazu/loft/pkg/sweep"
	"github.com/chazu/loft/pkg/texture"
	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
	zygo "github.com/glycerine/zygomys/zygo"
)

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// preprocessSource transforms Loft Lisp source code before passing it to
// zygomys. It performs two transformations:
//
//  1. Keyword conversion: :keyword -> "__kw_keyword" (string literal)
//     This avoids the need to register keyword symbols as globals, which
//     would conflict with user-defined variables of the same name.
//
//  2. Kebab-case to underscore: path-sweep -> path_sweep
//     zygomys does not allow hyphens in identifiers (it interprets them
//     as the subtraction operator). This converts kebab-case identifiers
//     to underscore form outside of strings and comments.
//
// Both transformations respect string literal boundaries and line comments.
func preprocessSource(source string) string {
	result := make([]byte, 0, len(source)+len(source)/4)
	b := []byte(source)
	i := 0
	for i < len(b) {
		// Skip double-quoted string literals.
		if b[i] == '"' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '"' {
				if b[i] == '\\' && i+1 < len(b) {
					result = append(result, b[i], b[i+1])
					i += 2
					continue
				}
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Skip backtick-quoted string literals.
		if b[i] == '`' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '`' {
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Convert ; line comments to // comments for zygomys.
		// zygomys uses // for line comments, not the traditional Lisp ;.
		if b[i] == ';' {
			result = append(result, '/', '/')
			i++
			// Skip additional ; characters (;; style).
			for i < len(b) && b[i] == ';' {
				i++
			}
			for i < len(b) && b[i] != '\n' {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Transform :keyword to "__kw_keyword".
		if b[i] == ':' && i+1 < len(b) {
			// Preserve := (assignment operator).
			if b[i+1] == '=' {
				result = append(result, b[i], b[i+1])
				i += 2
				continue
			}
			// Check for keyword: colon followed by a letter.
			if isLetter(b[i+1]) {
				j := i + 1
				for j < len(b) && isKWChar(b[j]) {
					j++
				}
				kwName := string(b[i+1 : j])
				result = append(result, '"')
				result = append(result, []byte(kwPrefix)...)
				result = append(result, []byte(kwName)...)
				result = append(result, '"')
				i = j
				continue
			}
		}
		// Transform kebab-case identifiers: alpha-alpha -> alpha_alpha.
		// Only when hyphen sits between identifier characters (not a minus operator).
		if b[i] == '-' && i > 0 && i+1 < len(b) &&
			isIdentChar(b[i-1]) && isIdentStartChar(b[i+1]) {
			result = append(result, '_')
			i++
			continue
		}
		result = append(result, b[i])
		i++
	}
	return string(result)
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKWChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '-' || c == '_'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}

func isIdentStartChar(c byte) bool {
	return isLetter(c)
}

// ---------------------------------------------------------------------------
// Custom Sexp types for passing Go values through the zygomys environment
// ---------------------------------------------------------------------------

// sexpProfile wraps a planar cross-section so it can be returned from the
// profile constructors and consumed by skin and the sweeps.
type sexpProfile struct {
	pts geom.Profile2D
}

func (p *sexpProfile) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(profile %d points)", len(p.pts))
}
func (p *sexpProfile) Type() *zygo.RegisteredType { return nil }

// sexpPath wraps a geom.Path.
type sexpPath struct {
	path geom.Path
}

func (p *sexpPath) SexpString(ps *zygo.PrintState) string {
	kind := "open"
	if p.path.Closed {
		kind = "closed"
	}
	return fmt.Sprintf("(path %d points %s)", p.path.Len(), kind)
}
func (p *sexpPath) Type() *zygo.RegisteredType { return nil }

// sexpVec3 wraps a 3D point.
type sexpVec3 struct {
	vec v3.Vec
}

func (v *sexpVec3) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec3 %.1f %.1f %.1f)", v.vec.X, v.vec.Y, v.vec.Z)
}
func (v *sexpVec3) Type() *zygo.RegisteredType { return nil }

// sexpMesh wraps a built mesh. Sweeps attach their transform list so a
// later displace can reuse the same frames; closed records whether that
// list ends in a synthetic closing frame. Warnings ride along until the
// mesh is registered as a part.
type sexpMesh struct {
	mesh     *mesh.Mesh
	tf       sweep.TransformList
	closed   bool
	warnings []sweep.Warning
}

func (m *sexpMesh) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(mesh %d verts %d faces)", m.mesh.VertexCount(), m.mesh.FaceCount())
}
func (m *sexpMesh) Type() *zygo.RegisteredType { return nil }

// sexpTexture wraps a height field.
type sexpTexture struct {
	tex  texture.Texture
	name string
}

func (t *sexpTexture) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(texture %s)", t.name)
}
func (t *sexpTexture) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

// isKW checks if a Sexp is a preprocessed keyword string.
// Returns the keyword name (without prefix) and true if it is.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", false
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], true
	}
	return "", false
}

// kwArgs holds the result of parsing a mixed positional+keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments.
// Keywords are identified by the __kw_ prefix added during preprocessing.
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	i := 0
	for i < len(args) {
		name, ok := isKW(args[i])
		if ok {
			if i+1 < len(args) {
				result.kw[name] = args[i+1]
				i += 2
			} else {
				// Keyword at end with no value: treat as flag with nil.
				result.kw[name] = zygo.SexpNull
				i++
			}
		} else {
			result.positional = append(result.positional, args[i])
			i++
		}
	}
	return result
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

// toFloat64 extracts a float64 from a Sexp (SexpInt or SexpFloat).
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

// toInt extracts an int from a Sexp.
func toInt(s zygo.Sexp) (int, error) {
	if v, ok := s.(*zygo.SexpInt); ok {
		return int(v.Val), nil
	}
	return 0, fmt.Errorf("expected integer, got %T (%s)", s, s.SexpString(nil))
}

// toBool extracts a bool from a Sexp.
func toBool(s zygo.Sexp) (bool, error) {
	if v, ok := s.(*zygo.SexpBool); ok {
		return v.Val, nil
	}
	return false, fmt.Errorf("expected bool, got %T (%s)", s, s.SexpString(nil))
}

// toString extracts a string from a Sexp.
func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
}

// toKeywordString extracts a keyword name or plain string from a Sexp.
// Handles both preprocessed keywords (__kw_distance) and plain strings
// ("distance").
func toKeywordString(s zygo.Sexp) (string, error) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", fmt.Errorf("expected keyword or string, got %T (%s)", s, s.SexpString(nil))
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], nil
	}
	return str.S, nil
}

// toProfile extracts a planar profile from a sexpProfile.
func toProfile(s zygo.Sexp) (geom.Profile2D, error) {
	if p, ok := s.(*sexpProfile); ok {
		return p.pts, nil
	}
	return nil, fmt.Errorf("expected profile, got %T (%s)", s, s.SexpString(nil))
}

// toPath extracts a path from a sexpPath.
func toPath(s zygo.Sexp) (geom.Path, error) {
	if p, ok := s.(*sexpPath); ok {
		return p.path, nil
	}
	return geom.Path{}, fmt.Errorf("expected path, got %T (%s)", s, s.SexpString(nil))
}

// toMesh extracts a mesh from a sexpMesh.
func toMesh(s zygo.Sexp) (*sexpMesh, error) {
	if m, ok := s.(*sexpMesh); ok {
		return m, nil
	}
	return nil, fmt.Errorf("expected mesh, got %T (%s)", s, s.SexpString(nil))
}

// toVec3 extracts a point from a sexpVec3.
func toVec3(s zygo.Sexp) (v3.Vec, error) {
	if v, ok := s.(*sexpVec3); ok {
		return v.vec, nil
	}
	return v3.Vec{}, fmt.Errorf("expected vec3, got %T (%s)", s, s.SexpString(nil))
}

// toTexture extracts a height field from a sexpTexture.
func toTexture(s zygo.Sexp) (texture.Texture, error) {
	if t, ok := s.(*sexpTexture); ok {
		return t.tex, nil
	}
	return nil, fmt.Errorf("expected texture, got %T (%s)", s, s.SexpString(nil))
}

// sexpListToSlice converts a SexpPair (Lisp list) or SexpArray to a Go slice.
func sexpListToSlice(s zygo.Sexp) ([]zygo.Sexp, error) {
	switch v := s.(type) {
	case *zygo.SexpPair:
		return zygo.ListToArray(v)
	case *zygo.SexpArray:
		return v.Val, nil
	case *zygo.SexpSentinel:
		if v == zygo.SexpNull {
			return nil, nil
		}
	}
	return nil, fmt.Errorf("expected list or array, got %T", s)
}

// toFloatSlice converts a Lisp list of numbers to a Go slice.
func toFloatSlice(s zygo.Sexp) ([]float64, error) {
	items, err := sexpListToSlice(s)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(items))
	for i, item := range items {
		f, err := toFloat64(item)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		out[i] = f
	}
	return out, nil
}

// toIntSlice converts a Lisp list of integers to a Go slice. A bare
// integer is accepted as a one-element list so that scalar and per-gap
// forms share a keyword.
func toIntSlice(s zygo.Sexp) ([]int, error) {
	if v, ok := s.(*zygo.SexpInt); ok {
		return []int{int(v.Val)}, nil
	}
	items, err := sexpListToSlice(s)
	if err != nil {
		return nil, err
	}
	out := make([]int, len(items))
	for i, item := range items {
		n, err := toInt(item)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		out[i] = n
	}
	return out, nil
}

// toMatchMethods converts a keyword or list of keywords to match methods.
func toMatchMethods(s zygo.Sexp) ([]match.Method, error) {
	if name, err := toKeywordString(s); err == nil {
		m, err := match.ParseMethod(name)
		if err != nil {
			return nil, err
		}
		return []match.Method{m}, nil
	}
	items, err := sexpListToSlice(s)
	if err != nil {
		return nil, err
	}
	out := make([]match.Method, len(items))
	for i, item := range items {
		name, err := toKeywordString(item)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		out[i], err = match.ParseMethod(name)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
	}
	return out, nil
}

// toStyle converts a keyword or string to a stitch style.
func toStyle(s zygo.Sexp) (mesh.Style, error) {
	name, err := toKeywordString(s)
	if err != nil {
		return 0, err
	}
	return mesh.ParseStyle(name)
}

// warningStrings flattens sweep warnings for the design part.
func warningStrings(ws []sweep.Warning) []string {
	if len(ws) == 0 {
		return nil
	}
	out := make([]string, len(ws))
	for i, w := range ws {
		out[i] = w.String()
	}
	return out
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// registerBuiltins installs all Loft DSL builtins into a zygomys environment.
// The builtins build geometry values and register finished parts on the
// provided design.
//
// Source code must be preprocessed with preprocessSource() before evaluation so
// that :keyword tokens are converted to recognizable string literals.
func registerBuiltins(env *zygo.Zlisp, d *design.Design) {

	// -----------------------------------------------------------------------
	// (vec3 1 2 3)
	// -----------------------------------------------------------------------
	env.AddFunction("vec3", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 3 {
			return zygo.SexpNull, fmt.Errorf("vec3 requires exactly 3 arguments, got %d", len(args))
		}
		x, err := toFloat64(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vec3: x: %w", err)
		}
		y, err := toFloat64(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vec3: y: %w", err)
		}
		z, err := toFloat64(args[2])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vec3: z: %w", err)
		}
		return &sexpVec3{vec: v3.Vec{X: x, Y: y, Z: z}}, nil
	})

	// -----------------------------------------------------------------------
	// (rect 40 20)
	// -----------------------------------------------------------------------
	env.AddFunction("rect", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("rect requires width and height, got %d arguments", len(args))
		}
		w, err := toFloat64(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("rect: width: %w", err)
		}
		h, err := toFloat64(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("rect: height: %w", err)
		}
		if w <= 0 || h <= 0 {
			return zygo.SexpNull, fmt.Errorf("rect: dimensions %v x %v must be positive", w, h)
		}
		return &sexpProfile{pts: geom.Rect(w, h)}, nil
	})

	// -----------------------------------------------------------------------
	// (circle 10 :segments 32)
	// -----------------------------------------------------------------------
	env.AddFunction("circle", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) != 1 {
			return zygo.SexpNull, fmt.Errorf("circle requires a radius")
		}
		r, err := toFloat64(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("circle: radius: %w", err)
		}
		if r <= 0 {
			return zygo.SexpNull, fmt.Errorf("circle: radius %v must be positive", r)
		}
		segments := geom.DefaultSegments
		if v, ok := pa.kw["segments"]; ok {
			segments, err = toInt(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("circle: segments: %w", err)
			}
		}
		return &sexpProfile{pts: geom.Circle(r, segments)}, nil
	})

	// -----------------------------------------------------------------------
	// (ngon 6 10)
	// -----------------------------------------------------------------------
	env.AddFunction("ngon", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("ngon requires a side count and a radius")
		}
		n, err := toInt(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("ngon: sides: %w", err)
		}
		r, err := toFloat64(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("ngon: radius: %w", err)
		}
		if n < 3 {
			return zygo.SexpNull, fmt.Errorf("ngon: need at least 3 sides, got %d", n)
		}
		return &sexpProfile{pts: geom.Ngon(n, r)}, nil
	})

	// -----------------------------------------------------------------------
	// (star 5 10 4)
	// -----------------------------------------------------------------------
	env.AddFunction("star", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 3 {
			return zygo.SexpNull, fmt.Errorf("star requires a point count and two radii")
		}
		n, err := toInt(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("star: points: %w", err)
		}
		r1, err := toFloat64(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("star: outer radius: %w", err)
		}
		r2, err := toFloat64(args[2])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("star: inner radius: %w", err)
		}
		if n < 2 {
			return zygo.SexpNull, fmt.Errorf("star: need at least 2 points, got %d", n)
		}
		return &sexpProfile{pts: geom.Star(n, r1, r2)}, nil
	})

	// -----------------------------------------------------------------------
	// (polygon x1 y1 x2 y2 ...)
	// -----------------------------------------------------------------------
	env.AddFunction("polygon", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) < 6 || len(args)%2 != 0 {
			return zygo.SexpNull, fmt.Errorf("polygon requires x y coordinate pairs for at least 3 points")
		}
		pts := make(geom.Profile2D, len(args)/2)
		for i := range pts {
			x, err := toFloat64(args[2*i])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("polygon: point %d x: %w", i, err)
			}
			y, err := toFloat64(args[2*i+1])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("polygon: point %d y: %w", i, err)
			}
			pts[i] = v2.Vec{X: x, Y: y}
		}
		return &sexpProfile{pts: pts}, nil
	})

	// -----------------------------------------------------------------------
	// (path (vec3 0 0 0) (vec3 0 0 10) ... :closed true)
	// -----------------------------------------------------------------------
	env.AddFunction("path", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) < 2 {
			return zygo.SexpNull, fmt.Errorf("path requires at least 2 points")
		}
		pts := make([]v3.Vec, len(pa.positional))
		for i, arg := range pa.positional {
			p, err := toVec3(arg)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("path: point %d: %w", i, err)
			}
			pts[i] = p
		}
		closed := false
		if v, ok := pa.kw["closed"]; ok {
			var err error
			closed, err = toBool(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("path: closed: %w", err)
			}
		}
		return &sexpPath{path: geom.Path{Points: pts, Closed: closed}}, nil
	})

	// -----------------------------------------------------------------------
	// (line-path (vec3 0 0 0) (vec3 0 0 10) :points 8)
	// -----------------------------------------------------------------------
	env.AddFunction("line_path", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) != 2 {
			return zygo.SexpNull, fmt.Errorf("line-path requires a start and an end point")
		}
		a, err := toVec3(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("line-path: start: %w", err)
		}
		b, err := toVec3(pa.positional[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("line-path: end: %w", err)
		}
		n := 2
		if v, ok := pa.kw["points"]; ok {
			n, err = toInt(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("line-path: points: %w", err)
			}
		}
		return &sexpPath{path: geom.LinePath(a, b, n)}, nil
	})

	// -----------------------------------------------------------------------
	// (arc-path :radius 20 :angle 270 :segments 64)
	// -----------------------------------------------------------------------
	env.AddFunction("arc_path", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		r := 0.0
		angle := 360.0
		segments := geom.DefaultSegments
		var err error
		if v, ok := pa.kw["radius"]; ok {
			r, err = toFloat64(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("arc-path: radius: %w", err)
			}
		}
		if v, ok := pa.kw["angle"]; ok {
			angle, err = toFloat64(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("arc-path: angle: %w", err)
			}
		}
		if v, ok := pa.kw["segments"]; ok {
			segments, err = toInt(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("arc-path: segments: %w", err)
			}
		}
		if r <= 0 {
			return zygo.SexpNull, fmt.Errorf("arc-path: radius %v must be positive", r)
		}
		return &sexpPath{path: geom.ArcPath(r, angle, segments)}, nil
	})

	// -----------------------------------------------------------------------
	// (helix-path :radius 10 :pitch 5 :turns 3 :segments 128)
	// -----------------------------------------------------------------------
	env.AddFunction("helix_path", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		r, pitch, turns := 0.0, 0.0, 1.0
		segments := 0
		var err error
		if v, ok := pa.kw["radius"]; ok {
			r, err = toFloat64(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("helix-path: radius: %w", err)
			}
		}
		if v, ok := pa.kw["pitch"]; ok {
			pitch, err = toFloat64(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("helix-path: pitch: %w", err)
			}
		}
		if v, ok := pa.kw["turns"]; ok {
			turns, err = toFloat64(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("helix-path: turns: %w", err)
			}
		}
		if v, ok := pa.kw["segments"]; ok {
			segments, err = toInt(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("helix-path: segments: %w", err)
			}
		}
		if r <= 0 || turns <= 0 {
			return zygo.SexpNull, fmt.Errorf("helix-path: radius and turns must be positive")
		}
		if segments < 2 {
			segments = int(turns * float64(geom.DefaultSegments))
		}
		return &sexpPath{path: geom.HelixPath(r, pitch, turns, segments)}, nil
	})

	// -----------------------------------------------------------------------
	// (skin p1 p2 ... :heights (list 0 10 20) :method :distance
	//       :slices 4 :refine 2 :closed false :caps true :style :alt)
	// -----------------------------------------------------------------------
	env.AddFunction("skin", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) < 2 {
			return zygo.SexpNull, fmt.Errorf("skin requires at least 2 profiles")
		}
		sources := make([]geom.ProfileSource, len(pa.positional))
		for i, arg := range pa.positional {
			p, err := toProfile(arg)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("skin: profile %d: %w", i, err)
			}
			sources[i] = p
		}

		opts := skin.Options{}
		var err error
		if v, ok := pa.kw["heights"]; ok {
			opts.Heights, err = toFloatSlice(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("skin: heights: %w", err)
			}
		} else {
			return zygo.SexpNull, fmt.Errorf("skin: heights are required for planar profiles")
		}
		if v, ok := pa.kw["method"]; ok {
			opts.Methods, err = toMatchMethods(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("skin: method: %w", err)
			}
		}
		if v, ok := pa.kw["slices"]; ok {
			opts.Slices, err = toIntSlice(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("skin: slices: %w", err)
			}
		}
		if v, ok := pa.kw["refine"]; ok {
			opts.Refine, err = toIntSlice(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("skin: refine: %w", err)
			}
		}
		if v, ok := pa.kw["closed"]; ok {
			opts.Closed, err = toBool(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("skin: closed: %w", err)
			}
		}
		if v, ok := pa.kw["caps"]; ok {
			opts.Caps, err = toBool(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("skin: caps: %w", err)
			}
		}
		if v, ok := pa.kw["style"]; ok {
			opts.Style, err = toStyle(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("skin: style: %w", err)
			}
		}
		if v, ok := pa.kw["sampling"]; ok {
			sname, err := toKeywordString(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("skin: sampling: %w", err)
			}
			var s geom.Sampling
			switch sname {
			case "length":
				s = geom.SamplingLength
			case "segment":
				s = geom.SamplingSegment
			default:
				return zygo.SexpNull, fmt.Errorf("skin: unknown sampling %q", sname)
			}
			opts.Sampling = &s
		}

		m, err := skin.Skin(sources, opts)
		if err != nil {
			return zygo.SexpNull, err
		}
		return &sexpMesh{mesh: m}, nil
	})

	// -----------------------------------------------------------------------
	// (path-sweep profile path :method :incremental :twist 90 :symmetry 4
	//             :up (vec3 0 0 1) :caps true :style :alt)
	// -----------------------------------------------------------------------
	env.AddFunction("path_sweep", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) != 2 {
			return zygo.SexpNull, fmt.Errorf("path-sweep requires a profile and a path")
		}
		shape, err := toProfile(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("path-sweep: profile: %w", err)
		}
		p, err := toPath(pa.positional[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("path-sweep: path: %w", err)
		}

		opts := sweep.PathSweepOptions{}
		if v, ok := pa.kw["method"]; ok {
			mname, err := toKeywordString(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("path-sweep: method: %w", err)
			}
			opts.Frames.Method, err = sweep.ParseMethod(mname)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("path-sweep: %w", err)
			}
		}
		if v, ok := pa.kw["twist"]; ok {
			opts.Frames.Twist, err = toFloat64(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("path-sweep: twist: %w", err)
			}
		}
		if v, ok := pa.kw["symmetry"]; ok {
			opts.Frames.Symmetry, err = toInt(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("path-sweep: symmetry: %w", err)
			}
		}
		if v, ok := pa.kw["up"]; ok {
			opts.Frames.Up, err = toVec3(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("path-sweep: up: %w", err)
			}
		}
		if v, ok := pa.kw["normals"]; ok {
			items, err := sexpListToSlice(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("path-sweep: normals: %w", err)
			}
			for i, item := range items {
				n, err := toVec3(item)
				if err != nil {
					return zygo.SexpNull, fmt.Errorf("path-sweep: normal %d: %w", i, err)
				}
				opts.Frames.Normals = append(opts.Frames.Normals, n)
			}
		}
		if v, ok := pa.kw["relaxed"]; ok {
			opts.Frames.Relaxed, err = toBool(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("path-sweep: relaxed: %w", err)
			}
		}
		if v, ok := pa.kw["caps"]; ok {
			opts.Caps, err = toBool(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("path-sweep: caps: %w", err)
			}
		}
		if v, ok := pa.kw["style"]; ok {
			opts.Style, err = toStyle(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("path-sweep: style: %w", err)
			}
		}

		m, tf, warnings, err := sweep.PathSweep(shape, p, opts)
		if err != nil {
			return zygo.SexpNull, err
		}
		return &sexpMesh{mesh: m, tf: tf, closed: p.Closed, warnings: warnings}, nil
	})

	// -----------------------------------------------------------------------
	// (linear-sweep profile :height 30 :twist 90 :slices 20
	//               :scale (list 0.5 0.5) :caps true)
	// -----------------------------------------------------------------------
	env.AddFunction("linear_sweep", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) != 1 {
			return zygo.SexpNull, fmt.Errorf("linear-sweep requires a profile")
		}
		shape, err := toProfile(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("linear-sweep: profile: %w", err)
		}

		opts := sweep.LinearOptions{}
		if v, ok := pa.kw["height"]; ok {
			opts.Height, err = toFloat64(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("linear-sweep: height: %w", err)
			}
		}
		if v, ok := pa.kw["twist"]; ok {
			opts.Twist, err = toFloat64(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("linear-sweep: twist: %w", err)
			}
		}
		if v, ok := pa.kw["slices"]; ok {
			opts.Slices, err = toInt(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("linear-sweep: slices: %w", err)
			}
		}
		if v, ok := pa.kw["scale"]; ok {
			fs, err := toFloatSlice(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("linear-sweep: scale: %w", err)
			}
			if len(fs) != 2 {
				return zygo.SexpNull, fmt.Errorf("linear-sweep: scale needs 2 values, got %d", len(fs))
			}
			opts.Scale = &v2.Vec{X: fs[0], Y: fs[1]}
		}
		if v, ok := pa.kw["caps"]; ok {
			opts.Caps, err = toBool(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("linear-sweep: caps: %w", err)
			}
		}
		if v, ok := pa.kw["style"]; ok {
			opts.Style, err = toStyle(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("linear-sweep: style: %w", err)
			}
		}

		m, tf, warnings, err := sweep.LinearSweep(shape, opts)
		if err != nil {
			return zygo.SexpNull, err
		}
		return &sexpMesh{mesh: m, tf: tf, warnings: warnings}, nil
	})

	// -----------------------------------------------------------------------
	// (rotate-sweep profile :radius 20 :angle 270 :segments 64 :caps true)
	// -----------------------------------------------------------------------
	env.AddFunction("rotate_sweep", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) != 1 {
			return zygo.SexpNull, fmt.Errorf("rotate-sweep requires a profile")
		}
		shape, err := toProfile(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("rotate-sweep: profile: %w", err)
		}

		opts := sweep.RotateOptions{}
		if v, ok := pa.kw["radius"]; ok {
			opts.Radius, err = toFloat64(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("rotate-sweep: radius: %w", err)
			}
		}
		if v, ok := pa.kw["angle"]; ok {
			opts.Angle, err = toFloat64(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("rotate-sweep: angle: %w", err)
			}
		}
		if v, ok := pa.kw["segments"]; ok {
			opts.Segments, err = toInt(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("rotate-sweep: segments: %w", err)
			}
		}
		if v, ok := pa.kw["caps"]; ok {
			opts.Caps, err = toBool(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("rotate-sweep: caps: %w", err)
			}
		}
		if v, ok := pa.kw["style"]; ok {
			opts.Style, err = toStyle(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("rotate-sweep: style: %w", err)
			}
		}

		m, tf, warnings, err := sweep.RotateSweep(shape, opts)
		if err != nil {
			return zygo.SexpNull, err
		}
		// A full revolution closes into a torus.
		closed := opts.Angle == 0 || math.Abs(opts.Angle-360) < geom.Epsilon
		return &sexpMesh{mesh: m, tf: tf, closed: closed, warnings: warnings}, nil
	})

	// -----------------------------------------------------------------------
	// (spiral-sweep profile :radius 10 :pitch 8 :turns 4 :segments 128 :caps true)
	// -----------------------------------------------------------------------
	env.AddFunction("spiral_sweep", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) != 1 {
			return zygo.SexpNull, fmt.Errorf("spiral-sweep requires a profile")
		}
		shape, err := toProfile(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("spiral-sweep: profile: %w", err)
		}

		opts := sweep.SpiralOptions{}
		if v, ok := pa.kw["radius"]; ok {
			opts.Radius, err = toFloat64(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("spiral-sweep: radius: %w", err)
			}
		}
		if v, ok := pa.kw["pitch"]; ok {
			opts.Pitch, err = toFloat64(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("spiral-sweep: pitch: %w", err)
			}
		}
		if v, ok := pa.kw["turns"]; ok {
			opts.Turns, err = toFloat64(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("spiral-sweep: turns: %w", err)
			}
		}
		if v, ok := pa.kw["segments"]; ok {
			opts.Segments, err = toInt(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("spiral-sweep: segments: %w", err)
			}
		}
		if v, ok := pa.kw["caps"]; ok {
			opts.Caps, err = toBool(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("spiral-sweep: caps: %w", err)
			}
		}
		if v, ok := pa.kw["style"]; ok {
			opts.Style, err = toStyle(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("spiral-sweep: style: %w", err)
			}
		}

		m, tf, warnings, err := sweep.SpiralSweep(shape, opts)
		if err != nil {
			return zygo.SexpNull, err
		}
		return &sexpMesh{mesh: m, tf: tf, warnings: warnings}, nil
	})

	// -----------------------------------------------------------------------
	// (texture :preset "ribs" :n 8 :seed 42)
	// -----------------------------------------------------------------------
	env.AddFunction("texture", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		preset := ""
		var err error
		if v, ok := pa.kw["preset"]; ok {
			preset, err = toKeywordString(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("texture: preset: %w", err)
			}
		} else if len(pa.positional) == 1 {
			preset, err = toKeywordString(pa.positional[0])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("texture: preset: %w", err)
			}
		} else {
			return zygo.SexpNull, fmt.Errorf("texture requires a preset name")
		}
		n := 0
		if v, ok := pa.kw["n"]; ok {
			n, err = toInt(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("texture: n: %w", err)
			}
		}
		var seed int64
		if v, ok := pa.kw["seed"]; ok {
			s, err := toInt(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("texture: seed: %w", err)
			}
			seed = int64(s)
		}
		tex, err := texture.Preset(preset, n, seed)
		if err != nil {
			return zygo.SexpNull, err
		}
		return &sexpTexture{tex: tex, name: preset}, nil
	})

	// -----------------------------------------------------------------------
	// (displace mesh tex :depth 0.5 :taper true)
	// -----------------------------------------------------------------------
	env.AddFunction("displace", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) != 2 {
			return zygo.SexpNull, fmt.Errorf("displace requires a mesh and a texture")
		}
		sm, err := toMesh(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("displace: mesh: %w", err)
		}
		if sm.tf == nil {
			return zygo.SexpNull, fmt.Errorf("displace: mesh has no sweep frames (only swept meshes can be textured)")
		}
		tex, err := toTexture(pa.positional[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("displace: texture: %w", err)
		}

		opts := texture.Options{Depth: 1, Closed: sm.closed}
		if v, ok := pa.kw["depth"]; ok {
			opts.Depth, err = toFloat64(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("displace: depth: %w", err)
			}
		}
		if v, ok := pa.kw["taper"]; ok {
			opts.Taper, err = toBool(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("displace: taper: %w", err)
			}
		}

		out, err := texture.Displace(sm.mesh, sm.tf, tex, opts)
		if err != nil {
			return zygo.SexpNull, err
		}
		return &sexpMesh{mesh: out, tf: sm.tf, closed: sm.closed, warnings: sm.warnings}, nil
	})

	// -----------------------------------------------------------------------
	// (part "name" mesh)
	// -----------------------------------------------------------------------
	env.AddFunction("part", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("part requires a name and a mesh")
		}
		partName, err := toString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("part: name: %w", err)
		}
		sm, err := toMesh(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("part: mesh: %w", err)
		}
		err = d.AddPart(&design.Part{
			Name:       partName,
			Mesh:       sm.mesh,
			Transforms: sm.tf,
			Warnings:   warningStrings(sm.warnings),
		})
		if err != nil {
			return zygo.SexpNull, err
		}
		return args[1], nil
	})
}
