package engine

import (
	"fmt"
	"strings"

	"github.com/chazu/caliper/pkg/geom"
	"github.com/chazu/caliper/pkg/kernel"
	"github.com/chazu/caliper/pkg/obb"
	"github.com/chazu/caliper/pkg/polygon"
	v3 "github.com/deadsy/sdfx/vec/v3"
	zygo "github.com/glycerine/zygomys/zygo"
)

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// preprocessSource transforms Caliper script source before passing it to
// zygomys. It performs two transformations:
//
//  1. Keyword conversion: :keyword -> "__kw_keyword" (string literal)
//     This avoids the need to register keyword symbols as globals, which
//     would conflict with user-defined variables of the same name.
//
//  2. Kebab-case to underscore: convex-hull -> convex_hull
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

// sexpVec3 wraps a single point.
type sexpVec3 struct {
	vec v3.Vec
}

func (v *sexpVec3) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec3 %g %g %g)", v.vec.X, v.vec.Y, v.vec.Z)
}
func (v *sexpVec3) Type() *zygo.RegisteredType { return nil }

// sexpPoints wraps an ordered point set.
type sexpPoints struct {
	points geom.PointSet
}

func (p *sexpPoints) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(points n=%d)", len(p.points))
}
func (p *sexpPoints) Type() *zygo.RegisteredType { return nil }

// sexpMesh wraps a vertex list produced by mesh, rotate or translate.
type sexpMesh struct {
	mesh *kernel.Mesh
}

func (m *sexpMesh) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(mesh n=%d)", m.mesh.VertexCount())
}
func (m *sexpMesh) Type() *zygo.RegisteredType { return nil }

// sexpHull wraps a classified convex hull.
type sexpHull struct {
	hull *kernel.HullResult
}

func (h *sexpHull) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(hull %s n=%d volume=%g)", h.hull.Class, len(h.hull.Vertices), h.hull.Volume)
}
func (h *sexpHull) Type() *zygo.RegisteredType { return nil }

// sexpBox wraps an oriented bounding box search result.
type sexpBox struct {
	box *obb.Result
}

func (b *sexpBox) SexpString(ps *zygo.PrintState) string {
	a := b.box.Angles
	return fmt.Sprintf("(box angles=[%g %g %g] volume=%g)", a[0], a[1], a[2], b.box.Volume)
}
func (b *sexpBox) Type() *zygo.RegisteredType { return nil }

// sexpPolygon wraps a validated polygon.
type sexpPolygon struct {
	poly *polygon.Polygon
}

func (p *sexpPolygon) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(polygon n=%d)", p.poly.Len())
}
func (p *sexpPolygon) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

// isKW checks if a Sexp is a preprocessed keyword string.
// Returns the keyword name (without prefix) and true if it is.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok || !strings.HasPrefix(str.S, kwPrefix) {
		return "", false
	}
	return str.S[len(kwPrefix):], true
}

// kwArgs holds the result of parsing a mixed positional+keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments.
// A keyword with no following value maps to SexpNull.
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	for i := 0; i < len(args); i++ {
		name, ok := isKW(args[i])
		if !ok {
			result.positional = append(result.positional, args[i])
			continue
		}
		if i+1 < len(args) {
			result.kw[name] = args[i+1]
			i++
		} else {
			result.kw[name] = zygo.SexpNull
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

// toVec extracts a point from a vec3 or a three-number list or array.
func toVec(s zygo.Sexp) (v3.Vec, error) {
	if v, ok := s.(*sexpVec3); ok {
		return v.vec, nil
	}
	items, err := sexpListToSlice(s)
	if err != nil {
		return v3.Vec{}, fmt.Errorf("expected vec3, got %T (%s)", s, s.SexpString(nil))
	}
	if len(items) != 3 {
		return v3.Vec{}, fmt.Errorf("expected 3 coordinates, got %d", len(items))
	}
	var c [3]float64
	for i, item := range items {
		if c[i], err = toFloat64(item); err != nil {
			return v3.Vec{}, err
		}
	}
	return v3.Vec{X: c[0], Y: c[1], Z: c[2]}, nil
}

// toPointSet flattens args into one point set. Each arg may be a vec3, a
// coordinate list, or any geometry value carrying vertices.
func toPointSet(args []zygo.Sexp) (geom.PointSet, error) {
	var ps geom.PointSet
	for i, a := range args {
		switch v := a.(type) {
		case *sexpPoints:
			ps = append(ps, v.points...)
		case *sexpMesh:
			ps = append(ps, v.mesh.Vertices...)
		case *sexpPolygon:
			ps = append(ps, v.poly.Vertices()...)
		case *sexpHull:
			ps = append(ps, v.hull.Vertices...)
		default:
			p, err := toVec(a)
			if err != nil {
				return nil, fmt.Errorf("point %d: %w", i, err)
			}
			ps = append(ps, p)
		}
	}
	return ps, nil
}

// toPolygon accepts a polygon value or anything toPointSet accepts.
func toPolygon(args []zygo.Sexp) (*polygon.Polygon, error) {
	if len(args) == 1 {
		if p, ok := args[0].(*sexpPolygon); ok {
			return p.poly, nil
		}
	}
	ps, err := toPointSet(args)
	if err != nil {
		return nil, err
	}
	return polygon.New(ps)
}

// precisionArg reads :precision, falling back to def.
func precisionArg(pa kwArgs, def float64) (float64, error) {
	v, ok := pa.kw["precision"]
	if !ok {
		return def, nil
	}
	p, err := toFloat64(v)
	if err != nil {
		return 0, fmt.Errorf("precision: %w", err)
	}
	if p < 0 {
		return 0, fmt.Errorf("precision must be >= 0, got %g", p)
	}
	return p, nil
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// registerBuiltins installs all Caliper DSL builtins into a zygomys
// environment. Geometry calls go through k and append to rep.
//
// Source code must be preprocessed with preprocessSource() before evaluation so
// that :keyword tokens are converted to recognizable string literals.
func registerBuiltins(env *zygo.Zlisp, k kernel.Kernel, precision float64, rep *Report) {

	// -----------------------------------------------------------------------
	// (vec3 1 2 3)
	// -----------------------------------------------------------------------
	env.AddFunction("vec3", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 3 {
			return zygo.SexpNull, fmt.Errorf("vec3 requires exactly 3 arguments, got %d", len(args))
		}
		v, err := toVec(&zygo.SexpArray{Val: args})
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vec3: %w", err)
		}
		return &sexpVec3{vec: v}, nil
	})

	// -----------------------------------------------------------------------
	// (points (vec3 0 0 0) [1 0 0] '(0 1 0) ...)
	// -----------------------------------------------------------------------
	env.AddFunction("points", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		ps, err := toPointSet(args)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("points: %w", err)
		}
		return &sexpPoints{points: ps}, nil
	})

	// -----------------------------------------------------------------------
	// (convex-hull pts :precision 1e-6)
	// -----------------------------------------------------------------------
	env.AddFunction("convex_hull", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		p, err := precisionArg(pa, precision)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("convex-hull: %w", err)
		}
		ps, err := toPointSet(pa.positional)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("convex-hull: %w", err)
		}
		h, err := k.ConvexHull(ps, p)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("convex-hull: %w", err)
		}
		rep.add(Record{Kind: RecordHull, Hull: h})
		return &sexpHull{hull: h}, nil
	})

	// -----------------------------------------------------------------------
	// (bounding-box pts :precision 1e-6)
	// -----------------------------------------------------------------------
	env.AddFunction("bounding_box", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		p, err := precisionArg(pa, precision)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("bounding-box: %w", err)
		}
		ps, err := toPointSet(pa.positional)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("bounding-box: %w", err)
		}
		b, err := k.OrientedBox(ps, p)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("bounding-box: %w", err)
		}
		rep.add(Record{Kind: RecordBox, Box: b})
		return &sexpBox{box: b}, nil
	})

	// -----------------------------------------------------------------------
	// (polygon v v v ...)
	// -----------------------------------------------------------------------
	env.AddFunction("polygon", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		p, err := toPolygon(args)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("polygon: %w", err)
		}
		return &sexpPolygon{poly: p}, nil
	})

	// -----------------------------------------------------------------------
	// (is-convex poly)
	// -----------------------------------------------------------------------
	env.AddFunction("is_convex", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		p, err := toPolygon(args)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("is-convex: %w", err)
		}
		convex := p.IsConvex()
		rep.add(Record{Kind: RecordConvexity, Convex: &convex})
		return &zygo.SexpBool{Val: convex}, nil
	})

	// -----------------------------------------------------------------------
	// (mesh v v ...)
	// -----------------------------------------------------------------------
	env.AddFunction("mesh", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		ps, err := toPointSet(args)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("mesh: %w", err)
		}
		return &sexpMesh{mesh: kernel.NewMesh(ps)}, nil
	})

	// -----------------------------------------------------------------------
	// (rotate m :x 90 :z 45)
	// -----------------------------------------------------------------------
	env.AddFunction("rotate", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) < 1 {
			return zygo.SexpNull, fmt.Errorf("rotate requires a mesh as first argument")
		}
		ps, err := toPointSet(pa.positional)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("rotate: %w", err)
		}
		r := kernel.Rotation{}
		for _, a := range geom.Axes {
			v, ok := pa.kw[a.String()]
			if !ok {
				continue
			}
			deg, err := toFloat64(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("rotate: %s: %w", a, err)
			}
			r[a] = deg
		}
		out := k.Rotate(ps, r)
		rep.add(Record{Kind: RecordRotate, Vertices: out})
		return &sexpMesh{mesh: &kernel.Mesh{Vertices: out}}, nil
	})

	// -----------------------------------------------------------------------
	// (translate m (vec3 1 2 3))
	// -----------------------------------------------------------------------
	env.AddFunction("translate", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("translate requires a mesh and an offset, got %d arguments", len(args))
		}
		ps, err := toPointSet(args[:1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("translate: %w", err)
		}
		offset, err := toVec(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("translate: offset: %w", err)
		}
		out := k.Translate(ps, offset)
		rep.add(Record{Kind: RecordTranslate, Vertices: out})
		return &sexpMesh{mesh: &kernel.Mesh{Vertices: out}}, nil
	})

	// -----------------------------------------------------------------------
	// (volume h) for hulls and boxes
	// -----------------------------------------------------------------------
	env.AddFunction("volume", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("volume requires exactly 1 argument, got %d", len(args))
		}
		switch v := args[0].(type) {
		case *sexpHull:
			return &zygo.SexpFloat{Val: v.hull.Volume}, nil
		case *sexpBox:
			return &zygo.SexpFloat{Val: v.box.Volume}, nil
		}
		return zygo.SexpNull, fmt.Errorf("volume: expected hull or box, got %T (%s)", args[0], args[0].SexpString(nil))
	})

	// -----------------------------------------------------------------------
	// (vertex-count x)
	// -----------------------------------------------------------------------
	env.AddFunction("vertex_count", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		ps, err := toPointSet(args)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vertex-count: %w", err)
		}
		return &zygo.SexpInt{Val: int64(len(ps))}, nil
	})
}
