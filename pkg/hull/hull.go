// Package hull computes convex hulls of 3D point sets and classifies the
// sets as volumetric, coplanar or collinear from the hull.
package hull

import (
	"fmt"
	"math"

	"github.com/chazu/caliper/pkg/geom"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/golang/geo/r3"
	quickhull "github.com/markus-wa/quickhull-go/v2"
)

// quickhullEpsilon is the relative tolerance handed to the hull library.
const quickhullEpsilon = 1e-10

// Hull is a read-only view of a point set's convex hull.
type Hull struct {
	// Vertices are the input points on the hull, in the order the hull
	// algorithm produced them.
	Vertices geom.PointSet
	// Triangles are the hull faces as counter-clockwise index triples into
	// Vertices. Empty when the hull is degenerate.
	Triangles [][3]int
	// Volume is the enclosed volume; zero for degenerate hulls.
	Volume float64
}

// IsDegenerate reports whether the hull has no faces.
func (h *Hull) IsDegenerate() bool {
	return len(h.Triangles) == 0
}

// Compute returns the convex hull of points. Exact duplicates are ignored.
// Points on a single line reduce to the two extreme points, in input order.
// Otherwise fewer than four distinct points cannot enclose a volume; the hull
// is then the distinct points themselves with zero volume.
func Compute(points geom.PointSet) (*Hull, error) {
	if len(points) == 0 {
		return nil, fmt.Errorf("hull: no points supplied: %w", geom.ErrDegenerateInput)
	}

	distinct := points.Distinct()
	if lo, hi, ok := lineEnds(distinct); ok {
		return degenerate(geom.PointSet{distinct[lo], distinct[hi]}), nil
	}
	if len(distinct) < 4 {
		return degenerate(distinct), nil
	}

	h, ok := quickHull(distinct)
	if !ok {
		return degenerate(distinct), nil
	}
	return h, nil
}

// degenerate builds a face-less hull over the given points.
func degenerate(points geom.PointSet) *Hull {
	return &Hull{Vertices: points.Clone(), Volume: 0}
}

// lineEnds reports whether points lie on one line, within quickhullEpsilon
// relative to their spread, and returns the indexes of the two extremes with
// lo < hi. Sets of fewer than three points are left alone.
func lineEnds(points geom.PointSet) (lo, hi int, ok bool) {
	if len(points) < 3 {
		return 0, 0, false
	}
	origin := points[0]
	far, span := 0, 0.0
	for i, p := range points {
		if d := p.Sub(origin).Length(); d > span {
			far, span = i, d
		}
	}
	if span == 0 {
		return 0, 0, false
	}

	dir := points[far].Sub(origin).Normalize()
	tol := quickhullEpsilon * span
	minT, maxT := 0.0, 0.0
	for i, p := range points {
		off := p.Sub(origin)
		if off.Cross(dir).Length() > tol {
			return 0, 0, false
		}
		t := off.Dot(dir)
		if t < minT {
			minT, lo = t, i
		}
		if t > maxT {
			maxT, hi = t, i
		}
	}
	if lo > hi {
		lo, hi = hi, lo
	}
	return lo, hi, true
}

// quickHull runs the hull library. The library panics on some degenerate
// configurations; ok is false in that case.
func quickHull(points geom.PointSet) (h *Hull, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			h, ok = nil, false
		}
	}()

	cloud := make([]r3.Vector, len(points))
	for i, p := range points {
		cloud[i] = r3.Vector{X: p.X, Y: p.Y, Z: p.Z}
	}

	ch := new(quickhull.QuickHull).ConvexHull(cloud, true, false, quickhullEpsilon)
	if len(ch.Vertices) == 0 || len(ch.Indices) < 3 {
		return nil, false
	}

	inputs := make(map[v3.Vec]struct{}, len(points))
	for _, p := range points {
		inputs[p] = struct{}{}
	}

	h = &Hull{
		Vertices:  make(geom.PointSet, len(ch.Vertices)),
		Triangles: make([][3]int, 0, len(ch.Indices)/3),
	}
	for i, v := range ch.Vertices {
		p := v3.Vec{X: v.X, Y: v.Y, Z: v.Z}
		// Hull vertices must be input points; anything else is a helper
		// point the library added for a flat cloud.
		if _, ok := inputs[p]; !ok {
			return nil, false
		}
		h.Vertices[i] = p
	}
	for i := 0; i+2 < len(ch.Indices); i += 3 {
		t := [3]int{ch.Indices[i], ch.Indices[i+1], ch.Indices[i+2]}
		for _, idx := range t {
			if idx < 0 || idx >= len(h.Vertices) {
				return nil, false
			}
		}
		h.Triangles = append(h.Triangles, t)
	}
	h.Volume = enclosedVolume(h.Vertices, h.Triangles)
	return h, true
}

// enclosedVolume sums the signed volumes of the tetrahedra formed by the
// origin and each face.
func enclosedVolume(vertices geom.PointSet, triangles [][3]int) float64 {
	var sum float64
	for _, t := range triangles {
		a, b, c := vertices[t[0]], vertices[t[1]], vertices[t[2]]
		sum += a.Dot(b.Cross(c))
	}
	return math.Abs(sum) / 6.0
}
