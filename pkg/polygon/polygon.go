// Package polygon models planar vertex loops in 3D space.
package polygon

import (
	"fmt"

	"github.com/chazu/caliper/pkg/geom"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"gonum.org/v1/gonum/floats/scalar"
)

// coplanarTolerance bounds |(v - v0) . n| for a vertex to count as lying on
// the plane through the first three vertices.
const coplanarTolerance = 1e-8

// Polygon is an ordered, coplanar loop of at least three vertices.
// It is immutable once constructed.
type Polygon struct {
	vertices geom.PointSet
	normal   v3.Vec
}

// New validates the vertex loop and returns a Polygon holding a copy of it.
func New(vertices geom.PointSet) (*Polygon, error) {
	if len(vertices) < 3 {
		return nil, fmt.Errorf("%w: at least three vertices are required to define a polygon", geom.ErrInvalidPolygon)
	}
	if !AreCoplanar(vertices) {
		return nil, fmt.Errorf("%w: the vertices do not lie on the same plane", geom.ErrInvalidPolygon)
	}
	return &Polygon{
		vertices: vertices.Clone(),
		normal:   planeNormal(vertices),
	}, nil
}

// AreCoplanar reports whether every vertex lies on the plane through the
// first three. Fewer than four vertices are always coplanar.
func AreCoplanar(vertices geom.PointSet) bool {
	if len(vertices) < 4 {
		return true
	}
	n := planeNormal(vertices)
	origin := vertices[0]
	for _, v := range vertices[3:] {
		if !scalar.EqualWithinAbs(v.Sub(origin).Dot(n), 0, coplanarTolerance) {
			return false
		}
	}
	return true
}

// planeNormal is the unnormalised normal (v1 - v0) x (v2 - v0).
func planeNormal(vertices geom.PointSet) v3.Vec {
	return vertices[1].Sub(vertices[0]).Cross(vertices[2].Sub(vertices[0]))
}

// IsConvex reports whether the loop turns the same way at every vertex.
// Signs are compared exactly: a straight run (sign 0) only matches another
// straight run.
func (p *Polygon) IsConvex() bool {
	n := len(p.vertices)
	if n < 4 {
		return true
	}
	var first int
	for i := 0; i < n; i++ {
		a, b, c := p.vertices[i], p.vertices[(i+1)%n], p.vertices[(i+2)%n]
		s := sign(b.Sub(a).Cross(c.Sub(b)).Dot(p.normal))
		if i == 0 {
			first = s
			continue
		}
		if s != first {
			return false
		}
	}
	return true
}

func sign(x float64) int {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	}
	return 0
}

// Vertices returns a copy of the vertex loop.
func (p *Polygon) Vertices() geom.PointSet {
	return p.vertices.Clone()
}

// Normal returns the plane normal from the first three vertices.
func (p *Polygon) Normal() v3.Vec {
	return p.normal
}

// Len returns the number of vertices.
func (p *Polygon) Len() int {
	return len(p.vertices)
}
