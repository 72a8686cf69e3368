// Package bbox measures axis-aligned bounding boxes of point sets under each
// dimensionality class.
package bbox

import (
	"github.com/chazu/caliper/pkg/geom"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Bounds returns the axis-aligned bounding box of points.
// An empty set yields the zero box.
func Bounds(points geom.PointSet) sdf.Box3 {
	if len(points) == 0 {
		return sdf.Box3{}
	}
	set := v3.VecSet(points)
	return sdf.Box3{Min: set.Min(), Max: set.Max()}
}

// Extents returns max - min per axis.
func Extents(points geom.PointSet) v3.Vec {
	return Bounds(points).Size()
}

// Volume measures the bounding box of points for the given class:
//   - Collinear: the largest single-axis extent (the box is a segment).
//   - Coplanar: the product of the x and y extents only. The plane's real
//     orientation is not consulted.
//   - Volumetric: the product of all three extents.
func Volume(points geom.PointSet, class geom.Class) float64 {
	if len(points) == 0 {
		return 0
	}
	e := Extents(points)
	switch class {
	case geom.Collinear:
		return max(e.X, e.Y, e.Z)
	case geom.Coplanar:
		return e.X * e.Y
	default:
		return e.X * e.Y * e.Z
	}
}
