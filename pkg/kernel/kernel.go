// Package kernel defines the abstract geometry kernel interface.
// Implementations provide hull analysis, oriented bounding boxes, polygon
// tests and rigid mesh transforms behind this interface, so callers such as
// the HTTP API and the script engine never depend on a backend directly.
package kernel

import (
	"github.com/chazu/caliper/pkg/geom"
	"github.com/chazu/caliper/pkg/obb"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Rotation maps axes to angles in degrees. Axes absent from the map are not
// rotated. Rotations are always applied in x, y, z order.
type Rotation map[geom.Axis]float64

// HullResult is a convex hull together with its dimensionality class.
type HullResult struct {
	Vertices  geom.PointSet `json:"vertices"`
	Triangles [][3]int      `json:"triangles,omitempty"`
	Volume    float64       `json:"volume"`
	Class     geom.Class    `json:"class"`
}

// Kernel is the abstract geometry kernel interface.
type Kernel interface {
	// Point set analysis
	ConvexHull(points geom.PointSet, precision float64) (*HullResult, error)
	OrientedBox(points geom.PointSet, precision float64) (*obb.Result, error)

	// Polygons
	IsConvex(vertices geom.PointSet) (bool, error)

	// Transforms. Inputs are never modified.
	Rotate(vertices geom.PointSet, r Rotation) geom.PointSet
	Translate(vertices geom.PointSet, offset v3.Vec) geom.PointSet
}
