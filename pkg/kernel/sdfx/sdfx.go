// Package sdfx implements the kernel.Kernel interface on top of the
// github.com/deadsy/sdfx vector and matrix types, with hulls from quickhull
// and box searches from the obb package.
package sdfx

import (
	"fmt"

	"github.com/chazu/caliper/pkg/geom"
	"github.com/chazu/caliper/pkg/hull"
	"github.com/chazu/caliper/pkg/kernel"
	"github.com/chazu/caliper/pkg/obb"
	"github.com/chazu/caliper/pkg/polygon"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Compile-time interface check.
var _ kernel.Kernel = (*SdfxKernel)(nil)

// SdfxKernel implements kernel.Kernel using sdfx vectors.
// It holds no mutable state and is safe for concurrent use.
type SdfxKernel struct {
	opts []obb.Option
}

// New returns a new SdfxKernel. The options are passed to every
// oriented box search.
func New(opts ...obb.Option) *SdfxKernel {
	return &SdfxKernel{opts: opts}
}

// ConvexHull computes and classifies the hull of points.
func (k *SdfxKernel) ConvexHull(points geom.PointSet, precision float64) (*kernel.HullResult, error) {
	h, class, err := hull.Classify(points, precision)
	if err != nil {
		return nil, fmt.Errorf("sdfx: convex hull: %w", err)
	}
	return &kernel.HullResult{
		Vertices:  h.Vertices,
		Triangles: h.Triangles,
		Volume:    h.Volume,
		Class:     class,
	}, nil
}

// OrientedBox searches for the rotation minimising the bounding box volume.
func (k *SdfxKernel) OrientedBox(points geom.PointSet, precision float64) (*obb.Result, error) {
	r, err := obb.Search(points, precision, k.opts...)
	if err != nil {
		return nil, fmt.Errorf("sdfx: oriented box: %w", err)
	}
	return r, nil
}

// IsConvex builds a polygon from vertices and tests its convexity.
func (k *SdfxKernel) IsConvex(vertices geom.PointSet) (bool, error) {
	p, err := polygon.New(vertices)
	if err != nil {
		return false, err
	}
	return p.IsConvex(), nil
}

// Rotate returns vertices rotated by r, in x, y, z order.
func (k *SdfxKernel) Rotate(vertices geom.PointSet, r kernel.Rotation) geom.PointSet {
	m := kernel.NewMesh(vertices)
	m.Rotate(r)
	return m.Vertices
}

// Translate returns vertices moved by offset.
func (k *SdfxKernel) Translate(vertices geom.PointSet, offset v3.Vec) geom.PointSet {
	m := kernel.NewMesh(vertices)
	m.Translate(offset.X, offset.Y, offset.Z)
	return m.Vertices
}
