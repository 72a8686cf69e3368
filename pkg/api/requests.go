package api

import (
	"github.com/chazu/caliper/pkg/geom"
	"github.com/chazu/caliper/pkg/kernel"
	"github.com/chazu/caliper/pkg/obb"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// PointsRequest is the body of the convex-hull and bounding-box routes.
type PointsRequest struct {
	Points    [][]float64 `json:"points" binding:"required,min=1,dive,len=3"`
	Precision *float64    `json:"precision" binding:"omitempty,gte=0"`
}

// HullResponse lists the hull vertices in the order the hull algorithm
// produced them.
type HullResponse struct {
	Vertices [][]float64 `json:"vertices"`
	Volume   float64     `json:"volume"`
	Class    geom.Class  `json:"class"`
}

func newHullResponse(r *kernel.HullResult) HullResponse {
	return HullResponse{Vertices: r.Vertices.Triples(), Volume: r.Volume, Class: r.Class}
}

// BoxResponse is the oriented bounding box search result.
type BoxResponse struct {
	Angles    [3]float64 `json:"optimal_rotation_angles_degrees"`
	Volume    float64    `json:"minimal_volume"`
	Precision float64    `json:"precision_used"`
}

func newBoxResponse(r *obb.Result) BoxResponse {
	return BoxResponse{Angles: r.Angles, Volume: r.Volume, Precision: r.Precision}
}

// Vertex is a point written as an object.
type Vertex struct {
	X *float64 `json:"x" binding:"required"`
	Y *float64 `json:"y" binding:"required"`
	Z *float64 `json:"z" binding:"required"`
}

func (v Vertex) vec() v3.Vec {
	return v3.Vec{X: *v.X, Y: *v.Y, Z: *v.Z}
}

// PolygonRequest carries an ordered vertex loop. The vertex count is
// checked by polygon construction so it reports as a geometry error.
type PolygonRequest struct {
	Vertices []Vertex `json:"vertices" binding:"required,dive"`
}

func (r PolygonRequest) points() geom.PointSet {
	ps := make(geom.PointSet, len(r.Vertices))
	for i, v := range r.Vertices {
		ps[i] = v.vec()
	}
	return ps
}

// ConvexityResponse is the polygon convexity result.
type ConvexityResponse struct {
	IsConvex bool `json:"is_convex"`
}

// RotationRequest rotates vertices by whole degrees about any of x, y, z.
type RotationRequest struct {
	Vertices [][]float64    `json:"vertices" binding:"required,dive,len=3"`
	Rotation map[string]int `json:"rotation" binding:"required,dive,keys,oneof=x y z,endkeys"`
}

func (r RotationRequest) rotation() (kernel.Rotation, error) {
	rot := make(kernel.Rotation, len(r.Rotation))
	for name, deg := range r.Rotation {
		a, err := geom.ParseAxis(name)
		if err != nil {
			return nil, err
		}
		rot[a] = float64(deg)
	}
	return rot, nil
}

// Offset is a translation with every component required.
type Offset struct {
	X *float64 `json:"x" binding:"required"`
	Y *float64 `json:"y" binding:"required"`
	Z *float64 `json:"z" binding:"required"`
}

// TranslationRequest moves vertices by an offset.
type TranslationRequest struct {
	Vertices    [][]float64 `json:"vertices" binding:"required,dive,len=3"`
	Translation *Offset     `json:"translation" binding:"required"`
}

// MeshResponse holds transformed vertices in input order.
type MeshResponse struct {
	Vertices [][]float64 `json:"vertices"`
}

// ScriptRequest is DSL source to evaluate.
type ScriptRequest struct {
	Source string `json:"source" binding:"required"`
}
