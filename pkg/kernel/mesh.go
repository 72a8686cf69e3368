package kernel

import (
	"github.com/chazu/caliper/pkg/geom"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Mesh is an ordered vertex list that transforms in place.
// Vertex order and count never change.
type Mesh struct {
	Vertices geom.PointSet `json:"vertices"`
}

// NewMesh returns a mesh holding a copy of vertices.
func NewMesh(vertices geom.PointSet) *Mesh {
	return &Mesh{Vertices: vertices.Clone()}
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices)
}

// IsEmpty returns true if the mesh has no geometry.
func (m *Mesh) IsEmpty() bool {
	return len(m.Vertices) == 0
}

// RotateX rotates every vertex about the x axis by deg degrees.
func (m *Mesh) RotateX(deg float64) { m.rotate(geom.AxisX, deg) }

// RotateY rotates every vertex about the y axis by deg degrees.
func (m *Mesh) RotateY(deg float64) { m.rotate(geom.AxisY, deg) }

// RotateZ rotates every vertex about the z axis by deg degrees.
func (m *Mesh) RotateZ(deg float64) { m.rotate(geom.AxisZ, deg) }

// Rotate applies each axis present in r, in x, y, z order.
func (m *Mesh) Rotate(r Rotation) {
	for _, a := range geom.Axes {
		if deg, ok := r[a]; ok {
			m.rotate(a, deg)
		}
	}
}

// rotate post-multiplies each vertex, as a row vector, by the right-handed
// axis matrix. v*M equals the column-vector rotation M^T*v, which is the
// rotation by -deg.
func (m *Mesh) rotate(a geom.Axis, deg float64) {
	r := geom.AxisRotation(a, -deg)
	for i, v := range m.Vertices {
		m.Vertices[i] = r.MulPosition(v)
	}
}

// Translate moves every vertex by (dx, dy, dz).
func (m *Mesh) Translate(dx, dy, dz float64) {
	d := v3.Vec{X: dx, Y: dy, Z: dz}
	for i, v := range m.Vertices {
		m.Vertices[i] = v.Add(d)
	}
}
