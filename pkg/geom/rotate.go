package geom

import (
	"math"

	"github.com/deadsy/sdfx/sdf"
)

// Radians converts degrees to radians.
func Radians(deg float64) float64 {
	return deg * math.Pi / 180.0
}

// AxisRotation returns the right-handed rotation matrix about a single axis.
func AxisRotation(a Axis, deg float64) sdf.M44 {
	rad := Radians(deg)
	switch a {
	case AxisY:
		return sdf.RotateY(rad)
	case AxisZ:
		return sdf.RotateZ(rad)
	default:
		return sdf.RotateX(rad)
	}
}

// EulerXYZ returns the rotation for Euler angles in degrees applied about
// the fixed x, then y, then z axes (Rz * Ry * Rx).
func EulerXYZ(x, y, z float64) sdf.M44 {
	return sdf.RotateZ(Radians(z)).Mul(sdf.RotateY(Radians(y))).Mul(sdf.RotateX(Radians(x)))
}

// Transform returns a new point set with m applied to every point.
func (ps PointSet) Transform(m sdf.M44) PointSet {
	out := make(PointSet, len(ps))
	for i, p := range ps {
		out[i] = m.MulPosition(p)
	}
	return out
}
