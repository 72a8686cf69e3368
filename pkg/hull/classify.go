package hull

import (
	"fmt"
	"math"

	"github.com/chazu/caliper/pkg/geom"
	"gonum.org/v1/gonum/stat"
)

// Classify computes the hull of points and derives its dimensionality class.
//
// The set is coplanar when the hull volume is within precision of zero. A
// coplanar set is collinear when the population variance of the hull
// vertices' projection lengths onto the line through the first two hull
// vertices is below precision. Sets with fewer than three distinct points,
// and sets lying exactly on one line, are collinear.
func Classify(points geom.PointSet, precision float64) (*Hull, geom.Class, error) {
	if math.IsNaN(precision) || precision < 0 {
		return nil, geom.Volumetric, fmt.Errorf("hull: precision %v must be non-negative: %w", precision, geom.ErrDegenerateInput)
	}

	h, err := Compute(points)
	if err != nil {
		return nil, geom.Volumetric, err
	}

	if len(h.Vertices) < 3 {
		return h, geom.Collinear, nil
	}
	if math.Abs(h.Volume) > precision {
		return h, geom.Volumetric, nil
	}
	if isCollinear(h.Vertices, precision) {
		return h, geom.Collinear, nil
	}
	return h, geom.Coplanar, nil
}

// isCollinear projects every vertex onto the line through vertices[0] and
// vertices[1], dividing by the line length rather than its square.
func isCollinear(vertices geom.PointSet, precision float64) bool {
	origin := vertices[0]
	line := vertices[1].Sub(origin)
	length := line.Length()
	if length == 0 {
		return true
	}

	projections := make([]float64, len(vertices))
	for i, p := range vertices {
		projections[i] = p.Sub(origin).Dot(line) / length
	}
	return stat.PopVariance(projections, nil) < precision
}
