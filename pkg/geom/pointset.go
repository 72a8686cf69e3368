package geom

import (
	"encoding/json"
	"fmt"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

// DefaultPrecision is the absolute tolerance used to classify point sets
// when the caller does not supply one.
const DefaultPrecision = 1e-7

// PointSet is an ordered sequence of 3D points.
type PointSet []v3.Vec

// FromTriples converts plain coordinate triples into a PointSet.
// Every entry must have exactly three components.
func FromTriples(coords [][]float64) (PointSet, error) {
	ps := make(PointSet, len(coords))
	for i, c := range coords {
		if len(c) != 3 {
			return nil, fmt.Errorf("geom: point %d has %d components, want 3", i, len(c))
		}
		ps[i] = v3.Vec{X: c[0], Y: c[1], Z: c[2]}
	}
	return ps, nil
}

// Triples returns the points as plain [x, y, z] slices.
// The result is never nil so that it serializes as an empty JSON array.
func (ps PointSet) Triples() [][]float64 {
	out := make([][]float64, len(ps))
	for i, p := range ps {
		out[i] = []float64{p.X, p.Y, p.Z}
	}
	return out
}

// Clone returns an independent copy of the point set.
func (ps PointSet) Clone() PointSet {
	if ps == nil {
		return nil
	}
	out := make(PointSet, len(ps))
	copy(out, ps)
	return out
}

// Distinct returns the points with exact duplicates removed, keeping the
// first occurrence of each.
func (ps PointSet) Distinct() PointSet {
	seen := make(map[v3.Vec]struct{}, len(ps))
	out := make(PointSet, 0, len(ps))
	for _, p := range ps {
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}

// MarshalJSON encodes the points as an array of [x, y, z] triples.
func (ps PointSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(ps.Triples())
}

// UnmarshalJSON decodes an array of [x, y, z] triples.
func (ps *PointSet) UnmarshalJSON(data []byte) error {
	var coords [][]float64
	if err := json.Unmarshal(data, &coords); err != nil {
		return err
	}
	out, err := FromTriples(coords)
	if err != nil {
		return err
	}
	*ps = out
	return nil
}
