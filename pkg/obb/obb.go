// Package obb searches for the rotation that minimizes the axis-aligned
// bounding-box volume of a convex hull, yielding an oriented bounding box.
//
// The search is a local, derivative-free minimization over three Euler
// angles in degrees starting from zero rotation. It does not guarantee the
// global minimum; extra starting points can be supplied with WithStarts.
package obb

import (
	"errors"
	"fmt"

	"github.com/chazu/caliper/pkg/bbox"
	"github.com/chazu/caliper/pkg/geom"
	"github.com/chazu/caliper/pkg/hull"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/optimize"
)

// Default search limits.
const (
	DefaultMaxIterations  = 200
	DefaultMaxEvaluations = 2000

	// simplexSize is the initial Nelder-Mead simplex edge, in degrees.
	simplexSize = 10.0
)

// Result is the outcome of an orientation search.
type Result struct {
	Angles      [3]float64 `json:"angles"` // degrees about x, y, z
	Volume      float64    `json:"volume"`
	Precision   float64    `json:"precision"`
	Class       geom.Class `json:"class"`
	Evaluations int        `json:"evaluations"`
}

type options struct {
	maxIterations  int
	maxEvaluations int
	starts         [][3]float64
}

// Option configures a search.
type Option func(*options)

// WithMaxIterations caps the minimizer's major iterations per start.
func WithMaxIterations(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxIterations = n
		}
	}
}

// WithMaxEvaluations caps objective evaluations per start.
func WithMaxEvaluations(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxEvaluations = n
		}
	}
}

// WithStarts adds starting angles (degrees) searched after the zero start.
func WithStarts(starts ...[3]float64) Option {
	return func(o *options) {
		o.starts = append(o.starts, starts...)
	}
}

func newOptions(opts []Option) options {
	o := options{
		maxIterations:  DefaultMaxIterations,
		maxEvaluations: DefaultMaxEvaluations,
		starts:         [][3]float64{{0, 0, 0}},
	}
	for _, fn := range opts {
		fn(&o)
	}
	return o
}

// Objective returns the function minimized by Optimize.
//
// For coplanar and collinear hulls the angles are ignored and the
// unrotated hull vertices are measured with the original class. Otherwise
// the vertices are rotated by the Euler angles and measured as volumetric.
func Objective(h *hull.Hull, class geom.Class) func(angles []float64) float64 {
	if class.IsCoplanar() {
		v := bbox.Volume(h.Vertices, class)
		return func([]float64) float64 { return v }
	}
	return func(angles []float64) float64 {
		m := geom.EulerXYZ(angles[0], angles[1], angles[2])
		return bbox.Volume(h.Vertices.Transform(m), geom.Volumetric)
	}
}

// Optimize searches for the rotation of h minimizing bounding-box volume.
// The returned Precision is zero; Search fills it in.
func Optimize(h *hull.Hull, class geom.Class, opts ...Option) (*Result, error) {
	if h == nil || len(h.Vertices) == 0 {
		return nil, fmt.Errorf("obb: empty hull: %w", geom.ErrDegenerateInput)
	}

	o := newOptions(opts)
	f := Objective(h, class)

	// The objective is constant for degenerate hulls, so the minimizer
	// would stop at its starting point.
	if class.IsCoplanar() {
		return &Result{Volume: f([]float64{0, 0, 0}), Class: class, Evaluations: 1}, nil
	}

	results := make([]*Result, len(o.starts))
	var g errgroup.Group
	for i, start := range o.starts {
		g.Go(func() error {
			r, err := minimize(f, start, o)
			if err != nil {
				return err
			}
			r.Class = class
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	best, total := results[0], 0
	for _, r := range results {
		total += r.Evaluations
		if r.Volume < best.Volume {
			best = r
		}
	}
	best.Evaluations = total
	return best, nil
}

// minimize runs one Nelder-Mead search from start.
func minimize(f func([]float64) float64, start [3]float64, o options) (*Result, error) {
	problem := optimize.Problem{Func: f}
	settings := &optimize.Settings{
		MajorIterations: o.maxIterations,
		FuncEvaluations: o.maxEvaluations,
		Converger: &optimize.FunctionConverge{
			Absolute:   1e-12,
			Relative:   1e-12,
			Iterations: 50,
		},
	}

	res, err := optimize.Minimize(problem, start[:], settings, &optimize.NelderMead{SimplexSize: simplexSize})
	if res == nil {
		return nil, fmt.Errorf("obb: minimizer returned no result: %w", errors.Join(geom.ErrInternal, err))
	}
	if err != nil && !hitLimit(res.Status) {
		return nil, fmt.Errorf("obb: minimizer stopped with status %s: %w", res.Status, errors.Join(geom.ErrInternal, err))
	}

	// Nelder-Mead may report a point no better than the start.
	x := res.X
	v := res.F
	if v0 := f(start[:]); v0 <= v {
		x, v = start[:], v0
	}
	return &Result{
		Angles:      [3]float64{x[0], x[1], x[2]},
		Volume:      v,
		Evaluations: res.Stats.FuncEvaluations + 1,
	}, nil
}

// hitLimit reports whether the minimizer stopped on one of its caps. The
// best point found so far is kept in that case.
func hitLimit(s optimize.Status) bool {
	return s == optimize.IterationLimit || s == optimize.FunctionEvaluationLimit
}

// Search classifies points, then optimizes the orientation of their hull.
func Search(points geom.PointSet, precision float64, opts ...Option) (*Result, error) {
	h, class, err := hull.Classify(points, precision)
	if err != nil {
		return nil, err
	}
	r, err := Optimize(h, class, opts...)
	if err != nil {
		return nil, err
	}
	r.Precision = precision
	return r, nil
}
