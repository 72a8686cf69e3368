package engine

import (
	"github.com/chazu/caliper/pkg/geom"
	"github.com/chazu/caliper/pkg/kernel"
	"github.com/chazu/caliper/pkg/obb"
)

// RecordKind names the builtin that produced a Record.
type RecordKind string

const (
	RecordHull      RecordKind = "convex-hull"
	RecordBox       RecordKind = "bounding-box"
	RecordConvexity RecordKind = "is-convex"
	RecordRotate    RecordKind = "rotate"
	RecordTranslate RecordKind = "translate"
)

// Record is the outcome of one geometry call. Exactly one of the payload
// fields is set, depending on Kind.
type Record struct {
	Kind     RecordKind         `json:"kind"`
	Hull     *kernel.HullResult `json:"hull,omitempty"`
	Box      *obb.Result        `json:"box,omitempty"`
	Convex   *bool              `json:"convex,omitempty"`
	Vertices geom.PointSet      `json:"vertices,omitempty"`
}

// Report collects the records of one evaluation in call order.
type Report struct {
	Records []Record `json:"records"`
	Result  string   `json:"result,omitempty"` // printed value of the last form
}

func newReport() *Report {
	return &Report{Records: []Record{}}
}

func (r *Report) add(rec Record) {
	r.Records = append(r.Records, rec)
}

// Count returns the number of records of the given kind.
func (r *Report) Count(kind RecordKind) int {
	n := 0
	for _, rec := range r.Records {
		if rec.Kind == kind {
			n++
		}
	}
	return n
}
