package engine

import (
	"math"
	"strings"
	"testing"

	"github.com/chazu/caliper/pkg/geom"
	"github.com/chazu/caliper/pkg/kernel/sdfx"
	zygo "github.com/glycerine/zygomys/zygo"
)

// ---------------------------------------------------------------------------
// Preprocessing tests
// ---------------------------------------------------------------------------

func TestPreprocessKeywords(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		expect string
	}{
		{
			name:   "simple keyword",
			input:  `(convex-hull pts :precision 0.001)`,
			expect: `(convex_hull pts "__kw_precision" 0.001)`,
		},
		{
			name:   "multiple keywords",
			input:  `(rotate m :x 90 :z 45)`,
			expect: `(rotate m "__kw_x" 90 "__kw_z" 45)`,
		},
		{
			name:   "keyword in string preserved",
			input:  `"thing with :keyword inside"`,
			expect: `"thing with :keyword inside"`,
		},
		{
			name:   "assignment operator preserved",
			input:  `(def x := 10)`,
			expect: `(def x := 10)`,
		},
		{
			name:   "kebab-case identifier",
			input:  `(is-convex (polygon a b c))`,
			expect: `(is_convex (polygon a b c))`,
		},
		{
			name:   "minus operator preserved",
			input:  `(- 10 5)`,
			expect: `(- 10 5)`,
		},
		{
			name:   "negative literal preserved",
			input:  `(vec3 -1 0 -2.5)`,
			expect: `(vec3 -1 0 -2.5)`,
		},
		{
			name:   "comment converted to // style",
			input:  `;; comment with :keyword`,
			expect: `// comment with :keyword`,
		},
		{
			name:   "single semicolon comment",
			input:  `; simple comment`,
			expect: `// simple comment`,
		},
		{
			name:   "hyphen in keyword preserved",
			input:  `:max-iter`,
			expect: `"__kw_max-iter"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := preprocessSource(tt.input)
			if got != tt.expect {
				t.Errorf("preprocessSource(%q) = %q, want %q", tt.input, got, tt.expect)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// Argument helpers
// ---------------------------------------------------------------------------

func TestParseArgs(t *testing.T) {
	args := []zygo.Sexp{
		&zygo.SexpInt{Val: 1},
		&zygo.SexpStr{S: kwPrefix + "x"},
		&zygo.SexpInt{Val: 90},
		&zygo.SexpStr{S: "plain"},
		&zygo.SexpStr{S: kwPrefix + "flag"},
	}
	pa := parseArgs(args)
	if len(pa.positional) != 2 {
		t.Fatalf("positional = %d, want 2", len(pa.positional))
	}
	if v, ok := pa.kw["x"].(*zygo.SexpInt); !ok || v.Val != 90 {
		t.Errorf("kw[x] = %v, want 90", pa.kw["x"])
	}
	if pa.kw["flag"] != zygo.SexpNull {
		t.Errorf("kw[flag] = %v, want SexpNull", pa.kw["flag"])
	}
}

func TestToVec(t *testing.T) {
	arr := &zygo.SexpArray{Val: []zygo.Sexp{&zygo.SexpInt{Val: 1}, &zygo.SexpFloat{Val: 2.5}, &zygo.SexpInt{Val: -3}}}
	v, err := toVec(arr)
	if err != nil {
		t.Fatalf("toVec() error = %v", err)
	}
	if v.X != 1 || v.Y != 2.5 || v.Z != -3 {
		t.Errorf("toVec() = %v", v)
	}

	if _, err := toVec(&zygo.SexpArray{Val: []zygo.Sexp{&zygo.SexpInt{Val: 1}}}); err == nil {
		t.Error("toVec() accepted a 1-element array")
	}
	if _, err := toVec(&zygo.SexpStr{S: "nope"}); err == nil {
		t.Error("toVec() accepted a string")
	}
}

// ---------------------------------------------------------------------------
// Builtin evaluation tests
// ---------------------------------------------------------------------------

func mustEval(t *testing.T, source string) *Report {
	t.Helper()
	rep, evalErrs, err := NewEngine(sdfx.New()).Evaluate(source)
	if err != nil {
		t.Fatalf("fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("eval errors: %v", evalErrs)
	}
	if rep == nil {
		t.Fatal("expected non-nil report")
	}
	return rep
}

const cubeSource = `
(def cube (points [0 0 0] [2 0 0] [0 2 0] [2 2 0]
                  [0 0 2] [2 0 2] [0 2 2] [2 2 2]
                  (vec3 1 1 1)))
`

func TestConvexHullBuiltin(t *testing.T) {
	rep := mustEval(t, cubeSource+`(convex-hull cube)`)
	if len(rep.Records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(rep.Records))
	}
	rec := rep.Records[0]
	if rec.Kind != RecordHull || rec.Hull == nil {
		t.Fatalf("record = %+v, want hull record", rec)
	}
	if len(rec.Hull.Vertices) != 8 {
		t.Errorf("hull vertices = %d, want 8", len(rec.Hull.Vertices))
	}
	if math.Abs(rec.Hull.Volume-8) > 1e-9 {
		t.Errorf("hull volume = %f, want 8", rec.Hull.Volume)
	}
	if rec.Hull.Class != geom.Volumetric {
		t.Errorf("class = %s, want volumetric", rec.Hull.Class)
	}
}

func TestBoundingBoxBuiltin(t *testing.T) {
	rep := mustEval(t, cubeSource+`(bounding-box cube :precision 0.001)`)
	if rep.Count(RecordBox) != 1 {
		t.Fatalf("expected 1 box record, got %d", rep.Count(RecordBox))
	}
	b := rep.Records[0].Box
	if math.Abs(b.Volume-8) > 1e-6 {
		t.Errorf("box volume = %f, want 8", b.Volume)
	}
	if b.Precision != 0.001 {
		t.Errorf("precision = %v, want 0.001", b.Precision)
	}
}

func TestBoundingBoxCollinear(t *testing.T) {
	rep := mustEval(t, `(bounding-box (points [0 0 0] [0 0 5]))`)
	b := rep.Records[0].Box
	if b.Volume != 5 {
		t.Errorf("volume = %v, want 5", b.Volume)
	}
	if b.Angles != [3]float64{0, 0, 0} {
		t.Errorf("angles = %v, want zero", b.Angles)
	}
}

func TestVolumeBuiltin(t *testing.T) {
	rep := mustEval(t, cubeSource+`(volume (convex-hull cube))`)
	if rep.Result != "8" && !strings.HasPrefix(rep.Result, "8.") {
		t.Errorf("result = %q, want 8", rep.Result)
	}
}

func TestIsConvexBuiltin(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   bool
	}{
		{"square", `(is-convex (polygon [0 0 0] [1 0 0] [1 1 0] [0 1 0]))`, true},
		{"dart", `(is-convex (polygon [0 0 0] [1 0 0] [0.25 0.25 0] [0 1 0]))`, false},
		{"bare vertices", `(is-convex [0 0 0] [4 0 0] [0 3 0])`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rep := mustEval(t, tt.source)
			if rep.Count(RecordConvexity) != 1 {
				t.Fatalf("expected 1 convexity record, got %d", rep.Count(RecordConvexity))
			}
			if got := *rep.Records[0].Convex; got != tt.want {
				t.Errorf("convex = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPolygonErrors(t *testing.T) {
	tests := []struct {
		name    string
		source  string
		wantMsg string
	}{
		{"two vertices", `(polygon [0 0 0] [1 0 0])`, "at least three vertices"},
		{"not coplanar", `(polygon [0 0 0] [1 0 0] [1 1 0] [0 1 1])`, "same plane"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rep, evalErrs, err := NewEngine(sdfx.New()).Evaluate(tt.source)
			if err != nil {
				t.Fatalf("expected non-fatal eval error, got fatal: %v", err)
			}
			if rep != nil {
				t.Fatal("expected nil report")
			}
			if len(evalErrs) == 0 {
				t.Fatal("expected an eval error")
			}
			if !strings.Contains(evalErrs[0].Message, tt.wantMsg) {
				t.Errorf("message = %q, want containing %q", evalErrs[0].Message, tt.wantMsg)
			}
		})
	}
}

func TestRotateBuiltin(t *testing.T) {
	rep := mustEval(t, `(rotate (mesh [100 0 0]) :z 90)`)
	if rep.Count(RecordRotate) != 1 {
		t.Fatalf("expected 1 rotate record, got %d", rep.Count(RecordRotate))
	}
	v := rep.Records[0].Vertices[0]
	// Row-vector convention: +x turns to -y.
	if math.Abs(v.X) > 1e-9 || math.Abs(v.Y+100) > 1e-9 || math.Abs(v.Z) > 1e-9 {
		t.Errorf("rotated = %v, want (0,-100,0)", v)
	}
}

func TestTranslateRoundTripBuiltin(t *testing.T) {
	rep := mustEval(t, `
(def m (mesh [0 1 2] [3 4 5] [6 7 8]))
(def moved (translate m (vec3 1.5 -2 10)))
(translate moved [-1.5 2 -10])
`)
	if rep.Count(RecordTranslate) != 2 {
		t.Fatalf("expected 2 translate records, got %d", rep.Count(RecordTranslate))
	}
	back := rep.Records[1].Vertices
	want := geom.PointSet{{X: 0, Y: 1, Z: 2}, {X: 3, Y: 4, Z: 5}, {X: 6, Y: 7, Z: 8}}
	for i := range want {
		d := back[i].Sub(want[i])
		if math.Abs(d.X) > 1e-12 || math.Abs(d.Y) > 1e-12 || math.Abs(d.Z) > 1e-12 {
			t.Errorf("vertex %d = %v, want %v", i, back[i], want[i])
		}
	}
}

func TestTranslateLeavesInputMesh(t *testing.T) {
	rep := mustEval(t, `
(def m (mesh [1 1 1]))
(translate m [1 0 0])
(vertex-count m)
`)
	if rep.Result != "1" {
		t.Errorf("vertex-count = %q, want 1", rep.Result)
	}
	if v := rep.Records[0].Vertices[0]; v.X != 2 {
		t.Errorf("translated x = %v, want 2", v.X)
	}
}

func TestRecordsKeepCallOrder(t *testing.T) {
	rep := mustEval(t, cubeSource+`
(convex-hull cube)
(is-convex [0 0 0] [1 0 0] [0 1 0])
(bounding-box cube)
`)
	want := []RecordKind{RecordHull, RecordConvexity, RecordBox}
	if len(rep.Records) != len(want) {
		t.Fatalf("got %d records, want %d", len(rep.Records), len(want))
	}
	for i, k := range want {
		if rep.Records[i].Kind != k {
			t.Errorf("record %d kind = %s, want %s", i, rep.Records[i].Kind, k)
		}
	}
}

func TestEnginePrecisionOption(t *testing.T) {
	// A 0.01-thick slab is volumetric at the default precision and
	// coplanar once the precision exceeds its volume.
	src := `(convex-hull (points [0 0 0] [1 0 0] [0 1 0] [1 1 0]
	                             [0 0 0.01] [1 0 0.01] [0 1 0.01] [1 1 0.01]))`

	rep, _, err := NewEngine(sdfx.New()).Evaluate(src)
	if err != nil || rep == nil {
		t.Fatalf("Evaluate() = %v, %v", rep, err)
	}
	if rep.Records[0].Hull.Class != geom.Volumetric {
		t.Errorf("default precision class = %s, want volumetric", rep.Records[0].Hull.Class)
	}

	rep, _, err = NewEngine(sdfx.New(), WithPrecision(0.1)).Evaluate(src)
	if err != nil || rep == nil {
		t.Fatalf("Evaluate() = %v, %v", rep, err)
	}
	if !rep.Records[0].Hull.Class.IsCoplanar() {
		t.Errorf("loose precision class = %s, want coplanar", rep.Records[0].Hull.Class)
	}
}

func TestBuiltinArgumentErrors(t *testing.T) {
	tests := []struct {
		name   string
		source string
	}{
		{"vec3 arity", `(vec3 1 2)`},
		{"vec3 type", `(vec3 1 "a" 2)`},
		{"bad point", `(points [1 2])`},
		{"negative precision", `(convex-hull (points [0 0 0]) :precision -1)`},
		{"empty hull", `(convex-hull)`},
		{"rotate without mesh", `(rotate :x 90)`},
		{"translate arity", `(translate (mesh [0 0 0]))`},
		{"volume of mesh", `(volume (mesh [0 0 0]))`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, evalErrs, err := NewEngine(sdfx.New()).Evaluate(tt.source)
			if err != nil {
				t.Fatalf("expected non-fatal eval error, got fatal: %v", err)
			}
			if len(evalErrs) == 0 {
				t.Fatal("expected an eval error")
			}
		})
	}
}
