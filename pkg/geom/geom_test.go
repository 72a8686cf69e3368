package geom

import (
	"encoding/json"
	"math"
	"testing"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

const eps = 1e-12

func near(a, b v3.Vec) bool {
	return math.Abs(a.X-b.X) < eps && math.Abs(a.Y-b.Y) < eps && math.Abs(a.Z-b.Z) < eps
}

func TestFromTriples(t *testing.T) {
	ps, err := FromTriples([][]float64{{1, 2, 3}, {4, 5, 6}})
	if err != nil {
		t.Fatalf("FromTriples() error = %v", err)
	}
	if len(ps) != 2 || ps[1] != (v3.Vec{X: 4, Y: 5, Z: 6}) {
		t.Errorf("FromTriples() = %v", ps)
	}

	if _, err := FromTriples([][]float64{{1, 2}}); err == nil {
		t.Error("FromTriples() with a 2-component point should fail")
	}
}

func TestTriples(t *testing.T) {
	if got := PointSet(nil).Triples(); got == nil || len(got) != 0 {
		t.Errorf("nil.Triples() = %#v, want empty non-nil slice", got)
	}
	got := PointSet{{X: 1, Y: 2, Z: 3}}.Triples()
	if len(got) != 1 || got[0][0] != 1 || got[0][1] != 2 || got[0][2] != 3 {
		t.Errorf("Triples() = %v", got)
	}
}

func TestClone(t *testing.T) {
	ps := PointSet{{X: 1}}
	c := ps.Clone()
	c[0].X = 9
	if ps[0].X != 1 {
		t.Error("Clone() shares storage with the original")
	}
	if PointSet(nil).Clone() != nil {
		t.Error("nil.Clone() should be nil")
	}
}

func TestDistinct(t *testing.T) {
	ps := PointSet{{X: 1}, {Y: 1}, {X: 1}, {Z: 1}, {Y: 1}}
	got := ps.Distinct()
	want := PointSet{{X: 1}, {Y: 1}, {Z: 1}}
	if len(got) != len(want) {
		t.Fatalf("Distinct() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Distinct()[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestParseAxis(t *testing.T) {
	for _, a := range Axes {
		got, err := ParseAxis(a.String())
		if err != nil || got != a {
			t.Errorf("ParseAxis(%q) = %v, %v", a.String(), got, err)
		}
	}
	if _, err := ParseAxis("w"); err == nil {
		t.Error("ParseAxis(\"w\") should fail")
	}
}

func TestClass(t *testing.T) {
	tests := []struct {
		c         Class
		name      string
		coplanar  bool
		collinear bool
	}{
		{Volumetric, "volumetric", false, false},
		{Coplanar, "coplanar", true, false},
		{Collinear, "collinear", true, true},
	}
	for _, tt := range tests {
		if tt.c.String() != tt.name {
			t.Errorf("String() = %q, want %q", tt.c.String(), tt.name)
		}
		if tt.c.IsCoplanar() != tt.coplanar {
			t.Errorf("%s.IsCoplanar() = %v", tt.name, tt.c.IsCoplanar())
		}
		if tt.c.IsCollinear() != tt.collinear {
			t.Errorf("%s.IsCollinear() = %v", tt.name, tt.c.IsCollinear())
		}
		b, _ := tt.c.MarshalText()
		if string(b) != tt.name {
			t.Errorf("MarshalText() = %q, want %q", b, tt.name)
		}
		var back Class
		if err := json.Unmarshal([]byte(`"`+tt.name+`"`), &back); err != nil || back != tt.c {
			t.Errorf("json.Unmarshal(%q) = %s, %v, want %s", tt.name, back, err, tt.c)
		}
	}

	var c Class
	if err := c.UnmarshalText([]byte("spherical")); err == nil {
		t.Error("UnmarshalText(spherical) error = nil, want error")
	}
}

func TestAxisRotation(t *testing.T) {
	tests := []struct {
		axis Axis
		in   v3.Vec
		want v3.Vec
	}{
		{AxisX, v3.Vec{Y: 1}, v3.Vec{Z: 1}},
		{AxisY, v3.Vec{Z: 1}, v3.Vec{X: 1}},
		{AxisZ, v3.Vec{X: 1}, v3.Vec{Y: 1}},
	}
	for _, tt := range tests {
		got := AxisRotation(tt.axis, 90).MulPosition(tt.in)
		if !near(got, tt.want) {
			t.Errorf("rotate %s by 90: %v -> %v, want %v", tt.axis, tt.in, got, tt.want)
		}
	}
}

func TestEulerXYZ(t *testing.T) {
	// x first: (0,1,0) -> (0,0,1), then z leaves it alone.
	got := EulerXYZ(90, 0, 90).MulPosition(v3.Vec{Y: 1})
	if !near(got, v3.Vec{Z: 1}) {
		t.Errorf("EulerXYZ(90,0,90) * y = %v, want z", got)
	}
	// z is applied last: (1,0,0) -> x stays x, then z turns it to y.
	got = EulerXYZ(90, 0, 90).MulPosition(v3.Vec{X: 1})
	if !near(got, v3.Vec{Y: 1}) {
		t.Errorf("EulerXYZ(90,0,90) * x = %v, want y", got)
	}
}

func TestTransformKeepsInput(t *testing.T) {
	ps := PointSet{{X: 1}}
	out := ps.Transform(AxisRotation(AxisZ, 90))
	if ps[0] != (v3.Vec{X: 1}) {
		t.Error("Transform() mutated its input")
	}
	if !near(out[0], v3.Vec{Y: 1}) {
		t.Errorf("Transform() = %v", out[0])
	}
}

func TestPointSetJSON(t *testing.T) {
	ps := PointSet{{X: 1, Y: 2, Z: 3}, {X: -1, Y: 0.5, Z: 0}}
	b, err := ps.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON() error = %v", err)
	}
	if string(b) != `[[1,2,3],[-1,0.5,0]]` {
		t.Errorf("MarshalJSON() = %s", b)
	}

	var back PointSet
	if err := back.UnmarshalJSON(b); err != nil {
		t.Fatalf("UnmarshalJSON() error = %v", err)
	}
	if len(back) != 2 || back[0] != ps[0] || back[1] != ps[1] {
		t.Errorf("UnmarshalJSON() = %v, want %v", back, ps)
	}

	if err := back.UnmarshalJSON([]byte(`[[1,2]]`)); err == nil {
		t.Error("UnmarshalJSON() accepted a 2-component point")
	}
}
