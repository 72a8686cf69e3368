package main

import (
	"math"
	"os"
	"testing"

	"github.com/chazu/caliper/pkg/config"
	"github.com/chazu/caliper/pkg/engine"
	"github.com/chazu/caliper/pkg/geom"
)

func newTestApp() *App {
	return NewApp(config.Default())
}

// TestE2EBoxExample exercises the full pipeline: script source → engine →
// kernel → records. This is the same path -script takes.
func TestE2EBoxExample(t *testing.T) {
	app := newTestApp()

	source, err := os.ReadFile("examples/box.cal")
	if err != nil {
		t.Fatalf("failed to read box.cal: %v", err)
	}

	result := app.Evaluate(string(source))

	if len(result.Errors) > 0 {
		for _, e := range result.Errors {
			t.Errorf("eval error (line %d): %s", e.Line, e.Message)
		}
		t.FailNow()
	}

	want := []engine.RecordKind{
		engine.RecordRotate,
		engine.RecordTranslate,
		engine.RecordHull,
		engine.RecordBox,
		engine.RecordConvexity,
	}
	if len(result.Records) != len(want) {
		t.Fatalf("expected %d records, got %d", len(want), len(result.Records))
	}
	for i, k := range want {
		if result.Records[i].Kind != k {
			t.Errorf("record %d: kind %s, want %s", i, result.Records[i].Kind, k)
		}
	}

	hull := result.Records[2].Hull
	if len(hull.Vertices) != 8 {
		t.Errorf("hull has %d vertices, want 8", len(hull.Vertices))
	}
	if math.Abs(hull.Volume-8) > 1e-9 {
		t.Errorf("hull volume = %f, want 8", hull.Volume)
	}
	if hull.Class != geom.Volumetric {
		t.Errorf("hull class = %s, want volumetric", hull.Class)
	}

	box := result.Records[3].Box
	if box.Volume < 8-1e-9 || box.Volume > 8.5 {
		t.Errorf("box volume = %f, want close to 8", box.Volume)
	}

	if !*result.Records[4].Convex {
		t.Error("top face should be convex")
	}
	if result.Result == "" {
		t.Error("expected the printed box volume as the result")
	}
}

// TestE2EEmptySource ensures the pipeline handles empty input gracefully.
func TestE2EEmptySource(t *testing.T) {
	app := newTestApp()
	result := app.Evaluate("")

	if len(result.Errors) > 0 {
		t.Errorf("unexpected errors for empty source: %v", result.Errors)
	}
	if len(result.Records) != 0 {
		t.Errorf("expected 0 records for empty source, got %d", len(result.Records))
	}
}

// TestE2ESyntaxError ensures eval errors are reported, not fatal errors.
func TestE2ESyntaxError(t *testing.T) {
	app := newTestApp()
	result := app.Evaluate("(convex-hull (points [0 0 0]")

	if len(result.Errors) == 0 {
		t.Fatal("expected eval errors for syntax error")
	}
	if len(result.Records) != 0 {
		t.Errorf("expected 0 records on error, got %d", len(result.Records))
	}
}

// TestE2ESingleHull ensures a minimal source yields one hull record.
func TestE2ESingleHull(t *testing.T) {
	app := newTestApp()
	result := app.Evaluate(`(convex-hull (points [0 0 0] [1 0 0] [0 1 0] [0 0 1]))`)

	if len(result.Errors) > 0 {
		for _, e := range result.Errors {
			t.Errorf("eval error: %s", e.Message)
		}
		t.FailNow()
	}
	if len(result.Records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(result.Records))
	}
	if v := result.Records[0].Hull.Volume; math.Abs(v-1.0/6) > 1e-12 {
		t.Errorf("tetrahedron volume = %v, want 1/6", v)
	}
}

// TestE2EReconfigure ensures a reload reaches the script engine.
func TestE2EReconfigure(t *testing.T) {
	app := newTestApp()

	cfg := config.Default()
	cfg.Geometry.Precision = 0.25
	app.Reconfigure(cfg)

	result := app.Evaluate(`(bounding-box (points [0 0 0] [0 3 0]))`)
	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if p := result.Records[0].Box.Precision; p != 0.25 {
		t.Errorf("precision = %v, want 0.25", p)
	}
	if app.Config().Geometry.Precision != 0.25 {
		t.Error("Config() does not reflect the reload")
	}
}
