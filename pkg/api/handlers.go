package api

import (
	"net/http"

	"github.com/chazu/caliper/pkg/engine"
	"github.com/chazu/caliper/pkg/geom"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/gin-gonic/gin"
)

// ConvexHull handles POST /api/v1/points/convex-hull.
func (h *Handler) ConvexHull(c *gin.Context) {
	var req PointsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	s := h.current()
	ps, err := geom.FromTriples(req.Points)
	if err != nil {
		geometryError(c, err)
		return
	}
	res, err := s.kernel.ConvexHull(ps, precisionOr(req.Precision, s.precision))
	if err != nil {
		geometryError(c, err)
		return
	}
	c.JSON(http.StatusOK, newHullResponse(res))
}

// BoundingBox handles POST /api/v1/points/bounding-box.
func (h *Handler) BoundingBox(c *gin.Context) {
	var req PointsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	s := h.current()
	ps, err := geom.FromTriples(req.Points)
	if err != nil {
		geometryError(c, err)
		return
	}
	res, err := s.kernel.OrientedBox(ps, precisionOr(req.Precision, s.precision))
	if err != nil {
		geometryError(c, err)
		return
	}
	c.JSON(http.StatusOK, newBoxResponse(res))
}

// IsConvexPolygon handles POST /api/v1/polygons/is-convex-polygon.
func (h *Handler) IsConvexPolygon(c *gin.Context) {
	var req PolygonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	convex, err := h.current().kernel.IsConvex(req.points())
	if err != nil {
		geometryError(c, err)
		return
	}
	c.JSON(http.StatusOK, ConvexityResponse{IsConvex: convex})
}

// RotateMesh handles POST /api/v1/meshes/rotation.
func (h *Handler) RotateMesh(c *gin.Context) {
	var req RotationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	ps, err := geom.FromTriples(req.Vertices)
	if err != nil {
		geometryError(c, err)
		return
	}
	rot, err := req.rotation()
	if err != nil {
		geometryError(c, err)
		return
	}
	out := h.current().kernel.Rotate(ps, rot)
	c.JSON(http.StatusOK, MeshResponse{Vertices: out.Triples()})
}

// TranslateMesh handles POST /api/v1/meshes/translation.
func (h *Handler) TranslateMesh(c *gin.Context) {
	var req TranslationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	ps, err := geom.FromTriples(req.Vertices)
	if err != nil {
		geometryError(c, err)
		return
	}
	t := req.Translation
	out := h.current().kernel.Translate(ps, v3.Vec{X: *t.X, Y: *t.Y, Z: *t.Z})
	c.JSON(http.StatusOK, MeshResponse{Vertices: out.Triples()})
}

// EvaluateScript handles POST /api/v1/scripts/evaluate. Each request gets
// its own engine so concurrent scripts never supersede one another.
func (h *Handler) EvaluateScript(c *gin.Context) {
	var req ScriptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	s := h.current()
	eng := engine.NewEngine(s.kernel, engine.WithPrecision(s.precision))

	rep, evalErrs, err := eng.Evaluate(req.Source)
	if err != nil {
		requestLogger(c).Warn("script evaluation aborted", "err", err)
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	if len(evalErrs) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "evaluation failed", "errors": evalErrs})
		return
	}
	c.JSON(http.StatusOK, engine.EvalResult{Report: rep})
}

func precisionOr(p *float64, def float64) float64 {
	if p == nil {
		return def
	}
	return *p
}
