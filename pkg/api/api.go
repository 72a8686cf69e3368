// Package api exposes the geometry kernel and script engine over HTTP
// using gin.
package api

import (
	"net/http"
	"sync/atomic"

	"github.com/chazu/caliper/pkg/kernel"
	"github.com/gin-gonic/gin"
)

// settings is swapped as a unit when configuration reloads.
type settings struct {
	kernel    kernel.Kernel
	precision float64
}

// Handler serves the /api/v1 routes. It is safe for concurrent use.
type Handler struct {
	state atomic.Pointer[settings]
}

// New returns a Handler evaluating requests with k. precision is used when
// a request omits its own.
func New(k kernel.Kernel, precision float64) *Handler {
	h := &Handler{}
	h.Configure(k, precision)
	return h
}

// Configure replaces the kernel and default precision for later requests.
func (h *Handler) Configure(k kernel.Kernel, precision float64) {
	h.state.Store(&settings{kernel: k, precision: precision})
}

func (h *Handler) current() *settings {
	return h.state.Load()
}

// Router builds the gin engine with middleware and all routes.
func (h *Handler) Router() *gin.Engine {
	registerTagNames()

	r := gin.New()
	r.Use(requestID(), accessLog(), gin.CustomRecovery(recovered))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := r.Group("/api/v1")
	{
		points := v1.Group("/points")
		points.POST("/convex-hull", h.ConvexHull)
		points.POST("/bounding-box", h.BoundingBox)

		polygons := v1.Group("/polygons")
		polygons.POST("/is-convex-polygon", h.IsConvexPolygon)

		meshes := v1.Group("/meshes")
		meshes.POST("/rotation", h.RotateMesh)
		meshes.POST("/translation", h.TranslateMesh)

		scripts := v1.Group("/scripts")
		scripts.POST("/evaluate", h.EvaluateScript)
	}
	return r
}
