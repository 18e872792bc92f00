package http

import "github.com/gin-gonic/gin"

// Register attaches category analysis routes to the given router group.
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.POST("", h.submit)
	rg.GET("/:id", h.status)
	rg.GET("/:id/events", h.stream)
	rg.GET("/:id/export", h.export)
}
