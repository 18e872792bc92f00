package http

import (
	"github.com/gin-gonic/gin"

	"github.com/sciome/bmdexpress-web/internal/projects/domain"
)

// Register attaches project routes to the given router group.
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.POST("", h.upload)
	rg.GET("", h.list)
	rg.GET("/available-files", h.availableFiles)
	rg.POST("/load-from-file", h.loadFromFile)

	rg.GET("/:id", h.summary)
	rg.GET("/:id/full", h.full)
	rg.DELETE("/:id", h.delete)

	rg.GET("/:id/results/:kind", h.resultNames)
	rg.GET("/:id/results/:kind/:name", h.resultTable)

	rg.GET("/:id/bmd-results", h.namesOf(domain.KindBMD))
	rg.GET("/:id/bmd-results/:name", h.tableOf(domain.KindBMD))
	rg.GET("/:id/category-results", h.namesOf(domain.KindCategory))
	rg.GET("/:id/category-results/:name", h.tableOf(domain.KindCategory))
}
