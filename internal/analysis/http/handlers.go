package http

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/sciome/bmdexpress-web/internal/analysis/domain"
	"github.com/sciome/bmdexpress-web/internal/api/http/apierror"
	"github.com/sciome/bmdexpress-web/internal/logging"
	projects "github.com/sciome/bmdexpress-web/internal/projects/domain"
	"github.com/sciome/bmdexpress-web/internal/projects/tabular"
)

const resultLocationPrefix = "/api/category-analysis/"

func (h *Handler) submit(c *gin.Context) {
	var req submitReq
	if err := c.ShouldBindJSON(&req); err != nil {
		apierror.Abort(c, http.StatusBadRequest, "invalid body")
		return
	}
	analysisType, err := domain.ParseAnalysisType(req.AnalysisType)
	if err != nil {
		apierror.Write(c, err)
		return
	}
	result, err := h.projects.FindResult(req.ProjectID, projects.KindBMD, req.BMDResultName)
	if err != nil {
		apierror.Write(c, err)
		return
	}

	ref := domain.ResultRef{
		ProjectID:  req.ProjectID,
		ResultName: result.ResultName(),
		BMD:        result.(*projects.BMDResult),
	}
	id, err := h.jobs.Submit(c.Request.Context(), ref, analysisType, req.Parameters)
	if err != nil {
		apierror.Write(c, err)
		return
	}

	status := domain.StatusPending
	if job, err := h.jobs.Status(id); err == nil {
		status = job.Status
	}
	c.Header("Location", resultLocationPrefix+id)
	c.JSON(http.StatusAccepted, submitResp{
		AnalysisID:     id,
		ProjectID:      req.ProjectID,
		Status:         status,
		ResultLocation: resultLocationPrefix + id,
	})
}

func (h *Handler) status(c *gin.Context) {
	job, err := h.jobs.Status(c.Param("id"))
	if err != nil {
		apierror.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, job)
}

func (h *Handler) export(c *gin.Context) {
	id := c.Param("id")
	job, err := h.jobs.Status(id)
	if err != nil {
		apierror.Write(c, err)
		return
	}

	format := strings.ToLower(c.DefaultQuery("format", "json"))
	if format != "json" && format != "tsv" {
		apierror.Abort(c, http.StatusBadRequest, fmt.Sprintf("unsupported export format %q", format))
		return
	}
	if job.Status != domain.StatusCompleted {
		apierror.Abort(c, http.StatusConflict, fmt.Sprintf("analysis is %s", job.Status))
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=category_analysis_%s.%s", id, format))
	if format == "json" {
		c.JSON(http.StatusOK, job.Result)
		return
	}

	c.Status(http.StatusOK)
	c.Header("Content-Type", "text/tab-separated-values; charset=utf-8")
	if err := tabular.WriteTSV(c.Writer, tabular.Project(job.Result)); err != nil {
		logging.FromContext(c.Request.Context(), h.log).Warn("tsv export interrupted",
			zap.String("analysis_id", id), zap.Error(err))
	}
}
