package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/sciome/bmdexpress-web/internal/api/http/apierror"
	"github.com/sciome/bmdexpress-web/internal/logging"
	"github.com/sciome/bmdexpress-web/internal/projects/domain"
	"github.com/sciome/bmdexpress-web/internal/projects/service"
)

func (h *Handler) upload(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		apierror.Abort(c, http.StatusBadRequest, "multipart field \"file\" is required")
		return
	}
	f, err := fh.Open()
	if err != nil {
		apierror.Abort(c, http.StatusBadRequest, "cannot read uploaded file")
		return
	}
	defer f.Close()

	sess, err := h.svc.Upload(c.Request.Context(), f, fh.Filename)
	if err != nil {
		apierror.Write(c, err)
		return
	}
	c.JSON(http.StatusCreated, service.Summarize(sess))
}

func (h *Handler) list(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.List())
}

func (h *Handler) availableFiles(c *gin.Context) {
	files, err := h.svc.AvailableFiles()
	if err != nil {
		logging.FromContext(c.Request.Context(), h.log).Error("list project files failed", zap.Error(err))
		apierror.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, files)
}

func (h *Handler) loadFromFile(c *gin.Context) {
	var req loadFromFileReq
	if err := c.ShouldBindJSON(&req); err != nil {
		apierror.Abort(c, http.StatusBadRequest, "invalid body")
		return
	}

	sess, err := h.svc.LoadFromFile(c.Request.Context(), req.Filename)
	if err != nil {
		if errors.Is(err, service.ErrInvalidFilename) {
			apierror.Abort(c, http.StatusForbidden, "Invalid filename")
			return
		}
		apierror.Write(c, err)
		return
	}
	c.JSON(http.StatusCreated, service.Summarize(sess))
}

func (h *Handler) summary(c *gin.Context) {
	sum, err := h.svc.Summary(c.Param("id"))
	if err != nil {
		apierror.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, sum)
}

func (h *Handler) full(c *gin.Context) {
	sess, err := h.svc.Get(c.Param("id"))
	if err != nil {
		apierror.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, sess.Project)
}

func (h *Handler) delete(c *gin.Context) {
	if !h.svc.Delete(c.Request.Context(), c.Param("id")) {
		apierror.Abort(c, http.StatusNotFound, "project not found")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) resultNames(c *gin.Context) {
	kind, err := domain.ParseResultKind(c.Param("kind"))
	if err != nil {
		apierror.Write(c, err)
		return
	}
	h.namesOf(kind)(c)
}

func (h *Handler) resultTable(c *gin.Context) {
	kind, err := domain.ParseResultKind(c.Param("kind"))
	if err != nil {
		apierror.Write(c, err)
		return
	}
	h.tableOf(kind)(c)
}

func (h *Handler) namesOf(kind domain.ResultKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		names, err := h.svc.ResultNames(c.Param("id"), kind)
		if err != nil {
			apierror.Write(c, err)
			return
		}
		c.JSON(http.StatusOK, names)
	}
}

func (h *Handler) tableOf(kind domain.ResultKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		table, err := h.svc.Table(c.Param("id"), kind, c.Param("name"))
		if err != nil {
			apierror.Write(c, err)
			return
		}
		c.JSON(http.StatusOK, table)
	}
}
