package http

import (
	"go.uber.org/zap"

	"github.com/sciome/bmdexpress-web/internal/projects/service"
)

// Handler bundles the dependencies for projects HTTP endpoints.
type Handler struct {
	svc *service.ProjectService
	log *zap.Logger
}

func New(svc *service.ProjectService, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{svc: svc, log: log}
}

type loadFromFileReq struct {
	Filename string `json:"filename"`
}
