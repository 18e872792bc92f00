package http

import (
	"time"

	"go.uber.org/zap"

	"github.com/sciome/bmdexpress-web/internal/analysis/domain"
	"github.com/sciome/bmdexpress-web/internal/analysis/events"
	"github.com/sciome/bmdexpress-web/internal/analysis/jobs"
	"github.com/sciome/bmdexpress-web/internal/projects/service"
)

// Handler handles HTTP requests for category analyses
type Handler struct {
	jobs      *jobs.Engine
	projects  *service.ProjectService
	broker    *events.Broker
	log       *zap.Logger
	keepAlive time.Duration
}

// New creates a new Handler
func New(engine *jobs.Engine, projects *service.ProjectService, broker *events.Broker, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{
		jobs:      engine,
		projects:  projects,
		broker:    broker,
		log:       log,
		keepAlive: 15 * time.Second,
	}
}

type submitReq struct {
	ProjectID     string         `json:"projectId"`
	BMDResultName string         `json:"bmdResultName"`
	AnalysisType  string         `json:"analysisType"`
	Parameters    map[string]any `json:"parameters"`
}

type submitResp struct {
	AnalysisID     string        `json:"analysisId"`
	ProjectID      string        `json:"projectId"`
	Status         domain.Status `json:"status"`
	ResultLocation string        `json:"resultLocation"`
}
