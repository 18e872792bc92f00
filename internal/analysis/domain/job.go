// Package domain defines category analysis jobs and their lifecycle.
package domain

import (
	"strings"
	"time"

	"github.com/sciome/bmdexpress-web/internal/apperr"
	projects "github.com/sciome/bmdexpress-web/internal/projects/domain"
)

// Status is the lifecycle state of a job. Transitions only move forward:
// PENDING -> RUNNING -> COMPLETED | FAILED.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusRunning   Status = "RUNNING"
	StatusCompleted Status = "COMPLETED"
	StatusFailed    Status = "FAILED"
)

// Statuses lists every status in lifecycle order.
var Statuses = []Status{StatusPending, StatusRunning, StatusCompleted, StatusFailed}

func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// AnalysisType selects the category definitions an analysis runs against.
type AnalysisType string

const (
	TypeGO        AnalysisType = "GO"
	TypePathway   AnalysisType = "PATHWAY"
	TypeDefined   AnalysisType = "DEFINED"
	TypeGeneLevel AnalysisType = "GENE_LEVEL"
)

var AnalysisTypes = []AnalysisType{TypeGO, TypePathway, TypeDefined, TypeGeneLevel}

// ParseAnalysisType accepts an analysis type in any case.
func ParseAnalysisType(s string) (AnalysisType, error) {
	want := strings.ToUpper(strings.TrimSpace(s))
	for _, t := range AnalysisTypes {
		if string(t) == want {
			return t, nil
		}
	}
	return "", apperr.Validation("invalid analysis type %q", s)
}

// ResultRef points at the BMD result an analysis runs on.
type ResultRef struct {
	ProjectID  string
	ResultName string
	BMD        *projects.BMDResult
}

// Job is an immutable snapshot of an analysis job. A new snapshot is
// published for every transition; terminal fields are set in the same
// snapshot as the terminal status.
type Job struct {
	ID            string                   `json:"analysisId"`
	ProjectID     string                   `json:"projectId"`
	BMDResultName string                   `json:"bmdResultName"`
	AnalysisType  AnalysisType             `json:"analysisType"`
	Parameters    map[string]any           `json:"parameters,omitempty"`
	Status        Status                   `json:"status"`
	SubmittedAt   time.Time                `json:"submittedAt"`
	StartedAt     *time.Time               `json:"startedAt,omitempty"`
	CompletedAt   *time.Time               `json:"completedAt,omitempty"`
	Result        *projects.CategoryResult `json:"results,omitempty"`
	ErrorMessage  string                   `json:"errorMessage,omitempty"`
}
