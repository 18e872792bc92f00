// Package engine runs category analyses over BMD results.
package engine

import (
	"context"

	analysis "github.com/sciome/bmdexpress-web/internal/analysis/domain"
	projects "github.com/sciome/bmdexpress-web/internal/projects/domain"
)

// Request is the input of one category analysis.
type Request struct {
	JobID         string                `json:"jobId"`
	AnalysisType  analysis.AnalysisType `json:"analysisType"`
	BMDResultName string                `json:"bmdResultName"`
	BMDResult     *projects.BMDResult   `json:"bmdResult"`
	Parameters    map[string]any        `json:"parameters,omitempty"`
}

// Analyzer computes category results. Implementations must be safe for
// concurrent use; the job engine calls Analyze from one goroutine per job.
type Analyzer interface {
	Analyze(ctx context.Context, req Request) (*projects.CategoryResult, error)
}

// AnalyzerFunc adapts a function to Analyzer.
type AnalyzerFunc func(ctx context.Context, req Request) (*projects.CategoryResult, error)

func (f AnalyzerFunc) Analyze(ctx context.Context, req Request) (*projects.CategoryResult, error) {
	return f(ctx, req)
}
