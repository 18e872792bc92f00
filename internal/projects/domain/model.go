package domain

import (
	"errors"
	"strings"

	"github.com/sciome/bmdexpress-web/internal/apperr"
)

// ErrRowsUnavailable is returned by Result.RowData when the result was
// decoded without its row-level data.
var ErrRowsUnavailable = errors.New("row data unavailable")

// ResultKind names a collection of results inside a Project.
type ResultKind string

const (
	KindExperiment ResultKind = "experiment"
	KindBMD        ResultKind = "bmd"
	KindCategory   ResultKind = "category"
)

// Kinds lists every result kind in display order.
var Kinds = []ResultKind{KindExperiment, KindBMD, KindCategory}

var kindAliases = map[string]ResultKind{
	"experiment":               KindExperiment,
	"experiments":              KindExperiment,
	"dose-response":            KindExperiment,
	"dose-response-experiment": KindExperiment,
	"bmd":                      KindBMD,
	"bmd-result":               KindBMD,
	"bmd-results":              KindBMD,
	"category":                 KindCategory,
	"category-result":          KindCategory,
	"category-results":         KindCategory,
}

// ParseResultKind maps a kind name or one of its URL aliases to a ResultKind.
func ParseResultKind(s string) (ResultKind, error) {
	k, ok := kindAliases[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return "", apperr.Validation("unknown result kind %q", s)
	}
	return k, nil
}

// Result is one named analysis output inside a Project. The set of
// implementations is closed: *DoseResponseExperiment, *BMDResult and
// *CategoryResult.
type Result interface {
	ResultName() string
	Kind() ResultKind
	// ColumnHeader returns the column names of the tabular form.
	ColumnHeader() []string
	// RowData materializes the rows on first use and caches them.
	// Rows are positionally aligned to ColumnHeader but may be shorter.
	RowData() ([][]any, error)

	sealed()
}

// Project is the decoded aggregate of an uploaded bundle.
type Project struct {
	Name                    string                    `json:"name" yaml:"name"`
	DoseResponseExperiments []*DoseResponseExperiment `json:"doseResponseExperiments" yaml:"doseResponseExperiments"`
	BMDResults              []*BMDResult              `json:"bmdResults" yaml:"bmdResults"`
	CategoryResults         []*CategoryResult         `json:"categoryResults" yaml:"categoryResults"`
}

// Results returns the collection for kind in its original order. Nil
// entries are skipped.
func (p *Project) Results(kind ResultKind) []Result {
	if p == nil {
		return nil
	}
	var out []Result
	switch kind {
	case KindExperiment:
		for _, r := range p.DoseResponseExperiments {
			if r != nil {
				out = append(out, r)
			}
		}
	case KindBMD:
		for _, r := range p.BMDResults {
			if r != nil {
				out = append(out, r)
			}
		}
	case KindCategory:
		for _, r := range p.CategoryResults {
			if r != nil {
				out = append(out, r)
			}
		}
	}
	return out
}
