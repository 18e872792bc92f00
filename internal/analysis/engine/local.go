package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	projects "github.com/sciome/bmdexpress-web/internal/projects/domain"
)

// Params are the parameters understood by Local.
type Params struct {
	// Categories maps a category id to its member gene symbols. When empty
	// every gene with a BMD forms its own category.
	Categories   map[string][]string `json:"categories"`
	Descriptions map[string]string   `json:"descriptions"`
	// BMDCutoff excludes probes whose BMD exceeds it. Zero disables it.
	BMDCutoff float64 `json:"bmdCutoff"`
	// MinGenes drops categories with fewer genes with a BMD.
	MinGenes int `json:"minGenes"`
}

// ParseParams decodes the free-form parameter map of a request.
func ParseParams(raw map[string]any) (Params, error) {
	var p Params
	if len(raw) == 0 {
		return p, nil
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return p, fmt.Errorf("encode parameters: %w", err)
	}
	if err := json.Unmarshal(data, &p); err != nil {
		return p, fmt.Errorf("invalid parameters: %w", err)
	}
	if p.BMDCutoff < 0 {
		return p, errors.New("invalid parameters: bmdCutoff must not be negative")
	}
	if p.MinGenes < 0 {
		return p, errors.New("invalid parameters: minGenes must not be negative")
	}
	return p, nil
}

// Local summarizes BMD values per category in process.
type Local struct{}

func (Local) Analyze(ctx context.Context, req Request) (*projects.CategoryResult, error) {
	if req.BMDResult == nil {
		return nil, errors.New("no BMD result to analyze")
	}
	params, err := ParseParams(req.Parameters)
	if err != nil {
		return nil, err
	}

	genes := geneValues(req.BMDResult, params.BMDCutoff)
	categories := params.Categories
	if len(categories) == 0 {
		categories = make(map[string][]string, len(genes))
		for g := range genes {
			categories[g] = []string{g}
		}
	}

	ids := make([]string, 0, len(categories))
	for id := range categories {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	rows := make([]*projects.CategoryRow, 0, len(ids))
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		row := summarize(id, categories[id], genes)
		if row.GenesWithBMD < params.MinGenes {
			continue
		}
		row.Description = params.Descriptions[id]
		rows = append(rows, row)
	}

	return &projects.CategoryResult{
		Name:          fmt.Sprintf("%s_%s", req.BMDResultName, req.AnalysisType),
		AnalysisType:  string(req.AnalysisType),
		BMDResultName: req.BMDResultName,
		Categories:    rows,
	}, nil
}

type geneValue struct {
	bmd  []float64
	bmdl []float64
}

func geneValues(r *projects.BMDResult, cutoff float64) map[string]*geneValue {
	out := make(map[string]*geneValue)
	for g, probes := range r.GeneBMDs() {
		v := &geneValue{}
		for _, p := range probes {
			if cutoff > 0 && *p.BMD > cutoff {
				continue
			}
			v.bmd = append(v.bmd, *p.BMD)
			if p.BMDL != nil {
				v.bmdl = append(v.bmdl, *p.BMDL)
			}
		}
		if len(v.bmd) > 0 {
			out[g] = v
		}
	}
	return out
}

// summarize builds one category row. A gene's BMD is the mean over its
// probes; the category statistics are taken over genes.
func summarize(id string, members []string, genes map[string]*geneValue) *projects.CategoryRow {
	seen := make(map[string]bool, len(members))
	var bmds, bmdls []float64
	var hit []string
	for _, g := range members {
		if seen[g] {
			continue
		}
		seen[g] = true
		v, ok := genes[g]
		if !ok {
			continue
		}
		hit = append(hit, g)
		bmds = append(bmds, mean(v.bmd))
		if len(v.bmdl) > 0 {
			bmdls = append(bmdls, mean(v.bmdl))
		}
	}
	sort.Strings(hit)

	row := &projects.CategoryRow{
		CategoryID:      id,
		GenesInCategory: len(seen),
		GenesWithBMD:    len(hit),
		Genes:           hit,
	}
	if len(seen) > 0 {
		row.Percentage = 100 * float64(len(hit)) / float64(len(seen))
	}
	if len(bmds) > 0 {
		row.BMDMean = projects.Float(mean(bmds))
		row.BMDMedian = projects.Float(median(bmds))
	}
	if len(bmdls) > 0 {
		row.BMDLMean = projects.Float(mean(bmdls))
		row.BMDLMedian = projects.Float(median(bmdls))
	}
	return row
}

func mean(xs []float64) float64 {
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

func median(xs []float64) float64 {
	s := append([]float64(nil), xs...)
	sort.Float64s(s)
	n := len(s)
	if n%2 == 1 {
		return s[n/2]
	}
	return (s[n/2-1] + s[n/2]) / 2
}
