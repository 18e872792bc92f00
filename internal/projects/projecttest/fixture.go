// Package projecttest builds small projects for tests.
package projecttest

import "github.com/sciome/bmdexpress-web/internal/projects/domain"

// Sample returns a project with one result of each kind. The BMD result
// fits Hill on every probe and Exp2 on the first probe only, so its rows
// have different widths.
func Sample() *domain.Project {
	f := domain.Float
	return &domain.Project{
		Name: "liver-study",
		DoseResponseExperiments: []*domain.DoseResponseExperiment{{
			Name: "Liver_Expr",
			Chip: "RG230-2",
			Treatments: []domain.Treatment{
				{Name: "control", Dose: 0}, {Dose: 1.5}, {Dose: 15},
			},
			ProbeResponses: []*domain.ProbeResponse{
				{ProbeID: "p1", Responses: []float64{7.1, 7.4, 8.9}},
				{ProbeID: "p2", Responses: []float64{5.0, 5.1}},
			},
		}},
		BMDResults: []*domain.BMDResult{{
			Name:           "Liver_BMD",
			ExperimentName: "Liver_Expr",
			ProbeStatResults: []*domain.ProbeStatResult{
				{
					ProbeID: "p1", GeneSymbols: []string{"Cyp1a1"}, BestModel: "Hill",
					BMD: f(1.2), BMDL: f(0.8), BMDU: f(2.0), FitPValue: f(0.42),
					AdverseDirection: "UP",
					Fits: []domain.ModelFit{
						{Model: "Hill", BMD: f(1.2), BMDL: f(0.8), AIC: f(-10.5)},
						{Model: "Exp2", BMD: f(1.9), BMDL: f(1.1), AIC: f(-8)},
					},
				},
				{
					ProbeID: "p2", GeneSymbols: []string{"Cyp1b1", "Ahrr"}, BestModel: "Hill",
					BMD: f(3.5), BMDL: f(2.5),
					Fits: []domain.ModelFit{
						{Model: "Hill", BMD: f(3.5), BMDL: f(2.5), AIC: f(-4)},
					},
				},
			},
		}},
		CategoryResults: []*domain.CategoryResult{{
			Name:          "Liver_GO",
			AnalysisType:  "GO",
			BMDResultName: "Liver_BMD",
			Categories: []*domain.CategoryRow{{
				CategoryID: "GO:0009410", Description: "response to xenobiotic stimulus",
				GenesInCategory: 3, GenesWithBMD: 2, Percentage: 66.67,
				BMDMean: f(2.35), BMDMedian: f(2.35), Genes: []string{"Cyp1a1", "Cyp1b1"},
			}},
		}},
	}
}
