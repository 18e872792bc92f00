package domain

import "strconv"

// Treatment is one dose group of an experiment.
type Treatment struct {
	Name string  `json:"name" yaml:"name"`
	Dose float64 `json:"dose" yaml:"dose"`
}

// ProbeResponse holds the measured response of one probe per treatment.
type ProbeResponse struct {
	ProbeID   string    `json:"probeId" yaml:"probeId"`
	Responses []float64 `json:"responses" yaml:"responses"`
}

// DoseResponseExperiment is the raw expression data a BMD analysis runs on.
type DoseResponseExperiment struct {
	Name           string           `json:"name" yaml:"name"`
	Chip           string           `json:"chip,omitempty" yaml:"chip,omitempty"`
	Treatments     []Treatment      `json:"treatments" yaml:"treatments"`
	ProbeResponses []*ProbeResponse `json:"probeResponses" yaml:"probeResponses"`

	rows rowCache
}

func (e *DoseResponseExperiment) ResultName() string { return e.Name }
func (e *DoseResponseExperiment) Kind() ResultKind   { return KindExperiment }
func (e *DoseResponseExperiment) sealed()            {}

func (e *DoseResponseExperiment) ColumnHeader() []string {
	header := make([]string, 0, len(e.Treatments)+1)
	header = append(header, "Probe ID")
	for _, t := range e.Treatments {
		if t.Name != "" {
			header = append(header, t.Name)
			continue
		}
		header = append(header, "Dose "+strconv.FormatFloat(t.Dose, 'f', -1, 64))
	}
	return header
}

func (e *DoseResponseExperiment) RowData() ([][]any, error) {
	return e.rows.load(func() ([][]any, error) {
		if e.ProbeResponses == nil {
			return nil, ErrRowsUnavailable
		}
		rows := make([][]any, 0, len(e.ProbeResponses))
		for _, pr := range e.ProbeResponses {
			if pr == nil {
				continue
			}
			row := make([]any, 0, len(pr.Responses)+1)
			row = append(row, pr.ProbeID)
			for _, v := range pr.Responses {
				row = append(row, v)
			}
			rows = append(rows, row)
		}
		return rows, nil
	})
}
