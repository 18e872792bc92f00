package domain

// ModelFit is the fit of one dose-response model for a probe.
type ModelFit struct {
	Model     string   `json:"model" yaml:"model"`
	BMD       *float64 `json:"bmd,omitempty" yaml:"bmd,omitempty"`
	BMDL      *float64 `json:"bmdl,omitempty" yaml:"bmdl,omitempty"`
	BMDU      *float64 `json:"bmdu,omitempty" yaml:"bmdu,omitempty"`
	AIC       *float64 `json:"aic,omitempty" yaml:"aic,omitempty"`
	FitPValue *float64 `json:"fitPValue,omitempty" yaml:"fitPValue,omitempty"`
}

// ProbeStatResult is the best-model summary of one probe.
type ProbeStatResult struct {
	ProbeID          string     `json:"probeId" yaml:"probeId"`
	GeneSymbols      []string   `json:"geneSymbols,omitempty" yaml:"geneSymbols,omitempty"`
	BestModel        string     `json:"bestModel,omitempty" yaml:"bestModel,omitempty"`
	BMD              *float64   `json:"bmd,omitempty" yaml:"bmd,omitempty"`
	BMDL             *float64   `json:"bmdl,omitempty" yaml:"bmdl,omitempty"`
	BMDU             *float64   `json:"bmdu,omitempty" yaml:"bmdu,omitempty"`
	FitPValue        *float64   `json:"fitPValue,omitempty" yaml:"fitPValue,omitempty"`
	AdverseDirection string     `json:"adverseDirection,omitempty" yaml:"adverseDirection,omitempty"`
	Fits             []ModelFit `json:"fits,omitempty" yaml:"fits,omitempty"`
}

// BMDResult is the benchmark-dose analysis of one experiment.
type BMDResult struct {
	Name             string             `json:"name" yaml:"name"`
	ExperimentName   string             `json:"experimentName,omitempty" yaml:"experimentName,omitempty"`
	ProbeStatResults []*ProbeStatResult `json:"probeStatResults" yaml:"probeStatResults"`

	rows rowCache
}

var bmdFixedColumns = []string{
	"Probe ID", "Genes", "Best Model", "BMD", "BMDL", "BMDU", "Fit P-Value", "Adverse Direction",
}

func (b *BMDResult) ResultName() string { return b.Name }
func (b *BMDResult) Kind() ResultKind   { return KindBMD }
func (b *BMDResult) sealed()            {}

// ColumnHeader lists the fixed columns followed by BMD, BMDL and AIC for
// every model fitted anywhere in the result, in first-seen order.
func (b *BMDResult) ColumnHeader() []string {
	models := b.models()
	header := make([]string, 0, len(bmdFixedColumns)+3*len(models))
	header = append(header, bmdFixedColumns...)
	for _, m := range models {
		header = append(header, m+" BMD", m+" BMDL", m+" AIC")
	}
	return header
}

func (b *BMDResult) models() []string {
	seen := make(map[string]bool)
	var models []string
	for _, p := range b.ProbeStatResults {
		if p == nil {
			continue
		}
		for _, f := range p.Fits {
			if !seen[f.Model] {
				seen[f.Model] = true
				models = append(models, f.Model)
			}
		}
	}
	return models
}

// RowData returns one row per probe. Model cells for models the probe
// was not fitted with are nil; trailing nil model cells are dropped, so
// rows vary in width.
func (b *BMDResult) RowData() ([][]any, error) {
	return b.rows.load(func() ([][]any, error) {
		if b.ProbeStatResults == nil {
			return nil, ErrRowsUnavailable
		}
		models := b.models()
		rows := make([][]any, 0, len(b.ProbeStatResults))
		for _, p := range b.ProbeStatResults {
			if p == nil {
				continue
			}
			row := []any{
				p.ProbeID, p.GeneSymbols, p.BestModel,
				optional(p.BMD), optional(p.BMDL), optional(p.BMDU), optional(p.FitPValue),
				p.AdverseDirection,
			}
			fits := make(map[string]ModelFit, len(p.Fits))
			for _, f := range p.Fits {
				fits[f.Model] = f
			}
			last := len(row)
			for _, m := range models {
				f, ok := fits[m]
				if !ok {
					row = append(row, nil, nil, nil)
					continue
				}
				row = append(row, optional(f.BMD), optional(f.BMDL), optional(f.AIC))
				last = len(row)
			}
			rows = append(rows, row[:last])
		}
		return rows, nil
	})
}

// GeneBMDs maps each gene symbol to the probes that carry it. Probes
// without a BMD are skipped.
func (b *BMDResult) GeneBMDs() map[string][]ProbeStatResult {
	out := make(map[string][]ProbeStatResult)
	for _, p := range b.ProbeStatResults {
		if p == nil || p.BMD == nil {
			continue
		}
		for _, g := range p.GeneSymbols {
			out[g] = append(out[g], *p)
		}
	}
	return out
}
