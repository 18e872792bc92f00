package domain

// CategoryRow is the summary of one category (GO term, pathway, gene set).
type CategoryRow struct {
	CategoryID      string   `json:"categoryId" yaml:"categoryId"`
	Description     string   `json:"description,omitempty" yaml:"description,omitempty"`
	GenesInCategory int      `json:"genesInCategory" yaml:"genesInCategory"`
	GenesWithBMD    int      `json:"genesWithBmd" yaml:"genesWithBmd"`
	Percentage      float64  `json:"percentage" yaml:"percentage"`
	BMDMean         *float64 `json:"bmdMean,omitempty" yaml:"bmdMean,omitempty"`
	BMDMedian       *float64 `json:"bmdMedian,omitempty" yaml:"bmdMedian,omitempty"`
	BMDLMean        *float64 `json:"bmdlMean,omitempty" yaml:"bmdlMean,omitempty"`
	BMDLMedian      *float64 `json:"bmdlMedian,omitempty" yaml:"bmdlMedian,omitempty"`
	FisherPValue    *float64 `json:"fisherPValue,omitempty" yaml:"fisherPValue,omitempty"`
	Genes           []string `json:"genes,omitempty" yaml:"genes,omitempty"`
}

// CategoryResult is the output of a category (enrichment) analysis.
type CategoryResult struct {
	Name          string         `json:"name" yaml:"name"`
	AnalysisType  string         `json:"analysisType,omitempty" yaml:"analysisType,omitempty"`
	BMDResultName string         `json:"bmdResultName,omitempty" yaml:"bmdResultName,omitempty"`
	Categories    []*CategoryRow `json:"categories" yaml:"categories"`

	rows rowCache
}

var categoryColumns = []string{
	"Category ID", "Description", "Genes In Category", "Genes With BMD", "Percentage",
	"BMD Mean", "BMD Median", "BMDL Mean", "BMDL Median", "Fisher P-Value", "Genes",
}

func (c *CategoryResult) ResultName() string { return c.Name }
func (c *CategoryResult) Kind() ResultKind   { return KindCategory }
func (c *CategoryResult) sealed()            {}

func (c *CategoryResult) ColumnHeader() []string {
	return append([]string(nil), categoryColumns...)
}

func (c *CategoryResult) RowData() ([][]any, error) {
	return c.rows.load(func() ([][]any, error) {
		if c.Categories == nil {
			return nil, ErrRowsUnavailable
		}
		rows := make([][]any, 0, len(c.Categories))
		for _, r := range c.Categories {
			if r == nil {
				continue
			}
			rows = append(rows, []any{
				r.CategoryID, r.Description, r.GenesInCategory, r.GenesWithBMD, r.Percentage,
				optional(r.BMDMean), optional(r.BMDMedian), optional(r.BMDLMean), optional(r.BMDLMedian),
				optional(r.FisherPValue), r.Genes,
			})
		}
		return rows, nil
	})
}
