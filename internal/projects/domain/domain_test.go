package domain_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sciome/bmdexpress-web/internal/apperr"
	"github.com/sciome/bmdexpress-web/internal/projects/domain"
	"github.com/sciome/bmdexpress-web/internal/projects/projecttest"
)

func TestParseResultKind(t *testing.T) {
	for in, want := range map[string]domain.ResultKind{
		"bmd":              domain.KindBMD,
		"BMD-Results":      domain.KindBMD,
		" category ":       domain.KindCategory,
		"category-results": domain.KindCategory,
		"dose-response":    domain.KindExperiment,
		"experiments":      domain.KindExperiment,
	} {
		got, err := domain.ParseResultKind(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := domain.ParseResultKind("pathways")
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestResultsSkipsNil(t *testing.T) {
	p := &domain.Project{BMDResults: []*domain.BMDResult{nil, {Name: "a"}}}
	rs := p.Results(domain.KindBMD)
	require.Len(t, rs, 1)
	assert.Equal(t, "a", rs[0].ResultName())
	assert.Empty(t, p.Results(domain.KindCategory))

	var nilProject *domain.Project
	assert.Nil(t, nilProject.Results(domain.KindBMD))
}

func TestExperimentHeader(t *testing.T) {
	e := projecttest.Sample().DoseResponseExperiments[0]
	assert.Equal(t, []string{"Probe ID", "control", "Dose 1.5", "Dose 15"}, e.ColumnHeader())

	rows, err := e.RowData()
	require.NoError(t, err)
	assert.Equal(t, []any{"p1", 7.1, 7.4, 8.9}, rows[0])
	assert.Equal(t, []any{"p2", 5.0, 5.1}, rows[1])
}

func TestBMDRowsDropTrailingMissingFits(t *testing.T) {
	b := projecttest.Sample().BMDResults[0]
	header := b.ColumnHeader()
	rows, err := b.RowData()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Len(t, rows[0], len(header))
	assert.Len(t, rows[1], len(header)-3)
}

func TestRowDataUnavailable(t *testing.T) {
	for _, r := range []domain.Result{
		&domain.DoseResponseExperiment{Name: "e"},
		&domain.BMDResult{Name: "b"},
		&domain.CategoryResult{Name: "c"},
	} {
		_, err := r.RowData()
		assert.ErrorIs(t, err, domain.ErrRowsUnavailable, r.ResultName())
	}
}

func TestRowDataConcurrentFirstUse(t *testing.T) {
	c := projecttest.Sample().CategoryResults[0]
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rows, err := c.RowData()
			assert.NoError(t, err)
			assert.Len(t, rows, 1)
		}()
	}
	wg.Wait()
}

func TestGeneBMDs(t *testing.T) {
	b := projecttest.Sample().BMDResults[0]
	b.ProbeStatResults = append(b.ProbeStatResults, &domain.ProbeStatResult{
		ProbeID: "p3", GeneSymbols: []string{"Cyp1a1"},
	})
	genes := b.GeneBMDs()
	assert.Len(t, genes["Cyp1a1"], 1)
	assert.Len(t, genes["Ahrr"], 1)
	assert.Equal(t, 3.5, *genes["Ahrr"][0].BMD)
}
