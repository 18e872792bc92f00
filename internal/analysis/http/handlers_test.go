package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sciome/bmdexpress-web/internal/analysis/domain"
	"github.com/sciome/bmdexpress-web/internal/analysis/engine"
	"github.com/sciome/bmdexpress-web/internal/analysis/events"
	"github.com/sciome/bmdexpress-web/internal/analysis/jobs"
	"github.com/sciome/bmdexpress-web/internal/projects/codec"
	projects "github.com/sciome/bmdexpress-web/internal/projects/domain"
	"github.com/sciome/bmdexpress-web/internal/projects/projecttest"
	"github.com/sciome/bmdexpress-web/internal/projects/registry"
	"github.com/sciome/bmdexpress-web/internal/projects/service"
)

type fixture struct {
	router    *gin.Engine
	engine    *jobs.Engine
	projectID string
}

func setup(t *testing.T, analyzer engine.Analyzer) fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	svc := service.NewProjectService(codec.Codec{}, registry.New(), service.Config{}, nil, nil)
	data, err := codec.Encode(projecttest.Sample(), false)
	require.NoError(t, err)
	sess, err := svc.Upload(context.Background(), bytes.NewReader(data), "liver.bm2")
	require.NoError(t, err)

	broker := events.NewBroker(nil)
	eng := jobs.New(analyzer, jobs.WithNotifiers(broker))
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = eng.Wait(ctx)
	})

	r := gin.New()
	New(eng, svc, broker, nil).Register(r.Group("/api/category-analysis"))
	return fixture{router: r, engine: eng, projectID: sess.ID}
}

func do(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func (f fixture) submit(t *testing.T, analysisType string) submitResp {
	t.Helper()
	body := `{"projectId":"` + f.projectID + `","bmdResultName":"liver_bmd","analysisType":"` + analysisType + `","parameters":{}}`
	rec := do(f.router, http.MethodPost, "/api/category-analysis", body)
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())
	var resp submitResp
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func (f fixture) waitDone(t *testing.T, id string) {
	t.Helper()
	require.Eventually(t, func() bool {
		job, err := f.engine.Status(id)
		return err == nil && job.Status.Terminal()
	}, 5*time.Second, 5*time.Millisecond)
}

func TestSubmitAndPoll(t *testing.T) {
	f := setup(t, engine.Local{})
	resp := f.submit(t, "go")
	assert.NotEmpty(t, resp.AnalysisID)
	assert.Equal(t, f.projectID, resp.ProjectID)
	assert.Equal(t, "/api/category-analysis/"+resp.AnalysisID, resp.ResultLocation)

	f.waitDone(t, resp.AnalysisID)
	rec := do(f.router, http.MethodGet, resp.ResultLocation, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var job domain.Job
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &job))
	assert.Equal(t, domain.StatusCompleted, job.Status)
	assert.Equal(t, "Liver_BMD", job.BMDResultName)
	require.NotNil(t, job.Result)
	assert.Equal(t, "Liver_BMD_GO", job.Result.Name)
}

func TestSubmitErrors(t *testing.T) {
	f := setup(t, engine.Local{})
	cases := map[string]int{
		`not json`: http.StatusBadRequest,
		`{"projectId":"` + f.projectID + `","bmdResultName":"Liver_BMD","analysisType":"KEGG"}`: http.StatusBadRequest,
		`{"projectId":"missing","bmdResultName":"Liver_BMD","analysisType":"GO"}`:             http.StatusNotFound,
		`{"projectId":"` + f.projectID + `","bmdResultName":"nope","analysisType":"GO"}`:      http.StatusNotFound,
	}
	for body, want := range cases {
		rec := do(f.router, http.MethodPost, "/api/category-analysis", body)
		assert.Equal(t, want, rec.Code, body)
	}
	assert.Equal(t, 0, f.engine.Counts()[domain.StatusPending])
}

func TestPollUnknown(t *testing.T) {
	f := setup(t, engine.Local{})
	for _, path := range []string{"/api/category-analysis/missing", "/api/category-analysis/missing/export?format=json"} {
		rec := do(f.router, http.MethodGet, path, "")
		assert.Equal(t, http.StatusNotFound, rec.Code, path)
	}
}

func TestExport(t *testing.T) {
	f := setup(t, engine.Local{})
	resp := f.submit(t, "GENE_LEVEL")
	f.waitDone(t, resp.AnalysisID)

	rec := do(f.router, http.MethodGet, resp.ResultLocation+"/export?format=json", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "category_analysis_"+resp.AnalysisID+".json")
	var result projects.CategoryResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Len(t, result.Categories, 3)

	rec = do(f.router, http.MethodGet, resp.ResultLocation+"/export?format=tsv", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/tab-separated-values")
	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[0], "Category ID\tDescription\t"))
	assert.True(t, strings.HasPrefix(lines[1], "Ahrr\t"))

	rec = do(f.router, http.MethodGet, resp.ResultLocation+"/export?format=xml", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestExportConflictUntilCompleted(t *testing.T) {
	release := make(chan struct{})
	f := setup(t, engine.AnalyzerFunc(func(context.Context, engine.Request) (*projects.CategoryResult, error) {
		<-release
		return &projects.CategoryResult{Name: "done", Categories: []*projects.CategoryRow{}}, nil
	}))
	resp := f.submit(t, "PATHWAY")

	rec := do(f.router, http.MethodGet, resp.ResultLocation+"/export?format=tsv", "")
	assert.Equal(t, http.StatusConflict, rec.Code)

	close(release)
	f.waitDone(t, resp.AnalysisID)
	rec = do(f.router, http.MethodGet, resp.ResultLocation+"/export?format=tsv", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestStreamUntilTerminal(t *testing.T) {
	release := make(chan struct{})
	f := setup(t, engine.AnalyzerFunc(func(context.Context, engine.Request) (*projects.CategoryResult, error) {
		<-release
		return &projects.CategoryResult{Name: "streamed"}, nil
	}))
	resp := f.submit(t, "GO")

	done := make(chan *httptest.ResponseRecorder)
	go func() {
		done <- do(f.router, http.MethodGet, resp.ResultLocation+"/events", "")
	}()
	time.Sleep(20 * time.Millisecond)
	close(release)

	select {
	case rec := <-done:
		assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
		body := rec.Body.String()
		assert.True(t, strings.HasPrefix(body, "event: initial\n"), body)
		assert.Contains(t, body, "event: status\n")
		assert.Contains(t, body, `"status":"COMPLETED"`)
	case <-time.After(5 * time.Second):
		t.Fatal("stream did not end after the job completed")
	}
}

func TestStreamFinishedJob(t *testing.T) {
	f := setup(t, engine.Local{})
	resp := f.submit(t, "GO")
	f.waitDone(t, resp.AnalysisID)

	rec := do(f.router, http.MethodGet, resp.ResultLocation+"/events", "")
	assert.Equal(t, 1, strings.Count(rec.Body.String(), "event: "))
	assert.Contains(t, rec.Body.String(), `"status":"COMPLETED"`)

	rec = do(f.router, http.MethodGet, "/api/category-analysis/missing/events", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
