package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"logospace/internal/analyzer"
	archiverepo "logospace/internal/gateway/repository/archive"
	"logospace/internal/gateway/service/analysis"
	"logospace/internal/report"
)

func newTestHandler(t *testing.T, opts ...analyzer.Option) *AnalysisHandler {
	t.Helper()
	svc, err := analysis.New(analyzer.New(opts...), archiverepo.NewMemoryStore(), 16)
	require.NoError(t, err)
	return NewAnalysisHandler(svc, 1<<20)
}

func post(t *testing.T, h http.HandlerFunc, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func criticalBody(t *testing.T) string {
	t.Helper()
	unit := "eval(x)\nsetattr(obj, name, value)\nfeedback loop\nautonomous agent decision tree\nlearn adapt\n"
	raw, err := json.Marshal(map[string]any{
		"files": map[string]string{"core.py": strings.Repeat(unit, 5) + "((((((((((x))))))))))"},
	})
	require.NoError(t, err)
	return string(raw)
}

func TestHandleAnalyze(t *testing.T) {
	h := newTestHandler(t)
	rec := post(t, h.HandleAnalyze, "/api/analyze", `{"files":{"a.py":"def spin():\n    spin()\n"}}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	body := decode(t, rec)
	assert.Equal(t, "success", body["status"])
	a, ok := body["analysis"].(map[string]any)
	require.True(t, ok)
	for _, key := range []string{
		"consciousness_level", "patterns_detected", "behavioral_loops", "psychological_triggers",
		"emergent_properties", "future_predictions", "metrics", "risk_assessment",
	} {
		assert.Contains(t, a, key)
	}
}

func TestHandlePredict(t *testing.T) {
	h := newTestHandler(t)
	rec := post(t, h.HandlePredict, "/api/predict-consciousness", `{"files":{"a.txt":"hello world"}}`)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode(t, rec)
	assert.Equal(t, "success", body["status"])
	assert.Equal(t, []any{}, body["predictions"])
	risk := body["risk_assessment"].(map[string]any)
	assert.Equal(t, "LOW", risk["risk_level"])
}

func TestHandleDetectPatterns(t *testing.T) {
	h := newTestHandler(t)
	rec := post(t, h.HandleDetectPatterns, "/api/detect-patterns", `{"files":{"io.js":"async"}}`)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode(t, rec)
	assert.Equal(t, []any{}, body["patterns"])
	props := body["emergent_properties"].([]any)
	require.Len(t, props, 1)
	assert.Equal(t, "Parallel Processing", props[0].(map[string]any)["name"])
	assert.NotContains(t, body, "future_predictions")
}

func TestEmptyFilesIsBadRequestEverywhere(t *testing.T) {
	h := newTestHandler(t)
	handlers := map[string]http.HandlerFunc{
		"/api/analyze":               h.HandleAnalyze,
		"/api/predict-consciousness": h.HandlePredict,
		"/api/detect-patterns":       h.HandleDetectPatterns,
		"/api/consciousness-report":  h.HandleReport,
	}
	for path, fn := range handlers {
		for _, body := range []string{`{}`, `{"files":{}}`, `{"files":null}`} {
			rec := post(t, fn, path, body)
			require.Equal(t, http.StatusBadRequest, rec.Code, "%s %s", path, body)
			out := decode(t, rec)
			assert.Equal(t, "error", out["status"])
			assert.Equal(t, "No files provided", out["error"])
		}
	}
}

func TestMalformedJSONIsBadRequest(t *testing.T) {
	h := newTestHandler(t)
	for _, body := range []string{``, `{`, `{"files":"nope"}`, `{"files":{"a":1}}`} {
		rec := post(t, h.HandleAnalyze, "/api/analyze", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
		assert.Equal(t, "error", decode(t, rec)["status"])
	}
}

func TestOversizedInput(t *testing.T) {
	h := newTestHandler(t, analyzer.WithMaxCorpusBytes(8))
	rec := post(t, h.HandleAnalyze, "/api/analyze", `{"files":{"a":"0123456789"}}`)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)

	svc, err := analysis.New(nil, nil, 1)
	require.NoError(t, err)
	small := NewAnalysisHandler(svc, 16)
	rec = post(t, small.HandleAnalyze, "/api/analyze", `{"files":{"a":"`+strings.Repeat("x", 64)+`"}}`)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Equal(t, "request body too large", decode(t, rec)["error"])
}

func TestWrongMethod(t *testing.T) {
	h := newTestHandler(t)
	rec := httptest.NewRecorder()
	h.HandleAnalyze(rec, httptest.NewRequest(http.MethodGet, "/api/analyze", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, http.MethodPost, rec.Header().Get("Allow"))
}

func TestHandleReportAndArchive(t *testing.T) {
	h := newTestHandler(t)
	rec := post(t, h.HandleReport, "/api/consciousness-report", criticalBody(t))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Status string          `json:"status"`
		Report report.Document `json:"report"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "success", resp.Status)
	assert.Equal(t, report.Title, resp.Report.Title)
	assert.Equal(t, "Unknown", resp.Report.Repository)
	assert.Equal(t, analyzer.RiskCritical, resp.Report.Sections.Summary.RiskLevel)
	assert.Len(t, resp.Report.Sections.Recommendations, 4)

	list := httptest.NewRecorder()
	h.HandleReports(list, httptest.NewRequest(http.MethodGet, "/api/reports", nil))
	require.Equal(t, http.StatusOK, list.Code)
	assert.Equal(t, []any{resp.Report.ID}, decode(t, list)["reports"])

	one := httptest.NewRecorder()
	h.HandleReports(one, httptest.NewRequest(http.MethodGet, "/api/reports?id="+resp.Report.ID, nil))
	require.Equal(t, http.StatusOK, one.Code)
	archived := decode(t, one)["report"].(map[string]any)
	assert.Equal(t, resp.Report.ID, archived["id"])

	missing := httptest.NewRecorder()
	h.HandleReports(missing, httptest.NewRequest(http.MethodGet, "/api/reports?id=report-unknown", nil))
	assert.Equal(t, http.StatusNotFound, missing.Code)

	bad := httptest.NewRecorder()
	h.HandleReports(bad, httptest.NewRequest(http.MethodGet, "/api/reports?id=..%2Fetc", nil))
	assert.Equal(t, http.StatusBadRequest, bad.Code)
}

func TestHandleReportMarkdown(t *testing.T) {
	h := newTestHandler(t)
	rec := post(t, h.HandleReport, "/api/consciousness-report?format=markdown",
		`{"repository_name":"acme/widgets","files":{"a.py":"exec(code)"}}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/markdown; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "Logospace Consciousness Analysis")
	assert.Contains(t, rec.Body.String(), "**Repository:** acme/widgets")

	rec = post(t, h.HandleReport, "/api/consciousness-report?format=xml", `{"files":{"a":"b"}}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

type brokenService struct{ AnalysisService }

func (brokenService) Analyze(map[string]string) (*analyzer.Report, error) {
	return nil, errors.New("regex engine on fire")
}

func (brokenService) ListReports(context.Context) ([]string, error) {
	return nil, errors.New("archive offline")
}

func TestUnexpectedErrorsAre500(t *testing.T) {
	h := NewAnalysisHandler(brokenService{}, 0)
	rec := post(t, h.HandleAnalyze, "/api/analyze", `{"files":{"a":"b"}}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "regex engine on fire", decode(t, rec)["error"])

	list := httptest.NewRecorder()
	h.HandleReports(list, httptest.NewRequest(http.MethodGet, "/api/reports", nil))
	assert.Equal(t, http.StatusInternalServerError, list.Code)
}

func TestHealthAndIndex(t *testing.T) {
	rec := httptest.NewRecorder()
	HandleHealth(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", decode(t, rec)["status"])

	rec = httptest.NewRecorder()
	HandleIndex(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	eps := decode(t, rec)["endpoints"].(map[string]any)
	assert.Contains(t, eps, "/api/analyze")
	assert.Contains(t, eps, "/health")

	rec = httptest.NewRecorder()
	HandleIndex(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
