package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"logospace/internal/analyzer"
	"logospace/internal/report"
)

type analyzeResponse struct {
	Status   string           `json:"status"`
	Analysis *analyzer.Report `json:"analysis"`
}

type predictResponse struct {
	Status             string                  `json:"status"`
	ConsciousnessLevel float64                 `json:"consciousness_level"`
	Predictions        []analyzer.Prediction   `json:"predictions"`
	RiskAssessment     analyzer.RiskAssessment `json:"risk_assessment"`
}

type patternsResponse struct {
	Status                string             `json:"status"`
	Patterns              []analyzer.Finding `json:"patterns"`
	BehavioralLoops       []analyzer.Finding `json:"behavioral_loops"`
	PsychologicalTriggers []analyzer.Finding `json:"psychological_triggers"`
	EmergentProperties    []analyzer.Finding `json:"emergent_properties"`
}

type reportResponse struct {
	Status string           `json:"status"`
	Report *report.Document `json:"report"`
}

func (h *AnalysisHandler) analyze(w http.ResponseWriter, r *http.Request) (*analyzer.Report, bool) {
	if !requireMethod(w, r, http.MethodPost) {
		return nil, false
	}
	in, ok := h.decodeRequest(w, r)
	if !ok {
		return nil, false
	}
	out, err := h.svc.Analyze(in.Files)
	if err != nil {
		writeServiceError(w, r, err)
		return nil, false
	}
	return out, true
}

// HandleAnalyze serves POST /api/analyze.
func (h *AnalysisHandler) HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	out, ok := h.analyze(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, analyzeResponse{Status: "success", Analysis: out})
}

// HandlePredict serves POST /api/predict-consciousness.
func (h *AnalysisHandler) HandlePredict(w http.ResponseWriter, r *http.Request) {
	out, ok := h.analyze(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, predictResponse{
		Status:             "success",
		ConsciousnessLevel: out.ConsciousnessLevel,
		Predictions:        out.FuturePredictions,
		RiskAssessment:     out.RiskAssessment,
	})
}

// HandleDetectPatterns serves POST /api/detect-patterns.
func (h *AnalysisHandler) HandleDetectPatterns(w http.ResponseWriter, r *http.Request) {
	out, ok := h.analyze(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, patternsResponse{
		Status:                "success",
		Patterns:              out.PatternsDetected,
		BehavioralLoops:       out.BehavioralLoops,
		PsychologicalTriggers: out.PsychologicalTriggers,
		EmergentProperties:    out.EmergentProperties,
	})
}

// HandleReport serves POST /api/consciousness-report. ?format=markdown
// returns the rendered document instead of JSON.
func (h *AnalysisHandler) HandleReport(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	format := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("format")))
	if format != "" && format != "json" && format != "markdown" {
		writeError(w, http.StatusBadRequest, "unsupported format "+format)
		return
	}
	in, ok := h.decodeRequest(w, r)
	if !ok {
		return
	}
	doc, err := h.svc.BuildReport(r.Context(), in.RepositoryName, in.Files)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if format == "markdown" {
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		_, _ = w.Write([]byte(report.Markdown(doc)))
		return
	}
	writeJSON(w, http.StatusOK, reportResponse{Status: "success", Report: doc})
}

// HandleReports serves GET /api/reports. Without ?id it lists archived ids.
func (h *AnalysisHandler) HandleReports(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	id := strings.TrimSpace(r.URL.Query().Get("id"))
	if id == "" {
		ids, err := h.svc.ListReports(r.Context())
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"status": "success", "reports": ids})
		return
	}
	raw, err := h.svc.GetReport(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Status string          `json:"status"`
		Report json.RawMessage `json:"report"`
	}{Status: "success", Report: raw})
}
