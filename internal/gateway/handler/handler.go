package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"logospace/internal/analyzer"
	archiverepo "logospace/internal/gateway/repository/archive"
	"logospace/internal/report"
)

// AnalysisService is what the HTTP layer needs from the analysis service.
type AnalysisService interface {
	Analyze(files map[string]string) (*analyzer.Report, error)
	BuildReport(ctx context.Context, repository string, files map[string]string) (*report.Document, error)
	GetReport(ctx context.Context, id string) (json.RawMessage, error)
	ListReports(ctx context.Context) ([]string, error)
}

const defaultMaxRequestBytes = 16 << 20

type AnalysisHandler struct {
	svc             AnalysisService
	maxRequestBytes int64
}

func NewAnalysisHandler(svc AnalysisService, maxRequestBytes int64) *AnalysisHandler {
	if maxRequestBytes <= 0 {
		maxRequestBytes = defaultMaxRequestBytes
	}
	return &AnalysisHandler{svc: svc, maxRequestBytes: maxRequestBytes}
}

type analysisRequest struct {
	Files          map[string]string `json:"files"`
	RepositoryName string            `json:"repository_name,omitempty"`
}

type errorResponse struct {
	Status string `json:"status"`
	Error  string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("http: encode response failed: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Status: "error", Error: msg})
}

func requireMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method == method {
		return true
	}
	w.Header().Set("Allow", method)
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	return false
}

// decodeRequest reads a bounded JSON body. It writes the error response
// itself and reports whether the caller should continue.
func (h *AnalysisHandler) decodeRequest(w http.ResponseWriter, r *http.Request) (analysisRequest, bool) {
	var in analysisRequest
	r.Body = http.MaxBytesReader(w, r.Body, h.maxRequestBytes)
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return in, false
		}
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return in, false
	}
	return in, true
}

// statusFor maps service errors onto HTTP status codes and client messages.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, analyzer.ErrNoFiles):
		return http.StatusBadRequest, "No files provided"
	case errors.Is(err, analyzer.ErrCorpusTooLarge):
		return http.StatusRequestEntityTooLarge, err.Error()
	case errors.Is(err, archiverepo.ErrInvalidID):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, archiverepo.ErrNotFound):
		return http.StatusNotFound, err.Error()
	default:
		return http.StatusInternalServerError, err.Error()
	}
}

func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := statusFor(err)
	if status >= http.StatusInternalServerError {
		log.Printf("http: %s %s failed: %v", r.Method, r.URL.Path, err)
	}
	writeError(w, status, msg)
}
