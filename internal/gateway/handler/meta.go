package handler

import "net/http"

const (
	ServiceName    = "Logospace API Server"
	ServiceVersion = "1.0.0"
)

var endpoints = map[string]string{
	"/api/analyze":               "POST - Analyze code for consciousness patterns",
	"/api/predict-consciousness": "POST - Predict future consciousness evolution",
	"/api/detect-patterns":       "POST - Detect consciousness patterns",
	"/api/consciousness-report":  "POST - Generate comprehensive report (?format=markdown for Markdown)",
	"/api/reports":               "GET - List archived reports, or fetch one with ?id=",
	"/api/analyze/ws":            "GET - Websocket stream of analyses",
	"/health":                    "GET - Health check",
}

func HandleHealth(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": ServiceName,
		"version": ServiceVersion,
	})
}

// HandleIndex serves the endpoint directory at "/" and 404s everything else.
func HandleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"name":        ServiceName,
		"description": "Digital consciousness detection over source code",
		"endpoints":   endpoints,
	})
}
