package server

import (
	"net/http"

	"logospace/internal/gateway/handler"
	"logospace/internal/gateway/middleware"
)

type MuxOptions struct {
	Debug bool
	// Webhook is mounted at /webhook when non-nil.
	Webhook *handler.WebhookHandler
}

func NewMux(analysisHandler *handler.AnalysisHandler, opts MuxOptions) http.Handler {
	mux := http.NewServeMux()

	// Analysis
	mux.HandleFunc("/api/analyze", analysisHandler.HandleAnalyze)
	mux.HandleFunc("/api/predict-consciousness", analysisHandler.HandlePredict)
	mux.HandleFunc("/api/detect-patterns", analysisHandler.HandleDetectPatterns)
	mux.HandleFunc("/api/consciousness-report", analysisHandler.HandleReport)
	mux.HandleFunc("/api/analyze/ws", analysisHandler.HandleAnalyzeWS)

	// Archive
	mux.HandleFunc("/api/reports", analysisHandler.HandleReports)

	// GitHub App
	if opts.Webhook != nil {
		mux.HandleFunc("/webhook", opts.Webhook.HandleWebhook)
	}

	// Meta
	mux.HandleFunc("/health", handler.HandleHealth)
	mux.HandleFunc("/", handler.HandleIndex)

	// Middleware
	var h http.Handler = middleware.Recover(mux)
	if opts.Debug {
		h = middleware.Logging(h)
	}
	return middleware.CORS(h)
}
