package handler

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"logospace/internal/analyzer"
)

const (
	analysisWSWriteWait = 10 * time.Second
	analysisWSPongWait  = 60 * time.Second
	analysisWSPingEvery = (analysisWSPongWait * 9) / 10
)

var analysisWSUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(_ *http.Request) bool {
		return true
	},
}

type analysisWSInbound struct {
	Type  string            `json:"type"`
	ID    string            `json:"id,omitempty"`
	Files map[string]string `json:"files"`
}

type analysisWSOutbound struct {
	Type     string           `json:"type"`
	ID       string           `json:"id,omitempty"`
	Analysis *analyzer.Report `json:"analysis,omitempty"`
	Code     string           `json:"code,omitempty"`
	Error    string           `json:"error,omitempty"`
}

// HandleAnalyzeWS serves GET /api/analyze/ws. Each inbound message carrying
// files is answered with one analysis or error frame, in order.
func (h *AnalysisHandler) HandleAnalyzeWS(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	conn, err := analysisWSUpgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	conn.SetReadLimit(h.maxRequestBytes)
	if err := conn.SetReadDeadline(time.Now().Add(analysisWSPongWait)); err != nil {
		log.Printf("analysis ws set read deadline failed: %v", err)
		return
	}
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(analysisWSPongWait))
	})

	writeCh := make(chan analysisWSOutbound, 8)
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		ticker := time.NewTicker(analysisWSPingEvery)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case out := <-writeCh:
				if err := conn.SetWriteDeadline(time.Now().Add(analysisWSWriteWait)); err != nil {
					return
				}
				if err := conn.WriteJSON(out); err != nil {
					return
				}
			case <-ticker.C:
				if err := conn.SetWriteDeadline(time.Now().Add(analysisWSWriteWait)); err != nil {
					return
				}
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			}
		}
	}()

	for {
		var in analysisWSInbound
		if err := conn.ReadJSON(&in); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) &&
				!errors.Is(err, context.Canceled) {
				log.Printf("analysis ws read ended: %v", err)
			}
			cancel()
			<-writerDone
			return
		}
		// Any message from the client proves liveness.
		_ = conn.SetReadDeadline(time.Now().Add(analysisWSPongWait))

		switch strings.ToLower(strings.TrimSpace(in.Type)) {
		case "ping":
			pushAnalysisWS(ctx, writeCh, analysisWSOutbound{Type: "pong", ID: in.ID})
		case "", "analyze":
			pushAnalysisWS(ctx, writeCh, h.analyzeFrame(in))
		default:
			pushAnalysisWS(ctx, writeCh, analysisWSOutbound{
				Type:  "error",
				ID:    in.ID,
				Code:  "invalid_argument",
				Error: "unknown message type " + in.Type,
			})
		}
	}
}

func (h *AnalysisHandler) analyzeFrame(in analysisWSInbound) analysisWSOutbound {
	out, err := h.svc.Analyze(in.Files)
	if err != nil {
		status, msg := statusFor(err)
		code := "internal"
		switch status {
		case http.StatusBadRequest:
			code = "invalid_argument"
		case http.StatusRequestEntityTooLarge:
			code = "resource_exhausted"
		}
		return analysisWSOutbound{Type: "error", ID: in.ID, Code: code, Error: msg}
	}
	return analysisWSOutbound{Type: "analysis", ID: in.ID, Analysis: out}
}

// pushAnalysisWS blocks until the writer accepts the frame so replies are
// never dropped; it gives up once the connection is gone.
func pushAnalysisWS(ctx context.Context, writeCh chan<- analysisWSOutbound, out analysisWSOutbound) {
	select {
	case writeCh <- out:
	case <-ctx.Done():
	}
}
