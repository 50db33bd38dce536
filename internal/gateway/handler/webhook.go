package handler

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/google/go-github/v62/github"

	"logospace/internal/report"
)

// PullRequestClient is what the webhook needs from one GitHub installation.
type PullRequestClient interface {
	ChangedFiles(ctx context.Context, owner, repo string, number int, ref string) (map[string]string, error)
	Comment(ctx context.Context, owner, repo string, number int, body string) error
}

// InstallationClients resolves the client for a webhook's installation.
type InstallationClients func(ctx context.Context, installationID int64) (PullRequestClient, error)

type WebhookHandler struct {
	svc             AnalysisService
	secret          []byte
	clients         InstallationClients
	maxRequestBytes int64
}

func NewWebhookHandler(svc AnalysisService, secret string, clients InstallationClients, maxRequestBytes int64) *WebhookHandler {
	if maxRequestBytes <= 0 {
		maxRequestBytes = defaultMaxRequestBytes
	}
	return &WebhookHandler{svc: svc, secret: []byte(secret), clients: clients, maxRequestBytes: maxRequestBytes}
}

type webhookResponse struct {
	Status  string           `json:"status"`
	Message string           `json:"message,omitempty"`
	Report  *report.Document `json:"report,omitempty"`
}

func ignored(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusOK, webhookResponse{Status: "success", Message: msg})
}

// HandleWebhook serves POST /webhook. Pull request "opened" and
// "synchronize" deliveries are analyzed at the head commit and answered with
// a Markdown comment; every other event is acknowledged and ignored.
func (h *WebhookHandler) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, h.maxRequestBytes)
	payload, err := github.ValidatePayload(r, h.secret)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		writeError(w, http.StatusUnauthorized, "invalid webhook signature")
		return
	}
	event, err := github.ParseWebHook(github.WebHookType(r), payload)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid webhook payload")
		return
	}

	switch e := event.(type) {
	case *github.PingEvent:
		ignored(w, "pong")
	case *github.PullRequestEvent:
		h.pullRequest(w, r, e)
	default:
		ignored(w, "Event not processed")
	}
}

func (h *WebhookHandler) pullRequest(w http.ResponseWriter, r *http.Request, e *github.PullRequestEvent) {
	switch e.GetAction() {
	case "opened", "synchronize":
	default:
		ignored(w, "Event not processed")
		return
	}
	installationID := e.GetInstallation().GetID()
	if installationID == 0 {
		writeError(w, http.StatusBadRequest, "delivery has no installation")
		return
	}

	ctx := r.Context()
	repo := e.GetRepo()
	owner, name, number := repo.GetOwner().GetLogin(), repo.GetName(), e.GetNumber()
	log.Printf("webhook: %s %s/%s#%d", e.GetAction(), owner, name, number)

	client, err := h.clients(ctx, installationID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	files, err := client.ChangedFiles(ctx, owner, name, number, e.GetPullRequest().GetHead().GetSHA())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if len(files) == 0 {
		ignored(w, "No analyzable files")
		return
	}
	doc, err := h.svc.BuildReport(ctx, repo.GetFullName(), files)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if err := client.Comment(ctx, owner, name, number, report.Markdown(doc)); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, webhookResponse{Status: "success", Report: doc})
}
