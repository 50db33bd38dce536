package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"

	"logospace/internal/analyzer"
	"logospace/internal/gateway/config"
	"logospace/internal/gateway/ghapp"
	"logospace/internal/gateway/handler"
	"logospace/internal/gateway/server"
	"logospace/internal/gateway/service/analysis"
)

type App struct {
	server  *server.Server
	archive io.Closer
}

func New(args []string) (*App, error) {
	cfg, err := config.Load(args)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return NewWithConfig(context.Background(), cfg)
}

func NewWithConfig(ctx context.Context, cfg *config.Config) (*App, error) {
	// Dependencies
	archive, closer, err := initArchive(ctx, cfg.Archive)
	if err != nil {
		return nil, err
	}
	core := analyzer.New(analyzer.WithMaxCorpusBytes(cfg.MaxCorpusBytes))
	analysisSvc, err := analysis.New(core, archive, cfg.ReportCacheSize)
	if err != nil {
		_ = closer.Close()
		return nil, err
	}

	analysisHandler := handler.NewAnalysisHandler(analysisSvc, cfg.MaxRequestBytes)
	webhookHandler, err := initWebhook(cfg, analysisSvc)
	if err != nil {
		_ = closer.Close()
		return nil, err
	}

	// Routing & Server
	mux := server.NewMux(analysisHandler, server.MuxOptions{Debug: cfg.Debug, Webhook: webhookHandler})
	srv := server.New(cfg.Port, mux)

	return &App{
		server:  srv,
		archive: closer,
	}, nil
}

// initWebhook returns nil when the GitHub App is not configured.
func initWebhook(cfg *config.Config, svc handler.AnalysisService) (*handler.WebhookHandler, error) {
	if !cfg.GitHub.Enabled() {
		log.Printf("github webhook disabled: GITHUB_APP_ID, GITHUB_PRIVATE_KEY and GITHUB_WEBHOOK_SECRET are required")
		return nil, nil
	}
	gh, err := ghapp.New(ghapp.Config{
		AppID:      cfg.GitHub.AppID,
		PrivateKey: cfg.GitHub.PrivateKey,
		APIURL:     cfg.GitHub.APIURL,
		MaxBytes:   cfg.MaxCorpusBytes,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to init github app: %w", err)
	}
	clients := func(ctx context.Context, installationID int64) (handler.PullRequestClient, error) {
		return gh.Installation(ctx, installationID)
	}
	return handler.NewWebhookHandler(svc, cfg.GitHub.WebhookSecret, clients, cfg.MaxRequestBytes), nil
}

func (a *App) Start() error {
	return a.server.Start()
}

func (a *App) Shutdown(ctx context.Context) error {
	return errors.Join(a.server.Shutdown(ctx), a.archive.Close())
}
