package ghapp

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/bradleyfalzon/ghinstallation/v2"
	"github.com/google/go-github/v62/github"
	lru "github.com/hashicorp/golang-lru/v2"
)

const installationCacheSize = 64

type Config struct {
	AppID      int64
	PrivateKey []byte
	// APIURL is the GitHub Enterprise base URL; empty means api.github.com.
	APIURL string
	// MaxBytes caps the content fetched per pull request.
	MaxBytes int
}

// App hands out installation clients. Each client's transport refreshes its
// own installation token, so clients are cached per installation.
type App struct {
	cfg     Config
	base    http.RoundTripper
	clients *lru.Cache[int64, *Client]
}

// New validates the private key up front so a bad key fails at startup
// rather than on the first delivery.
func New(cfg Config) (*App, error) {
	if _, err := ghinstallation.NewAppsTransport(http.DefaultTransport, cfg.AppID, cfg.PrivateKey); err != nil {
		return nil, fmt.Errorf("github app key: %w", err)
	}
	clients, err := lru.New[int64, *Client](installationCacheSize)
	if err != nil {
		return nil, err
	}
	return &App{cfg: cfg, base: http.DefaultTransport, clients: clients}, nil
}

// Installation returns the client for installationID.
func (a *App) Installation(_ context.Context, installationID int64) (*Client, error) {
	if c, ok := a.clients.Get(installationID); ok {
		return c, nil
	}
	tr, err := ghinstallation.New(a.base, a.cfg.AppID, installationID, a.cfg.PrivateKey)
	if err != nil {
		return nil, fmt.Errorf("installation %d: %w", installationID, err)
	}
	gh := github.NewClient(&http.Client{Transport: tr})
	if base := strings.TrimSpace(a.cfg.APIURL); base != "" {
		tr.BaseURL = strings.TrimRight(base, "/")
		gh, err = gh.WithEnterpriseURLs(base, base)
		if err != nil {
			return nil, fmt.Errorf("github api url: %w", err)
		}
	}
	c := NewClient(gh, a.cfg.MaxBytes)
	a.clients.Add(installationID, c)
	return c, nil
}
