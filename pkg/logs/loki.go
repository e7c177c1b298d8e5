package logs

import (
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"

	"github.com/grafana/loki-client-go/loki"
	slogloki "github.com/samber/slog-loki/v3"

	"github.com/equidadeplus/equidade_backend/config"
)

var (
	lokiMu      sync.Mutex
	lokiClients []*loki.Client
)

func newLokiHandler(cfg config.LokiConfig, level slog.Level) (slog.Handler, error) {
	endpoint, err := pushURL(cfg)
	if err != nil {
		return nil, err
	}

	lc, err := loki.NewDefaultConfig(endpoint)
	if err != nil {
		return nil, fmt.Errorf("loki config: %w", err)
	}
	lc.TenantID = cfg.TenantID

	client, err := loki.New(lc)
	if err != nil {
		return nil, fmt.Errorf("loki client: %w", err)
	}

	lokiMu.Lock()
	lokiClients = append(lokiClients, client)
	lokiMu.Unlock()

	return slogloki.Option{Level: level, Client: client}.NewLokiHandler(), nil
}

// pushURL builds the push endpoint, carrying basic-auth credentials in the
// URL userinfo so the HTTP client sends them on every push.
func pushURL(cfg config.LokiConfig) (string, error) {
	u, err := url.Parse(strings.TrimRight(cfg.Endpoint, "/") + "/loki/api/v1/push")
	if err != nil {
		return "", fmt.Errorf("loki endpoint: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("loki endpoint %q must be absolute", cfg.Endpoint)
	}
	if cfg.Username != "" {
		u.User = url.UserPassword(cfg.Username, cfg.Password)
	}
	return u.String(), nil
}

// Flush stops every Loki client created by New, pushing buffered entries.
func Flush() {
	lokiMu.Lock()
	defer lokiMu.Unlock()
	for _, c := range lokiClients {
		c.Stop()
	}
	lokiClients = nil
}
