package frontend

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/boxoffice-dev/boxoffice/internal/apiclient"
	"github.com/boxoffice-dev/boxoffice/internal/config"
	"github.com/boxoffice-dev/boxoffice/internal/session"
)

// Bootstrap builds a ready-to-start server for variant from configuration:
// session store, API client, session manager (installed), and routes.
func Bootstrap(cfg *config.Config, variant session.Variant, logger zerolog.Logger) (*Server, error) {
	store, err := session.OpenStore(cfg.Session.Store, cfg.Session.Path, variant.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to open session store: %w", err)
	}

	httpClient := apiclient.NewHTTPClient()
	api := apiclient.New(cfg.API.URL, httpClient)
	nav := NewNavigator(variant.HomePath)

	manager := session.NewManager(variant, store, api, nav, logger,
		session.WithRevalidateInterval(cfg.Session.RevalidateInterval))
	if err := manager.Install(httpClient); err != nil {
		return nil, fmt.Errorf("failed to install session hooks: %w", err)
	}

	srv, err := New(manager, api, nav, Options{
		ListenAddr:         cfg.Frontend.ListenAddr,
		AllowedOrigins:     cfg.Frontend.AllowedOrigins,
		LoginRatePerMinute: cfg.Frontend.LoginRatePerMinute,
	}, logger)
	if err != nil {
		manager.Stop()
		return nil, err
	}
	return srv, nil
}
