package main

import (
	"fmt"
	"os"

	"github.com/boxoffice-dev/boxoffice/internal/config"
	"github.com/boxoffice-dev/boxoffice/internal/frontend"
	"github.com/boxoffice-dev/boxoffice/internal/logger"
	"github.com/boxoffice-dev/boxoffice/internal/session"
)

var version = "dev" // Will be set during build with -ldflags

func main() {
	cfg, err := config.Load("storefront")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.Logging.Level, cfg.Logging.Format)
	log := logger.GetLogger().With().Str("variant", cfg.Variant).Logger()

	variant, err := session.VariantNamed(cfg.Variant)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid variant")
	}

	srv, err := frontend.Bootstrap(cfg, variant, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create server")
	}

	log.Info().Str("version", version).Str("api_url", cfg.API.URL).Msg("Starting Box Office storefront...")

	if err := srv.Start(); err != nil {
		log.Fatal().Err(err).Msg("Server failed")
	}
}
