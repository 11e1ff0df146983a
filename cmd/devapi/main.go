package main

import (
	"fmt"
	"os"

	"github.com/boxoffice-dev/boxoffice/internal/config"
	"github.com/boxoffice-dev/boxoffice/internal/devapi"
	"github.com/boxoffice-dev/boxoffice/internal/logger"
)

func main() {
	cfg, err := config.Load("storefront")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.Logging.Level, cfg.Logging.Format)
	log := logger.GetLogger()

	srv, err := devapi.Bootstrap(cfg.DevAPI, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create development API")
	}

	log.Info().
		Str("database", cfg.DevAPI.DatabaseURL).
		Str("seed_password", devapi.DefaultSeedPassword).
		Msg("Starting Box Office development API...")

	if err := srv.Start(cfg.DevAPI.ListenAddr); err != nil {
		log.Fatal().Err(err).Msg("Server failed")
	}
}
