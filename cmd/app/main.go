package main

import (
	"tutorhub/config"
	"tutorhub/di"
	"tutorhub/helper"
	"tutorhub/shared/logger"

	"github.com/rs/zerolog/log"
)

// @title TutorHub API
// @version 1.0
// @description Booking backend of a tutoring marketplace.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg := config.Get()

	logger.Init(cfg)

	if cfg.DB.Postgres.AutoMigrate {
		if err := helper.Up(cfg); err != nil {
			log.Fatal().Err(err).Msg("Failed to run database migrations")
		}
	}

	http := di.InitializeService()
	http.Serve()
}
