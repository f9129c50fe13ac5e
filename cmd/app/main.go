package main

import (
	"spacebook/config"
	"spacebook/di"
	"spacebook/helper"
	"spacebook/shared/constant"
	"spacebook/shared/logger"

	"github.com/rs/zerolog/log"
)

// @title Spacebook API
// @version 1.0
// @description Office capacity booking with live presence per location and month.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key
func main() {
	logger.InitLogger()

	cfg := config.Get()

	if cfg.Server.Env != constant.ServerEnvDevelopment {
		logger.InitJSONLogger(cfg.App.Name)
	}

	logger.SetLogLevel(cfg)

	if cfg.DB.Postgres.AutoMigrate {
		if err := helper.Up(cfg); err != nil {
			log.Fatal().Err(err).Msg("failed to migrate database")
		}
	}

	http := di.InitializeService()
	http.Serve()
}
