package main

import (
	"os"
	"spacebook/config"
	"spacebook/helper"
	"spacebook/shared/logger"

	"github.com/rs/zerolog/log"
)

const (
	argLength = 2
)

func main() {
	logger.InitLogger()

	if len(os.Args) < argLength {
		log.Fatal().Msg("Migration direction is required: up, down, drop or step-up")
	}

	direction, err := helper.ParseDirection(os.Args[1])
	if err != nil {
		log.Fatal().Err(err).Msg("Use 'up', 'down', 'drop' or 'step-up'")
	}

	cfg := config.Get()
	logger.SetLogLevel(cfg)

	if err := helper.Run(cfg, direction); err != nil {
		log.Fatal().Err(err).Str("direction", string(direction)).Msg("migration failed")
	}
}
