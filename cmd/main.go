// Package main provides the API to manage users, card accounts and money movements.
package main

import (
	"github.com/rs/zerolog/log"

	"github.com/go-petr/card-bank/cmd/httpserver"
	"github.com/go-petr/card-bank/internal/middleware"
	"github.com/go-petr/card-bank/pkg/configpkg"
	"github.com/go-petr/card-bank/pkg/dbpkg"

	_ "github.com/lib/pq"
)

func main() {
	config, err := configpkg.Load("./configs")
	if err != nil {
		log.Fatal().Err(err).Msg("cannot load config")
	}

	logger := middleware.CreateLogger(config)

	db, err := dbpkg.Setup(config.DBDriver, config.DBSource)
	if err != nil {
		logger.Fatal().Err(err).Msg("cannot connect to database")
	}

	server, err := httpserver.New(db, logger, config)
	if err != nil {
		logger.Fatal().Err(err).Msg("cannot create server")
	}

	logger.Info().Msg("CARD BANK API SERVER HAS STARTED")

	if err := server.Engine.Run(config.ServerAddress); err != nil {
		logger.Fatal().Err(err).Msg("cannot start server")
	}
}
