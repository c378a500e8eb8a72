package main

import (
	"database/sql"

	"github.com/rs/zerolog/log"

	"github.com/fantaleague/fantamarket/go/internal/dbconfig"
)

func setupDatabase() (*sql.DB, error) {
	cfg := dbconfig.PostgresFromEnv()

	database, err := cfg.Open()
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("host", cfg.Host).
		Int("port", cfg.Port).
		Str("database", cfg.Database).
		Int("max_open_conns", cfg.MaxOpenConns).
		Msg("connected to database")
	return database, nil
}
