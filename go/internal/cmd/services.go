package main

import (
	"database/sql"

	"github.com/jonboulle/clockwork"

	"github.com/fantaleague/fantamarket/go/internal/auction"
	"github.com/fantaleague/fantamarket/go/internal/auction/sweeper"
	"github.com/fantaleague/fantamarket/go/internal/auditlog"
	auditdb "github.com/fantaleague/fantamarket/go/internal/auditlog/db"
	"github.com/fantaleague/fantamarket/go/internal/roster"
	"github.com/fantaleague/fantamarket/go/internal/settings"
	settingsdb "github.com/fantaleague/fantamarket/go/internal/settings/db"
	"github.com/fantaleague/fantamarket/go/internal/trade"
)

type Services struct {
	Auctions *auction.App
	Rosters  *roster.App
	Trades   *trade.App
	Settings *settings.Provider
	Logs     *auditlog.Repository
	Sweeper  *sweeper.Sweeper
}

func setupServices(database *sql.DB, config *Config) *Services {
	// Database layer → Repository layer → App layer
	clock := clockwork.NewRealClock()

	settingsRepo := settings.NewRepository(settingsdb.New(database))
	settingsProvider := settings.NewProvider(settingsRepo, clock, config.settingsCacheTTL())

	auctionRepo := auction.NewRepository(database)
	auctionApp := auction.NewApp(auctionRepo, settingsProvider, clock)

	marketSweeper := sweeper.New(auctionApp, clock, config.Sweeper.BatchSize)
	auctionApp.SetWaker(marketSweeper)

	rosterRepo := roster.NewRepository(database)
	rosterApp := roster.NewApp(rosterRepo)

	tradeRepo := trade.NewRepository(database)
	tradeApp := trade.NewApp(tradeRepo)

	logRepo := auditlog.NewRepository(auditdb.New(database))

	return &Services{
		Auctions: auctionApp,
		Rosters:  rosterApp,
		Trades:   tradeApp,
		Settings: settingsProvider,
		Logs:     logRepo,
		Sweeper:  marketSweeper,
	}
}
