package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/fantaleague/fantamarket/go/internal/auditlog"
	"github.com/fantaleague/fantamarket/go/internal/dbconfig"
	"github.com/fantaleague/fantamarket/go/internal/gateway"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if err := godotenv.Load(); err != nil {
		log.Warn().Err(err).Msg("could not load .env file")
	}

	config, err := loadConfig(dbconfig.EnvOr("CONFIG_PATH", "config.yaml"))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	database, err := setupDatabase()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to set up database")
	}
	defer database.Close()

	services := setupServices(database, config)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Audit relay: unpublished audit events go out over NATS.
	natsURL := dbconfig.EnvOr("NATS_URL", config.NATS.URL)
	natsConn, err := nats.Connect(natsURL)
	if err != nil {
		log.Fatal().Err(err).Str("url", natsURL).Msg("failed to connect to NATS")
	}
	defer natsConn.Close()

	slogger := slog.New(slog.NewJSONHandler(os.Stderr, nil))
	publisher := auditlog.NewNATSPublisher(natsConn, config.NATS.SubjectPrefix, slogger)
	relayCfg := auditlog.DefaultWorkerConfig()
	relayCfg.PollInterval = config.relayPollInterval()
	relayCfg.BatchSize = config.Relay.BatchSize
	relayWorker := auditlog.NewWorker(database, publisher, relayCfg, slogger)
	if err := relayWorker.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to start audit relay worker")
	}
	defer relayWorker.Stop()

	relayHealth := auditlog.NewHealthChecker(relayWorker, database, natsConn)

	// Live feed: NATS events fan out to WebSocket clients.
	cm := gateway.NewConnectionManager(gateway.DefaultConnectionConfig())
	go cm.Start(ctx)

	consumerCfg := gateway.DefaultConsumerConfig()
	consumerCfg.URL = natsURL
	consumerCfg.SubjectPrefix = config.NATS.SubjectPrefix
	consumer, err := gateway.NewEventConsumer(cm, consumerCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create event consumer")
	}
	defer consumer.Stop()
	go func() {
		if err := consumer.Start(ctx); err != nil {
			log.Error().Err(err).Msg("event consumer exited")
		}
	}()

	// Deadline sweeper.
	go func() {
		if err := services.Sweeper.Run(ctx); err != nil {
			log.Error().Err(err).Msg("sweeper exited")
		}
	}()

	server := setupServer(services, cm, relayHealth, config)

	go func() {
		log.Info().Str("addr", server.Addr).Msg("market server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("server error")
			cancel()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
	}
}
