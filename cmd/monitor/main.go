package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/erkineren/homework-monitor/internal/bot"
	"github.com/erkineren/homework-monitor/internal/config"
	"github.com/erkineren/homework-monitor/internal/logging"
	"github.com/erkineren/homework-monitor/internal/monitor"
	"github.com/erkineren/homework-monitor/internal/practicum"
)

func main() {
	// Bootstrap logger until the configured level is known.
	log := logging.New(config.DefaultLogLevel)
	log.Info().Msg("Starting homework review monitor...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}
	log = logging.New(cfg.LogLevel)
	log.Info().
		Dur("retry_interval", cfg.RetryInterval).
		Str("endpoint", cfg.Endpoint).
		Msg("Configuration loaded successfully")

	telegramBot, err := bot.New(bot.Options{
		Token:       cfg.TelegramToken,
		ChatID:      cfg.TelegramChatID,
		APIEndpoint: cfg.TelegramAPIEndpoint,
	}, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize Telegram bot")
	}

	client := practicum.NewClient(cfg.Endpoint, cfg.PracticumToken, cfg.RequestTimeout, log)
	mon := monitor.New(client, telegramBot, cfg.RetryInterval, time.Now(), log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		log.Info().Stringer("signal", sig).Msg("Received signal, initiating shutdown...")
		cancel()
	}()

	if err := mon.Run(ctx); err != nil {
		log.Error().Err(err).Msg("Monitor stopped with error")
	}
	log.Info().Msg("Application shutdown complete")
}
