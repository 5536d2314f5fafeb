package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"localizador_bot/internal/bot"
	"localizador_bot/internal/catalog"
	"localizador_bot/internal/config"
	"localizador_bot/internal/followup"
	"localizador_bot/internal/logger"
	"localizador_bot/internal/store"
	"localizador_bot/internal/telegram"
)

func main() {
	// Load environment variables from .env file when present
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("error loading configuration: %v", err)
	}

	if err := logger.Init(cfg.Log); err != nil {
		log.Fatalf("error initializing logger: %v", err)
	}

	// Missing credentials are a warning, not a halt (soft validation).
	for _, name := range cfg.MissingRequired() {
		logger.Warn().Str("variable", name).Msg("environment variable not configured")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	table, err := catalog.LoadTable(cfg.CatalogPath)
	if err != nil {
		// Same degradation as an unreadable sales extract: the bot
		// runs, every lookup comes back empty.
		logger.Error().Err(err).Str("path", cfg.CatalogPath).Msg("failed to load catalog, lookups will be empty")
		table = catalog.NewTable(nil)
	}

	st := store.NewSupabaseClient(cfg.SupabaseURL, cfg.SupabaseKey, cfg.FollowupDelay)

	tg, err := telegram.New(cfg.BotToken)
	if err != nil {
		logger.Error().Err(err).Msg("failed to connect to Telegram")
		return
	}

	var pending followup.PendingTable
	if cfg.RedisURL != "" {
		redisTable, err := followup.NewRedisTable(ctx, cfg.RedisURL)
		if err != nil {
			logger.Error().Err(err).Msg("failed to connect to Redis, using in-memory pending table")
			pending = followup.NewMemoryTable()
		} else {
			logger.Info().Msg("using Redis pending table")
			pending = redisTable
		}
	} else {
		pending = followup.NewMemoryTable()
	}

	responder := followup.NewResponder(st, tg, pending)
	scheduler := followup.NewScheduler(st, tg, pending, cfg.PollInterval)
	router := bot.NewRouter(table, st, tg, responder)

	go scheduler.Run(ctx)

	logger.Info().Msg("🤖 bot running, press Ctrl+C to stop")
	for msg := range tg.Updates(ctx) {
		router.Dispatch(ctx, msg)
	}
}
