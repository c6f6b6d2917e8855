package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"homework_status_bot/internal/app"
	"homework_status_bot/internal/domain/cursor"
	"homework_status_bot/internal/infra/cache"
	"homework_status_bot/internal/infra/config"
	idb "homework_status_bot/internal/infra/database"
	"homework_status_bot/internal/infra/logger"
	"homework_status_bot/internal/infra/practicum"
	"homework_status_bot/internal/infra/scheduler"
	"homework_status_bot/internal/infra/telegram"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

func main() {
	fmt.Println("Homework Status Bot starting...")

	cfg, err := config.Load()
	if err != nil {
		logger.Named("main").Fatalf("Could not load application configuration: %v", err)
	}

	logger.Init(cfg.LogLevel, cfg.Environment)
	mainLogger := logger.Named("main")
	mainLogger.WithFields(logrus.Fields{
		"environment":  cfg.Environment,
		"endpoint":     cfg.Endpoint,
		"interval":     cfg.PollInterval,
		"schedule":     cfg.PollSchedule,
		"cursor_store": cfg.CursorStore,
	}).Info("Configuration loaded")

	// Missing secrets end the process here, before any network call.
	if err := app.CheckCredentials(cfg.Credentials, mainLogger); err != nil {
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openCursorStore(ctx, cfg)
	if err != nil {
		mainLogger.Fatalf("Could not open cursor store: %v", err)
	}
	defer closeStore()

	bot, err := telegram.NewBot(cfg.Credentials.TelegramToken, cfg.CommandsEnabled, func(err error, c telebot.Context) {
		entry := logger.Named("telebot").WithError(err)
		if c != nil && c.Chat() != nil {
			entry = entry.WithField("chat_id", c.Chat().ID)
		}
		entry.Error("Telegram bot error")
	})
	if err != nil {
		mainLogger.Fatalf("Could not create Telegram bot: %v", err)
	}

	pollSchedule, err := scheduler.NewPollScheduler(cfg.PollSchedule, cfg.PollInterval, logger.Named("scheduler"))
	if err != nil {
		mainLogger.Fatalf("Could not build poll schedule: %v", err)
	}

	notifier := app.NewNotifier(
		telegram.NewTelebotAdapter(bot),
		cfg.Credentials.TelegramChatID,
		cfg.SendRatePerSec,
		logger.Named("notifier"),
	)
	client := practicum.NewClient(cfg.Endpoint, cfg.Credentials.PracticumToken, cfg.RequestTimeout, logger.Named("practicum"))

	poller := app.NewPoller(app.PollerDeps{
		Fetcher:     client,
		Notifier:    notifier,
		Store:       store,
		Waiter:      pollSchedule,
		Credentials: cfg.Credentials,
		MaxCycles:   cfg.MaxCycles,
	}, logger.Named("poller"))

	if cfg.CommandsEnabled {
		telegram.RegisterBotCommands(bot, cfg.Credentials.TelegramChatID, poller, logger.Named("commands"))
		go bot.Start()
		defer bot.Stop()
		mainLogger.Info("Command handlers registered, long polling started")
	}

	if err := poller.Run(ctx); err != nil {
		mainLogger.WithError(err).Error("Poller exited")
		return
	}
	mainLogger.Info("Application shut down gracefully")
}

// openCursorStore picks the cursor backend. The returned func releases its connection.
func openCursorStore(ctx context.Context, cfg *config.AppConfig) (cursor.Store, func(), error) {
	switch cfg.CursorStore {
	case config.CursorStorePostgres:
		db, err := idb.NewPostgresConnection(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		repo := idb.NewPostgresCursorRepository(db, cfg.CursorName)
		if err := repo.EnsureSchema(ctx); err != nil {
			db.Close()
			return nil, nil, err
		}
		return repo, func() { db.Close() }, nil
	case config.CursorStoreRedis:
		client, err := cache.NewClient(ctx, cache.DefaultConfig(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB))
		if err != nil {
			return nil, nil, err
		}
		return cache.NewRedisCursorStore(client, cfg.CursorName), func() { client.Close() }, nil
	default:
		return cursor.NewMemoryStore(), func() {}, nil
	}
}
