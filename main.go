package main

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/vladimiradmaev/nutrition-bot/internal/bot"
	"github.com/vladimiradmaev/nutrition-bot/internal/bot/handlers"
	"github.com/vladimiradmaev/nutrition-bot/internal/bot/state"
	"github.com/vladimiradmaev/nutrition-bot/internal/config"
	"github.com/vladimiradmaev/nutrition-bot/internal/database"
	"github.com/vladimiradmaev/nutrition-bot/internal/domain"
	"github.com/vladimiradmaev/nutrition-bot/internal/interfaces"
	"github.com/vladimiradmaev/nutrition-bot/internal/logger"
	"github.com/vladimiradmaev/nutrition-bot/internal/obs"
	"github.com/vladimiradmaev/nutrition-bot/internal/queue"
	"github.com/vladimiradmaev/nutrition-bot/internal/repository"
	"github.com/vladimiradmaev/nutrition-bot/internal/server"
	"github.com/vladimiradmaev/nutrition-bot/internal/services"
	"github.com/vladimiradmaev/nutrition-bot/internal/telegram"
	"github.com/vladimiradmaev/nutrition-bot/internal/whatsapp"
)

func main() {
	if err := godotenv.Load(); err != nil {
		logger.Warn(".env file not found")
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", "error", err)
	}

	if err := logger.InitWithConfig(cfg.Logger.LoggerSettings()); err != nil {
		logger.Fatal("Failed to initialize logger", "error", err)
	}
	defer logger.Close()

	logger.Info("Starting WhatsApp Nutrition Bot...", "provider", cfg.WhatsApp.Provider, "env", cfg.Environment)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracer, err := obs.InitTracer(ctx, cfg.OTLPEndpoint, cfg.Environment)
	if err != nil {
		logger.Fatal("Failed to initialize tracing", "error", err)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracer(flushCtx); err != nil {
			logger.Warn("Failed to flush traces", "error", err)
		}
	}()

	db, err := database.Open(cfg.DB)
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}
	store := repository.NewStore(db)

	var stateStore interfaces.StateStore = state.NewManager()
	if cfg.Redis.Addr != "" {
		redisState, err := state.NewRedisManager(cfg.Redis)
		if err != nil {
			logger.Fatal("Failed to connect to Redis", "error", err)
		}
		defer redisState.Close()
		stateStore = redisState
		logger.Info("Using Redis for de-duplication and image counters", "addr", cfg.Redis.Addr)
	}

	wa, err := whatsapp.New(cfg)
	if err != nil {
		logger.Fatal("Failed to create WhatsApp client", "error", err)
	}
	media := services.NewMediaMux(wa)

	var tg *telegram.Channel
	if cfg.TelegramToken != "" {
		tg, err = telegram.New(cfg.TelegramToken)
		if err != nil {
			logger.Fatal("Failed to create Telegram bot", "error", err)
		}
		media.Handle(telegram.KeyPrefix, tg)
	}

	// Initialize services
	ai, err := services.NewAIService(ctx, cfg, media)
	if err != nil {
		logger.Fatal("Failed to create AI service", "error", err)
	}
	deps := handlers.Dependencies{
		UserService:     services.NewUserService(store, ai),
		MealService:     services.NewMealService(store, ai, time.Now),
		WaterService:    services.NewWaterService(store, time.Now),
		ReportService:   services.NewReportService(store, ai, time.Now),
		AI:              ai,
		State:           stateStore,
		ImageDailyLimit: cfg.Bot.ImageDailyLimit,
		Now:             time.Now,
	}
	logger.Info("Services initialized successfully")

	b := bot.NewBot(handlers.NewRouter(deps), stateStore, store, cfg.Bot.Workers)
	b.AddMessenger(domain.ChannelWhatsApp, wa)
	if tg != nil {
		b.AddMessenger(domain.ChannelTelegram, tg)
	}

	// Webhooks and Telegram go through the queue when one is configured
	var sink server.InboundSink = b
	var consumer *queue.Consumer
	if cfg.RabbitMQ.URL != "" {
		pub, err := queue.NewPublisher(cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange)
		if err != nil {
			logger.Fatal("Failed to create queue publisher", "error", err)
		}
		defer pub.Close()

		consumer, err = queue.NewConsumer(cfg.RabbitMQ, b)
		if err != nil {
			logger.Fatal("Failed to create queue consumer", "error", err)
		}
		defer consumer.Close()

		sink = pub
		logger.Info("Inbound messages are queued", "exchange", cfg.RabbitMQ.Exchange, "queue", cfg.RabbitMQ.Queue)
	}

	var wg sync.WaitGroup
	run := func(name string, fn func(context.Context) error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := fn(ctx); err != nil && ctx.Err() == nil {
				logger.Error("Component stopped with error", "component", name, "error", err)
				stop()
			}
		}()
	}

	run("bot", b.Start)
	run("http", server.New(cfg.HTTP.Addr, sink, cfg.Meta.VerifyToken).Run)
	if consumer != nil {
		run("queue", consumer.Run)
	}
	if tg != nil {
		run("telegram", func(ctx context.Context) error { return tg.Start(ctx, sink) })
	}

	logger.Info("Bot is running. Press Ctrl+C to stop.")
	<-ctx.Done()
	logger.Info("Shutting down...")
	wg.Wait()
}
