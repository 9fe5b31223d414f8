package main

import (
	"context"
	"log"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"nofap-bot/config"
	"nofap-bot/internal/api"
	"nofap-bot/internal/container"
	"nofap-bot/internal/domain/port"
	"nofap-bot/internal/infrastructure/cache"
	"nofap-bot/internal/infrastructure/storage"
	"nofap-bot/internal/infrastructure/telegram"
	"nofap-bot/internal/logging"
	"nofap-bot/internal/schedule"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.Debug, cfg.Storage.LogFile)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}

	// Хранилище обязано подняться: без него бот не стартует
	store, err := storage.NewJSONUserStore(cfg.Storage.StatePath, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("user store init failed")
	}

	catalog, err := storage.LoadRewardCatalog(cfg.Storage.MemesDir, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("reward catalog load failed")
	}

	ctx := context.Background()

	var problems port.ProblemCache
	if cfg.Redis.Addr != "" {
		redisCache, err := cache.NewRedisProblemCache(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			logger.Fatal().Err(err).Msg("redis init failed")
		}
		defer redisCache.Close()
		problems = redisCache
		logger.Info().Str("addr", cfg.Redis.Addr).Msg("problem cache: redis")
	} else {
		problems = cache.NewMemoryProblemCache()
		logger.Info().Msg("problem cache: in-memory")
	}

	botAPI, err := tgbotapi.NewBotAPI(cfg.Telegram.BotToken)
	if err != nil {
		logger.Fatal().Err(err).Msg("bot api init failed")
	}
	logger.Info().Str("account", botAPI.Self.UserName).Msg("authorized")

	msgr := telegram.NewMessenger(botAPI)

	services := container.New(
		store, catalog, msgr, problems,
		cfg.Storage.MemesDir, cfg.Storage.SuggestionsDir,
		cfg.Broadcast.MaxConcurrent,
		logger,
	)

	sched, err := schedule.New(cfg.Schedule.Timezone)
	if err != nil {
		logger.Fatal().Err(err).Msg("scheduler init failed")
	}

	jobs := []struct {
		name string
		spec string
		fn   func()
	}{
		{"rating-sweep", schedule.Every(cfg.Schedule.RatingInterval), func() { services.Rating.CheckRating(ctx) }},
		{"daily-prompt", schedule.DailyAt(cfg.Schedule.PromptHour, 0), func() { services.Broadcaster.DailyPrompt(ctx) }},
		{"winners-prompt", schedule.DailyAt(cfg.Schedule.WinnersHour, 0), func() { services.Broadcaster.PromptWinners(ctx) }},
		{"cache-clear", schedule.DailyAt(cfg.Schedule.CacheClearHour, 0), func() { services.Rating.ClearProblemCache(ctx) }},
		{"daily-summary", schedule.DailyAt(cfg.Schedule.SummaryHour, 0), services.Rating.LogSummary},
	}
	for _, j := range jobs {
		if err := sched.AddJob(j.name, j.spec, j.fn); err != nil {
			logger.Fatal().Err(err).Str("job", j.name).Msg("job registration failed")
		}
	}

	sched.Start()
	defer sched.Stop()

	bot := api.NewBot(botAPI, store, msgr, services, sched, cfg, logger)

	logger.Info().Msg("bot is running")
	if err := bot.Run(); err != nil {
		logger.Fatal().Err(err).Msg("bot stopped")
	}
}
