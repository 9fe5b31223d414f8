package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Config настройки бота, читаются из окружения и .env
type Config struct {
	Debug bool `env:"DEBUG" envDefault:"false"`

	Telegram struct {
		BotToken string  `env:"BOT_TOKEN,required"`
		AdminIDs []int64 `env:"ADMIN_IDS" envSeparator:","`
	}

	Storage struct {
		StatePath      string `env:"STATE_PATH" envDefault:"storage/all_scores_saved.json"`
		MemesDir       string `env:"MEMES_DIR" envDefault:"storage/memes"`
		SuggestionsDir string `env:"SUGGESTIONS_DIR" envDefault:"storage/suggestions"`
		LogFile        string `env:"LOG_FILE" envDefault:"no_fap_bot.log"`
	}

	// Redis включается только при заданном адресе; без него кэш
	// проблемных участников живёт в памяти процесса
	Redis struct {
		Addr     string `env:"REDIS_ADDR"`
		Password string `env:"REDIS_PASSWORD"`
		DB       int    `env:"REDIS_DB" envDefault:"0"`
	}

	Schedule struct {
		Timezone       string        `env:"SCHEDULE_TZ" envDefault:"Europe/Moscow"`
		PromptHour     int           `env:"PROMPT_HOUR" envDefault:"21"`
		WinnersHour    int           `env:"WINNERS_HOUR" envDefault:"20"`
		SummaryHour    int           `env:"SUMMARY_HOUR" envDefault:"21"`
		CacheClearHour int           `env:"CACHE_CLEAR_HOUR" envDefault:"3"`
		RatingInterval time.Duration `env:"RATING_INTERVAL" envDefault:"60s"`
	}

	Broadcast struct {
		MaxConcurrent int `env:"MAX_CONCURRENT_SENDS" envDefault:"10"`
	}
}

// Load читает .env (если есть) и собирает конфигурацию из окружения
func Load() (*Config, error) {
	// Отсутствие .env не ошибка: в проде переменные задаются напрямую
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// IsAdmin входит ли чат в список админов
func (c *Config) IsAdmin(uid int64) bool {
	for _, id := range c.Telegram.AdminIDs {
		if id == uid {
			return true
		}
	}
	return false
}
