package storage

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"nofap-bot/internal/domain/entity"
)

// LoadRewardCatalog один раз сканирует каталог мемов на старте.
// Отсутствующий каталог даёт пустой набор наград: бот продолжает
// работать без выдачи. Непарсящееся имя файла — ошибка: каталог
// считается повреждённым.
func LoadRewardCatalog(dir string, log zerolog.Logger) (*entity.RewardCatalog, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			log.Warn().Str("dir", dir).Msg("memes dir is absent, rewards disabled")
			return entity.NewRewardCatalog(nil), nil
		}
		return nil, fmt.Errorf("read memes dir: %w", err)
	}

	rewards := make([]entity.Reward, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		day, err := entity.ParseRewardDay(e.Name())
		if err != nil {
			return nil, fmt.Errorf("scan memes dir: %w", err)
		}
		rewards = append(rewards, entity.Reward{Day: day, File: e.Name()})
	}

	catalog := entity.NewRewardCatalog(rewards)
	log.Info().Int("assets", catalog.Size()).Int("days", catalog.Days()).Msg("reward catalog loaded")
	return catalog, nil
}
