package container

import (
	"github.com/rs/zerolog"

	app "nofap-bot/internal/application"
	"nofap-bot/internal/domain/entity"
	"nofap-bot/internal/domain/port"
)

// Container собранные сервисы приложения
type Container struct {
	Broadcaster *app.Broadcaster
	Rating      *app.Rating
	Leaderboard *app.Leaderboard
	Suggestions *app.Suggestions
}

// New связывает сервисы поверх готовых адаптеров
func New(
	store port.UserStore,
	catalog *entity.RewardCatalog,
	msgr port.Messenger,
	problems port.ProblemCache,
	memesDir, suggestionsDir string,
	maxConcurrent int,
	log zerolog.Logger,
) *Container {
	broadcaster := app.NewBroadcaster(store, msgr, maxConcurrent, log)
	rating := app.NewRating(store, catalog, msgr, broadcaster, problems, memesDir, maxConcurrent, log)

	return &Container{
		Broadcaster: broadcaster,
		Rating:      rating,
		Leaderboard: app.NewLeaderboard(store),
		Suggestions: app.NewSuggestions(suggestionsDir, log),
	}
}
