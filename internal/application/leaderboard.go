package app

import (
	"nofap-bot/internal/domain/entity"
	"nofap-bot/internal/domain/port"
)

// Leaderboard постраничный рейтинг участников
type Leaderboard struct {
	store port.UserStore
}

// NewLeaderboard создаёт сервис рейтинга
func NewLeaderboard(store port.UserStore) *Leaderboard {
	return &Leaderboard{store: store}
}

// Top страница рейтинга и позиция запросившего вне зависимости от страницы
func (l *Leaderboard) Top(page int, caller int64) ([]*entity.UserStat, *entity.CallerRank) {
	if page < 0 {
		page = 0
	}
	return l.store.TopRanked(page, caller)
}
