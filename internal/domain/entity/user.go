package entity

import (
	"math"
	"time"
)

// UserStat статистика одного участника челленджа
type UserStat struct {
	UID            int64     `json:"uid"`            // Telegram Chat ID
	Username       string    `json:"username"`       // актуальный ник, обновляется при обходе
	LastRelapse    time.Time `json:"lastTimeFap"`    // момент последнего срыва
	CollectedMemes []string  `json:"collectedMemes"` // собранные награды в порядке выдачи
	Blocked        bool      `json:"isBlocked"`      // бан ботом или админом
	Winner         bool      `json:"isWinner"`       // мемов на его день уже не хватает
}

// NewUserStat создаёт свежую запись без наград
func NewUserStat(uid int64, username string, lastRelapse time.Time) *UserStat {
	return &UserStat{
		UID:            uid,
		Username:       username,
		LastRelapse:    lastRelapse,
		CollectedMemes: make([]string, 0),
	}
}

// StreakDays целые сутки с последнего срыва.
// Отрицательное значение означает дату из будущего.
func (u *UserStat) StreakDays(now time.Time) int {
	return int(math.Floor(now.Sub(u.LastRelapse).Hours() / 24))
}

// LastCollectedDay день, закодированный в последней собранной награде.
// Для пустой истории возвращает -1.
func (u *UserStat) LastCollectedDay() (int, error) {
	if len(u.CollectedMemes) == 0 {
		return -1, nil
	}
	return ParseRewardDay(u.CollectedMemes[len(u.CollectedMemes)-1])
}

// Clone копия записи для чтения вне хранилища
func (u *UserStat) Clone() *UserStat {
	c := *u
	c.CollectedMemes = append(make([]string, 0, len(u.CollectedMemes)), u.CollectedMemes...)
	return &c
}

// BannedUser запись чёрного списка
type BannedUser struct {
	UID      int64
	Username string
}

// CallerRank позиция запросившего статистику в общем рейтинге
type CallerRank struct {
	Rank int // позиция, начиная с 1
	Stat *UserStat
}
