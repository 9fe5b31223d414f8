package app

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"nofap-bot/internal/domain/entity"
	"nofap-bot/internal/domain/port"
)

const msgNotEnoughMemes = "Not enough memes for you :("

// Rating плановый обход участников: пересчёт дня серии, выдача
// наград, отметка победителей. Участники обрабатываются параллельно
// с потолком одновременных обработок; по завершении обхода снимок
// хранилища сбрасывается на диск один раз. Одновременно идёт не
// больше одного обхода: тик поверх незавершённого пропускается.
type Rating struct {
	store         port.UserStore
	catalog       *entity.RewardCatalog
	msgr          port.Messenger
	sender        *Broadcaster
	problems      port.ProblemCache
	memesDir      string
	maxConcurrent int
	now           func() time.Time
	log           zerolog.Logger

	sweepMu sync.Mutex
}

// NewRating создаёт сервис пересчёта рейтинга
func NewRating(
	store port.UserStore,
	catalog *entity.RewardCatalog,
	msgr port.Messenger,
	sender *Broadcaster,
	problems port.ProblemCache,
	memesDir string,
	maxConcurrent int,
	log zerolog.Logger,
) *Rating {
	return &Rating{
		store:         store,
		catalog:       catalog,
		msgr:          msgr,
		sender:        sender,
		problems:      problems,
		memesDir:      memesDir,
		maxConcurrent: maxConcurrent,
		now:           time.Now,
		log:           log,
	}
}

// CheckRating один проход по всем участникам.
// Затянувшийся обход не накладывается на следующий: награда за день
// выдаётся ровно один раз.
func (r *Rating) CheckRating(ctx context.Context) {
	if !r.sweepMu.TryLock() {
		r.log.Warn().Msg("rating sweep is still running, tick skipped")
		return
	}
	defer r.sweepMu.Unlock()

	users := r.store.All()
	forEachLimited(ctx, users, r.maxConcurrent, r.evaluate)

	if err := r.store.Flush(); err != nil {
		r.log.Error().Err(err).Msg("flush after rating sweep failed")
	}
}

// evaluate пересчёт одного участника, изолированный от остальных
func (r *Rating) evaluate(ctx context.Context, u *entity.UserStat) {
	if u.Blocked {
		return
	}
	if r.problems.Has(ctx, u.UID) {
		return
	}

	info, err := r.msgr.GetChatInfo(ctx, u.UID)
	if err != nil {
		r.log.Warn().Err(err).Int64("uid", u.UID).Msg("chat lookup failed, user marked problematic")
		if err := r.problems.Add(ctx, u.UID); err != nil {
			r.log.Error().Err(err).Int64("uid", u.UID).Msg("problem cache add failed")
		}
		return
	}
	if info.Username != u.Username {
		if err := r.store.SetUsername(u.UID, info.Username); err != nil {
			r.log.Error().Err(err).Int64("uid", u.UID).Msg("username refresh failed")
		}
	}

	days := u.StreakDays(r.now())
	if days < 0 {
		// дата срыва из будущего, трогать такого участника нельзя
		return
	}

	lastDay, err := u.LastCollectedDay()
	if err != nil {
		r.log.Error().Err(err).Int64("uid", u.UID).Msg("corrupt reward history")
		return
	}

	newDay := 0
	if lastDay >= 0 {
		newDay = lastDay + 1
		if days < newDay {
			newDay = days
		}
		if newDay == lastDay {
			// награда за этот день уже выдана, серия не продвинулась
			return
		}
	}

	if !r.catalog.Has(newDay) {
		if u.Winner {
			return
		}
		if err := r.store.SetWinner(u.UID, true); err != nil {
			r.log.Error().Err(err).Int64("uid", u.UID).Msg("winner flag set failed")
			return
		}
		r.sender.SendSafely(ctx, u.UID, msgNotEnoughMemes, port.KeyboardMenu, nil)
		return
	}
	if u.Winner {
		if err := r.store.SetWinner(u.UID, false); err != nil {
			r.log.Error().Err(err).Int64("uid", u.UID).Msg("winner flag clear failed")
		}
	}

	reward, _ := r.catalog.PickRandom(newDay)
	if err := r.store.AppendReward(u.UID, reward.File); err != nil {
		r.log.Error().Err(err).Int64("uid", u.UID).Msg("reward append failed")
		return
	}
	r.log.Info().Int64("uid", u.UID).Int("day", newDay).Str("asset", reward.File).Msg("reward granted")

	text := fmt.Sprintf("Congratulations!!! You have collected %d-day meme.", newDay)
	if !r.sender.SendSafely(ctx, u.UID, text, port.KeyboardMenu, nil) {
		return
	}
	r.sender.SendAssetSafely(ctx, u.UID, filepath.Join(r.memesDir, reward.File))

	// серия дошла до текущего дня без пропусков: сразу задаём вопрос дня
	if newDay == days {
		eng, err := r.store.Engagement(u.UID)
		if err != nil {
			r.log.Error().Err(err).Int64("uid", u.UID).Msg("engagement lookup failed")
			return
		}
		r.sender.SendSafely(ctx, u.UID, MsgDailyPrompt, port.KeyboardPrompt, eng.DailyCheck)
	}
}

// ClearProblemCache плановая очистка кэша проблемных участников
func (r *Rating) ClearProblemCache(ctx context.Context) {
	if err := r.problems.Clear(ctx); err != nil {
		r.log.Error().Err(err).Msg("problem cache clear failed")
		return
	}
	r.log.Info().Msg("problem cache cleared")
}

// LogSummary плановая сводка по хранилищу
func (r *Rating) LogSummary() {
	var blocked, winners, memes int
	users := r.store.All()
	for _, u := range users {
		if u.Blocked {
			blocked++
		}
		if u.Winner {
			winners++
		}
		memes += len(u.CollectedMemes)
	}
	r.log.Info().
		Int("users", len(users)).
		Int("blocked", blocked).
		Int("winners", winners).
		Int("memes_granted", memes).
		Msg("database summary")
}
