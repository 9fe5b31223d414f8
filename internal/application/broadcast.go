package app

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"nofap-bot/internal/domain/entity"
	"nofap-bot/internal/domain/port"
)

const (
	// MsgDailyPrompt текст ежедневного опроса
	MsgDailyPrompt = "Did you fap today?"

	msgExcluded = "You are no longer participating in the challenge. \nBut no one forbids collecting memes :)"
)

// Broadcaster рассылка сообщений с изоляцией сбоев по получателям.
// Недоступный получатель банится и больше не беспокоится; просьба
// сервера подождать выполняется и отправка повторяется; любая другая
// ошибка логируется и отправка откладывается до следующего цикла.
type Broadcaster struct {
	store         port.UserStore
	msgr          port.Messenger
	maxConcurrent int
	sleep         func(time.Duration)
	log           zerolog.Logger
}

// NewBroadcaster создаёт рассылку с заданным потолком параллельных отправок
func NewBroadcaster(store port.UserStore, msgr port.Messenger, maxConcurrent int, log zerolog.Logger) *Broadcaster {
	return &Broadcaster{
		store:         store,
		msgr:          msgr,
		maxConcurrent: maxConcurrent,
		sleep:         time.Sleep,
		log:           log,
	}
}

// SendSafely отправляет текст одному получателю.
// Возвращает true только при доставке; onSuccess при этом вызывается
// ровно один раз. Недоступный получатель помечается забаненным.
func (b *Broadcaster) SendSafely(ctx context.Context, uid int64, text string, kb port.Keyboard, onSuccess func()) bool {
	for {
		err := b.msgr.SendText(ctx, uid, text, kb)
		if err == nil {
			if onSuccess != nil {
				onSuccess()
			}
			return true
		}

		var de *port.DeliveryError
		if !errors.As(err, &de) {
			b.log.Error().Err(err).Int64("uid", uid).Msg("send failed")
			return false
		}

		switch de.Kind {
		case port.DeliveryUnreachable:
			if err := b.store.SetBlocked(uid, true); err != nil {
				b.log.Error().Err(err).Int64("uid", uid).Msg("ban after unreachable failed")
			} else {
				b.log.Warn().Int64("uid", uid).Msg("recipient unreachable, banned")
			}
			return false
		case port.DeliveryRateLimited:
			b.log.Warn().Int64("uid", uid).Dur("retry_after", de.RetryAfter).Msg("rate limited, waiting")
			b.sleep(de.RetryAfter)
		default:
			b.log.Error().Err(err).Int64("uid", uid).Msg("send failed, postponed to next cycle")
			return false
		}
	}
}

// SendAssetSafely отправляет мем без повторов: неудача только логируется
func (b *Broadcaster) SendAssetSafely(ctx context.Context, uid int64, path string) {
	if err := b.msgr.SendPhotoFile(ctx, uid, path); err != nil {
		b.log.Error().Err(err).Int64("uid", uid).Str("asset", path).Msg("asset send failed")
	}
}

// DailyPrompt рассылает ежедневный опрос всем участникам.
// Забаненные получают уведомление об исключении без клавиатуры;
// успешно доставленный опрос засчитывается машине вовлечённости.
func (b *Broadcaster) DailyPrompt(ctx context.Context) {
	users := b.store.All()
	b.log.Info().Int("users", len(users)).Msg("daily prompt broadcast started")

	forEachLimited(ctx, users, b.maxConcurrent, func(ctx context.Context, u *entity.UserStat) {
		if u.Blocked {
			b.SendSafely(ctx, u.UID, msgExcluded, port.KeyboardRemove, nil)
			return
		}
		b.promptUser(ctx, u.UID)
	})
}

// PromptWinners рассылает опрос только тем, кому уже не хватает мемов
func (b *Broadcaster) PromptWinners(ctx context.Context) {
	winners := make([]*entity.UserStat, 0)
	for _, u := range b.store.All() {
		if u.Winner && !u.Blocked {
			winners = append(winners, u)
		}
	}
	if len(winners) == 0 {
		return
	}
	b.log.Info().Int("winners", len(winners)).Msg("winners prompt broadcast started")

	forEachLimited(ctx, winners, b.maxConcurrent, func(ctx context.Context, u *entity.UserStat) {
		b.promptUser(ctx, u.UID)
	})
}

func (b *Broadcaster) promptUser(ctx context.Context, uid int64) {
	eng, err := b.store.Engagement(uid)
	if err != nil {
		b.log.Error().Err(err).Int64("uid", uid).Msg("engagement lookup failed")
		return
	}
	b.SendSafely(ctx, uid, MsgDailyPrompt, port.KeyboardPrompt, eng.DailyCheck)
}
