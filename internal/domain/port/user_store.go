package port

import (
	"errors"
	"time"

	"nofap-bot/internal/domain/entity"
)

// ErrUserNotFound пользователь отсутствует в хранилище
var ErrUserNotFound = errors.New("user not found")

// UserStore единственный владелец записей участников.
// AddNewUser сохраняет файл сразу; точечные сеттеры и AppendReward
// накапливаются в памяти и попадают на диск только при явном Flush.
type UserStore interface {
	// Contains есть ли участник с таким ID
	Contains(uid int64) bool

	// AddNewUser заводит запись без наград и сразу сохраняет файл
	AddNewUser(uid int64, username string, lastRelapse time.Time) (*entity.UserStat, error)

	// GetByID возвращает копию записи участника
	GetByID(uid int64) (*entity.UserStat, error)

	// Engagement машина вовлечённости участника
	Engagement(uid int64) (*entity.Engagement, error)

	// SetRelapseTime обновляет момент последнего срыва (без записи на диск)
	SetRelapseTime(uid int64, t time.Time) error

	// SetUsername обновляет ник (без записи на диск)
	SetUsername(uid int64, username string) error

	// SetWinner обновляет флаг нехватки мемов (без записи на диск)
	SetWinner(uid int64, winner bool) error

	// SetBlocked обновляет флаг бана (без записи на диск)
	SetBlocked(uid int64, blocked bool) error

	// AppendReward дописывает награду в историю участника (без записи на диск)
	AppendReward(uid int64, memeID string) error

	// Flush сохраняет полный снимок всех записей на диск
	Flush() error

	// All копии всех записей для обхода
	All() []*entity.UserStat

	// BlackList все забаненные участники
	BlackList() []entity.BannedUser

	// FindByUsername ищет участника по нику
	FindByUsername(username string) (int64, error)

	// TopRanked страница рейтинга (по 10) и позиция запросившего.
	// Забаненные и участники без ника (кроме самого запросившего)
	// в рейтинг не попадают.
	TopRanked(page int, caller int64) ([]*entity.UserStat, *entity.CallerRank)
}
